package handler

import (
	"net/http"
	"time"

	"github.com/pautanglog/pautanglog/internal/service"
	"github.com/pautanglog/pautanglog/pkg/response"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary serves GET /dashboard/summary?from=2006-01-02&to=2006-01-02.
// Without parameters the range defaults to the current month.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err = time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "from must be formatted as YYYY-MM-DD")
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "to must be formatted as YYYY-MM-DD")
			return
		}
		// Make the upper bound inclusive of the whole day.
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	if to.Before(from) {
		response.BadRequest(w, "to must not precede from")
		return
	}

	summary, err := h.service.Summary(r.Context(), ownerID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, summary)
}
