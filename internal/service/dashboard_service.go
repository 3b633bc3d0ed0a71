package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/pautanglog/pautanglog/internal/domain"
	"github.com/pautanglog/pautanglog/internal/repository"
	customError "github.com/pautanglog/pautanglog/pkg/errors"
)

// DashboardService serves the read-only reporting surface. The portfolio
// rollup walks every loan of a lender, so it is cached in redis and
// invalidated by the write services on every mutation.
type DashboardService struct {
	LoanRepo        repository.LoanRepository
	InstallmentRepo repository.InstallmentRepository
	PaymentRepo     repository.PaymentRepository
	ReportRepo      repository.ReportRepository
	redis           *redis.Client
	cacheTTL        time.Duration
}

func NewDashboardService(
	loanRepo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	paymentRepo repository.PaymentRepository,
	reportRepo repository.ReportRepository,
	redisClient *redis.Client,
	cacheTTL time.Duration,
) *DashboardService {
	return &DashboardService{
		LoanRepo:        loanRepo,
		InstallmentRepo: installmentRepo,
		PaymentRepo:     paymentRepo,
		ReportRepo:      reportRepo,
		redis:           redisClient,
		cacheTTL:        cacheTTL,
	}
}

// Summary returns the lender's dashboard figures. Collections are summed for
// the requested date range; the portfolio rollup comes from cache when warm.
func (s *DashboardService) Summary(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*domain.DashboardSummary, error) {
	collected, err := s.ReportRepo.TotalCollected(ctx, ownerID, from, to)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	portfolio, err := s.portfolio(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardSummary{
		From:           from,
		To:             to,
		TotalCollected: collected.Round(2),
		Portfolio:      *portfolio,
	}, nil
}

func (s *DashboardService) portfolio(ctx context.Context, ownerID uuid.UUID) (*domain.PortfolioSummary, error) {
	if cached := s.cachedPortfolio(ctx, ownerID); cached != nil {
		return cached, nil
	}

	summary, err := s.computePortfolio(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.storePortfolio(ctx, ownerID, summary)

	return summary, nil
}

func (s *DashboardService) computePortfolio(ctx context.Context, ownerID uuid.UUID) (*domain.PortfolioSummary, error) {
	loans, err := s.LoanRepo.ListByLender(ctx, ownerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summary := &domain.PortfolioSummary{}
	var outstanding, penalties, rebates decimal.Decimal

	for _, loan := range loans {
		switch loan.Status {
		case domain.LoanStatusActive:
			summary.ActiveLoans++
		case domain.LoanStatusCompleted:
			summary.CompletedLoans++
		}

		// Voided loans stay out of every figure.
		if loan.IsVoided {
			continue
		}

		installments, err := s.InstallmentRepo.ListByLoan(ctx, loan.ID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		totalPaid, err := s.PaymentRepo.TotalPaidByLoan(ctx, loan.ID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		balance, err := domain.AggregateLoan(loan, installments, totalPaid)
		if err != nil {
			return nil, err
		}

		outstanding = outstanding.Add(balance.RemainingBalance)
		penalties = penalties.Add(balance.TotalPenalties)
		rebates = rebates.Add(balance.TotalRebates)
	}

	summary.OutstandingBalance = outstanding.Round(2)
	summary.TotalPenalties = penalties.Round(2)
	summary.TotalRebates = rebates.Round(2)

	return summary, nil
}

func (s *DashboardService) cachedPortfolio(ctx context.Context, ownerID uuid.UUID) *domain.PortfolioSummary {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, dashboardCacheKey(ownerID)).Bytes()
	if err != nil {
		return nil
	}

	var summary domain.PortfolioSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *DashboardService) storePortfolio(ctx context.Context, ownerID uuid.UUID, summary *domain.PortfolioSummary) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	s.redis.Set(ctx, dashboardCacheKey(ownerID), raw, s.cacheTTL)
}

// WarmCaches recomputes and caches the portfolio rollup for every lender.
// Run by the scheduler so first dashboard hits of the day are warm.
func (s *DashboardService) WarmCaches(ctx context.Context) error {
	lenderIDs, err := s.ReportRepo.ListLenderIDs(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	for _, lenderID := range lenderIDs {
		summary, err := s.computePortfolio(ctx, lenderID)
		if err != nil {
			log.Printf("dashboard warmup failed for lender %s: %v", lenderID, err)
			continue
		}
		s.storePortfolio(ctx, lenderID, summary)
	}

	return nil
}

// LogOverdueReport counts installments past due across active loans and logs
// the figure. Overdue is never stored; this is the read-side derivation.
func (s *DashboardService) LogOverdueReport(ctx context.Context, asOf time.Time) error {
	count, err := s.ReportRepo.CountOverdueInstallments(ctx, asOf)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	log.Printf("overdue report: %d pending installments past due as of %s", count, asOf.Format("2006-01-02"))
	return nil
}
