package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shop_manager/internal/money"
	"shop_manager/internal/repository"
)

// PerformanceSummary projects a salesman's settled sales against their period
// target. Targets are consumed read-only; settlement never writes them.
type PerformanceSummary struct {
	SalesmanID      uint            `json:"salesman_id"`
	MonthYear       string          `json:"month_year"`
	Revenue         money.Money     `json:"revenue"`
	Ganji           money.Money     `json:"ganji"`
	Units           int             `json:"units"`
	SaleCount       int64           `json:"sale_count"`
	CommissionTotal money.Money     `json:"commission_total"`
	RevenueTarget   money.Money     `json:"revenue_target"`
	UnitTarget      int             `json:"unit_target"`
	AchievementPct  decimal.Decimal `json:"achievement_pct"` // revenue vs target; zero when no target
}

type PerformanceService interface {
	MonthlySummary(salesmanID uint, monthYear string) (*PerformanceSummary, error)
	// ShopMonthlySummaries projects every salesman with a target in the shop
	// for the month, the owner's side of the performance view.
	ShopMonthlySummaries(shopID uint, monthYear string) ([]PerformanceSummary, error)
}

type performanceService struct {
	saleRepo       repository.SaleRepository
	commissionRepo repository.CommissionRepository
	targetRepo     repository.TargetRepository
}

func NewPerformanceService(
	saleRepo repository.SaleRepository,
	commissionRepo repository.CommissionRepository,
	targetRepo repository.TargetRepository,
) PerformanceService {
	return &performanceService{
		saleRepo:       saleRepo,
		commissionRepo: commissionRepo,
		targetRepo:     targetRepo,
	}
}

func (s *performanceService) MonthlySummary(salesmanID uint, monthYear string) (*PerformanceSummary, error) {
	start, err := time.Parse("2006-01", monthYear)
	if err != nil {
		verr := newValidationError()
		verr.add("month", "must be formatted YYYY-MM")
		return nil, verr
	}
	end := start.AddDate(0, 1, 0)

	totals, err := s.saleRepo.TotalsForSalesman(salesmanID, start, end)
	if err != nil {
		return nil, err
	}
	commissionTotal, err := s.commissionRepo.TotalForSalesmanPeriod(salesmanID, start, end)
	if err != nil {
		return nil, err
	}

	summary := &PerformanceSummary{
		SalesmanID:      salesmanID,
		MonthYear:       monthYear,
		Revenue:         totals.Revenue,
		Ganji:           totals.Ganji,
		Units:           totals.Units,
		SaleCount:       totals.SaleCount,
		CommissionTotal: commissionTotal,
	}

	target, err := s.targetRepo.GetBySalesmanMonth(salesmanID, monthYear)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, nil
		}
		return nil, err
	}
	summary.RevenueTarget = target.RevenueTarget
	summary.UnitTarget = target.UnitTarget
	if !target.RevenueTarget.IsZero() {
		summary.AchievementPct = totals.Revenue.Decimal().
			Div(target.RevenueTarget.Decimal()).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return summary, nil
}

func (s *performanceService) ShopMonthlySummaries(shopID uint, monthYear string) ([]PerformanceSummary, error) {
	if _, err := time.Parse("2006-01", monthYear); err != nil {
		verr := newValidationError()
		verr.add("month", "must be formatted YYYY-MM")
		return nil, verr
	}
	targets, err := s.targetRepo.GetByShopMonth(shopID, monthYear)
	if err != nil {
		return nil, err
	}
	summaries := make([]PerformanceSummary, 0, len(targets))
	for _, target := range targets {
		summary, err := s.MonthlySummary(target.SalesmanID, monthYear)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}
