package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"shop_manager/internal/models"
	"shop_manager/internal/money"
)

type fakeTargetRepo struct {
	targets map[string]models.Target // keyed salesman|month
}

func (f *fakeTargetRepo) GetBySalesmanMonth(salesmanID uint, monthYear string) (*models.Target, error) {
	for _, target := range f.targets {
		if target.SalesmanID == salesmanID && target.MonthYear == monthYear {
			t := target
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTargetRepo) GetByShopMonth(shopID uint, monthYear string) ([]models.Target, error) {
	var targets []models.Target
	for _, target := range f.targets {
		if target.ShopID == shopID && target.MonthYear == monthYear {
			targets = append(targets, target)
		}
	}
	return targets, nil
}

func seedSale(store *memStore, salesmanID uint, createdAt time.Time, qty int, total, ganji money.Money) uint {
	store.nextSaleID++
	id := store.nextSaleID
	store.sales[id] = models.Sale{
		ID:          id,
		ShopID:      1,
		SalesmanID:  &salesmanID,
		Quantity:    qty,
		TotalAmount: total,
		Ganji:       ganji,
		CreatedAt:   createdAt,
	}
	return id
}

func seedCommission(store *memStore, salesmanID, saleID uint, createdAt time.Time, amount money.Money, status string) {
	store.nextCommID++
	store.commissions[store.nextCommID] = models.Commission{
		ID:         store.nextCommID,
		SaleID:     saleID,
		SalesmanID: salesmanID,
		Amount:     amount,
		Status:     status,
		CreatedAt:  createdAt,
	}
}

func TestMonthlySummary(t *testing.T) {
	store := newMemStore()
	salesman := uint(2)
	inMonth := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	outOfMonth := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	s1 := seedSale(store, salesman, inMonth, 2, money.New(2000000), money.New(400000))
	s2 := seedSale(store, salesman, inMonth.AddDate(0, 0, 5), 1, money.New(500000), money.New(100000))
	s3 := seedSale(store, salesman, outOfMonth, 1, money.New(900000), money.New(90000))

	seedCommission(store, salesman, s1, inMonth, money.New(20000), string(models.CommissionPending))
	seedCommission(store, salesman, s2, inMonth.AddDate(0, 0, 5), money.New(5000), string(models.CommissionPaid))
	// Cancelled commissions never count toward the period total.
	seedCommission(store, salesman, s2, inMonth, money.New(99999), string(models.CommissionCancelled))
	seedCommission(store, salesman, s3, outOfMonth, money.New(4500), string(models.CommissionPending))

	targets := &fakeTargetRepo{targets: map[string]models.Target{
		"2|2026-03": {ShopID: 1, SalesmanID: salesman, MonthYear: "2026-03", RevenueTarget: money.New(5000000), UnitTarget: 10},
	}}

	svc := NewPerformanceService(store, commissionRepoView{store}, targets)
	summary, err := svc.MonthlySummary(salesman, "2026-03")
	require.NoError(t, err)

	assert.Equal(t, "2500000.00", summary.Revenue.String())
	assert.Equal(t, "500000.00", summary.Ganji.String())
	assert.Equal(t, 3, summary.Units)
	assert.Equal(t, int64(2), summary.SaleCount)
	assert.Equal(t, "25000.00", summary.CommissionTotal.String())
	assert.Equal(t, "5000000.00", summary.RevenueTarget.String())
	assert.Equal(t, 10, summary.UnitTarget)
	// 2,500,000 of 5,000,000.
	assert.True(t, summary.AchievementPct.Equal(decimal.NewFromInt(50)), "got %s", summary.AchievementPct)
}

func TestMonthlySummaryWithoutTarget(t *testing.T) {
	store := newMemStore()
	salesman := uint(2)
	seedSale(store, salesman, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), 1, money.New(100000), money.New(20000))

	svc := NewPerformanceService(store, commissionRepoView{store}, &fakeTargetRepo{})
	summary, err := svc.MonthlySummary(salesman, "2026-03")
	require.NoError(t, err)

	assert.Equal(t, "100000.00", summary.Revenue.String())
	assert.True(t, summary.RevenueTarget.IsZero())
	assert.True(t, summary.AchievementPct.IsZero())
}

func TestShopMonthlySummaries(t *testing.T) {
	store := newMemStore()
	month := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	seedSale(store, 2, month, 1, money.New(2000000), money.New(400000))
	seedSale(store, 4, month, 2, money.New(1000000), money.New(200000))

	targets := &fakeTargetRepo{targets: map[string]models.Target{
		"2|2026-03": {ShopID: 1, SalesmanID: 2, MonthYear: "2026-03", RevenueTarget: money.New(4000000), UnitTarget: 5},
		"4|2026-03": {ShopID: 1, SalesmanID: 4, MonthYear: "2026-03", RevenueTarget: money.New(2000000), UnitTarget: 5},
		"9|2026-03": {ShopID: 7, SalesmanID: 9, MonthYear: "2026-03", RevenueTarget: money.New(1000000), UnitTarget: 5},
	}}

	svc := NewPerformanceService(store, commissionRepoView{store}, targets)
	summaries, err := svc.ShopMonthlySummaries(1, "2026-03")
	require.NoError(t, err)

	// Only the shop's own targeted salesmen appear.
	require.Len(t, summaries, 2)
	bySalesman := map[uint]PerformanceSummary{}
	for _, s := range summaries {
		bySalesman[s.SalesmanID] = s
	}
	require.Contains(t, bySalesman, uint(2))
	require.Contains(t, bySalesman, uint(4))
	assert.Equal(t, "2000000.00", bySalesman[2].Revenue.String())
	assert.True(t, bySalesman[2].AchievementPct.Equal(decimal.NewFromInt(50)))
	assert.True(t, bySalesman[4].AchievementPct.Equal(decimal.NewFromInt(50)))

	_, err = svc.ShopMonthlySummaries(1, "bad-month")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "month")
}

func TestMonthlySummaryRejectsBadMonth(t *testing.T) {
	svc := NewPerformanceService(newMemStore(), commissionRepoView{newMemStore()}, &fakeTargetRepo{})

	_, err := svc.MonthlySummary(2, "March 2026")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "month")
}
