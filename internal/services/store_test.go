package services

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"shop_manager/internal/models"
	"shop_manager/internal/money"
	"shop_manager/internal/repository"
)

// memStore is an in-memory stand-in for the gorm repositories. Its atomic
// write methods honor the all-or-nothing contract, and failSettlement forces a
// mid-transaction failure so rollback behavior can be asserted.
type memStore struct {
	mu             sync.Mutex
	sales          map[uint]models.Sale
	commissions    map[uint]models.Commission
	warranties     map[uint]models.Warranty
	nextSaleID     uint
	nextCommID     uint
	nextWarrantyID uint
	failSettlement bool
}

func newMemStore() *memStore {
	return &memStore{
		sales:       make(map[uint]models.Sale),
		commissions: make(map[uint]models.Commission),
		warranties:  make(map[uint]models.Warranty),
	}
}

var errForcedFailure = errors.New("forced storage failure")

func (m *memStore) CreateSettlement(sale *models.Sale, commission *models.Commission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSettlement {
		return errForcedFailure
	}
	m.nextSaleID++
	sale.ID = m.nextSaleID
	sale.CreatedAt = time.Now()
	m.sales[sale.ID] = *sale
	if commission != nil {
		m.nextCommID++
		commission.ID = m.nextCommID
		commission.SaleID = sale.ID
		commission.CreatedAt = time.Now()
		m.commissions[commission.ID] = *commission
	}
	return nil
}

func (m *memStore) UpdateSettlement(sale *models.Sale, commission *models.Commission, cancelPending bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSettlement {
		return errForcedFailure
	}
	m.sales[sale.ID] = *sale
	if cancelPending {
		for id, c := range m.commissions {
			if c.SaleID == sale.ID && c.Status == string(models.CommissionPending) {
				c.Status = string(models.CommissionCancelled)
				m.commissions[id] = c
			}
		}
	}
	if commission != nil {
		if commission.ID == 0 {
			m.nextCommID++
			commission.ID = m.nextCommID
			commission.CreatedAt = time.Now()
		}
		commission.SaleID = sale.ID
		m.commissions[commission.ID] = *commission
	}
	return nil
}

func (m *memStore) Delete(id uint, hard bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sales, id)
	for cid, c := range m.commissions {
		if c.SaleID == id {
			delete(m.commissions, cid)
		}
	}
	for wid, w := range m.warranties {
		if w.SaleID != nil && *w.SaleID == id {
			w.SaleID = nil
			m.warranties[wid] = w
		}
	}
	return nil
}

func (m *memStore) GetByID(id uint) (*models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sale, ok := m.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &sale, nil
}

func (m *memStore) GetByShop(shopID uint) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sales []models.Sale
	for _, s := range m.sales {
		if s.ShopID == shopID {
			sales = append(sales, s)
		}
	}
	return sales, nil
}

func (m *memStore) GetBySalesman(salesmanID uint) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sales []models.Sale
	for _, s := range m.sales {
		if s.SalesmanID != nil && *s.SalesmanID == salesmanID {
			sales = append(sales, s)
		}
	}
	return sales, nil
}

func (m *memStore) GetByDateRange(shopID uint, start, end time.Time) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sales []models.Sale
	for _, s := range m.sales {
		if s.ShopID == shopID && !s.CreatedAt.Before(start) && s.CreatedAt.Before(end) {
			sales = append(sales, s)
		}
	}
	return sales, nil
}

func (m *memStore) TotalsForSalesman(salesmanID uint, start, end time.Time) (*repository.SalesTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := &repository.SalesTotals{Revenue: money.Zero(), Ganji: money.Zero()}
	for _, s := range m.sales {
		if s.SalesmanID == nil || *s.SalesmanID != salesmanID {
			continue
		}
		if s.CreatedAt.Before(start) || !s.CreatedAt.Before(end) {
			continue
		}
		totals.Revenue = totals.Revenue.Add(s.TotalAmount)
		totals.Ganji = totals.Ganji.Add(s.Ganji)
		totals.Units += s.Quantity
		totals.SaleCount++
	}
	return totals, nil
}

// CommissionRepository

func (m *memStore) GetCommissionByID(id uint) (*models.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.commissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (m *memStore) GetPendingBySale(saleID uint) (*models.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.commissions {
		if c.SaleID == saleID && c.Status == string(models.CommissionPending) {
			commission := c
			return &commission, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) GetCommissionsBySalesman(salesmanID uint) ([]models.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var commissions []models.Commission
	for _, c := range m.commissions {
		if c.SalesmanID == salesmanID {
			commissions = append(commissions, c)
		}
	}
	return commissions, nil
}

func (m *memStore) GetCommissionsBySale(saleID uint) ([]models.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var commissions []models.Commission
	for _, c := range m.commissions {
		if c.SaleID == saleID {
			commissions = append(commissions, c)
		}
	}
	return commissions, nil
}

func (m *memStore) UpdateCommissionStatus(id uint, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.commissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Status = status
	m.commissions[id] = c
	return nil
}

func (m *memStore) TotalForSalesmanPeriod(salesmanID uint, start, end time.Time) (money.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := money.Zero()
	for _, c := range m.commissions {
		if c.SalesmanID != salesmanID || c.Status == string(models.CommissionCancelled) {
			continue
		}
		if c.CreatedAt.Before(start) || !c.CreatedAt.Before(end) {
			continue
		}
		total = total.Add(c.Amount)
	}
	return total, nil
}

// WarrantyRepository

func (m *memStore) CreateFiling(warranty *models.Warranty, sale *models.Sale, commission *models.Commission) error {
	m.mu.Lock()
	if m.failSettlement {
		m.mu.Unlock()
		return errForcedFailure
	}
	m.nextWarrantyID++
	warranty.ID = m.nextWarrantyID
	warranty.CreatedAt = time.Now()
	m.warranties[warranty.ID] = *warranty
	m.mu.Unlock()

	sale.WarrantyID = &warranty.ID
	if err := m.CreateSettlement(sale, commission); err != nil {
		return err
	}

	m.mu.Lock()
	w := m.warranties[warranty.ID]
	w.SaleID = &sale.ID
	m.warranties[warranty.ID] = w
	warranty.SaleID = &sale.ID
	m.mu.Unlock()
	return nil
}

func (m *memStore) GetWarrantyByID(id uint) (*models.Warranty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.warranties[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &w, nil
}

func (m *memStore) GetWarrantiesByShop(shopID uint) ([]models.Warranty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var warranties []models.Warranty
	for _, w := range m.warranties {
		if w.ShopID == shopID {
			warranties = append(warranties, w)
		}
	}
	return warranties, nil
}

func (m *memStore) GetWarrantyByIMEI(imei string) (*models.Warranty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.warranties {
		if w.IMEI == imei {
			warranty := w
			return &warranty, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) GetExpiringWithin(shopID uint, days int, now time.Time) ([]models.Warranty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := now.AddDate(0, 0, days)
	var warranties []models.Warranty
	for _, w := range m.warranties {
		expiry := w.ExpiryDate()
		if w.ShopID == shopID && expiry.After(now) && !expiry.After(cutoff) {
			warranties = append(warranties, w)
		}
	}
	return warranties, nil
}

// saleRepoView / commissionRepoView / warrantyRepoView adapt memStore to the
// repository interfaces whose method names differ from the store's.

type commissionRepoView struct{ *memStore }

func (v commissionRepoView) GetByID(id uint) (*models.Commission, error) {
	return v.GetCommissionByID(id)
}

func (v commissionRepoView) GetBySalesman(salesmanID uint) ([]models.Commission, error) {
	return v.GetCommissionsBySalesman(salesmanID)
}

func (v commissionRepoView) GetBySale(saleID uint) ([]models.Commission, error) {
	return v.GetCommissionsBySale(saleID)
}

func (v commissionRepoView) UpdateStatus(id uint, status string) error {
	return v.UpdateCommissionStatus(id, status)
}

type warrantyRepoView struct{ *memStore }

func (v warrantyRepoView) GetByID(id uint) (*models.Warranty, error) {
	return v.GetWarrantyByID(id)
}

func (v warrantyRepoView) GetByShop(shopID uint) ([]models.Warranty, error) {
	return v.GetWarrantiesByShop(shopID)
}

func (v warrantyRepoView) GetByIMEI(imei string) (*models.Warranty, error) {
	return v.GetWarrantyByIMEI(imei)
}

// fakeRuleRepo serves a single preconfigured rule.
type fakeRuleRepo struct {
	rule *models.CommissionRule
}

func (f *fakeRuleRepo) Create(rule *models.CommissionRule) error {
	f.rule = rule
	return nil
}

func (f *fakeRuleRepo) GetByID(id uint) (*models.CommissionRule, error) {
	if f.rule == nil || f.rule.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.rule, nil
}

func (f *fakeRuleRepo) GetActiveByShop(shopID uint) (*models.CommissionRule, error) {
	if f.rule == nil || f.rule.ShopID != shopID || !f.rule.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return f.rule, nil
}

func (f *fakeRuleRepo) GetByShop(shopID uint) ([]models.CommissionRule, error) {
	if f.rule == nil || f.rule.ShopID != shopID {
		return nil, nil
	}
	return []models.CommissionRule{*f.rule}, nil
}

func (f *fakeRuleRepo) Update(rule *models.CommissionRule) error {
	f.rule = rule
	return nil
}

// fakeUserRepo holds a fixed set of users.
type fakeUserRepo struct {
	users map[uint]models.User
}

func (f *fakeUserRepo) Create(user *models.User) error {
	if f.users == nil {
		f.users = make(map[uint]models.User)
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByShop(shopID uint) ([]models.User, error) {
	var users []models.User
	for _, u := range f.users {
		if u.ShopID != nil && *u.ShopID == shopID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) GetAll() ([]models.User, error) {
	var users []models.User
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserRepo) Update(user *models.User) error {
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Delete(id uint) error {
	delete(f.users, id)
	return nil
}

// fakeNotifier records deliveries and optionally always fails.
type fakeNotifier struct {
	mu         sync.Mutex
	fail       bool
	recipients []string
}

func (f *fakeNotifier) Notify(recipient string, data NotificationData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipients = append(f.recipients, recipient)
	if f.fail {
		return errors.New("smtp unreachable")
	}
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recipients)
}
