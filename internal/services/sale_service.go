package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shop_manager/internal/models"
	"shop_manager/internal/money"
	"shop_manager/internal/redis"
	"shop_manager/internal/repository"
)

const (
	BasisProfit  = "profit"
	BasisRevenue = "revenue"

	RetentionSoft = "soft"
	RetentionHard = "hard"
)

// CatalogProduct is the contract surface of the catalog collaborator. Only the
// fields settlement falls back on are exposed.
type CatalogProduct struct {
	ID    uint
	Name  string
	Price money.Money
}

// Catalog resolves an optional product reference when the request omits an
// explicit product name. It is an external collaborator; settlement never
// writes to it.
type Catalog interface {
	GetProduct(id uint) (*CatalogProduct, error)
}

// CreateSaleRequest is the single validated input of the create path. It is
// bound once from the HTTP payload and not mutated afterwards.
type CreateSaleRequest struct {
	ShopID     uint  `json:"shop_id"`
	SalesmanID *uint `json:"salesman_id"`

	ProductID   *uint  `json:"product_id"`
	ProductName string `json:"product_name"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`

	Quantity     int         `json:"quantity"`
	SellingPrice money.Money `json:"selling_price"`
	CostPrice    money.Money `json:"cost_price"`
	Offers       money.Money `json:"offers"`

	HasWarranty    bool   `json:"has_warranty"`
	WarrantyMonths int    `json:"warranty_months"`
	DeviceColor    string `json:"device_color"`
	DeviceStorage  string `json:"device_storage"`
	IMEI           string `json:"imei"`
}

// UpdateSaleRequest carries partial changes; nil means "leave unchanged".
type UpdateSaleRequest struct {
	ProductName   *string `json:"product_name"`
	CustomerName  *string `json:"customer_name"`
	CustomerPhone *string `json:"customer_phone"`
	CustomerEmail *string `json:"customer_email"`

	Quantity     *int         `json:"quantity"`
	SellingPrice *money.Money `json:"selling_price"`
	CostPrice    *money.Money `json:"cost_price"`
	Offers       *money.Money `json:"offers"`

	HasWarranty    *bool `json:"has_warranty"`
	WarrantyMonths *int  `json:"warranty_months"`
}

// SaleView is the read model handed to consumers: the persisted sale plus all
// derived fields, so no caller ever recomputes business logic.
type SaleView struct {
	models.Sale
	WarrantyStatus string             `json:"warranty_status,omitempty"`
	Commission     *models.Commission `json:"commission,omitempty"`
}

type SaleService interface {
	CreateSale(req *CreateSaleRequest) (*SaleView, error)
	UpdateSale(id uint, req *UpdateSaleRequest) (*SaleView, error)
	DeleteSale(id uint) error

	GetSale(id uint) (*SaleView, error)
	GetSalesByShop(shopID uint) ([]SaleView, error)
	GetSalesBySalesman(salesmanID uint) ([]SaleView, error)
	GetSalesByDateRange(shopID uint, start, end time.Time) ([]SaleView, error)
}

type saleService struct {
	saleRepo          repository.SaleRepository
	commissionRepo    repository.CommissionRepository
	userRepo          repository.UserRepository
	commissionService CommissionService
	catalog           Catalog
	dispatcher        *Dispatcher
	cache             *redis.Client
	cacheTTL          time.Duration
	basis             string
	retention         string
	logger            *zap.Logger
	now               func() time.Time
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	commissionRepo repository.CommissionRepository,
	userRepo repository.UserRepository,
	commissionService CommissionService,
	catalog Catalog,
	dispatcher *Dispatcher,
	cache *redis.Client,
	cacheTTL time.Duration,
	basis string,
	retention string,
	logger *zap.Logger,
) SaleService {
	if basis != BasisRevenue {
		basis = BasisProfit
	}
	if retention != RetentionHard {
		retention = RetentionSoft
	}
	return &saleService{
		saleRepo:          saleRepo,
		commissionRepo:    commissionRepo,
		userRepo:          userRepo,
		commissionService: commissionService,
		catalog:           catalog,
		dispatcher:        dispatcher,
		cache:             cache,
		cacheTTL:          cacheTTL,
		basis:             basis,
		retention:         retention,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *saleService) CreateSale(req *CreateSaleRequest) (*SaleView, error) {
	productName, err := s.resolveProductName(req)
	if err != nil {
		return nil, err
	}
	if err := s.validateCreate(req, productName); err != nil {
		return nil, err
	}

	totalAmount := req.SellingPrice.MulQty(req.Quantity)
	ganji := req.SellingPrice.Sub(req.CostPrice).MulQty(req.Quantity).Sub(req.Offers)

	sale := &models.Sale{
		ReferenceNumber: uuid.NewString(),
		ShopID:          req.ShopID,
		SalesmanID:      req.SalesmanID,
		ProductID:       req.ProductID,
		ProductName:     productName,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Quantity:        req.Quantity,
		SellingPrice:    req.SellingPrice,
		CostPrice:       req.CostPrice,
		Offers:          req.Offers,
		TotalAmount:     totalAmount,
		Ganji:           ganji,
	}

	if req.HasWarranty {
		now := s.now()
		expiry := ExpiryFrom(now, req.WarrantyMonths)
		sale.HasWarranty = true
		sale.WarrantyMonths = req.WarrantyMonths
		sale.WarrantyStart = &now
		sale.WarrantyEnd = &expiry
		sale.WarrantyDetails = &models.WarrantyDetails{
			Version:       models.WarrantyDetailsVersion,
			DeviceName:    productName,
			Color:         req.DeviceColor,
			Storage:       req.DeviceStorage,
			IMEI:          req.IMEI,
			CustomerEmail: req.CustomerEmail,
			Price:         req.SellingPrice,
		}
	}

	commission, err := buildCommission(s.commissionService, req.ShopID, req.SalesmanID, s.basis, totalAmount, ganji)
	if err != nil {
		return nil, err
	}

	if err := s.saleRepo.CreateSettlement(sale, commission); err != nil {
		return nil, &PersistenceError{Op: "create sale", Err: err}
	}

	// Post-commit side effects only; neither may fail the settled sale.
	s.cacheSale(sale)
	if s.dispatcher != nil {
		s.dispatcher.DispatchSaleReceipt(sale)
	}

	return &SaleView{Sale: *sale, WarrantyStatus: sale.WarrantyStatusAt(s.now()), Commission: commission}, nil
}

func (s *saleService) resolveProductName(req *CreateSaleRequest) (string, error) {
	if req.ProductName != "" {
		return req.ProductName, nil
	}
	if req.ProductID == nil || s.catalog == nil {
		return "", nil
	}
	product, err := s.catalog.GetProduct(*req.ProductID)
	if err != nil {
		verr := newValidationError()
		verr.add("product_id", "unknown product")
		return "", verr
	}
	return product.Name, nil
}

func (s *saleService) validateCreate(req *CreateSaleRequest, productName string) error {
	verr := newValidationError()
	if req.ShopID == 0 {
		verr.add("shop_id", "is required")
	}
	if req.CustomerName == "" {
		verr.add("customer_name", "is required")
	}
	if productName == "" {
		verr.add("product_name", "either product_name or a valid product_id is required")
	}
	if req.Quantity < 1 {
		verr.add("quantity", "must be at least 1")
	}
	if req.SellingPrice.IsNegative() {
		verr.add("selling_price", "must not be negative")
	}
	if req.CostPrice.IsNegative() {
		verr.add("cost_price", "must not be negative")
	}
	if req.Offers.IsNegative() {
		verr.add("offers", "must not be negative")
	}
	if req.HasWarranty && req.WarrantyMonths < 0 {
		verr.add("warranty_months", "must not be negative")
	}
	// Attribution stays optional: walk-in and manual sales have no salesman.
	if req.SalesmanID != nil {
		if err := validateSalesman(s.userRepo, *req.SalesmanID, req.ShopID, verr); err != nil {
			return err
		}
	}
	if verr.hasErrors() {
		return verr
	}
	return nil
}

func (s *saleService) UpdateSale(id uint, req *UpdateSaleRequest) (*SaleView, error) {
	sale, err := s.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.ProductName != nil {
		sale.ProductName = *req.ProductName
	}
	if req.CustomerName != nil {
		sale.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		sale.CustomerPhone = *req.CustomerPhone
	}
	if req.CustomerEmail != nil {
		sale.CustomerEmail = *req.CustomerEmail
	}

	basisChanged := false
	if req.Quantity != nil {
		sale.Quantity = *req.Quantity
		basisChanged = true
	}
	if req.SellingPrice != nil {
		sale.SellingPrice = *req.SellingPrice
		basisChanged = true
	}
	if req.CostPrice != nil {
		sale.CostPrice = *req.CostPrice
		basisChanged = true
	}
	if req.Offers != nil {
		sale.Offers = *req.Offers
		basisChanged = true
	}

	if err := s.validateUpdate(sale, req); err != nil {
		return nil, err
	}

	// Derived fields are always recomputed from the merged commercial fields;
	// a field-merge write that skips this is how totals drift out of sync.
	if basisChanged {
		sale.TotalAmount = sale.SellingPrice.MulQty(sale.Quantity)
		sale.Ganji = sale.SellingPrice.Sub(sale.CostPrice).MulQty(sale.Quantity).Sub(sale.Offers)
	}

	warrantyChanged := s.applyWarrantyChanges(sale, req)

	commission, cancelPending, err := s.adjustCommission(sale, basisChanged || warrantyChanged)
	if err != nil {
		return nil, err
	}

	if err := s.saleRepo.UpdateSettlement(sale, commission, cancelPending); err != nil {
		return nil, &PersistenceError{Op: "update sale", Err: err}
	}

	s.invalidateSaleCache(sale.ID)
	s.cacheSale(sale)

	return &SaleView{Sale: *sale, WarrantyStatus: sale.WarrantyStatusAt(s.now()), Commission: commission}, nil
}

func (s *saleService) validateUpdate(sale *models.Sale, req *UpdateSaleRequest) error {
	verr := newValidationError()
	if sale.CustomerName == "" {
		verr.add("customer_name", "is required")
	}
	if sale.ProductName == "" {
		verr.add("product_name", "is required")
	}
	if sale.Quantity < 1 {
		verr.add("quantity", "must be at least 1")
	}
	if sale.SellingPrice.IsNegative() {
		verr.add("selling_price", "must not be negative")
	}
	if sale.CostPrice.IsNegative() {
		verr.add("cost_price", "must not be negative")
	}
	if sale.Offers.IsNegative() {
		verr.add("offers", "must not be negative")
	}
	if req.WarrantyMonths != nil && *req.WarrantyMonths < 0 {
		verr.add("warranty_months", "must not be negative")
	}
	// Months were zeroed when the warranty was last disabled, so re-enabling
	// must state them explicitly.
	if req.HasWarranty != nil && *req.HasWarranty && !sale.HasWarranty && req.WarrantyMonths == nil {
		verr.add("warranty_months", "is required when enabling a warranty")
	}
	if verr.hasErrors() {
		return verr
	}
	return nil
}

// applyWarrantyChanges merges the warranty facet. Disabling a warranty clears
// every derived field so no stale snapshot survives; enabling one derives a
// fresh facet from now.
func (s *saleService) applyWarrantyChanges(sale *models.Sale, req *UpdateSaleRequest) bool {
	changed := false

	if req.HasWarranty != nil && *req.HasWarranty != sale.HasWarranty {
		changed = true
		if !*req.HasWarranty {
			sale.HasWarranty = false
			sale.WarrantyMonths = 0
			sale.WarrantyStart = nil
			sale.WarrantyEnd = nil
			sale.WarrantyDetails = nil
		} else {
			months := sale.WarrantyMonths
			if req.WarrantyMonths != nil {
				months = *req.WarrantyMonths
			}
			now := s.now()
			expiry := ExpiryFrom(now, months)
			sale.HasWarranty = true
			sale.WarrantyMonths = months
			sale.WarrantyStart = &now
			sale.WarrantyEnd = &expiry
			sale.WarrantyDetails = &models.WarrantyDetails{
				Version:       models.WarrantyDetailsVersion,
				DeviceName:    sale.ProductName,
				Color:         "",
				Storage:       "",
				IMEI:          "",
				CustomerEmail: sale.CustomerEmail,
				Price:         sale.SellingPrice,
			}
		}
	} else if req.WarrantyMonths != nil && sale.HasWarranty && *req.WarrantyMonths != sale.WarrantyMonths {
		// Re-derive the expiry from the original start; the snapshot stays
		// untouched since it is a point-in-time record.
		changed = true
		sale.WarrantyMonths = *req.WarrantyMonths
		start := s.now()
		if sale.WarrantyStart != nil {
			start = *sale.WarrantyStart
		}
		expiry := ExpiryFrom(start, sale.WarrantyMonths)
		sale.WarrantyEnd = &expiry
	}

	return changed
}

// adjustCommission re-runs the evaluator after a basis-affecting change and
// reconciles the pending commission: update it in place, create one when a
// rule now applies, or cancel it when nothing is payable anymore. Paid
// commissions are never touched.
func (s *saleService) adjustCommission(sale *models.Sale, recompute bool) (*models.Commission, bool, error) {
	if !recompute {
		return nil, false, nil
	}
	if sale.SalesmanID == nil {
		return nil, true, nil
	}

	rule, err := s.commissionService.ActiveRuleForShop(sale.ShopID)
	if err != nil {
		return nil, false, err
	}
	basis := commissionBasis(s.basis, sale.TotalAmount, sale.Ganji)
	amount, rate, err := s.commissionService.Evaluate(rule, basis)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.commissionRepo.GetPendingBySale(sale.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if amount.IsZero() {
		return nil, existing != nil, nil
	}

	if existing != nil {
		existing.BasisAmount = basis
		existing.Amount = amount
		existing.RatePercentage = rate
		existing.RuleID = rule.ID
		return existing, false, nil
	}

	return &models.Commission{
		SaleID:         sale.ID,
		SalesmanID:     *sale.SalesmanID,
		RuleID:         rule.ID,
		BasisAmount:    basis,
		Amount:         amount,
		RatePercentage: rate,
		Status:         string(models.CommissionPending),
	}, false, nil
}

func (s *saleService) DeleteSale(id uint) error {
	if _, err := s.saleRepo.GetByID(id); err != nil {
		return err
	}
	if err := s.saleRepo.Delete(id, s.retention == RetentionHard); err != nil {
		return &PersistenceError{Op: "delete sale", Err: err}
	}
	s.invalidateSaleCache(id)
	return nil
}

func (s *saleService) GetSale(id uint) (*SaleView, error) {
	if s.cache != nil {
		if sale, err := s.cache.GetSale(id); err == nil {
			return s.view(sale), nil
		}
	}
	sale, err := s.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.cacheSale(sale)
	return s.view(sale), nil
}

func (s *saleService) GetSalesByShop(shopID uint) ([]SaleView, error) {
	sales, err := s.saleRepo.GetByShop(shopID)
	if err != nil {
		return nil, err
	}
	return s.viewsOf(sales), nil
}

func (s *saleService) GetSalesBySalesman(salesmanID uint) ([]SaleView, error) {
	sales, err := s.saleRepo.GetBySalesman(salesmanID)
	if err != nil {
		return nil, err
	}
	return s.viewsOf(sales), nil
}

func (s *saleService) GetSalesByDateRange(shopID uint, start, end time.Time) ([]SaleView, error) {
	sales, err := s.saleRepo.GetByDateRange(shopID, start, end)
	if err != nil {
		return nil, err
	}
	return s.viewsOf(sales), nil
}

func (s *saleService) view(sale *models.Sale) *SaleView {
	view := &SaleView{Sale: *sale, WarrantyStatus: sale.WarrantyStatusAt(s.now())}
	if commission, err := s.commissionRepo.GetPendingBySale(sale.ID); err == nil {
		view.Commission = commission
	}
	return view
}

func (s *saleService) viewsOf(sales []models.Sale) []SaleView {
	views := make([]SaleView, 0, len(sales))
	now := s.now()
	for i := range sales {
		views = append(views, SaleView{Sale: sales[i], WarrantyStatus: sales[i].WarrantyStatusAt(now)})
	}
	return views
}

func (s *saleService) cacheSale(sale *models.Sale) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetSale(sale, s.cacheTTL); err != nil {
		s.logger.Warn("sale cache write failed", zap.Uint("sale_id", sale.ID), zap.Error(err))
	}
}

func (s *saleService) invalidateSaleCache(id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSale(id); err != nil {
		s.logger.Warn("sale cache invalidation failed", zap.Uint("sale_id", id), zap.Error(err))
	}
}

func commissionBasis(basis string, totalAmount, ganji money.Money) money.Money {
	if basis == BasisRevenue {
		return totalAmount
	}
	return ganji
}

// buildCommission evaluates the shop's active rule and returns the pending
// commission record, or nil when no commission is payable. A rule
// misconfiguration surfaces as a RuleEvaluationError before any transaction
// starts.
func buildCommission(commissionService CommissionService, shopID uint, salesmanID *uint, basis string, totalAmount, ganji money.Money) (*models.Commission, error) {
	if salesmanID == nil {
		return nil, nil
	}
	rule, err := commissionService.ActiveRuleForShop(shopID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, nil
	}
	basisAmount := commissionBasis(basis, totalAmount, ganji)
	amount, rate, err := commissionService.Evaluate(rule, basisAmount)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, nil
	}
	return &models.Commission{
		SalesmanID:     *salesmanID,
		RuleID:         rule.ID,
		BasisAmount:    basisAmount,
		Amount:         amount,
		RatePercentage: rate,
		Status:         string(models.CommissionPending),
	}, nil
}

// validateSalesman confirms an attributed salesman exists, is active and
// belongs to the shop. Errors land in the field map; a lookup failure other
// than not-found is returned as-is.
func validateSalesman(userRepo repository.UserRepository, salesmanID, shopID uint, verr *ValidationError) error {
	if userRepo == nil {
		return nil
	}
	user, err := userRepo.GetByID(salesmanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verr.add("salesman_id", "unknown salesman")
			return nil
		}
		return err
	}
	if !user.IsActive {
		verr.add("salesman_id", "salesman is inactive")
	}
	if user.ShopID == nil || *user.ShopID != shopID {
		verr.add("salesman_id", "salesman does not belong to this shop")
	}
	return nil
}
