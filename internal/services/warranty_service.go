package services

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shop_manager/internal/models"
	"shop_manager/internal/money"
	"shop_manager/internal/repository"
)

// ExpiryFrom derives a warranty expiry using calendar months, not fixed-day
// arithmetic: 6 months from Jan 31 lands on Jul 31, not Jan 31 + 180 days.
func ExpiryFrom(start time.Time, months int) time.Time {
	return start.AddDate(0, months, 0)
}

// StatusAt computes the warranty status relative to now. A zero-month warranty
// is expired at its own start instant.
func StatusAt(now, expiry time.Time) string {
	if now.Before(expiry) {
		return models.WarrantyActive
	}
	return models.WarrantyExpired
}

// WarrantyView is the read model: the filing record plus its derived fields,
// recomputed on every read.
type WarrantyView struct {
	models.Warranty
	ExpiryDate time.Time `json:"expiry_date"`
	Status     string    `json:"status"`
}

// FileWarrantyRequest registers a warranty independently of the POS flow.
// Filing always creates one linked sale at the warranty price.
type FileWarrantyRequest struct {
	ShopID         uint        `json:"shop_id"`
	SalesmanID     *uint       `json:"salesman_id"`
	DeviceName     string      `json:"device_name"`
	Color          string      `json:"color"`
	Storage        string      `json:"storage"`
	IMEI           string      `json:"imei"`
	CustomerName   string      `json:"customer_name"`
	CustomerPhone  string      `json:"customer_phone"`
	CustomerEmail  string      `json:"customer_email"`
	Price          money.Money `json:"price"`
	CostPrice      money.Money `json:"cost_price"`
	WarrantyPeriod int         `json:"warranty_period"` // months
}

type WarrantyService interface {
	FileWarranty(req *FileWarrantyRequest) (*WarrantyView, error)
	GetWarranty(id uint) (*WarrantyView, error)
	GetWarrantiesByShop(shopID uint) ([]WarrantyView, error)
	// LookupByIMEI finds the warranty covering a device, the counter flow when
	// a customer walks in with the phone but no receipt.
	LookupByIMEI(imei string) (*WarrantyView, error)
	GetExpiring(shopID uint, days int) ([]WarrantyView, error)
}

type warrantyService struct {
	warrantyRepo      repository.WarrantyRepository
	userRepo          repository.UserRepository
	commissionService CommissionService
	dispatcher        *Dispatcher
	basis             string
	logger            *zap.Logger
	now               func() time.Time
}

func NewWarrantyService(
	warrantyRepo repository.WarrantyRepository,
	userRepo repository.UserRepository,
	commissionService CommissionService,
	dispatcher *Dispatcher,
	basis string,
	logger *zap.Logger,
) WarrantyService {
	return &warrantyService{
		warrantyRepo:      warrantyRepo,
		userRepo:          userRepo,
		commissionService: commissionService,
		dispatcher:        dispatcher,
		basis:             basis,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *warrantyService) FileWarranty(req *FileWarrantyRequest) (*WarrantyView, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	expiry := ExpiryFrom(now, req.WarrantyPeriod)

	warranty := &models.Warranty{
		ReferenceNumber: uuid.NewString(),
		ShopID:          req.ShopID,
		SalesmanID:      req.SalesmanID,
		DeviceName:      req.DeviceName,
		Color:           req.Color,
		Storage:         req.Storage,
		IMEI:            req.IMEI,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Price:           req.Price,
		WarrantyPeriod:  req.WarrantyPeriod,
	}

	// The filing's sale: quantity 1 at the warranty price, carrying the same
	// snapshot the POS flow would embed.
	totalAmount := req.Price.MulQty(1)
	ganji := req.Price.Sub(req.CostPrice).MulQty(1)
	sale := &models.Sale{
		ReferenceNumber: uuid.NewString(),
		ShopID:          req.ShopID,
		SalesmanID:      req.SalesmanID,
		ProductName:     req.DeviceName,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Quantity:        1,
		SellingPrice:    req.Price,
		CostPrice:       req.CostPrice,
		Offers:          money.Zero(),
		TotalAmount:     totalAmount,
		Ganji:           ganji,
		HasWarranty:     true,
		WarrantyMonths:  req.WarrantyPeriod,
		WarrantyStart:   &now,
		WarrantyEnd:     &expiry,
		WarrantyDetails: &models.WarrantyDetails{
			Version:       models.WarrantyDetailsVersion,
			DeviceName:    req.DeviceName,
			Color:         req.Color,
			Storage:       req.Storage,
			IMEI:          req.IMEI,
			CustomerEmail: req.CustomerEmail,
			Price:         req.Price,
		},
	}

	commission, err := buildCommission(s.commissionService, req.ShopID, req.SalesmanID, s.basis, totalAmount, ganji)
	if err != nil {
		return nil, err
	}

	if err := s.warrantyRepo.CreateFiling(warranty, sale, commission); err != nil {
		return nil, &PersistenceError{Op: "file warranty", Err: err}
	}

	if s.dispatcher != nil {
		s.dispatcher.DispatchWarrantyConfirmation(warranty, sale)
	}

	view := s.view(warranty)
	return &view, nil
}

func (s *warrantyService) validate(req *FileWarrantyRequest) error {
	verr := newValidationError()
	if req.ShopID == 0 {
		verr.add("shop_id", "is required")
	}
	if req.DeviceName == "" {
		verr.add("device_name", "is required")
	}
	if req.CustomerName == "" {
		verr.add("customer_name", "is required")
	}
	if req.Price.IsNegative() {
		verr.add("price", "must not be negative")
	}
	if req.CostPrice.IsNegative() {
		verr.add("cost_price", "must not be negative")
	}
	if req.WarrantyPeriod < 0 {
		verr.add("warranty_period", "must not be negative")
	}
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

func (s *warrantyService) GetWarranty(id uint) (*WarrantyView, error) {
	warranty, err := s.warrantyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	view := s.view(warranty)
	return &view, nil
}

func (s *warrantyService) GetWarrantiesByShop(shopID uint) ([]WarrantyView, error) {
	warranties, err := s.warrantyRepo.GetByShop(shopID)
	if err != nil {
		return nil, err
	}
	return s.views(warranties), nil
}

func (s *warrantyService) LookupByIMEI(imei string) (*WarrantyView, error) {
	if imei == "" {
		verr := newValidationError()
		verr.add("imei", "is required")
		return nil, verr
	}
	warranty, err := s.warrantyRepo.GetByIMEI(imei)
	if err != nil {
		return nil, err
	}
	view := s.view(warranty)
	return &view, nil
}

func (s *warrantyService) GetExpiring(shopID uint, days int) ([]WarrantyView, error) {
	if days <= 0 {
		verr := newValidationError()
		verr.add("days", "must be positive")
		return nil, verr
	}
	warranties, err := s.warrantyRepo.GetExpiringWithin(shopID, days, s.now())
	if err != nil {
		return nil, err
	}
	return s.views(warranties), nil
}

func (s *warrantyService) view(warranty *models.Warranty) WarrantyView {
	expiry := warranty.ExpiryDate()
	return WarrantyView{
		Warranty:   *warranty,
		ExpiryDate: expiry,
		Status:     StatusAt(s.now(), expiry),
	}
}

func (s *warrantyService) views(warranties []models.Warranty) []WarrantyView {
	views := make([]WarrantyView, 0, len(warranties))
	for i := range warranties {
		views = append(views, s.view(&warranties[i]))
	}
	return views
}
