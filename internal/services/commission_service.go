package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shop_manager/internal/models"
	"shop_manager/internal/money"
	"shop_manager/internal/redis"
	"shop_manager/internal/repository"
)

type CommissionService interface {
	// Evaluate applies a rule to a basis amount and returns the payable
	// commission and the effective rate. A nil or inactive rule, a negative
	// basis or an unmatched tier all yield zero commission and no error;
	// commission is optional and never blocks a sale.
	Evaluate(rule *models.CommissionRule, basis money.Money) (money.Money, decimal.Decimal, error)
	// ActiveRuleForShop returns the shop's active rule, or nil when none is
	// configured. Lookups are served from the Redis cache when possible.
	ActiveRuleForShop(shopID uint) (*models.CommissionRule, error)

	CreateRule(rule *models.CommissionRule) error
	UpdateRule(rule *models.CommissionRule) error
	GetRuleByID(id uint) (*models.CommissionRule, error)
	GetRulesByShop(shopID uint) ([]models.CommissionRule, error)

	GetCommissionsBySalesman(salesmanID uint) ([]models.Commission, error)
	GetCommissionsBySale(saleID uint) ([]models.Commission, error)
	// UpdateCommissionStatus performs the pending→paid / pending→cancelled
	// transition. Any other transition is rejected.
	UpdateCommissionStatus(id uint, status string) error
}

type commissionService struct {
	ruleRepo       repository.CommissionRuleRepository
	commissionRepo repository.CommissionRepository
	cache          *redis.Client
	cacheTTL       time.Duration
	logger         *zap.Logger
}

func NewCommissionService(
	ruleRepo repository.CommissionRuleRepository,
	commissionRepo repository.CommissionRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger *zap.Logger,
) CommissionService {
	return &commissionService{
		ruleRepo:       ruleRepo,
		commissionRepo: commissionRepo,
		cache:          cache,
		cacheTTL:       cacheTTL,
		logger:         logger,
	}
}

// Evaluate rates the whole basis at a single bracket. Tier selection is a
// lookup, not progressive accumulation: a 6,000 basis against tiers
// [0,1000)@3 / [1000,5000)@5 / [5000,∞)@7 pays 7% of 6,000, not a sum of
// per-bracket slices. Lower bounds are inclusive, upper bounds exclusive.
func (s *commissionService) Evaluate(rule *models.CommissionRule, basis money.Money) (money.Money, decimal.Decimal, error) {
	if rule == nil || !rule.IsActive {
		return money.Zero(), decimal.Zero, nil
	}
	if basis.IsNegative() {
		return money.Zero(), decimal.Zero, nil
	}

	switch models.CommissionRuleType(rule.Type) {
	case models.RuleFlat:
		// Flat rules carry an absolute amount in BaseRate, not a percentage.
		return money.FromDecimal(rule.BaseRate), decimal.Zero, nil
	case models.RulePercentage:
		return basis.Percent(rule.BaseRate), rule.BaseRate, nil
	case models.RuleTiered:
		tiers, err := orderedTiers(rule)
		if err != nil {
			return money.Zero(), decimal.Zero, err
		}
		for _, tier := range tiers {
			if basis.Cmp(tier.MinAmount) < 0 {
				continue
			}
			if tier.MaxAmount.Valid && basis.Decimal().Cmp(tier.MaxAmount.Decimal) >= 0 {
				continue
			}
			return basis.Percent(tier.RatePercentage), tier.RatePercentage, nil
		}
		// Contiguous-from-zero tiers always match a non-negative basis; an
		// unmatched basis means the chain was bounded and the basis exceeds it.
		return money.Zero(), decimal.Zero, nil
	default:
		return money.Zero(), decimal.Zero, &RuleEvaluationError{RuleID: rule.ID, Reason: fmt.Sprintf("unknown rule type %q", rule.Type)}
	}
}

// orderedTiers validates and returns the tier chain in ascending order. The
// chain must start at zero, be contiguous and non-overlapping, and only the
// last tier may be unbounded.
func orderedTiers(rule *models.CommissionRule) ([]models.CommissionTier, error) {
	if len(rule.Tiers) == 0 {
		return nil, &RuleEvaluationError{RuleID: rule.ID, Reason: "tiered rule has no tiers"}
	}

	tiers := make([]models.CommissionTier, len(rule.Tiers))
	copy(tiers, rule.Tiers)
	for i := 0; i < len(tiers); i++ {
		for j := i + 1; j < len(tiers); j++ {
			if tiers[j].MinAmount.Cmp(tiers[i].MinAmount) < 0 {
				tiers[i], tiers[j] = tiers[j], tiers[i]
			}
		}
	}

	if !tiers[0].MinAmount.IsZero() {
		return nil, &RuleEvaluationError{RuleID: rule.ID, Reason: "first tier must start at 0"}
	}
	for i, tier := range tiers {
		if tier.RatePercentage.IsNegative() {
			return nil, &RuleEvaluationError{RuleID: rule.ID, Reason: "tier rate must not be negative"}
		}
		last := i == len(tiers)-1
		if !tier.MaxAmount.Valid {
			if !last {
				return nil, &RuleEvaluationError{RuleID: rule.ID, Reason: "only the last tier may be unbounded"}
			}
			continue
		}
		if tier.MaxAmount.Decimal.Cmp(tier.MinAmount.Decimal()) <= 0 {
			return nil, &RuleEvaluationError{RuleID: rule.ID, Reason: "tier max must exceed its min"}
		}
		if !last {
			next := tiers[i+1]
			if !next.MinAmount.Decimal().Equal(tier.MaxAmount.Decimal) {
				return nil, &RuleEvaluationError{RuleID: rule.ID, Reason: "tiers must be contiguous without gaps or overlaps"}
			}
		}
	}
	return tiers, nil
}

func (s *commissionService) ActiveRuleForShop(shopID uint) (*models.CommissionRule, error) {
	if s.cache != nil {
		rule, err := s.cache.GetActiveRule(shopID)
		if err == nil {
			return rule, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("commission rule cache read failed", zap.Uint("shop_id", shopID), zap.Error(err))
		}
	}

	rule, err := s.ruleRepo.GetActiveByShop(shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetActiveRule(shopID, rule, s.cacheTTL); err != nil {
			s.logger.Warn("commission rule cache write failed", zap.Uint("shop_id", shopID), zap.Error(err))
		}
	}
	return rule, nil
}

func (s *commissionService) CreateRule(rule *models.CommissionRule) error {
	if err := s.validateRule(rule); err != nil {
		return err
	}
	if err := s.ruleRepo.Create(rule); err != nil {
		return &PersistenceError{Op: "create commission rule", Err: err}
	}
	s.invalidateRuleCache(rule.ShopID)
	return nil
}

func (s *commissionService) UpdateRule(rule *models.CommissionRule) error {
	if err := s.validateRule(rule); err != nil {
		return err
	}
	if err := s.ruleRepo.Update(rule); err != nil {
		return &PersistenceError{Op: "update commission rule", Err: err}
	}
	s.invalidateRuleCache(rule.ShopID)
	return nil
}

func (s *commissionService) validateRule(rule *models.CommissionRule) error {
	verr := newValidationError()
	if rule.ShopID == 0 {
		verr.add("shop_id", "is required")
	}
	if rule.Name == "" {
		verr.add("name", "is required")
	}
	switch models.CommissionRuleType(rule.Type) {
	case models.RuleFlat, models.RulePercentage:
		if rule.BaseRate.IsNegative() {
			verr.add("base_rate", "must not be negative")
		}
	case models.RuleTiered:
		if _, err := orderedTiers(rule); err != nil && !verr.hasErrors() {
			return err
		}
	default:
		verr.add("type", "must be flat, percentage or tiered")
	}
	if verr.hasErrors() {
		return verr
	}
	return nil
}

func (s *commissionService) invalidateRuleCache(shopID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateActiveRule(shopID); err != nil {
		s.logger.Warn("commission rule cache invalidation failed", zap.Uint("shop_id", shopID), zap.Error(err))
	}
}

func (s *commissionService) GetRuleByID(id uint) (*models.CommissionRule, error) {
	return s.ruleRepo.GetByID(id)
}

func (s *commissionService) GetRulesByShop(shopID uint) ([]models.CommissionRule, error) {
	return s.ruleRepo.GetByShop(shopID)
}

func (s *commissionService) GetCommissionsBySalesman(salesmanID uint) ([]models.Commission, error) {
	return s.commissionRepo.GetBySalesman(salesmanID)
}

func (s *commissionService) GetCommissionsBySale(saleID uint) ([]models.Commission, error) {
	return s.commissionRepo.GetBySale(saleID)
}

func (s *commissionService) UpdateCommissionStatus(id uint, status string) error {
	if status != string(models.CommissionPaid) && status != string(models.CommissionCancelled) {
		verr := newValidationError()
		verr.add("status", "must be paid or cancelled")
		return verr
	}
	commission, err := s.commissionRepo.GetByID(id)
	if err != nil {
		return err
	}
	if commission.Status != string(models.CommissionPending) {
		verr := newValidationError()
		verr.add("status", fmt.Sprintf("cannot transition from %s", commission.Status))
		return verr
	}
	return s.commissionRepo.UpdateStatus(id, status)
}
