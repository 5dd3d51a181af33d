package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/plugins/audit"
)

const (
	// defaultPriority is used when a request leaves priority blank. Lower
	// priorities are applied first.
	defaultPriority = 100

	maxNameLength = 120
)

// RuleService handles business logic for pricing rules.
type RuleService interface {
	Create(ctx context.Context, actor audit.Actor, req RuleRequest) (*Rule, error)
	GetByID(ctx context.Context, id string) (*Rule, error)

	// Update replaces every editable field of the rule.
	Update(ctx context.Context, actor audit.Actor, id string, req RuleRequest) (*Rule, error)

	SetActive(ctx context.Context, actor audit.Actor, id string, active bool) (*Rule, error)
	Delete(ctx context.Context, actor audit.Actor, id string) error
	List(ctx context.Context, st *listing.ViewState) (listing.Page[Rule], error)
}

type ruleService struct {
	repo  RuleRepository
	audit audit.AuditService
	now   func() time.Time
}

// NewRuleService creates a pricing rule service. auditSvc may be nil.
func NewRuleService(repo RuleRepository, auditSvc audit.AuditService) RuleService {
	return &ruleService{repo: repo, audit: auditSvc, now: time.Now}
}

// validate checks req and copies it onto rule. Amount fields that do not
// belong to the chosen method are dropped.
func (req RuleRequest) validate(rule *Rule) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperror.NewValidation("rule name is required")
	}
	if len(name) > maxNameLength {
		return apperror.NewValidation(fmt.Sprintf("rule name must be at most %d characters", maxNameLength))
	}

	ruleType := RuleType(strings.TrimSpace(req.RuleType))
	if !oneOf(ruleType, RuleTypes) {
		return apperror.NewValidation("unknown rule type: " + req.RuleType)
	}
	condition := ConditionType(strings.TrimSpace(req.ConditionType))
	if !oneOf(condition, ConditionTypes) {
		return apperror.NewValidation("unknown condition type: " + req.ConditionType)
	}
	method := Method(strings.TrimSpace(req.CalculationMethod))
	if !oneOf(method, Methods) {
		return apperror.NewValidation("unknown calculation method: " + req.CalculationMethod)
	}
	appliesTo := AppliesTo(strings.TrimSpace(req.AppliesTo))
	if appliesTo == "" {
		appliesTo = AppliesTotal
	}
	if !oneOf(appliesTo, AppliesToValues) {
		return apperror.NewValidation("unknown price part: " + req.AppliesTo)
	}

	base, rate := req.BaseAmount, req.PercentageRate
	switch method {
	case MethodPercentage:
		if rate == nil || *rate <= 0 || *rate > 100 {
			return apperror.NewValidation("percentage rules need a rate between 0 and 100")
		}
		base = nil
	default:
		if base == nil || *base < 0 {
			return apperror.NewValidation("this calculation method needs a non-negative amount")
		}
		rate = nil
	}
	if (req.MinAmount != nil && *req.MinAmount < 0) || (req.MaxAmount != nil && *req.MaxAmount < 0) {
		return apperror.NewValidation("minimum and maximum amounts cannot be negative")
	}
	if req.MinAmount != nil && req.MaxAmount != nil && *req.MinAmount > *req.MaxAmount {
		return apperror.NewValidation("minimum amount cannot exceed maximum amount")
	}

	var conditionValues json.RawMessage
	if len(req.ConditionValues) > 0 && string(req.ConditionValues) != "null" {
		var obj map[string]any
		if err := json.Unmarshal(req.ConditionValues, &obj); err != nil {
			return apperror.NewValidation("condition values must be a JSON object")
		}
		conditionValues = req.ConditionValues
	}

	priority := defaultPriority
	if req.Priority != nil {
		if *req.Priority < 0 {
			return apperror.NewValidation("priority cannot be negative")
		}
		priority = *req.Priority
	}

	rule.Name = name
	rule.RuleType = ruleType
	rule.ConditionType = condition
	rule.ConditionValues = conditionValues
	rule.CalculationMethod = method
	rule.BaseAmount = base
	rule.PercentageRate = rate
	rule.MinAmount = req.MinAmount
	rule.MaxAmount = req.MaxAmount
	rule.Priority = priority
	rule.Description = strings.TrimSpace(req.Description)
	rule.AppliesTo = appliesTo
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	return nil
}

func (s *ruleService) Create(ctx context.Context, actor audit.Actor, req RuleRequest) (*Rule, error) {
	now := s.now().UTC()
	rule := &Rule{ID: uuid.NewString(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := req.validate(rule); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, asAppError(err)
	}

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionPricingRuleCreated,
		EntityType: audit.EntityPricing,
		EntityID:   rule.ID,
		New:        snapshot(rule),
	})

	slog.Info("pricing rule created",
		slog.String("rule_id", rule.ID),
		slog.String("rule_name", rule.Name),
	)
	return rule, nil
}

func (s *ruleService) GetByID(ctx context.Context, id string) (*Rule, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.NewBadRequest("pricing rule ID is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ruleService) Update(ctx context.Context, actor audit.Actor, id string, req RuleRequest) (*Rule, error) {
	rule, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := snapshot(rule)

	if err := req.validate(rule); err != nil {
		return nil, err
	}
	rule.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, asAppError(err)
	}

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionPricingRuleUpdated,
		EntityType: audit.EntityPricing,
		EntityID:   rule.ID,
		Previous:   prev,
		New:        snapshot(rule),
	})
	return rule, nil
}

func (s *ruleService) SetActive(ctx context.Context, actor audit.Actor, id string, active bool) (*Rule, error) {
	rule, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule.IsActive == active {
		return rule, nil
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, apperror.NewInternal(err)
	}
	rule.IsActive = active

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionPricingRuleUpdated,
		EntityType: audit.EntityPricing,
		EntityID:   id,
		Previous:   map[string]any{"is_active": !active},
		New:        map[string]any{"is_active": active},
	})
	return rule, nil
}

func (s *ruleService) Delete(ctx context.Context, actor audit.Actor, id string) error {
	rule, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return asAppError(err)
	}

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionPricingRuleDeleted,
		EntityType: audit.EntityPricing,
		EntityID:   id,
		Previous:   snapshot(rule),
	})

	slog.Info("pricing rule deleted", slog.String("rule_id", id))
	return nil
}

func (s *ruleService) List(ctx context.Context, st *listing.ViewState) (listing.Page[Rule], error) {
	items, err := s.repo.List(ctx, st.Filters)
	if err != nil {
		return listing.Page[Rule]{}, apperror.NewInternal(fmt.Errorf("listing pricing rules: %w", err))
	}
	return listing.PaginateView(items, st), nil
}

// asAppError keeps repository AppErrors (duplicate names) and wraps the rest.
func asAppError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewInternal(err)
}

// snapshot is the audit view of a rule.
func snapshot(r *Rule) map[string]any {
	out := map[string]any{
		"rule_name":          r.Name,
		"rule_type":          string(r.RuleType),
		"condition_type":     string(r.ConditionType),
		"calculation_method": string(r.CalculationMethod),
		"priority":           r.Priority,
		"applies_to":         string(r.AppliesTo),
		"is_active":          r.IsActive,
	}
	if r.BaseAmount != nil {
		out["base_amount"] = *r.BaseAmount
	}
	if r.PercentageRate != nil {
		out["percentage_rate"] = *r.PercentageRate
	}
	return out
}
