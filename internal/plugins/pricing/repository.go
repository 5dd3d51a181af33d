package pricing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
)

// Rule activity filter values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Fields maps the shared list filters onto the pricing_rules table.
var Fields = listing.FieldMap{
	StatusClauses: map[string]string{
		StatusActive:   "is_active = 1",
		StatusInactive: "is_active = 0",
	},
	SearchColumns: []string{"rule_name", "description"},
	DateColumn:    "created_at",
	SortColumns: map[string]string{
		"created_at": "created_at",
		"priority":   "priority",
		"rule_name":  "rule_name",
		"rule_type":  "rule_type",
	},
	DefaultSort: "priority",
}

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// RuleRepository defines the data access contract for pricing rules.
type RuleRepository interface {
	Create(ctx context.Context, r *Rule) error
	FindByID(ctx context.Context, id string) (*Rule, error)
	Update(ctx context.Context, r *Rule) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f listing.Filters) ([]Rule, error)
}

type ruleRepository struct {
	db         *sql.DB
	translator *listing.Translator
}

// NewRuleRepository creates a new repository backed by the given DB pool.
func NewRuleRepository(db *sql.DB, translator *listing.Translator) RuleRepository {
	return &ruleRepository{db: db, translator: translator}
}

const ruleSelect = `SELECT id, rule_name, rule_type, condition_type, condition_values,
	calculation_method, base_amount, percentage_rate, min_amount, max_amount,
	priority, description, applies_to, is_active, created_at, updated_at
	FROM pricing_rules`

func (r *ruleRepository) Create(ctx context.Context, rule *Rule) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pricing_rules (id, rule_name, rule_type, condition_type, condition_values,
		calculation_method, base_amount, percentage_rate, min_amount, max_amount,
		priority, description, applies_to, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.Name, string(rule.RuleType), string(rule.ConditionType), rawJSON(rule.ConditionValues),
		string(rule.CalculationMethod), rule.BaseAmount, rule.PercentageRate, rule.MinAmount, rule.MaxAmount,
		rule.Priority, rule.Description, string(rule.AppliesTo), rule.IsActive, rule.CreatedAt, rule.UpdatedAt,
	)
	if isDuplicate(err) {
		return apperror.NewConflict("a pricing rule with this name already exists")
	}
	if err != nil {
		return fmt.Errorf("inserting pricing rule: %w", err)
	}
	return nil
}

func (r *ruleRepository) FindByID(ctx context.Context, id string) (*Rule, error) {
	rule, err := scanRule(r.db.QueryRowContext(ctx, ruleSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("pricing rule not found")
	}
	return rule, err
}

func (r *ruleRepository) Update(ctx context.Context, rule *Rule) error {
	// An unchanged row reports zero affected rows, so existence is the
	// caller's check.
	_, err := r.db.ExecContext(ctx,
		`UPDATE pricing_rules SET rule_name = ?, rule_type = ?, condition_type = ?, condition_values = ?,
		calculation_method = ?, base_amount = ?, percentage_rate = ?, min_amount = ?, max_amount = ?,
		priority = ?, description = ?, applies_to = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		rule.Name, string(rule.RuleType), string(rule.ConditionType), rawJSON(rule.ConditionValues),
		string(rule.CalculationMethod), rule.BaseAmount, rule.PercentageRate, rule.MinAmount, rule.MaxAmount,
		rule.Priority, rule.Description, string(rule.AppliesTo), rule.IsActive, rule.UpdatedAt,
		rule.ID,
	)
	if isDuplicate(err) {
		return apperror.NewConflict("a pricing rule with this name already exists")
	}
	if err != nil {
		return fmt.Errorf("updating pricing rule: %w", err)
	}
	return nil
}

func (r *ruleRepository) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pricing_rules SET is_active = ?, updated_at = NOW() WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("switching pricing rule: %w", err)
	}
	return nil
}

func (r *ruleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pricing_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting pricing rule: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("pricing rule not found")
	}
	return nil
}

func (r *ruleRepository) List(ctx context.Context, f listing.Filters) ([]Rule, error) {
	where, args := r.translator.Where(r.translator.Translate(f))
	rows, err := r.db.QueryContext(ctx, ruleSelect+` `+where+` `+r.translator.OrderBy(f)+`, rule_name ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pricing rules: %w", err)
	}
	defer rows.Close()

	out := []Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pricing rules: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(s scanner) (*Rule, error) {
	var rule Rule
	var ruleType, condition, method, appliesTo string
	var conditionValues []byte
	var base, rate, minAmount, maxAmount sql.NullFloat64

	err := s.Scan(&rule.ID, &rule.Name, &ruleType, &condition, &conditionValues,
		&method, &base, &rate, &minAmount, &maxAmount,
		&rule.Priority, &rule.Description, &appliesTo, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning pricing rule: %w", err)
	}

	rule.RuleType = RuleType(ruleType)
	rule.ConditionType = ConditionType(condition)
	rule.CalculationMethod = Method(method)
	rule.AppliesTo = AppliesTo(appliesTo)
	if len(conditionValues) > 0 {
		rule.ConditionValues = conditionValues
	}
	rule.BaseAmount = nullable(base)
	rule.PercentageRate = nullable(rate)
	rule.MinAmount = nullable(minAmount)
	rule.MaxAmount = nullable(maxAmount)
	return &rule, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func rawJSON(v json.RawMessage) any {
	if len(v) == 0 {
		return nil
	}
	return []byte(v)
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
