// Package pricing manages the pricing rule rows the backend's price
// calculation reads. Rules are plain data here: the dashboard creates,
// edits, switches and removes them, and never evaluates them.
package pricing

import (
	"encoding/json"
	"time"
)

// RuleType is what a rule does to a price.
type RuleType string

const (
	RuleBaseRate  RuleType = "base_rate"
	RuleModifier  RuleType = "modifier"
	RuleSurcharge RuleType = "surcharge"
	RuleDiscount  RuleType = "discount"
)

// RuleTypes lists every rule type.
var RuleTypes = []RuleType{RuleBaseRate, RuleModifier, RuleSurcharge, RuleDiscount}

// ConditionType is the job attribute a rule matches on.
type ConditionType string

const (
	ConditionPostcode         ConditionType = "postcode"
	ConditionItemType         ConditionType = "item_type"
	ConditionVolume           ConditionType = "volume"
	ConditionWeight           ConditionType = "weight"
	ConditionAccessDifficulty ConditionType = "access_difficulty"
	ConditionTimeOfDay        ConditionType = "time_of_day"
	ConditionDayOfWeek        ConditionType = "day_of_week"
	ConditionSpecialHandling  ConditionType = "special_handling"
)

// ConditionTypes lists every condition type.
var ConditionTypes = []ConditionType{
	ConditionPostcode, ConditionItemType, ConditionVolume, ConditionWeight,
	ConditionAccessDifficulty, ConditionTimeOfDay, ConditionDayOfWeek, ConditionSpecialHandling,
}

// Method is how a rule's amount is calculated.
type Method string

const (
	MethodFixed      Method = "fixed"
	MethodPercentage Method = "percentage"
	MethodPerUnit    Method = "per_unit"
	MethodTiered     Method = "tiered"
)

// Methods lists every calculation method.
var Methods = []Method{MethodFixed, MethodPercentage, MethodPerUnit, MethodTiered}

// AppliesTo is the part of the price a rule adjusts.
type AppliesTo string

const (
	AppliesTotal     AppliesTo = "total"
	AppliesLabor     AppliesTo = "labor"
	AppliesDisposal  AppliesTo = "disposal"
	AppliesTransport AppliesTo = "transport"
)

// AppliesToValues lists every price part.
var AppliesToValues = []AppliesTo{AppliesTotal, AppliesLabor, AppliesDisposal, AppliesTransport}

func oneOf[T ~string](v T, valid []T) bool {
	for _, x := range valid {
		if v == x {
			return true
		}
	}
	return false
}

// Rule is one pricing rule.
type Rule struct {
	ID                string          `json:"id"`
	Name              string          `json:"rule_name"`
	RuleType          RuleType        `json:"rule_type"`
	ConditionType     ConditionType   `json:"condition_type"`
	ConditionValues   json.RawMessage `json:"condition_values,omitempty"`
	CalculationMethod Method          `json:"calculation_method"`
	BaseAmount        *float64        `json:"base_amount"`
	PercentageRate    *float64        `json:"percentage_rate"`
	MinAmount         *float64        `json:"min_amount"`
	MaxAmount         *float64        `json:"max_amount"`
	Priority          int             `json:"priority"`
	Description       string          `json:"description"`
	AppliesTo         AppliesTo       `json:"applies_to"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Amount renders the rule's amount or rate for display.
func (r *Rule) Amount() string {
	switch {
	case r.CalculationMethod == MethodPercentage && r.PercentageRate != nil:
		return formatRate(*r.PercentageRate)
	case r.BaseAmount != nil:
		return formatGBP(*r.BaseAmount)
	}
	return "—"
}

// --- Request DTOs ---

// RuleRequest creates or replaces a rule.
type RuleRequest struct {
	Name              string          `json:"rule_name"`
	RuleType          string          `json:"rule_type"`
	ConditionType     string          `json:"condition_type"`
	ConditionValues   json.RawMessage `json:"condition_values"`
	CalculationMethod string          `json:"calculation_method"`
	BaseAmount        *float64        `json:"base_amount"`
	PercentageRate    *float64        `json:"percentage_rate"`
	MinAmount         *float64        `json:"min_amount"`
	MaxAmount         *float64        `json:"max_amount"`
	Priority          *int            `json:"priority"`
	Description       string          `json:"description"`
	AppliesTo         string          `json:"applies_to"`
	IsActive          *bool           `json:"is_active"`
}

// ActiveRequest switches a rule on or off.
type ActiveRequest struct {
	IsActive bool `json:"is_active"`
}
