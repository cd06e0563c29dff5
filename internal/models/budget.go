package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetType classifies a budget window by expected income conditions.
type BudgetType string

const (
	BudgetTypeFeast  BudgetType = "feast"
	BudgetTypeFamine BudgetType = "famine"
	BudgetTypeNormal BudgetType = "normal"
)

// CategoryAmounts maps free-form category names to currency amounts, stored
// as a JSON column. Keys are case-sensitive on write; matching against
// transaction categories is case-insensitive (see store.BudgetProgress).
type CategoryAmounts map[string]decimal.Decimal

// Value implements driver.Valuer.
func (m CategoryAmounts) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]decimal.Decimal(m))
	return string(b), err
}

// Scan implements sql.Scanner.
func (m *CategoryAmounts) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(data, m)
}

// Budget is a spending plan with a validity window. Several budgets may
// overlap; selection of the "active" one tie-breaks on creation time.
type Budget struct {
	Base
	UserID              string          `gorm:"not null;index" json:"user_id"`
	BudgetType          BudgetType      `gorm:"default:normal" json:"budget_type"`
	ValidFrom           string          `gorm:"size:10;not null" json:"valid_from"`
	ValidUntil          string          `gorm:"size:10;not null" json:"valid_until"`
	TotalIncomeExpected decimal.Decimal `gorm:"type:numeric" json:"total_income_expected"`
	FixedCosts          CategoryAmounts `gorm:"type:json" json:"fixed_costs,omitempty"`
	VariableCosts       CategoryAmounts `gorm:"type:json" json:"variable_costs,omitempty"`
	SavingsTarget       decimal.Decimal `gorm:"type:numeric" json:"savings_target"`
	DiscretionaryBudget decimal.Decimal `gorm:"type:numeric" json:"discretionary_budget"`
	CategoryLimits      CategoryAmounts `gorm:"type:json" json:"category_limits,omitempty"`
	ConfidenceScore     float64         `json:"confidence_score,omitempty"`
	IsActive            bool            `gorm:"default:true" json:"is_active"`
}
