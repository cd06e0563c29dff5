package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a single income or expense entry in a user's ledger.
// TransactionDate and TransactionTime are wall-clock strings; enumeration
// orders by date then time, descending.
type Transaction struct {
	Base
	UserID             string                     `gorm:"not null;index" json:"user_id"`
	TransactionDate    string                     `gorm:"size:10;not null;index" json:"transaction_date"`
	TransactionTime    string                     `gorm:"size:8" json:"transaction_time,omitempty"`
	Amount             decimal.Decimal            `gorm:"type:numeric;not null" json:"amount"`
	Type               TransactionType            `gorm:"column:transaction_type;not null" json:"transaction_type"`
	Category           string                     `json:"category,omitempty"`
	Subcategory        string                     `json:"subcategory,omitempty"`
	Description        string                     `json:"description,omitempty"`
	PaymentMethod      string                     `json:"payment_method,omitempty"`
	MerchantName       string                     `json:"merchant_name,omitempty"`
	Location           string                     `json:"location,omitempty"`
	Source             string                     `json:"source,omitempty"`
	AccountID          *string                    `gorm:"type:uuid" json:"account_id,omitempty"`
	InputMethod        string                     `gorm:"default:manual" json:"input_method"`
	Verified           bool                       `gorm:"default:false" json:"verified"`
	ConfidenceScore    float64                    `json:"confidence_score,omitempty"`
	IsRecurring        bool                       `gorm:"default:false" json:"is_recurring"`
	RecurringFrequency string                     `json:"recurring_frequency,omitempty"`
	Tags               datatypes.JSONSlice[string] `json:"tags,omitempty"`
}

// Signed returns the amount with expense entries negated, for balance sums.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
