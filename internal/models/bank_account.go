package models

import "github.com/shopspring/decimal"

// BankAccount is a linked account used for display and payment-method
// attribution. Deletion is a soft deactivate, never a hard delete.
type BankAccount struct {
	Base
	UserID         string          `gorm:"not null;index" json:"user_id"`
	AccountName    string          `gorm:"not null" json:"account_name"`
	Provider       string          `json:"provider"`
	AccountNumber  string          `json:"account_number"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric" json:"current_balance"`
	Currency       string          `gorm:"default:INR" json:"currency"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
}
