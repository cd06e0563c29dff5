package models

import "github.com/shopspring/decimal"

// TaxRecord tracks one financial year's tax position for a user.
type TaxRecord struct {
	Base
	UserID                string          `gorm:"not null;index" json:"user_id"`
	FinancialYear         string          `gorm:"not null" json:"financial_year"`
	GrossIncome           decimal.Decimal `gorm:"type:numeric" json:"gross_income"`
	TotalDeductions       decimal.Decimal `gorm:"type:numeric" json:"total_deductions"`
	TaxableIncome         decimal.Decimal `gorm:"type:numeric" json:"taxable_income"`
	TaxLiability          decimal.Decimal `gorm:"type:numeric" json:"tax_liability"`
	TaxPaid               decimal.Decimal `gorm:"type:numeric" json:"tax_paid"`
	FilingStatus          string          `gorm:"default:not_filed" json:"filing_status"`
	FilingDate            *string         `gorm:"size:10" json:"filing_date,omitempty"`
	AcknowledgementNumber string          `json:"acknowledgement_number,omitempty"`
}
