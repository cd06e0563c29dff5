package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// User represents the user identity record in the backing store
type User struct {
	Base
	PhoneNumber         string `gorm:"uniqueIndex;not null" json:"phone_number"`
	Password            string `gorm:"not null" json:"-"`
	Email               string `json:"email,omitempty"`
	FullName            string `json:"full_name"`
	Occupation          string `json:"occupation,omitempty"`
	City                string `json:"city,omitempty"`
	State               string `json:"state,omitempty"`
	PinCode             string `json:"pin_code,omitempty"`
	DateOfBirth         string `gorm:"size:10" json:"date_of_birth,omitempty"`
	PreferredLanguage   string `gorm:"default:en" json:"preferred_language"`
	IsActive            bool   `gorm:"default:true" json:"is_active"`
	KYCVerified         bool   `gorm:"default:false" json:"kyc_verified"`
	OnboardingCompleted bool   `gorm:"default:false" json:"onboarding_completed"`
}

// RiskTolerance is the user's self-reported appetite for financial risk.
type RiskTolerance string

const (
	RiskToleranceLow      RiskTolerance = "low"
	RiskToleranceModerate RiskTolerance = "moderate"
	RiskToleranceHigh     RiskTolerance = "high"
)

// UserProfile holds the mutable financial attributes of a user, 1:1 with User.
type UserProfile struct {
	Base
	UserID               string            `gorm:"uniqueIndex;not null" json:"user_id"`
	MonthlyIncomeMin     decimal.Decimal   `gorm:"type:numeric" json:"monthly_income_min"`
	MonthlyIncomeMax     decimal.Decimal   `gorm:"type:numeric" json:"monthly_income_max"`
	MonthlyExpensesAvg   decimal.Decimal   `gorm:"type:numeric" json:"monthly_expenses_avg"`
	EmergencyFundTarget  decimal.Decimal   `gorm:"type:numeric" json:"emergency_fund_target"`
	CurrentEmergencyFund decimal.Decimal   `gorm:"type:numeric" json:"current_emergency_fund"`
	RiskTolerance        RiskTolerance     `gorm:"default:moderate" json:"risk_tolerance"`
	FinancialGoals       datatypes.JSONMap `json:"financial_goals,omitempty"`
	IncomeSources        datatypes.JSONMap `json:"income_sources,omitempty"`
	DebtObligations      datatypes.JSONMap `json:"debt_obligations,omitempty"`
	Dependents           int               `gorm:"default:0" json:"dependents"`
}
