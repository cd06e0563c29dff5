package models

// RiskLevel buckets the overall assessment.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// RiskAssessment is a point-in-time evaluation of a user's financial risk,
// written by the agent pipeline and read-only from the client's perspective
// except for seeding.
type RiskAssessment struct {
	Base
	UserID                string         `gorm:"not null;index" json:"user_id"`
	AssessmentDate        string         `gorm:"size:10;index" json:"assessment_date"`
	OverallRiskLevel      RiskLevel      `gorm:"default:medium" json:"overall_risk_level"`
	RiskScore             float64        `json:"risk_score"`
	RiskFactors           RiskFactorList `gorm:"type:json" json:"risk_factors,omitempty"`
	DebtToIncomeRatio     float64        `json:"debt_to_income_ratio"`
	IncomeDropPercentage  float64        `json:"income_drop_percentage"`
	ExpenseSpikeFactor    float64        `json:"expense_spike_factor"`
	EmergencyFundCoverage float64        `json:"emergency_fund_coverage"`
	EscalationNeeded      bool           `gorm:"default:false" json:"escalation_needed"`
	RecommendedActions    ActionItemList `gorm:"type:json" json:"recommended_actions,omitempty"`
	AIRiskAnalysis        string         `json:"ai_risk_analysis,omitempty"`
}
