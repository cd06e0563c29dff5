package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// GovernmentScheme is global reference data describing a benefit program.
// It is the one entity not scoped to an identity.
type GovernmentScheme struct {
	Base
	SchemeName          string            `gorm:"not null;index" json:"scheme_name"`
	SchemeCode          string            `gorm:"uniqueIndex" json:"scheme_code"`
	SchemeType          string            `json:"scheme_type"`
	GovernmentLevel     string            `json:"government_level"`
	StateApplicable     string            `json:"state_applicable,omitempty"`
	Description         string            `json:"description,omitempty"`
	Benefits            string            `json:"benefits,omitempty"`
	EligibilityCriteria datatypes.JSONMap `json:"eligibility_criteria,omitempty"`
	ApplicationURL      string            `json:"application_url,omitempty"`
	IsActive            bool              `gorm:"default:true" json:"is_active"`
}

// SchemeApplication records a user's application to a government scheme.
type SchemeApplication struct {
	Base
	UserID             string            `gorm:"not null;index" json:"user_id"`
	SchemeID           string            `gorm:"type:uuid;not null" json:"scheme_id"`
	ApplicationDate    string            `gorm:"size:10;not null" json:"application_date"`
	ApplicationStatus  string            `gorm:"default:submitted" json:"application_status"`
	DocumentsSubmitted datatypes.JSONMap `json:"documents_submitted,omitempty"`
	DocumentsVerified  datatypes.JSONMap `json:"documents_verified,omitempty"`
	ApprovalDate       *string           `gorm:"size:10" json:"approval_date,omitempty"`
	DisbursementDate   *string           `gorm:"size:10" json:"disbursement_date,omitempty"`
	BenefitReceived    *decimal.Decimal  `gorm:"type:numeric" json:"benefit_received,omitempty"`
	ApplicationNotes   string            `json:"application_notes,omitempty"`

	Scheme GovernmentScheme `gorm:"foreignKey:SchemeID" json:"scheme"`
}
