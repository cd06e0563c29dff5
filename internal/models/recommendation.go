package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecommendationStatus tracks the user-facing lifecycle of a recommendation:
// pending -> {accepted | rejected | actioned -> completed}.
type RecommendationStatus string

const (
	RecommendationStatusPending   RecommendationStatus = "pending"
	RecommendationStatusAccepted  RecommendationStatus = "accepted"
	RecommendationStatusRejected  RecommendationStatus = "rejected"
	RecommendationStatusActioned  RecommendationStatus = "actioned"
	RecommendationStatusCompleted RecommendationStatus = "completed"
)

// RecommendationPriority orders recommendations for display.
type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// Recommendation is produced by the external agent pipeline. The client only
// ever updates status and feedback, never creates these rows.
type Recommendation struct {
	Base
	UserID             string                 `gorm:"not null;index" json:"user_id"`
	Type               string                 `gorm:"column:recommendation_type" json:"recommendation_type"`
	Priority           RecommendationPriority `gorm:"default:medium" json:"priority"`
	Title              string                 `gorm:"not null" json:"title"`
	Description        string                 `json:"description"`
	Reasoning          string                 `json:"reasoning,omitempty"`
	ActionItems        ActionItemList         `gorm:"type:json" json:"action_items,omitempty"`
	TargetAmount       *decimal.Decimal       `gorm:"type:numeric" json:"target_amount,omitempty"`
	TargetDate         string                 `gorm:"size:10" json:"target_date,omitempty"`
	ConfidenceScore    float64                `json:"confidence_score,omitempty"`
	SuccessProbability float64                `json:"success_probability,omitempty"`
	AgentSource        string                 `json:"agent_source,omitempty"`
	Status             RecommendationStatus   `gorm:"default:pending" json:"status"`
	UserFeedback       string                 `json:"user_feedback,omitempty"`
	ActionedAt         *time.Time             `json:"actioned_at,omitempty"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
}
