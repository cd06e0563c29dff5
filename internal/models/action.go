package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActionStatus is the scheduled-action state machine:
// pending -> active -> {paused <-> active} -> completed.
type ActionStatus string

const (
	ActionStatusPending   ActionStatus = "pending"
	ActionStatusActive    ActionStatus = "active"
	ActionStatusPaused    ActionStatus = "paused"
	ActionStatusCompleted ActionStatus = "completed"
)

// ScheduleKind drives the computed next_execution date.
type ScheduleKind string

const (
	ScheduleOnce    ScheduleKind = "once"
	ScheduleDaily   ScheduleKind = "daily"
	ScheduleWeekly  ScheduleKind = "weekly"
	ScheduleMonthly ScheduleKind = "monthly"
)

// ValidTransition reports whether a scheduled action may move from -> to.
func (s ActionStatus) ValidTransition(to ActionStatus) bool {
	switch s {
	case ActionStatusPending:
		return to == ActionStatusActive
	case ActionStatusActive:
		return to == ActionStatusPaused || to == ActionStatusCompleted
	case ActionStatusPaused:
		return to == ActionStatusActive
	default:
		return false
	}
}

// ScheduledAction is a recurring or one-shot money movement the user has
// approved (or is yet to approve).
type ScheduledAction struct {
	Base
	UserID            string          `gorm:"not null;index" json:"user_id"`
	ActionType        string          `gorm:"not null" json:"action_type"`
	ActionDescription string          `json:"action_description"`
	Amount            decimal.Decimal `gorm:"type:numeric" json:"amount"`
	Status            ActionStatus    `gorm:"default:pending" json:"status"`
	Schedule          ScheduleKind    `gorm:"default:once" json:"schedule"`
	NextExecution     string          `gorm:"size:10" json:"next_execution,omitempty"`
	ExecutionDate     *time.Time      `json:"execution_date,omitempty"`
	UserApproved      bool            `gorm:"default:false" json:"user_approved"`
	IsReversible      bool            `gorm:"default:true" json:"is_reversible"`
	RecurrenceCount   int             `gorm:"default:0" json:"recurrence_count"`
}
