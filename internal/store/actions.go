package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
)

// ActionDateRange buckets scheduled actions for the planner views.
type ActionDateRange string

const (
	ActionRangeToday     ActionDateRange = "today"
	ActionRangeUpcoming  ActionDateRange = "upcoming"
	ActionRangeOngoing   ActionDateRange = "ongoing"
	ActionRangeCompleted ActionDateRange = "completed"
)

// ActionFilter holds optional filters for listing scheduled actions.
// Today defaults to the current calendar date when a date range is set.
type ActionFilter struct {
	Status    *models.ActionStatus
	DateRange ActionDateRange
	Today     string
}

func (f ActionFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	today := f.Today
	if today == "" {
		today = time.Now().Format(models.DateFormat)
	}
	switch f.DateRange {
	case ActionRangeToday:
		q = q.Where("next_execution = ? AND status <> ?", today, models.ActionStatusCompleted)
	case ActionRangeUpcoming:
		q = q.Where("next_execution > ? AND status <> ?", today, models.ActionStatusCompleted)
	case ActionRangeOngoing:
		q = q.Where("status IN ?", []models.ActionStatus{models.ActionStatusActive, models.ActionStatusPaused})
	case ActionRangeCompleted:
		q = q.Where("status = ?", models.ActionStatusCompleted)
	}
	return q
}

// ListActions returns the user's scheduled actions, soonest execution first.
func (c *Client) ListActions(ctx context.Context, userID string, f ActionFilter) ([]models.ScheduledAction, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var actions []models.ScheduledAction
	err := f.apply(c.conn(ctx).Where("user_id = ?", userID)).
		Order("next_execution ASC").
		Order("created_at DESC").
		Find(&actions).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrActionNotFound)
	}
	return actions, nil
}

// ActionInput carries the fields for scheduling an action. TargetDate is
// the requested first execution; the stored next_execution is derived from
// it and the schedule kind.
type ActionInput struct {
	ActionType        string
	ActionDescription string
	Amount            decimal.Decimal
	Schedule          models.ScheduleKind
	TargetDate        string
	UserApproved      bool
	IsReversible      bool
	Today             string
}

// nextExecution derives the first execution date. One-shot and recurring
// actions with an explicit target start there; daily actions and recurring
// actions without a target start today.
func (in ActionInput) nextExecution(today string) string {
	switch in.Schedule {
	case models.ScheduleDaily:
		return today
	case models.ScheduleWeekly, models.ScheduleMonthly, models.ScheduleOnce:
		if in.TargetDate != "" {
			return in.TargetDate
		}
		return today
	default:
		return today
	}
}

// CreateAction schedules a new action for the user.
func (c *Client) CreateAction(ctx context.Context, userID string, in ActionInput) (*models.ScheduledAction, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	if in.ActionType == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRequest, "action_type is required")
	}

	schedule := in.Schedule
	if schedule == "" {
		schedule = models.ScheduleOnce
	}
	today := in.Today
	if today == "" {
		today = time.Now().Format(models.DateFormat)
	}

	action := &models.ScheduledAction{
		UserID:            userID,
		ActionType:        in.ActionType,
		ActionDescription: in.ActionDescription,
		Amount:            in.Amount,
		Status:            models.ActionStatusPending,
		Schedule:          schedule,
		NextExecution:     ActionInput{Schedule: schedule, TargetDate: in.TargetDate}.nextExecution(today),
		UserApproved:      in.UserApproved,
		IsReversible:      in.IsReversible,
	}
	if err := c.conn(ctx).Create(action).Error; err != nil {
		return nil, wrap(err, apperrors.ErrActionNotFound)
	}
	return action, nil
}

// UpdateActionStatus moves an action through its state machine. Invalid
// transitions are rejected; completing an action stamps its execution time.
func (c *Client) UpdateActionStatus(ctx context.Context, userID, actionID string, to models.ActionStatus) (*models.ScheduledAction, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var action models.ScheduledAction
	if err := c.conn(ctx).Where("id = ? AND user_id = ?", actionID, userID).First(&action).Error; err != nil {
		return nil, wrap(err, apperrors.ErrActionNotFound)
	}

	if !action.Status.ValidTransition(to) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidStatusChange,
			"cannot move action from "+string(action.Status)+" to "+string(to))
	}

	updates := map[string]interface{}{"status": to}
	if to == models.ActionStatusActive && action.Status == models.ActionStatusPending {
		updates["user_approved"] = true
	}
	if to == models.ActionStatusCompleted {
		now := time.Now()
		updates["execution_date"] = now
		updates["recurrence_count"] = action.RecurrenceCount + 1
	}

	res := c.conn(ctx).Model(&models.ScheduledAction{}).
		Where("id = ? AND user_id = ?", actionID, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, wrap(res.Error, apperrors.ErrActionNotFound)
	}

	if err := c.conn(ctx).Where("id = ? AND user_id = ?", actionID, userID).First(&action).Error; err != nil {
		return nil, wrap(err, apperrors.ErrActionNotFound)
	}
	return &action, nil
}

// DeleteAction removes a scheduled action the user owns.
func (c *Client) DeleteAction(ctx context.Context, userID, actionID string) error {
	if err := requireIdentity(userID); err != nil {
		return err
	}
	res := c.conn(ctx).Where("id = ? AND user_id = ?", actionID, userID).Delete(&models.ScheduledAction{})
	if res.Error != nil {
		return wrap(res.Error, apperrors.ErrActionNotFound)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrActionNotFound
	}
	return nil
}
