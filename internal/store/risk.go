package store

import (
	"context"

	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
)

// LatestRiskAssessment returns the user's most recent assessment by
// assessment date, or (nil, nil) when the user has never been assessed.
func (c *Client) LatestRiskAssessment(ctx context.Context, userID string) (*models.RiskAssessment, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var assessments []models.RiskAssessment
	err := c.conn(ctx).
		Where("user_id = ?", userID).
		Order("assessment_date DESC").
		Order("created_at DESC").
		Limit(1).
		Find(&assessments).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrInternal)
	}
	if len(assessments) == 0 {
		return nil, nil
	}
	return &assessments[0], nil
}

// ListRiskAssessments returns the user's assessment history, newest first.
func (c *Client) ListRiskAssessments(ctx context.Context, userID string) ([]models.RiskAssessment, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var assessments []models.RiskAssessment
	err := c.conn(ctx).
		Where("user_id = ?", userID).
		Order("assessment_date DESC").
		Order("created_at DESC").
		Find(&assessments).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrInternal)
	}
	return assessments, nil
}

// CreateRiskAssessment inserts an assessment owned by the user. Normal
// operation only reads these rows; creation exists for seeding.
func (c *Client) CreateRiskAssessment(ctx context.Context, userID string, assessment *models.RiskAssessment) (*models.RiskAssessment, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	assessment.UserID = userID
	if err := c.conn(ctx).Create(assessment).Error; err != nil {
		return nil, wrap(err, apperrors.ErrInternal)
	}
	return assessment, nil
}
