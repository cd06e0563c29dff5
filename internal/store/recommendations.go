package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
	"fincoach/internal/pagination"
)

// RecommendationFilter holds optional filters for listing recommendations.
type RecommendationFilter struct {
	Status   *models.RecommendationStatus
	Priority *models.RecommendationPriority
	Type     string
}

func (f RecommendationFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", *f.Priority)
	}
	if f.Type != "" {
		q = q.Where("recommendation_type = ?", f.Type)
	}
	return q
}

// ListRecommendations returns the user's recommendations, newest first.
func (c *Client) ListRecommendations(ctx context.Context, userID string, f RecommendationFilter) ([]models.Recommendation, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var recs []models.Recommendation
	err := f.apply(c.conn(ctx).Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrRecommendationNotFound)
	}
	return recs, nil
}

// ListRecommendationsPage is the paginated variant of ListRecommendations.
func (c *Client) ListRecommendationsPage(ctx context.Context, userID string, page pagination.PageRequest, f RecommendationFilter) (*pagination.PageResponse[models.Recommendation], error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	page.Defaults()

	base := f.apply(c.conn(ctx).Model(&models.Recommendation{}).Where("user_id = ?", userID))

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, wrap(err, apperrors.ErrRecommendationNotFound)
	}

	var recs []models.Recommendation
	err := base.
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&recs).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrRecommendationNotFound)
	}

	result := pagination.NewPageResponse(recs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// CreateRecommendation inserts a recommendation owned by the user. Normal
// operation only ever updates these rows; creation exists for seeding.
func (c *Client) CreateRecommendation(ctx context.Context, userID string, rec *models.Recommendation) (*models.Recommendation, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	rec.UserID = userID
	if rec.Status == "" {
		rec.Status = models.RecommendationStatusPending
	}
	if err := c.conn(ctx).Create(rec).Error; err != nil {
		return nil, wrap(err, apperrors.ErrRecommendationNotFound)
	}
	return rec, nil
}

// RecommendationUpdate carries the fields a user can change on a
// recommendation.
type RecommendationUpdate struct {
	Status       *models.RecommendationStatus
	UserFeedback *string
}

// UpdateRecommendation applies a status change and/or feedback to a
// recommendation the user owns. Moving to actioned or completed stamps the
// corresponding timestamp.
func (c *Client) UpdateRecommendation(ctx context.Context, userID, recommendationID string, upd RecommendationUpdate) (*models.Recommendation, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if upd.Status != nil {
		updates["status"] = *upd.Status
		now := time.Now()
		switch *upd.Status {
		case models.RecommendationStatusActioned:
			updates["actioned_at"] = now
		case models.RecommendationStatusCompleted:
			updates["completed_at"] = now
		}
	}
	setIf(updates, "user_feedback", upd.UserFeedback)

	if len(updates) > 0 {
		res := c.conn(ctx).Model(&models.Recommendation{}).
			Where("id = ? AND user_id = ?", recommendationID, userID).
			Updates(updates)
		if res.Error != nil {
			return nil, wrap(res.Error, apperrors.ErrRecommendationNotFound)
		}
		if res.RowsAffected == 0 {
			return nil, apperrors.ErrRecommendationNotFound
		}
	}

	var rec models.Recommendation
	if err := c.conn(ctx).Where("id = ? AND user_id = ?", recommendationID, userID).First(&rec).Error; err != nil {
		return nil, wrap(err, apperrors.ErrRecommendationNotFound)
	}
	return &rec, nil
}
