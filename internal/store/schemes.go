package store

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
)

// SchemeFilter holds optional filters for listing government schemes.
type SchemeFilter struct {
	SchemeType      string
	GovernmentLevel string
	State           string
	IncludeInactive bool
}

func (f SchemeFilter) apply(q *gorm.DB) *gorm.DB {
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.SchemeType != "" {
		q = q.Where("scheme_type = ?", f.SchemeType)
	}
	if f.GovernmentLevel != "" {
		q = q.Where("government_level = ?", f.GovernmentLevel)
	}
	if f.State != "" {
		q = q.Where("state_applicable = ? OR state_applicable = ''", f.State)
	}
	return q
}

// ListSchemes returns government schemes sorted by name. Schemes are global
// reference data, so no identity is required.
func (c *Client) ListSchemes(ctx context.Context, f SchemeFilter) ([]models.GovernmentScheme, error) {
	var schemes []models.GovernmentScheme
	err := f.apply(c.conn(ctx)).
		Order("scheme_name ASC").
		Find(&schemes).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrSchemeNotFound)
	}
	return schemes, nil
}

// SchemeByID fetches one government scheme.
func (c *Client) SchemeByID(ctx context.Context, schemeID string) (*models.GovernmentScheme, error) {
	var scheme models.GovernmentScheme
	if err := c.conn(ctx).Where("id = ?", schemeID).First(&scheme).Error; err != nil {
		return nil, wrap(err, apperrors.ErrSchemeNotFound)
	}
	return &scheme, nil
}

// ListSchemeApplications returns the user's applications, newest first, with
// the scheme record attached.
func (c *Client) ListSchemeApplications(ctx context.Context, userID string) ([]models.SchemeApplication, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var apps []models.SchemeApplication
	err := c.conn(ctx).
		Preload("Scheme").
		Where("user_id = ?", userID).
		Order("application_date DESC").
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrApplicationNotFound)
	}
	return apps, nil
}

// ApplicationsBySchemeID returns the user's applications to one scheme.
func (c *Client) ApplicationsBySchemeID(ctx context.Context, userID, schemeID string) ([]models.SchemeApplication, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var apps []models.SchemeApplication
	err := c.conn(ctx).
		Preload("Scheme").
		Where("user_id = ? AND scheme_id = ?", userID, schemeID).
		Order("application_date DESC").
		Find(&apps).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrApplicationNotFound)
	}
	return apps, nil
}

// SchemeApplicationInput carries the fields for filing an application.
type SchemeApplicationInput struct {
	SchemeID           string
	ApplicationDate    string
	DocumentsSubmitted datatypes.JSONMap
	ApplicationNotes   string
}

// CreateSchemeApplication files a new application for the user. The target
// scheme must exist and be active.
func (c *Client) CreateSchemeApplication(ctx context.Context, userID string, in SchemeApplicationInput) (*models.SchemeApplication, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	if in.ApplicationDate == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRequest, "application_date is required")
	}

	scheme, err := c.SchemeByID(ctx, in.SchemeID)
	if err != nil {
		return nil, err
	}
	if !scheme.IsActive {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRequest, "scheme is no longer accepting applications")
	}

	app := &models.SchemeApplication{
		UserID:             userID,
		SchemeID:           scheme.ID,
		ApplicationDate:    in.ApplicationDate,
		ApplicationStatus:  "submitted",
		DocumentsSubmitted: in.DocumentsSubmitted,
		ApplicationNotes:   in.ApplicationNotes,
	}
	if err := c.conn(ctx).Create(app).Error; err != nil {
		return nil, wrap(err, apperrors.ErrApplicationNotFound)
	}
	app.Scheme = *scheme
	return app, nil
}

// SchemeApplicationUpdate carries optional application fields to change.
type SchemeApplicationUpdate struct {
	ApplicationStatus  *string
	DocumentsSubmitted datatypes.JSONMap
	DocumentsVerified  datatypes.JSONMap
	ApprovalDate       *string
	DisbursementDate   *string
	BenefitReceived    *decimal.Decimal
	ApplicationNotes   *string
}

// UpdateSchemeApplication applies the non-nil fields of upd to an
// application the user owns.
func (c *Client) UpdateSchemeApplication(ctx context.Context, userID, applicationID string, upd SchemeApplicationUpdate) (*models.SchemeApplication, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	setIf(updates, "application_status", upd.ApplicationStatus)
	if upd.DocumentsSubmitted != nil {
		updates["documents_submitted"] = upd.DocumentsSubmitted
	}
	if upd.DocumentsVerified != nil {
		updates["documents_verified"] = upd.DocumentsVerified
	}
	setIf(updates, "approval_date", upd.ApprovalDate)
	setIf(updates, "disbursement_date", upd.DisbursementDate)
	setIfDec(updates, "benefit_received", upd.BenefitReceived)
	setIf(updates, "application_notes", upd.ApplicationNotes)

	if len(updates) > 0 {
		res := c.conn(ctx).Model(&models.SchemeApplication{}).
			Where("id = ? AND user_id = ?", applicationID, userID).
			Updates(updates)
		if res.Error != nil {
			return nil, wrap(res.Error, apperrors.ErrApplicationNotFound)
		}
		if res.RowsAffected == 0 {
			return nil, apperrors.ErrApplicationNotFound
		}
	}

	var app models.SchemeApplication
	err := c.conn(ctx).
		Preload("Scheme").
		Where("id = ? AND user_id = ?", applicationID, userID).
		First(&app).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrApplicationNotFound)
	}
	return &app, nil
}
