package store

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
)

// GetUser fetches the identity record for the given user.
func (c *Client) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.conn(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, wrap(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// UserUpdate carries optional identity-record fields to change.
type UserUpdate struct {
	FullName            *string
	Email               *string
	Occupation          *string
	City                *string
	State               *string
	PinCode             *string
	PreferredLanguage   *string
	OnboardingCompleted *bool
}

// UpdateUser applies the non-nil fields of upd to the user's record.
func (c *Client) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (*models.User, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	setIf(updates, "full_name", upd.FullName)
	setIf(updates, "email", upd.Email)
	setIf(updates, "occupation", upd.Occupation)
	setIf(updates, "city", upd.City)
	setIf(updates, "state", upd.State)
	setIf(updates, "pin_code", upd.PinCode)
	setIf(updates, "preferred_language", upd.PreferredLanguage)
	if upd.OnboardingCompleted != nil {
		updates["onboarding_completed"] = *upd.OnboardingCompleted
	}

	if len(updates) > 0 {
		res := c.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, wrap(res.Error, apperrors.ErrUserNotFound)
		}
		if res.RowsAffected == 0 {
			return nil, apperrors.ErrUserNotFound
		}
	}
	return c.GetUser(ctx, userID)
}

// GetProfile fetches the user's financial profile.
func (c *Client) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	var profile models.UserProfile
	if err := c.conn(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, wrap(err, apperrors.ErrProfileNotFound)
	}
	return &profile, nil
}

// ProfileUpdate carries optional financial-profile fields to change.
type ProfileUpdate struct {
	MonthlyIncomeMin     *decimal.Decimal
	MonthlyIncomeMax     *decimal.Decimal
	MonthlyExpensesAvg   *decimal.Decimal
	EmergencyFundTarget  *decimal.Decimal
	CurrentEmergencyFund *decimal.Decimal
	RiskTolerance        *models.RiskTolerance
	FinancialGoals       datatypes.JSONMap
	IncomeSources        datatypes.JSONMap
	DebtObligations      datatypes.JSONMap
	Dependents           *int
}

// UpdateProfile applies the non-nil fields of upd to the user's profile.
func (c *Client) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.UserProfile, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	setIfDec(updates, "monthly_income_min", upd.MonthlyIncomeMin)
	setIfDec(updates, "monthly_income_max", upd.MonthlyIncomeMax)
	setIfDec(updates, "monthly_expenses_avg", upd.MonthlyExpensesAvg)
	setIfDec(updates, "emergency_fund_target", upd.EmergencyFundTarget)
	setIfDec(updates, "current_emergency_fund", upd.CurrentEmergencyFund)
	if upd.RiskTolerance != nil {
		updates["risk_tolerance"] = *upd.RiskTolerance
	}
	if upd.FinancialGoals != nil {
		updates["financial_goals"] = upd.FinancialGoals
	}
	if upd.IncomeSources != nil {
		updates["income_sources"] = upd.IncomeSources
	}
	if upd.DebtObligations != nil {
		updates["debt_obligations"] = upd.DebtObligations
	}
	if upd.Dependents != nil {
		updates["dependents"] = *upd.Dependents
	}

	if len(updates) > 0 {
		res := c.conn(ctx).Model(&models.UserProfile{}).Where("user_id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, wrap(res.Error, apperrors.ErrProfileNotFound)
		}
		if res.RowsAffected == 0 {
			return nil, apperrors.ErrProfileNotFound
		}
	}
	return c.GetProfile(ctx, userID)
}

func setIf(updates map[string]interface{}, column string, v *string) {
	if v != nil {
		updates[column] = *v
	}
}

func setIfDec(updates map[string]interface{}, column string, v *decimal.Decimal) {
	if v != nil {
		updates[column] = *v
	}
}
