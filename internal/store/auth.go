package store

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
)

// AuthResult is returned by the two operations that do not require a
// pre-existing identity.
type AuthResult struct {
	Token string
	User  models.User
}

// SignupParams carries the fields accepted at signup. Local validation
// (phone format, password length) happens in the coordinator before this
// call; the store only enforces uniqueness.
type SignupParams struct {
	PhoneNumber       string
	Password          string
	FullName          string
	Email             string
	Occupation        string
	City              string
	State             string
	DateOfBirth       string
	PreferredLanguage string
}

// Login authenticates by phone number and password and issues a bearer token.
func (c *Client) Login(ctx context.Context, phoneNumber, password string) (*AuthResult, error) {
	var user models.User
	err := c.conn(ctx).
		Where("phone_number = ? AND is_active = ?", strings.TrimSpace(phoneNumber), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, wrap(err, apperrors.ErrInvalidCredentials)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := c.tokens.Generate(&user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Signup registers a new user, bootstraps an empty financial profile, and
// issues a bearer token.
func (c *Client) Signup(ctx context.Context, params SignupParams) (*AuthResult, error) {
	phone := strings.TrimSpace(params.PhoneNumber)

	var count int64
	if err := c.conn(ctx).Model(&models.User{}).Where("phone_number = ?", phone).Count(&count).Error; err != nil {
		return nil, wrap(err, apperrors.ErrUserNotFound)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicatePhone
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	lang := params.PreferredLanguage
	if lang == "" {
		lang = "en"
	}
	user := &models.User{
		PhoneNumber:       phone,
		Password:          string(hashed),
		FullName:          params.FullName,
		Email:             params.Email,
		Occupation:        params.Occupation,
		City:              params.City,
		State:             params.State,
		DateOfBirth:       params.DateOfBirth,
		PreferredLanguage: lang,
		IsActive:          true,
	}

	err = c.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		// 1:1 profile row exists from signup time; the Profile page fills it in.
		profile := &models.UserProfile{UserID: user.ID, RiskTolerance: models.RiskToleranceModerate}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, wrap(err, apperrors.ErrUserNotFound)
	}

	token, err := c.tokens.Generate(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &AuthResult{Token: token, User: *user}, nil
}
