package store

import (
	"context"

	"github.com/shopspring/decimal"

	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
)

// ListBankAccounts returns the user's active linked accounts, newest first.
func (c *Client) ListBankAccounts(ctx context.Context, userID string) ([]models.BankAccount, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var accounts []models.BankAccount
	err := c.conn(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&accounts).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrAccountNotFound)
	}
	return accounts, nil
}

// BankAccountInput carries the fields for linking an account.
type BankAccountInput struct {
	AccountName    string
	Provider       string
	AccountNumber  string
	CurrentBalance decimal.Decimal
	Currency       string
}

// CreateBankAccount links a new account for the user.
func (c *Client) CreateBankAccount(ctx context.Context, userID string, in BankAccountInput) (*models.BankAccount, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	if in.AccountName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRequest, "account_name is required")
	}

	currency := in.Currency
	if currency == "" {
		currency = "INR"
	}
	account := &models.BankAccount{
		UserID:         userID,
		AccountName:    in.AccountName,
		Provider:       in.Provider,
		AccountNumber:  in.AccountNumber,
		CurrentBalance: in.CurrentBalance,
		Currency:       currency,
		IsActive:       true,
	}
	if err := c.conn(ctx).Create(account).Error; err != nil {
		return nil, wrap(err, apperrors.ErrAccountNotFound)
	}
	return account, nil
}

// BankAccountUpdate carries optional account fields to change.
type BankAccountUpdate struct {
	AccountName    *string
	CurrentBalance *decimal.Decimal
}

// UpdateBankAccount applies the non-nil fields of upd to an account the
// user owns.
func (c *Client) UpdateBankAccount(ctx context.Context, userID, accountID string, upd BankAccountUpdate) (*models.BankAccount, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	setIf(updates, "account_name", upd.AccountName)
	setIfDec(updates, "current_balance", upd.CurrentBalance)

	if len(updates) > 0 {
		res := c.conn(ctx).Model(&models.BankAccount{}).
			Where("id = ? AND user_id = ?", accountID, userID).
			Updates(updates)
		if res.Error != nil {
			return nil, wrap(res.Error, apperrors.ErrAccountNotFound)
		}
		if res.RowsAffected == 0 {
			return nil, apperrors.ErrAccountNotFound
		}
	}

	var account models.BankAccount
	if err := c.conn(ctx).Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		return nil, wrap(err, apperrors.ErrAccountNotFound)
	}
	return &account, nil
}

// DeactivateBankAccount unlinks an account without deleting its history.
func (c *Client) DeactivateBankAccount(ctx context.Context, userID, accountID string) error {
	if err := requireIdentity(userID); err != nil {
		return err
	}
	res := c.conn(ctx).Model(&models.BankAccount{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Update("is_active", false)
	if res.Error != nil {
		return wrap(res.Error, apperrors.ErrAccountNotFound)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
