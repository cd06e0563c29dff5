package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
	"fincoach/internal/pagination"
)

// TransactionFilter holds optional filters for listing transactions.
type TransactionFilter struct {
	DateStart string
	DateEnd   string
	Type      *models.TransactionType
	Category  string
	Search    string // matched case-insensitively against description and merchant name
}

func (f TransactionFilter) apply(q *gorm.DB) *gorm.DB {
	if f.DateStart != "" {
		q = q.Where("transaction_date >= ?", f.DateStart)
	}
	if f.DateEnd != "" {
		q = q.Where("transaction_date <= ?", f.DateEnd)
	}
	if f.Type != nil {
		q = q.Where("transaction_type = ?", *f.Type)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("LOWER(description) LIKE LOWER(?) OR LOWER(merchant_name) LIKE LOWER(?)", pattern, pattern)
	}
	return q
}

// ListTransactions returns the user's full ledger, newest first
// (transaction date then time, descending), optionally filtered.
func (c *Client) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]models.Transaction, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	q := f.apply(c.conn(ctx).Where("user_id = ?", userID)).
		Order("transaction_date DESC").
		Order("transaction_time DESC")

	var txns []models.Transaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, wrap(err, apperrors.ErrTransactionNotFound)
	}
	return txns, nil
}

// ListTransactionsPage returns one page of the user's ledger, newest first.
func (c *Client) ListTransactionsPage(ctx context.Context, userID string, page pagination.PageRequest, f TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	page.Defaults()

	base := f.apply(c.conn(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID))

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, wrap(err, apperrors.ErrTransactionNotFound)
	}

	var txns []models.Transaction
	err := base.
		Order("transaction_date DESC").
		Order("transaction_time DESC").
		Scopes(pagination.Paginate(page)).
		Find(&txns).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrTransactionNotFound)
	}

	result := pagination.NewPageResponse(txns, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// TodaySummary aggregates the given calendar date's income and expenses.
type TodaySummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Count   int             `json:"count"`
}

// GetTodaySummary sums the user's transactions for one calendar date.
func (c *Client) GetTodaySummary(ctx context.Context, userID, date string) (*TodaySummary, error) {
	txns, err := c.ListTransactions(ctx, userID, TransactionFilter{DateStart: date, DateEnd: date})
	if err != nil {
		return nil, err
	}

	summary := &TodaySummary{Count: len(txns)}
	for _, t := range txns {
		if t.Type == models.TransactionTypeIncome {
			summary.Income = summary.Income.Add(t.Amount)
		} else {
			summary.Expense = summary.Expense.Add(t.Amount)
		}
	}
	return summary, nil
}

// TransactionInput carries the fields for creating one transaction. The
// three ingestion paths (manual entry, image parse, voice parse) all produce
// this same shape, distinguished only by InputMethod.
type TransactionInput struct {
	TransactionDate    string
	TransactionTime    string
	Amount             decimal.Decimal
	Type               models.TransactionType
	Category           string
	Subcategory        string
	Description        string
	PaymentMethod      string
	MerchantName       string
	Location           string
	Source             string
	AccountID          *string
	InputMethod        string
	ConfidenceScore    float64
	IsRecurring        bool
	RecurringFrequency string
	Tags               []string
}

func (in TransactionInput) toModel(userID string) (*models.Transaction, error) {
	if in.Type != models.TransactionTypeIncome && in.Type != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if in.TransactionDate == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRequest, "transaction_date is required")
	}
	if _, err := time.Parse(models.DateFormat, in.TransactionDate); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRequest, "transaction_date must be YYYY-MM-DD")
	}

	method := in.InputMethod
	if method == "" {
		method = "manual"
	}
	confidence := in.ConfidenceScore
	if method == "manual" && confidence == 0 {
		confidence = 1.0
	}

	return &models.Transaction{
		UserID:             userID,
		TransactionDate:    in.TransactionDate,
		TransactionTime:    in.TransactionTime,
		Amount:             in.Amount,
		Type:               in.Type,
		Category:           in.Category,
		Subcategory:        in.Subcategory,
		Description:        in.Description,
		PaymentMethod:      in.PaymentMethod,
		MerchantName:       in.MerchantName,
		Location:           in.Location,
		Source:             in.Source,
		AccountID:          in.AccountID,
		InputMethod:        method,
		Verified:           true,
		ConfidenceScore:    confidence,
		IsRecurring:        in.IsRecurring,
		RecurringFrequency: in.RecurringFrequency,
		Tags:               datatypes.NewJSONSlice(in.Tags),
	}, nil
}

// CreateTransaction inserts one transaction owned by the user.
func (c *Client) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	txn, err := in.toModel(userID)
	if err != nil {
		return nil, err
	}
	if err := c.conn(ctx).Create(txn).Error; err != nil {
		return nil, wrap(err, apperrors.ErrTransactionNotFound)
	}
	return txn, nil
}

// CreateTransactions bulk-inserts transactions in batches. Used by seeding.
func (c *Client) CreateTransactions(ctx context.Context, userID string, ins []TransactionInput) error {
	if err := requireIdentity(userID); err != nil {
		return err
	}
	txns := make([]*models.Transaction, 0, len(ins))
	for _, in := range ins {
		txn, err := in.toModel(userID)
		if err != nil {
			return err
		}
		txns = append(txns, txn)
	}
	if len(txns) == 0 {
		return nil
	}
	if err := c.conn(ctx).CreateInBatches(txns, 10).Error; err != nil {
		return wrap(err, apperrors.ErrTransactionNotFound)
	}
	return nil
}

// TransactionUpdate carries optional descriptive fields to change.
// Date, time, amount and direction are immutable after creation.
type TransactionUpdate struct {
	Category           *string
	Subcategory        *string
	Description        *string
	PaymentMethod      *string
	MerchantName       *string
	Location           *string
	IsRecurring        *bool
	RecurringFrequency *string
	Tags               []string
}

// UpdateTransaction applies the non-nil fields of upd to a transaction the
// user owns.
func (c *Client) UpdateTransaction(ctx context.Context, userID, transactionID string, upd TransactionUpdate) (*models.Transaction, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	setIf(updates, "category", upd.Category)
	setIf(updates, "subcategory", upd.Subcategory)
	setIf(updates, "description", upd.Description)
	setIf(updates, "payment_method", upd.PaymentMethod)
	setIf(updates, "merchant_name", upd.MerchantName)
	setIf(updates, "location", upd.Location)
	if upd.IsRecurring != nil {
		updates["is_recurring"] = *upd.IsRecurring
	}
	setIf(updates, "recurring_frequency", upd.RecurringFrequency)
	if upd.Tags != nil {
		updates["tags"] = datatypes.NewJSONSlice(upd.Tags)
	}

	if len(updates) > 0 {
		res := c.conn(ctx).Model(&models.Transaction{}).
			Where("id = ? AND user_id = ?", transactionID, userID).
			Updates(updates)
		if res.Error != nil {
			return nil, wrap(res.Error, apperrors.ErrTransactionNotFound)
		}
		if res.RowsAffected == 0 {
			return nil, apperrors.ErrTransactionNotFound
		}
	}

	var txn models.Transaction
	if err := c.conn(ctx).Where("id = ? AND user_id = ?", transactionID, userID).First(&txn).Error; err != nil {
		return nil, wrap(err, apperrors.ErrTransactionNotFound)
	}
	return &txn, nil
}

// DeleteTransaction removes a transaction the user owns.
func (c *Client) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if err := requireIdentity(userID); err != nil {
		return err
	}
	res := c.conn(ctx).Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
	if res.Error != nil {
		return wrap(res.Error, apperrors.ErrTransactionNotFound)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}
