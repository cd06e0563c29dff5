package store

import (
	"context"

	"github.com/shopspring/decimal"

	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
)

// ListTaxRecords returns the user's tax records, most recent year first.
func (c *Client) ListTaxRecords(ctx context.Context, userID string) ([]models.TaxRecord, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var records []models.TaxRecord
	err := c.conn(ctx).
		Where("user_id = ?", userID).
		Order("financial_year DESC").
		Find(&records).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrTaxRecordNotFound)
	}
	return records, nil
}

// TaxRecordByYear fetches the user's record for one financial year.
func (c *Client) TaxRecordByYear(ctx context.Context, userID, financialYear string) (*models.TaxRecord, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var record models.TaxRecord
	err := c.conn(ctx).
		Where("user_id = ? AND financial_year = ?", userID, financialYear).
		First(&record).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrTaxRecordNotFound)
	}
	return &record, nil
}

// TaxRecordInput carries the fields for creating a tax record. Taxable
// income is derived, not supplied.
type TaxRecordInput struct {
	FinancialYear   string
	GrossIncome     decimal.Decimal
	TotalDeductions decimal.Decimal
	TaxLiability    decimal.Decimal
	TaxPaid         decimal.Decimal
}

// CreateTaxRecord inserts a tax record for the user, deriving taxable income
// as gross income minus deductions (floored at zero).
func (c *Client) CreateTaxRecord(ctx context.Context, userID string, in TaxRecordInput) (*models.TaxRecord, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	if in.FinancialYear == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRequest, "financial_year is required")
	}

	taxable := in.GrossIncome.Sub(in.TotalDeductions)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	record := &models.TaxRecord{
		UserID:          userID,
		FinancialYear:   in.FinancialYear,
		GrossIncome:     in.GrossIncome,
		TotalDeductions: in.TotalDeductions,
		TaxableIncome:   taxable,
		TaxLiability:    in.TaxLiability,
		TaxPaid:         in.TaxPaid,
		FilingStatus:    "not_filed",
	}
	if err := c.conn(ctx).Create(record).Error; err != nil {
		return nil, wrap(err, apperrors.ErrTaxRecordNotFound)
	}
	return record, nil
}

// TaxRecordUpdate carries optional tax-record fields to change.
type TaxRecordUpdate struct {
	TaxPaid               *decimal.Decimal
	FilingStatus          *string
	FilingDate            *string
	AcknowledgementNumber *string
}

// UpdateTaxRecord applies the non-nil fields of upd to a record the
// user owns.
func (c *Client) UpdateTaxRecord(ctx context.Context, userID, recordID string, upd TaxRecordUpdate) (*models.TaxRecord, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	setIfDec(updates, "tax_paid", upd.TaxPaid)
	setIf(updates, "filing_status", upd.FilingStatus)
	setIf(updates, "filing_date", upd.FilingDate)
	setIf(updates, "acknowledgement_number", upd.AcknowledgementNumber)

	if len(updates) > 0 {
		res := c.conn(ctx).Model(&models.TaxRecord{}).
			Where("id = ? AND user_id = ?", recordID, userID).
			Updates(updates)
		if res.Error != nil {
			return nil, wrap(res.Error, apperrors.ErrTaxRecordNotFound)
		}
		if res.RowsAffected == 0 {
			return nil, apperrors.ErrTaxRecordNotFound
		}
	}

	var record models.TaxRecord
	if err := c.conn(ctx).Where("id = ? AND user_id = ?", recordID, userID).First(&record).Error; err != nil {
		return nil, wrap(err, apperrors.ErrTaxRecordNotFound)
	}
	return &record, nil
}
