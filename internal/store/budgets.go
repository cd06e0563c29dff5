package store

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
)

// ListBudgets returns all of the user's budgets, newest window first.
func (c *Client) ListBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var budgets []models.Budget
	err := c.conn(ctx).
		Where("user_id = ?", userID).
		Order("valid_from DESC").
		Order("created_at DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrBudgetNotFound)
	}
	return budgets, nil
}

// ActiveBudget returns the budget whose validity window contains today.
// When windows overlap the most recently created budget wins. Returns
// (nil, nil) when no budget covers today; having no budget is a normal
// state, not an error.
func (c *Client) ActiveBudget(ctx context.Context, userID, today string) (*models.Budget, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var budgets []models.Budget
	err := c.conn(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("valid_from <= ? AND valid_until >= ?", today, today).
		Order("created_at DESC").
		Limit(1).
		Find(&budgets).Error
	if err != nil {
		return nil, wrap(err, apperrors.ErrBudgetNotFound)
	}
	if len(budgets) == 0 {
		return nil, nil
	}
	return &budgets[0], nil
}

// BudgetInput carries the fields for creating a budget.
type BudgetInput struct {
	BudgetType          models.BudgetType
	ValidFrom           string
	ValidUntil          string
	TotalIncomeExpected decimal.Decimal
	FixedCosts          models.CategoryAmounts
	VariableCosts       models.CategoryAmounts
	SavingsTarget       decimal.Decimal
	DiscretionaryBudget decimal.Decimal
	CategoryLimits      models.CategoryAmounts
	ConfidenceScore     float64
}

// CreateBudget inserts a budget owned by the user.
func (c *Client) CreateBudget(ctx context.Context, userID string, in BudgetInput) (*models.Budget, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}
	if in.ValidFrom == "" || in.ValidUntil == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRequest, "budget validity window is required")
	}
	if in.ValidUntil < in.ValidFrom {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRequest, "valid_until must not precede valid_from")
	}

	budgetType := in.BudgetType
	if budgetType == "" {
		budgetType = models.BudgetTypeNormal
	}
	budget := &models.Budget{
		UserID:              userID,
		BudgetType:          budgetType,
		ValidFrom:           in.ValidFrom,
		ValidUntil:          in.ValidUntil,
		TotalIncomeExpected: in.TotalIncomeExpected,
		FixedCosts:          in.FixedCosts,
		VariableCosts:       in.VariableCosts,
		SavingsTarget:       in.SavingsTarget,
		DiscretionaryBudget: in.DiscretionaryBudget,
		CategoryLimits:      in.CategoryLimits,
		ConfidenceScore:     in.ConfidenceScore,
		IsActive:            true,
	}
	if err := c.conn(ctx).Create(budget).Error; err != nil {
		return nil, wrap(err, apperrors.ErrBudgetNotFound)
	}
	return budget, nil
}

// BudgetUpdate carries optional budget fields to change.
type BudgetUpdate struct {
	BudgetType          *models.BudgetType
	ValidFrom           *string
	ValidUntil          *string
	TotalIncomeExpected *decimal.Decimal
	FixedCosts          models.CategoryAmounts
	VariableCosts       models.CategoryAmounts
	SavingsTarget       *decimal.Decimal
	DiscretionaryBudget *decimal.Decimal
	CategoryLimits      models.CategoryAmounts
	IsActive            *bool
}

// UpdateBudget applies the non-nil fields of upd to a budget the user owns.
func (c *Client) UpdateBudget(ctx context.Context, userID, budgetID string, upd BudgetUpdate) (*models.Budget, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if upd.BudgetType != nil {
		updates["budget_type"] = *upd.BudgetType
	}
	setIf(updates, "valid_from", upd.ValidFrom)
	setIf(updates, "valid_until", upd.ValidUntil)
	setIfDec(updates, "total_income_expected", upd.TotalIncomeExpected)
	if upd.FixedCosts != nil {
		updates["fixed_costs"] = upd.FixedCosts
	}
	if upd.VariableCosts != nil {
		updates["variable_costs"] = upd.VariableCosts
	}
	setIfDec(updates, "savings_target", upd.SavingsTarget)
	setIfDec(updates, "discretionary_budget", upd.DiscretionaryBudget)
	if upd.CategoryLimits != nil {
		updates["category_limits"] = upd.CategoryLimits
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}

	if len(updates) > 0 {
		res := c.conn(ctx).Model(&models.Budget{}).
			Where("id = ? AND user_id = ?", budgetID, userID).
			Updates(updates)
		if res.Error != nil {
			return nil, wrap(res.Error, apperrors.ErrBudgetNotFound)
		}
		if res.RowsAffected == 0 {
			return nil, apperrors.ErrBudgetNotFound
		}
	}

	var budget models.Budget
	if err := c.conn(ctx).Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		return nil, wrap(err, apperrors.ErrBudgetNotFound)
	}
	return &budget, nil
}

// CategoryProgress reports spend against one category limit.
type CategoryProgress struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Spent    decimal.Decimal `json:"spent"`
	Percent  float64         `json:"percent"`
}

// BudgetProgress reports spend against a budget's category limits over its
// validity window.
type BudgetProgress struct {
	BudgetID   string             `json:"budget_id"`
	ValidFrom  string             `json:"valid_from"`
	ValidUntil string             `json:"valid_until"`
	TotalSpent decimal.Decimal    `json:"total_spent"`
	Categories []CategoryProgress `json:"categories"`
}

// GetBudgetProgress computes spend within the budget's window against each
// category limit. Transaction categories match budget categories
// case-insensitively.
func (c *Client) GetBudgetProgress(ctx context.Context, userID, budgetID string) (*BudgetProgress, error) {
	if err := requireIdentity(userID); err != nil {
		return nil, err
	}

	var budget models.Budget
	if err := c.conn(ctx).Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		return nil, wrap(err, apperrors.ErrBudgetNotFound)
	}

	expenseType := models.TransactionTypeExpense
	txns, err := c.ListTransactions(ctx, userID, TransactionFilter{
		DateStart: budget.ValidFrom,
		DateEnd:   budget.ValidUntil,
		Type:      &expenseType,
	})
	if err != nil {
		return nil, err
	}

	spentByCategory := make(map[string]decimal.Decimal)
	var totalSpent decimal.Decimal
	for _, t := range txns {
		key := strings.ToLower(t.Category)
		spentByCategory[key] = spentByCategory[key].Add(t.Amount)
		totalSpent = totalSpent.Add(t.Amount)
	}

	progress := &BudgetProgress{
		BudgetID:   budget.ID,
		ValidFrom:  budget.ValidFrom,
		ValidUntil: budget.ValidUntil,
		TotalSpent: totalSpent,
		Categories: make([]CategoryProgress, 0, len(budget.CategoryLimits)),
	}
	for category, limit := range budget.CategoryLimits {
		spent := spentByCategory[strings.ToLower(category)]
		var percent float64
		if limit.IsPositive() {
			percent, _ = spent.Div(limit).Mul(decimal.NewFromInt(100)).Float64()
		}
		progress.Categories = append(progress.Categories, CategoryProgress{
			Category: category,
			Limit:    limit,
			Spent:    spent,
			Percent:  percent,
		})
	}
	sort.Slice(progress.Categories, func(i, j int) bool {
		return progress.Categories[i].Category < progress.Categories[j].Category
	})
	return progress, nil
}
