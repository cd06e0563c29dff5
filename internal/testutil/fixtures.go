package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fincoach/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Today returns the current date in the format the models store.
func Today() string {
	return time.Now().Format(models.DateFormat)
}

// DaysAgo returns a date n days before today.
func DaysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format(models.DateFormat)
}

// CreateTestUser creates a user with a hashed password and unique phone number.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	phone := fmt.Sprintf("9%09d", nextID())
	return CreateTestUserWithPhone(t, db, phone)
}

// CreateTestUserWithPhone creates a user with the given phone number.
func CreateTestUserWithPhone(t *testing.T, db *gorm.DB, phone string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		PhoneNumber: phone,
		Password:    string(hash),
		FullName:    fmt.Sprintf("Test User %d", nextID()),
		IsActive:    true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestProfile creates a financial profile for the user.
func CreateTestProfile(t *testing.T, db *gorm.DB, userID string) *models.UserProfile {
	t.Helper()

	profile := &models.UserProfile{
		UserID:        userID,
		RiskTolerance: models.RiskToleranceModerate,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}

// CreateTestTransaction creates a transaction of the given type and amount
// dated today.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOn(t, db, userID, txType, amount, Today())
}

// CreateTestTransactionOn creates a transaction on a specific date.
func CreateTestTransactionOn(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amount int64, date string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:          userID,
		TransactionDate: date,
		TransactionTime: fmt.Sprintf("%02d:00", nextID()%24),
		Amount:          decimal.NewFromInt(amount),
		Type:            txType,
		Category:        "Misc",
		InputMethod:     "manual",
		Verified:        true,
		ConfidenceScore: 1.0,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates an active budget covering today.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string) *models.Budget {
	t.Helper()
	return CreateTestBudgetWindow(t, db, userID, DaysAgo(7), DaysAgo(-7))
}

// CreateTestBudgetWindow creates an active budget with the given window.
func CreateTestBudgetWindow(t *testing.T, db *gorm.DB, userID, from, until string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:              userID,
		BudgetType:          models.BudgetTypeNormal,
		ValidFrom:           from,
		ValidUntil:          until,
		TotalIncomeExpected: decimal.NewFromInt(10000),
		SavingsTarget:       decimal.NewFromInt(1000),
		CategoryLimits: models.CategoryAmounts{
			"Food":      decimal.NewFromInt(3000),
			"Transport": decimal.NewFromInt(1500),
		},
		IsActive: true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestRecommendation creates a pending recommendation.
func CreateTestRecommendation(t *testing.T, db *gorm.DB, userID string) *models.Recommendation {
	t.Helper()

	rec := &models.Recommendation{
		UserID:   userID,
		Type:     "savings",
		Priority: models.PriorityMedium,
		Title:    fmt.Sprintf("Test Recommendation %d", nextID()),
		Status:   models.RecommendationStatusPending,
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("failed to create test recommendation: %v", err)
	}
	return rec
}

// CreateTestBankAccount creates an active bank account.
func CreateTestBankAccount(t *testing.T, db *gorm.DB, userID string) *models.BankAccount {
	t.Helper()

	account := &models.BankAccount{
		UserID:         userID,
		AccountName:    fmt.Sprintf("Test Account %d", nextID()),
		Provider:       "Test Bank",
		CurrentBalance: decimal.NewFromInt(5000),
		Currency:       "INR",
		IsActive:       true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test bank account: %v", err)
	}
	return account
}

// CreateTestScheme creates an active government scheme.
func CreateTestScheme(t *testing.T, db *gorm.DB) *models.GovernmentScheme {
	t.Helper()

	n := nextID()
	scheme := &models.GovernmentScheme{
		SchemeName:      fmt.Sprintf("Test Scheme %d", n),
		SchemeCode:      fmt.Sprintf("TST-%d", n),
		SchemeType:      "pension",
		GovernmentLevel: "central",
		IsActive:        true,
	}
	if err := db.Create(scheme).Error; err != nil {
		t.Fatalf("failed to create test scheme: %v", err)
	}
	return scheme
}

// CreateTestRiskAssessment creates a risk assessment dated today.
func CreateTestRiskAssessment(t *testing.T, db *gorm.DB, userID string) *models.RiskAssessment {
	t.Helper()

	assessment := &models.RiskAssessment{
		UserID:           userID,
		AssessmentDate:   Today(),
		OverallRiskLevel: models.RiskLevelMedium,
		RiskScore:        50,
	}
	if err := db.Create(assessment).Error; err != nil {
		t.Fatalf("failed to create test risk assessment: %v", err)
	}
	return assessment
}

// CreateTestAction creates a pending scheduled action.
func CreateTestAction(t *testing.T, db *gorm.DB, userID string) *models.ScheduledAction {
	t.Helper()

	action := &models.ScheduledAction{
		UserID:        userID,
		ActionType:    "auto_save",
		Amount:        decimal.NewFromInt(100),
		Status:        models.ActionStatusPending,
		Schedule:      models.ScheduleOnce,
		NextExecution: Today(),
		IsReversible:  true,
	}
	if err := db.Create(action).Error; err != nil {
		t.Fatalf("failed to create test action: %v", err)
	}
	return action
}
