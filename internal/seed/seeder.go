// Package seed populates a brand-new account with demonstration data so the
// first session shows a lived-in ledger instead of empty screens.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fincoach/internal/models"
	"fincoach/internal/store"
)

// Seeder writes demonstration data through the backing-store client.
type Seeder struct {
	store *store.Client
	log   *zap.SugaredLogger
	now   func() time.Time
	rng   *rand.Rand
}

// New creates a seeder. now and rng may be overridden in tests via the
// With* options.
func New(st *store.Client, log *zap.SugaredLogger, opts ...Option) *Seeder {
	s := &Seeder{
		store: st,
		log:   log,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithClock overrides the seeder's notion of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) { s.now = now }
}

// WithRand overrides the seeder's randomness source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Seeder) { s.rng = rng }
}

// HasData reports whether the user already has any meaningful data. A user
// counts as seeded when they have transactions, a risk assessment, or
// scheduled actions.
func (s *Seeder) HasData(ctx context.Context, userID string) (bool, error) {
	txns, err := s.store.ListTransactions(ctx, userID, store.TransactionFilter{})
	if err != nil {
		return false, err
	}
	if len(txns) > 0 {
		return true, nil
	}

	assessment, err := s.store.LatestRiskAssessment(ctx, userID)
	if err != nil {
		return false, err
	}
	if assessment != nil {
		return true, nil
	}

	actions, err := s.store.ListActions(ctx, userID, store.ActionFilter{})
	if err != nil {
		return false, err
	}
	return len(actions) > 0, nil
}

// Seed populates demonstration data for the user unless they already have
// data. Returns true when data was written.
func (s *Seeder) Seed(ctx context.Context, userID string) (bool, error) {
	has, err := s.HasData(ctx, userID)
	if err != nil {
		return false, err
	}
	if has {
		s.log.Debugw("skipping seed, user already has data", "user_id", userID)
		return false, nil
	}
	if err := s.ForceSeed(ctx, userID); err != nil {
		return false, err
	}
	return true, nil
}

// ForceSeed writes demonstration data without checking for existing rows.
func (s *Seeder) ForceSeed(ctx context.Context, userID string) error {
	if err := s.seedTransactions(ctx, userID); err != nil {
		return fmt.Errorf("seeding transactions: %w", err)
	}
	if err := s.seedRiskAssessment(ctx, userID); err != nil {
		return fmt.Errorf("seeding risk assessment: %w", err)
	}
	if err := s.seedActions(ctx, userID); err != nil {
		return fmt.Errorf("seeding actions: %w", err)
	}
	if err := s.seedRecommendations(ctx, userID); err != nil {
		return fmt.Errorf("seeding recommendations: %w", err)
	}
	s.log.Infow("seeded demonstration data", "user_id", userID)
	return nil
}

var incomeSources = []string{"Uber", "Swiggy", "Zomato", "Freelance", "Delivery"}

type expenseTemplate struct {
	category    string
	description string
	min, max    int
}

var expenseTemplates = []expenseTemplate{
	{"Food", "Lunch", 80, 250},
	{"Food", "Groceries", 150, 600},
	{"Transport", "Fuel", 100, 400},
	{"Transport", "Auto fare", 40, 150},
	{"Utilities", "Mobile recharge", 100, 300},
	{"Misc", "Household items", 50, 350},
}

// seedTransactions writes 30 days of gig-economy history: income roughly
// every third day and one small expense per day.
func (s *Seeder) seedTransactions(ctx context.Context, userID string) error {
	today := s.now()
	var inputs []store.TransactionInput

	for daysAgo := 29; daysAgo >= 0; daysAgo-- {
		date := today.AddDate(0, 0, -daysAgo).Format(models.DateFormat)

		if daysAgo%3 == 0 {
			amount := decimal.NewFromInt(int64(500 + s.rng.Intn(1001)))
			source := incomeSources[s.rng.Intn(len(incomeSources))]
			inputs = append(inputs, store.TransactionInput{
				TransactionDate: date,
				TransactionTime: fmt.Sprintf("%02d:%02d", 18+s.rng.Intn(4), s.rng.Intn(60)),
				Amount:          amount,
				Type:            models.TransactionTypeIncome,
				Category:        "Gig Work",
				Description:     source + " earnings",
				PaymentMethod:   "UPI",
				Source:          source,
				InputMethod:     "manual",
			})
		}

		tpl := expenseTemplates[s.rng.Intn(len(expenseTemplates))]
		amount := decimal.NewFromInt(int64(tpl.min + s.rng.Intn(tpl.max-tpl.min+1)))
		inputs = append(inputs, store.TransactionInput{
			TransactionDate: date,
			TransactionTime: fmt.Sprintf("%02d:%02d", 9+s.rng.Intn(12), s.rng.Intn(60)),
			Amount:          amount,
			Type:            models.TransactionTypeExpense,
			Category:        tpl.category,
			Description:     tpl.description,
			PaymentMethod:   "UPI",
			InputMethod:     "manual",
		})
	}

	return s.store.CreateTransactions(ctx, userID, inputs)
}

func (s *Seeder) seedRiskAssessment(ctx context.Context, userID string) error {
	assessment := &models.RiskAssessment{
		AssessmentDate:   s.now().Format(models.DateFormat),
		OverallRiskLevel: models.RiskLevelMedium,
		RiskScore:        55,
		RiskFactors: models.RiskFactorList{
			{Factor: "Irregular income", Impact: "Earnings vary week to week across gig platforms"},
			{Factor: "No emergency fund", Impact: "A single bad week would force borrowing"},
		},
		DebtToIncomeRatio:     0.2,
		IncomeDropPercentage:  10,
		ExpenseSpikeFactor:    1.1,
		EmergencyFundCoverage: 0.5,
		RecommendedActions: models.ActionItemList{
			{Action: "Start a daily savings habit", Description: "Set aside a small fixed amount every day"},
			{Action: "Track platform earnings weekly", Description: "Compare income across platforms to spot drops early"},
		},
	}
	_, err := s.store.CreateRiskAssessment(ctx, userID, assessment)
	return err
}

func (s *Seeder) seedActions(ctx context.Context, userID string) error {
	today := s.now().Format(models.DateFormat)
	nextWeek := s.now().AddDate(0, 0, 7).Format(models.DateFormat)
	nextMonth := s.now().AddDate(0, 1, 0).Format(models.DateFormat)

	type seededAction struct {
		input  store.ActionInput
		status []models.ActionStatus // transitions to walk after creation
	}

	seedActions := []seededAction{
		{
			input: store.ActionInput{
				ActionType:        "auto_save",
				ActionDescription: "Move ₹50 to savings every evening",
				Amount:            decimal.NewFromInt(50),
				Schedule:          models.ScheduleDaily,
				UserApproved:      true,
				IsReversible:      true,
				Today:             today,
			},
			status: []models.ActionStatus{models.ActionStatusActive},
		},
		{
			input: store.ActionInput{
				ActionType:        "debt_payment",
				ActionDescription: "Weekly repayment towards hand loan",
				Amount:            decimal.NewFromInt(500),
				Schedule:          models.ScheduleWeekly,
				TargetDate:        nextWeek,
				IsReversible:      false,
				Today:             today,
			},
		},
		{
			input: store.ActionInput{
				ActionType:        "savings_transfer",
				ActionDescription: "Weekly top-up of emergency fund",
				Amount:            decimal.NewFromInt(200),
				Schedule:          models.ScheduleWeekly,
				TargetDate:        nextWeek,
				IsReversible:      true,
				Today:             today,
			},
		},
		{
			input: store.ActionInput{
				ActionType:        "investment",
				ActionDescription: "Monthly SIP into index fund",
				Amount:            decimal.NewFromInt(1000),
				Schedule:          models.ScheduleMonthly,
				TargetDate:        nextMonth,
				IsReversible:      true,
				Today:             today,
			},
		},
		{
			input: store.ActionInput{
				ActionType:        "budget_limit",
				ActionDescription: "Cap eating out at ₹1500 this month",
				Amount:            decimal.NewFromInt(1500),
				Schedule:          models.ScheduleMonthly,
				IsReversible:      true,
				Today:             today,
			},
		},
		{
			input: store.ActionInput{
				ActionType:        "auto_save",
				ActionDescription: "One-time transfer to festival fund",
				Amount:            decimal.NewFromInt(300),
				Schedule:          models.ScheduleOnce,
				UserApproved:      true,
				IsReversible:      true,
				Today:             today,
			},
			status: []models.ActionStatus{models.ActionStatusActive, models.ActionStatusCompleted},
		},
		{
			input: store.ActionInput{
				ActionType:        "debt_payment",
				ActionDescription: "Cleared small shop credit",
				Amount:            decimal.NewFromInt(250),
				Schedule:          models.ScheduleOnce,
				UserApproved:      true,
				IsReversible:      false,
				Today:             today,
			},
			status: []models.ActionStatus{models.ActionStatusActive, models.ActionStatusCompleted},
		},
	}

	for _, sa := range seedActions {
		action, err := s.store.CreateAction(ctx, userID, sa.input)
		if err != nil {
			return err
		}
		for _, to := range sa.status {
			if _, err := s.store.UpdateActionStatus(ctx, userID, action.ID, to); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedRecommendations(ctx context.Context, userID string) error {
	target := decimal.NewFromInt(3000)
	recs := []*models.Recommendation{
		{
			Type:        "savings",
			Priority:    models.PriorityHigh,
			Title:       "Build a one-month expense buffer",
			Description: "Your expenses are steady but your income is not. A buffer of about ₹3000 covers a slow week.",
			ActionItems: models.ActionItemList{
				{Action: "Save ₹50 daily", Description: "Small daily amounts beat occasional large ones"},
			},
			TargetAmount:    &target,
			ConfidenceScore: 0.8,
			AgentSource:     "savings_agent",
		},
		{
			Type:        "expense",
			Priority:    models.PriorityMedium,
			Title:       "Food spending is trending up",
			Description: "Food is your largest expense category this month. Cooking two more meals a week would save roughly ₹600.",
			ActionItems: models.ActionItemList{
				{Action: "Set a weekly food budget", Description: "Cap food spending and check it every Sunday"},
			},
			ConfidenceScore: 0.7,
			AgentSource:     "expense_agent",
		},
		{
			Type:        "income",
			Priority:    models.PriorityHigh,
			Title:       "Diversify your gig platforms",
			Description: "Most of your income comes from one platform. Adding a second platform smooths out slow days.",
			ActionItems: models.ActionItemList{
				{Action: "Register on one more platform", Description: "Start with weekends to test demand"},
			},
			ConfidenceScore: 0.75,
			AgentSource:     "income_agent",
		},
	}

	for _, rec := range recs {
		if _, err := s.store.CreateRecommendation(ctx, userID, rec); err != nil {
			return err
		}
	}
	return nil
}
