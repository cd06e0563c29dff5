package seed

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fincoach/internal/models"
	"fincoach/internal/store"
	"fincoach/internal/testutil"
)

type seedEnv struct {
	seeder *Seeder
	client *store.Client
	db     *gorm.DB
	userID string
}

func newTestSeeder(t *testing.T) seedEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	client := store.NewClient(db, store.NewTokenIssuer("test-secret", time.Hour))
	user := testutil.CreateTestUser(t, db)
	seeder := New(client, zap.NewNop().Sugar(), WithRand(rand.New(rand.NewSource(1))))
	return seedEnv{seeder: seeder, client: client, db: db, userID: user.ID}
}

func TestSeed_PopulatesFreshAccount(t *testing.T) {
	env := newTestSeeder(t)
	seeder, client, userID := env.seeder, env.client, env.userID
	ctx := context.Background()

	seeded, err := seeder.Seed(ctx, userID)
	testutil.AssertNoError(t, err)
	if !seeded {
		t.Fatal("fresh account should be seeded")
	}

	txns, err := client.ListTransactions(ctx, userID, store.TransactionFilter{})
	testutil.AssertNoError(t, err)
	// 30 daily expenses plus income roughly every third day.
	if len(txns) < 30 {
		t.Errorf("expected at least 30 transactions, got %d", len(txns))
	}

	var hasIncome, hasExpense bool
	for _, txn := range txns {
		switch txn.Type {
		case models.TransactionTypeIncome:
			hasIncome = true
			if txn.Category != "Gig Work" {
				t.Errorf("seeded income category should be Gig Work, got %q", txn.Category)
			}
		case models.TransactionTypeExpense:
			hasExpense = true
		}
	}
	if !hasIncome || !hasExpense {
		t.Error("seed should produce both income and expenses")
	}

	assessment, err := client.LatestRiskAssessment(ctx, userID)
	testutil.AssertNoError(t, err)
	if assessment == nil {
		t.Error("seed should create a risk assessment")
	}

	actions, err := client.ListActions(ctx, userID, store.ActionFilter{})
	testutil.AssertNoError(t, err)
	if len(actions) != 7 {
		t.Errorf("expected 7 scheduled actions, got %d", len(actions))
	}
	var completed int
	for _, a := range actions {
		if a.Status == models.ActionStatusCompleted {
			completed++
		}
	}
	if completed != 2 {
		t.Errorf("expected 2 completed actions, got %d", completed)
	}

	recs, err := client.ListRecommendations(ctx, userID, store.RecommendationFilter{})
	testutil.AssertNoError(t, err)
	if len(recs) != 3 {
		t.Errorf("expected 3 recommendations, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.Status != models.RecommendationStatusPending {
			t.Errorf("seeded recommendations start pending, got %q", rec.Status)
		}
	}
}

func TestSeed_Idempotent(t *testing.T) {
	env := newTestSeeder(t)
	seeder, client, userID := env.seeder, env.client, env.userID
	ctx := context.Background()

	seeded, err := seeder.Seed(ctx, userID)
	testutil.AssertNoError(t, err)
	if !seeded {
		t.Fatal("first run should seed")
	}

	before, err := client.ListTransactions(ctx, userID, store.TransactionFilter{})
	testutil.AssertNoError(t, err)

	seeded, err = seeder.Seed(ctx, userID)
	testutil.AssertNoError(t, err)
	if seeded {
		t.Error("second run must be a no-op")
	}

	after, err := client.ListTransactions(ctx, userID, store.TransactionFilter{})
	testutil.AssertNoError(t, err)
	if len(after) != len(before) {
		t.Errorf("second run changed row count: %d -> %d", len(before), len(after))
	}
}

func TestForceSeed_WritesEveryTime(t *testing.T) {
	env := newTestSeeder(t)
	ctx := context.Background()

	testutil.AssertNoError(t, env.seeder.ForceSeed(ctx, env.userID))
	first, err := env.client.ListTransactions(ctx, env.userID, store.TransactionFilter{})
	testutil.AssertNoError(t, err)
	if len(first) == 0 {
		t.Fatal("first pass wrote no transactions")
	}

	// ForceSeed skips the existing-data check, so a second pass doubles
	// every table it touches.
	testutil.AssertNoError(t, env.seeder.ForceSeed(ctx, env.userID))

	second, err := env.client.ListTransactions(ctx, env.userID, store.TransactionFilter{})
	testutil.AssertNoError(t, err)
	if len(second) != 2*len(first) {
		t.Errorf("expected %d transactions after second pass, got %d", 2*len(first), len(second))
	}

	actions, err := env.client.ListActions(ctx, env.userID, store.ActionFilter{})
	testutil.AssertNoError(t, err)
	if len(actions) != 14 {
		t.Errorf("expected 14 actions after two passes, got %d", len(actions))
	}

	recs, err := env.client.ListRecommendations(ctx, env.userID, store.RecommendationFilter{})
	testutil.AssertNoError(t, err)
	if len(recs) != 6 {
		t.Errorf("expected 6 recommendations after two passes, got %d", len(recs))
	}

	assessments, err := env.client.ListRiskAssessments(ctx, env.userID)
	testutil.AssertNoError(t, err)
	if len(assessments) != 2 {
		t.Errorf("expected 2 risk assessments after two passes, got %d", len(assessments))
	}
}

func TestSeed_SkipsWhenAnyDataExists(t *testing.T) {
	env := newTestSeeder(t)
	ctx := context.Background()

	// A lone risk assessment counts as existing data even with no ledger.
	testutil.CreateTestRiskAssessment(t, env.db, env.userID)

	seeded, err := env.seeder.Seed(ctx, env.userID)
	testutil.AssertNoError(t, err)
	if seeded {
		t.Error("account with an assessment should not be reseeded")
	}
}

func TestHasData_FreshAccount(t *testing.T) {
	env := newTestSeeder(t)

	has, err := env.seeder.HasData(context.Background(), env.userID)
	testutil.AssertNoError(t, err)
	if has {
		t.Error("fresh account should report no data")
	}
}
