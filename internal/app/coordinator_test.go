package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fincoach/internal/analysis"
	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
	"fincoach/internal/session"
	"fincoach/internal/store"
	"fincoach/internal/testutil"
)

// fakeStore is a scriptable DataStore.
type fakeStore struct {
	mu sync.Mutex

	loginResult  *store.AuthResult
	loginErr     error
	signupResult *store.AuthResult
	signupErr    error
	user         *models.User
	userErr      error

	transactions    []models.Transaction
	transactionsErr error
	recs            []models.Recommendation
	recsErr         error

	created   *models.Transaction
	createErr error

	// hooks run inside the list calls, after the call is counted
	onListTransactions    func()
	onListRecommendations func()

	calls map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{calls: make(map[string]int)}
}

func (f *fakeStore) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeStore) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStore) Login(context.Context, string, string) (*store.AuthResult, error) {
	f.count("Login")
	return f.loginResult, f.loginErr
}

func (f *fakeStore) Signup(context.Context, store.SignupParams) (*store.AuthResult, error) {
	f.count("Signup")
	return f.signupResult, f.signupErr
}

func (f *fakeStore) GetUser(context.Context, string) (*models.User, error) {
	f.count("GetUser")
	return f.user, f.userErr
}

func (f *fakeStore) ListTransactions(context.Context, string, store.TransactionFilter) ([]models.Transaction, error) {
	f.count("ListTransactions")
	if f.onListTransactions != nil {
		f.onListTransactions()
	}
	return f.transactions, f.transactionsErr
}

func (f *fakeStore) ListRecommendations(context.Context, string, store.RecommendationFilter) ([]models.Recommendation, error) {
	f.count("ListRecommendations")
	if f.onListRecommendations != nil {
		f.onListRecommendations()
	}
	return f.recs, f.recsErr
}

func (f *fakeStore) CreateTransaction(context.Context, string, store.TransactionInput) (*models.Transaction, error) {
	f.count("CreateTransaction")
	return f.created, f.createErr
}

type fakeAnalysis struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (f *fakeAnalysis) TriggerAnalysis(context.Context, string) (*analysis.TriggerResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.done != nil {
		close(f.done)
	}
	return &analysis.TriggerResponse{AnalysisStarted: true}, nil
}

func (f *fakeAnalysis) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSeeder struct {
	mu     sync.Mutex
	calls  int
	seeded bool
	err    error
}

func (f *fakeSeeder) Seed(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.seeded, f.err
}

func testUser() *models.User {
	u := &models.User{PhoneNumber: "9876543210", FullName: "Asha Kumar", IsActive: true}
	u.ID = "user-1"
	return u
}

func txn(id, date string, txType models.TransactionType, amount int64) models.Transaction {
	t := models.Transaction{
		UserID:          "user-1",
		TransactionDate: date,
		Amount:          decimal.NewFromInt(amount),
		Type:            txType,
	}
	t.ID = id
	return t
}

const testToday = "2025-08-20"

func newTestCoordinator(t *testing.T, fs *fakeStore) (*Coordinator, *session.Store) {
	t.Helper()
	sess, err := session.Open(t.TempDir())
	if err != nil {
		t.Fatalf("session open failed: %v", err)
	}
	c := New(Deps{
		Session:   sess,
		Store:     fs,
		DailyGoal: decimal.NewFromInt(300),
		Today:     func() string { return testToday },
	})
	t.Cleanup(c.Close)
	return c, sess
}

func TestInitialize_NoSessionIsAnonymous(t *testing.T) {
	c, _ := newTestCoordinator(t, newFakeStore())

	c.Initialize(context.Background())

	snap := c.Snapshot()
	if snap.Phase != PhaseAnonymous {
		t.Errorf("expected anonymous, got %s", snap.Phase)
	}
	if snap.Route != RouteLanding {
		t.Errorf("expected landing route, got %s", snap.Route)
	}
	if snap.Load != LoadLoaded {
		t.Errorf("anonymous phase should finish loading, got %s", snap.Load)
	}
}

func TestInitialize_RestoresCredential(t *testing.T) {
	fs := newFakeStore()
	fs.transactions = []models.Transaction{
		txn("t1", testToday, models.TransactionTypeIncome, 500),
		txn("t2", "2025-08-19", models.TransactionTypeExpense, 200),
	}
	c, sess := newTestCoordinator(t, fs)

	err := sess.SetCredential(session.Credential{
		Token: "token-abc",
		User:  session.UserSummary{ID: "user-1", FullName: "Asha Kumar"},
	})
	testutil.AssertNoError(t, err)

	c.Initialize(context.Background())

	snap := c.Snapshot()
	if snap.Phase != PhaseAuthenticated {
		t.Fatalf("expected authenticated, got %s", snap.Phase)
	}
	if snap.Route != RouteHome {
		t.Errorf("expected home route, got %s", snap.Route)
	}
	if snap.User == nil || snap.User.ID != "user-1" {
		t.Errorf("expected cached user, got %+v", snap.User)
	}
	if !snap.Balance.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected balance 300, got %s", snap.Balance)
	}
	// Credential restore must not hit the network for the user record.
	if fs.callCount("GetUser") != 0 {
		t.Error("credential restore should use the cached user summary")
	}
}

func TestInitialize_BareIdentityResolvesUser(t *testing.T) {
	fs := newFakeStore()
	fs.user = testUser()
	c, sess := newTestCoordinator(t, fs)
	testutil.AssertNoError(t, sess.SetIdentity("user-1"))

	c.Initialize(context.Background())

	snap := c.Snapshot()
	if snap.Phase != PhaseAuthenticated {
		t.Fatalf("expected authenticated via bare identity, got %s", snap.Phase)
	}
	if fs.callCount("GetUser") != 1 {
		t.Error("bare identity path must resolve the user record")
	}
}

func TestInitialize_StaleIdentityFallsBackToAnonymous(t *testing.T) {
	fs := newFakeStore()
	fs.userErr = apperrors.ErrUserNotFound
	c, sess := newTestCoordinator(t, fs)
	testutil.AssertNoError(t, sess.SetIdentity("ghost"))

	c.Initialize(context.Background())

	snap := c.Snapshot()
	if snap.Phase != PhaseAnonymous {
		t.Errorf("expected anonymous fallback, got %s", snap.Phase)
	}
	if sess.Identity() != "" {
		t.Error("stale identity should be cleared")
	}
}

func TestLogin_Success(t *testing.T) {
	fs := newFakeStore()
	fs.loginResult = &store.AuthResult{Token: "token-1", User: *testUser()}
	fs.transactions = []models.Transaction{txn("t1", testToday, models.TransactionTypeIncome, 150)}
	seeder := &fakeSeeder{}
	ana := &fakeAnalysis{done: make(chan struct{})}

	sess, err := session.Open(t.TempDir())
	testutil.AssertNoError(t, err)
	c := New(Deps{
		Session:   sess,
		Store:     fs,
		Analysis:  ana,
		Seeder:    seeder,
		DailyGoal: decimal.NewFromInt(300),
		Today:     func() string { return testToday },
	})
	defer c.Close()

	err = c.Login(context.Background(), "9876543210", "password123")
	testutil.AssertNoError(t, err)

	snap := c.Snapshot()
	if snap.Phase != PhaseAuthenticated || snap.Route != RouteHome {
		t.Errorf("expected authenticated at home, got %s %s", snap.Phase, snap.Route)
	}
	if sess.Credential() == nil {
		t.Error("login must persist the credential")
	}
	if seeder.calls != 1 {
		t.Errorf("expected one seed attempt, got %d", seeder.calls)
	}
	// Goal progress: 150 of 300.
	if snap.GoalProgress != 50 {
		t.Errorf("expected 50%% goal progress, got %v", snap.GoalProgress)
	}

	select {
	case <-ana.done:
	case <-time.After(time.Second):
		t.Fatal("analysis trigger never fired")
	}
}

func TestLogin_FailureKeepsAnonymous(t *testing.T) {
	fs := newFakeStore()
	fs.loginErr = apperrors.ErrInvalidCredentials
	c, sess := newTestCoordinator(t, fs)
	c.Initialize(context.Background())

	err := c.Login(context.Background(), "9876543210", "wrong")
	testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

	snap := c.Snapshot()
	if snap.Phase != PhaseAnonymous {
		t.Errorf("failed login must not authenticate, got %s", snap.Phase)
	}
	if snap.Err == nil {
		t.Error("snapshot should surface the login error")
	}
	if sess.Credential() != nil {
		t.Error("failed login must not persist a credential")
	}
}

func TestSignup_ValidationBeforeNetwork(t *testing.T) {
	fs := newFakeStore()
	c, _ := newTestCoordinator(t, fs)

	err := c.Signup(context.Background(), SignupParams{
		PhoneNumber: "12345", // not 10 digits
		Password:    "secret99",
		FullName:    "Asha",
	})
	testutil.AssertAppError(t, err, "INVALID_REQUEST")

	if fs.callCount("Signup") != 0 {
		t.Error("invalid input must never reach the store")
	}
}

func TestSignup_SeedsAndLoads(t *testing.T) {
	fs := newFakeStore()
	fs.signupResult = &store.AuthResult{Token: "token-1", User: *testUser()}
	seeder := &fakeSeeder{seeded: true}

	sess, err := session.Open(t.TempDir())
	testutil.AssertNoError(t, err)
	c := New(Deps{
		Session:   sess,
		Store:     fs,
		Seeder:    seeder,
		DailyGoal: decimal.NewFromInt(300),
		Today:     func() string { return testToday },
	})
	defer c.Close()

	err = c.Signup(context.Background(), SignupParams{
		PhoneNumber:     "9876543210",
		Password:        "secret99",
		ConfirmPassword: "secret99",
		FullName:        "Asha Kumar",
	})
	testutil.AssertNoError(t, err)

	if seeder.calls != 1 {
		t.Errorf("expected seed after signup, got %d calls", seeder.calls)
	}
	if fs.callCount("ListTransactions") != 1 {
		t.Error("signup should load the first snapshot")
	}
}

func TestSeedFailureDoesNotBlockLogin(t *testing.T) {
	fs := newFakeStore()
	fs.loginResult = &store.AuthResult{Token: "token-1", User: *testUser()}
	seeder := &fakeSeeder{err: apperrors.ErrUnavailable}

	sess, err := session.Open(t.TempDir())
	testutil.AssertNoError(t, err)
	c := New(Deps{
		Session: sess,
		Store:   fs,
		Seeder:  seeder,
		Today:   func() string { return testToday },
	})
	defer c.Close()

	err = c.Login(context.Background(), "9876543210", "password123")
	testutil.AssertNoError(t, err)

	if c.Snapshot().Phase != PhaseAuthenticated {
		t.Error("seeding failure must not block login")
	}
}

func TestLoad_RecommendationsAreOptional(t *testing.T) {
	fs := newFakeStore()
	fs.transactions = []models.Transaction{txn("t1", testToday, models.TransactionTypeIncome, 100)}
	fs.recsErr = apperrors.ErrUnavailable
	c, sess := newTestCoordinator(t, fs)
	testutil.AssertNoError(t, sess.SetCredential(session.Credential{Token: "t", User: session.UserSummary{ID: "user-1"}}))

	c.Initialize(context.Background())

	snap := c.Snapshot()
	if snap.Load != LoadLoaded {
		t.Errorf("recommendation failure must not fail the load, got %s", snap.Load)
	}
	if len(snap.Recommendations) != 0 {
		t.Errorf("expected empty recommendations, got %d", len(snap.Recommendations))
	}
	if len(snap.Transactions) != 1 {
		t.Errorf("transactions should still be loaded, got %d", len(snap.Transactions))
	}
}

func TestLoad_TransactionFailureIsFatal(t *testing.T) {
	fs := newFakeStore()
	fs.transactionsErr = apperrors.ErrUnavailable
	c, sess := newTestCoordinator(t, fs)
	testutil.AssertNoError(t, sess.SetCredential(session.Credential{Token: "t", User: session.UserSummary{ID: "user-1"}}))

	c.Initialize(context.Background())

	snap := c.Snapshot()
	if snap.Load != LoadFailed {
		t.Errorf("expected failed load, got %s", snap.Load)
	}
	if snap.Err == nil {
		t.Error("failed load should carry its error")
	}
}

func TestAddTransaction_RequiresAuth(t *testing.T) {
	fs := newFakeStore()
	c, _ := newTestCoordinator(t, fs)
	c.Initialize(context.Background())

	_, err := c.AddTransaction(context.Background(), store.TransactionInput{
		TransactionDate: testToday,
		Amount:          decimal.NewFromInt(100),
		Type:            models.TransactionTypeExpense,
	})
	testutil.AssertAppError(t, err, "UNAUTHENTICATED")

	if fs.callCount("CreateTransaction") != 0 {
		t.Error("unauthenticated writes must never reach the store")
	}
}

func TestAddTransaction_OptimisticUpdate(t *testing.T) {
	fs := newFakeStore()
	fs.transactions = []models.Transaction{txn("t1", testToday, models.TransactionTypeIncome, 400)}
	c, sess := newTestCoordinator(t, fs)
	testutil.AssertNoError(t, sess.SetCredential(session.Credential{Token: "t", User: session.UserSummary{ID: "user-1"}}))
	c.Initialize(context.Background())

	created := txn("t2", testToday, models.TransactionTypeExpense, 150)
	fs.created = &created

	_, err := c.AddTransaction(context.Background(), store.TransactionInput{
		TransactionDate: testToday,
		Amount:          decimal.NewFromInt(150),
		Type:            models.TransactionTypeExpense,
	})
	testutil.AssertNoError(t, err)

	snap := c.Snapshot()
	if len(snap.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(snap.Transactions))
	}
	if snap.Transactions[0].ID != "t2" {
		t.Error("new transaction should be first")
	}
	// Balance and today figures adjust without a refetch.
	if fs.callCount("ListTransactions") != 1 {
		t.Error("optimistic update must not refetch")
	}
	if !snap.Balance.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected balance 250, got %s", snap.Balance)
	}
	if !snap.TodayExpense.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected today expense 150, got %s", snap.TodayExpense)
	}
	// Goal progress: (400-150)/300, clamped scale.
	want := float64(250) / 300 * 100
	if snap.GoalProgress < want-0.01 || snap.GoalProgress > want+0.01 {
		t.Errorf("expected progress ~%.2f, got %v", want, snap.GoalProgress)
	}
}

func TestGoalProgress_Clamped(t *testing.T) {
	fs := newFakeStore()
	c, _ := newTestCoordinator(t, fs)

	if got := c.goalProgress(decimal.NewFromInt(900), decimal.Zero); got != 100 {
		t.Errorf("progress above goal clamps to 100, got %v", got)
	}
	if got := c.goalProgress(decimal.Zero, decimal.NewFromInt(500)); got != 0 {
		t.Errorf("negative net clamps to 0, got %v", got)
	}
	if got := c.goalProgress(decimal.NewFromInt(150), decimal.Zero); got != 50 {
		t.Errorf("expected 50, got %v", got)
	}
}

func TestLogout_ClearsEverything(t *testing.T) {
	fs := newFakeStore()
	fs.transactions = []models.Transaction{txn("t1", testToday, models.TransactionTypeIncome, 400)}
	c, sess := newTestCoordinator(t, fs)
	testutil.AssertNoError(t, sess.SetCredential(session.Credential{Token: "t", User: session.UserSummary{ID: "user-1"}}))
	c.Initialize(context.Background())

	testutil.AssertNoError(t, c.Logout())

	snap := c.Snapshot()
	if snap.Phase != PhaseAnonymous || snap.Route != RouteLanding {
		t.Errorf("expected anonymous landing, got %s %s", snap.Phase, snap.Route)
	}
	if snap.User != nil || len(snap.Transactions) != 0 {
		t.Error("logout must drop cached data")
	}
	if !snap.Balance.IsZero() {
		t.Errorf("balance should reset, got %s", snap.Balance)
	}
	if sess.Credential() != nil || sess.Identity() != "" {
		t.Error("logout must clear the persisted session")
	}

	// Logging out again is a no-op, not an error.
	testutil.AssertNoError(t, c.Logout())
}

func TestUpdateRecommendationStatus_PatchesCacheLocally(t *testing.T) {
	fs := newFakeStore()
	rec := models.Recommendation{Status: models.RecommendationStatusPending, Title: "Save more"}
	rec.ID = "rec-1"
	fs.recs = []models.Recommendation{rec}
	c, sess := newTestCoordinator(t, fs)
	testutil.AssertNoError(t, sess.SetCredential(session.Credential{Token: "t", User: session.UserSummary{ID: "user-1"}}))
	c.Initialize(context.Background())

	listCallsBefore := fs.callCount("ListRecommendations")
	err := c.UpdateRecommendationStatus("rec-1", models.RecommendationStatusCompleted)
	testutil.AssertNoError(t, err)

	snap := c.Snapshot()
	if snap.Recommendations[0].Status != models.RecommendationStatusCompleted {
		t.Errorf("cached recommendation not patched: %+v", snap.Recommendations[0])
	}
	if snap.Recommendations[0].CompletedAt == nil {
		t.Error("completing should stamp CompletedAt in the cache")
	}
	// The update is local to the snapshot; nothing goes over the wire.
	if fs.callCount("ListRecommendations") != listCallsBefore {
		t.Error("status update must not touch the store")
	}
}

func TestUpdateRecommendationStatus_RequiresAuth(t *testing.T) {
	c, _ := newTestCoordinator(t, newFakeStore())
	c.Initialize(context.Background())

	err := c.UpdateRecommendationStatus("rec-1", models.RecommendationStatusAccepted)
	testutil.AssertAppError(t, err, "UNAUTHENTICATED")
}

func TestWatch_NotifiesOnPublish(t *testing.T) {
	fs := newFakeStore()
	c, _ := newTestCoordinator(t, fs)

	var mu sync.Mutex
	var phases []SessionPhase
	unsubscribe := c.Watch(func(s Snapshot) {
		mu.Lock()
		phases = append(phases, s.Phase)
		mu.Unlock()
	})

	c.Initialize(context.Background())

	mu.Lock()
	got := len(phases)
	last := phases[len(phases)-1]
	mu.Unlock()
	if got < 2 {
		t.Fatalf("expected initial callback plus updates, got %d", got)
	}
	if last != PhaseAnonymous {
		t.Errorf("final phase should be anonymous, got %s", last)
	}

	unsubscribe()
	before := got

	_ = c.Logout()

	mu.Lock()
	after := len(phases)
	mu.Unlock()
	if after != before {
		t.Error("unsubscribed watcher must not be notified")
	}
}

func TestRefresh_NoopWhenAnonymous(t *testing.T) {
	fs := newFakeStore()
	c, _ := newTestCoordinator(t, fs)
	c.Initialize(context.Background())

	c.Refresh(context.Background())

	if fs.callCount("ListTransactions") != 0 {
		t.Error("anonymous refresh must not hit the store")
	}
	if c.Snapshot().Phase != PhaseAnonymous {
		t.Error("anonymous refresh must leave the snapshot alone")
	}
}

func TestLogout_DropsInFlightLoad(t *testing.T) {
	fs := newFakeStore()
	fs.transactions = []models.Transaction{txn("t1", testToday, models.TransactionTypeIncome, 500)}
	c, sess := newTestCoordinator(t, fs)
	testutil.AssertNoError(t, sess.SetCredential(session.Credential{Token: "t", User: session.UserSummary{ID: "user-1"}}))
	c.Initialize(context.Background())

	// Block the next ledger fetch so a refresh is still in flight when
	// Logout runs.
	gate := make(chan struct{})
	fs.onListTransactions = func() { <-gate }

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Refresh(context.Background())
	}()

	deadline := time.Now().Add(time.Second)
	for fs.callCount("ListTransactions") < 2 {
		if time.Now().After(deadline) {
			t.Fatal("refresh never reached the store")
		}
		time.Sleep(time.Millisecond)
	}

	testutil.AssertNoError(t, c.Logout())
	close(gate)
	<-done

	snap := c.Snapshot()
	if snap.Phase != PhaseAnonymous {
		t.Errorf("expected anonymous, got %s", snap.Phase)
	}
	if len(snap.Transactions) != 0 {
		t.Errorf("stale load leaked %d transactions into the post-logout snapshot", len(snap.Transactions))
	}
	if !snap.Balance.IsZero() {
		t.Errorf("stale load leaked balance %s into the post-logout snapshot", snap.Balance)
	}
	if snap.User != nil {
		t.Error("stale load leaked the user into the post-logout snapshot")
	}
}

func TestLoad_FetchesConcurrently(t *testing.T) {
	fs := newFakeStore()
	// The ledger fetch waits for the recommendations fetch. A sequential
	// load would never release it.
	barrier := make(chan struct{})
	fs.onListTransactions = func() { <-barrier }
	fs.onListRecommendations = func() { close(barrier) }

	c, sess := newTestCoordinator(t, fs)
	testutil.AssertNoError(t, sess.SetCredential(session.Credential{Token: "t", User: session.UserSummary{ID: "user-1"}}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Initialize(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not finish; fetches are not concurrent")
	}
	if c.Snapshot().Load != LoadLoaded {
		t.Errorf("expected loaded, got %s", c.Snapshot().Load)
	}
}

func TestClose_StopsPublication(t *testing.T) {
	fs := newFakeStore()
	c, sess := newTestCoordinator(t, fs)
	testutil.AssertNoError(t, sess.SetCredential(session.Credential{Token: "t", User: session.UserSummary{ID: "user-1"}}))
	c.Initialize(context.Background())

	c.Close()
	c.Close() // idempotent

	_ = c.Logout()
	if c.Snapshot().Phase != PhaseAuthenticated {
		t.Error("closed coordinator must not publish")
	}
}
