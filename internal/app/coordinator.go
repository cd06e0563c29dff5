// Package app coordinates the session store, the backing-store client, the
// analysis client, and the seeder into one stateful facade. It owns the only
// in-memory cache of the user's data and publishes immutable snapshots to
// watchers whenever that cache changes.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fincoach/internal/analysis"
	apperrors "fincoach/internal/errors"
	"fincoach/internal/models"
	"fincoach/internal/session"
	"fincoach/internal/store"
	"fincoach/internal/validator"
)

// DataStore is the slice of the backing-store client the coordinator uses.
type DataStore interface {
	Login(ctx context.Context, phoneNumber, password string) (*store.AuthResult, error)
	Signup(ctx context.Context, params store.SignupParams) (*store.AuthResult, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListTransactions(ctx context.Context, userID string, f store.TransactionFilter) ([]models.Transaction, error)
	ListRecommendations(ctx context.Context, userID string, f store.RecommendationFilter) ([]models.Recommendation, error)
	CreateTransaction(ctx context.Context, userID string, in store.TransactionInput) (*models.Transaction, error)
}

// AnalysisTrigger starts a remote analysis run.
type AnalysisTrigger interface {
	TriggerAnalysis(ctx context.Context, userID string) (*analysis.TriggerResponse, error)
}

// DataSeeder populates a fresh account with demonstration data.
type DataSeeder interface {
	Seed(ctx context.Context, userID string) (bool, error)
}

// SessionPhase describes where the coordinator is in its auth lifecycle.
type SessionPhase string

const (
	PhaseUninitialized SessionPhase = "uninitialized"
	PhaseInitializing  SessionPhase = "initializing"
	PhaseAuthenticated SessionPhase = "authenticated"
	PhaseAnonymous     SessionPhase = "anonymous"
)

// LoadPhase describes the state of the cached data.
type LoadPhase string

const (
	LoadIdle    LoadPhase = "idle"
	LoadLoading LoadPhase = "loading"
	LoadLoaded  LoadPhase = "loaded"
	LoadFailed  LoadPhase = "failed"
)

// Route names the screen the UI should show.
type Route string

const (
	RouteLanding Route = "landing"
	RouteHome    Route = "home"
)

// Snapshot is an immutable view of the coordinator's state. Slices are
// never mutated after publication; watchers may read them freely.
type Snapshot struct {
	Phase SessionPhase
	Load  LoadPhase
	Route Route

	User            *session.UserSummary
	Balance         decimal.Decimal
	Transactions    []models.Transaction
	Recommendations []models.Recommendation

	TodayIncome  decimal.Decimal
	TodayExpense decimal.Decimal
	DailyGoal    decimal.Decimal
	GoalProgress float64

	// Err holds the most recent operation error, cleared on the next
	// successful operation. Partial-load failures land here while the
	// rest of the snapshot stays usable.
	Err error
}

// Deps are the coordinator's collaborators. Session and Store are required;
// Analysis and Seeder degrade gracefully when nil.
type Deps struct {
	Session   *session.Store
	Store     DataStore
	Analysis  AnalysisTrigger
	Seeder    DataSeeder
	Log       *zap.SugaredLogger
	DailyGoal decimal.Decimal
	Today     func() string // returns the current date as YYYY-MM-DD
}

// Coordinator is the stateful facade over the client's collaborators.
// Safe for concurrent use.
type Coordinator struct {
	session   *session.Store
	store     DataStore
	analysis  AnalysisTrigger
	seeder    DataSeeder
	log       *zap.SugaredLogger
	dailyGoal decimal.Decimal
	today     func() string

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup

	mu       sync.Mutex
	snap     Snapshot
	gen      uint64 // invalidates in-flight loads on auth changes
	closed   bool
	watchers map[int]func(Snapshot)
	nextID   int
}

// New creates a coordinator in the uninitialized phase. Call Initialize to
// restore the persisted session.
func New(deps Deps) *Coordinator {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	c := &Coordinator{
		session:   deps.Session,
		store:     deps.Store,
		analysis:  deps.Analysis,
		seeder:    deps.Seeder,
		log:       deps.Log,
		dailyGoal: deps.DailyGoal,
		today:     deps.Today,
		bgCtx:     bgCtx,
		bgCancel:  bgCancel,
		watchers:  make(map[int]func(Snapshot)),
		snap: Snapshot{
			Phase: PhaseUninitialized,
			Load:  LoadIdle,
			Route: RouteLanding,
		},
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	if c.dailyGoal.IsZero() {
		c.dailyGoal = decimal.NewFromInt(300)
	}
	c.snap.DailyGoal = c.dailyGoal
	return c
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Watch registers a callback invoked with every published snapshot,
// starting with the current one. The returned function unregisters it.
func (c *Coordinator) Watch(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	current := c.snap
	c.mu.Unlock()

	fn(current)
	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

// publish mutates the snapshot under lock and fans it out to watchers.
// No-op after Close.
func (c *Coordinator) publish(mutate func(*Snapshot)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	mutate(&c.snap)
	snap := c.snap
	fns := make([]func(Snapshot), 0, len(c.watchers))
	for _, fn := range c.watchers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Initialize restores the persisted session. With a stored credential or a
// bare identity the coordinator becomes authenticated and loads data; with
// neither it becomes anonymous. Initialize never returns an error: a failed
// restore degrades to the anonymous phase.
func (c *Coordinator) Initialize(ctx context.Context) {
	c.publish(func(s *Snapshot) {
		s.Phase = PhaseInitializing
	})

	if cred := c.session.Credential(); cred != nil {
		user := cred.User
		c.publish(func(s *Snapshot) {
			s.Phase = PhaseAuthenticated
			s.Route = RouteHome
			s.User = &user
		})
		c.loadSnapshot(ctx, user.ID)
		return
	}

	// Bare identity without a credential is the secondary access path:
	// the caller vouches for the identity and no token is available.
	if identity := c.session.Identity(); identity != "" {
		user, err := c.store.GetUser(ctx, identity)
		if err != nil {
			c.log.Warnw("stored identity no longer resolves, falling back to anonymous", "error", err)
			_ = c.session.ClearAuth()
			c.publish(func(s *Snapshot) {
				s.Phase = PhaseAnonymous
				s.Load = LoadLoaded
				s.Route = RouteLanding
			})
			return
		}
		summary := userSummary(user)
		c.publish(func(s *Snapshot) {
			s.Phase = PhaseAuthenticated
			s.Route = RouteHome
			s.User = &summary
		})
		c.loadSnapshot(ctx, user.ID)
		return
	}

	c.publish(func(s *Snapshot) {
		s.Phase = PhaseAnonymous
		s.Load = LoadLoaded
		s.Route = RouteLanding
	})
}

// Login authenticates, persists the credential, seeds a fresh account,
// kicks off analysis in the background, and loads the snapshot.
func (c *Coordinator) Login(ctx context.Context, phoneNumber, password string) error {
	result, err := c.store.Login(ctx, phoneNumber, password)
	if err != nil {
		c.publish(func(s *Snapshot) { s.Err = err })
		return err
	}
	return c.completeAuth(ctx, result)
}

// SignupParams carries the signup form fields.
type SignupParams struct {
	PhoneNumber     string
	Password        string
	ConfirmPassword string
	FullName        string
	Email           string
	Occupation      string
	City            string
	State           string
	DateOfBirth     string
}

// Signup validates locally, registers, and then completes authentication
// the same way Login does. Validation failures never reach the network.
func (c *Coordinator) Signup(ctx context.Context, params SignupParams) error {
	err := validator.ValidateSignup(validator.SignupInput{
		PhoneNumber:     params.PhoneNumber,
		Password:        params.Password,
		ConfirmPassword: params.ConfirmPassword,
		FullName:        params.FullName,
		Email:           params.Email,
	})
	if err != nil {
		c.publish(func(s *Snapshot) { s.Err = err })
		return err
	}

	result, err := c.store.Signup(ctx, store.SignupParams{
		PhoneNumber: params.PhoneNumber,
		Password:    params.Password,
		FullName:    params.FullName,
		Email:       params.Email,
		Occupation:  params.Occupation,
		City:        params.City,
		State:       params.State,
		DateOfBirth: params.DateOfBirth,
	})
	if err != nil {
		c.publish(func(s *Snapshot) { s.Err = err })
		return err
	}
	return c.completeAuth(ctx, result)
}

// completeAuth is the shared tail of Login and Signup.
func (c *Coordinator) completeAuth(ctx context.Context, result *store.AuthResult) error {
	summary := userSummary(&result.User)
	if err := c.session.SetCredential(session.Credential{Token: result.Token, User: summary}); err != nil {
		c.log.Warnw("failed to persist credential", "error", err)
	}

	c.publish(func(s *Snapshot) {
		s.Phase = PhaseAuthenticated
		s.Route = RouteHome
		s.User = &summary
		s.Err = nil
	})

	// Seeding is best effort and runs before the first load so a fresh
	// account's first snapshot is already populated.
	if c.seeder != nil {
		if seeded, err := c.seeder.Seed(ctx, summary.ID); err != nil {
			c.log.Warnw("seeding failed", "user_id", summary.ID, "error", err)
		} else if seeded {
			c.log.Infow("seeded new account", "user_id", summary.ID)
		}
	}

	// Analysis is fire-and-forget on the background context so it
	// survives the login call's own deadline.
	if c.analysis != nil {
		userID := summary.ID
		c.bg.Add(1)
		go func() {
			defer c.bg.Done()
			if _, err := c.analysis.TriggerAnalysis(c.bgCtx, userID); err != nil {
				c.log.Warnw("analysis trigger failed", "user_id", userID, "error", err)
			}
		}()
	}

	c.loadSnapshot(ctx, summary.ID)
	return nil
}

// Logout clears the persisted session and resets to the anonymous phase.
// Safe to call when not logged in.
func (c *Coordinator) Logout() error {
	if err := c.session.ClearAuth(); err != nil {
		return err
	}
	// The generation bump must precede the reset so an in-flight load for
	// the old identity cannot republish its data afterwards.
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
	c.publish(func(s *Snapshot) {
		*s = Snapshot{
			Phase:     PhaseAnonymous,
			Load:      LoadLoaded,
			Route:     RouteLanding,
			DailyGoal: c.dailyGoal,
		}
	})
	return nil
}

// Refresh reloads the snapshot from the backing store. It is a no-op when
// not authenticated.
func (c *Coordinator) Refresh(ctx context.Context) {
	c.mu.Lock()
	phase := c.snap.Phase
	var userID string
	if c.snap.User != nil {
		userID = c.snap.User.ID
	}
	c.mu.Unlock()

	if phase != PhaseAuthenticated {
		return
	}
	c.loadSnapshot(ctx, userID)
}

// loadSnapshot fetches transactions and recommendations concurrently and
// recomputes the derived figures at the fan-in point. Transactions failing is
// a load failure; recommendations failing degrades to an empty list. A load
// that was started before an auth change publishes nothing.
func (c *Coordinator) loadSnapshot(ctx context.Context, userID string) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.publishIfCurrent(gen, func(s *Snapshot) {
		s.Load = LoadLoading
	})

	var (
		txns []models.Transaction
		recs []models.Recommendation

		recErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = c.store.ListTransactions(gctx, userID, store.TransactionFilter{})
		return err
	})
	g.Go(func() error {
		// Recommendations are optional; their failure is caught here and
		// must not cancel the ledger fetch.
		recs, recErr = c.store.ListRecommendations(gctx, userID, store.RecommendationFilter{})
		return nil
	})
	if txErr := g.Wait(); txErr != nil {
		c.log.Warnw("loading transactions failed", "user_id", userID, "error", txErr)
		c.publishIfCurrent(gen, func(s *Snapshot) {
			s.Load = LoadFailed
			s.Err = txErr
		})
		return
	}
	if recErr != nil {
		c.log.Warnw("loading recommendations failed, continuing without", "user_id", userID, "error", recErr)
		recs = nil
	}

	balance, todayIncome, todayExpense := c.ledgerFigures(txns)
	progress := c.goalProgress(todayIncome, todayExpense)

	c.publishIfCurrent(gen, func(s *Snapshot) {
		s.Load = LoadLoaded
		s.Transactions = txns
		s.Recommendations = recs
		s.Balance = balance
		s.TodayIncome = todayIncome
		s.TodayExpense = todayExpense
		s.GoalProgress = progress
		s.Err = nil
	})
}

// publishIfCurrent publishes only when gen is still the latest load. The
// staleness check and the mutation happen under one lock acquisition so an
// auth change cannot slip in between them.
func (c *Coordinator) publishIfCurrent(gen uint64, mutate func(*Snapshot)) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	mutate(&c.snap)
	snap := c.snap
	fns := make([]func(Snapshot), 0, len(c.watchers))
	for _, fn := range c.watchers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// AddTransaction writes through to the store and updates the cached
// snapshot optimistically: the new row is prepended and the derived
// figures adjust incrementally, with no refetch.
func (c *Coordinator) AddTransaction(ctx context.Context, in store.TransactionInput) (*models.Transaction, error) {
	c.mu.Lock()
	phase := c.snap.Phase
	var userID string
	if c.snap.User != nil {
		userID = c.snap.User.ID
	}
	c.mu.Unlock()

	if phase != PhaseAuthenticated {
		return nil, apperrors.ErrUnauthenticated
	}

	txn, err := c.store.CreateTransaction(ctx, userID, in)
	if err != nil {
		c.publish(func(s *Snapshot) { s.Err = err })
		return nil, err
	}

	today := c.currentDate()
	c.publish(func(s *Snapshot) {
		updated := make([]models.Transaction, 0, len(s.Transactions)+1)
		updated = append(updated, *txn)
		updated = append(updated, s.Transactions...)
		s.Transactions = updated
		s.Balance = s.Balance.Add(txn.Signed())
		if txn.TransactionDate == today {
			if txn.Type == models.TransactionTypeIncome {
				s.TodayIncome = s.TodayIncome.Add(txn.Amount)
			} else {
				s.TodayExpense = s.TodayExpense.Add(txn.Amount)
			}
			s.GoalProgress = c.goalProgress(s.TodayIncome, s.TodayExpense)
		}
		s.Err = nil
	})
	return txn, nil
}

// UpdateRecommendationStatus patches the cached recommendation's status in
// the snapshot. The change is local only; durable persistence goes through
// the store client directly, with Refresh reconciling the cache afterwards.
func (c *Coordinator) UpdateRecommendationStatus(recommendationID string, status models.RecommendationStatus) error {
	c.mu.Lock()
	phase := c.snap.Phase
	c.mu.Unlock()

	if phase != PhaseAuthenticated {
		return apperrors.ErrUnauthenticated
	}

	now := time.Now()
	c.publish(func(s *Snapshot) {
		recs := make([]models.Recommendation, len(s.Recommendations))
		copy(recs, s.Recommendations)
		for i := range recs {
			if recs[i].ID != recommendationID {
				continue
			}
			recs[i].Status = status
			switch status {
			case models.RecommendationStatusActioned:
				recs[i].ActionedAt = &now
			case models.RecommendationStatusCompleted:
				recs[i].CompletedAt = &now
			}
			break
		}
		s.Recommendations = recs
		s.Err = nil
	})
	return nil
}

// Close cancels background work and stops all publication. Idempotent.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	c.mu.Unlock()

	c.bgCancel()
	c.bg.Wait()
}

// ledgerFigures computes the running balance and today's totals from the
// full transaction list.
func (c *Coordinator) ledgerFigures(txns []models.Transaction) (balance, todayIncome, todayExpense decimal.Decimal) {
	today := c.currentDate()
	for _, t := range txns {
		balance = balance.Add(t.Signed())
		if t.TransactionDate == today {
			if t.Type == models.TransactionTypeIncome {
				todayIncome = todayIncome.Add(t.Amount)
			} else {
				todayExpense = todayExpense.Add(t.Amount)
			}
		}
	}
	return balance, todayIncome, todayExpense
}

// goalProgress reports today's net earnings against the daily goal as a
// percentage clamped to [0, 100].
func (c *Coordinator) goalProgress(todayIncome, todayExpense decimal.Decimal) float64 {
	if !c.dailyGoal.IsPositive() {
		return 0
	}
	net := todayIncome.Sub(todayExpense)
	pct, _ := net.Div(c.dailyGoal).Mul(decimal.NewFromInt(100)).Float64()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func (c *Coordinator) currentDate() string {
	if c.today != nil {
		return c.today()
	}
	return time.Now().Format(models.DateFormat)
}

func userSummary(u *models.User) session.UserSummary {
	return session.UserSummary{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		FullName:    u.FullName,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
