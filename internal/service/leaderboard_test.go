package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamerank/leaderboard/internal/auth"
	"github.com/gamerank/leaderboard/internal/config"
	"github.com/gamerank/leaderboard/internal/domain"
	"github.com/gamerank/leaderboard/internal/metrics"
	"github.com/gamerank/leaderboard/internal/worker"
)

// fakeLedger is an in-memory ledger with per-player row locks and staged
// transactional writes, so the lock/ordering contract can be verified
// deterministically.
type fakeLedger struct {
	mu      sync.Mutex
	players map[uuid.UUID]*domain.Player
	best    map[uuid.UUID]domain.BestScore
	events  []domain.ScoreEvent
	locks   map[uuid.UUID]*sync.Mutex
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		players: make(map[uuid.UUID]*domain.Player),
		best:    make(map[uuid.UUID]domain.BestScore),
		locks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

func (l *fakeLedger) addPlayer(name, handle string) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := uuid.New()
	l.players[id] = &domain.Player{
		ID: id, Name: name, Handle: handle, CreatedAt: time.Now().UTC(),
	}
	return id
}

func (l *fakeLedger) GetPlayer(_ context.Context, id uuid.UUID) (*domain.Player, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (l *fakeLedger) GetPlayerByHandle(_ context.Context, handle string) (*domain.Player, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.players {
		if p.Handle == handle {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

func (l *fakeLedger) CreatePlayer(_ context.Context, name, handle, passwordHash string) (*domain.Player, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.players {
		if p.Handle == handle {
			return nil, domain.ErrPlayerExists
		}
	}
	p := &domain.Player{
		ID: uuid.New(), Name: name, Handle: handle,
		PasswordHash: passwordHash, CreatedAt: time.Now().UTC(),
	}
	l.players[p.ID] = p
	return p, nil
}

func (l *fakeLedger) rowLock(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}

func (l *fakeLedger) Begin(_ context.Context) (LedgerTx, error) {
	return &fakeTx{ledger: l}, nil
}

func (l *fakeLedger) BestScoreRow(_ context.Context, id uuid.UUID) (*domain.BestScore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	row, ok := l.best[id]
	if !ok {
		return nil, nil
	}
	cp := row
	return &cp, nil
}

func (l *fakeLedger) PlayersBest(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.PlayerBest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := make(map[uuid.UUID]domain.PlayerBest)
	for _, id := range ids {
		p, ok := l.players[id]
		if !ok {
			continue
		}
		row, ok := l.best[id]
		if !ok {
			continue
		}
		result[id] = domain.PlayerBest{
			PlayerID: id, Name: p.Name,
			BestScore: row.BestScore, LastUpdated: row.LastUpdated,
		}
	}
	return result, nil
}

func (l *fakeLedger) AllBestScores(_ context.Context) ([]domain.BestScore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := make([]domain.BestScore, 0, len(l.best))
	for _, row := range l.best {
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *fakeLedger) RecentEvents(_ context.Context, id uuid.UUID, limit int) ([]domain.ScoreEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var events []domain.ScoreEvent
	for _, ev := range l.events {
		if ev.PlayerID == id {
			events = append(events, ev)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// fakeTx stages writes and applies them on Commit; the per-player row lock
// is held from LockBestScoreRow until the transaction ends.
type fakeTx struct {
	ledger *fakeLedger
	staged []func()
	locked *sync.Mutex
	closed bool
}

func (t *fakeTx) AppendScoreEvent(_ context.Context, playerID uuid.UUID, score int64, at time.Time) error {
	t.staged = append(t.staged, func() {
		t.ledger.events = append(t.ledger.events, domain.ScoreEvent{
			PlayerID: playerID, Score: score, CreatedAt: at,
		})
	})
	return nil
}

func (t *fakeTx) LockBestScoreRow(_ context.Context, playerID uuid.UUID) (*domain.BestScore, error) {
	lock := t.ledger.rowLock(playerID)
	lock.Lock()
	t.locked = lock

	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	row, ok := t.ledger.best[playerID]
	if !ok {
		return nil, nil
	}
	cp := row
	return &cp, nil
}

func (t *fakeTx) UpsertBestScoreRow(_ context.Context, playerID uuid.UUID, score int64, at time.Time) error {
	t.staged = append(t.staged, func() {
		t.ledger.best[playerID] = domain.BestScore{
			PlayerID: playerID, BestScore: score, LastUpdated: at,
		}
	})
	return nil
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.ledger.mu.Lock()
	for _, apply := range t.staged {
		apply()
	}
	t.ledger.mu.Unlock()
	t.finish()
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	t.finish()
	return nil
}

func (t *fakeTx) finish() {
	if t.closed {
		return
	}
	t.closed = true
	if t.locked != nil {
		t.locked.Unlock()
	}
}

// fakeIndex is an in-memory sorted mirror with optional failure injection
type fakeIndex struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]int64
	failUpserts bool
	upserts     int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: make(map[uuid.UUID]int64)}
}

func (f *fakeIndex) Upsert(_ context.Context, entry domain.RankEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.failUpserts {
		return domain.ErrIndexSync
	}
	f.entries[entry.PlayerID] = entry.Encoded
	return nil
}

func (f *fakeIndex) BatchUpsert(_ context.Context, entries []domain.RankEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpserts {
		return domain.ErrIndexSync
	}
	for _, entry := range entries {
		f.entries[entry.PlayerID] = entry.Encoded
	}
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, playerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, playerID)
	return nil
}

func (f *fakeIndex) sorted() []domain.RankedPlayer {
	ranked := make([]domain.RankedPlayer, 0, len(f.entries))
	for id, encoded := range f.entries {
		ranked = append(ranked, domain.RankedPlayer{PlayerID: id, Encoded: encoded})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Encoded != ranked[j].Encoded {
			return ranked[i].Encoded > ranked[j].Encoded
		}
		return ranked[i].PlayerID.String() < ranked[j].PlayerID.String()
	})
	return ranked
}

func (f *fakeIndex) TopK(_ context.Context, k int) ([]domain.RankedPlayer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ranked := f.sorted()
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}

func (f *fakeIndex) RankOf(_ context.Context, playerID uuid.UUID) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[playerID]; !ok {
		return 0, false, nil
	}
	for i, r := range f.sorted() {
		if r.PlayerID == playerID {
			return int64(i), true, nil
		}
	}
	return 0, false, nil
}

type fakeRepair struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (f *fakeRepair) Enqueue(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
}

func newTestService(t *testing.T, ledger *fakeLedger, index *fakeIndex) *LeaderboardService {
	t.Helper()
	cfg := config.DefaultConfig()
	return NewLeaderboardService(
		ledger,
		index,
		auth.NewManager(&config.AuthConfig{JWTSecret: "test", TokenTTL: time.Hour, BcryptCost: 4}),
		&cfg.Leaderboard,
		metrics.New(prometheus.NewRegistry()),
		slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestSubmitScoreKeepsMaxAndFirstAchievement(t *testing.T) {
	ledger := newFakeLedger()
	index := newFakeIndex()
	svc := newTestService(t, ledger, index)
	ctx := context.Background()

	playerID := ledger.addPlayer("Player1", "player1")
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, svc.SubmitScoreAt(ctx, playerID, 10, base))
	require.NoError(t, svc.SubmitScoreAt(ctx, playerID, 50, base.Add(time.Minute)))
	require.NoError(t, svc.SubmitScoreAt(ctx, playerID, 30, base.Add(2*time.Minute)))
	// A later tie with the current best must not refresh last_updated.
	require.NoError(t, svc.SubmitScoreAt(ctx, playerID, 50, base.Add(3*time.Minute)))

	row, err := ledger.BestScoreRow(ctx, playerID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(50), row.BestScore)
	assert.Equal(t, base.Add(time.Minute), row.LastUpdated)

	history, err := svc.GetHistory(ctx, playerID, 10)
	require.NoError(t, err)
	require.Len(t, history.Items, 4)
	// Newest first by submission order, not by score.
	assert.Equal(t, int64(50), history.Items[0].Score)
	assert.Equal(t, int64(30), history.Items[1].Score)
	assert.Equal(t, int64(50), history.Items[2].Score)
	assert.Equal(t, int64(10), history.Items[3].Score)
}

func TestSubmitScoreIdempotentOnRepeat(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, newFakeIndex())
	ctx := context.Background()

	playerID := ledger.addPlayer("Player1", "player1")
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, svc.SubmitScoreAt(ctx, playerID, 40, at))
	require.NoError(t, svc.SubmitScoreAt(ctx, playerID, 40, at))

	row, err := ledger.BestScoreRow(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), row.BestScore)
	assert.Equal(t, at, row.LastUpdated)

	history, err := svc.GetHistory(ctx, playerID, 10)
	require.NoError(t, err)
	assert.Len(t, history.Items, 2)
}

func TestSubmitScoreUnknownPlayer(t *testing.T) {
	ledger := newFakeLedger()
	index := newFakeIndex()
	svc := newTestService(t, ledger, index)

	err := svc.SubmitScore(context.Background(), uuid.New(), 10)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	assert.Empty(t, ledger.events)
	assert.Empty(t, index.entries)
}

func TestSubmitScoreRejectsOutOfRange(t *testing.T) {
	ledger := newFakeLedger()
	index := newFakeIndex()
	svc := newTestService(t, ledger, index)
	playerID := ledger.addPlayer("Player1", "player1")

	err := svc.SubmitScore(context.Background(), playerID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidScore)

	err = svc.SubmitScore(context.Background(), playerID, domain.MaxScore+1)
	assert.ErrorIs(t, err, domain.ErrInvalidScore)

	assert.Empty(t, ledger.events)
	assert.Zero(t, index.upserts)
}

func TestSubmitScoreSurvivesIndexFailure(t *testing.T) {
	ledger := newFakeLedger()
	index := newFakeIndex()
	index.failUpserts = true
	repair := &fakeRepair{}

	svc := newTestService(t, ledger, index)
	svc.SetRepairQueue(repair)

	playerID := ledger.addPlayer("Player1", "player1")
	require.NoError(t, svc.SubmitScore(context.Background(), playerID, 77))

	// Durable write landed even though the mirror did not.
	row, err := ledger.BestScoreRow(context.Background(), playerID)
	require.NoError(t, err)
	assert.Equal(t, int64(77), row.BestScore)
	assert.Equal(t, []uuid.UUID{playerID}, repair.ids)
}

func TestGetTopOrdersAndRenumbers(t *testing.T) {
	ledger := newFakeLedger()
	index := newFakeIndex()
	svc := newTestService(t, ledger, index)
	ctx := context.Background()

	a := ledger.addPlayer("A", "a")
	b := ledger.addPlayer("B", "b")
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, svc.SubmitScoreAt(ctx, a, 100, at))
	require.NoError(t, svc.SubmitScoreAt(ctx, b, 50, at))

	entries, err := svc.GetTop(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].Rank)
	assert.Equal(t, a, entries[0].PlayerID)
	assert.Equal(t, int64(100), entries[0].Score)
	assert.Equal(t, int64(2), entries[1].Rank)
	assert.Equal(t, b, entries[1].PlayerID)

	rank, ok, err := svc.GetRank(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), rank)

	// An index entry with no ledger row is skipped without a rank gap.
	ghost := uuid.New()
	encoded, err := domain.EncodeRankScore(500, at)
	require.NoError(t, err)
	index.entries[ghost] = encoded

	entries, err = svc.GetTop(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].Rank)
	assert.Equal(t, a, entries[0].PlayerID)
	assert.Equal(t, int64(2), entries[1].Rank)
}

func TestGetTopTieBrokenByEarlierTimestamp(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, newFakeIndex())
	ctx := context.Background()

	early := ledger.addPlayer("Early", "early")
	late := ledger.addPlayer("Late", "late")
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, svc.SubmitScoreAt(ctx, late, 100, at.Add(time.Second)))
	require.NoError(t, svc.SubmitScoreAt(ctx, early, 100, at))

	entries, err := svc.GetTop(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, early, entries[0].PlayerID)
	assert.Equal(t, late, entries[1].PlayerID)
}

func TestGetTopBounds(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, newFakeIndex())
	ctx := context.Background()

	_, err := svc.GetTop(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
	_, err = svc.GetTop(ctx, 101)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)

	// Requesting more than the number of scored players returns exactly
	// the scored players, no padding.
	playerID := ledger.addPlayer("Solo", "solo")
	require.NoError(t, svc.SubmitScore(ctx, playerID, 5))

	entries, err := svc.GetTop(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGetRankAbsentWithoutSubmissions(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, newFakeIndex())

	playerID := ledger.addPlayer("Idle", "idle")
	_, ok, err := svc.GetRank(context.Background(), playerID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRebuildSkipsPlayersWithoutSubmissions(t *testing.T) {
	ledger := newFakeLedger()
	index := newFakeIndex()
	svc := newTestService(t, ledger, index)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "Idle", "idle", "password123"))
	active := ledger.addPlayer("Active", "active")
	require.NoError(t, svc.SubmitScore(ctx, active, 50))

	idle, err := ledger.GetPlayerByHandle(ctx, "idle")
	require.NoError(t, err)

	// A full rebuild replays every best-score row; a signed-up player who
	// never submitted has no row, so the rebuilt index must match the one
	// the submit path builds.
	reconciler := worker.NewReconciler(ledger, index, &config.ReconcilerConfig{
		RebuildInterval:  time.Hour,
		RebuildBatchSize: 10,
		RepairBuffer:     8,
	}, nil, slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	require.NoError(t, reconciler.RebuildAll(ctx))

	_, ok, err := svc.GetRank(ctx, idle.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	rank, ok, err := svc.GetRank(ctx, active)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), rank)
	assert.Len(t, index.entries, 1)
}

func TestSubmitScoreBatchKeepsPublishTimestamps(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, newFakeIndex())
	ctx := context.Background()

	stamped := ledger.addPlayer("Stamped", "stamped")
	unstamped := ledger.addPlayer("Unstamped", "unstamped")

	publishedAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	arrivedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return arrivedAt }

	require.NoError(t, svc.SubmitScoreBatch(ctx, domain.BatchScoreSubmission{
		Scores: []domain.ScoreSubmission{
			{PlayerID: stamped, Score: 30, SubmittedAt: publishedAt},
			{PlayerID: unstamped, Score: 40},
		},
	}))

	row, err := ledger.BestScoreRow(ctx, stamped)
	require.NoError(t, err)
	assert.Equal(t, publishedAt, row.LastUpdated)

	row, err = ledger.BestScoreRow(ctx, unstamped)
	require.NoError(t, err)
	assert.Equal(t, arrivedAt, row.LastUpdated)
}

func TestGetHistoryValidation(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, newFakeIndex())
	ctx := context.Background()

	_, err := svc.GetHistory(ctx, uuid.New(), 10)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	playerID := ledger.addPlayer("Player1", "player1")
	_, err = svc.GetHistory(ctx, playerID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
	_, err = svc.GetHistory(ctx, playerID, 101)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}

func TestGetProfile(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, newFakeIndex())
	ctx := context.Background()

	playerID := ledger.addPlayer("Player1", "player1@example.com")

	// Before any submission the rank is absent.
	profile, err := svc.GetProfile(ctx, playerID)
	require.NoError(t, err)
	assert.Nil(t, profile.Rank)
	assert.Equal(t, int64(0), profile.BestScore)

	require.NoError(t, svc.SubmitScore(ctx, playerID, 42))

	profile, err = svc.GetProfile(ctx, playerID)
	require.NoError(t, err)
	require.NotNil(t, profile.Rank)
	assert.Equal(t, int64(1), *profile.Rank)
	assert.Equal(t, int64(42), profile.BestScore)
	assert.Equal(t, "player1@example.com", profile.Handle)

	_, err = svc.GetProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestSignupAndLogin(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, newFakeIndex())
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "TestUser", "testuser", "password123"))

	err := svc.Signup(ctx, "TestUser", "testuser", "password123")
	assert.ErrorIs(t, err, domain.ErrPlayerExists)

	err = svc.Signup(ctx, "", "x", "y")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	player, token, err := svc.Login(ctx, "testuser", "password123")
	require.NoError(t, err)
	assert.Equal(t, "TestUser", player.Name)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, "testuser", "wrongpassword")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestConcurrentSubmissionsLinearize(t *testing.T) {
	ledger := newFakeLedger()
	index := newFakeIndex()
	svc := newTestService(t, ledger, index)
	ctx := context.Background()

	playerID := ledger.addPlayer("Racer", "racer")

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(score int64) {
			defer wg.Done()
			assert.NoError(t, svc.SubmitScore(ctx, playerID, score))
		}(int64(i))
	}
	wg.Wait()

	row, err := ledger.BestScoreRow(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), row.BestScore)

	history, err := svc.GetHistory(ctx, playerID, 100)
	require.NoError(t, err)
	assert.Len(t, history.Items, 50)

	// The mirror converged to the authoritative best.
	score, _ := domain.DecodeRankScore(index.entries[playerID])
	assert.Equal(t, int64(50), score)
}

func TestSubmitBroadcastsOnNewBest(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, newFakeIndex())
	ctx := context.Background()

	var (
		mu    sync.Mutex
		casts [][]domain.LeaderboardEntry
	)
	svc.SetHub(broadcasterFunc(func(entries []domain.LeaderboardEntry) {
		mu.Lock()
		defer mu.Unlock()
		casts = append(casts, entries)
	}))

	playerID := ledger.addPlayer("Player1", "player1")
	require.NoError(t, svc.SubmitScore(ctx, playerID, 10))
	// Not a new best: no broadcast.
	require.NoError(t, svc.SubmitScore(ctx, playerID, 5))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, casts, 1)
	require.Len(t, casts[0], 1)
	assert.Equal(t, int64(10), casts[0][0].Score)
}

type broadcasterFunc func([]domain.LeaderboardEntry)

func (f broadcasterFunc) BroadcastLeaderboard(entries []domain.LeaderboardEntry) { f(entries) }
