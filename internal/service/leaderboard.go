package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gamerank/leaderboard/internal/auth"
	"github.com/gamerank/leaderboard/internal/config"
	"github.com/gamerank/leaderboard/internal/domain"
	"github.com/gamerank/leaderboard/internal/metrics"
)

// Ledger is the durable-store contract the service depends on. PostgreSQL
// implements it in production; tests substitute an in-memory fake.
type Ledger interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	GetPlayerByHandle(ctx context.Context, handle string) (*domain.Player, error)
	CreatePlayer(ctx context.Context, name, handle, passwordHash string) (*domain.Player, error)
	Begin(ctx context.Context) (LedgerTx, error)
	BestScoreRow(ctx context.Context, id uuid.UUID) (*domain.BestScore, error)
	PlayersBest(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.PlayerBest, error)
	RecentEvents(ctx context.Context, id uuid.UUID, limit int) ([]domain.ScoreEvent, error)
}

// LedgerTx is a single durable transaction over the ledger. LockBestScoreRow
// grants exclusive access to the player's row until Commit or Rollback.
type LedgerTx interface {
	AppendScoreEvent(ctx context.Context, playerID uuid.UUID, score int64, at time.Time) error
	LockBestScoreRow(ctx context.Context, playerID uuid.UUID) (*domain.BestScore, error)
	UpsertBestScoreRow(ctx context.Context, playerID uuid.UUID, score int64, at time.Time) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// RankIndex is the fast sorted-mirror contract: O(log N) upsert and rank,
// O(log N + K) top-K.
type RankIndex interface {
	Upsert(ctx context.Context, entry domain.RankEntry) error
	TopK(ctx context.Context, k int) ([]domain.RankedPlayer, error)
	RankOf(ctx context.Context, playerID uuid.UUID) (int64, bool, error)
}

// RepairQueue receives player ids whose index entry may have drifted from
// the ledger and needs a reconciliation pass.
type RepairQueue interface {
	Enqueue(playerID uuid.UUID)
}

// Broadcaster pushes fresh leaderboard snapshots to connected spectators
type Broadcaster interface {
	BroadcastLeaderboard(entries []domain.LeaderboardEntry)
}

// LeaderboardService orchestrates the dual-store ranking core: the ledger is
// the source of truth, the rank index a best-effort mirror updated after
// every committed write.
type LeaderboardService struct {
	ledger  Ledger
	index   RankIndex
	auth    *auth.Manager
	config  *config.LeaderboardConfig
	metrics *metrics.Metrics
	logger  *slog.Logger

	repair RepairQueue
	hub    Broadcaster

	// now is swapped out in tests for deterministic timestamps
	now func() time.Time
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(
	ledger Ledger,
	index RankIndex,
	authManager *auth.Manager,
	cfg *config.LeaderboardConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		ledger:  ledger,
		index:   index,
		auth:    authManager,
		config:  cfg,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetRepairQueue attaches the reconciler's repair queue
func (s *LeaderboardService) SetRepairQueue(q RepairQueue) {
	s.repair = q
}

// SetHub attaches a broadcaster notified whenever a new best score lands
func (s *LeaderboardService) SetHub(hub Broadcaster) {
	s.hub = hub
}

// Signup registers a new player. The player has no best-score row and no
// rank index entry until their first submission.
func (s *LeaderboardService) Signup(ctx context.Context, name, handle, password string) error {
	if name == "" || handle == "" || password == "" {
		return domain.ErrInvalidRequest
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if _, err := s.ledger.CreatePlayer(ctx, name, handle, hash); err != nil {
		return err
	}
	return nil
}

// Login verifies credentials and returns the player with a signed token
func (s *LeaderboardService) Login(ctx context.Context, handle, password string) (*domain.Player, string, error) {
	player, err := s.ledger.GetPlayerByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !s.auth.VerifyPassword(player.PasswordHash, password) {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.auth.IssueToken(player.ID, player.Name)
	if err != nil {
		return nil, "", err
	}
	return player, token, nil
}

// IdentifyToken resolves a bearer token to the player id it was issued for
func (s *LeaderboardService) IdentifyToken(token string) (uuid.UUID, error) {
	return s.auth.ParseToken(token)
}

// SubmitScore records one submission: always appends a history row, takes
// the per-player row lock, raises the best only on a strictly greater score
// (ties never refresh last_updated), then mirrors the authoritative pair
// into the rank index after commit.
func (s *LeaderboardService) SubmitScore(ctx context.Context, playerID uuid.UUID, score int64) error {
	start := time.Now()
	err := s.submitScore(ctx, playerID, score, s.now())
	s.observeSubmit(start, err)
	return err
}

// SubmitScoreAt is SubmitScore with an explicit submission timestamp, used
// for ingested submissions stamped at publish time.
func (s *LeaderboardService) SubmitScoreAt(ctx context.Context, playerID uuid.UUID, score int64, at time.Time) error {
	start := time.Now()
	err := s.submitScore(ctx, playerID, score, at)
	s.observeSubmit(start, err)
	return err
}

func (s *LeaderboardService) observeSubmit(start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case domain.IsNotFoundError(err):
		result = "not_found"
	case domain.IsInvalidArgument(err):
		result = "invalid"
	case err != nil:
		result = "error"
	}
	s.metrics.SubmissionsTotal.WithLabelValues(result).Inc()
	s.metrics.SubmitDuration.Observe(time.Since(start).Seconds())
}

func (s *LeaderboardService) submitScore(ctx context.Context, playerID uuid.UUID, score int64, now time.Time) error {
	// Validate before touching any store.
	if score < 0 || score > domain.MaxScore {
		return fmt.Errorf("%w: %d", domain.ErrInvalidScore, score)
	}

	if _, err := s.ledger.GetPlayer(ctx, playerID); err != nil {
		return err
	}

	tx, err := s.ledger.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning submission: %w", err)
	}
	defer tx.Rollback(ctx)

	// History row is unconditional: one row per submission, best or not.
	if err := tx.AppendScoreEvent(ctx, playerID, score, now); err != nil {
		return fmt.Errorf("appending score event: %w", err)
	}

	row, err := tx.LockBestScoreRow(ctx, playerID)
	if err != nil {
		return fmt.Errorf("locking best score row: %w", err)
	}

	// The comparison runs against the persisted value read under the lock,
	// never a cached one; concurrent submissions for one player linearize
	// here.
	authoritative := domain.BestScore{PlayerID: playerID, BestScore: score, LastUpdated: now}
	newBest := false
	switch {
	case row == nil:
		if err := tx.UpsertBestScoreRow(ctx, playerID, score, now); err != nil {
			return fmt.Errorf("creating best score row: %w", err)
		}
		newBest = true
	case score > row.BestScore:
		if err := tx.UpsertBestScoreRow(ctx, playerID, score, now); err != nil {
			return fmt.Errorf("raising best score: %w", err)
		}
		newBest = true
	default:
		// Equal or lower score: first achievement timestamp is retained.
		authoritative = *row
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing submission: %w", err)
	}

	// The ledger write is the durable fact. The mirror update below is
	// best-effort: on failure the submission still succeeds and the player
	// id is handed to the reconciler.
	s.mirrorToIndex(authoritative)

	if newBest && s.metrics != nil {
		s.metrics.NewBestsTotal.Inc()
	}
	if newBest && s.hub != nil {
		s.broadcastTop(ctx)
	}
	return nil
}

// mirrorToIndex pushes an authoritative best-score pair through the encoder
// into the rank index. Runs detached from the request context: the ledger
// commit already happened, so a caller hangup must not skip the mirror.
func (s *LeaderboardService) mirrorToIndex(row domain.BestScore) {
	encoded, err := domain.EncodeRankScore(row.BestScore, row.LastUpdated)
	if err != nil {
		s.logger.Error("best score row not encodable",
			"player_id", row.PlayerID,
			"best_score", row.BestScore,
			"error", err,
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.IndexUpsertTimeout)
	defer cancel()

	err = s.index.Upsert(ctx, domain.RankEntry{
		PlayerID:    row.PlayerID,
		Encoded:     encoded,
		BestScore:   row.BestScore,
		LastUpdated: row.LastUpdated,
	})
	if err != nil {
		s.logger.Error("rank index upsert failed, flagging for reconciliation",
			"player_id", row.PlayerID,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IndexSyncFailures.Inc()
		}
		if s.repair != nil {
			s.repair.Enqueue(row.PlayerID)
		}
	}
}

// SubmitScoreBatch submits multiple scores, continuing past per-item failures.
// Items carrying a publish-time timestamp keep it; the rest are stamped here.
func (s *LeaderboardService) SubmitScoreBatch(ctx context.Context, batch domain.BatchScoreSubmission) error {
	for _, submission := range batch.Scores {
		at := submission.SubmittedAt
		if at.IsZero() {
			at = s.now()
		}
		if err := s.SubmitScoreAt(ctx, submission.PlayerID, submission.Score, at); err != nil {
			s.logger.Error("failed to submit score in batch",
				"player_id", submission.PlayerID,
				"error", err,
			)
		}
	}
	return nil
}

// GetTop returns the top n leaderboard rows, rank 1 highest. Ordering comes
// from the rank index; names and scores come from the ledger. Index entries
// with no ledger row are skipped and ranks renumbered contiguously.
func (s *LeaderboardService) GetTop(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n < 1 || n > s.config.TopNMax {
		return nil, fmt.Errorf("%w: n=%d not in [1, %d]", domain.ErrInvalidLimit, n, s.config.TopNMax)
	}

	ranked, err := s.index.TopK(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("reading top k: %w", err)
	}
	if len(ranked) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	ids := make([]uuid.UUID, len(ranked))
	for i, r := range ranked {
		ids[i] = r.PlayerID
	}
	players, err := s.ledger.PlayersBest(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrating top k: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for _, r := range ranked {
		pb, ok := players[r.PlayerID]
		if !ok {
			// Index/ledger drift: degrade by omission instead of failing.
			s.logger.Warn("index entry without ledger row, skipping",
				"player_id", r.PlayerID,
			)
			if s.repair != nil {
				s.repair.Enqueue(r.PlayerID)
			}
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			Rank:        int64(len(entries) + 1),
			PlayerID:    pb.PlayerID,
			Name:        pb.Name,
			Score:       pb.BestScore,
			LastUpdated: pb.LastUpdated,
		})
	}
	return entries, nil
}

// GetRank returns a player's 1-based global rank, or ok=false when the
// player has no rank index entry. Drift never surfaces as an error here.
func (s *LeaderboardService) GetRank(ctx context.Context, playerID uuid.UUID) (int64, bool, error) {
	rank, ok, err := s.index.RankOf(ctx, playerID)
	if err != nil {
		return 0, false, fmt.Errorf("reading rank: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	return rank + 1, true, nil
}

// GetHistory returns a player's most recent submissions, newest first
func (s *LeaderboardService) GetHistory(ctx context.Context, playerID uuid.UUID, limit int) (*domain.History, error) {
	if limit < 1 || limit > s.config.HistoryMax {
		return nil, fmt.Errorf("%w: limit=%d not in [1, %d]", domain.ErrInvalidLimit, limit, s.config.HistoryMax)
	}

	player, err := s.ledger.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	events, err := s.ledger.RecentEvents(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return &domain.History{
		PlayerID: player.ID,
		Name:     player.Name,
		Items:    events,
	}, nil
}

// GetProfile returns a player's identity, best score and current rank
func (s *LeaderboardService) GetProfile(ctx context.Context, playerID uuid.UUID) (*domain.Profile, error) {
	player, err := s.ledger.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		PlayerID:    player.ID,
		Name:        player.Name,
		Handle:      player.Handle,
		LastUpdated: player.CreatedAt,
	}

	row, err := s.ledger.BestScoreRow(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("reading best score row: %w", err)
	}
	if row != nil {
		profile.BestScore = row.BestScore
		profile.LastUpdated = row.LastUpdated
	}

	rank, ok, err := s.GetRank(ctx, playerID)
	if err != nil {
		// Profile reads degrade rather than fail when the index is away.
		s.logger.Warn("rank lookup failed for profile", "player_id", playerID, "error", err)
	} else if ok {
		profile.Rank = &rank
	}
	return profile, nil
}

// broadcastTop pushes a fresh snapshot to spectators after a new best
func (s *LeaderboardService) broadcastTop(ctx context.Context) {
	entries, err := s.GetTop(ctx, s.config.BroadcastTopN)
	if err != nil {
		s.logger.Warn("failed to build broadcast snapshot", "error", err)
		return
	}
	s.hub.BroadcastLeaderboard(entries)
}
