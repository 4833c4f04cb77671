package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamerank/leaderboard/internal/config"
	"github.com/gamerank/leaderboard/internal/domain"
	"github.com/gamerank/leaderboard/internal/service"
)

// Repository is the PostgreSQL-backed ledger: player identity, the
// authoritative best-score row per player, and the append-only score history.
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS playerinfo (
			player_id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			phone_or_email VARCHAR(255) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS playerleaderboard (
			player_id UUID PRIMARY KEY REFERENCES playerinfo(player_id) ON DELETE CASCADE,
			best_score BIGINT NOT NULL DEFAULT 0,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS score_history (
			id BIGSERIAL PRIMARY KEY,
			player_id UUID NOT NULL REFERENCES playerinfo(player_id) ON DELETE CASCADE,
			score BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_playerleaderboard_best
			ON playerleaderboard(best_score DESC, last_updated)`,
		`CREATE INDEX IF NOT EXISTS idx_score_history_player_created
			ON score_history(player_id, created_at DESC)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// CreatePlayer inserts a new player. No best-score row is created here: the
// row appears with the first submission, so a playerleaderboard row always
// means the player has submitted and index rebuilds can replay every row.
func (r *Repository) CreatePlayer(ctx context.Context, name, handle, passwordHash string) (*domain.Player, error) {
	player := &domain.Player{
		ID:           uuid.New(),
		Name:         name,
		Handle:       handle,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO playerinfo (player_id, name, phone_or_email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		player.ID, player.Name, player.Handle, player.PasswordHash, player.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrPlayerExists
		}
		return nil, fmt.Errorf("inserting player: %w", err)
	}
	return player, nil
}

// GetPlayer retrieves a player by id
func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	return r.queryPlayer(ctx,
		`SELECT player_id, name, phone_or_email, password_hash, created_at
		 FROM playerinfo WHERE player_id = $1`, id)
}

// GetPlayerByHandle retrieves a player by contact handle
func (r *Repository) GetPlayerByHandle(ctx context.Context, handle string) (*domain.Player, error) {
	return r.queryPlayer(ctx,
		`SELECT player_id, name, phone_or_email, password_hash, created_at
		 FROM playerinfo WHERE phone_or_email = $1`, handle)
}

func (r *Repository) queryPlayer(ctx context.Context, query string, arg any) (*domain.Player, error) {
	var player domain.Player
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&player.ID,
		&player.Name,
		&player.Handle,
		&player.PasswordHash,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return &player, nil
}

// Begin starts a ledger transaction for a score submission
func (r *Repository) Begin(ctx context.Context) (service.LedgerTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, wrapRetryable(err, "beginning transaction")
	}
	return &ledgerTx{tx: tx}, nil
}

// BestScoreRow retrieves a player's best-score row without locking it.
// Returns nil when the player has no row yet.
func (r *Repository) BestScoreRow(ctx context.Context, id uuid.UUID) (*domain.BestScore, error) {
	var row domain.BestScore
	err := r.pool.QueryRow(ctx,
		`SELECT player_id, best_score, last_updated FROM playerleaderboard WHERE player_id = $1`,
		id,
	).Scan(&row.PlayerID, &row.BestScore, &row.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting best score row: %w", err)
	}
	return &row, nil
}

// PlayersBest fetches display name and the authoritative best-score pair for
// a set of players. Ids without a matching ledger row are simply absent from
// the result; the caller decides how to degrade.
func (r *Repository) PlayersBest(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.PlayerBest, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]domain.PlayerBest{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT p.player_id, p.name, l.best_score, l.last_updated
		 FROM playerinfo p
		 JOIN playerleaderboard l ON l.player_id = p.player_id
		 WHERE p.player_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("querying players best: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]domain.PlayerBest, len(ids))
	for rows.Next() {
		var pb domain.PlayerBest
		if err := rows.Scan(&pb.PlayerID, &pb.Name, &pb.BestScore, &pb.LastUpdated); err != nil {
			return nil, fmt.Errorf("scanning players best: %w", err)
		}
		result[pb.PlayerID] = pb
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading players best: %w", err)
	}
	return result, nil
}

// RecentEvents returns the most recent score submissions for a player,
// newest first by submission timestamp.
func (r *Repository) RecentEvents(ctx context.Context, id uuid.UUID, limit int) ([]domain.ScoreEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT player_id, score, created_at
		 FROM score_history
		 WHERE player_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent events: %w", err)
	}
	defer rows.Close()

	var events []domain.ScoreEvent
	for rows.Next() {
		var ev domain.ScoreEvent
		if err := rows.Scan(&ev.PlayerID, &ev.Score, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning score event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading recent events: %w", err)
	}
	return events, nil
}

// AllBestScores streams every best-score row, the source the rank index is
// rebuilt from.
func (r *Repository) AllBestScores(ctx context.Context) ([]domain.BestScore, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT player_id, best_score, last_updated FROM playerleaderboard`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying best scores: %w", err)
	}
	defer rows.Close()

	var result []domain.BestScore
	for rows.Next() {
		var row domain.BestScore
		if err := rows.Scan(&row.PlayerID, &row.BestScore, &row.LastUpdated); err != nil {
			return nil, fmt.Errorf("scanning best score: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading best scores: %w", err)
	}
	return result, nil
}

// ledgerTx wraps a pgx transaction behind the service's ledger contract
type ledgerTx struct {
	tx pgx.Tx
}

// AppendScoreEvent inserts one immutable history row. Pure insert, never
// mutually exclusive with concurrent appends.
func (t *ledgerTx) AppendScoreEvent(ctx context.Context, playerID uuid.UUID, score int64, at time.Time) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO score_history (player_id, score, created_at) VALUES ($1, $2, $3)`,
		playerID, score, at,
	)
	if err != nil {
		return fmt.Errorf("appending score event: %w", err)
	}
	return nil
}

// LockBestScoreRow takes an exclusive row lock on the player's best-score
// row for the remainder of the transaction. Returns nil when the row does
// not exist yet.
func (t *ledgerTx) LockBestScoreRow(ctx context.Context, playerID uuid.UUID) (*domain.BestScore, error) {
	var row domain.BestScore
	err := t.tx.QueryRow(ctx,
		`SELECT player_id, best_score, last_updated
		 FROM playerleaderboard
		 WHERE player_id = $1
		 FOR UPDATE`,
		playerID,
	).Scan(&row.PlayerID, &row.BestScore, &row.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapRetryable(err, "locking best score row")
	}
	return &row, nil
}

// UpsertBestScoreRow writes the player's new best. Caller holds the row lock.
func (t *ledgerTx) UpsertBestScoreRow(ctx context.Context, playerID uuid.UUID, score int64, at time.Time) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO playerleaderboard (player_id, best_score, last_updated)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (player_id)
		 DO UPDATE SET best_score = $2, last_updated = $3`,
		playerID, score, at,
	)
	if err != nil {
		return fmt.Errorf("upserting best score row: %w", err)
	}
	return nil
}

// Commit commits the transaction
func (t *ledgerTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return wrapRetryable(err, "committing transaction")
	}
	return nil
}

// Rollback aborts the transaction; a no-op after Commit
func (t *ledgerTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// isUniqueViolation reports a PostgreSQL unique constraint error
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// wrapRetryable tags serialization failures, deadlocks and safely retryable
// protocol errors so callers can retry the whole submission.
func wrapRetryable(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflictRetryable, err)
	}
	if pgconn.SafeToRetry(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflictRetryable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
