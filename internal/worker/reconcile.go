package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gamerank/leaderboard/internal/config"
	"github.com/gamerank/leaderboard/internal/domain"
	"github.com/gamerank/leaderboard/internal/metrics"
)

// Ledger is the slice of the durable store the reconciler reads from
type Ledger interface {
	BestScoreRow(ctx context.Context, id uuid.UUID) (*domain.BestScore, error)
	AllBestScores(ctx context.Context) ([]domain.BestScore, error)
}

// Index is the writable side of the rank index
type Index interface {
	Upsert(ctx context.Context, entry domain.RankEntry) error
	BatchUpsert(ctx context.Context, entries []domain.RankEntry) error
	Remove(ctx context.Context, playerID uuid.UUID) error
}

// Reconciler closes the gap between the ledger and the rank index: it
// repairs individual players whose post-commit index upsert failed, and
// periodically rebuilds the whole index from the ledger, which alone is
// enough to regenerate it.
type Reconciler struct {
	ledger  Ledger
	index   Index
	config  *config.ReconcilerConfig
	metrics *metrics.Metrics
	logger  *slog.Logger

	repairCh chan uuid.UUID
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewReconciler creates a new reconciler
func NewReconciler(
	ledger Ledger,
	index Index,
	cfg *config.ReconcilerConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		ledger:   ledger,
		index:    index,
		config:   cfg,
		metrics:  m,
		logger:   logger,
		repairCh: make(chan uuid.UUID, cfg.RepairBuffer),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Enqueue flags a player for an index repair pass. Non-blocking: when the
// buffer is full the id is dropped and the periodic rebuild picks it up.
func (r *Reconciler) Enqueue(playerID uuid.UUID) {
	select {
	case r.repairCh <- playerID:
	default:
		r.logger.Warn("repair queue full, deferring to periodic rebuild",
			"player_id", playerID,
		)
	}
}

// Start begins the background reconciliation loop
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	r.logger.Info("reconciler started", "rebuild_interval", r.config.RebuildInterval)

	go r.run(ctx)
	return nil
}

// Stop stops the background loop
func (r *Reconciler) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	r.logger.Info("reconciler stopped")
	return nil
}

// IsRunning returns whether the reconciler loop is active
func (r *Reconciler) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.config.RebuildInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case playerID := <-r.repairCh:
			r.repairPlayer(ctx, playerID)
		case <-ticker.C:
			if err := r.RebuildAll(ctx); err != nil {
				r.logger.Error("periodic index rebuild failed", "error", err)
			}
		}
	}
}

// repairPlayer re-derives one player's index entry from the ledger
func (r *Reconciler) repairPlayer(ctx context.Context, playerID uuid.UUID) {
	row, err := r.ledger.BestScoreRow(ctx, playerID)
	if err != nil {
		r.logger.Error("repair: reading ledger row failed",
			"player_id", playerID,
			"error", err,
		)
		return
	}
	if row == nil {
		// Index entry with no ledger row is a ghost; drop it.
		if err := r.index.Remove(ctx, playerID); err != nil {
			r.logger.Error("repair: removing ghost index entry failed",
				"player_id", playerID,
				"error", err,
			)
		}
		return
	}

	entry, ok := r.encode(*row)
	if !ok {
		return
	}
	if err := r.index.Upsert(ctx, entry); err != nil {
		r.logger.Error("repair: index upsert failed",
			"player_id", playerID,
			"error", err,
		)
		return
	}

	if r.metrics != nil {
		r.metrics.IndexRepairsTotal.Inc()
	}
	r.logger.Debug("repaired index entry", "player_id", playerID)
}

// RebuildAll regenerates the rank index by replaying every best-score row
// through the encoder. Also used on startup for recovery.
func (r *Reconciler) RebuildAll(ctx context.Context) error {
	start := time.Now()

	rows, err := r.ledger.AllBestScores(ctx)
	if err != nil {
		return err
	}

	batchSize := r.config.RebuildBatchSize
	batch := make([]domain.RankEntry, 0, batchSize)
	rebuilt := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.index.BatchUpsert(ctx, batch); err != nil {
			return err
		}
		rebuilt += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, row := range rows {
		entry, ok := r.encode(row)
		if !ok {
			continue
		}
		batch = append(batch, entry)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.IndexRebuildsTotal.Inc()
	}
	r.logger.Info("rank index rebuilt",
		"players", rebuilt,
		"duration", time.Since(start),
	)
	return nil
}

func (r *Reconciler) encode(row domain.BestScore) (domain.RankEntry, bool) {
	encoded, err := domain.EncodeRankScore(row.BestScore, row.LastUpdated)
	if err != nil {
		r.logger.Error("ledger row not encodable, leaving out of index",
			"player_id", row.PlayerID,
			"best_score", row.BestScore,
			"error", err,
		)
		return domain.RankEntry{}, false
	}
	return domain.RankEntry{
		PlayerID:    row.PlayerID,
		Encoded:     encoded,
		BestScore:   row.BestScore,
		LastUpdated: row.LastUpdated,
	}, true
}
