package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gamerank/leaderboard/internal/config"
	"github.com/gamerank/leaderboard/internal/domain"
)

// Key layout: one global sorted set maps player id to the encoded rank
// scalar; a small per-player hash mirrors the authoritative pair the scalar
// was derived from, which makes drift inspectable from redis-cli alone.
const (
	leaderboardKey    = "leaderboard:global"
	rankMetaKeyPrefix = "player:rank_meta:"
)

// RankIndex is the Redis-backed order-statistics mirror of the ledger's
// best-score rows. Derived and rebuildable; the ledger stays authoritative.
type RankIndex struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRankIndex creates a new Redis rank index
func NewRankIndex(cfg *config.RedisConfig, logger *slog.Logger) (*RankIndex, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RankIndex{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (s *RankIndex) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client
func (s *RankIndex) Client() *redis.Client {
	return s.client
}

func rankMetaKey(playerID uuid.UUID) string {
	return rankMetaKeyPrefix + playerID.String()
}

// Upsert writes one player's index entry. Idempotent and last-write-wins on
// the encoded value, so out-of-order retries converge.
func (s *RankIndex) Upsert(ctx context.Context, entry domain.RankEntry) error {
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(entry.Encoded),
		Member: entry.PlayerID.String(),
	})
	pipe.HSet(ctx, rankMetaKey(entry.PlayerID),
		"best_score", entry.BestScore,
		"last_updated_ms", entry.LastUpdated.UnixMilli(),
	)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: upserting rank entry: %v", domain.ErrIndexSync, err)
	}
	return nil
}

// BatchUpsert writes many entries in one pipeline, used by index rebuilds
func (s *RankIndex) BatchUpsert(ctx context.Context, entries []domain.RankEntry) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, entry := range entries {
		pipe.ZAdd(ctx, leaderboardKey, redis.Z{
			Score:  float64(entry.Encoded),
			Member: entry.PlayerID.String(),
		})
		pipe.HSet(ctx, rankMetaKey(entry.PlayerID),
			"best_score", entry.BestScore,
			"last_updated_ms", entry.LastUpdated.UnixMilli(),
		)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: batch upserting rank entries: %v", domain.ErrIndexSync, err)
	}
	return nil
}

// TopK returns the top k players in descending encoded order
func (s *RankIndex) TopK(ctx context.Context, k int) ([]domain.RankedPlayer, error) {
	results, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(k-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top k: %w", err)
	}

	ranked := make([]domain.RankedPlayer, 0, len(results))
	for _, result := range results {
		member, _ := result.Member.(string)
		playerID, err := uuid.Parse(member)
		if err != nil {
			s.logger.Warn("skipping malformed index member", "member", member)
			continue
		}
		ranked = append(ranked, domain.RankedPlayer{
			PlayerID: playerID,
			Encoded:  int64(result.Score),
		})
	}
	return ranked, nil
}

// RankOf returns a player's 0-based rank in descending order, or ok=false
// when the player has no index entry.
func (s *RankIndex) RankOf(ctx context.Context, playerID uuid.UUID) (int64, bool, error) {
	rank, err := s.client.ZRevRank(ctx, leaderboardKey, playerID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("getting rank: %w", err)
	}
	return rank, true, nil
}

// Count returns the number of players with an index entry
func (s *RankIndex) Count(ctx context.Context) (int64, error) {
	count, err := s.client.ZCard(ctx, leaderboardKey).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}

// Remove deletes a player's index entry and meta hash
func (s *RankIndex) Remove(ctx context.Context, playerID uuid.UUID) error {
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, leaderboardKey, playerID.String())
	pipe.Del(ctx, rankMetaKey(playerID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("removing rank entry: %w", err)
	}
	return nil
}
