package domain

import (
	"time"

	"github.com/google/uuid"
)

// BestScore is the authoritative per-player leaderboard row. BestScore never
// decreases over a player's lifetime; LastUpdated is the timestamp of the
// first submission that achieved the current best.
type BestScore struct {
	PlayerID    uuid.UUID `json:"player_id"`
	BestScore   int64     `json:"best_score"`
	LastUpdated time.Time `json:"last_updated"`
}

// ScoreEvent is one row of the append-only submission history
type ScoreEvent struct {
	PlayerID  uuid.UUID `json:"player_id"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreSubmission represents a request to submit a score. SubmittedAt is set
// by the ingestion producer at publish time; when zero the service stamps the
// submission on arrival.
type ScoreSubmission struct {
	PlayerID    uuid.UUID `json:"player_id"`
	Score       int64     `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// BatchScoreSubmission represents multiple score submissions
type BatchScoreSubmission struct {
	Scores []ScoreSubmission `json:"scores"`
}

// LeaderboardEntry is a single display row of the global leaderboard. Score
// and LastUpdated come from the ledger, not from the encoded index value.
type LeaderboardEntry struct {
	Rank        int64     `json:"rank"`
	PlayerID    uuid.UUID `json:"player_id"`
	Name        string    `json:"name"`
	Score       int64     `json:"score"`
	LastUpdated time.Time `json:"last_updated"`
}

// PlayerBest is the ledger-side join of display name and best-score row,
// fetched when hydrating index entries for display.
type PlayerBest struct {
	PlayerID    uuid.UUID
	Name        string
	BestScore   int64
	LastUpdated time.Time
}

// RankEntry is one derived entry of the rank index: a player id and the
// encoded scalar it sorts by, plus the authoritative pair it was derived
// from (mirrored alongside the sorted set for observability).
type RankEntry struct {
	PlayerID    uuid.UUID
	Encoded     int64
	BestScore   int64
	LastUpdated time.Time
}

// RankedPlayer is one entry returned by a top-K index read
type RankedPlayer struct {
	PlayerID uuid.UUID
	Encoded  int64
}

// History is the newest-first submission history for one player
type History struct {
	PlayerID uuid.UUID    `json:"player_id"`
	Name     string       `json:"name"`
	Items    []ScoreEvent `json:"history"`
}
