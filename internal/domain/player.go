package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player is the core identity record for a registered player
type Player struct {
	ID           uuid.UUID `json:"player_id"`
	Name         string    `json:"name"`
	Handle       string    `json:"phone_or_email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the outward-facing view of a player: identity joined with the
// authoritative best-score row, plus the current rank from the fast index.
// Rank is nil when the player has no rank index entry yet.
type Profile struct {
	PlayerID    uuid.UUID `json:"player_id"`
	Name        string    `json:"name"`
	Handle      string    `json:"phone_or_email"`
	Rank        *int64    `json:"rank"`
	BestScore   int64     `json:"best_score"`
	LastUpdated time.Time `json:"last_updated"`
}
