package domain

import (
	"fmt"
	"time"
)

// Rank score encoding.
//
// The rank index sorts players by a single scalar, so score and achievement
// time are packed into one int64: the score occupies the high bits and an
// inverted millisecond timestamp the low bits. A one-point score difference
// always dominates any timestamp difference, and for equal scores the player
// who got there earlier (smaller timestamp, larger inverted term) sorts
// higher.
//
// Layout: encoded = score<<42 | (2^42-1 - millisSinceBase).
//
// Limits, fixed by the 63 usable bits of int64:
//   - scores 0..MaxScore (21 bits)
//   - timestamps from 2020-01-01T00:00:00Z through roughly year 2159 (42 bits
//     of milliseconds)
//
// The top of the range, Encode(MaxScore, base) = 2^63-1, is exactly
// representable. Redis stores sorted-set scores as float64; values above 2^53
// round to the nearest multiple of a small power of two, which can collapse
// near-simultaneous timestamps for very large scores into index ties but can
// never reorder distinct scores (the score stride 2^42 dwarfs the rounding
// step). Display values are always read back from the ledger.
const (
	timestampBits = 42
	maxRelMillis  = 1<<timestampBits - 1

	// MaxScore is the largest submittable score.
	MaxScore = 1<<21 - 1
)

// encodeBaseMillis is 2020-01-01T00:00:00Z in Unix milliseconds.
const encodeBaseMillis = 1577836800000

// EncodeRankScore maps a (best score, achieved-at) pair to the scalar the
// rank index sorts by. Pure function; both arguments must be within the
// documented limits.
func EncodeRankScore(score int64, achievedAt time.Time) (int64, error) {
	if score < 0 || score > MaxScore {
		return 0, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidScore, score, MaxScore)
	}
	rel := achievedAt.UnixMilli() - encodeBaseMillis
	if rel < 0 || rel > maxRelMillis {
		return 0, fmt.Errorf("%w: %s", ErrTimeOutOfRange, achievedAt.UTC().Format(time.RFC3339))
	}
	return score<<timestampBits | (maxRelMillis - rel), nil
}

// DecodeRankScore inverts EncodeRankScore. Millisecond precision only.
func DecodeRankScore(encoded int64) (score int64, achievedAt time.Time) {
	score = encoded >> timestampBits
	rel := maxRelMillis - (encoded & maxRelMillis)
	return score, time.UnixMilli(encodeBaseMillis + rel).UTC()
}
