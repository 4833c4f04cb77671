package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var encodeBase = time.UnixMilli(encodeBaseMillis).UTC()

func TestEncodeScoreDominatesTimestamp(t *testing.T) {
	// A higher score must outrank a lower one no matter how far apart the
	// timestamps are within the supported horizon.
	earliest := encodeBase
	latest := encodeBase.Add(time.Duration(maxRelMillis) * time.Millisecond)

	hi, err := EncodeRankScore(100, latest)
	require.NoError(t, err)
	lo, err := EncodeRankScore(99, earliest)
	require.NoError(t, err)
	assert.Greater(t, hi, lo)

	hi, err = EncodeRankScore(MaxScore, latest)
	require.NoError(t, err)
	lo, err = EncodeRankScore(MaxScore-1, earliest)
	require.NoError(t, err)
	assert.Greater(t, hi, lo)
}

func TestEncodeEarlierTimestampWinsTies(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	first, err := EncodeRankScore(500, at)
	require.NoError(t, err)
	second, err := EncodeRankScore(500, at.Add(time.Millisecond))
	require.NoError(t, err)
	assert.Greater(t, first, second)

	much, err := EncodeRankScore(500, at.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Greater(t, second, much)
}

func TestEncodeBoundaries(t *testing.T) {
	latest := encodeBase.Add(time.Duration(maxRelMillis) * time.Millisecond)

	// Largest supported score at the edges of the horizon stays within int64.
	top, err := EncodeRankScore(MaxScore, encodeBase)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), top)

	bottomOfTop, err := EncodeRankScore(MaxScore, latest)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxScore)<<timestampBits, bottomOfTop)
	assert.Greater(t, top, bottomOfTop)

	// Zero score at the latest timestamp is the global minimum.
	min, err := EncodeRankScore(0, latest)
	require.NoError(t, err)
	assert.Equal(t, int64(0), min)
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := EncodeRankScore(-1, at)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = EncodeRankScore(MaxScore+1, at)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = EncodeRankScore(10, encodeBase.Add(-time.Millisecond))
	assert.ErrorIs(t, err, ErrTimeOutOfRange)

	beyond := encodeBase.Add(time.Duration(maxRelMillis+1) * time.Millisecond)
	_, err = EncodeRankScore(10, beyond)
	assert.ErrorIs(t, err, ErrTimeOutOfRange)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		score int64
		at    time.Time
	}{
		{0, encodeBase},
		{1, time.Date(2025, 3, 15, 8, 30, 0, 0, time.UTC)},
		{42000, time.Date(2031, 12, 31, 23, 59, 59, 0, time.UTC)},
		{MaxScore, encodeBase.Add(time.Duration(maxRelMillis) * time.Millisecond)},
	}
	for _, tc := range cases {
		encoded, err := EncodeRankScore(tc.score, tc.at)
		require.NoError(t, err)

		score, at := DecodeRankScore(encoded)
		assert.Equal(t, tc.score, score)
		assert.Equal(t, tc.at.UnixMilli(), at.UnixMilli())
	}
}
