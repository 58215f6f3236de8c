package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingDate(t *testing.T) {
	want := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	got, err := ParseBookingDate("2026-05-04")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseBookingDate("2026-05-04T18:45:00Z")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseBookingDate("2026-05-05T01:00:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParseBookingDate("04/05/2026")
	assert.Error(t, err)
}

func TestIsPastDay(t *testing.T) {
	now := time.Date(2026, 5, 4, 23, 59, 0, 0, time.UTC)
	assert.False(t, IsPastDay(time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, IsPastDay(time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), now))
	assert.True(t, IsPastDay(time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC), now))
}
