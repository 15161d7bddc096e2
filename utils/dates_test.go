package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	d, err := NormalizeDate("2024-12-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-15", d)

	d, err = NormalizeDate("2024-12-15T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-15", d)

	_, err = NormalizeDate("15/12/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNormalizeClock(t *testing.T) {
	c, err := NormalizeClock("9:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", c)

	c, err = NormalizeClock("14:00:05")
	require.NoError(t, err)
	assert.Equal(t, "14:00:05", c)

	_, err = NormalizeClock("25:00")
	assert.ErrorIs(t, err, ErrInvalidClock)

	blank := "  "
	opt, err := NormalizeOptionalClock(&blank)
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestBookingReference(t *testing.T) {
	at := time.Date(2024, 12, 15, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "FS-20241215-000042", BookingReference(42, at))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 95.0, RoundMoney(100*0.95))
	assert.Equal(t, 10.99, RoundMoney(10.987))
	assert.Equal(t, -1.5, RoundMoney(-1.5))
}
