package ledger

import (
	"testing"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange_Inclusivity(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	r, err := ParseDateRange("2024-06-01", "2024-06-30", loc)
	require.NoError(t, err)
	require.True(t, r.Bounded())

	startOfRange := time.Date(2024, 6, 1, 0, 0, 0, 0, loc)
	endOfRange := time.Date(2024, 6, 30, 23, 59, 59, int(999*time.Millisecond), loc)

	assert.True(t, r.Contains(startOfRange))
	assert.True(t, r.Contains(endOfRange))
	assert.False(t, r.Contains(startOfRange.Add(-time.Millisecond)))
	assert.False(t, r.Contains(endOfRange.Add(time.Millisecond)))

	// the same instant expressed in another zone is still inside
	assert.True(t, r.Contains(startOfRange.UTC()))
}

func TestParseDateRange_SingleDay(t *testing.T) {
	r, err := ParseDateRange("2024-06-01", "2024-06-01", time.UTC)
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateRange_Unbounded(t *testing.T) {
	for _, tc := range [][2]string{{"", ""}, {"2024-06-01", ""}, {"", "2024-06-01"}} {
		r, err := ParseDateRange(tc[0], tc[1], time.UTC)
		require.NoError(t, err)
		assert.False(t, r.Bounded())
		assert.True(t, r.Contains(time.Time{}))
	}
}

func TestParseDateRange_Invalid(t *testing.T) {
	_, err := ParseDateRange("06/01/2024", "2024-06-30", time.UTC)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "start_date", verr.Field)

	_, err = ParseDateRange("2024-06-01", "2024-13-01", time.UTC)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end_date", verr.Field)

	_, err = ParseDateRange("garbage", "", time.UTC)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "start_date", verr.Field)

	_, err = ParseDateRange("", "2024-6-1", time.UTC)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end_date", verr.Field)

	_, err = ParseDateRange("2024-06-30", "2024-06-01", time.UTC)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end_date", verr.Field)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDayRange_FloorsAndCeils(t *testing.T) {
	r := DayRange(
		time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 12, 1, 0, 0, 0, time.UTC),
		time.UTC,
	)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 1, 12, 23, 59, 59, 999000000, time.UTC), r.End)
}

func TestFilterByDate(t *testing.T) {
	type rec struct {
		id int
		at time.Time
	}
	records := []rec{
		{1, time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)},
		{2, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{3, time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)},
		{4, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	r, err := ParseDateRange("2024-06-01", "2024-06-30", time.UTC)
	require.NoError(t, err)

	got := FilterByDate(records, func(r rec) time.Time { return r.at }, r)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].id)
	assert.Equal(t, 3, got[1].id)

	assert.Len(t, FilterByDate(records, func(r rec) time.Time { return r.at }, DateRange{}), 4)
}
