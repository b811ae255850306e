package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 19, 0, 0, 0, time.UTC)
}

func TestExpandWeekly(t *testing.T) {
	base := date(2025, time.March, 3) // a Monday
	end := date(2025, time.March, 31)

	occurrences, err := Expand(base, Pattern{Frequency: FrequencyWeekly, End: end}, 0)
	require.NoError(t, err)

	require.Len(t, occurrences, 4)
	for i, occ := range occurrences {
		assert.Equal(t, time.Monday, occ.Weekday())
		assert.Equal(t, base.AddDate(0, 0, 7*(i+1)), occ)
	}
}

func TestExpandWeeklySelectedDays(t *testing.T) {
	base := date(2025, time.March, 3) // Monday
	end := date(2025, time.March, 16)

	occurrences, err := Expand(base, Pattern{
		Frequency: FrequencyWeekly,
		Weekdays:  []time.Weekday{time.Wednesday, time.Friday},
		End:       end,
	}, 0)
	require.NoError(t, err)

	require.Len(t, occurrences, 4)
	assert.Equal(t, date(2025, time.March, 5), occurrences[0])
	assert.Equal(t, date(2025, time.March, 7), occurrences[1])
	assert.Equal(t, date(2025, time.March, 12), occurrences[2])
	assert.Equal(t, date(2025, time.March, 14), occurrences[3])
}

func TestExpandMonthly(t *testing.T) {
	base := date(2025, time.January, 15)
	end := date(2025, time.April, 15)

	occurrences, err := Expand(base, Pattern{Frequency: FrequencyMonthly, End: end}, 0)
	require.NoError(t, err)

	require.Len(t, occurrences, 3)
	assert.Equal(t, date(2025, time.February, 15), occurrences[0])
	assert.Equal(t, date(2025, time.March, 15), occurrences[1])
	assert.Equal(t, date(2025, time.April, 15), occurrences[2])
}

func TestExpandMonthlyNormalizesShortMonths(t *testing.T) {
	base := date(2025, time.January, 31)
	end := date(2025, time.March, 31)

	occurrences, err := Expand(base, Pattern{Frequency: FrequencyMonthly, End: end}, 0)
	require.NoError(t, err)

	// Jan 31 + 1 month normalizes to Mar 3, then Apr 3 which is past end.
	require.Len(t, occurrences, 1)
	assert.Equal(t, date(2025, time.March, 3), occurrences[0])
}

func TestExpandExcludesBaseAndIncludesEnd(t *testing.T) {
	base := date(2025, time.March, 3)
	end := base.AddDate(0, 0, 7)

	occurrences, err := Expand(base, Pattern{Frequency: FrequencyWeekly, End: end}, 0)
	require.NoError(t, err)

	require.Len(t, occurrences, 1)
	assert.Equal(t, end, occurrences[0])
}

func TestExpandLimit(t *testing.T) {
	base := date(2025, time.January, 6)
	end := base.AddDate(2, 0, 0)

	occurrences, err := Expand(base, Pattern{Frequency: FrequencyWeekly, End: end}, 10)
	require.NoError(t, err)
	assert.Len(t, occurrences, 10)

	occurrences, err = Expand(base, Pattern{Frequency: FrequencyWeekly, End: end}, 0)
	require.NoError(t, err)
	assert.Len(t, occurrences, DefaultMaxOccurrences)
}

func TestExpandErrors(t *testing.T) {
	base := date(2025, time.March, 3)

	_, err := Expand(base, Pattern{Frequency: FrequencyWeekly}, 0)
	assert.ErrorIs(t, err, ErrUnboundedWindow)

	_, err = Expand(base, Pattern{Frequency: FrequencyUnspecified, End: base.AddDate(0, 1, 0)}, 0)
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}
