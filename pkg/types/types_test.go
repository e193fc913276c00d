package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeString_Validate(t *testing.T) {
	valid := []string{"00:00", "09:00", "13:30", "23:59"}
	for _, s := range valid {
		assert.NoError(t, TimeString(s).Validate(), s)
	}

	invalid := []string{"", "9:00", "24:00", "12:60", "12-30", "12:30:00", "ab:cd"}
	for _, s := range invalid {
		assert.ErrorIs(t, TimeString(s).Validate(), ErrInvalidTimeString, s)
	}
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan("14:00:00"))
	assert.Equal(t, TimeString("14:00"), ts)

	require.NoError(t, ts.Scan([]byte("07:05:00")))
	assert.Equal(t, TimeString("07:05"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 18, 45, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("18:45"), ts)

	assert.Error(t, ts.Scan(42))
}

func TestDateString_Weekday(t *testing.T) {
	cases := map[DateString]time.Weekday{
		"2024-07-01": time.Monday,
		"2024-07-07": time.Sunday,
		"2024-02-29": time.Thursday,
	}
	for date, want := range cases {
		got, err := date.Weekday()
		require.NoError(t, err)
		assert.Equal(t, want, got, date)
	}

	_, err := DateString("2023-02-29").Weekday()
	assert.ErrorIs(t, err, ErrInvalidDateString)
}

func TestDateString_ScanKeepsCalendarDate(t *testing.T) {
	var d DateString

	// полночь в другом часовом поясе не должна сдвигать дату
	loc := time.FixedZone("UTC+14", 14*60*60)
	require.NoError(t, d.Scan(time.Date(2024, 7, 1, 0, 0, 0, 0, loc)))
	assert.Equal(t, DateString("2024-07-01"), d)

	require.NoError(t, d.Scan("2024-07-02T00:00:00Z"))
	assert.Equal(t, DateString("2024-07-02"), d)
}

func TestLocalDateTime_RoundTrip(t *testing.T) {
	dt := NewLocalDateTime("2024-07-01", "10:00")
	assert.Equal(t, "2024-07-01T10:00", dt.String())

	data, err := json.Marshal(dt)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-07-01T10:00"`, string(data))

	var parsed LocalDateTime
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, dt.Equal(parsed))

	_, err = ParseLocalDateTime("2024-07-01 10:00")
	assert.ErrorIs(t, err, ErrInvalidLocalDateTime)
}
