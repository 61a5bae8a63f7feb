package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/farmops/internal/domain"
	"github.com/mtlprog/farmops/internal/report"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPreviousWindow_FiveDays(t *testing.T) {
	w := domain.Window{From: ts("2024-01-01T00:00:00Z"), To: ts("2024-01-05T23:59:59Z")}

	prev := report.PreviousWindow(w)

	assert.Equal(t, ts("2023-12-27T00:00:00Z"), prev.From)
	assert.Equal(t, ts("2023-12-31T23:59:59Z"), prev.To)
	assert.Equal(t, 5, report.InclusiveDays(w))
	assert.Equal(t, 5, report.InclusiveDays(prev))
}

func TestPreviousWindow_Symmetry(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
	}{
		{"single day", "2024-03-10", "2024-03-10"},
		{"month boundary", "2024-03-01", "2024-03-31"},
		{"leap february", "2024-02-01", "2024-02-29"},
		{"year", "2023-01-01", "2023-12-31"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := report.ParseDayWindow(tc.from, tc.to)
			require.NoError(t, err)

			prev := report.PreviousWindow(w)

			assert.Equal(t, report.InclusiveDays(w), report.InclusiveDays(prev))
			assert.Equal(t, w.From.Add(-time.Second), prev.To)
			assert.False(t, prev.IsEmpty())
		})
	}
}

func TestInclusiveDays_ReversedWindow(t *testing.T) {
	w := domain.Window{From: ts("2024-01-05T00:00:00Z"), To: ts("2024-01-01T00:00:00Z")}

	assert.LessOrEqual(t, report.InclusiveDays(w), 0)
	assert.True(t, w.IsEmpty())
}

func TestDayWindow_ExpandsToWholeDays(t *testing.T) {
	w := report.DayWindow(ts("2024-06-03T15:04:05Z"), ts("2024-06-04T01:00:00Z"))

	assert.Equal(t, ts("2024-06-03T00:00:00Z"), w.From)
	assert.Equal(t, ts("2024-06-04T23:59:59Z"), w.To)
}

func TestParseDayWindow_InvalidDate(t *testing.T) {
	_, err := report.ParseDayWindow("2024-13-01", "2024-01-05")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = report.ParseDayWindow("2024-01-01", "yesterday")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}
