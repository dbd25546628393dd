package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestWriteFillsMissingDays(t *testing.T) {
	h := models.History{}.
		WithMinutes(date(2024, time.January, 30), 10).
		WithMinutes(date(2024, time.February, 1), 25)
	acts := []models.Activity{
		{ID: "1", Name: "Piano", WeeklyGoalHours: 3, History: h},
		{ID: "2", Name: "Walk, long", WeeklyGoalHours: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, acts, date(2024, time.January, 30), date(2024, time.February, 1)))

	want := "Activity,2024-01-30,2024-01-31,2024-02-01\n" +
		"Piano,10,0,25\n" +
		"\"Walk, long\",0,0,0\n"
	assert.Equal(t, want, buf.String())
}

func TestRowsSingleDay(t *testing.T) {
	rows, err := Rows(nil, date(2024, time.March, 1), date(2024, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Activity", "2024-03-01"}}, rows)
}

func TestRangeValidation(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
	}{
		{"reversed", date(2024, time.March, 2), date(2024, time.March, 1)},
		{"missing start", time.Time{}, date(2024, time.March, 1)},
		{"over two years", date(2022, time.January, 1), date(2024, time.January, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rows(nil, tt.start, tt.end)
			_, ok := apperrors.AsValidation(err)
			assert.True(t, ok, "got %v", err)
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	acts := []models.Activity{{ID: "1", Name: "Run", WeeklyGoalHours: 1}}

	path, err := WriteFile(dir, acts, date(2024, time.June, 1), date(2024, time.June, 2))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "activities_2024-06-01_to_2024-06-02.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Activity,2024-06-01,2024-06-02\nRun,0,0\n", string(data))
}
