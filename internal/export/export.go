// Package export writes activity minutes over a date range as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/logger"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/validation"
)

// Rows builds the header and one row per activity. Days without data are 0.
func Rows(activities []models.Activity, start, end time.Time) ([][]string, error) {
	if err := validation.ValidateRange(start, end); err != nil {
		return nil, err
	}
	dates := calendar.DateRange(start, end)

	header := make([]string, 0, len(dates)+1)
	header = append(header, "Activity")
	for _, d := range dates {
		header = append(header, calendar.FormatDate(d))
	}

	rows := [][]string{header}
	for _, a := range activities {
		row := make([]string, 0, len(dates)+1)
		row = append(row, a.Name)
		for _, d := range dates {
			row = append(row, strconv.Itoa(a.History.Minutes(d)))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Write streams the CSV for the range to w
func Write(w io.Writer, activities []models.Activity, start, end time.Time) error {
	rows, err := Rows(activities, start, end)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// FileName returns activities_<start>_to_<end>.csv
func FileName(start, end time.Time) string {
	return constants.ExportFilePrefix + calendar.FormatDate(start) + "_to_" + calendar.FormatDate(end) + constants.ExportFileSuffix
}

// WriteFile writes the export into dir and returns the file path
func WriteFile(dir string, activities []models.Activity, start, end time.Time) (string, error) {
	if err := validation.ValidateRange(start, end); err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, FileName(start, end))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Write(f, activities, start, end); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	logger.Info("exported activities", "path", path, "activities", len(activities))
	return path, nil
}
