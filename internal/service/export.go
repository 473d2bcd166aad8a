package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vitalog/backend/pkg/model"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var exportHeaders = []string{
	"Recorded At",
	"Blood Pressure",
	"Heart Rate",
	"Blood Oxygen (%)",
	"Sleep Duration (h)",
	"Sleep Quality",
	"Stress Level",
	"Mood",
	"Source",
}

// ExportLogs renders all health logs of a user as an XLSX workbook,
// newest first, one row per entry.
func (s *HealthLogService) ExportLogs(ctx context.Context, userID string) ([]byte, error) {
	entries, err := s.ListLogs(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	// WriteToBuffer needs the file open, so no deferred Close on success

	sheetName := "Health Logs"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for row, entry := range entries {
		values := exportRow(entry)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	s.logger.Info("health logs exported",
		zap.String("user_id", userID),
		zap.Int("entries", len(entries)),
	)

	return buf.Bytes(), nil
}

func exportRow(entry model.HealthLogEntry) []string {
	row := make([]string, 0, len(exportHeaders))
	row = append(row, entry.RecordedAt.Format("2006-01-02 15:04"))
	row = append(row, stringOrEmpty(entry.BloodPressure))
	if entry.HeartRate != nil {
		row = append(row, strconv.Itoa(*entry.HeartRate))
	} else {
		row = append(row, "")
	}
	row = append(row, floatOrEmpty(entry.BloodOxygenLevel))
	row = append(row, floatOrEmpty(entry.SleepDuration))
	row = append(row, stringOrEmpty(entry.SleepQuality))
	row = append(row, stringOrEmpty(entry.StressLevel))
	row = append(row, stringOrEmpty(entry.Mood))
	row = append(row, entry.Source)
	return row
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
