package feed

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"posada/internal/models"
)

// WorkbookSource reads the same tab-per-month layout from a local .xlsx
// export of the spreadsheet. Used for offline development and tests.
type WorkbookSource struct {
	path  string
	rooms []models.RoomConfig
}

// NewWorkbookSource builds a source over the workbook at path.
func NewWorkbookSource(path string, rooms []models.RoomConfig) *WorkbookSource {
	return &WorkbookSource{path: path, rooms: rooms}
}

// FetchMonth parses the month's tab. The workbook is reopened per call so
// edits to the file are picked up on the next load.
func (s *WorkbookSource) FetchMonth(ctx context.Context, k models.MonthKey) ([]models.RoomAvailabilityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	title := ""
	for _, sheet := range f.GetSheetList() {
		if match, ok := MatchTabTitle(sheet); ok && match.Year == k.Year && match.Month == k.Month {
			title = sheet
			break
		}
	}
	if title == "" {
		return SynthesizeClosedMonth(s.rooms, k), nil
	}

	rows, err := f.GetRows(title)
	if err != nil {
		return nil, fmt.Errorf("read tab %q: %w", title, err)
	}

	seen := make(map[int]bool)
	var records []models.RoomAvailabilityRecord
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		rec, ok := recordFromRow(row, k, title)
		if !ok || seen[rec.RoomNumber] {
			continue
		}
		seen[rec.RoomNumber] = true
		records = append(records, rec)
	}

	var missing []models.RoomConfig
	for _, room := range s.rooms {
		if !seen[room.RoomNumber] {
			missing = append(missing, room)
		}
	}
	return append(records, SynthesizeClosedMonth(missing, k)...), nil
}
