package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"posada/internal/metrics"
	"posada/internal/models"
)

// SheetsSource reads availability from a Google Sheets spreadsheet with one
// tab per month. Row layout per tab, starting at row 2:
// room number | room name | available day numbers.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
	rooms         []models.RoomConfig
	cache         Cache
	logger        *zerolog.Logger
}

// NewSheetsSource builds a source authenticated with a service-account
// credentials file. cache may be nil to disable caching.
func NewSheetsSource(ctx context.Context, credentialsFile, spreadsheetID string, rooms []models.RoomConfig, cache Cache, logger *zerolog.Logger) (*SheetsSource, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsSource{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		rooms:         rooms,
		cache:         cache,
		logger:        logger,
	}, nil
}

func (s *SheetsSource) cacheKey(k models.MonthKey) string {
	return fmt.Sprintf("feed:%s:%04d-%02d", s.spreadsheetID, k.Year, k.Month)
}

// FetchMonth returns the month's records. A month without a matching tab
// resolves to synthesized full-occupancy records, not an error.
func (s *SheetsSource) FetchMonth(ctx context.Context, k models.MonthKey) ([]models.RoomAvailabilityRecord, error) {
	key := s.cacheKey(k)
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			var records []models.RoomAvailabilityRecord
			if err := json.Unmarshal(data, &records); err == nil {
				metrics.IncFeedFetch("cache_hit")
				return records, nil
			}
			s.cache.Evict(ctx, key)
		}
	}

	title, found, err := s.findTab(ctx, k)
	if err != nil {
		metrics.IncFeedFetch("error")
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	if !found {
		s.logger.Info().Int("year", k.Year).Int("month", k.Month).Msg("no tab for month, treating as fully occupied")
		metrics.IncFeedFetch("no_tab")
		return SynthesizeClosedMonth(s.rooms, k), nil
	}

	readRange := fmt.Sprintf("'%s'!A2:C50", title)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		metrics.IncFeedFetch("error")
		return nil, fmt.Errorf("read tab %q: %w", title, err)
	}

	records := s.recordsFromValues(resp.Values, k, title)
	metrics.IncFeedFetch("ok")

	if s.cache != nil {
		if data, err := json.Marshal(records); err == nil {
			s.cache.Set(ctx, key, data)
		}
	}
	return records, nil
}

func (s *SheetsSource) findTab(ctx context.Context, k models.MonthKey) (string, bool, error) {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return "", false, err
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties == nil {
			continue
		}
		title := sheet.Properties.Title
		if match, ok := MatchTabTitle(title); ok && match.Year == k.Year && match.Month == k.Month {
			return title, true, nil
		}
	}
	return "", false, nil
}

// recordsFromValues parses the tab rows and fills in fail-closed records for
// configured rooms the tab does not mention.
func (s *SheetsSource) recordsFromValues(values [][]interface{}, k models.MonthKey, title string) []models.RoomAvailabilityRecord {
	seen := make(map[int]bool)
	var records []models.RoomAvailabilityRecord
	for _, raw := range values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
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
	return append(records, SynthesizeClosedMonth(missing, k)...)
}
