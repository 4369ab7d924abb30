package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("DefaultsApplied", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `
feed:
  provider: workbook
  workbook_path: data/disponibilidad.xlsx
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 300, cfg.Feed.CacheTTLSeconds)
		assert.Equal(t, 64, cfg.Feed.CacheMaxEntries)
		assert.Equal(t, 30, cfg.Session.TimeoutMinutes)
		assert.Equal(t, 10, cfg.Booking.RatePerMinute)
	})

	t.Run("EnvExpansion", func(t *testing.T) {
		t.Setenv("TEST_SPREADSHEET", "sheet-123")
		path := writeFile(t, "config.yaml", `
feed:
  provider: sheets
  spreadsheet_id: ${TEST_SPREADSHEET}
  credentials_file: creds.json
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "sheet-123", cfg.Feed.SpreadsheetID)
	})

	t.Run("SheetsProviderRequiresSpreadsheet", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `
feed:
  provider: sheets
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("WorkbookProviderRequiresPath", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `
feed:
  provider: workbook
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestLoadRoomsConfig(t *testing.T) {
	valid := `
rooms:
  - room_number: 1
    room_name: Salinas
    max_persons: 2
  - room_number: 3
    room_name: Mirador
    max_persons: 4
`

	t.Run("Valid", func(t *testing.T) {
		cfg, err := LoadRoomsConfig(writeFile(t, "rooms.yaml", valid))
		require.NoError(t, err)
		assert.Len(t, cfg.Rooms, 2)

		room, ok := cfg.Find(3)
		assert.True(t, ok)
		assert.Equal(t, "Mirador", room.RoomName)

		_, ok = cfg.Find(9)
		assert.False(t, ok)
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"empty rooms", `rooms: []`},
		{"zero room number", "rooms:\n  - room_number: 0\n    room_name: X\n    max_persons: 1"},
		{"duplicate number", "rooms:\n  - room_number: 1\n    room_name: A\n    max_persons: 1\n  - room_number: 1\n    room_name: B\n    max_persons: 1"},
		{"duplicate name", "rooms:\n  - room_number: 1\n    room_name: A\n    max_persons: 1\n  - room_number: 2\n    room_name: A\n    max_persons: 1"},
		{"missing name", "rooms:\n  - room_number: 1\n    max_persons: 1"},
		{"zero max persons", "rooms:\n  - room_number: 1\n    room_name: A\n    max_persons: 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRoomsConfig(writeFile(t, "rooms.yaml", tt.yaml))
			assert.Error(t, err)
		})
	}
}
