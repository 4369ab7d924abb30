package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"posada/internal/models"
)

// RoomsConfig is the root configuration for rooms.yaml: the static room
// metadata the availability feed never carries.
type RoomsConfig struct {
	Rooms []models.RoomConfig `yaml:"rooms"`
}

// LoadRoomsConfig loads and validates room configuration from a YAML file.
func LoadRoomsConfig(path string) (*RoomsConfig, error) {
	if path == "" {
		path = "configs/rooms.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms config: %w", err)
	}

	var cfg RoomsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rooms config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate rooms config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *RoomsConfig) Validate() error {
	if len(c.Rooms) == 0 {
		return fmt.Errorf("no rooms defined")
	}

	numbers := make(map[int]bool)
	names := make(map[string]bool)

	for i, room := range c.Rooms {
		if room.RoomNumber <= 0 {
			return fmt.Errorf("room[%d]: room_number must be positive, got %d", i, room.RoomNumber)
		}
		if numbers[room.RoomNumber] {
			return fmt.Errorf("room[%d]: duplicate room_number %d", i, room.RoomNumber)
		}
		numbers[room.RoomNumber] = true

		if room.RoomName == "" {
			return fmt.Errorf("room[%d]: room_name is required", i)
		}
		if names[room.RoomName] {
			return fmt.Errorf("room[%d]: duplicate room_name '%s'", i, room.RoomName)
		}
		names[room.RoomName] = true

		if room.MaxPersons <= 0 {
			return fmt.Errorf("room[%d]: max_persons must be positive, got %d", i, room.MaxPersons)
		}
	}

	return nil
}

// Find returns the configuration for a room number.
func (c *RoomsConfig) Find(roomNumber int) (models.RoomConfig, bool) {
	for _, room := range c.Rooms {
		if room.RoomNumber == roomNumber {
			return room, true
		}
	}
	return models.RoomConfig{}, false
}
