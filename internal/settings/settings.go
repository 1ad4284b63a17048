package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds the user preferences persisted between runs. The store is a
// small external collaborator of the core: the scheduler reads the lead time,
// the list command reads the filter defaults.
type Settings struct {
	NotificationLeadMinutes int    `yaml:"notification_lead_minutes"`
	HideCompleted           bool   `yaml:"hide_completed"`
	SortOption              string `yaml:"sort_option"`
	SelectedCategory        string `yaml:"selected_category"`
}

// LeadMinuteOptions is the fixed set of selectable reminder lead times.
var LeadMinuteOptions = []int{1, 5, 10, 30, 60, 120, 240, 600, 1440, 2880}

// Defaults returns the settings used before the user changes anything.
func Defaults() Settings {
	return Settings{
		NotificationLeadMinutes: 10,
		HideCompleted:           false,
		SortOption:              "DATE_ASC",
		SelectedCategory:        "All",
	}
}

// ValidLeadMinutes reports whether m is one of the selectable lead times.
func ValidLeadMinutes(m int) bool {
	for _, opt := range LeadMinuteOptions {
		if opt == m {
			return true
		}
	}
	return false
}

// Store reads and writes settings as a YAML file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted settings, falling back to defaults for a
// missing file or missing keys.
func (s *Store) Load() (Settings, error) {
	cfg := Defaults()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse settings: %w", err)
	}
	return cfg, nil
}

// Save writes the settings, creating the parent directory if needed.
func (s *Store) Save(cfg Settings) error {
	if !ValidLeadMinutes(cfg.NotificationLeadMinutes) {
		return fmt.Errorf("lead minutes %d not in %v", cfg.NotificationLeadMinutes, LeadMinuteOptions)
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
