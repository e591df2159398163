package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".wikicorpus"

// Embedded default configuration, written out on first run.
//
//go:embed config/settings.yaml
var defaultSettings string

// Settings represents the YAML configuration structure
type Settings struct {
	Language              string `yaml:"language"`
	OutputPath            string `yaml:"output_path"`
	Workers               int    `yaml:"workers"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	SearchResults         int    `yaml:"search_results"`
	ModelDir              string `yaml:"model_dir"`
	Expansion             struct {
		Keywords  int `yaml:"keywords"`
		Neighbors int `yaml:"neighbors"`
	} `yaml:"expansion"`
	Keywords []string `yaml:"keywords"`
}

// RequestTimeout returns the per-request timeout as a duration.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// defaultSettingsValues are the fallback when no settings file exists.
func defaultSettingsValues() *Settings {
	s := &Settings{
		Language:              "en",
		OutputPath:            "corpus.txt",
		Workers:               defaultWorkers,
		RequestTimeoutSeconds: 30,
		SearchResults:         20,
		ModelDir:              "models",
	}
	s.Expansion.Keywords = 10
	s.Expansion.Neighbors = 5
	return s
}

// loadSettings loads settings from YAML file with fallback to defaults when
// the file doesn't exist.
func loadSettings(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return defaultSettingsValues(), nil
	}
	return parseSettings(data)
}

// loadSettingsRequired loads settings from YAML file, failing if the file
// doesn't exist.
func loadSettingsRequired(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", settingsPath, err)
	}
	return parseSettings(data)
}

func parseSettings(data []byte) (*Settings, error) {
	settings := defaultSettingsValues()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}
	if settings.Workers <= 0 {
		settings.Workers = defaultWorkers
	}
	if settings.RequestTimeoutSeconds <= 0 {
		settings.RequestTimeoutSeconds = 30
	}
	return settings, nil
}

// getConfigPath returns the path to a config file in the .wikicorpus directory
func getConfigPath(filename string) string {
	return filepath.Join(defaultConfigDir, filename)
}

// ensureConfigExists creates the config directory and writes the default
// settings.yaml if it doesn't exist yet.
func ensureConfigExists() error {
	if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	settingsPath := getConfigPath("settings.yaml")
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, []byte(defaultSettings), 0644); err != nil {
			return fmt.Errorf("writing settings.yaml: %w", err)
		}
	}
	return nil
}
