package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/tv-renamer/internal/template"
)

const appDir = ".tv-renamer"

// Defaults holds the persisted settings a run starts from. Command line
// flags override them.
type Defaults struct {
	Template  string `json:"template"`
	PadLength int    `json:"pad_length"`
	Language  string `json:"language"`
	Provider  string `json:"provider"`

	TVDBAPIKey string `json:"tvdb_api_key"`
	TMDBAPIKey string `json:"tmdb_api_key"`
	OMDBAPIKey string `json:"omdb_api_key"`

	// ChangeLog is the change log location; empty means ~/.tv-renamer/changes.log.
	ChangeLog  string `json:"change_log"`
	CacheHours int    `json:"cache_hours"`
}

// DefaultConfig returns the default settings
func DefaultConfig() *Defaults {
	return &Defaults{
		Template:   template.DefaultTemplate,
		PadLength:  2,
		Language:   "en",
		Provider:   "tvdb",
		CacheHours: 168, // 7 days
	}
}

// Dir returns the per-user application directory.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDir), nil
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// CachePath returns where results of the named provider are persisted
// between runs. Each provider gets its own file.
func CachePath(providerName string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	name := strings.ToLower(strings.TrimSpace(providerName))
	return filepath.Join(dir, "lookup_cache_"+name+".gob"), nil
}

// Load reads the configuration from disk, then applies environment overrides.
func Load() (*Defaults, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration at path. A missing file yields the defaults.
func LoadFrom(path string) (*Defaults, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// Keys absent from the file keep their defaults.
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		fillDefaults(cfg)
	}

	cfg.applyEnv()
	return cfg, nil
}

// fillDefaults replaces blank strings with defaults. Numbers are taken as
// written, so a pad_length or cache_hours of 0 is kept.
func fillDefaults(cfg *Defaults) {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.Template) == "" {
		cfg.Template = defaults.Template
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = defaults.Language
	}
	if strings.TrimSpace(cfg.Provider) == "" {
		cfg.Provider = defaults.Provider
	}
}

func (cfg *Defaults) applyEnv() {
	for env, field := range map[string]*string{
		"TVDB_API_KEY": &cfg.TVDBAPIKey,
		"TMDB_API_KEY": &cfg.TMDBAPIKey,
		"OMDB_API_KEY": &cfg.OMDBAPIKey,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*field = v
		}
	}
}

// Save writes the configuration to disk
func (cfg *Defaults) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return cfg.SaveTo(path)
}

// SaveTo writes the configuration to path, creating its directory.
func (cfg *Defaults) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// APIKey returns the stored key for the named provider.
func (cfg *Defaults) APIKey(providerName string) string {
	switch strings.ToLower(providerName) {
	case "tvdb":
		return cfg.TVDBAPIKey
	case "tmdb":
		return cfg.TMDBAPIKey
	case "omdb":
		return cfg.OMDBAPIKey
	default:
		return ""
	}
}

// ChangeLogPath resolves the change log location.
func (cfg *Defaults) ChangeLogPath() (string, error) {
	if cfg.ChangeLog != "" {
		return cfg.ChangeLog, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "changes.log"), nil
}

// Arguments seeds run arguments for dir from the stored settings.
func (cfg *Defaults) Arguments(dir string) *Arguments {
	args := NewArguments(dir)
	args.Template = template.Tokenize(cfg.Template)
	args.PadLength = cfg.PadLength
	args.Language = cfg.Language
	return args
}
