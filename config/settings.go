// Package config provides application settings loaded from environment variables
// and an optional YAML file.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Category table defaults for the exam media layout
//
// Load() starts from New() and overlays a YAML file on top.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings holds all application configuration.
type Settings struct {
	Media   MediaConfig   `yaml:"media"`
	Dataset DatasetConfig `yaml:"dataset"`
	Catalog CatalogConfig `yaml:"catalog"`
	Log     LogConfig     `yaml:"log"`
}

// MediaConfig drives audio asset resolution.
type MediaConfig struct {
	// BaseDirs are the directories that hold the category folders, probed in order.
	BaseDirs []string `yaml:"base_dirs"`
	// Extension of audio assets, including the dot.
	Extension string `yaml:"extension"`
	// AliasSuffixes name historical variants of each category folder ("<folder><suffix>").
	AliasSuffixes []string `yaml:"alias_suffixes"`
	// Categories in priority order. Exactly one should be marked Fallback.
	Categories []CategoryConfig `yaml:"categories"`
	// Workers bounds concurrent resolutions in a batch.
	Workers int `yaml:"workers"`
}

// CategoryConfig describes one exam category and where its assets live.
type CategoryConfig struct {
	Name         string   `yaml:"name"`
	Tag          string   `yaml:"tag"`           // filename prefix, e.g. "cet4"
	Folder       string   `yaml:"folder"`        // native folder name under a base dir
	PublicPrefix string   `yaml:"public_prefix"` // web-visible prefix, defaults to "/"+Folder
	Match        []string `yaml:"match"`         // tokens that classify a record into this category
	Fallback     bool     `yaml:"fallback"`      // primary when no other category matches
}

// Prefix returns the public path prefix for the category.
func (c CategoryConfig) Prefix() string {
	if c.PublicPrefix != "" {
		return strings.TrimSuffix(c.PublicPrefix, "/")
	}
	return "/" + c.Folder
}

// DatasetConfig locates the fragmented listening dataset.
type DatasetConfig struct {
	Root      string `yaml:"root"`
	Extension string `yaml:"extension"`
}

// CatalogConfig locates the paper-record database.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	// DefaultMediaDirName is the folder holding category folders under each base.
	DefaultMediaDirName = "真题与听力"
	DefaultAudioExt     = ".mp3"
	DefaultDataDir      = "listening-data"
	DefaultFragmentExt  = ".json"
	DefaultCatalogPath  = "examvault.db"
	DefaultLogLevel     = "info"
	DefaultWorkers      = 4
)

// DefaultCategories returns the CET-4/CET-6 category table.
func DefaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{
			Name:   "CET-4",
			Tag:    "cet4",
			Folder: "四级听力",
			Match:  []string{"cet4", "cet-4"},
		},
		{
			Name:     "CET-6",
			Tag:      "cet6",
			Folder:   "六级听力",
			Match:    []string{"cet6", "cet-6"},
			Fallback: true,
		},
	}
}

// New creates settings from environment variables and defaults.
// Returns an error if environment variables contain invalid values.
func New() (Settings, error) {
	workers, err := getEnvInt("EXAMVAULT_WORKERS", DefaultWorkers)
	if err != nil {
		return Settings{}, err
	}

	baseDirs := getEnvList("EXAMVAULT_MEDIA_DIRS")
	if len(baseDirs) == 0 {
		baseDirs = defaultBaseDirs(getEnvString("EXAMVAULT_MEDIA_DIR_NAME", DefaultMediaDirName))
	}

	settings := Settings{
		Media: MediaConfig{
			BaseDirs:      baseDirs,
			Extension:     getEnvString("EXAMVAULT_AUDIO_EXT", DefaultAudioExt),
			AliasSuffixes: []string{"真题"},
			Categories:    DefaultCategories(),
			Workers:       workers,
		},
		Dataset: DatasetConfig{
			Root:      getEnvString("EXAMVAULT_DATA_DIR", DefaultDataDir),
			Extension: getEnvString("EXAMVAULT_FRAGMENT_EXT", DefaultFragmentExt),
		},
		Catalog: CatalogConfig{
			Path: getEnvString("EXAMVAULT_DB", DefaultCatalogPath),
		},
		Log: LogConfig{
			Level: getEnvString("EXAMVAULT_LOG_LEVEL", DefaultLogLevel),
		},
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Load creates settings from the environment and overlays the YAML file at path.
// An empty path is equivalent to New().
func Load(path string) (Settings, error) {
	settings, err := New()
	if err != nil {
		return Settings{}, err
	}
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var file Settings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	settings.overlay(file)

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// MustLoad is Load that panics on error.
// Use this only when configuration errors should be fatal.
func MustLoad(path string) Settings {
	settings, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// overlay copies every non-zero field of other onto s.
func (s *Settings) overlay(other Settings) {
	if len(other.Media.BaseDirs) > 0 {
		s.Media.BaseDirs = other.Media.BaseDirs
	}
	if other.Media.Extension != "" {
		s.Media.Extension = other.Media.Extension
	}
	if other.Media.AliasSuffixes != nil {
		s.Media.AliasSuffixes = other.Media.AliasSuffixes
	}
	if len(other.Media.Categories) > 0 {
		s.Media.Categories = other.Media.Categories
	}
	if other.Media.Workers > 0 {
		s.Media.Workers = other.Media.Workers
	}
	if other.Dataset.Root != "" {
		s.Dataset.Root = other.Dataset.Root
	}
	if other.Dataset.Extension != "" {
		s.Dataset.Extension = other.Dataset.Extension
	}
	if other.Catalog.Path != "" {
		s.Catalog.Path = other.Catalog.Path
	}
	if other.Log.Level != "" {
		s.Log.Level = other.Log.Level
	}
}

// Validate checks the category table and extensions.
func (s Settings) Validate() error {
	if len(s.Media.Categories) == 0 {
		return errors.New("at least one media category is required")
	}
	tags := make(map[string]bool, len(s.Media.Categories))
	fallbacks := 0
	for i, c := range s.Media.Categories {
		if c.Tag == "" || c.Folder == "" {
			return fmt.Errorf("category %d: tag and folder are required", i)
		}
		if tags[c.Tag] {
			return fmt.Errorf("duplicate category tag: %q", c.Tag)
		}
		tags[c.Tag] = true
		if c.Fallback {
			fallbacks++
		}
	}
	if fallbacks > 1 {
		return errors.New("only one category may be marked fallback")
	}
	if !strings.HasPrefix(s.Media.Extension, ".") {
		return fmt.Errorf("invalid media extension: %q", s.Media.Extension)
	}
	if !strings.HasPrefix(s.Dataset.Extension, ".") {
		return fmt.Errorf("invalid fragment extension: %q", s.Dataset.Extension)
	}
	if s.Media.Workers < 1 {
		return fmt.Errorf("invalid worker count: %d", s.Media.Workers)
	}
	return nil
}

// defaultBaseDirs mirrors the historical layout: the media folder next to the
// executable, one level above it, and under the current directory.
func defaultBaseDirs(name string) []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		dirs = append(dirs, filepath.Join(exeDir, name), filepath.Join(exeDir, "..", name))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Join(wd, name))
	} else {
		dirs = append(dirs, name)
	}
	return dirs
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvList(key string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return nil
	}
	var out []string
	for _, p := range filepath.SplitList(val) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}
