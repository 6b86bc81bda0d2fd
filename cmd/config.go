package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/photo-bracket/photo-bracket/bracket/journal"
	"github.com/photo-bracket/photo-bracket/bracket/judge"
	"github.com/photo-bracket/photo-bracket/bracket/photo"
	"github.com/photo-bracket/photo-bracket/bracket/trace"
	"github.com/photo-bracket/photo-bracket/tui"
)

// Environment variables that override the config file.
const (
	envJournalDriver = "PHOTO_BRACKET_JOURNAL_DRIVER"
	envJournalDSN    = "PHOTO_BRACKET_JOURNAL_DSN"
	envLog           = "PHOTO_BRACKET_LOG"
)

// defaultConfigPath is read when --config is not given and the file exists.
const defaultConfigPath = "photo-bracket.yaml"

// journalDisabled turns journaling off.
const journalDisabled = "none"

// LibraryConfig controls how photos are found.
type LibraryConfig struct {
	Extensions []string `yaml:"extensions"`
	Recursive  bool     `yaml:"recursive"`
}

// JournalConfig selects the session journal database.
type JournalConfig struct {
	Driver string `yaml:"driver"` // "sqlite", "postgres" or "none"
	DSN    string `yaml:"dsn"`
}

// JudgeConfig drives automated judging.
type JudgeConfig struct {
	Seed          int64         `yaml:"seed"`
	Weights       judge.Weights `yaml:"weights"`
	Target        int           `yaml:"target"`
	MaxRounds     int           `yaml:"max_rounds"`
	MaxSteps      int           `yaml:"max_steps"`
	ForceContinue bool          `yaml:"force_continue"`
	Trace         string        `yaml:"trace"`
}

// DisplayConfig controls the terminal judge.
type DisplayConfig struct {
	Preload   bool `yaml:"preload"`
	NameWidth int  `yaml:"name_width"`
	ShowInfo  bool `yaml:"show_info"`
}

// Config represents the full photo-bracket.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Log     string        `yaml:"log"`
	Library LibraryConfig `yaml:"library"`
	Journal JournalConfig `yaml:"journal"`
	Judge   JudgeConfig   `yaml:"judge"`
	Display DisplayConfig `yaml:"display"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Log: "warn",
		Library: LibraryConfig{
			Extensions: append([]string(nil), photo.DefaultExtensions...),
		},
		Journal: JournalConfig{Driver: "sqlite", DSN: "photo-bracket.db"},
		Judge: JudgeConfig{
			Seed:    42,
			Weights: judge.DefaultWeights,
			Trace:   string(trace.TraceLevelVerdicts),
		},
		Display: DisplayConfig{
			Preload:   tui.DefaultSettings.Preload,
			NameWidth: tui.DefaultSettings.NameWidth,
			ShowInfo:  tui.DefaultSettings.ShowInfo,
		},
	}
}

// LoadConfig reads path over the defaults, applies environment overrides and
// validates the result. A missing file is an error only when required.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Parse YAML with strict field checking: typos must cause errors
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		logrus.Debugf("config: loaded %s", path)
	case errors.Is(err, fs.ErrNotExist) && !required:
		logrus.Debugf("config: %s not found, using defaults", path)
	default:
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv reads .env into the process environment. Variables already set
// win over the file.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("ignoring .env: %v", err)
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(envJournalDriver); ok && v != "" {
		c.Journal.Driver = v
	}
	if v, ok := lookup(envJournalDSN); ok && v != "" {
		c.Journal.DSN = v
	}
	if v, ok := lookup(envLog); ok && v != "" {
		c.Log = v
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if len(c.Library.Extensions) == 0 {
		return errors.New("library.extensions must not be empty")
	}
	for _, ext := range c.Library.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("library.extensions: %q must start with '.'", ext)
		}
	}
	if c.Journal.Driver != journalDisabled {
		if !journal.ValidDrivers[c.Journal.Driver] {
			return fmt.Errorf("journal.driver: unknown driver %q", c.Journal.Driver)
		}
		if c.Journal.DSN == "" {
			return errors.New("journal.dsn is required")
		}
	}
	if err := c.Judge.Weights.Validate(); err != nil {
		return fmt.Errorf("judge.weights: %w", err)
	}
	if err := c.Judge.Limits().Validate(); err != nil {
		return fmt.Errorf("judge: %w", err)
	}
	if !trace.IsValidTraceLevel(c.Judge.Trace) {
		return fmt.Errorf("judge.trace: unknown level %q", c.Judge.Trace)
	}
	if c.Display.NameWidth < 0 {
		return errors.New("display.name_width must be >= 0")
	}
	return nil
}

// Limits returns the run limits of the judge section.
func (j JudgeConfig) Limits() judge.Limits {
	return judge.Limits{
		Target:        j.Target,
		MaxRounds:     j.MaxRounds,
		MaxSteps:      j.MaxSteps,
		ForceContinue: j.ForceContinue,
	}
}

// Settings returns the terminal judge settings.
func (d DisplayConfig) Settings() tui.Settings {
	return tui.Settings{
		NameWidth: d.NameWidth,
		Preload:   d.Preload,
		ShowInfo:  d.ShowInfo,
	}
}

// ScanOptions returns the photo scan options.
func (l LibraryConfig) ScanOptions() photo.ScanOptions {
	return photo.ScanOptions{Extensions: l.Extensions, Recursive: l.Recursive}
}
