// Package config provides run configuration with support for command-line flags,
// environment variables, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/validation"
)

// Dictionary backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config holds the run configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Input      InputConfig
	Dictionary DictionaryConfig
	Output     OutputConfig
	Search     SearchConfig
	Resolver   ResolverConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" envDefault:"development" validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info" validate:"required,oneof=debug info warn error"`
}

// InputConfig describes the event export to read.
type InputConfig struct {
	Path string `env:"INPUT_PATH" validate:"required"`
	// DateLayout parses Start/End Date & Time (Go reference layout).
	DateLayout string `env:"DATE_LAYOUT" envDefault:"01/02/2006 03:04 PM" validate:"required"`
	// RulesPath is an optional YAML rule file replacing the built-in misfit rules.
	RulesPath string `env:"RULES_PATH"`
}

// DictionaryConfig selects where the canonical dictionary lives.
type DictionaryConfig struct {
	Backend string `env:"DICTIONARY_BACKEND" envDefault:"json" validate:"required,oneof=json sqlite badger"`
	// Path defaults per backend: dictionary.json, dictionary.db, or a dictionary.badger directory.
	Path string `env:"DICTIONARY_PATH"`
}

// OutputConfig names the report files. An empty path skips that export.
type OutputConfig struct {
	CSVPath  string `env:"OUTPUT_CSV" envDefault:"parsed_events.csv"`
	XLSXPath string `env:"OUTPUT_XLSX" envDefault:"parsed_events.xlsx"`
}

// SearchConfig holds catalog index configuration.
type SearchConfig struct {
	// IndexPath is the index directory. Empty disables indexing.
	IndexPath string `env:"SEARCH_INDEX_PATH"`
}

// ResolverConfig tunes entity resolution.
type ResolverConfig struct {
	Threshold int `env:"FUZZ_THRESHOLD" envDefault:"90" validate:"gte=1,lte=100"`
	// OnAmbiguous is how fuzzy candidates are decided: ask on the console, or
	// answer every question with a fixed decision.
	OnAmbiguous string `env:"ON_AMBIGUOUS" envDefault:"prompt" validate:"required,oneof=prompt keep adopt reject"`
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// args excludes the program name. A single positional argument is taken as
// the input path when --input is not given.
func LoadConfig(args []string) (*Config, error) {
	fset := flag.NewFlagSet("gencat", flag.ContinueOnError)
	fset.SetOutput(io.Discard)

	values := map[string]*string{}
	str := func(name, usage string) {
		values[name] = fset.String(name, "", usage)
	}
	str("env", "Environment (development, staging, production)")
	str("log-level", "Log level (debug, info, warn, error)")
	str("input", "Path to the event export CSV")
	str("date-layout", "Go time layout of Start/End Date & Time")
	str("rules", "YAML file of misfit reclassification rules")
	str("dictionary-backend", "Dictionary backend (json, sqlite, badger)")
	str("dictionary", "Dictionary file or directory")
	str("output-csv", "CSV report path (empty to skip)")
	str("output-xlsx", "XLSX report path (empty to skip)")
	str("search-index", "Search index directory (empty to skip)")
	str("threshold", "Fuzzy match threshold, 1-100 (default: 90)")
	str("on-ambiguous", "Decision for fuzzy matches: prompt, keep, adopt, reject")
	envFile := fset.String("env-file", ".env", "Path to .env file")

	if err := fset.Parse(args); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "parse flags")
	}

	// Existing environment variables win over the file.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeValidation, "load %s", *envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "parse environment")
	}

	set := map[string]bool{}
	fset.Visit(func(f *flag.Flag) { set[f.Name] = true })
	override := func(name string, dst *string) {
		if set[name] {
			*dst = *values[name]
		}
	}
	override("env", &cfg.App.Environment)
	override("log-level", &cfg.Logger.Level)
	override("input", &cfg.Input.Path)
	override("date-layout", &cfg.Input.DateLayout)
	override("rules", &cfg.Input.RulesPath)
	override("dictionary-backend", &cfg.Dictionary.Backend)
	override("dictionary", &cfg.Dictionary.Path)
	override("output-csv", &cfg.Output.CSVPath)
	override("output-xlsx", &cfg.Output.XLSXPath)
	override("search-index", &cfg.Search.IndexPath)
	override("on-ambiguous", &cfg.Resolver.OnAmbiguous)
	if set["threshold"] {
		n, err := strconv.Atoi(*values["threshold"])
		if err != nil {
			return nil, domainerrors.Validationf("invalid threshold %q: must be an integer", *values["threshold"])
		}
		cfg.Resolver.Threshold = n
	}
	if !set["input"] && fset.NArg() > 0 {
		cfg.Input.Path = fset.Arg(0)
	}

	cfg.Logger.Level = strings.ToLower(cfg.Logger.Level)
	cfg.Dictionary.Backend = strings.ToLower(cfg.Dictionary.Backend)
	if cfg.Dictionary.Path == "" {
		cfg.Dictionary.Path = DefaultDictionaryPath(cfg.Dictionary.Backend)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid path")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if err := validation.New().Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// DefaultDictionaryPath returns the dictionary location used when none is configured.
func DefaultDictionaryPath(backend string) string {
	switch backend {
	case BackendSQLite:
		return "dictionary.db"
	case BackendBadger:
		return "dictionary.badger"
	default:
		return "dictionary.json"
	}
}

// DateLayoutOrDefault returns the configured layout, or the export's layout.
func (c *Config) DateLayoutOrDefault() string {
	if c.Input.DateLayout == "" {
		return domain.DefaultDateLayout
	}
	return c.Input.DateLayout
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{
		&c.Input.Path,
		&c.Input.RulesPath,
		&c.Dictionary.Path,
		&c.Output.CSVPath,
		&c.Output.XLSXPath,
		&c.Search.IndexPath,
	} {
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// expandPath expands ~ and makes the path absolute. Empty stays empty.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}
