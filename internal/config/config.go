// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package config loads the command line configuration.
//
// Values are layered, highest priority first: command line flags,
// SQLMAGIC_ environment variables (including those set by a .env file),
// the sqlmagic.yaml config file and the built in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/canonical/sqlmagic"
	"github.com/canonical/sqlmagic/driver/sqlconn"
	"github.com/canonical/sqlmagic/internal/expr"
)

// EnvPrefix is the prefix of configuration environment variables.
// SQLMAGIC_CATALOG_QUERY sets catalog_query.
const EnvPrefix = "SQLMAGIC_"

// Config file names searched in the working directory.
var configFiles = []string{"sqlmagic.yaml", "sqlmagic.yml"}

// Config is the command line configuration.
type Config struct {
	// Driver is a database/sql driver name.
	Driver string `koanf:"driver"`
	// DSN is the data source name passed to the driver.
	DSN string `koanf:"dsn"`
	// Format is the result shape, "array" or "json".
	Format string `koanf:"format"`
	// Delim is the statement delimiter of batches.
	Delim string `koanf:"delim"`
	// Quotes turns quoting of expanded string variables on.
	Quotes bool `koanf:"quotes"`
	// CatalogQuery looks up the result sets of a procedure.
	CatalogQuery string `koanf:"catalog_query"`
	// TemplateCacheSize is the number of parsed templates kept.
	TemplateCacheSize int `koanf:"template_cache_size"`
	// History is the shell history file. Empty disables history.
	History string `koanf:"history"`
	// Verbose turns on debug logging.
	Verbose bool `koanf:"verbose"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// Sources names where configuration is read from.
type Sources struct {
	// File is the config file. When empty sqlmagic.yaml or sqlmagic.yml
	// is read from the working directory if present.
	File string
	// DotEnv is a file of environment variables. When empty .env is read
	// from the working directory if present. Variables already set in the
	// environment are not replaced.
	DotEnv string
	// Flags are the parsed command line flags. Only flags set on the
	// command line are used.
	Flags *pflag.FlagSet
}

func defaults() map[string]any {
	return map[string]any{
		"driver":              "sqlite3",
		"dsn":                 ":memory:",
		"format":              "array",
		"delim":               ";",
		"quotes":              true,
		"catalog_query":       sqlconn.DefaultCatalogQuery,
		"template_cache_size": expr.DefaultCacheSize,
		"history":             "",
		"verbose":             false,
	}
}

// AddFlags registers a flag for every configuration key on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := defaults()
	fs.String("driver", d["driver"].(string), "database/sql driver name (sqlite3, pgx, postgres, mysql)")
	fs.String("dsn", d["dsn"].(string), "data source name")
	fs.String("format", d["format"].(string), "result format: array or json")
	fs.String("delim", d["delim"].(string), "statement delimiter")
	fs.Bool("quotes", d["quotes"].(bool), "quote string variables when expanding")
	fs.String("catalog-query", d["catalog_query"].(string), "query returning the result sets of a procedure")
	fs.Int("template-cache-size", d["template_cache_size"].(int), "number of parsed templates kept")
	fs.String("history", "", "shell history file")
	fs.BoolP("verbose", "v", false, "log debug output")
}

// Load reads the configuration from src.
func Load(src Sources) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("cannot load defaults: %w", err)
	}

	cfgFile := findConfigFile(src.File)
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", cfgFile, err)
		}
	}

	if err := loadDotEnv(src.DotEnv); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("cannot load environment: %w", err)
	}

	if src.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(src.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(src.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("cannot load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	cfg.File = cfgFile
	return &cfg, nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("cannot read %s: %w", path, err)
}

// EngineOptions returns the engine options selected by the configuration.
func (c *Config) EngineOptions(logger *slog.Logger) ([]sqlmagic.Option, error) {
	shape, err := sqlmagic.ParseShape(c.Format)
	if err != nil {
		return nil, err
	}
	delim, err := sqlmagic.ParseDelimiter(c.Delim)
	if err != nil {
		return nil, err
	}
	opts := sqlmagic.Options{Shape: shape, Delimiter: delim, Quote: c.Quotes}
	return []sqlmagic.Option{
		sqlmagic.WithOptions(opts),
		sqlmagic.WithTemplateCacheSize(c.TemplateCacheSize),
		sqlmagic.WithLogger(logger),
	}, nil
}

// ConnOptions returns the connection options selected by the configuration.
func (c *Config) ConnOptions(logger *slog.Logger) []sqlconn.Option {
	return []sqlconn.Option{
		sqlconn.WithCatalogQuery(c.CatalogQuery),
		sqlconn.WithLogger(logger),
	}
}

// Logger returns a text logger writing to w at Info level, or Debug level
// when Verbose is set.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
