// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package cli implements the sqlmagic command line.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/canonical/sqlmagic"
	"github.com/canonical/sqlmagic/driver/sqlconn"
	"github.com/canonical/sqlmagic/internal/config"
)

// Version is the sqlmagic version.
var Version = "0.1.0"

// app is the state shared by the commands of one invocation.
type app struct {
	cfgFile string
	envFile string
	vars    []string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd returns the sqlmagic root command.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "sqlmagic",
		Short: "Run templated SQL against a database",
		Long: `sqlmagic runs SQL containing :name placeholders against a database/sql
driver. Placeholders are replaced with the values given by --var.

Besides plain statements it understands PREPARE, EXECUTE ... USING, CALL,
COMMIT [HOLD], ROLLBACK and AUTOCOMMIT ON|OFF.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(config.Sources{
				File:   a.cfgFile,
				DotEnv: a.envFile,
				Flags:  cmd.Root().PersistentFlags(),
			})
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Logger(cmd.ErrOrStderr())
			if cfg.File != "" {
				a.logger.Debug("using config file", "file", cfg.File)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./sqlmagic.yaml)")
	pf.StringVar(&a.envFile, "env-file", "", "file of environment variables (default: ./.env)")
	pf.StringArrayVar(&a.vars, "var", nil, "template variable as name=value, the value is read as JSON when valid")
	config.AddFlags(pf)

	_ = root.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"array", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newExpandCmd(a))
	root.AddCommand(newShellCmd(a))
	return root
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// environment returns the variables given with --var.
func (a *app) environment() (sqlmagic.Vars, error) {
	var vars sqlmagic.Vars
	for _, s := range a.vars {
		name, value, err := parseVar(s)
		if err != nil {
			return nil, err
		}
		vars = vars.Set(name, value)
	}
	return vars, nil
}

// openEngine connects to the configured database. The returned function
// releases the engine and the connection.
func (a *app) openEngine(ctx context.Context) (*sqlmagic.Engine, func(), error) {
	opts, err := a.cfg.EngineOptions(a.logger)
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open(a.cfg.Driver, a.cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open database: %w", err)
	}
	conn, err := sqlconn.Open(ctx, db, a.cfg.ConnOptions(a.logger)...)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	e, err := sqlmagic.New(conn, opts...)
	if err != nil {
		conn.Close()
		db.Close()
		return nil, nil, err
	}
	a.logger.Debug("connected", "driver", a.cfg.Driver)
	return e, func() {
		e.Close()
		conn.Close()
		db.Close()
	}, nil
}
