package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canonical/sqlmagic"
)

func newExpandCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expand SQL",
		Short: "Print SQL with its placeholders replaced",
		Long: `expand prints the SQL that run would send for each statement, without
connecting to a database.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}
			opts, err := a.cfg.EngineOptions(a.logger)
			if err != nil {
				return err
			}
			e, err := sqlmagic.New(nil, opts...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), e.Expand(strings.Join(args, " "), env))
			return err
		},
	}
}
