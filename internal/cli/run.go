package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canonical/sqlmagic"
)

func newRunCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "run [SQL]",
		Short: "Run SQL or an engine command",
		Example: `  sqlmagic run --var empno=000010 "SELECT * FROM EMPLOYEE WHERE EMPNO = :empno"
  sqlmagic run -f setup.sql --delim @`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSQL(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}
			env, err := a.environment()
			if err != nil {
				return err
			}
			e, done, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			return runText(cmd, e, text, env)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read SQL from a file, - for standard input")
	return cmd
}

// runText runs text and writes its result and the status line.
func runText(cmd *cobra.Command, e *sqlmagic.Engine, text string, env sqlmagic.Env) error {
	res, err := e.Run(cmd.Context(), text, env)
	if err == nil {
		err = render(cmd.OutOrStdout(), res)
	}
	printStatus(cmd.OutOrStdout(), e.Status())
	return err
}

// readSQL returns the SQL given as arguments or in a file.
func readSQL(stdin io.Reader, file string, args []string) (string, error) {
	var text string
	switch {
	case file != "" && len(args) > 0:
		return "", errors.New("give SQL either as arguments or with --file, not both")
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("cannot read standard input: %w", err)
		}
		text = string(b)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("cannot read SQL: %w", err)
		}
		text = string(b)
	default:
		text = strings.Join(args, " ")
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no SQL given")
	}
	return text, nil
}
