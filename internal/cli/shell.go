package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/canonical/sqlmagic"
)

const (
	prompt     = "sqlmagic> "
	morePrompt = "     ...> "
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}
			e, done, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			sh := &shell{
				engine: e,
				vars:   env,
				delim:  a.cfg.Delim,
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
			}
			return sh.loop(cmd.Context(), a.cfg.History)
		},
	}
}

// shell reads statements line by line. A statement is run once a line ends
// with the delimiter. Lines starting with a dot are shell commands.
type shell struct {
	engine *sqlmagic.Engine
	vars   sqlmagic.Vars
	delim  string
	out    io.Writer
	errOut io.Writer

	pending strings.Builder
}

func (sh *shell) loop(ctx context.Context, history string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     history,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("cannot start shell: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(sh.out, "sqlmagic %s\nType .help for commands, .quit to exit\n\n", Version)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sh.pending.Reset()
			rl.SetPrompt(prompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		next, quit := sh.handle(ctx, line)
		if quit {
			return nil
		}
		rl.SetPrompt(next)
	}
}

// handle processes one input line. It returns the prompt for the next line
// and whether the shell should exit.
func (sh *shell) handle(ctx context.Context, line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if sh.pending.Len() == 0 {
		if trimmed == "" {
			return prompt, false
		}
		if strings.HasPrefix(trimmed, ".") {
			return prompt, sh.command(trimmed)
		}
	}

	delim := sh.delimiter()
	sh.pending.WriteString(line)
	if !strings.HasSuffix(trimmed, delim) {
		sh.pending.WriteString("\n")
		return morePrompt, false
	}
	text := strings.TrimSuffix(strings.TrimSpace(sh.pending.String()), delim)
	sh.pending.Reset()
	sh.run(ctx, text)
	return prompt, false
}

// delimiter returns the statement delimiter. A valid "delim" variable
// overrides the configured one, as it does for Run.
func (sh *shell) delimiter() string {
	v, ok := sh.vars.Lookup("delim")
	if !ok {
		return sh.delim
	}
	s, _ := v.(string)
	r, err := sqlmagic.ParseDelimiter(s)
	if err != nil {
		return sh.delim
	}
	return string(r)
}

func (sh *shell) run(ctx context.Context, text string) {
	res, err := sh.engine.Run(ctx, text, sh.vars)
	if err != nil {
		fmt.Fprintf(sh.errOut, "Error: %v\n", err)
	} else if err := render(sh.out, res); err != nil {
		fmt.Fprintf(sh.errOut, "Error: %v\n", err)
	}
	printStatus(sh.out, sh.engine.Status())
}

// command runs a dot command and reports whether the shell should exit.
func (sh *shell) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case ".quit", ".exit":
		return true
	case ".help":
		fmt.Fprint(sh.out, shellHelp)
	case ".status":
		printStatus(sh.out, sh.engine.Status())
	case ".vars":
		for _, v := range sh.vars {
			fmt.Fprintf(sh.out, "%s = %s\n", v.Name, formatVar(v.Value))
		}
	case ".set":
		name, value, err := parseVar(arg)
		if err != nil {
			fmt.Fprintln(sh.errOut, "Usage: .set name=value")
			return false
		}
		sh.vars = sh.vars.Set(name, value)
	case ".unset":
		if arg == "" {
			fmt.Fprintln(sh.errOut, "Usage: .unset name")
			return false
		}
		sh.vars = sh.vars.Unset(arg)
	default:
		fmt.Fprintf(sh.errOut, "Unknown command: %s (type .help for commands)\n", name)
	}
	return false
}

const shellHelp = `Commands:
  .help              Show this help message
  .status            Show the status of the last statement
  .vars              List variables
  .set name=value    Set a variable, the value is read as JSON when valid
  .unset name        Remove a variable
  .quit / .exit      Exit the shell

Statements run when a line ends with the delimiter. Use :name to refer to a
variable.
`

func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, kw := range []string{"SELECT", "INSERT", "UPDATE", "DELETE", "PREPARE", "EXECUTE", "CALL", "COMMIT", "ROLLBACK", "AUTOCOMMIT"} {
		items = append(items, readline.PcItem(kw))
	}
	for _, cmd := range []string{".help", ".status", ".vars", ".set", ".unset", ".quit", ".exit"} {
		items = append(items, readline.PcItem(cmd))
	}
	return readline.NewPrefixCompleter(items...)
}
