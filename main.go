// Command rmsh is an interactive POSIX-style command shell core: a raw-mode
// line editor, a shell-syntax lexer/parser, and a pipeline launcher.
//
// The CLI surface is a thin wrapper (spec §6): it decides interactive vs.
// non-interactive mode, reads a single non-interactive input to EOF, and
// hands every line to the same read-parse-launch core regardless of source.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/restless-shell/rmsh/internal/config"
	"github.com/restless-shell/rmsh/internal/history"
	"github.com/restless-shell/rmsh/internal/lexer"
	"github.com/restless-shell/rmsh/internal/lineeditor"
	"github.com/restless-shell/rmsh/internal/parser"
	"github.com/restless-shell/rmsh/internal/shellctx"
	"github.com/restless-shell/rmsh/internal/termio"

	"github.com/restless-shell/rmsh/internal/launcher"
)

// progName is threaded through diagnostics as "SHNAME: MESSAGE" (spec §7).
var progName = "rmsh"

func main() {
	var flagC string
	var flagDebugInput bool
	var flagPS1 string

	root := &cobra.Command{
		Use:           "rmsh",
		Short:         "a small interactive POSIX-style command shell",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%s: unexpected argument %q", progName, args[0])
			}
			if flagDebugInput {
				return runDebugInput()
			}

			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
				cfg = &config.Config{}
			}

			if flagC != "" {
				return runNonInteractive(flagC, cfg)
			}
			if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("%s: read stdin: %w", progName, err)
				}
				return runNonInteractive(string(data), cfg)
			}
			return runInteractive(flagPS1, cfg)
		},
	}
	root.Flags().StringVarP(&flagC, "command", "c", "", "run COMMAND as a single non-interactive input")
	root.Flags().BoolVarP(&flagDebugInput, "debug-input", "D", false, "debug-input mode: print raw byte codes until ^D")
	root.Flags().StringVar(&flagPS1, "ps1", "", "override the prompt (testing only)")
	root.AddCommand(newHistoryCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		os.Exit(1)
	}
}

// runNonInteractive builds a non-interactive shell context (spec §3 "Shell
// context": pgid -1, no terminal state) and runs input as a single pipeline.
func runNonInteractive(input string, cfg *config.Config) error {
	ctx := shellctx.NewNonInteractive(progName)
	l := launcher.New(ctx)

	pl, err := parseLine(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		os.Exit(1)
	}
	if pl == nil {
		return nil
	}
	job, err := l.Launch(pl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		os.Exit(1)
	}
	os.Exit(lastStatus(job))
	return nil
}

func lastStatus(job *launcher.Job) int {
	if len(job.Processes) == 0 {
		return 0
	}
	return job.Processes[len(job.Processes)-1].ReturnStatus()
}

// parseLine lexes and parses one input string into a Pipeline, or returns
// (nil, nil) for an input that produced no processes (e.g. empty input).
func parseLine(input string) (*parser.Pipeline, error) {
	lx := lexer.New(input)
	p := parser.New(lx)
	pl, err := p.BuildPipeline()
	if err != nil {
		return nil, err
	}
	if len(pl.Processes) == 0 {
		return nil, nil
	}
	if len(pl.Processes) == 1 && len(pl.Processes[0].Argv) == 0 && len(pl.Processes[0].Env) == 0 {
		return nil, nil
	}
	return pl, nil
}

// runInteractive implements the interactive read-edit-parse-launch loop:
// one ReadLine session per prompt, feeding accepted lines to the lexer,
// parser, and launcher in turn, and re-prompting after any recoverable
// error (spec §7 "The interactive loop ignores recoverable errors and
// re-prompts").
func runInteractive(ps1Override string, cfg *config.Config) error {
	fd := int(os.Stdin.Fd())
	tio := termio.New(os.Stdin, os.Stdout)

	savedBefore, err := term.GetState(fd)
	if err != nil {
		return fmt.Errorf("%s: tcgetattr: %w", progName, err)
	}

	pgid, err := setUpInteractiveProcessGroup(fd)
	if err != nil {
		return fmt.Errorf("%s: %w", progName, err)
	}
	ctx := shellctx.New(progName, pgid, savedBefore)

	ps1 := ps1Override
	if ps1 == "" {
		ps1 = promptString()
	}

	hist := history.NewRingWithCapacity(cfg.HistoryCapacity)
	editor := lineeditor.New(hist, ps1, cfg)
	l := launcher.New(ctx)

	for {
		res, err := editor.ReadLine(tio)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
			return nil
		}
		switch res.Kind {
		case lineeditor.ResultExit:
			return nil
		case lineeditor.ResultInterrupt:
			return nil
		}

		if res.Line == "" {
			continue
		}
		editor.AddHistory(res.Line)

		pl, err := parseLine(res.Line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
			continue
		}
		if pl == nil {
			continue
		}
		if _, err := l.Launch(pl); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		}
	}
}

// promptString reads PS1 from the environment, defaulting per spec §6:
// "# " for uid 0, else "$ ".
func promptString() string {
	if v, ok := os.LookupEnv("PS1"); ok {
		return v
	}
	if os.Geteuid() == 0 {
		return "# "
	}
	return "$ "
}

// runDebugInput implements the -D debug-input mode (spec §6): raw mode,
// one byte at a time, printing its hex/decimal/printable form until ^D.
func runDebugInput() error {
	tio := termio.New(os.Stdin, os.Stdout)
	saved, err := tio.EnterRaw()
	if err != nil {
		return err
	}
	defer tio.Restore(saved)

	for {
		b, err := tio.Getch()
		if err != nil {
			if err == termio.ErrEOF {
				return nil
			}
			return err
		}
		if b == 0x04 { // ^D
			return nil
		}
		printable := ""
		if b >= 0x20 && b < 0x7F {
			printable = fmt.Sprintf(" '%c'", b)
		}
		fmt.Fprintf(os.Stdout, "\\0%02X %d%s\n", b, b, printable)
	}
}
