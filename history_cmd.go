package main

import (
	"bufio"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/restless-shell/rmsh/internal/historytui"
)

// newHistoryCommand builds the `rmsh history` subcommand: a read-only TUI
// over history lines supplied as arguments or piped on stdin. It is
// reachable only as a separate invocation of the rmsh binary, never as a
// command dispatched from within a running interactive session — this core
// has no builtin table (spec Non-goals), so "history" typed at the prompt
// is resolved like any other argv[0], not specially intercepted.
func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history [LINE...]",
		Short: "browse history lines in a read-only TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := args
			if len(lines) == 0 {
				if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
					scanner := bufio.NewScanner(os.Stdin)
					for scanner.Scan() {
						lines = append(lines, scanner.Text())
					}
				}
			}
			m := historytui.New(lines)
			p := tea.NewProgram(m, tea.WithAltScreen())
			final, err := p.Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(historytui.Model); ok && fm.Selected != "" {
				fmt.Println(fm.Selected)
			}
			return nil
		},
	}
}
