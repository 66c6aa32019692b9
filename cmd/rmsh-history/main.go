// Command rmsh-history is the standalone history browser binary: it reads
// newline-delimited history lines (from stdin, or positional arguments) and
// displays them with the same TUI the `rmsh history` subcommand uses. It
// never reads or writes any persisted file — spec §6 "Persisted state:
// None" applies to the shell as a whole, not just its core.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/restless-shell/rmsh/internal/historytui"
)

func main() {
	lines, err := collectLines(os.Args[1:], os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rmsh-history: %v\n", err)
		os.Exit(1)
	}

	m := historytui.New(lines)
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rmsh-history: %v\n", err)
		os.Exit(1)
	}
	if fm, ok := final.(historytui.Model); ok && fm.Selected != "" {
		fmt.Println(fm.Selected)
	}
}

// collectLines prefers positional arguments (one history line each); if
// none are given and stdin is not a terminal, it reads newline-delimited
// lines from stdin instead.
func collectLines(args []string, stdin *os.File) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if fi, err := stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		return nil, nil
	}
	var lines []string
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return lines, nil
}
