// Package shellctx holds the shell's immutable-after-startup context: its
// diagnostic name, interactivity, and (when interactive) its process group
// and saved terminal attributes. Grounded on the Shell struct in the Ebash
// reference shell (Pur1st2EpicONE-Ebash), trimmed to the fields this core
// actually needs — no builtin table, no fd-leak sysmon, no AND/OR pipeline
// bookkeeping, since those are non-goals here.
package shellctx

import (
	"golang.org/x/term"
)

// Context is the shell's immutable-after-startup state.
type Context struct {
	// ProgName is used to prefix diagnostics ("SHNAME: MESSAGE").
	ProgName string
	// Interactive is true when stdin is a terminal and no -c command was
	// given.
	Interactive bool
	// Pgid is the shell's own process group id when interactive, or -1 for
	// a non-interactive shell (children simply inherit the shell's pgid).
	Pgid int
	// SavedState is the terminal's attributes captured once at startup, to
	// be restored after each job wait. Nil for a non-interactive shell.
	SavedState *term.State
}

// New builds a Context for an interactive shell with the given process
// group and saved terminal state.
func New(progName string, pgid int, saved *term.State) *Context {
	return &Context{ProgName: progName, Interactive: true, Pgid: pgid, SavedState: saved}
}

// NewNonInteractive builds a Context for a non-interactive shell (pgid -1,
// no terminal state to restore).
func NewNonInteractive(progName string) *Context {
	return &Context{ProgName: progName, Interactive: false, Pgid: -1}
}
