// Package lineeditor implements the shell's raw-mode, UTF-8-aware,
// single-line editor: cursor motion, bounded history browsing, and
// incremental reverse-search, built directly on VT escape sequences.
//
// The dispatch table is the component's central contract (spec §4.5); it is
// kept as a pure function of (state, event) -> (state, outcome) so it can be
// exercised without a real terminal, the same separation the teacher's
// bubbletea models use between Update (pure state transition) and View
// (rendering) — generalized here from the Elm architecture to this
// escape-sequence-driven editor, which spec §4.5 requires be built "without
// a curses-like library". The overall editorState shape — a saved termios,
// a dot/cursor position, and a history-browsing sub-state reset at the
// start of every ReadLine — is grounded on the elvish shell's edit.Editor
// (semistrict-elvish, editor.go), trimmed to this core's single-line,
// no-completion scope.
package lineeditor

import (
	"github.com/restless-shell/rmsh/internal/config"
	"github.com/restless-shell/rmsh/internal/history"
	"github.com/restless-shell/rmsh/internal/utf8util"
)

// Editor holds the editable buffer, cursor, history-browsing position, and
// optional reverse-search overlay described in spec §3.
type Editor struct {
	hist *history.Ring

	buf []*string // row 0 + one per history slot; lazily materialized, nil means "shadowing history unmodified"
	row int
	col int // byte offset into line(row), always on a code point boundary

	// renderedCol is the on-screen column (in display-width units, not
	// bytes) the physical cursor was last left at by a render call — the
	// baseline every incremental redraw primitive moves relative to, since
	// none of them can otherwise know where the terminal's real cursor is.
	renderedCol int

	srch *searchState

	ps1 string
	cfg *config.Config
}

// searchState is present iff the editor is in reverse-search mode (spec §3
// "Search overlay").
type searchState struct {
	query      []byte
	overlay    string
	queryLen   int // byte length of QUERY (spec §3)
	overlayLen int // total byte length of the overlay (spec §3)
	label      string
	resultTail string // "': RESULT" suffix, for placing the cursor after QUERY
}

// New returns an Editor with an empty composing line, bound to hist for
// history browsing and search, using ps1 as the prompt. cfg may be nil, in
// which case defaults apply (search label "reverse-search", no clipboard
// mirror).
func New(hist *history.Ring, ps1 string, cfg *config.Config) *Editor {
	e := &Editor{hist: hist, ps1: ps1, cfg: cfg}
	e.reset()
	return e
}

// searchLabel returns the configured reverse-search overlay label, or the
// spec's literal default "reverse-search".
func (e *Editor) searchLabel() string {
	if e.cfg != nil && e.cfg.SearchPrompt != "" {
		return e.cfg.SearchPrompt
	}
	return "reverse-search"
}

// mirrorKillToClipboard reports whether line-kill text should be copied to
// the system clipboard.
func (e *Editor) mirrorKillToClipboard() bool {
	return e.cfg != nil && e.cfg.MirrorKillToClipboard
}

// reset clears the buffer back to a single empty composing line and resets
// cursor and search state. Called at the start of every ReadLine session.
func (e *Editor) reset() {
	// rows is one more than the bound history ring's capacity: row 0 is the
	// line being composed, rows 1..H shadow history[0..H-1].
	e.buf = make([]*string, e.hist.Cap()+1)
	empty := ""
	e.buf[0] = &empty
	e.row = 0
	e.col = 0
	e.renderedCol = 0
	e.srch = nil
}

// InSearch reports whether the editor is currently in reverse-search mode.
func (e *Editor) InSearch() bool { return e.srch != nil }

// Cursor returns the current (row, col) position.
func (e *Editor) Cursor() (int, int) { return e.row, e.col }

// Line returns the string currently displayed at row r: the materialized
// buffer copy if present, else the shadowed history entry, else "".
func (e *Editor) Line(r int) string {
	if r < 0 || r >= len(e.buf) {
		return ""
	}
	if e.buf[r] != nil {
		return *e.buf[r]
	}
	if r > 0 {
		if s, ok := e.hist.Get(r - 1); ok {
			return s
		}
	}
	return ""
}

// CurrentLine returns the line at the editor's current row.
func (e *Editor) CurrentLine() string { return e.Line(e.row) }

// Overlay returns the rendered search overlay string and whether search
// mode is active.
func (e *Editor) Overlay() (string, bool) {
	if e.srch == nil {
		return "", false
	}
	return e.srch.overlay, true
}

// materialize ensures buf[r] holds an owned, mutable copy, duplicating the
// shadowed history entry on first write (spec §4.5 "History copy-on-write")
// without ever modifying the history ring itself.
func (e *Editor) materialize(r int) *string {
	if e.buf[r] == nil {
		s := e.Line(r)
		e.buf[r] = &s
	}
	return e.buf[r]
}

// insertAt inserts text (expected to be one UTF-8 code point) at byte
// offset col into the row's buffer, returning the new column.
func (e *Editor) insertAt(row, col int, text string) int {
	p := e.materialize(row)
	*p = (*p)[:col] + text + (*p)[col:]
	return col + len(text)
}

// deletePrev removes the code point immediately before col, returning the
// new column. No-op if col == 0.
func (e *Editor) deletePrev(row, col int) int {
	if col <= 0 {
		return col
	}
	line := e.Line(row)
	n := utf8util.TailCodepointBytes([]byte(line), col)
	if n <= 0 {
		n = 1 // malformed tail: drop one byte so the user isn't stuck
	}
	p := e.materialize(row)
	*p = (*p)[:col-n] + (*p)[col:]
	return col - n
}

// deleteAt removes the code point starting at col. No-op if col is at EOL.
func (e *Editor) deleteAt(row, col int) {
	line := e.Line(row)
	if col >= len(line) {
		return
	}
	n := utf8util.LeadingLength(line[col])
	if n <= 0 {
		n = 1
	}
	if col+n > len(line) {
		n = len(line) - col
	}
	p := e.materialize(row)
	*p = (*p)[:col] + (*p)[col+n:]
}

// advanceCol moves col forward by one code point in line, clamped to len(line).
func advanceCol(line string, col int) int {
	if col >= len(line) {
		return len(line)
	}
	n := utf8util.LeadingLength(line[col])
	if n <= 0 {
		n = 1
	}
	if col+n > len(line) {
		return len(line)
	}
	return col + n
}

// retreatCol moves col backward by one code point in line, clamped to 0.
func retreatCol(line string, col int) int {
	if col <= 0 {
		return 0
	}
	n := utf8util.TailCodepointBytes([]byte(line), col)
	if n <= 0 {
		n = 1
	}
	return col - n
}
