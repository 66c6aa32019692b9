package lineeditor

import (
	"github.com/mattn/go-runewidth"

	"github.com/restless-shell/rmsh/internal/termio"
)

// render draws the consequence of a single Outcome produced by Dispatch.
// The teacher never separates state transition from rendering this
// explicitly (its bubbletea View rebuilds the whole screen every frame);
// this editor instead follows spec §4.5's named redraw primitives, each
// touching only the part of the line that changed — the same
// incremental-update discipline as the Screen type's physicalLines diffing
// in the vision3 BBS editor (stlalpha-vision3, screen.go), generalized from
// that full-screen editor's line tracking down to this single-line editor's
// cursor-to-EOL redraws, because it is driven by raw VT sequences rather
// than a curses-like full-frame renderer.
//
// Every primitive below except renderOverlay (which leaves the cursor just
// after QUERY inside the overlay) ends by moving the physical cursor to
// e.col; each one records where it left the cursor (in on-screen
// display-width units) in e.renderedCol; that field is the only way one incremental redraw knows
// where the previous one left the terminal's real cursor.
func (e *Editor) render(t *termio.Terminal, o Outcome) error {
	switch o.Redraw {
	case RedrawNone:
		return nil
	case RedrawCursorOnly:
		return e.renderCursorOnly(t)
	case RedrawFromCursor:
		return e.renderFromCursor(t, o.FromCol)
	case RedrawWholeLine:
		return e.renderWholeLine(t)
	case RedrawOverlay:
		return e.renderOverlay(t)
	case RedrawClearScreen:
		return e.renderClearScreen(t)
	}
	return nil
}

// renderFromCursor redraws the region touched by an insert or delete at
// fromCol, the byte column the cursor sat at *before* the edit.
//
// The changed region always starts at min(fromCol, e.col): an insert grows
// the line forward from fromCol (fromCol < e.col after the edit), a
// backspace shrinks it back to the smaller new column (fromCol > e.col),
// and DEL leaves the column unchanged (fromCol == e.col). Writing
// line[writeFrom:] reproduces the edit on screen; clearing to EOL
// afterward erases any stale tail left over from a shrink; the final move
// lands the cursor at e.col rather than restoring it to fromCol, per spec
// §4.5's "redraw from cursor to EOL, cursor at new col".
func (e *Editor) renderFromCursor(t *termio.Terminal, fromCol int) error {
	line := e.CurrentLine()
	writeFrom := fromCol
	if e.col < writeFrom {
		writeFrom = e.col
	}
	writeFromCol := runewidth.StringWidth(line[:writeFrom])

	seq := moveTo(e.renderedCol, writeFromCol)
	seq += line[writeFrom:] + termio.SeqClearToEOL

	targetCol := runewidth.StringWidth(line[:e.col])
	endCol := runewidth.StringWidth(line)
	seq += termio.CursorBackward(endCol - targetCol)

	e.renderedCol = targetCol
	return t.Write(seq)
}

// renderCursorOnly emits a pure cursor-move sequence for motions that never
// change the line's text (spec: "emit cursor-only move"), moving relative
// to e.renderedCol rather than assuming the cursor sits at EOL — a second
// consecutive motion would otherwise overshoot past the line content.
func (e *Editor) renderCursorOnly(t *termio.Terminal) error {
	line := e.CurrentLine()
	target := runewidth.StringWidth(line[:e.col])
	seq := moveTo(e.renderedCol, target)
	e.renderedCol = target
	return t.Write(seq)
}

// renderWholeLine redraws the prompt and the full line, used after history
// navigation (UP/DOWN) where the previous line's length is unknown to the
// caller.
func (e *Editor) renderWholeLine(t *termio.Terminal) error {
	line := e.CurrentLine()
	seq := "\r" + e.ps1 + line + termio.SeqClearToEOL
	target := runewidth.StringWidth(line[:e.col])
	back := runewidth.StringWidth(line) - target
	seq += termio.CursorBackward(back)
	e.renderedCol = target
	return t.Write(seq)
}

// renderOverlay redraws the reverse-search overlay, using the same
// primitives as renderWholeLine against the overlay string instead of
// PS1+line, landing the cursor just after QUERY rather than at the very
// end of the rendered RESULT.
func (e *Editor) renderOverlay(t *termio.Terminal) error {
	overlay, ok := e.Overlay()
	if !ok {
		return nil
	}
	seq := "\r" + overlay + termio.SeqClearToEOL
	back := runewidth.StringWidth(e.srch.resultTail)
	seq += termio.CursorBackward(back)
	e.renderedCol = runewidth.StringWidth(overlay) - back
	return t.Write(seq)
}

// renderClearScreen implements the CLEAR (^L) primitive: erase the display,
// home the cursor, then redraw PS1 + current line — spec's "clear-screen +
// home + redraw PS1 + current line" as the three distinct steps it names,
// emitted as three distinct VT sequences rather than one bundled constant.
func (e *Editor) renderClearScreen(t *termio.Terminal) error {
	line := e.CurrentLine()
	seq := termio.SeqClearScreen + termio.CursorTo(1, 1) + e.ps1 + line
	target := runewidth.StringWidth(line[:e.col])
	back := runewidth.StringWidth(line) - target
	seq += termio.CursorBackward(back)
	e.renderedCol = target
	return t.Write(seq)
}

// renderPrompt writes the initial PS1 at the start of a ReadLine session.
func (e *Editor) renderPrompt(t *termio.Terminal) error {
	e.renderedCol = 0
	return t.Write(e.ps1)
}

// moveTo returns the relative cursor-move sequence from on-screen column
// from to column to (a no-op string if they're equal).
func moveTo(from, to int) string {
	if to > from {
		return termio.CursorForward(to - from)
	}
	return termio.CursorBackward(from - to)
}
