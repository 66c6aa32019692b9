package lineeditor

import (
	"fmt"
	"strings"

	"github.com/restless-shell/rmsh/internal/keydecoder"
)

// OutcomeKind classifies what Dispatch wants the caller (the read loop) to
// do next.
type OutcomeKind int

const (
	// OutcomeContinue means keep reading; Redraw names what changed.
	OutcomeContinue OutcomeKind = iota
	// OutcomeCompleted means the session is done; Line holds the result.
	OutcomeCompleted
	// OutcomeExit is the ^D-at-any-time sentinel.
	OutcomeExit
	// OutcomeInterrupt is the internal-error sentinel.
	OutcomeInterrupt
)

// RedrawKind tells the read loop which rendering primitive to run. Actual
// terminal writes happen in render.go, driven by this tag, so Dispatch
// itself stays a pure function of (state, event).
type RedrawKind int

const (
	RedrawNone RedrawKind = iota
	RedrawCursorOnly
	RedrawFromCursor
	RedrawWholeLine
	RedrawOverlay
	RedrawClearScreen
)

// Outcome is Dispatch's result: what happened, and what the read loop
// should paint as a consequence.
type Outcome struct {
	Kind   OutcomeKind
	Line   string
	Redraw RedrawKind
	// Killed is set alongside OutcomeCompleted for LINEKILL, carrying the
	// text that was cleared, for the optional clipboard mirror.
	Killed string
	// Echo is the literal text the read loop must write to the terminal
	// before returning (e.g. "\n" for ENTER, "^C\n" for LINEKILL).
	Echo string
	// FromCol is the byte column the cursor sat at before this event was
	// applied, valid only alongside RedrawFromCursor: the changed region on
	// screen starts at min(FromCol, the post-event column), since an insert
	// grows the line forward from FromCol while a delete shrinks it back to
	// the (smaller) new column.
	FromCol int
}

// Dispatch applies one decoded key event to the editor and reports the
// outcome, implementing the table in spec §4.5.
func (e *Editor) Dispatch(ev keydecoder.Event) Outcome {
	if e.srch != nil {
		return e.dispatchSearch(ev)
	}
	return e.dispatchNormal(ev)
}

func (e *Editor) dispatchNormal(ev keydecoder.Event) Outcome {
	switch ev.Kind {
	case keydecoder.Text:
		fromCol := e.col
		e.col = e.insertAt(e.row, e.col, ev.CP)
		return Outcome{Kind: OutcomeContinue, Redraw: RedrawFromCursor, FromCol: fromCol}

	case keydecoder.Ctrl:
		switch ev.Action {
		case keydecoder.Backspace:
			fromCol := e.col
			e.col = e.deletePrev(e.row, e.col)
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawFromCursor, FromCol: fromCol}

		case keydecoder.Del:
			fromCol := e.col
			e.deleteAt(e.row, e.col)
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawFromCursor, FromCol: fromCol}

		case keydecoder.Backward:
			e.col = retreatCol(e.CurrentLine(), e.col)
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawCursorOnly}

		case keydecoder.Forward:
			e.col = advanceCol(e.CurrentLine(), e.col)
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawCursorOnly}

		case keydecoder.Home:
			e.col = 0
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawCursorOnly}

		case keydecoder.End:
			e.col = len(e.CurrentLine())
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawCursorOnly}

		case keydecoder.Up:
			if e.row < e.hist.Len() {
				e.row++
				e.col = len(e.CurrentLine())
			}
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawWholeLine}

		case keydecoder.Down:
			if e.row > 0 {
				e.row--
				e.col = len(e.CurrentLine())
			}
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawWholeLine}

		case keydecoder.Search:
			e.enterSearch()
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawOverlay}

		case keydecoder.Tab:
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawNone}

		case keydecoder.Enter:
			return Outcome{Kind: OutcomeCompleted, Line: e.CurrentLine(), Echo: "\n"}

		case keydecoder.LineKill:
			killed := e.CurrentLine()
			return Outcome{Kind: OutcomeCompleted, Line: "", Killed: killed, Echo: "^C\n"}

		case keydecoder.Exit:
			return Outcome{Kind: OutcomeExit, Echo: "^D\n"}

		case keydecoder.Clear:
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawClearScreen}

		case keydecoder.PageUp, keydecoder.PageDown:
			// Not part of the spec's dispatch table; ignored.
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawNone}
		}
	}
	return Outcome{Kind: OutcomeInterrupt}
}

func (e *Editor) dispatchSearch(ev keydecoder.Event) Outcome {
	switch ev.Kind {
	case keydecoder.Text:
		e.srch.query = append(e.srch.query, ev.CP...)
		e.researchFrom(0)
		return Outcome{Kind: OutcomeContinue, Redraw: RedrawOverlay}

	case keydecoder.Ctrl:
		switch ev.Action {
		case keydecoder.Backspace:
			e.popQueryRune()
			e.researchFrom(0)
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawOverlay}

		case keydecoder.Del:
			// No-op while searching.
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawNone}

		case keydecoder.Search:
			e.researchFrom(e.row + 1)
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawOverlay}

		case keydecoder.Tab:
			e.exitSearch()
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawWholeLine}

		case keydecoder.Enter:
			e.exitSearch()
			return Outcome{Kind: OutcomeCompleted, Line: e.CurrentLine(), Echo: "\n"}

		case keydecoder.LineKill:
			killed := e.CurrentLine()
			e.exitSearch()
			return Outcome{Kind: OutcomeCompleted, Line: "", Killed: killed, Echo: "^C\n"}

		case keydecoder.Exit:
			e.exitSearch()
			return Outcome{Kind: OutcomeExit, Echo: "^D\n"}

		case keydecoder.Clear:
			e.exitSearch()
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawClearScreen}

		case keydecoder.Backward, keydecoder.Forward, keydecoder.Home,
			keydecoder.End, keydecoder.Up, keydecoder.Down:
			e.exitSearch()
			out := e.dispatchNormal(ev)
			// The overlay occupied the screen line a moment ago; any
			// cursor-only move computed against it would be meaningless
			// now that the restored line is what's actually on screen, so
			// always repaint the whole line here rather than trust
			// dispatchNormal's own (overlay-unaware) redraw choice.
			if out.Kind == OutcomeContinue {
				out.Redraw = RedrawWholeLine
			}
			return out

		case keydecoder.PageUp, keydecoder.PageDown:
			return Outcome{Kind: OutcomeContinue, Redraw: RedrawNone}
		}
	}
	return Outcome{Kind: OutcomeInterrupt}
}

// enterSearch builds the initial overlay against the current line with an
// empty query (spec §4.5 SEARCH row, search-mode-OFF column).
func (e *Editor) enterSearch() {
	e.srch = &searchState{label: e.searchLabel()}
	e.rebuildOverlay(e.CurrentLine())
}

// exitSearch drops the overlay, leaving (row, col) exactly where the search
// landed — the "restored line" subsequent dispatch table entries apply
// motion to.
func (e *Editor) exitSearch() {
	e.srch = nil
}

func (e *Editor) popQueryRune() {
	q := e.srch.query
	for len(q) > 0 {
		last := q[len(q)-1]
		q = q[:len(q)-1]
		if last&0xC0 != 0x80 { // stopped at a non-continuation byte: removed one whole rune
			break
		}
	}
	e.srch.query = q
}

// researchFrom finds the first row >= start whose line contains the current
// query, updates (row, col) to the match, and rebuilds the overlay. If no
// match exists, the landed-on row does not change (spec §8 reverse-search
// property).
func (e *Editor) researchFrom(start int) {
	if start < 0 {
		start = 0
	}
	q := string(e.srch.query)
	limit := e.hist.Len() // rows 1..Len() shadow history; row 0 is the composing line
	for r := start; r <= limit; r++ {
		line := e.Line(r)
		if idx := strings.Index(line, q); idx >= 0 {
			e.row = r
			e.col = idx
			e.rebuildOverlay(line)
			return
		}
	}
	// No match at or beyond start: stay put, but still refresh the overlay
	// text (the query itself changed even if the result line didn't).
	e.rebuildOverlay(e.CurrentLine())
}

func (e *Editor) rebuildOverlay(result string) {
	tail := fmt.Sprintf("': %s", result)
	overlay := fmt.Sprintf("(%s)`%s%s", e.srch.label, e.srch.query, tail)
	e.srch.overlay = overlay
	e.srch.queryLen = len(e.srch.query)
	e.srch.overlayLen = len(overlay)
	e.srch.resultTail = tail
}
