package lineeditor

import (
	"errors"

	"github.com/atotto/clipboard"

	"github.com/restless-shell/rmsh/internal/keydecoder"
	"github.com/restless-shell/rmsh/internal/termio"
)

// ResultKind classifies how a ReadLine session ended.
type ResultKind int

const (
	// ResultLine is a normally accepted (possibly empty) command line.
	ResultLine ResultKind = iota
	// ResultExit is the ^D sentinel, returned whether or not the line is
	// empty, and also when the input stream reaches end of file.
	ResultExit
	// ResultInterrupt is the internal-error sentinel.
	ResultInterrupt
)

// Result is what ReadLine returns to the outer shell loop.
type Result struct {
	Kind   ResultKind
	Line   string
	Killed string // non-empty iff a LINEKILL cleared composed text
}

// ReadLine runs one full editing session: enters raw mode, writes the
// prompt, then dispatches decoded key events until Dispatch produces a
// terminal outcome. On return the terminal is always restored, regardless
// of how the session ended (spec §4.5 "On return, restores termios").
func (e *Editor) ReadLine(t *termio.Terminal) (Result, error) {
	e.reset()

	saved, err := t.EnterRaw()
	if err != nil {
		return Result{Kind: ResultInterrupt}, err
	}
	defer t.Restore(saved)

	if err := e.renderPrompt(t); err != nil {
		return Result{Kind: ResultInterrupt}, err
	}

	var dec keydecoder.Decoder
	for {
		b, err := t.Getch()
		if err != nil {
			if errors.Is(err, termio.ErrEOF) {
				return Result{Kind: ResultExit}, nil
			}
			return Result{Kind: ResultInterrupt}, err
		}

		status, ev := dec.Feed(b)
		switch status {
		case keydecoder.Incomplete:
			continue
		case keydecoder.Invalid:
			// Editor protocol error (spec §7): dropped silently, continue.
			continue
		}

		out := e.Dispatch(ev)
		if out.Echo != "" {
			if err := t.Write(out.Echo); err != nil {
				return Result{Kind: ResultInterrupt}, err
			}
		}

		switch out.Kind {
		case OutcomeContinue:
			if err := e.render(t, out); err != nil {
				return Result{Kind: ResultInterrupt}, err
			}
		case OutcomeCompleted:
			if out.Killed != "" && e.mirrorKillToClipboard() {
				_ = clipboard.WriteAll(out.Killed)
			}
			return Result{Kind: ResultLine, Line: out.Line, Killed: out.Killed}, nil
		case OutcomeExit:
			return Result{Kind: ResultExit}, nil
		case OutcomeInterrupt:
			return Result{Kind: ResultInterrupt}, nil
		}

		if t.ConsumeResized() {
			_ = e.renderWholeLine(t)
		}
	}
}

// AddHistory records line in the editor's bound history ring. The outer
// shell loop calls this once a line is accepted, outside the raw-mode
// session, matching §4.2's "only the single shell loop mutates it".
func (e *Editor) AddHistory(line string) {
	e.hist.Add(line)
}
