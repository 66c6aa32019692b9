// Package termio wraps raw-mode terminal entry/exit, VT escape emission, and
// EINTR-tolerant single-byte input. It is grounded on the teacher's raw-mode
// handling in session.go (term.MakeRaw/term.Restore around a byte-at-a-time
// read loop), generalized from that one-off pty reader into a reusable layer
// the line editor drives directly.
package termio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/term"
)

// Terminal is a raw-mode-capable wrapper around a file (normally os.Stdin
// for reads, os.Stdout for writes).
type Terminal struct {
	in       *os.File
	out      *os.File
	reader   *bufio.Reader
	saved    *term.State
	winch    chan os.Signal
	resized  int32 // atomic flag, set by the SIGWINCH goroutine
	stopWait chan struct{}
}

// New wraps the given input/output files. Writes of VT sequences go to out;
// raw-mode switches and getch operate on in.
func New(in, out *os.File) *Terminal {
	return &Terminal{in: in, out: out, reader: bufio.NewReader(in)}
}

// EnterRaw disables echo, canonical mode, signal generation, extended input
// processing, and flow control on the terminal, and installs a SIGWINCH
// handler that sets a cooperative flag. It returns the saved state so the
// caller can pass it back to Restore.
func (t *Terminal) EnterRaw() (*term.State, error) {
	fd := int(t.in.Fd())
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter_raw: %w", err)
	}
	t.saved = saved

	t.winch = make(chan os.Signal, 1)
	t.stopWait = make(chan struct{})
	signal.Notify(t.winch, syscall.SIGWINCH)
	go func() {
		for {
			select {
			case <-t.winch:
				atomic.StoreInt32(&t.resized, 1)
			case <-t.stopWait:
				return
			}
		}
	}()

	return saved, nil
}

// Restore resets the terminal to saved and tears down the SIGWINCH handler
// installed by EnterRaw.
func (t *Terminal) Restore(saved *term.State) error {
	if t.stopWait != nil {
		close(t.stopWait)
		signal.Stop(t.winch)
		t.stopWait = nil
	}
	fd := int(t.in.Fd())
	if err := term.Restore(fd, saved); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}

// ConsumeResized reports whether a SIGWINCH has been observed since the last
// call, clearing the flag. The editor consults this cooperatively between
// keystrokes rather than acting inside the signal handler.
func (t *Terminal) ConsumeResized() bool {
	return atomic.CompareAndSwapInt32(&t.resized, 1, 0)
}

// Size returns the terminal's current column and row count.
func (t *Terminal) Size() (cols, rows int, err error) {
	return term.GetSize(int(t.in.Fd()))
}

// ErrEOF is returned by Getch when the input stream is exhausted.
var ErrEOF = errors.New("termio: eof")

// Getch reads and returns the next byte, transparently retrying on EINTR.
func (t *Terminal) Getch() (byte, error) {
	for {
		b, err := t.reader.ReadByte()
		if err == nil {
			return b, nil
		}
		if errors.Is(err, io.EOF) {
			return 0, ErrEOF
		}
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		return 0, err
	}
}

// The VT sequence repertoire used by the line editor: clear screen (erase
// display only — homing is its own, separately emitted step via CursorTo),
// save and restore cursor, clear-to-EOL, relative column moves, and
// absolute row/column positioning. No ANSI color codes are ever emitted.
const (
	SeqClearScreen = "\033[2J"
	SeqSaveCursor  = "\0337"
	SeqRestoreCurs = "\0338"
	SeqClearToEOL  = "\033[K"
)

// CursorForward returns the escape sequence moving the cursor forward n
// columns (a no-op string for n<=0).
func CursorForward(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\033[%dC", n)
}

// CursorBackward returns the escape sequence moving the cursor backward n
// columns (a no-op string for n<=0).
func CursorBackward(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\033[%dD", n)
}

// CursorTo returns the escape sequence moving the cursor to absolute
// 1-based row/column.
func CursorTo(row, col int) string {
	return fmt.Sprintf("\033[%d;%dH", row, col)
}

// Write emits a raw sequence or text to the terminal's output file.
func (t *Terminal) Write(s string) error {
	_, err := t.out.WriteString(s)
	return err
}
