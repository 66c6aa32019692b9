// Package keydecoder turns a raw input byte stream into semantic key
// events for the line editor: either a complete UTF-8 text code point or a
// named control action. It is grounded on the declarative escape-sequence
// table in the tinkerator-lined reference package (a table of byte-string
// codes mapped to actions, matched incrementally against an accumulator),
// adapted here into an explicit incomplete/emit/invalid state machine
// instead of that package's blocking read loop.
package keydecoder

import (
	"strings"

	"github.com/restless-shell/rmsh/internal/utf8util"
)

// EventKind distinguishes the two accepted key event shapes.
type EventKind int

const (
	Text EventKind = iota
	Ctrl
)

// CtrlAction names a control action recognized by the decoder.
type CtrlAction int

const (
	LineKill CtrlAction = iota
	Exit
	Clear
	Search
	Home
	End
	Backward
	Forward
	Up
	Down
	PageUp
	PageDown
	Del
	Enter
	Tab
	Backspace
)

// Event is a single decoded key event: either Text (with CP holding the
// code point's UTF-8 bytes) or Ctrl (with Action set).
type Event struct {
	Kind   EventKind
	CP     string
	Action CtrlAction
}

// Status is the outcome of feeding one byte to the decoder.
type Status int

const (
	Incomplete Status = iota // need more bytes
	Emit                     // ev holds a complete event
	Invalid                  // accumulator dropped, resume fresh
)

// escapeCode pairs a literal escape-sequence suffix (following ESC) with the
// control action it names.
type escapeCode struct {
	suffix string
	action CtrlAction
}

// escapeTable is every multi-byte escape sequence the decoder recognizes,
// keyed by everything after the leading 0x1B byte.
var escapeTable = []escapeCode{
	{"[1~", Home}, {"[7~", Home}, {"[H", Home}, {"OH", Home},
	{"[4~", End}, {"[8~", End}, {"[F", End}, {"OF", End},
	{"[D", Backward},
	{"[C", Forward},
	{"[A", Up},
	{"[B", Down},
	{"[5~", PageUp},
	{"[6~", PageDown},
	{"[3~", Del},
}

// singleByteCtrl maps the single-byte control codes (outside any escape
// sequence) to their action.
var singleByteCtrl = map[byte]CtrlAction{
	0x03: LineKill,  // ^C
	0x04: Exit,      // ^D
	0x0C: Clear,     // ^L
	0x12: Search,    // ^R
	0x01: Home,      // ^A
	0x05: End,       // ^E
	0x02: Backward,  // ^B
	0x06: Forward,   // ^F
	'\n': Enter,
	'\t': Tab,
	0x7F: Backspace,
}

// state names where the accumulator currently sits.
type state int

const (
	stateIdle state = iota
	stateEsc        // saw ESC, accumulating escapeTable suffix bytes
	stateText       // accumulating a multi-byte UTF-8 code point
)

// Decoder is an incremental byte-stream-to-key-event state machine. The
// zero value is ready to use.
type Decoder struct {
	st      state
	escBuf  string // bytes accumulated after ESC, not including ESC itself
	textBuf []byte
	textLen int // total bytes the current code point needs
}

// Feed processes one input byte. When it returns Emit, ev holds the decoded
// event and the decoder has reset to accept the next event. Invalid means
// the accumulator could not be extended into any known sequence; it has
// already been dropped and decoding resumes cleanly on the next byte.
func (d *Decoder) Feed(b byte) (Status, Event) {
	switch d.st {
	case stateIdle:
		return d.feedIdle(b)
	case stateEsc:
		return d.feedEsc(b)
	case stateText:
		return d.feedText(b)
	default:
		d.reset()
		return Invalid, Event{}
	}
}

func (d *Decoder) feedIdle(b byte) (Status, Event) {
	if b == 0x1B {
		d.st = stateEsc
		d.escBuf = ""
		return Incomplete, Event{}
	}
	if action, ok := singleByteCtrl[b]; ok {
		return Emit, Event{Kind: Ctrl, Action: action}
	}
	if b < 0x20 {
		// Any other C0 control byte is invalid.
		return Invalid, Event{}
	}
	ll := utf8util.LeadingLength(b)
	switch {
	case ll == 1:
		return Emit, Event{Kind: Text, CP: string(b)}
	case ll >= 2:
		d.st = stateText
		d.textBuf = []byte{b}
		d.textLen = ll
		return Incomplete, Event{}
	default:
		return Invalid, Event{}
	}
}

func (d *Decoder) feedText(b byte) (Status, Event) {
	if utf8util.LeadingLength(b) != 0 {
		// Expected a continuation byte; this one starts something new.
		d.reset()
		return Invalid, Event{}
	}
	d.textBuf = append(d.textBuf, b)
	if len(d.textBuf) < d.textLen {
		return Incomplete, Event{}
	}
	cp := string(d.textBuf)
	d.reset()
	return Emit, Event{Kind: Text, CP: cp}
}

func (d *Decoder) feedEsc(b byte) (Status, Event) {
	candidate := d.escBuf + string(b)

	for _, code := range escapeTable {
		if code.suffix == candidate {
			d.reset()
			return Emit, Event{Kind: Ctrl, Action: code.action}
		}
	}

	anyPrefix := false
	for _, code := range escapeTable {
		if strings.HasPrefix(code.suffix, candidate) {
			anyPrefix = true
			break
		}
	}
	if anyPrefix {
		d.escBuf = candidate
		return Incomplete, Event{}
	}

	d.reset()
	return Invalid, Event{}
}

func (d *Decoder) reset() {
	d.st = stateIdle
	d.escBuf = ""
	d.textBuf = nil
	d.textLen = 0
}
