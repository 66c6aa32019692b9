package keydecoder

import "testing"

func feedAll(t *testing.T, d *Decoder, bs []byte) (Status, Event) {
	t.Helper()
	var st Status
	var ev Event
	for i, b := range bs {
		st, ev = d.Feed(b)
		if st == Emit || st == Invalid {
			if i != len(bs)-1 {
				t.Fatalf("decoder settled early at byte %d of %v", i, bs)
			}
		}
	}
	return st, ev
}

func TestTextASCII(t *testing.T) {
	d := &Decoder{}
	st, ev := d.Feed('a')
	if st != Emit || ev.Kind != Text || ev.CP != "a" {
		t.Fatalf("Feed('a') = %v, %+v", st, ev)
	}
}

func TestTextMultiByte(t *testing.T) {
	d := &Decoder{}
	cp := "é" // 2 bytes
	st, ev := feedAll(t, d, []byte(cp))
	if st != Emit || ev.Kind != Text || ev.CP != cp {
		t.Fatalf("multi-byte decode = %v, %+v, want emit %q", st, ev, cp)
	}
}

func TestCtrlSingleByte(t *testing.T) {
	cases := map[byte]CtrlAction{
		0x03: LineKill,
		0x04: Exit,
		0x0C: Clear,
		0x12: Search,
		'\n': Enter,
		'\t': Tab,
		0x7F: Backspace,
	}
	for b, want := range cases {
		d := &Decoder{}
		st, ev := d.Feed(b)
		if st != Emit || ev.Kind != Ctrl || ev.Action != want {
			t.Errorf("Feed(0x%02X) = %v, %+v, want action %v", b, st, ev, want)
		}
	}
}

func TestEscapeSequences(t *testing.T) {
	cases := map[string]CtrlAction{
		"\033[A":  Up,
		"\033[B":  Down,
		"\033[C":  Forward,
		"\033[D":  Backward,
		"\033[3~": Del,
		"\033[5~": PageUp,
		"\033[6~": PageDown,
		"\033[H":  Home,
		"\033OF":  End,
	}
	for seq, want := range cases {
		d := &Decoder{}
		st, ev := feedAll(t, d, []byte(seq))
		if st != Emit || ev.Kind != Ctrl || ev.Action != want {
			t.Errorf("sequence %q = %v, %+v, want action %v", seq, st, ev, want)
		}
	}
}

func TestInvalidEscapeResetsCleanly(t *testing.T) {
	d := &Decoder{}
	st1, _ := d.Feed(0x1B)
	if st1 != Incomplete {
		t.Fatalf("ESC alone should be incomplete, got %v", st1)
	}
	st2, _ := d.Feed('Z') // not a recognized prefix
	if st2 != Invalid {
		t.Fatalf("ESC Z should be invalid, got %v", st2)
	}
	// Decoder must have recovered: a following plain byte decodes normally.
	st3, ev := d.Feed('x')
	if st3 != Emit || ev.CP != "x" {
		t.Fatalf("decoder did not recover after invalid sequence: %v, %+v", st3, ev)
	}
}

func TestOtherC0ControlIsInvalid(t *testing.T) {
	d := &Decoder{}
	st, _ := d.Feed(0x07) // BEL, unrecognized
	if st != Invalid {
		t.Fatalf("Feed(BEL) = %v, want Invalid", st)
	}
}
