package utf8util

import "testing"

func TestLeadingLength(t *testing.T) {
	cases := []struct {
		b    byte
		want int
	}{
		{0x41, 1},   // 'A'
		{0x7F, 1},   // DEL, still ASCII range
		{0x80, 0},   // continuation
		{0xBF, 0},   // continuation
		{0xC2, 2},   // 2-byte leading
		{0xDF, 2},   // 2-byte leading
		{0xE0, 3},   // 3-byte leading
		{0xEF, 3},   // 3-byte leading
		{0xF0, 4},   // 4-byte leading
		{0xF4, 4},   // 4-byte leading
		{0xF8, -1},  // invalid
		{0xFF, -1},  // invalid
	}
	for _, c := range cases {
		if got := LeadingLength(c.b); got != c.want {
			t.Errorf("LeadingLength(0x%02X) = %d, want %d", c.b, got, c.want)
		}
	}
}

func TestCodepointCount(t *testing.T) {
	cases := []struct {
		name string
		s    string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "hello", 5},
		{"two-byte", "café", 4},
		{"four-byte emoji", "a\U0001F600b", 3},
		{"mixed", "héllo \U0001F600", 7},
	}
	for _, c := range cases {
		buf := []byte(c.s)
		if got := CodepointCount(buf, len(buf)); got != c.want {
			t.Errorf("%s: CodepointCount = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestCodepointCountMalformed(t *testing.T) {
	full := []byte("café")
	// Truncate mid code point: "caf" + first byte of é (0xC3).
	if got := CodepointCount(full, 4); got != -1 {
		t.Errorf("truncated prefix: CodepointCount = %d, want -1", got)
	}
	if got := CodepointCount([]byte{0xFF}, 1); got != -1 {
		t.Errorf("invalid leading byte: CodepointCount = %d, want -1", got)
	}
}

func TestTailCodepointBytes(t *testing.T) {
	full := []byte("café") // c a f é(2 bytes)
	if got := TailCodepointBytes(full, len(full)); got != 2 {
		t.Errorf("well-formed suffix: TailCodepointBytes = %d, want 2", got)
	}
	if got := TailCodepointBytes([]byte("hello"), 5); got != 1 {
		t.Errorf("ascii tail: TailCodepointBytes = %d, want 1", got)
	}
	// Truncated: only the leading byte of é is present.
	trunc := full[:4]
	if got := TailCodepointBytes(trunc, len(trunc)); got != 0 {
		t.Errorf("truncated tail: TailCodepointBytes = %d, want 0", got)
	}
	if got := TailCodepointBytes(full, 0); got != 0 {
		t.Errorf("zero length: TailCodepointBytes = %d, want 0", got)
	}
}
