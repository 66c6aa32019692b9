package lexer

import "testing"

func tokens(t *testing.T, s string) []Token {
	t.Helper()
	l := New(s)
	var out []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lexer error: %v", err)
		}
		if tok.EOF {
			break
		}
		out = append(out, tok)
	}
	return out
}

func TestSimpleWords(t *testing.T) {
	toks := tokens(t, "echo hello")
	if len(toks) != 2 || toks[0].Text != "echo" || toks[1].Text != "hello" {
		t.Fatalf("got %+v", toks)
	}
}

func TestMetacharacterRun(t *testing.T) {
	toks := tokens(t, "a|b")
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %+v", len(toks), toks)
	}
	if !toks[0].PreMeta || toks[0].Text != "a" {
		t.Errorf("first token = %+v, want PreMeta word \"a\"", toks[0])
	}
	if !toks[1].Meta || toks[1].Text != "|" {
		t.Errorf("second token = %+v, want Meta \"|\"", toks[1])
	}
	if toks[2].Text != "b" || toks[2].PreMeta {
		t.Errorf("third token = %+v, want plain word \"b\"", toks[2])
	}
}

func TestRedirectOperator(t *testing.T) {
	toks := tokens(t, "cmd 2>err.txt >&1")
	want := []string{"cmd", "2", ">", "err.txt", ">&", "1"}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens %+v, want %d: %v", len(toks), toks, len(want), want)
	}
	for i, w := range want {
		if toks[i].Text != w {
			t.Errorf("token %d = %q, want %q", i, toks[i].Text, w)
		}
	}
}

func TestQuoteConcatenation(t *testing.T) {
	toks := tokens(t, `'it''s'`)
	if len(toks) != 1 || toks[0].Text != "its" {
		t.Fatalf("got %+v, want single token \"its\"", toks)
	}
}

func TestDoubleQuoteWithSpace(t *testing.T) {
	toks := tokens(t, `"hello world"`)
	if len(toks) != 1 || toks[0].Text != "hello world" {
		t.Fatalf("got %+v, want single token \"hello world\"", toks)
	}
}

func TestEmptyQuotedWordIsPresentNotAbsent(t *testing.T) {
	l := New(`""`)
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.EOF {
		t.Fatalf("empty quoted word must not be the EOF sentinel")
	}
	if tok.Text != "" {
		t.Fatalf("Text = %q, want empty", tok.Text)
	}
}

func TestUnterminatedQuoteError(t *testing.T) {
	l := New(`'unterminated`)
	_, err := l.Next()
	if err == nil {
		t.Fatalf("expected an unterminated-quote error")
	}
	lexErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is %T, want *lexer.Error", err)
	}
	if lexErr.Message != "unexpected EOF while looking for matching quote" {
		t.Errorf("message = %q", lexErr.Message)
	}
}

func TestPushBack(t *testing.T) {
	l := New("a b")
	first, _ := l.Next()
	l.PushBack(first)
	again, _ := l.Next()
	if again != first {
		t.Fatalf("PushBack/Next round-trip mismatch: %+v vs %+v", again, first)
	}
	second, _ := l.Next()
	if second.Text != "b" {
		t.Fatalf("second token after pushback = %+v, want \"b\"", second)
	}
}

func TestLineCounterIncrementsInsideQuotes(t *testing.T) {
	l := New("\"a\nb\" c")
	_, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Line() != 2 {
		t.Errorf("Line() = %d, want 2", l.Line())
	}
}

func TestEndOfInputSentinel(t *testing.T) {
	l := New("")
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tok.EOF {
		t.Fatalf("expected EOF sentinel for empty input, got %+v", tok)
	}
}
