// Package parser builds a Pipeline of Process descriptors from the lexer's
// token stream: environment assignments, argv, and ordered redirections.
// Grounded on the redirection- and pipe-token handling in the gosh
// reference shell (apriljarosz-gosh__internal-input), generalized to the
// fuller env-assignment/PRE-META-fd/redirection-type rules this core
// requires.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/restless-shell/rmsh/internal/lexer"
)

// RedirType names one of the six redirection operators this core supports.
type RedirType int

const (
	PathIn RedirType = iota
	PathOTrunc
	PathOAppend
	PathInOut
	FdIn
	FdOut
)

// Redirection is a single parsed redirection: a target fd, its type, and
// either a path (PATH_* types) or a source fd (FD_* types).
type Redirection struct {
	Fd          int
	Type        RedirType
	Path        string
	SourceFd    int
	HasSourceFd bool
}

// Process is one parsed command: leading env assignments, a non-empty argv
// (enforced by the launcher, not the parser), and an ordered redirection
// list.
type Process struct {
	Env    []string
	Argv   []string
	Redirs []Redirection
}

// Pipeline is an ordered, non-empty list of Process descriptors separated
// by `|` in the source.
type Pipeline struct {
	Processes []Process
}

var identPattern = func(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if !(c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

func parseNonNegInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func mapOperator(text string) (RedirType, bool) {
	switch text {
	case "<":
		return PathIn, true
	case ">":
		return PathOTrunc, true
	case ">>":
		return PathOAppend, true
	case "<>":
		return PathInOut, true
	case "<&":
		return FdIn, true
	case ">&":
		return FdOut, true
	default:
		return 0, false
	}
}

// Parser consumes a lexer's token stream and builds a Pipeline.
type Parser struct {
	lex   *lexer.Lexer
	queue []lexer.Token // local re-processing queue, LIFO
}

// New returns a Parser reading tokens from lex.
func New(lex *lexer.Lexer) *Parser {
	return &Parser{lex: lex}
}

func (p *Parser) next() (lexer.Token, error) {
	if n := len(p.queue); n > 0 {
		tok := p.queue[n-1]
		p.queue = p.queue[:n-1]
		return tok, nil
	}
	return p.lex.Next()
}

func (p *Parser) pushBack(tok lexer.Token) {
	p.queue = append(p.queue, tok)
}

func (p *Parser) errf(format string, args ...interface{}) error {
	return &lexer.Error{Message: fmt.Sprintf(format, args...), Line: p.lex.Line()}
}

func applyPlainWord(proc Process, doneVars *bool, w string) Process {
	if !*doneVars {
		if idx := strings.IndexByte(w, '='); idx > 0 {
			name := w[:idx]
			if identPattern(name) {
				proc.Env = append(proc.Env, w)
				return proc
			}
		}
	}
	*doneVars = true
	proc.Argv = append(proc.Argv, w)
	return proc
}

// BuildPipeline parses the entire input into one Pipeline.
func (p *Parser) BuildPipeline() (*Pipeline, error) {
	pipeline := &Pipeline{}
	for {
		proc, err := p.buildProcess()
		if err != nil {
			return nil, err
		}
		pipeline.Processes = append(pipeline.Processes, proc)

		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			break
		}
		if tok.Meta && tok.Text == "|" {
			next, err := p.next()
			if err != nil {
				return nil, err
			}
			if next.EOF {
				return nil, p.errf("syntax error: unexpected end of file")
			}
			p.pushBack(next)
			continue
		}
		return nil, p.errf("unexpected metacharacter `%s'", tok.Text)
	}
	return pipeline, nil
}

// buildProcess builds one Process, stopping at `|` (pushed back for the
// pipeline loop) or end-of-input (also pushed back).
func (p *Parser) buildProcess() (Process, error) {
	var proc Process
	doneVars := false
	var premeta *lexer.Token

	flush := func() {
		if premeta != nil {
			proc = applyPlainWord(proc, &doneVars, premeta.Text)
			premeta = nil
		}
	}

	for {
		tok, err := p.next()
		if err != nil {
			return proc, err
		}

		if tok.EOF {
			flush()
			p.pushBack(tok)
			return proc, nil
		}

		if tok.Meta {
			if tok.Text == "|" {
				flush()
				p.pushBack(tok)
				return proc, nil
			}
			if strings.HasPrefix(tok.Text, "<") || strings.HasPrefix(tok.Text, ">") {
				redirType, ok := mapOperator(tok.Text)
				if !ok {
					return proc, p.errf("unknown redirection op `%s'", tok.Text)
				}
				defaultFd := 0
				if strings.HasPrefix(tok.Text, ">") {
					defaultFd = 1
				}
				fd := defaultFd
				if premeta != nil {
					if n, ok := parseNonNegInt(premeta.Text); ok {
						fd = n
						premeta = nil
					} else {
						word := lexer.Token{Text: premeta.Text}
						premeta = nil
						p.pushBack(tok)
						p.pushBack(word)
						continue
					}
				}

				srcTok, err := p.next()
				if err != nil {
					return proc, err
				}
				if srcTok.Meta || srcTok.EOF {
					return proc, p.errf("invalid redirection fd `%s'", srcTok.Text)
				}

				r := Redirection{Fd: fd, Type: redirType}
				if redirType == FdIn || redirType == FdOut {
					n, ok := parseNonNegInt(srcTok.Text)
					if !ok {
						return proc, p.errf("invalid redirection fd `%s'", srcTok.Text)
					}
					r.SourceFd = n
					r.HasSourceFd = true
				} else {
					r.Path = srcTok.Text
				}
				proc.Redirs = append(proc.Redirs, r)
				continue
			}
			return proc, p.errf("unexpected metacharacter `%s'", tok.Text)
		}

		if tok.PreMeta {
			flush()
			stripped := tok
			stripped.PreMeta = false
			premeta = &stripped
			continue
		}

		flush()
		proc = applyPlainWord(proc, &doneVars, tok.Text)
	}
}
