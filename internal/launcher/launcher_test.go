package launcher_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/restless-shell/rmsh/internal/launcher"
	"github.com/restless-shell/rmsh/internal/lexer"
	"github.com/restless-shell/rmsh/internal/parser"
	"github.com/restless-shell/rmsh/internal/shellctx"
)

// buildPipeline lexes and parses src, failing the test on any error.
func buildPipeline(t *testing.T, src string) *parser.Pipeline {
	t.Helper()
	p := parser.New(lexer.New(src))
	pl, err := p.BuildPipeline()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return pl
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()
	w.Close()
	return <-done
}

func TestLaunchEchoHi(t *testing.T) {
	ctx := shellctx.NewNonInteractive("rmsh")
	l := launcher.New(ctx)
	pl := buildPipeline(t, "echo hi")

	out := captureStdout(t, func() {
		job, err := l.Launch(pl)
		if err != nil {
			t.Fatalf("launch: %v", err)
		}
		if got := job.Processes[len(job.Processes)-1].ReturnStatus(); got != 0 {
			t.Errorf("status = %d, want 0", got)
		}
	})
	if out != "hi\n" {
		t.Errorf("stdout = %q, want %q", out, "hi\n")
	}
}

func TestLaunchPipelineStatusIsLastProcess(t *testing.T) {
	ctx := shellctx.NewNonInteractive("rmsh")
	l := launcher.New(ctx)
	pl := buildPipeline(t, "true | false")

	job, err := l.Launch(pl)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if len(job.Processes) != 2 {
		t.Fatalf("expected 2 processes, got %d", len(job.Processes))
	}
	if got := job.Processes[0].ReturnStatus(); got != 0 {
		t.Errorf("first process status = %d, want 0", got)
	}
	if got := job.Processes[1].ReturnStatus(); got != 1 {
		t.Errorf("last process status = %d, want 1", got)
	}
}

func TestLaunchRedirectToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rmsh_test_1")

	ctx := shellctx.NewNonInteractive("rmsh")
	l := launcher.New(ctx)
	pl := buildPipeline(t, "echo ok > "+path)

	out := captureStdout(t, func() {
		if _, err := l.Launch(pl); err != nil {
			t.Fatalf("launch: %v", err)
		}
	})
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(data) != "ok\n" {
		t.Errorf("file contents = %q, want %q", data, "ok\n")
	}
}

func TestLaunchRedirectFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hostname")
	if err := os.WriteFile(path, []byte("host\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	ctx := shellctx.NewNonInteractive("rmsh")
	l := launcher.New(ctx)
	pl := buildPipeline(t, "cat < "+path)

	out := captureStdout(t, func() {
		if _, err := l.Launch(pl); err != nil {
			t.Fatalf("launch: %v", err)
		}
	})
	if out != "host\n" {
		t.Errorf("stdout = %q, want %q", out, "host\n")
	}
}

func TestLaunchCommandNotFound(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	origStderr := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = origStderr }()

	done := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	ctx := shellctx.NewNonInteractive("rmsh")
	l := launcher.New(ctx)
	pl := buildPipeline(t, "nosuchprog_xyz")

	job, err := l.Launch(pl)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	w.Close()
	errOut := <-done

	if got := job.Processes[0].ReturnStatus(); got != 1 {
		t.Errorf("status = %d, want 1", got)
	}
	want := "rmsh: nosuchprog_xyz: command not found"
	if !bytes.Contains([]byte(errOut), []byte(want)) {
		t.Errorf("stderr = %q, want it to contain %q", errOut, want)
	}
}
