// Package launcher forks/execs a Pipeline: wiring pipes between processes,
// assigning process groups and terminal foreground for interactive use, and
// waiting for all children to collect their exit statuses.
//
// Grounded on the pipe-wiring and wait/collect loop in the Ebash reference
// shell's runPipe/sync (Pur1st2EpicONE-Ebash), and on the exit/signal status
// encoding in the lxd forkexec internal command (128 + signal). Process
// groups and terminal foreground are set through os.StartProcess's
// syscall.SysProcAttr{Setpgid, Pgid, Foreground, Ctty} rather than custom
// code injected between fork and exec — Go's standard library performs
// that handoff atomically in the runtime's fork helper, which is the
// idiomatic Go substitute for the source's explicit
// setpgid-then-tcsetpgrp-then-reset-signals child dance. See DESIGN.md for
// the full accounting of where this diverges from the literal C sequence.
package launcher

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/restless-shell/rmsh/internal/parser"
	"github.com/restless-shell/rmsh/internal/shellctx"
)

// ProcessStatus records one launched child's eventual completion.
type ProcessStatus struct {
	Pid      int
	Argv0    string
	Done     bool
	Exited   bool
	ExitCode int
	Signaled bool
	Signal   int // return_signal
}

// ReturnStatus computes the shell-visible exit status: the raw exit code
// for a normal exit, or 128+signal for a signal death.
func (p *ProcessStatus) ReturnStatus() int {
	if p.Signaled {
		return 128 + p.Signal
	}
	return p.ExitCode
}

// Job is a launched pipeline sharing one process group.
type Job struct {
	Pgid      int
	Processes []*ProcessStatus
}

// Launcher runs pipelines against a fixed shell context.
type Launcher struct {
	ctx *shellctx.Context
}

// New returns a Launcher bound to ctx.
func New(ctx *shellctx.Context) *Launcher {
	return &Launcher{ctx: ctx}
}

type childSpec struct {
	proc     *parser.Process
	resolved string      // resolved argv[0] path, or "" if unresolved (command not found)
	extra    []*os.File  // the child's full fd table, indexed by fd number
	ownedOpen []*os.File // files this launcher opened for redirections, to close in the parent after Start
}

// Launch runs pl's processes as a single job, wiring pipes between them and
// waiting for all of them to complete.
func (l *Launcher) Launch(pl *parser.Pipeline) (*Job, error) {
	n := len(pl.Processes)
	job := &Job{}
	if l.ctx.Interactive {
		job.Pgid = 0 // adopt the first child's pid
	} else {
		job.Pgid = -1
	}

	var procs []*os.Process
	var specs []*childSpec

	inFile := os.Stdin
	for i := 0; i < n; i++ {
		proc := &pl.Processes[i]

		var outFile *os.File
		var nextIn *os.File
		if i < n-1 {
			r, w, err := os.Pipe()
			if err != nil {
				return nil, fmt.Errorf("pipe: %w", err)
			}
			outFile = w
			nextIn = r
		} else {
			outFile = os.Stdout
		}

		spec, err := l.buildChildSpec(proc, inFile, outFile)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)

		isFirst := i == 0
		foreground := l.ctx.Interactive && isFirst && inFile == os.Stdin

		if spec.resolved == "" {
			fmt.Fprintf(os.Stderr, "%s: %s: command not found\n", l.ctx.ProgName, argv0(proc))
			job.Processes = append(job.Processes, &ProcessStatus{
				Pid: -1, Argv0: argv0(proc), Done: true, Exited: true, ExitCode: 1,
			})
			procs = append(procs, nil)
		} else {
			p, err := l.startChild(spec, job, isFirst, foreground)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %s\n", l.ctx.ProgName, err)
				job.Processes = append(job.Processes, &ProcessStatus{
					Pid: -1, Argv0: argv0(proc), Done: true, Exited: true, ExitCode: 1,
				})
				procs = append(procs, nil)
			} else {
				if l.ctx.Interactive && job.Pgid == 0 {
					job.Pgid = p.Pid
				}
				if l.ctx.Interactive {
					// Parent-side setpgid closes the race against the
					// child's own setpgid call before it execs.
					_ = syscall.Setpgid(p.Pid, job.Pgid)
				}
				job.Processes = append(job.Processes, &ProcessStatus{Pid: p.Pid, Argv0: argv0(proc)})
				procs = append(procs, p)
			}
		}

		// The child has its own copies now; close the parent's.
		for _, f := range append(spec.ownedOpen, inFile, outFile) {
			if f != os.Stdin && f != os.Stdout {
				f.Close()
			}
		}

		inFile = nextIn
	}

	l.wait(job, procs)

	if l.ctx.Interactive {
		restoreForeground(l.ctx)
	}

	return job, nil
}

func argv0(p *parser.Process) string {
	if len(p.Argv) == 0 {
		return ""
	}
	return p.Argv[0]
}

// resolveArgv0 implements the PATH search described in §4.8 step 6,
// deliberately preserving the stat-not-access(X_OK) reading: the first
// $PATH entry the name stats successfully under wins, executable or not.
func resolveArgv0(argv0 string) (string, bool) {
	if argv0 == "" {
		return "", false
	}
	if strings.Contains(argv0, "/") {
		if _, err := os.Stat(argv0); err != nil {
			return "", false
		}
		return argv0, true
	}
	path := os.Getenv("PATH")
	for _, dir := range strings.Split(path, ":") {
		if dir == "" {
			continue
		}
		candidate := dir + "/" + argv0
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// childEnv computes the child's full environment: the shell's own
// environment with each process env assignment overlaid, exactly as
// putenv in the child (after fork, before exec) would leave it.
func childEnv(assignments []string) []string {
	base := os.Environ()
	overrides := make(map[string]string, len(assignments))
	var order []string
	for _, a := range assignments {
		idx := strings.IndexByte(a, '=')
		if idx < 0 {
			continue
		}
		name := a[:idx]
		if _, seen := overrides[name]; !seen {
			order = append(order, name)
		}
		overrides[name] = a[idx+1:]
	}
	out := make([]string, 0, len(base)+len(order))
	seen := make(map[string]bool, len(order))
	for _, kv := range base {
		idx := strings.IndexByte(kv, '=')
		if idx < 0 {
			out = append(out, kv)
			continue
		}
		name := kv[:idx]
		if v, ok := overrides[name]; ok {
			out = append(out, name+"="+v)
			seen[name] = true
		} else {
			out = append(out, kv)
		}
	}
	for _, name := range order {
		if !seen[name] {
			out = append(out, name+"="+overrides[name])
		}
	}
	return out
}
