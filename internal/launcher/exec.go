package launcher

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"unsafe"

	"golang.org/x/term"

	"github.com/restless-shell/rmsh/internal/parser"
	"github.com/restless-shell/rmsh/internal/shellctx"
)

// buildChildSpec resolves argv[0] and constructs the child's file
// descriptor table by applying redirections in list order, exactly as
// §4.8 step 4 describes: each redirection opens or aliases a file and
// binds it to its target fd, later redirections overriding earlier ones
// at the same fd.
func (l *Launcher) buildChildSpec(proc *parser.Process, inFile, outFile *os.File) (*childSpec, error) {
	files := map[int]*os.File{0: inFile, 1: outFile, 2: os.Stderr}
	var owned []*os.File
	maxFd := 2

	for _, r := range proc.Redirs {
		var f *os.File
		opened := false
		var err error

		switch r.Type {
		case parser.PathIn:
			f, err = os.OpenFile(r.Path, os.O_RDONLY, 0)
			opened = true
		case parser.PathOTrunc:
			f, err = os.OpenFile(r.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
			opened = true
		case parser.PathOAppend:
			f, err = os.OpenFile(r.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
			opened = true
		case parser.PathInOut:
			f, err = os.OpenFile(r.Path, os.O_RDWR|os.O_CREATE, 0666)
			opened = true
		case parser.FdIn, parser.FdOut:
			src, ok := files[r.SourceFd]
			if !ok {
				return nil, fmt.Errorf("invalid redirection fd `%d'", r.SourceFd)
			}
			f = src
		}
		if err != nil {
			for _, of := range owned {
				of.Close()
			}
			return nil, fmt.Errorf("%s: %w", r.Path, err)
		}
		if opened {
			owned = append(owned, f)
		}
		files[r.Fd] = f
		if r.Fd > maxFd {
			maxFd = r.Fd
		}
	}

	spec := &childSpec{proc: proc, ownedOpen: owned}
	if resolved, ok := resolveArgv0(argv0(proc)); ok {
		spec.resolved = resolved
	}

	// Gaps below maxFd (e.g. `cmd 5>out` leaving 3 and 4 unbound) are left as
	// nil entries: os.StartProcess closes fd i in the child when
	// ProcAttr.Files[i] is nil, matching a real shell's fd table rather than
	// quietly wiring the gap to /dev/null.
	spec.extra = make([]*os.File, maxFd+1)
	for i := 0; i <= maxFd; i++ {
		if f, ok := files[i]; ok {
			spec.extra[i] = f
		}
	}

	return spec, nil
}

// jobControlSignals are the signals an interactive shell ignores at startup
// (setUpInteractiveProcessGroup) so it survives Ctrl-C/Ctrl-Z/background
// tty I/O itself; §4.8 step 2 requires every child get these back at their
// default disposition before exec, since SIG_IGN survives execve.
var jobControlSignals = []os.Signal{
	syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU,
}

// startChild forks and execs one resolved child, using
// syscall.SysProcAttr{Setpgid, Pgid, Foreground, Ctty} to hand off process
// group and terminal foreground atomically in the Go runtime's fork helper.
//
// The shell's own SIGINT/SIGQUIT/SIGTSTP/SIGTTIN/SIGTTOU dispositions are
// SIG_IGN (set once by setUpInteractiveProcessGroup) and SIG_IGN is
// inherited across execve, so without the explicit reset here every child
// would start up immune to Ctrl-C. signal.Reset restores the default
// disposition for the duration of the StartProcess call, then
// signal.Ignore puts the shell's own handling back; the brief window this
// opens for the shell process itself is the same kind of accepted race as
// the setpgid handoff around job creation.
func (l *Launcher) startChild(spec *childSpec, job *Job, isFirst, foreground bool) (*os.Process, error) {
	var sys *syscall.SysProcAttr
	if l.ctx.Interactive {
		sys = &syscall.SysProcAttr{Setpgid: true, Pgid: job.Pgid}
		if foreground {
			sys.Foreground = true
			sys.Ctty = 0
		}
	}

	attr := &os.ProcAttr{
		Env:   childEnv(spec.proc.Env),
		Files: spec.extra,
		Sys:   sys,
	}

	if l.ctx.Interactive {
		signal.Reset(jobControlSignals...)
		defer signal.Ignore(jobControlSignals...)
	}

	return os.StartProcess(spec.resolved, spec.proc.Argv, attr)
}

// wait reaps every started child and records its final status. Unresolved
// or failed-to-start entries already carry a synthetic status and a nil
// *os.Process, so they are skipped here.
func (l *Launcher) wait(job *Job, procs []*os.Process) {
	for i, p := range procs {
		if p == nil {
			continue
		}
		ps := job.Processes[i]
		state, err := p.Wait()
		ps.Done = true
		if err != nil {
			ps.Exited = true
			ps.ExitCode = 1
			continue
		}
		ws, ok := state.Sys().(syscall.WaitStatus)
		if !ok {
			ps.Exited = true
			ps.ExitCode = state.ExitCode()
			continue
		}
		switch {
		case ws.Exited():
			ps.Exited = true
			ps.ExitCode = ws.ExitStatus()
		case ws.Signaled():
			ps.Signaled = true
			ps.Signal = int(ws.Signal())
		default:
			ps.Exited = true
			ps.ExitCode = 1
		}
	}

	if l.ctx.Interactive && len(job.Processes) > 0 {
		last := job.Processes[len(job.Processes)-1]
		if last.Signaled && syscall.Signal(last.Signal) == syscall.SIGINT {
			fmt.Println()
		}
	}
}

// tiocspgrp is TIOCSPGRP on Linux; the launcher targets Linux's job-control
// ioctl numbering the way the kylelemons-goat termios reference package
// drives TIOCGWINSZ through a raw syscall rather than cgo.
const tiocspgrp = 0x5410

func tcsetpgrp(fd int, pgid int) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(tiocspgrp), uintptr(unsafe.Pointer(&pgid)))
	if errno != 0 {
		return errno
	}
	return nil
}

// restoreForeground retakes the terminal for the shell's own process group
// and resets terminal attributes to the shell's saved state, per §4.8's
// post-job terminal restoration step.
func restoreForeground(ctx *shellctx.Context) {
	fd := int(os.Stdin.Fd())
	_ = tcsetpgrp(fd, ctx.Pgid)
	if ctx.SavedState != nil {
		_ = term.Restore(fd, ctx.SavedState)
	}
}
