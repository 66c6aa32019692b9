package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"unsafe"
)

const tiocspgrp = 0x5410

func tcsetpgrp(fd int, pgid int) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(tiocspgrp), uintptr(unsafe.Pointer(&pgid)))
	if errno != 0 {
		return errno
	}
	return nil
}

// setUpInteractiveProcessGroup establishes the shell's own controlling
// terminal foreground group and ignores the job-control signals a foreground
// shell must not die from (spec §5 "Shared resources"/"Cancellation"):
// SIGINT, SIGQUIT, SIGTSTP, SIGTTIN, SIGTTOU are ignored; SIGCHLD is left at
// its default disposition so the launcher's blocking wait(2) behaves
// normally.
func setUpInteractiveProcessGroup(fd int) (int, error) {
	pgid, err := syscall.Getpgid(0)
	if err != nil {
		return 0, fmt.Errorf("getpgrp: %w", err)
	}
	if err := tcsetpgrp(fd, pgid); err != nil {
		return 0, fmt.Errorf("tcsetpgrp: %w", err)
	}

	signal.Ignore(syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU)

	return pgid, nil
}
