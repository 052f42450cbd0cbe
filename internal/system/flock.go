package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock is an advisory fcntl/flock held on LockPath for the duration of a
// run (§5: "the installer refuses to run when it cannot acquire the
// lock"). It is not reentrant; one process holds at most one Lock.
type Lock struct {
	file *os.File
}

// AcquireLock takes a non-blocking exclusive flock on path, creating it
// if necessary. A held lock returns an error that does not name the
// owning PID, since that is not retrievable portably, so the caller is expected to report that the
// lock is held and let the user investigate with their own tools.
func AcquireLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, fmt.Errorf("lock %s is already held by another process", path)
		}
		return nil, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}

	return &Lock{file: f}, nil
}

// Release drops the lock and closes the underlying file. It does not
// remove the lock file itself; the next AcquireLock reuses it.
func (l *Lock) Release() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}
