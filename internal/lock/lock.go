// Package lock provides the advisory workspace lock that serializes
// mutating git-context commands.
//
// The lock is a flock(2) on the workspace root directory itself, so no lock
// file is ever left behind and the kernel releases it if the process dies.
package lock

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/logging"
)

const (
	minBackoff = 50 * time.Millisecond
	maxBackoff = time.Second
)

// Lock is a held workspace lock.
type Lock struct {
	file *os.File
}

// Acquire takes an exclusive lock on dir, polling with exponential backoff
// until timeout elapses or ctx is done. Contention past the timeout is
// reported as Locked.
func Acquire(ctx context.Context, dir string, timeout time.Duration) (*Lock, error) {
	file, err := os.Open(dir)
	if err != nil {
		return nil, errors.FilesystemFailure(fmt.Sprintf("failed to open %s for locking", dir), err)
	}

	err = unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return &Lock{file: file}, nil
	}
	if !errors.Is(err, unix.EWOULDBLOCK) {
		file.Close()
		return nil, errors.FilesystemFailure("flock failed", err)
	}

	logging.Debug("workspace is locked, waiting", "dir", dir, "timeout", timeout)

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := minBackoff
	for {
		select {
		case <-lockCtx.Done():
			file.Close()
			return nil, errors.Locked(fmt.Errorf("gave up after %v: %w", timeout, lockCtx.Err()))
		case <-time.After(backoff):
			err = unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
			if err == nil {
				return &Lock{file: file}, nil
			}
			if !errors.Is(err, unix.EWOULDBLOCK) {
				file.Close()
				return nil, errors.FilesystemFailure("flock failed", err)
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// Release drops the lock. It is safe to call on a nil Lock and more than once.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
}
