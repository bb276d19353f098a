package bbbc005

import (
	"fmt"
	"os"
	"time"
)

// fileLock is an exclusive cross-process lock on a file. The platform files
// provide tryLock and unlock.
type fileLock struct {
	// file is the lock file handle.
	file *os.File

	// timeout is the maximum duration to wait for lock acquisition.
	timeout time.Duration

	// locked tracks whether the lock is currently held.
	locked bool
}

// newFileLock opens or creates the lock file at path.
func newFileLock(path string, timeout time.Duration) (*fileLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	return &fileLock{file: file, timeout: timeout}, nil
}

// Lock polls tryLock with backoff until the lock is held or the timeout expires.
func (l *fileLock) Lock() error {
	if l.locked {
		return nil
	}
	if l.file == nil {
		return fmt.Errorf("lock file closed")
	}

	deadline := time.Now().Add(l.timeout)
	wait := 10 * time.Millisecond
	for {
		if err := l.tryLock(); err == nil {
			l.locked = true
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("lock timeout after %v", l.timeout)
		}
		time.Sleep(wait)
		if wait < 100*time.Millisecond {
			wait *= 2
		}
	}
}

// Unlock releases the lock and closes the file. Safe to call more than once.
func (l *fileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	var err error
	if l.locked {
		err = l.unlock()
		l.locked = false
	}
	l.file.Close()
	l.file = nil
	return err
}
