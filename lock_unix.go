//go:build !windows

package bbbc005

import "syscall"

// tryLock takes a non-blocking flock() advisory lock.
func (l *fileLock) tryLock() error {
	return syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}

func (l *fileLock) unlock() error {
	return syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
}
