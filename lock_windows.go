//go:build windows

package bbbc005

import "golang.org/x/sys/windows"

// tryLock takes a non-blocking LockFileEx() lock on the first byte.
func (l *fileLock) tryLock() error {
	return windows.LockFileEx(
		windows.Handle(l.file.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		1, 0,
		&windows.Overlapped{},
	)
}

func (l *fileLock) unlock() error {
	return windows.UnlockFileEx(windows.Handle(l.file.Fd()), 0, 1, 0, &windows.Overlapped{})
}
