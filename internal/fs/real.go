package fs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// Real implements [FS] using the real filesystem.
//
// All methods are passthroughs to the [os] package with identical error
// semantics, except [Real.WriteFileAtomic] which writes via temp file +
// rename, and [Real.Lock] which provides flock-based locking.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (r *Real) WriteFileAtomic(path string, data []byte, _ os.FileMode) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func (r *Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

func (r *Real) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

func (r *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists checks if a file exists using [os.Stat].
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

const (
	lockTimeout = 2 * time.Second
	lockPerms   = 0o644
	dirPerms    = 0o755
)

// realLock holds an exclusive flock.
type realLock struct {
	path string
	file *os.File
}

func (l *realLock) Close() error {
	if l.file == nil {
		return nil
	}

	_ = os.Remove(l.path)
	_ = flockRetryEINTR(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil

	return err
}

// Lock takes an exclusive flock on "<path>.lock", polling with backoff up to
// a 2s timeout.
//
// flock applies to an inode, not a pathname, so after acquiring we verify the
// lock file at path still has the inode we locked; if it was replaced in the
// open-to-lock window we retry. Without this check two processes can both
// "hold" the lock on different inodes.
func (r *Real) Lock(path string) (Locker, error) {
	lockPath := path + ".lock"
	deadline := time.Now().Add(lockTimeout)
	backoff := time.Millisecond

	for {
		if err := os.MkdirAll(filepath.Dir(lockPath), dirPerms); err != nil {
			return nil, err
		}

		file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, lockPerms)
		if err != nil {
			return nil, err
		}

		fd := int(file.Fd())

		err = flockRetryEINTR(fd, unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			match, statErr := inodeMatches(fd, lockPath)
			if statErr == nil && match {
				return &realLock{path: lockPath, file: file}, nil
			}

			// Lock file was replaced while we acquired; retry on a fresh fd.
			_ = flockRetryEINTR(fd, unix.LOCK_UN)
			_ = file.Close()

			continue
		}

		_ = file.Close()

		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return nil, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, os.ErrDeadlineExceeded
		}

		time.Sleep(min(backoff, remaining))

		if backoff < 25*time.Millisecond {
			backoff *= 2
		}
	}
}

func inodeMatches(fd int, path string) (bool, error) {
	var openStat, pathStat unix.Stat_t

	if err := unix.Fstat(fd, &openStat); err != nil {
		return false, err
	}

	if err := unix.Stat(path, &pathStat); err != nil {
		return false, err
	}

	return openStat.Dev == pathStat.Dev && openStat.Ino == pathStat.Ino, nil
}

// flockRetryEINTR wraps flock, retrying when a signal interrupts the call.
// Retries are capped so a pathological signal storm cannot spin forever.
func flockRetryEINTR(fd, how int) error {
	const maxRetries = 10000

	var err error
	for range maxRetries {
		err = unix.Flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}

	return err
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
