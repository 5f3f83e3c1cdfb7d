// Package fs provides the filesystem seam for fixture I/O.
//
// The main types are:
//   - [FS]: interface for the filesystem operations fixture code performs
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using the [os] package
//   - [Faulty]: testing implementation that injects scripted failures
//
// All fixture reads and writes go through [FS] so that error paths
// (permissions, disk full, partial generation) are testable without root or
// a full disk.
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor. Satisfied by [os.File].
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Fd returns the file descriptor, for flock(2). See [os.File.Fd].
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)
}

// Locker represents a held file lock. Call Close to release it.
type Locker interface {
	io.Closer
}

// FS defines the filesystem operations fixture generation needs.
//
// Two implementations are provided: [Real] for production and [Faulty] for
// fault-injection tests.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically via temp file +
	// rename, so readers never observe a partial artifact.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// OpenFile opens a file with the given flags and permissions.
	// See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadDir reads a directory and returns its entries sorted by name.
	// See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// Lock acquires an exclusive advisory lock guarding path. Blocks up to
	// an implementation-defined timeout. Call [Locker.Close] to release.
	Lock(path string) (Locker, error)
}

// Compile-time interface check.
var _ File = (*os.File)(nil)
