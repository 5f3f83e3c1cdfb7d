package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// InjectedError marks an error as intentionally injected by [Faulty], so
// tests can tell scripted failures from real OS errors.
type InjectedError struct {
	Op   string
	Path string
	Err  error
}

func (e *InjectedError) Error() string {
	return "injected " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *InjectedError) Unwrap() error { return e.Err }

// IsInjected reports whether err (or any wrapped error) was injected.
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

// Fault scripts one failure: the op-th call (1-based) of Op whose path
// contains PathSubstr fails with Err. A zero Nth means every matching call.
type Fault struct {
	Op         string // "ReadFile", "WriteFileAtomic", "ReadDir", "MkdirAll", "Stat", "Remove", "Lock"
	PathSubstr string
	Nth        int
	Err        error
}

// Faulty wraps an [FS] and fails scripted operations, for exercising error
// paths that are hard to produce on a real filesystem.
//
// Safe for concurrent use.
type Faulty struct {
	inner FS

	mu     sync.Mutex
	faults []Fault
	counts map[string]int
}

// NewFaulty wraps inner with no faults scripted.
func NewFaulty(inner FS) *Faulty {
	return &Faulty{inner: inner, counts: make(map[string]int)}
}

// Fail scripts a fault. Calls may be chained.
func (f *Faulty) Fail(fault Fault) *Faulty {
	f.mu.Lock()
	defer f.mu.Unlock()

	if fault.Err == nil {
		fault.Err = errors.New("scripted failure")
	}

	f.faults = append(f.faults, fault)

	return f
}

// check returns the scripted error for this call, if any.
func (f *Faulty) check(op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counts[op]++
	n := f.counts[op]

	for _, fault := range f.faults {
		if fault.Op != op {
			continue
		}

		if fault.PathSubstr != "" && !strings.Contains(path, fault.PathSubstr) {
			continue
		}

		if fault.Nth != 0 && fault.Nth != n {
			continue
		}

		return &InjectedError{Op: op, Path: path, Err: fault.Err}
	}

	return nil
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if err := f.check("ReadFile", path); err != nil {
		return nil, err
	}

	return f.inner.ReadFile(path)
}

func (f *Faulty) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := f.check("WriteFileAtomic", path); err != nil {
		return err
	}

	return f.inner.WriteFileAtomic(path, data, perm)
}

func (f *Faulty) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if err := f.check("OpenFile", path); err != nil {
		return nil, err
	}

	return f.inner.OpenFile(path, flag, perm)
}

func (f *Faulty) ReadDir(path string) ([]os.DirEntry, error) {
	if err := f.check("ReadDir", path); err != nil {
		return nil, err
	}

	return f.inner.ReadDir(path)
}

func (f *Faulty) MkdirAll(path string, perm os.FileMode) error {
	if err := f.check("MkdirAll", path); err != nil {
		return err
	}

	return f.inner.MkdirAll(path, perm)
}

func (f *Faulty) Stat(path string) (os.FileInfo, error) {
	if err := f.check("Stat", path); err != nil {
		return nil, err
	}

	return f.inner.Stat(path)
}

func (f *Faulty) Exists(path string) (bool, error) {
	if err := f.check("Stat", path); err != nil {
		return false, err
	}

	return f.inner.Exists(path)
}

func (f *Faulty) Remove(path string) error {
	if err := f.check("Remove", path); err != nil {
		return err
	}

	return f.inner.Remove(path)
}

func (f *Faulty) Lock(path string) (Locker, error) {
	if err := f.check("Lock", path); err != nil {
		return nil, err
	}

	return f.inner.Lock(path)
}

// Compile-time interface check.
var _ FS = (*Faulty)(nil)
