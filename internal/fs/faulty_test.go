package fs

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultyFailsScriptedWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	errDisk := errors.New("disk full")

	f := NewFaulty(NewReal()).Fail(Fault{Op: "WriteFileAtomic", PathSubstr: ".lz4", Err: errDisk})

	require.NoError(t, f.WriteFileAtomic(filepath.Join(dir, "a.dat"), []byte("x"), 0o644))

	err := f.WriteFileAtomic(filepath.Join(dir, "a.lz4"), []byte("x"), 0o644)
	require.ErrorIs(t, err, errDisk)
	assert.True(t, IsInjected(err), "scripted failure not marked as injected")
}

func TestFaultyNthCall(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := NewFaulty(NewReal()).Fail(Fault{Op: "WriteFileAtomic", Nth: 2})

	require.NoError(t, f.WriteFileAtomic(filepath.Join(dir, "one"), nil, 0o644))
	require.Error(t, f.WriteFileAtomic(filepath.Join(dir, "two"), nil, 0o644))
	require.NoError(t, f.WriteFileAtomic(filepath.Join(dir, "three"), nil, 0o644))
}

func TestFaultyPassthroughWithoutFaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := NewFaulty(NewReal())

	path := filepath.Join(dir, "data")
	require.NoError(t, f.WriteFileAtomic(path, []byte("ok"), 0o644))

	got, err := f.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(got))

	ok, err := f.Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)
}
