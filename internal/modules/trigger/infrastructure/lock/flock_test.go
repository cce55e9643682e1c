package lock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_SecondHolderIsRejected(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir, "delay")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fms-delay.lock"), first.Path())

	_, err = Acquire(dir, "delay")
	assert.ErrorIs(t, err, ErrHeld)

	other, err := Acquire(dir, "notes")
	require.NoError(t, err)
	require.NoError(t, other.Release())

	require.NoError(t, first.Release())
	again, err := Acquire(dir, "delay")
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquire_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "locks")
	l, err := Acquire(dir, "all")
	require.NoError(t, err)
	require.NoError(t, l.Release())
}
