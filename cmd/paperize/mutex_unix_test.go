//go:build !windows

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	dir := t.TempDir()

	ok, err := acquireLock(dir)
	require.NoError(t, err)
	require.True(t, ok)
	held := lockFile

	// flock locks belong to the open file, so a second open conflicts.
	lockFile = nil
	ok, err = acquireLock(dir)
	require.NoError(t, err)
	assert.False(t, ok)

	lockFile = held
	releaseLock()

	ok, err = acquireLock(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	releaseLock()
}
