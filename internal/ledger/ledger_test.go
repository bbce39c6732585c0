package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	require.NoError(t, err)

	_, ok, err := l.Done("c1", "l1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.MarkDone("c1", "l1", Entry{Path: "a/01-Intro.mp4", Size: 42, Fingerprint: "42:00000000000000ff"}))
	require.NoError(t, l.Close())

	// survives reopen
	l, err = Open(dir)
	require.NoError(t, err)
	defer l.Close()

	e, ok, err := l.Done("c1", "l1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a/01-Intro.mp4", e.Path)
	assert.Equal(t, int64(42), e.Size)
	assert.False(t, e.FinishedAt.IsZero())

	_, ok, err = l.Done("c2", "l1")
	require.NoError(t, err)
	assert.False(t, ok, "courses are kept apart")

	require.NoError(t, l.Forget("c1", "l1"))
	_, ok, err = l.Done("c1", "l1")
	require.NoError(t, err)
	assert.False(t, ok)
}
