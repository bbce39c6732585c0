package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBellSkipper(t *testing.T) {
	var buf bytes.Buffer
	bs := &bellSkipper{out: &buf}

	n, err := bs.Write([]byte{7})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = bs.Write([]byte("select a course"))
	require.NoError(t, err)
	require.NoError(t, bs.Close())

	_, err = bs.Write([]byte("\nSummary"))
	require.NoError(t, err)
	assert.Equal(t, "select a course\nSummary", buf.String())
}
