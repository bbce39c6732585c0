package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	s := NewSpinner()
	s.Writer = &discard{}
	called := false
	err := Run(s, "[ loading ] ", func() error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
	assert.False(t, s.Active())

	boom := errors.New("boom")
	assert.ErrorIs(t, Run(s, "", func() error { return boom }), boom)
	assert.False(t, s.Active())
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
