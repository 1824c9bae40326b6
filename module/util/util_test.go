package util

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllClosed(t *testing.T) {
	a := make(chan struct{})
	b := make(chan struct{})
	all := AllClosed(a, b)

	close(a)
	select {
	case <-all:
		t.Fatal("closed before all inputs closed")
	case <-time.After(10 * time.Millisecond):
	}

	close(b)
	select {
	case <-all:
	case <-time.After(time.Second):
		t.Fatal("not closed after all inputs closed")
	}
}

func TestWaitError(t *testing.T) {
	t.Run("returns error", func(t *testing.T) {
		errChan := make(chan error, 1)
		done := make(chan struct{})
		expected := errors.New("boom")
		errChan <- expected
		assert.ErrorIs(t, WaitError(errChan, done), expected)
	})

	t.Run("prefers error when done is also closed", func(t *testing.T) {
		errChan := make(chan error, 1)
		done := make(chan struct{})
		expected := errors.New("boom")
		errChan <- expected
		close(done)
		for i := 0; i < 100; i++ {
			err := WaitError(errChan, done)
			if err != nil {
				require.ErrorIs(t, err, expected)
				return
			}
		}
		t.Fatal("error never returned")
	})

	t.Run("nil on clean shutdown", func(t *testing.T) {
		errChan := make(chan error)
		done := make(chan struct{})
		close(done)
		assert.NoError(t, WaitError(errChan, done))
	})
}
