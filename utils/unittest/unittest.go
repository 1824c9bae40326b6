package unittest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noislabs/drand-relay/module"
	"github.com/noislabs/drand-relay/module/util"
)

// RequireReturnsBefore runs f in a goroutine and fails the test if it does not return within
// duration.
func RequireReturnsBefore(t testing.TB, f func(), duration time.Duration) {
	returned := make(chan struct{})
	go func() {
		defer close(returned)
		f()
	}()
	RequireCloseBefore(t, returned, duration, "function did not return in time")
}

// RequireCloseBefore fails the test if c is still open after duration.
func RequireCloseBefore(t testing.TB, c <-chan struct{}, duration time.Duration, message string) {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-c:
	case <-timer.C:
		require.FailNow(t, "channel not closed within "+duration.String(), message)
	}
}

// RequireNeverClosedWithin fails the test if c closes within duration.
func RequireNeverClosedWithin(t testing.TB, c <-chan struct{}, duration time.Duration, message string) {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-c:
		require.FailNow(t, "channel closed within "+duration.String(), message)
	case <-timer.C:
	}
}

func RequireComponentsReadyBefore(t testing.TB, duration time.Duration, components ...module.ReadyDoneAware) {
	RequireCloseBefore(t, util.AllReady(components...), duration, "components not ready")
}

func RequireComponentsDoneBefore(t testing.TB, duration time.Duration, components ...module.ReadyDoneAware) {
	RequireCloseBefore(t, util.AllDone(components...), duration, "components not done")
}
