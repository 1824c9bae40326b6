package util

import (
	"github.com/noislabs/drand-relay/module"
)

// AllReady returns a channel closed once all components are ready.
func AllReady(components ...module.ReadyDoneAware) <-chan struct{} {
	chans := make([]<-chan struct{}, 0, len(components))
	for _, c := range components {
		chans = append(chans, c.Ready())
	}
	return AllClosed(chans...)
}

// AllDone returns a channel closed once all components are done.
func AllDone(components ...module.ReadyDoneAware) <-chan struct{} {
	chans := make([]<-chan struct{}, 0, len(components))
	for _, c := range components {
		chans = append(chans, c.Done())
	}
	return AllClosed(chans...)
}

// AllClosed returns a channel closed once all given channels are closed.
func AllClosed(channels ...<-chan struct{}) <-chan struct{} {
	all := make(chan struct{})
	go func() {
		for _, ch := range channels {
			<-ch
		}
		close(all)
	}()
	return all
}

// WaitError blocks until an error arrives on errChan or done is closed, and returns the error
// or nil. An error that is already pending when done closes is still returned: a worker that
// throws also ends up closing done, and both channels may be ready at once.
func WaitError(errChan <-chan error, done <-chan struct{}) error {
	select {
	case err := <-errChan:
		return err
	case <-done:
	}
	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}
