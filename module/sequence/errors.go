package sequence

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by Next before the cache was initialized from the chain.
var ErrNotInitialized = errors.New("sequence cache has not been initialized")

// UpstreamUnavailableError indicates that the authoritative account state could not be read
// from the chain. Without it, no further transaction can be signed safely.
type UpstreamUnavailableError struct {
	Address string
	Err     error
}

func NewUpstreamUnavailableError(address string, err error) error {
	return UpstreamUnavailableError{Address: address, Err: err}
}

func (e UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("could not query sign data of %s: %s", e.Address, e.Err.Error())
}

func (e UpstreamUnavailableError) Unwrap() error { return e.Err }

// IsUpstreamUnavailableError returns whether err is an UpstreamUnavailableError
func IsUpstreamUnavailableError(err error) bool {
	var e UpstreamUnavailableError
	return errors.As(err, &e)
}
