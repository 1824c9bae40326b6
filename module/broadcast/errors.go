package broadcast

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// EndpointError is the failure of a single broadcast endpoint.
type EndpointError struct {
	Endpoint string
	Err      error
}

func NewEndpointError(endpoint string, err error) error {
	return EndpointError{Endpoint: endpoint, Err: err}
}

func (e EndpointError) Error() string {
	return fmt.Sprintf("broadcast to %s failed: %s", e.Endpoint, e.Err.Error())
}

func (e EndpointError) Unwrap() error { return e.Err }

// AllBroadcastsFailedError is returned when no endpoint managed to get the transaction included.
// The on-chain sequence of the account is unknown afterwards.
type AllBroadcastsFailedError struct {
	errs *multierror.Error
}

func NewAllBroadcastsFailedError(errs *multierror.Error) error {
	return AllBroadcastsFailedError{errs: errs}
}

func (e AllBroadcastsFailedError) Error() string {
	return fmt.Sprintf("all broadcasts failed: %s", e.errs.Error())
}

func (e AllBroadcastsFailedError) Unwrap() error { return e.errs }

// Errors returns the individual endpoint errors.
func (e AllBroadcastsFailedError) Errors() []error {
	if e.errs == nil {
		return nil
	}
	return e.errs.Errors
}

// IsAllBroadcastsFailedError returns whether err is an AllBroadcastsFailedError
func IsAllBroadcastsFailedError(err error) bool {
	var e AllBroadcastsFailedError
	return errors.As(err, &e)
}
