package models

import (
	"errors"
	"strings"
)

var (
	ErrUnknownFormat      = errors.New("unknown telemetry format")
	ErrInvalidValue       = errors.New("invalid telemetry value")
	ErrTransientFetch     = errors.New("transient fetch failure")
	ErrFatalFetch         = errors.New("fetch failed")
	ErrMissingParameters  = errors.New("missing parameters")
	ErrUpstreamQuery      = errors.New("upstream query failed")
	ErrUnknownCacheAction = errors.New("unknown cache action")
)

// MissingParametersError names the required parameters absent from a request.
type MissingParametersError struct {
	Params []string
}

func (e *MissingParametersError) Error() string {
	return "missing parameters: " + strings.Join(e.Params, ", ")
}

func (e *MissingParametersError) Is(target error) bool {
	return target == ErrMissingParameters
}
