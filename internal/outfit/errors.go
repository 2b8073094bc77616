package outfit

import (
	"errors"
	"fmt"
)

type ViolationKind string

const (
	MissingField             ViolationKind = "MissingField"
	ColorPreferenceIgnored   ViolationKind = "ColorPreferenceIgnored"
	UnwantedDefaultColor     ViolationKind = "UnwantedDefaultColor"
	IncompleteOccasionDetail ViolationKind = "IncompleteOccasionDetail"
	OccasionInappropriate    ViolationKind = "OccasionInappropriate"
)

// UpstreamError is a transport, auth or non-2xx failure from a backend.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type MalformedOutputError struct {
	Preview string
	Err     error
}

func (e *MalformedOutputError) Error() string {
	if e.Preview == "" {
		return fmt.Sprintf("malformed model output: %v", e.Err)
	}
	return fmt.Sprintf("malformed model output: %v (text: %s)", e.Err, e.Preview)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

type ValidationError struct {
	Kind    ViolationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

func IsMalformed(err error) bool {
	var target *MalformedOutputError
	return errors.As(err, &target)
}

func AsValidation(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
