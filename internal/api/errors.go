package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation so callers can pick a user-facing
// message without string matching.
type Kind int

const (
	// KindConnectivity covers transport failures, unexpected statuses and
	// malformed responses. State is left unchanged so the user may retry.
	KindConnectivity Kind = iota
	// KindValidation covers input rejected before any network call
	// (empty cart, malformed credentials).
	KindValidation
	// KindAuth covers credential rejection (HTTP 422 on login) and
	// operations attempted without a token.
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	default:
		return "connectivity"
	}
}

// Error carries a kind and a message suitable for direct display.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the kind of err, defaulting to connectivity for errors
// that did not originate in this package.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindConnectivity
}

// Message returns the displayable message of err, falling back to a
// generic connection message.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Msg
	}
	return "could not reach the server"
}

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func authError(msg string, err error) error {
	return &Error{Kind: KindAuth, Msg: msg, Err: err}
}

func connectivityError(msg string, err error) error {
	return &Error{Kind: KindConnectivity, Msg: msg, Err: err}
}
