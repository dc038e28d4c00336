package identity

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories the rest of the app is allowed
// to branch on. Callers switch on Kind, never on message text.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindConflict           Kind = "conflict"
	KindNoSession          Kind = "no_session"
	KindNetwork            Kind = "network"
)

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewInvalidCredentialsError() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "invalid email or password"}
}

func NewConflictError() *Error {
	return &Error{Kind: KindConflict, Message: "an account with this email already exists"}
}

func NewNoSessionError() *Error {
	return &Error{Kind: KindNoSession, Message: "no active session"}
}

func NewNetworkError(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: "could not reach the identity backend", cause: cause}
}

// KindOf extracts the Kind from err. Errors produced outside this package
// (including wrapped transport failures) report KindNetwork.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNetwork
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the short user-facing message for err, suitable for a
// form banner or snackbar. Never exposes transport details.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "something went wrong, please try again"
}
