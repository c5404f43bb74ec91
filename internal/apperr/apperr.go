// Package apperr defines the error taxonomy shared by the API client,
// the mutation coordinators, and the UI shell.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for UI surfacing.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindServer
	KindValidation
	KindNotFound
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkError"
	case KindServer:
		return "ServerError"
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	default:
		return "UnknownError"
	}
}

// GenericNetworkMessage is shown when a request could not complete and
// there is nothing more specific to say.
const GenericNetworkMessage = "network request failed; check your connection"

// Error is the normalized error returned to callers of the state layer.
type Error struct {
	Kind Kind

	// Status is the HTTP status that produced the error, 0 if none.
	Status int

	// Message is human readable and safe to show in the UI.
	Message string

	// Op, Entity and ID describe what was being attempted
	// (e.g. "update", "task", "t1"). Filled in by coordinators.
	Op     string
	Entity string
	ID     string

	// Field names the offending input field for validation errors.
	Field string

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" || e.Entity != "" {
		b.WriteString(strings.TrimSpace(e.Op + " " + e.Entity))
		if e.ID != "" {
			fmt.Fprintf(&b, " %s", e.ID)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Status > 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Network builds a NetworkError around a transport failure.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: GenericNetworkMessage, Err: err}
}

// Server builds a ServerError from a status code and message.
func Server(status int, message string) *Error {
	if strings.TrimSpace(message) == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = "server error"
	}
	return &Error{Kind: KindServer, Status: status, Message: message}
}

// Malformed reports a response that does not match the expected shape.
func Malformed(status int, detail string) *Error {
	return &Error{Kind: KindServer, Status: status, Message: "malformed response: " + detail}
}

// NotFound builds a NotFoundError.
func NotFound(message string) *Error {
	if message == "" {
		message = "not found"
	}
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

// Validation builds a ValidationError for a single field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// As returns err as *Error if anything in its chain is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsAuth reports whether the backend rejected the session credential.
func IsAuth(err error) bool {
	e, ok := As(err)
	if !ok {
		return false
	}
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Wrap normalizes err into a single *Error carrying the operation
// context. The original error stays reachable through Unwrap.
func Wrap(op, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	e, ok := As(err)
	if !ok {
		return &Error{Kind: KindUnknown, Message: err.Error(), Op: op, Entity: entity, ID: id, Err: err}
	}
	out := *e
	out.Op = op
	out.Entity = entity
	out.ID = id
	out.Err = e
	return &out
}

// Message returns the text the UI should show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
