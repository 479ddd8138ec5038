package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyOpen is returned when the user already owns a ticket that is not closed.
	ErrAlreadyOpen = errors.New("ticket already open")

	// ErrAlreadyClosed is returned when a close is requested for a closed or closing ticket.
	ErrAlreadyClosed = errors.New("ticket already closed")

	// ErrNotFound is returned when the channel has no ticket.
	ErrNotFound = errors.New("ticket not found")

	// ErrConfigurationMissing is returned when the guild has not set up ticketing.
	ErrConfigurationMissing = errors.New("ticketing is not configured")

	// ErrStaleEntry is returned when an open button is pressed on a message
	// other than the configured entry message.
	ErrStaleEntry = errors.New("not the configured entry message")

	// ErrAdapterFailure is matched by every AdapterError.
	ErrAdapterFailure = errors.New("platform call failed")

	// ErrInconsistent is returned when the store and the platform disagree,
	// for example when a delayed effect finds its ticket gone. It is benign.
	ErrInconsistent = errors.New("ticket record and platform disagree")

	// ErrChannelGone is returned by adapters when the channel no longer exists.
	ErrChannelGone = errors.New("channel does not exist")
)

// AlreadyOpenError references the ticket that blocked a create request.
type AlreadyOpenError struct {
	// ChannelID is the channel of the open ticket.
	ChannelID string
}

func (e *AlreadyOpenError) Error() string {
	return fmt.Sprintf("%s in channel %s", ErrAlreadyOpen, e.ChannelID)
}

func (e *AlreadyOpenError) Is(target error) bool {
	return target == ErrAlreadyOpen
}

// AdapterError wraps a failed platform call.
type AdapterError struct {
	// Op is the platform operation that failed.
	Op string

	// Err is the platform error.
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrAdapterFailure, e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func (e *AdapterError) Is(target error) bool {
	return target == ErrAdapterFailure
}

// ResultKind is what the requester is told about a request.
type ResultKind string

const (
	ResultSuccess              ResultKind = "success"
	ResultAlreadyOpen          ResultKind = "already_open"
	ResultAlreadyClosed        ResultKind = "already_closed"
	ResultNotFound             ResultKind = "not_found"
	ResultConfigurationMissing ResultKind = "configuration_missing"
	ResultInternalError        ResultKind = "internal_error"

	// ResultIgnored is never shown to the requester.
	ResultIgnored ResultKind = "ignored"
)

// KindOf maps the error of a request to the result shown to the requester.
func KindOf(err error) ResultKind {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, ErrAlreadyOpen):
		return ResultAlreadyOpen
	case errors.Is(err, ErrAlreadyClosed):
		return ResultAlreadyClosed
	case errors.Is(err, ErrNotFound):
		return ResultNotFound
	case errors.Is(err, ErrConfigurationMissing):
		return ResultConfigurationMissing
	case errors.Is(err, ErrStaleEntry), errors.Is(err, ErrInconsistent):
		return ResultIgnored
	default:
		return ResultInternalError
	}
}
