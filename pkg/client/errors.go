package client

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmitTimedOut: the request may have reached the venue but no
	// answer was observed. The nonce is possibly consumed; query TxStatus
	// before resubmitting.
	ErrSubmitTimedOut = errors.New("submission timed out, outcome unknown")

	// ErrNotRepresentable: a decimal value does not convert exactly into the
	// venue's fixed-point integer units.
	ErrNotRepresentable = errors.New("value not representable in venue units")
)

// TransportError is a transport-level submission failure. Retryable is true
// only for failures that happened before the request could have reached the
// venue; Sent is true when the request went on the wire but the response was
// lost, which makes the outcome ambiguous.
type TransportError struct {
	Err       error
	Retryable bool
	Sent      bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// VenueError is a rejection returned by the venue. It is surfaced verbatim
// and never retried.
type VenueError struct {
	Code    string
	Message string
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("venue rejected transaction: %s (%s)", e.Message, e.Code)
}

// PartialGroupError reports a group whose members were submitted sequentially
// and failed after at least one member had been accepted. The accepted
// members cannot be rolled back client-side; the caller must reconcile
// against the venue.
type PartialGroupError struct {
	GroupID   uint64
	Accepted  []TxResult // members the venue accepted, in group position order
	FailedPos int        // position of the member that failed
	Err       error
}

func (e *PartialGroupError) Error() string {
	return fmt.Sprintf("group %d partially submitted: member %d failed after %d accepted: %v",
		e.GroupID, e.FailedPos, len(e.Accepted), e.Err)
}

func (e *PartialGroupError) Unwrap() error { return e.Err }
