package session

import (
	"fmt"

	"github.com/gregLibert/emvcap/pkg/iso7816"
)

// TransportError reports a physical-layer fault (reader disconnected, card
// removed). It is distinct from card-level status-word errors: the card
// never saw, or never answered, the command.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ErrorResponse reports a non-success status word returned by the card.
type ErrorResponse struct {
	SW    iso7816.StatusWord
	Class iso7816.StatusClass
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("card returned [%04X]: %s", uint16(e.SW), e.SW.Verbose())
}

// MissingApp reports that a SELECT by name resolved to file-not-found. It
// is not fatal; discovery flows continue with the next candidate.
type MissingApp struct {
	ADF []byte
}

func (e *MissingApp) Error() string {
	return fmt.Sprintf("application %X not present on card", e.ADF)
}

// InvalidPIN reports a VERIFY rejected with '63CX'; X is the number of
// tries remaining before the PIN blocks.
type InvalidPIN struct {
	TriesLeft int
}

func (e *InvalidPIN) Error() string {
	return fmt.Sprintf("invalid PIN, %d tries remaining", e.TriesLeft)
}

// PINBlocked reports a VERIFY rejected with 0x6983: the retry counter is
// exhausted and the card will not accept further attempts.
type PINBlocked struct{}

func (e *PINBlocked) Error() string {
	return "PIN blocked by the card"
}

// SessionFaulted reports that the session observed an unrecoverable error
// earlier and refuses further operations.
type SessionFaulted struct{}

func (e *SessionFaulted) Error() string {
	return "session is faulted after a previous unrecoverable error"
}

// ErrNoAppSelected is returned by operations that require a successful
// SELECT of an application first.
var ErrNoAppSelected = fmt.Errorf("no application selected")

func statusError(sw iso7816.StatusWord) error {
	return &ErrorResponse{SW: sw, Class: sw.Class()}
}
