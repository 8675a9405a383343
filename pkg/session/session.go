package session

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gregLibert/emvcap/pkg/emv"
	"github.com/gregLibert/emvcap/pkg/iso7816"
	"github.com/gregLibert/emvcap/pkg/tlv"
)

// State is the position of a Session in its lifecycle.
type State int

const (
	// Idle: no application selected yet. Only discovery operations
	// (ListApplications, SelectApplication) are valid.
	Idle State = iota
	// AppSelected: a SELECT by name succeeded; record reads, PIN
	// verification and cryptogram generation are now valid.
	AppSelected
	// Faulted: an unrecoverable error was observed. Every further
	// operation fails fast with SessionFaulted.
	Faulted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case AppSelected:
		return "AppSelected"
	case Faulted:
		return "Faulted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session drives the EMV command flow over a card connection. It owns the
// protocol state (which application is selected) and classifies card
// responses into typed errors; it never retries and never logs.
//
// A Session is exclusively owned by one caller at a time. Concurrent use
// is a programming error and is not protected against.
type Session struct {
	client *iso7816.Client

	cla    iso7816.Class // interindustry class 0x00
	emvCla iso7816.Class // proprietary class 0x80 (GET DATA, GENERATE AC)

	state State
	adf   []byte
	fci   *emv.FCI
}

// New creates a Session over a card transport.
func New(card iso7816.Transmitter) *Session {
	cla, _ := iso7816.NewClass(0x00)
	emvCla, _ := iso7816.NewClass(0x80)

	return &Session{
		client: iso7816.NewClient(card),
		cla:    cla,
		emvCla: emvCla,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// ADF returns the name of the currently selected application, or nil.
func (s *Session) ADF() []byte {
	return s.adf
}

// FCI returns the File Control Information of the currently selected
// application, or nil.
func (s *Session) FCI() *emv.FCI {
	return s.fci
}

// exchange sends one logical command. A failure below the APDU layer
// (reader gone, card pulled, malformed response framing) faults the
// session permanently; status words are left for the caller to classify.
func (s *Session) exchange(cmd *iso7816.CommandAPDU) (iso7816.Trace, error) {
	if s.state == Faulted {
		return nil, &SessionFaulted{}
	}

	trace, err := s.client.Send(cmd)
	if err != nil {
		s.state = Faulted
		return nil, &TransportError{Cause: err}
	}
	return trace, nil
}

// SelectApplication selects an application by its DF name (AID) and caches
// the parsed FCI. A file-not-found answer maps to MissingApp and leaves
// the session state untouched, so discovery flows can try the next
// candidate.
func (s *Session) SelectApplication(adf []byte) (*emv.FCI, error) {
	trace, err := s.exchange(iso7816.SelectByAID(s.cla, adf))
	if err != nil {
		return nil, err
	}

	sw := trace.Status()
	switch {
	case sw == iso7816.SW_ERR_FILE_NOT_FOUND:
		return nil, &MissingApp{ADF: adf}
	case !sw.IsSuccess():
		return nil, statusError(sw)
	}

	fci, err := emv.ParseFCI(trace.Body())
	if err != nil {
		return nil, fmt.Errorf("selected %X but FCI is unreadable: %w", adf, err)
	}

	s.state = AppSelected
	s.adf = append([]byte(nil), adf...)
	s.fci = fci
	return fci, nil
}

// ReadRecord reads one record of the given short file identifier from the
// currently selected application and decodes it as a TLV tree.
func (s *Session) ReadRecord(sfi, record byte) (tlv.Tree, error) {
	if s.state != AppSelected {
		if s.state == Faulted {
			return nil, &SessionFaulted{}
		}
		return nil, ErrNoAppSelected
	}

	return s.readRecord(sfi, record)
}

// readRecord is ReadRecord without the selection precondition; the PSE
// sweep reads directory records before any application is selected.
func (s *Session) readRecord(sfi, record byte) (tlv.Tree, error) {
	trace, err := s.exchange(iso7816.ReadRecord(s.cla, sfi, record))
	if err != nil {
		return nil, err
	}

	if sw := trace.Status(); !sw.IsSuccess() {
		return nil, statusError(sw)
	}

	tree, err := tlv.Decode(trace.Body())
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// VerifyPIN sends the PIN to the card as a plaintext ISO 9564-1 format-2
// block. The PIN string is used only for the duration of the call.
func (s *Session) VerifyPIN(pin string) error {
	if s.state != AppSelected {
		if s.state == Faulted {
			return &SessionFaulted{}
		}
		return ErrNoAppSelected
	}

	cmd, err := iso7816.VerifyPIN(s.cla, pin)
	if err != nil {
		return err
	}

	trace, err := s.exchange(cmd)
	if err != nil {
		return err
	}

	sw := trace.Status()
	switch {
	case sw == iso7816.SW_NO_ERROR:
		return nil
	case sw == iso7816.SW_ERR_AUTH_METHOD_BLOCKED:
		return &PINBlocked{}
	case sw.IsCounter():
		return &InvalidPIN{TriesLeft: int(sw.SW2() & 0x0F)}
	default:
		return statusError(sw)
	}
}

// Metadata carries the card counters reachable via GET DATA. Objects the
// card does not expose are left nil; their absence is not an error.
type Metadata struct {
	ATC           *uint16
	LastOnlineATC *uint16
	PINTryCounter *uint8
}

// GetMetadata reads the ATC, the last online ATC register and the PIN try
// counter from the selected application.
func (s *Session) GetMetadata() (*Metadata, error) {
	if s.state != AppSelected {
		if s.state == Faulted {
			return nil, &SessionFaulted{}
		}
		return nil, ErrNoAppSelected
	}

	meta := &Metadata{}

	if v, err := s.getDataOptional(0x9F, 0x36); err != nil {
		return nil, err
	} else if len(v) >= 2 {
		atc := binary.BigEndian.Uint16(v[:2])
		meta.ATC = &atc
	}

	if v, err := s.getDataOptional(0x9F, 0x13); err != nil {
		return nil, err
	} else if len(v) >= 2 {
		last := binary.BigEndian.Uint16(v[:2])
		meta.LastOnlineATC = &last
	}

	if v, err := s.getDataOptional(0x9F, 0x17); err != nil {
		return nil, err
	} else if len(v) >= 1 {
		tries := v[0]
		meta.PINTryCounter = &tries
	}

	return meta, nil
}

// getDataOptional is getData with card-level refusals flattened to "not
// present": a card is free to withhold any of these objects.
func (s *Session) getDataOptional(tagHi, tagLo byte) ([]byte, error) {
	v, err := s.getData(tagHi, tagLo)
	if err != nil {
		var status *ErrorResponse
		if errors.As(err, &status) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// getData fetches one primitive data object and unwraps its TLV envelope.
func (s *Session) getData(tagHi, tagLo byte) ([]byte, error) {
	trace, err := s.exchange(iso7816.NewGetDataCommand(s.emvCla, tagHi, tagLo))
	if err != nil {
		return nil, err
	}

	if sw := trace.Status(); !sw.IsSuccess() {
		return nil, statusError(sw)
	}

	tree, err := tlv.Decode(trace.Body())
	if err != nil {
		return nil, err
	}

	if node, ok := tree.Find([]byte{tagHi, tagLo}); ok {
		return node.Value, nil
	}
	return nil, fmt.Errorf("GET DATA response missing tag %02X%02X", tagHi, tagLo)
}

// GenerateAC asks the card for an ARQC over the given transaction data and
// returns the decoded response template (tag '80' format 1 or tag '77'
// format 2).
func (s *Session) GenerateAC(data []byte) (tlv.Tree, error) {
	if s.state != AppSelected {
		if s.state == Faulted {
			return nil, &SessionFaulted{}
		}
		return nil, ErrNoAppSelected
	}

	cmd, err := iso7816.NewGenerateACCommand(s.emvCla, iso7816.ACTypeARQC, data)
	if err != nil {
		return nil, err
	}

	trace, err := s.exchange(cmd)
	if err != nil {
		return nil, err
	}

	if sw := trace.Status(); !sw.IsSuccess() {
		return nil, statusError(sw)
	}

	tree, err := tlv.Decode(trace.Body())
	if err != nil {
		return nil, err
	}
	return tree, nil
}
