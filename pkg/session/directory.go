package session

import (
	"errors"

	"github.com/gregLibert/emvcap/pkg/emv"
	"github.com/gregLibert/emvcap/pkg/iso7816"
	"github.com/gregLibert/emvcap/pkg/tlv"
)

// Payment System Environment directory names (EMV Book 1).
var (
	PSE  = []byte("1PAY.SYS.DDF01")
	PPSE = []byte("2PAY.SYS.DDF01")
)

// candidateAIDs is the fallback scan list used when the card carries no
// payment system directory. These are the scheme AIDs commonly found on
// European debit and credit cards.
var candidateAIDs = [][]byte{
	tlv.Hex("A0000000031010"), // Visa credit/debit
	tlv.Hex("A0000000032010"), // Visa Electron
	tlv.Hex("A0000000041010"), // Mastercard credit/debit
	tlv.Hex("A0000000043060"), // Maestro
	tlv.Hex("A0000000250000"), // American Express
	tlv.Hex("A0000000291010"), // LINK ATM network
}

// ListApplications enumerates the applications on the card. It walks the
// PSE and PPSE directories first (SELECT by name, then a READ RECORD sweep
// of the directory SFI); if neither directory exists it falls back to
// probing the candidate AID list. Directory entries are returned in
// encounter order. The session state is left as it was.
func (s *Session) ListApplications() ([]emv.ApplicationTemplate, error) {
	if s.state == Faulted {
		return nil, &SessionFaulted{}
	}

	var apps []emv.ApplicationTemplate
	for _, name := range [][]byte{PSE, PPSE} {
		entries, err := s.readDirectory(name)
		if err != nil {
			var missing *MissingApp
			var status *ErrorResponse
			if errors.As(err, &missing) || errors.As(err, &status) {
				continue
			}
			return nil, err
		}
		apps = append(apps, entries...)
	}

	if len(apps) == 0 {
		return s.scanCandidateAIDs()
	}
	return apps, nil
}

// restoreState rewinds the cached selection after a discovery flow that
// probed applications the caller did not ask for.
func (s *Session) restoreState(state State, adf []byte, fci *emv.FCI) {
	if s.state == Faulted {
		return
	}
	s.state = state
	s.adf = adf
	s.fci = fci
}

// readDirectory selects one payment system directory by name and reads its
// records until the card reports record-not-found.
func (s *Session) readDirectory(name []byte) ([]emv.ApplicationTemplate, error) {
	trace, err := s.exchange(iso7816.SelectByAID(s.cla, name))
	if err != nil {
		return nil, err
	}

	sw := trace.Status()
	switch {
	case sw == iso7816.SW_ERR_FILE_NOT_FOUND:
		return nil, &MissingApp{ADF: name}
	case !sw.IsSuccess():
		return nil, statusError(sw)
	}

	fci, err := emv.ParseFCI(trace.Body())
	if err != nil {
		return nil, err
	}

	sfiBytes := fci.ProprietaryTemplate.SFI
	if len(sfiBytes) == 0 {
		return nil, nil
	}
	sfi := sfiBytes[0]

	var apps []emv.ApplicationTemplate
	for record := byte(1); record <= 31; record++ {
		tree, err := s.readRecord(sfi, record)
		if err != nil {
			var status *ErrorResponse
			if errors.As(err, &status) && status.SW == iso7816.SW_ERR_RECORD_NOT_FOUND {
				break
			}
			return nil, err
		}

		entries, err := directoryEntries(tree)
		if err != nil {
			return nil, err
		}
		apps = append(apps, entries...)
	}

	return apps, nil
}

// directoryEntries extracts every Application Template (tag '61') from a
// decoded directory record. Records repeat tag '61' for multi-application
// cards, so all matches are collected, not just the first.
func directoryEntries(tree tlv.Tree) ([]emv.ApplicationTemplate, error) {
	record, ok := tree.FindHex("70")
	if !ok {
		return nil, nil
	}

	var apps []emv.ApplicationTemplate
	for _, entry := range record.Children.FindAll([]byte{0x61}) {
		encoded, err := tlv.Encode(entry.Children)
		if err != nil {
			return nil, err
		}

		var app emv.ApplicationTemplate
		if err := tlv.Unmarshal(encoded, &app); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// scanCandidateAIDs probes the well-known AID list by direct selection.
// Cards without a PSE answer file-not-found for the absent ones. The
// selections made while probing are not kept: the session state is
// rewound once the scan finishes.
func (s *Session) scanCandidateAIDs() ([]emv.ApplicationTemplate, error) {
	defer s.restoreState(s.state, s.adf, s.fci)

	var apps []emv.ApplicationTemplate
	for _, aid := range candidateAIDs {
		fci, err := s.SelectApplication(aid)
		if err != nil {
			var missing *MissingApp
			var status *ErrorResponse
			if errors.As(err, &missing) || errors.As(err, &status) {
				continue
			}
			return nil, err
		}

		apps = append(apps, emv.ApplicationTemplate{
			AID:              append([]byte(nil), aid...),
			ApplicationLabel: fci.ProprietaryTemplate.ApplicationLabel,
		})
	}
	return apps, nil
}
