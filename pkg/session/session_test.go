package session

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/gregLibert/emvcap/pkg/tlv"
)

// scriptedCard answers known command APDUs from a canned table; anything
// unexpected gets "instruction not supported".
type scriptedCard struct {
	responses map[string]string
	fail      bool
}

func (c *scriptedCard) Transmit(cmd []byte) ([]byte, error) {
	if c.fail {
		return nil, fmt.Errorf("reader removed")
	}

	if resp, ok := c.responses[fmt.Sprintf("%X", cmd)]; ok {
		return tlv.Hex(resp), nil
	}
	return tlv.Hex("6D00"), nil
}

const (
	cmdSelectPSE  = "00A404000E315041592E5359532E4444463031"
	cmdSelectPPSE = "00A404000E325041592E5359532E4444463031"
	cmdReadRec1   = "00B2010C00"
	cmdReadRec2   = "00B2020C00"
	cmdSelectApp  = "00A4040007A0000000031010"
	cmdVerifyPIN  = "0020008008241234FFFFFFFFFF"
	cmdGetATC     = "80CA9F3600"
	cmdGetLastATC = "80CA9F1300"
	cmdGetPTC     = "80CA9F1700"
)

// newScriptedCard builds a card with one application behind the PSE.
func newScriptedCard() *scriptedCard {
	return &scriptedCard{responses: map[string]string{
		// PSE with directory SFI 1; the PPSE is absent.
		cmdSelectPSE:  "6F15840E315041592E5359532E4444463031A50388010190 00",
		cmdSelectPPSE: "6A82",
		// One directory record, then record-not-found.
		cmdReadRec1: "70156113" + "4F07A0000000031010" + "5008424152434C415953" + "9000",
		cmdReadRec2: "6A83",
		// The application itself.
		cmdSelectApp: "6F158407A0000000031010A50A5008424152434C415953" + "9000",
		cmdVerifyPIN: "9000",
		// Metadata: ATC and PIN try counter present, last online ATC not.
		cmdGetATC:     "9F3602002A" + "9000",
		cmdGetLastATC: "6A88",
		cmdGetPTC:     "9F170103" + "9000",
	}}
}

var testAID = tlv.Hex("A0000000031010")

func TestListApplications(t *testing.T) {
	sess := New(newScriptedCard())

	apps, err := sess.ListApplications()
	if err != nil {
		t.Fatalf("ListApplications failed: %v", err)
	}

	if len(apps) != 1 {
		t.Fatalf("expected 1 application, got %d", len(apps))
	}
	if !bytes.Equal(apps[0].AID, testAID) {
		t.Errorf("AID: got % X, want % X", apps[0].AID, testAID)
	}
	if string(apps[0].ApplicationLabel) != "BARCLAYS" {
		t.Errorf("label: got %q", apps[0].ApplicationLabel)
	}

	if sess.State() != Idle {
		t.Errorf("listing must not change state, got %v", sess.State())
	}
}

func TestListApplications_FallbackScan(t *testing.T) {
	// No PSE at all: the card only answers direct selection of one AID.
	card := &scriptedCard{responses: map[string]string{
		cmdSelectApp: "6F158407A0000000031010A50A5008424152434C415953" + "9000",
	}}
	sess := New(card)

	apps, err := sess.ListApplications()
	if err != nil {
		t.Fatalf("ListApplications failed: %v", err)
	}

	if len(apps) != 1 {
		t.Fatalf("expected 1 application, got %d", len(apps))
	}
	if !bytes.Equal(apps[0].AID, testAID) {
		t.Errorf("AID: got % X, want % X", apps[0].AID, testAID)
	}

	if sess.State() != Idle {
		t.Errorf("scan selections must be rewound, got state %v", sess.State())
	}
}

func TestSelectApplication(t *testing.T) {
	sess := New(newScriptedCard())

	fci, err := sess.SelectApplication(testAID)
	if err != nil {
		t.Fatalf("SelectApplication failed: %v", err)
	}

	if sess.State() != AppSelected {
		t.Errorf("state: got %v, want AppSelected", sess.State())
	}
	if !bytes.Equal(sess.ADF(), testAID) {
		t.Errorf("ADF: got % X, want % X", sess.ADF(), testAID)
	}
	if string(fci.ProprietaryTemplate.ApplicationLabel) != "BARCLAYS" {
		t.Errorf("label: got %q", fci.ProprietaryTemplate.ApplicationLabel)
	}
}

func TestSelectApplication_Missing(t *testing.T) {
	card := newScriptedCard()
	card.responses["00A4040007A0000000041010"] = "6A82" // file not found
	sess := New(card)

	_, err := sess.SelectApplication(tlv.Hex("A0000000041010"))

	var missing *MissingApp
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingApp, got %v", err)
	}
	if sess.State() != Idle {
		t.Errorf("failed selection must not change state, got %v", sess.State())
	}
}

func TestOperationsRequireSelection(t *testing.T) {
	sess := New(newScriptedCard())

	if _, err := sess.ReadRecord(1, 1); !errors.Is(err, ErrNoAppSelected) {
		t.Errorf("ReadRecord: expected ErrNoAppSelected, got %v", err)
	}
	if err := sess.VerifyPIN("1234"); !errors.Is(err, ErrNoAppSelected) {
		t.Errorf("VerifyPIN: expected ErrNoAppSelected, got %v", err)
	}
	if _, err := sess.GetMetadata(); !errors.Is(err, ErrNoAppSelected) {
		t.Errorf("GetMetadata: expected ErrNoAppSelected, got %v", err)
	}
	if _, err := sess.GenerateAC(make([]byte, 29)); !errors.Is(err, ErrNoAppSelected) {
		t.Errorf("GenerateAC: expected ErrNoAppSelected, got %v", err)
	}
}

func TestVerifyPIN(t *testing.T) {
	tests := []struct {
		name  string
		sw    string
		check func(t *testing.T, err error)
	}{
		{
			name: "accepted",
			sw:   "9000",
			check: func(t *testing.T, err error) {
				if err != nil {
					t.Errorf("expected success, got %v", err)
				}
			},
		},
		{
			name: "wrong PIN with 2 tries left",
			sw:   "63C2",
			check: func(t *testing.T, err error) {
				var invalid *InvalidPIN
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidPIN, got %v", err)
				}
				if invalid.TriesLeft != 2 {
					t.Errorf("tries left: got %d, want 2", invalid.TriesLeft)
				}
			},
		},
		{
			name: "blocked",
			sw:   "6983",
			check: func(t *testing.T, err error) {
				var blocked *PINBlocked
				if !errors.As(err, &blocked) {
					t.Fatalf("expected PINBlocked, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := newScriptedCard()
			card.responses[cmdVerifyPIN] = tt.sw

			sess := New(card)
			if _, err := sess.SelectApplication(testAID); err != nil {
				t.Fatalf("SelectApplication failed: %v", err)
			}

			tt.check(t, sess.VerifyPIN("1234"))
		})
	}
}

func TestGetMetadata(t *testing.T) {
	sess := New(newScriptedCard())
	if _, err := sess.SelectApplication(testAID); err != nil {
		t.Fatalf("SelectApplication failed: %v", err)
	}

	meta, err := sess.GetMetadata()
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}

	if meta.ATC == nil || *meta.ATC != 42 {
		t.Errorf("ATC: got %v, want 42", meta.ATC)
	}
	if meta.PINTryCounter == nil || *meta.PINTryCounter != 3 {
		t.Errorf("PIN try counter: got %v, want 3", meta.PINTryCounter)
	}
	if meta.LastOnlineATC != nil {
		t.Errorf("last online ATC should be absent, got %d", *meta.LastOnlineATC)
	}
}

func TestTransportFaultIsSticky(t *testing.T) {
	card := newScriptedCard()
	sess := New(card)

	card.fail = true
	_, err := sess.SelectApplication(testAID)

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}

	// Even with the reader back, the session stays dead.
	card.fail = false
	_, err = sess.SelectApplication(testAID)

	var faulted *SessionFaulted
	if !errors.As(err, &faulted) {
		t.Fatalf("expected SessionFaulted, got %v", err)
	}
	if sess.State() != Faulted {
		t.Errorf("state: got %v, want Faulted", sess.State())
	}
}
