package cap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gregLibert/emvcap/pkg/session"
	"github.com/gregLibert/emvcap/pkg/tlv"
)

// scriptedCard plays back a full PINsentry conversation: directory walk,
// application selection, PIN verification and cryptogram generation.
type scriptedCard struct {
	responses map[string]string
}

func (c *scriptedCard) Transmit(cmd []byte) ([]byte, error) {
	if resp, ok := c.responses[fmt.Sprintf("%X", cmd)]; ok {
		return tlv.Hex(resp), nil
	}
	return tlv.Hex("6D00"), nil
}

func newPINsentryCard() *scriptedCard {
	return &scriptedCard{responses: map[string]string{
		// PSE directory with a single application; no PPSE.
		"00A404000E315041592E5359532E4444463031": "6F15840E315041592E5359532E4444463031A5038801019000",
		"00A404000E325041592E5359532E4444463031": "6A82",
		"00B2010C00": "701561134F07A00000000310105008424152434C4159539000",
		"00B2020C00": "6A83",
		// Application selection and PIN verification.
		"00A4040007A0000000031010": "6F158407A0000000031010A50A5008424152434C4159539000",
		"0020008008241234FFFFFFFFFF": "9000",
		// GENERATE AC over the challenge-only transaction block.
		"80AE80001D" + "0000000000000000000000000000" + "80" + "000000000000" + "010101007890123400": "801280095F0F9D3798E93F129A060A0A03A490009000",
	}}
}

func TestGenerate(t *testing.T) {
	sess := session.New(newPINsentryCard())

	code, err := Generate(sess, "1234", Request{Challenge: "78901234"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if code != "46076570" {
		t.Errorf("got %q, want %q", code, "46076570")
	}
}

func TestGenerate_WrongPIN(t *testing.T) {
	card := newPINsentryCard()
	card.responses["0020008008241234FFFFFFFFFF"] = "63C1"

	sess := session.New(card)
	_, err := Generate(sess, "1234", Request{Challenge: "78901234"})

	var invalid *session.InvalidPIN
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidPIN, got %v", err)
	}
	if invalid.TriesLeft != 1 {
		t.Errorf("tries left: got %d, want 1", invalid.TriesLeft)
	}
}
