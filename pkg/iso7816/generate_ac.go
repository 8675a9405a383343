package iso7816

import (
	"fmt"
)

// GENERATE AC COMMAND LOGIC (EMV Book 3):
// The GENERATE AC command (CLA '80', INS 'AE') asks the card to compute an
// Application Cryptogram over transaction data supplied in the body
// (ordinarily built from CDOL1).
//
// P1 is the reference control parameter: its two high bits select the
// cryptogram type the terminal requests. The card may downgrade but never
// upgrade the request.

// Cryptogram types for the GENERATE AC reference control parameter (P1).
const (
	ACTypeAAC  byte = 0x00 // Application Authentication Cryptogram (decline)
	ACTypeTC   byte = 0x40 // Transaction Certificate (offline approval)
	ACTypeARQC byte = 0x80 // Authorisation Request Cryptogram (go online)
)

// NewGenerateACCommand creates a GENERATE AC command requesting the given
// cryptogram type over the supplied transaction data. The command is a
// Case 4 APDU: the response template is expected back, so Le is set to
// the short-form maximum.
func NewGenerateACCommand(cla Class, acType byte, data []byte) (*CommandAPDU, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("GENERATE AC requires transaction data")
	}

	ins, _ := NewInstruction(INS_GENERATE_AC)
	return NewCommandAPDU(cla, ins, acType, 0x00, data, MaxShortLe), nil
}
