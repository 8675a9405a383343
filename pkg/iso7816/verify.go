package iso7816

import (
	"fmt"
)

// VERIFY COMMAND LOGIC (ISO 7816-4 / EMV Book 3):
// The VERIFY command (INS '20') compares verification data sent by the
// terminal against reference data held by the card (typically the PIN).
//
// P1 is always 0x00. P2 is the qualifier of the reference data:
// - 0x80: plaintext PIN, format per ISO 9564-1 format 2.
// - 0x88: enciphered PIN (not supported here; requires issuer keys).
//
// The card answers 0x9000 on success, '63CX' with X remaining tries on a
// wrong PIN, and 0x6983 once the retry counter is exhausted.

// PIN qualifiers for P2.
const (
	VerifyPlaintextPIN  byte = 0x80
	VerifyEncipheredPIN byte = 0x88
)

// PINBlock packs a decimal PIN string into an ISO 9564-1 format-2 block:
// a control nibble 0x2, the PIN length nibble, the PIN digits as BCD, and
// 0xF padding up to 8 bytes.
func PINBlock(pin string) ([]byte, error) {
	if len(pin) < 4 || len(pin) > 12 {
		return nil, fmt.Errorf("PIN length %d out of range (4-12)", len(pin))
	}

	block := make([]byte, 8)
	block[0] = 0x20 | byte(len(pin))
	for i := 1; i < 8; i++ {
		block[i] = 0xFF
	}

	for i := 0; i < len(pin); i++ {
		d := pin[i]
		if d < '0' || d > '9' {
			return nil, fmt.Errorf("PIN contains non-decimal character %q", d)
		}
		nibble := d - '0'
		byteIdx := 1 + i/2
		if i%2 == 0 {
			block[byteIdx] = nibble<<4 | 0x0F
		} else {
			block[byteIdx] = block[byteIdx]&0xF0 | nibble
		}
	}

	return block, nil
}

// NewVerifyCommand creates a VERIFY command for the given reference data
// qualifier (P2) and verification data.
func NewVerifyCommand(cla Class, qualifier byte, data []byte) *CommandAPDU {
	ins, _ := NewInstruction(INS_VERIFY)
	return NewCommandAPDU(cla, ins, 0x00, qualifier, data, 0)
}

// VerifyPIN creates a VERIFY command carrying the PIN as a plaintext
// ISO 9564-1 format-2 block.
func VerifyPIN(cla Class, pin string) (*CommandAPDU, error) {
	block, err := PINBlock(pin)
	if err != nil {
		return nil, err
	}
	return NewVerifyCommand(cla, VerifyPlaintextPIN, block), nil
}
