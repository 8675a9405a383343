package cap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gregLibert/emvcap/pkg/iso7816"
	"github.com/gregLibert/emvcap/pkg/tlv"
)

// Request carries the optional transaction fields of a CAP computation.
// Both are decimal strings as typed by the cardholder; an empty string
// means the field is absent. An amount without a challenge is invalid:
// the bank's reader never offers that combination.
type Request struct {
	Amount    string // monetary amount with up to 2 fractional digits, e.g. "1234.56"
	Challenge string // challenge or account number, up to 8 digits
}

// The CAP profile does not read CDOL1 from the card: it sends a fixed
// 29-byte transaction block whose layout is the classic PINsentry one.
// Offsets within the block:
//
//	 0..5   Amount, Authorised (BCD minor units)
//	 6..11  Amount, Other (zero)
//	12..13  Terminal Country Code (zero)
//	14..18  Terminal Verification Results, first byte 0x80
//	        ("offline data authentication was not performed")
//	19..20  Transaction Currency Code (zero)
//	21..23  Transaction Date, fixed 01-01-01
//	24      Transaction Type (zero)
//	25..28  Unpredictable Number (BCD challenge)
const arqcBodyLen = 29

// ParseAmount converts a decimal amount string into integer minor units.
// The parse is exact: no floating point is involved, and more than two
// fractional digits are rejected rather than rounded.
func ParseAmount(s string) (int64, error) {
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}

	if whole == "" && frac == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than 2 fractional digits", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	minor, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a decimal number", s)
	}
	if minor < 0 {
		return 0, fmt.Errorf("amount %q is negative", s)
	}
	return minor, nil
}

// Body builds the 29-byte GENERATE AC payload for this request. It is a
// pure function of (Amount, Challenge).
func (r Request) Body() ([]byte, error) {
	body := make([]byte, arqcBodyLen)

	if r.Amount != "" {
		if r.Challenge == "" {
			return nil, &CAPError{Reason: ReasonAmountWithoutChallenge}
		}

		minor, err := ParseAmount(r.Amount)
		if err != nil {
			return nil, &CAPError{Reason: ReasonBadAmount, Detail: err.Error()}
		}

		bcd, err := tlv.PackBCD(strconv.FormatInt(minor, 10), 6)
		if err != nil {
			return nil, &CAPError{Reason: ReasonBadAmount, Detail: err.Error()}
		}
		copy(body[0:6], bcd)
	}

	body[14] = 0x80
	body[21], body[22], body[23] = 0x01, 0x01, 0x01

	if r.Challenge != "" {
		if len(r.Challenge) > 8 {
			return nil, &CAPError{Reason: ReasonBadChallenge, Detail: "more than 8 digits"}
		}

		bcd, err := tlv.PackBCD(r.Challenge, 4)
		if err != nil {
			return nil, &CAPError{Reason: ReasonBadChallenge, Detail: err.Error()}
		}
		copy(body[25:29], bcd)
	}

	return body, nil
}

// BuildARQCRequest builds the complete GENERATE AC command requesting an
// ARQC over the request's transaction block.
func BuildARQCRequest(r Request) (*iso7816.CommandAPDU, error) {
	body, err := r.Body()
	if err != nil {
		return nil, err
	}

	cla, _ := iso7816.NewClass(0x80)
	return iso7816.NewGenerateACCommand(cla, iso7816.ACTypeARQC, body)
}
