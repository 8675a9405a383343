package cap

import (
	"fmt"

	"github.com/gregLibert/emvcap/pkg/tlv"
)

// CAP token derivation (MasterCard CAP / Visa DPA scheme):
//
// The card's GENERATE AC response carries the Cryptogram Information Data,
// the ATC, the Application Cryptogram and the Issuer Application Data. The
// one-time code is obtained by masking the concatenation
//
//	CID (1) | ATC (2) | AC (8) | IAD (n)
//
// with the Issuer Proprietary Bitmap and compressing the selected bits,
// most significant first, into a single integer. The IPB itself is issuer
// data; reading it from the card (GET DATA '9F56') is usually blocked, so
// the bitmap below is the one observed on Barclays PINsentry cards. It
// selects 26 bits: the low 22 bits of the cryptogram plus 4 bits of its
// fifth byte, which keeps the token within the 8 decimal digits the
// reader displays.
var pinsentryIPB = []byte{
	0x00,             // CID
	0x00, 0x00,       // ATC
	0x00, 0x00, 0x00, 0x00, 0x3C, 0x3F, 0xFF, 0xFF, // AC
	// IAD: no bits selected
}

// cryptogramFields is the material the token is computed from, in IPB
// order.
type cryptogramFields struct {
	cid byte
	atc []byte
	ac  []byte
	iad []byte
}

// ExtractCAPValue decodes a GENERATE AC response tree into the decimal
// one-time code. Both response templates are understood: format 2 (tag
// '77', individually tagged fields) and format 1 (tag '80', fixed field
// concatenation).
func ExtractCAPValue(tree tlv.Tree) (uint32, error) {
	fields, err := responseFields(tree)
	if err != nil {
		return 0, err
	}

	// The Visa/MChip CVN profile used by the UK issuers starts the IAD
	// with a 0x06 length byte. Anything else is an IAD layout this
	// bitmap was never validated against, so refuse rather than hand
	// the user a wrong code.
	if len(fields.iad) < 2 || fields.iad[0] != 0x06 {
		return 0, &CAPError{
			Reason: ReasonUnsupportedIAD,
			Detail: fmt.Sprintf("IAD % X", fields.iad),
		}
	}

	data := make([]byte, 0, 11+len(fields.iad))
	data = append(data, fields.cid)
	data = append(data, fields.atc...)
	data = append(data, fields.ac...)
	data = append(data, fields.iad...)

	return maskBits(data, pinsentryIPB), nil
}

// responseFields pulls the cryptogram material out of either response
// template.
func responseFields(tree tlv.Tree) (*cryptogramFields, error) {
	if t2, ok := tree.FindHex("77"); ok {
		cid, okCID := t2.Children.FindHex("9F27")
		atc, okATC := t2.Children.FindHex("9F36")
		ac, okAC := t2.Children.FindHex("9F26")
		iad, okIAD := t2.Children.FindHex("9F10")
		if !okCID || !okATC || !okAC || !okIAD || len(cid.Value) < 1 {
			return nil, &CAPError{
				Reason: ReasonMissingTemplate,
				Detail: "response template 2 lacks cryptogram fields",
			}
		}
		return &cryptogramFields{
			cid: cid.Value[0],
			atc: atc.Value,
			ac:  ac.Value,
			iad: iad.Value,
		}, nil
	}

	if t1, ok := tree.FindHex("80"); ok {
		// Format 1 is a primitive blob: CID, ATC, 8-byte AC, then the
		// IAD as the remaining bytes.
		v := t1.Value
		if len(v) < 12 {
			return nil, &CAPError{
				Reason: ReasonMissingTemplate,
				Detail: fmt.Sprintf("response template 1 too short (%d bytes)", len(v)),
			}
		}
		return &cryptogramFields{
			cid: v[0],
			atc: v[1:3],
			ac:  v[3:11],
			iad: v[11:],
		}, nil
	}

	return nil, &CAPError{Reason: ReasonMissingTemplate}
}

// maskBits compresses the data bits selected by the bitmap into one
// integer, preserving bit order. Data beyond the bitmap's length is
// unselected.
func maskBits(data, bitmap []byte) uint32 {
	var out uint32
	for i, mask := range bitmap {
		if i >= len(data) {
			break
		}
		for bit := 7; bit >= 0; bit-- {
			if mask>>uint(bit)&1 == 1 {
				out = out<<1 | uint32(data[i]>>uint(bit)&1)
			}
		}
	}
	return out
}

// FormatCAPValue renders the token the way the bank's reader displays it:
// decimal, zero-padded to 8 digits.
func FormatCAPValue(v uint32) string {
	return fmt.Sprintf("%08d", v)
}
