// Package dict is the EMV/ISO-7816 data dictionary: a static, process-wide
// table mapping tag identifiers to a name, a semantic type, and a
// sensitivity flag, plus a renderer (see render.go) that turns raw TLV
// values into display strings according to that semantic type.
//
// The table is immutable once initialized and safe for concurrent read
// access without synchronization; nothing in this package mutates it after
// init.
package dict

import (
	"encoding/hex"
	"strings"
)

// Type is the semantic interpretation attached to a Tag. Rendering
// dispatches on Type rather than on a per-tag function pointer.
type Type string

const (
	TypeBinary             Type = "binary"
	TypeText               Type = "text"
	TypeNumeric            Type = "numeric"
	TypeCompressedNumeric  Type = "compressed-numeric"
	TypeDate               Type = "date"
	TypeAmount             Type = "amount"
	TypeCountry            Type = "country"
	TypeCurrency           Type = "currency"
	TypeConstructed        Type = "constructed"
	TypeDOL                Type = "dol"
	TypeOther              Type = "other"
)

// Tag is a single entry in the data dictionary.
type Tag struct {
	ID        []byte
	Name      string
	Type      Type
	Sensitive bool
}

// Hex returns the tag identifier as an uppercase hex string, e.g. "9F10".
func (t Tag) Hex() string {
	return strings.ToUpper(hex.EncodeToString(t.ID))
}

var registry = buildRegistry()

func buildRegistry() map[string]Tag {
	entries := []Tag{
		{ID: mustHex("6F"), Name: "FCI Template", Type: TypeConstructed},
		{ID: mustHex("70"), Name: "Record Template", Type: TypeConstructed},
		{ID: mustHex("77"), Name: "Response Message Template Format 2", Type: TypeConstructed},
		{ID: mustHex("80"), Name: "Response Message Template Format 1", Type: TypeBinary},
		{ID: mustHex("61"), Name: "Application Template", Type: TypeConstructed},
		{ID: mustHex("62"), Name: "FCP Template", Type: TypeConstructed},
		{ID: mustHex("64"), Name: "FMD Template", Type: TypeConstructed},
		{ID: mustHex("A5"), Name: "FCI Proprietary Template", Type: TypeConstructed},
		{ID: mustHex("BF0C"), Name: "FCI Issuer Discretionary Data", Type: TypeConstructed},

		{ID: mustHex("4F"), Name: "Application Identifier (AID)", Type: TypeBinary},
		{ID: mustHex("50"), Name: "Application Label", Type: TypeText},
		{ID: mustHex("84"), Name: "Dedicated File (DF) Name", Type: TypeText},
		{ID: mustHex("87"), Name: "Application Priority Indicator", Type: TypeBinary},
		{ID: mustHex("88"), Name: "Short File Identifier (SFI)", Type: TypeBinary},
		{ID: mustHex("9F11"), Name: "Issuer Code Table Index", Type: TypeNumeric},
		{ID: mustHex("9F12"), Name: "Application Preferred Name", Type: TypeText},
		{ID: mustHex("5F2D"), Name: "Language Preference", Type: TypeText},
		{ID: mustHex("9F38"), Name: "Processing Options Data Object List (PDOL)", Type: TypeDOL},
		{ID: mustHex("8C"), Name: "Card Risk Management Data Object List 1 (CDOL1)", Type: TypeDOL},
		{ID: mustHex("8D"), Name: "Card Risk Management Data Object List 2 (CDOL2)", Type: TypeDOL},

		{ID: mustHex("5A"), Name: "Application Primary Account Number (PAN)", Type: TypeCompressedNumeric, Sensitive: true},
		{ID: mustHex("57"), Name: "Track 2 Equivalent Data", Type: TypeBinary, Sensitive: true},
		{ID: mustHex("5F20"), Name: "Cardholder Name", Type: TypeText, Sensitive: true},
		{ID: mustHex("5F24"), Name: "Application Expiration Date", Type: TypeDate},
		{ID: mustHex("5F25"), Name: "Application Effective Date", Type: TypeDate},
		{ID: mustHex("5F28"), Name: "Issuer Country Code", Type: TypeCountry},
		{ID: mustHex("5F34"), Name: "Application PAN Sequence Number", Type: TypeNumeric},

		{ID: mustHex("82"), Name: "Application Interchange Profile (AIP)", Type: TypeBinary},
		{ID: mustHex("94"), Name: "Application File Locator (AFL)", Type: TypeBinary},
		{ID: mustHex("8E"), Name: "Cardholder Verification Method (CVM) List", Type: TypeBinary},
		{ID: mustHex("9F07"), Name: "Application Usage Control", Type: TypeBinary},
		{ID: mustHex("95"), Name: "Terminal Verification Results (TVR)", Type: TypeBinary},
		{ID: mustHex("9B"), Name: "Transaction Status Information", Type: TypeBinary},
		{ID: mustHex("9F34"), Name: "Cardholder Verification Method (CVM) Results", Type: TypeBinary},

		{ID: mustHex("9F02"), Name: "Amount, Authorised", Type: TypeAmount},
		{ID: mustHex("9F03"), Name: "Amount, Other", Type: TypeAmount},
		{ID: mustHex("9F1A"), Name: "Terminal Country Code", Type: TypeCountry},
		{ID: mustHex("5F2A"), Name: "Transaction Currency Code", Type: TypeCurrency},
		{ID: mustHex("9A"), Name: "Transaction Date", Type: TypeDate},
		{ID: mustHex("9C"), Name: "Transaction Type", Type: TypeBinary},
		{ID: mustHex("9F21"), Name: "Transaction Time", Type: TypeBinary},
		{ID: mustHex("9F37"), Name: "Unpredictable Number", Type: TypeBinary},

		{ID: mustHex("9F26"), Name: "Application Cryptogram (AC)", Type: TypeBinary},
		{ID: mustHex("9F27"), Name: "Cryptogram Information Data (CID)", Type: TypeBinary},
		{ID: mustHex("9F10"), Name: "Issuer Application Data (IAD)", Type: TypeBinary},
		{ID: mustHex("9F36"), Name: "Application Transaction Counter (ATC)", Type: TypeBinary},
		{ID: mustHex("9F13"), Name: "Last Online Application Transaction Counter (ATC) Register", Type: TypeBinary},
		{ID: mustHex("9F17"), Name: "PIN Try Counter", Type: TypeBinary},
		{ID: mustHex("9F4F"), Name: "Log Format", Type: TypeDOL},
	}

	m := make(map[string]Tag, len(entries))
	for _, e := range entries {
		m[e.Hex()] = e
	}
	return m
}

// Lookup returns the dictionary entry for a tag's raw identifier bytes.
func Lookup(id []byte) (Tag, bool) {
	t, ok := registry[strings.ToUpper(hex.EncodeToString(id))]
	return t, ok
}

// LookupHex is Lookup with the identifier given as a hex string.
func LookupHex(idHex string) (Tag, bool) {
	t, ok := registry[strings.ToUpper(idHex)]
	return t, ok
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("dict: invalid hex literal " + s)
	}
	return b
}
