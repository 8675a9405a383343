package tlv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	// {0x6F: {0x84: "1PAY.SYS.DDF01", 0xA5: {0x88: 0x01}}}
	raw := Hex(
		"6F 15",
		"84 0E 31 50 41 59 2E 53 59 53 2E 44 44 46 30 31", // 84 "1PAY.SYS.DDF01"
		"A5 03",
		"88 01 01",
	)

	tree, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := Tree{
		{
			Tag:         Hex("6F"),
			Constructed: true,
			Children: Tree{
				{Tag: Hex("84"), Value: []byte("1PAY.SYS.DDF01")},
				{
					Tag:         Hex("A5"),
					Constructed: true,
					Children: Tree{
						{Tag: Hex("88"), Value: Hex("01")},
					},
				},
			},
		},
	}

	if diff := cmp.Diff(want, tree); diff != "" {
		t.Fatalf("decoded tree mismatch (-want +got):\n%s", diff)
	}

	reencoded, err := Encode(tree)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if diff := cmp.Diff(raw, reencoded); diff != "" {
		t.Fatalf("round-trip bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDuplicateTagsPreserveOrder(t *testing.T) {
	raw := Hex("61 02 4F 00", "61 02 4F 00")

	tree, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("expected 2 top-level entries for duplicate tags, got %d", len(tree))
	}

	all := tree.FindAll(Hex("61"))
	if len(all) != 2 {
		t.Fatalf("expected FindAll to return both duplicates, got %d", len(all))
	}
}

func TestDecodeSkipsTrailingPadding(t *testing.T) {
	raw := Hex("84 02 11 22", "00 00 00")

	tree, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("expected padding to be skipped, got %d top-level nodes", len(tree))
	}
}

func TestDecodeLongFormLengths(t *testing.T) {
	value := make([]byte, 0x81)
	for i := range value {
		value[i] = byte(i)
	}
	raw := append([]byte{0x84, 0x81, 0x81}, value...)

	tree, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Value) != 0x81 {
		t.Fatalf("unexpected decode result: %+v", tree)
	}
}

func TestDecodeRejectsIndefiniteLength(t *testing.T) {
	raw := Hex("6F 80", "84 02 11 22", "00 00")

	_, err := Decode(raw)
	cerr, ok := err.(*CodecError)
	if !ok {
		t.Fatalf("expected *CodecError, got %v", err)
	}
	if cerr.Reason != ReasonIndefiniteLength {
		t.Fatalf("expected reason %q, got %q", ReasonIndefiniteLength, cerr.Reason)
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	raw := Hex("84 05 11 22")

	_, err := Decode(raw)
	cerr, ok := err.(*CodecError)
	if !ok {
		t.Fatalf("expected *CodecError, got %v", err)
	}
	if cerr.Reason != ReasonTruncated {
		t.Fatalf("expected reason %q, got %q", ReasonTruncated, cerr.Reason)
	}
}

func TestDecodeStrictRejectsNonMinimalLength(t *testing.T) {
	// Length 0x05 encoded via the 0x81 long form instead of the short form.
	raw := Hex("84 81 05", "11 22 33 44 55")

	if _, err := Decode(raw); err != nil {
		t.Fatalf("tolerant Decode should accept non-minimal long form, got error: %v", err)
	}

	_, err := DecodeStrict(raw)
	cerr, ok := err.(*CodecError)
	if !ok {
		t.Fatalf("expected *CodecError from DecodeStrict, got %v", err)
	}
	if cerr.Reason != ReasonIllegalLengthForm {
		t.Fatalf("expected reason %q, got %q", ReasonIllegalLengthForm, cerr.Reason)
	}
}

func TestDecodeChildrenTrailingGarbage(t *testing.T) {
	// Constructed tag 6F, length 3, but the nested TLV inside claims a
	// 2-byte value while only 1 byte remains.
	raw := Hex("6F 03", "84 02 11")

	_, err := Decode(raw)
	cerr, ok := err.(*CodecError)
	if !ok {
		t.Fatalf("expected *CodecError, got %v", err)
	}
	if cerr.Reason != ReasonTrailingGarbageInNested {
		t.Fatalf("expected reason %q, got %q", ReasonTrailingGarbageInNested, cerr.Reason)
	}
}

func TestDecodePrefixReturnsRemainder(t *testing.T) {
	raw := Hex("84 02 11 22", "85 01 33")

	node, rest, err := DecodePrefix(raw)
	if err != nil {
		t.Fatalf("DecodePrefix failed: %v", err)
	}
	if node.TagHex() != "84" {
		t.Fatalf("expected tag 84, got %s", node.TagHex())
	}
	if diff := cmp.Diff(Hex("85 01 33"), rest); diff != "" {
		t.Fatalf("remainder mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeFind(t *testing.T) {
	tree := Tree{
		{Tag: Hex("84"), Value: Hex("11")},
		{Tag: Hex("9F10"), Value: Hex("22")},
	}

	node, ok := tree.FindHex("9F10")
	if !ok {
		t.Fatalf("expected to find tag 9F10")
	}
	if diff := cmp.Diff(Hex("22"), node.Value); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}

	if _, ok := tree.FindHex("5A"); ok {
		t.Fatalf("did not expect to find tag 5A")
	}
}
