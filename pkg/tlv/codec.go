package tlv

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// Package-level ordered, duplicate-tolerant BER-TLV codec.
//
// This is deliberately a second TLV representation alongside the
// reflection-based struct mapper in parser.go. The struct mapper is built on
// top of github.com/moov-io/bertlv and is convenient for mapping a known FCI
// or directory record shape onto a Go struct, but it collapses repeated tags
// into the last-seen value unless the caller opts into a slice field, and it
// has no way to report *where* a decode failed. The session and CAP engine
// need trees that faithfully preserve encounter order and duplicate tags
// (EMV directory records and the CAP response template can legally repeat a
// tag) and that report malformed input with a precise offset, so they use
// Tree/Encode/Decode instead of Unmarshal.

// CodecError reports a BER-TLV decode failure at a specific byte offset.
type CodecError struct {
	Offset int
	Reason string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("tlv: %s at offset %d", e.Reason, e.Offset)
}

// Reasons a Decode/DecodePrefix call can fail with.
const (
	ReasonTruncated               = "truncated"
	ReasonIllegalLengthForm       = "illegal-length-form"
	ReasonIndefiniteLength        = "indefinite-length"
	ReasonTrailingGarbageInNested = "trailing-garbage-in-constructed"
)

// Node is one entry of a Tree: a tag, and either a raw Value (primitive) or
// nested Children (constructed). The tag is kept as its raw identifier
// bytes rather than a derived integer, matching how EMV tags like 9F10 are
// conventionally written and compared.
type Node struct {
	Tag         []byte
	Constructed bool
	Value       []byte
	Children    Tree
}

// TagHex returns the tag identifier as an uppercase hex string.
func (n Node) TagHex() string {
	return strings.ToUpper(hex.EncodeToString(n.Tag))
}

// Tree is an ordered sequence of Nodes. Unlike a map, it preserves insertion
// order and allows the same tag to appear more than once.
type Tree []Node

// Find returns the first Node with the given tag.
func (t Tree) Find(tag []byte) (Node, bool) {
	for _, n := range t {
		if bytes.Equal(n.Tag, tag) {
			return n, true
		}
	}
	return Node{}, false
}

// FindHex is Find with the tag given as a hex string (e.g. "9F10").
func (t Tree) FindHex(tagHex string) (Node, bool) {
	tag, err := hex.DecodeString(tagHex)
	if err != nil {
		return Node{}, false
	}
	return t.Find(tag)
}

// FindAll returns every Node with the given tag, in encounter order.
func (t Tree) FindAll(tag []byte) []Node {
	var out []Node
	for _, n := range t {
		if bytes.Equal(n.Tag, tag) {
			out = append(out, n)
		}
	}
	return out
}

// Decode parses data as a sequence of top-level BER-TLV nodes, tolerating
// non-minimal long-form lengths (real cards emit both forms). Trailing
// 0x00 padding between/after top-level nodes is skipped.
func Decode(data []byte) (Tree, error) {
	return decodeTop(data, false)
}

// DecodeStrict is Decode but rejects non-minimal long-form lengths.
func DecodeStrict(data []byte) (Tree, error) {
	return decodeTop(data, true)
}

// DecodePrefix decodes a single TLV node from the front of data and returns
// it along with the unconsumed remainder, for chained structures (e.g. a
// GENERATE AC response template immediately followed by unrelated bytes).
func DecodePrefix(data []byte) (Node, []byte, error) {
	node, next, err := decodeNode(data, 0, false, 0)
	if err != nil {
		return Node{}, nil, err
	}
	return node, data[next:], nil
}

func decodeTop(data []byte, strict bool) (Tree, error) {
	var tree Tree
	offset := 0
	for offset < len(data) {
		if data[offset] == 0x00 {
			offset++
			continue
		}
		node, next, err := decodeNode(data, offset, strict, 0)
		if err != nil {
			return nil, err
		}
		tree = append(tree, node)
		offset = next
	}
	return tree, nil
}

// decodeNode decodes one TLV element from data starting at offset. base is
// added to any offset reported in a CodecError, so nested decodes (whose
// `data` is the sliced value of a constructed parent) still report an
// absolute position.
func decodeNode(data []byte, offset int, strict bool, base int) (Node, int, error) {
	tagBytes, constructed, offset, err := decodeTag(data, offset, base)
	if err != nil {
		return Node{}, 0, err
	}

	length, offset, err := decodeLength(data, offset, strict, base)
	if err != nil {
		return Node{}, 0, err
	}

	if offset+length > len(data) {
		return Node{}, 0, &CodecError{Offset: base + offset, Reason: ReasonTruncated}
	}

	value := data[offset : offset+length]
	offset += length

	node := Node{Tag: tagBytes, Constructed: constructed}
	if constructed {
		children, err := decodeChildren(value, strict, base+offset-length)
		if err != nil {
			return Node{}, 0, err
		}
		node.Children = children
	} else {
		node.Value = value
	}

	return node, offset, nil
}

// decodeChildren decodes the full content of a constructed value. Unlike
// the top level, it does not tolerate trailing padding: running out of
// bytes partway through a child element means the constructed value itself
// is malformed.
func decodeChildren(value []byte, strict bool, base int) (Tree, error) {
	var tree Tree
	offset := 0
	for offset < len(value) {
		node, next, err := decodeNode(value, offset, strict, base)
		if err != nil {
			if cerr, ok := err.(*CodecError); ok && cerr.Reason == ReasonTruncated {
				return nil, &CodecError{Offset: base + offset, Reason: ReasonTrailingGarbageInNested}
			}
			return nil, err
		}
		tree = append(tree, node)
		offset = next
	}
	return tree, nil
}

func decodeTag(data []byte, offset, base int) ([]byte, bool, int, error) {
	if offset >= len(data) {
		return nil, false, offset, &CodecError{Offset: base + offset, Reason: ReasonTruncated}
	}

	first := data[offset]
	constructed := first&0x20 != 0
	tagBytes := []byte{first}
	offset++

	if first&0x1F == 0x1F {
		for {
			if offset >= len(data) {
				return nil, false, offset, &CodecError{Offset: base + offset, Reason: ReasonTruncated}
			}
			b := data[offset]
			tagBytes = append(tagBytes, b)
			offset++
			if b&0x80 == 0 {
				break
			}
		}
	}

	return tagBytes, constructed, offset, nil
}

func decodeLength(data []byte, offset int, strict bool, base int) (int, int, error) {
	if offset >= len(data) {
		return 0, offset, &CodecError{Offset: base + offset, Reason: ReasonTruncated}
	}

	b := data[offset]
	lengthOffset := offset
	offset++

	if b < 0x80 {
		return int(b), offset, nil
	}

	if b == 0x80 {
		return 0, offset, &CodecError{Offset: base + lengthOffset, Reason: ReasonIndefiniteLength}
	}

	n := int(b & 0x7F)
	if n > 4 {
		return 0, offset, &CodecError{Offset: base + lengthOffset, Reason: ReasonIllegalLengthForm}
	}
	if offset+n > len(data) {
		return 0, offset, &CodecError{Offset: base + offset, Reason: ReasonTruncated}
	}

	length := 0
	for i := 0; i < n; i++ {
		length = length<<8 | int(data[offset+i])
	}
	offset += n

	if strict && !isMinimalLongForm(n, length) {
		return 0, offset, &CodecError{Offset: base + lengthOffset, Reason: ReasonIllegalLengthForm}
	}

	return length, offset, nil
}

func isMinimalLongForm(numLengthBytes, length int) bool {
	switch numLengthBytes {
	case 1:
		return length >= 0x80
	case 2:
		return length > 0xFF
	case 3:
		return length > 0xFFFF
	case 4:
		return length > 0xFFFFFF
	default:
		return false
	}
}

// Encode serializes a Tree back to BER-TLV bytes, always emitting minimal
// length forms regardless of how the tree was decoded.
func Encode(tree Tree) ([]byte, error) {
	var buf bytes.Buffer
	for _, node := range tree {
		if err := encodeNode(&buf, node); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, node Node) error {
	if len(node.Tag) == 0 {
		return fmt.Errorf("tlv: node has empty tag")
	}
	buf.Write(node.Tag)

	var value []byte
	if node.Constructed {
		encoded, err := Encode(node.Children)
		if err != nil {
			return err
		}
		value = encoded
	} else {
		value = node.Value
	}

	writeLength(buf, len(value))
	buf.Write(value)
	return nil
}

func writeLength(buf *bytes.Buffer, n int) {
	switch {
	case n < 0x80:
		buf.WriteByte(byte(n))
	case n <= 0xFF:
		buf.WriteByte(0x81)
		buf.WriteByte(byte(n))
	case n <= 0xFFFF:
		buf.WriteByte(0x82)
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	case n <= 0xFFFFFF:
		buf.WriteByte(0x83)
		buf.WriteByte(byte(n >> 16))
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	default:
		buf.WriteByte(0x84)
		buf.WriteByte(byte(n >> 24))
		buf.WriteByte(byte(n >> 16))
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	}
}
