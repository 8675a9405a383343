package iso7816

import (
	"bytes"
	"testing"

	"github.com/gregLibert/emvcap/pkg/tlv"
)

func TestPINBlock(t *testing.T) {
	tests := []struct {
		name     string
		pin      string
		expected []byte
		wantErr  bool
	}{
		{
			name:     "four digit PIN",
			pin:      "1234",
			expected: tlv.Hex("24 12 34 FF FF FF FF FF"),
		},
		{
			name:     "five digit PIN pads the odd nibble",
			pin:      "12345",
			expected: tlv.Hex("25 12 34 5F FF FF FF FF"),
		},
		{
			name:     "twelve digit PIN fills the block",
			pin:      "123456789012",
			expected: tlv.Hex("2C 12 34 56 78 90 12 FF"),
		},
		{
			name:    "too short",
			pin:     "123",
			wantErr: true,
		},
		{
			name:    "too long",
			pin:     "1234567890123",
			wantErr: true,
		},
		{
			name:    "non-decimal",
			pin:     "12x4",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PINBlock(tt.pin)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got % X", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("got % X, want % X", got, tt.expected)
			}
		})
	}
}

func TestVerifyPINCommand(t *testing.T) {
	cls, _ := NewClass(0x00)

	cmd, err := VerifyPIN(cls, "1234")
	if err != nil {
		t.Fatalf("VerifyPIN failed: %v", err)
	}

	raw, err := cmd.Bytes()
	if err != nil {
		t.Fatalf("encoding failed: %v", err)
	}

	expected := tlv.Hex("00 20 00 80 08 24 12 34 FF FF FF FF FF")
	if !bytes.Equal(raw, expected) {
		t.Errorf("got % X, want % X", raw, expected)
	}
}
