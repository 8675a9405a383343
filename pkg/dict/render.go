package dict

import (
	"fmt"
	"strconv"
	"strings"
)

const redactedPlaceholder = "<redacted>"

// Render turns a raw TLV value into a display string according to tag.Type.
// When redact is true and the tag is marked Sensitive, the value is never
// inspected at all; the placeholder is returned immediately.
func Render(tag Tag, value []byte, redact bool) string {
	if redact && tag.Sensitive {
		return redactedPlaceholder
	}

	switch tag.Type {
	case TypeText:
		return safeASCII(value)
	case TypeNumeric, TypeCompressedNumeric:
		return bcdDigits(value)
	case TypeDate:
		return renderDate(value)
	case TypeAmount:
		return renderAmount(value)
	case TypeCountry:
		return renderCountryOrCurrency(value, countryNames)
	case TypeCurrency:
		return renderCountryOrCurrency(value, currencyNames)
	case TypeDOL:
		return renderDOL(value)
	case TypeBinary, TypeConstructed, TypeOther:
		fallthrough
	default:
		return renderBinary(value)
	}
}

// renderBinary writes each byte as two uppercase hex digits, space separated.
func renderBinary(value []byte) string {
	parts := make([]string, len(value))
	for i, b := range value {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// safeASCII renders bytes as text, replacing anything outside the printable
// ASCII range with '.'.
func safeASCII(value []byte) string {
	out := make([]byte, len(value))
	for i, b := range value {
		if b >= 0x20 && b < 0x7F {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

// bcdDigits unpacks a BCD-encoded value into a decimal digit string. A
// trailing 0xF nibble is a pad nibble and is stripped; every other nibble is
// taken as a digit verbatim (a non-decimal nibble renders as its hex value in
// brackets, e.g. "[A]", since a malformed card response should be visible
// rather than silently hidden).
func bcdDigits(value []byte) string {
	nibbles := make([]byte, 0, len(value)*2)
	for _, b := range value {
		nibbles = append(nibbles, b>>4, b&0x0F)
	}
	if len(nibbles) > 0 && nibbles[len(nibbles)-1] == 0x0F {
		nibbles = nibbles[:len(nibbles)-1]
	}

	var sb strings.Builder
	for _, n := range nibbles {
		if n <= 9 {
			sb.WriteByte('0' + n)
		} else {
			sb.WriteString(fmt.Sprintf("[%X]", n))
		}
	}
	return sb.String()
}

// renderDate interprets a 3-byte BCD YYMMDD value, applying the usual
// 50/50 century window: a YY below 50 is 20YY, otherwise 19YY.
func renderDate(value []byte) string {
	digits := rawBCDDigits(value)
	if len(digits) != 6 {
		return renderBinary(value)
	}

	yy, err := strconv.Atoi(digits[0:2])
	if err != nil {
		return renderBinary(value)
	}
	century := 1900
	if yy < 50 {
		century = 2000
	}

	return fmt.Sprintf("%04d-%s-%s", century+yy, digits[2:4], digits[4:6])
}

// renderAmount interprets a 6-byte BCD value as 12 decimal digits with an
// implicit decimal point 2 digits from the right.
func renderAmount(value []byte) string {
	digits := rawBCDDigits(value)
	if len(digits) == 0 {
		return "0.00"
	}
	for len(digits) < 3 {
		digits = "0" + digits
	}

	intPart := strings.TrimLeft(digits[:len(digits)-2], "0")
	if intPart == "" {
		intPart = "0"
	}
	return intPart + "." + digits[len(digits)-2:]
}

// renderCountryOrCurrency decodes a 2-byte BCD ISO numeric code and looks it
// up in the given table, falling back to the raw numeric code when unknown.
func renderCountryOrCurrency(value []byte, table map[string]string) string {
	code := rawBCDDigits(value)
	// ISO numeric codes are 3 digits; a 2-byte BCD field carries a
	// leading pad digit.
	for len(code) > 3 && code[0] == '0' {
		code = code[1:]
	}
	if name, ok := table[code]; ok {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}

// renderDOL renders a Data Object List as a sequence of tag:length pairs.
// DOL entries always use a single-byte length, unlike general BER-TLV.
func renderDOL(value []byte) string {
	var parts []string
	offset := 0
	for offset < len(value) {
		tag, next := readDOLTag(value, offset)
		if tag == nil || next >= len(value) {
			break
		}
		length := value[next]
		offset = next + 1
		parts = append(parts, fmt.Sprintf("%s:%d", strings.ToUpper(hexString(tag)), length))
	}
	return strings.Join(parts, ", ")
}

func readDOLTag(data []byte, offset int) ([]byte, int) {
	if offset >= len(data) {
		return nil, offset
	}
	first := data[offset]
	tag := []byte{first}
	offset++
	if first&0x1F == 0x1F {
		for offset < len(data) {
			b := data[offset]
			tag = append(tag, b)
			offset++
			if b&0x80 == 0 {
				break
			}
		}
	}
	return tag, offset
}

func hexString(b []byte) string {
	const hexDigits = "0123456789ABCDEF"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0F]
	}
	return string(out)
}

// rawBCDDigits unpacks BCD without stripping a trailing pad nibble; dates,
// amounts and country/currency codes are fixed-width fields with no padding.
func rawBCDDigits(value []byte) string {
	var sb strings.Builder
	for _, b := range value {
		hi, lo := b>>4, b&0x0F
		if hi <= 9 {
			sb.WriteByte('0' + hi)
		} else {
			sb.WriteString(fmt.Sprintf("[%X]", hi))
		}
		if lo <= 9 {
			sb.WriteByte('0' + lo)
		} else {
			sb.WriteString(fmt.Sprintf("[%X]", lo))
		}
	}
	return sb.String()
}

var countryNames = map[string]string{
	"826": "United Kingdom",
	"840": "United States",
	"250": "France",
	"276": "Germany",
	"380": "Italy",
	"724": "Spain",
	"528": "Netherlands",
	"056": "Belgium",
	"756": "Switzerland",
	"372": "Ireland",
}

var currencyNames = map[string]string{
	"826": "GBP",
	"840": "USD",
	"978": "EUR",
	"756": "CHF",
	"392": "JPY",
}
