package widget

import (
	"strings"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/shop"
)

const lowerHexDigits = "0123456789abcdef"

// EscapeStringLiteral escapes a value for the body of a quoted string literal.
// The result is valid inside JSON strings and inside single- or double-quoted
// JavaScript strings, never closes a surrounding script element, and never
// contains a placeholder token.
func EscapeStringLiteral(value string) string {
	var builder strings.Builder
	builder.Grow(len(value) + len(value)/8)
	for _, character := range value {
		switch character {
		case '\\':
			builder.WriteString(`\\`)
		case '"':
			builder.WriteString(`\"`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\t':
			builder.WriteString(`\t`)
		case '\'', '<', '>', '&', '{', '}', '`', '\u2028', '\u2029':
			writeUnicodeEscape(&builder, character)
		default:
			if character < 0x20 || character == 0x7f {
				writeUnicodeEscape(&builder, character)
				continue
			}
			builder.WriteRune(character)
		}
	}
	return builder.String()
}

func writeUnicodeEscape(builder *strings.Builder, character rune) {
	builder.WriteString(`\u`)
	for shift := 12; shift >= 0; shift -= 4 {
		builder.WriteByte(lowerHexDigits[(character>>uint(shift))&0x0F])
	}
}

// SerializeRoster renders the staff as a JSON array literal of
// {name, handle, photo, specialty} records in roster order. Every value passes
// through EscapeStringLiteral.
func SerializeRoster(staff []shop.StaffMember) string {
	var builder strings.Builder
	builder.WriteByte('[')
	for index, member := range staff {
		if index > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(`{"name":"`)
		builder.WriteString(EscapeStringLiteral(member.Name))
		builder.WriteString(`","handle":"`)
		builder.WriteString(EscapeStringLiteral(member.Handle))
		builder.WriteString(`","photo":"`)
		builder.WriteString(EscapeStringLiteral(member.PhotoURL))
		builder.WriteString(`","specialty":"`)
		builder.WriteString(EscapeStringLiteral(member.Specialty))
		builder.WriteString(`"}`)
	}
	builder.WriteByte(']')
	return builder.String()
}
