package emit

import (
	"fmt"
	"strings"
)

// quoteC renders b as the body of a C string literal. Bytes outside
// printable ASCII are written as three-digit octal escapes so that a
// following digit can never extend the escape.
func quoteC(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '"':
			sb.WriteString(`\"`)
		case c == '?':
			// avoid trigraphs
			sb.WriteString(`\?`)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, `\%03o`, c)
		}
	}
	return sb.String()
}

// byteList renders b as a comma-separated list of hex bytes, sixteen per
// line.
func byteList(b []byte) string {
	if len(b) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			if i%16 == 0 {
				sb.WriteString(",\n    ")
			} else {
				sb.WriteString(", ")
			}
		}
		fmt.Fprintf(&sb, "0x%02x", c)
	}
	return sb.String()
}
