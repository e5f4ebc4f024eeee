package jce

import "strings"

var xmlEntities = []string{"&amp;", "&lt;", "&gt;", "&quot;", "&apos;"}

// sanitizeXML repairs the structural defects the portal is known to produce
// so the decoder sees well-formed XML: leading BOM, raw control characters
// and ampersands that start no known entity.
func sanitizeXML(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\ufeff")

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '&':
			if startsEntity(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		case isControlByte(c):
			// drop
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func startsEntity(s string) bool {
	for _, e := range xmlEntities {
		if strings.HasPrefix(s, e) {
			return true
		}
	}
	// Numeric character references are already valid XML.
	return strings.HasPrefix(s, "&#")
}

// isControlByte reports bytes that are illegal in XML 1.0 documents.
// Tab, LF and CR stay; everything else below 0x20 and DEL goes.
func isControlByte(c byte) bool {
	if c == '\t' || c == '\n' || c == '\r' {
		return false
	}
	return c < 0x20 || c == 0x7f
}
