package editor

import "unicode/utf16"

// The editor protocol measures all offsets in UTF-16 code units, so the
// shadow cache stores code units rather than runes. A surrogate pair is two
// units forming one logical character; the cache must never be split inside
// a pair.

func isSurrogate(u uint16) bool {
	return u >= 0xD800 && u < 0xE000
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xD800 && u < 0xDC00
}

func isLowSurrogate(u uint16) bool {
	return u >= 0xDC00 && u < 0xE000
}

// encodeUTF16 converts a string to UTF-16 code units
func encodeUTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// decodeUTF16 converts code units back to a string
func decodeUTF16(units []uint16) string {
	return string(utf16.Decode(units))
}

// UTF16Len returns the length of s in UTF-16 code units
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r > 0xFFFF {
			n++
		}
	}
	return n
}

// trimToTail trims units to at most max code units from the tail, never
// splitting a surrogate pair at the new head
func trimToTail(units []uint16, max int) []uint16 {
	if len(units) <= max {
		return units
	}
	start := len(units) - max
	if start < len(units) && isLowSurrogate(units[start]) {
		// The cut landed between a pair; drop the orphaned low half too
		start++
	}
	return units[start:]
}

// lastCodePointLen returns the number of code units forming the final logical
// character of units: 2 for a surrogate pair, otherwise 1, 0 when empty
func lastCodePointLen(units []uint16) int {
	n := len(units)
	if n == 0 {
		return 0
	}
	if n >= 2 && isLowSurrogate(units[n-1]) && isHighSurrogate(units[n-2]) {
		return 2
	}
	return 1
}
