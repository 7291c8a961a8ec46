package engine

import "unicode/utf8"

// window returns text[start:end] widened by n characters on each side,
// clipped to the text. Offsets are bytes; n counts runes.
func window(text string, start, end, n int) string {
	lo := start
	for i := 0; i < n && lo > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:lo])
		lo -= size
	}
	hi := end
	for i := 0; i < n && hi < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[hi:])
		hi += size
	}
	return text[lo:hi]
}

// advance returns the byte offset n characters after start, clipped to the
// text length.
func advance(text string, start, n int) int {
	pos := start
	for i := 0; i < n && pos < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	return pos
}
