package utils

import "unicode/utf8"

// =============================================================================
// STRING HELPERS
// =============================================================================

// PadLeft pads a string with a character on the left to reach the target length.
// Length is counted in characters, not bytes.
func PadLeft(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	padding := make([]rune, length-n)
	for i := range padding {
		padding[i] = padChar
	}
	return string(padding) + s
}

// PadRight pads a string with a character on the right to reach the target length.
func PadRight(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	padding := make([]rune, length-n)
	for i := range padding {
		padding[i] = padChar
	}
	return s + string(padding)
}

// Truncate cuts a string to at most length characters.
func Truncate(s string, length int) string {
	if length < 0 || utf8.RuneCountInString(s) <= length {
		return s
	}
	return string([]rune(s)[:length])
}
