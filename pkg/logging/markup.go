package logging

import "strings"

// StripMarkup removes console styling tags of the form [tag] or
// [/tag] from a message, returning the plain text. A tag starts with a
// lower-case letter, '#', or '@' (mirroring the console renderer the
// framework uses), so bracketed text like "[5]" or "[INFO]" is kept
// verbatim. An escaped "\[" renders as a literal "[".
//
// StripMarkup is a pure function applied by formatters before writing
// to a file sink; the record itself is never modified.
func StripMarkup(msg string) string {
	var b strings.Builder
	b.Grow(len(msg))

	for i := 0; i < len(msg); i++ {
		c := msg[i]
		if c == '\\' && i+1 < len(msg) && msg[i+1] == '[' {
			b.WriteByte('[')
			i++
			continue
		}
		if c != '[' {
			b.WriteByte(c)
			continue
		}
		if end, ok := markupTagEnd(msg, i); ok {
			i = end
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// markupTagEnd reports whether msg[start:] opens a styling tag and, if
// so, the index of its closing bracket.
func markupTagEnd(msg string, start int) (int, bool) {
	i := start + 1
	if i < len(msg) && msg[i] == '/' {
		i++
		// "[/]" closes the innermost style.
		if i < len(msg) && msg[i] == ']' {
			return i, true
		}
	}
	if i >= len(msg) || !isMarkupTagStart(msg[i]) {
		return 0, false
	}
	for ; i < len(msg); i++ {
		switch msg[i] {
		case ']':
			return i, true
		case '[':
			return 0, false
		}
	}
	return 0, false
}

func isMarkupTagStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || c == '#' || c == '@'
}
