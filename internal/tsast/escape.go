package tsast

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeEscapes cooks the body of a quoted string literal the way a JS
// engine would. Malformed \x and \u sequences are kept as written.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		c, size := utf8.DecodeRuneInString(s[i+1:])
		next := i + 1 + size
		switch c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n', '\u2028', '\u2029':
			// line continuation
		case '\r':
			if next < len(s) && s[next] == '\n' {
				next++
			}
		case 'x':
			r, n, ok := hexRune(s[next:], 2)
			if !ok {
				b.WriteString(s[i:next])
				break
			}
			b.WriteRune(r)
			next += n
		case 'u':
			r, n, ok := unicodeEscape(s[next:])
			if !ok {
				b.WriteString(s[i:next])
				break
			}
			next += n
			if utf16.IsSurrogate(r) && strings.HasPrefix(s[next:], `\u`) {
				if lo, m, ok := unicodeEscape(s[next+2:]); ok {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						r = pair
						next += 2 + m
					}
				}
			}
			b.WriteRune(r)
		default:
			b.WriteRune(c)
		}
		i = next
	}
	return b.String()
}

// unicodeEscape parses the part after `\u`: either four hex digits or a
// braced code point.
func unicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}
	return hexRune(s, 4)
}

func hexRune(s string, digits int) (rune, int, bool) {
	if len(s) < digits {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:digits], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), digits, true
}
