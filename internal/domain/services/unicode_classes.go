package services

import (
	"regexp"
	"strings"
)

// compileUnicode compiles a pattern whose \w, \d and \s classes match Unicode
// letters, digits and spaces rather than RE2's ASCII-only sets. Patterns are
// kept in their short form because they are quoted back to authors.
func compileUnicode(src string) *regexp.Regexp {
	return regexp.MustCompile(expandClasses(src))
}

func expandClasses(src string) string {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\\' && i+1 < len(src) {
			i++
			switch src[i] {
			case 'w':
				b.WriteString(bracketed(`\p{L}\p{N}_`, inClass))
			case 'd':
				b.WriteString(`\p{Nd}`)
			case 's':
				b.WriteString(bracketed(`\s\p{Z}`, inClass))
			default:
				b.WriteByte('\\')
				b.WriteByte(src[i])
			}
			continue
		}
		switch c {
		case '[':
			inClass = true
		case ']':
			inClass = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

func bracketed(set string, inClass bool) string {
	if inClass {
		return set
	}
	return "[" + set + "]"
}
