package pathengine

import "strings"

// fullwidthReplacements maps each filesystem-illegal character to its
// full-width Unicode analogue, so a sanitized value stays human-readable
// instead of collapsing to an underscore. Grounded on the teacher's
// sanitizePathComponent in internal/storage/strategy.go, generalized from
// "strip the traversal characters" to the spec's full substitution table.
var fullwidthReplacements = map[rune]rune{
	'/':  '／',
	'\\': '＼',
	':':  '：',
	'*':  '＊',
	'?':  '？',
	'"':  '＂',
	'<':  '＜',
	'>':  '＞',
	'|':  '｜',
}

// unicodeSpaceLike lists lookalike space and bidi marks that get
// normalized to a plain ASCII space before collapsing. Written as explicit
// code points to avoid relying on invisible literal runes in source.
var unicodeSpaceLike = map[rune]bool{
	0x00A0: true, // no-break space
	0x2000: true, 0x2001: true, 0x2002: true, 0x2003: true,
	0x2004: true, 0x2005: true, 0x2006: true, 0x2007: true,
	0x2008: true, 0x2009: true, 0x200A: true,
	0x2028: true, 0x2029: true, 0x3000: true, // line/para separator, ideographic space
	0x200E: true, 0x200F: true, // LTR/RTL marks
	0x202A: true, 0x202C: true, // bidi embedding marks
}

// zeroWidth lists zero-width code points, which are stripped outright.
var zeroWidth = map[rune]bool{
	0x200B: true,               // zero-width space
	0x200C: true, 0x200D: true, // zero-width non-joiner/joiner
	0xFEFF: true, // BOM / zero-width no-break space
}

func isASCIIControl(r rune) bool {
	return r < 0x20 || r == 0x7F
}

// Sanitize applies the substitution value rules: strip ASCII control
// characters and zero-width code points, normalize Unicode space-like
// characters to a plain space, collapse runs of spaces, trim leading and
// trailing spaces and dots, replace filesystem-illegal characters with
// their full-width analogues, and fall back to "unknown" if the result is
// empty. Never panics regardless of input.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case isASCIIControl(r) || zeroWidth[r]:
			continue
		case unicodeSpaceLike[r]:
			b.WriteRune(' ')
		default:
			if repl, ok := fullwidthReplacements[r]; ok {
				b.WriteRune(repl)
			} else {
				b.WriteRune(r)
			}
		}
	}
	collapsed := collapseSpaces(b.String())
	trimmed := strings.Trim(collapsed, " .")
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := false
	for _, r := range s {
		if r == ' ' {
			if lastWasSpace {
				continue
			}
			lastWasSpace = true
		} else {
			lastWasSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
