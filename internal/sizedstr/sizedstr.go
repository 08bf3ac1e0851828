// Package sizedstr provides a non-owning string view with the parsing
// primitives the assembler's line/expression parsers need. A View never
// copies or mutates the bytes it points at; splitting returns new views
// into the same backing string rather than writing a NUL terminator in
// place, per the "no in-place string mutation" rule.
package sizedstr

import (
	"strings"
)

// View is a non-owning (start, length) window into a backing string.
type View string

// Empty reports whether the view has zero length.
func (v View) Empty() bool { return len(v) == 0 }

// String returns the view's contents as a plain string.
func (v View) String() string { return string(v) }

// EqualFold performs an ASCII case-insensitive comparison, used by the
// addressing-mode register checks. Opcode lookup does not use it: the
// assembler upper-cases the mnemonic with strings.ToUpper and matches
// it exactly against the upper-case opcode table.
func EqualFold(a, b View) bool {
	return strings.EqualFold(string(a), string(b))
}

// SplitAt splits the view at the first occurrence of delim, returning
// the text before delim and the text after it (delim itself excluded).
// If delim is absent, before is the whole view and after is empty.
func (v View) SplitAt(delim byte) (before, after View) {
	idx := strings.IndexByte(string(v), delim)
	if idx < 0 {
		return v, ""
	}
	return v[:idx], v[idx+1:]
}

// TrimLeadingSpace removes leading spaces and tabs.
func (v View) TrimLeadingSpace() View {
	return View(strings.TrimLeft(string(v), " \t"))
}

// TruncateAtFirstWhitespace returns the view up to (excluding) its first
// space/tab, allowing trailing line comments after an index register.
func (v View) TruncateAtFirstWhitespace() View {
	s := string(v)
	if idx := strings.IndexAny(s, " \t"); idx >= 0 {
		return View(s[:idx])
	}
	return v
}

// FirstWord returns the leading run of non-whitespace characters and the
// remainder of the view starting at the first whitespace run's end.
func (v View) FirstWord() (word, rest View) {
	s := string(v)
	i := 0
	for i < len(s) && s[i] != ' ' && s[i] != '\t' {
		i++
	}
	word = View(s[:i])
	j := i
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	rest = View(s[j:])
	return word, rest
}

// IsLabelStart reports whether b can start a label: any byte whose
// value is >= ':' in ASCII, per spec.md's external-interface rule.
func IsLabelStart(b byte) bool {
	return b >= ':'
}

// LabelRunLength returns the length of the longest run of characters
// whose value is >= ':' in ASCII, starting at offset 0 of v — this is
// how label-reference length is determined inside expressions.
func LabelRunLength(v View) int {
	s := string(v)
	i := 0
	for i < len(s) && s[i] >= ':' {
		i++
	}
	return i
}

const maxUint32 = ^uint32(0)

// ParseUint parses digits 0-9, a-z, A-Z up to the given base (2-36) from
// the front of v, stopping at the first character that does not fit.
// It returns the accumulated value, the number of bytes consumed, and
// whether an unsigned 32-bit overflow occurred (matching strtoul's
// UINT_MAX-on-overflow behavior from spec.md §4.1 and §8 scenario 7).
func ParseUint(v View, base int) (value uint32, consumed int, overflowed bool) {
	s := string(v)
	for consumed < len(s) {
		d, ok := digitValue(s[consumed])
		if !ok || d >= base {
			break
		}
		next := value*uint32(base) + uint32(d)
		if !overflowed && (next < value || uint64(value)*uint64(base)+uint64(d) > uint64(maxUint32)) {
			overflowed = true
			value = maxUint32
			consumed++
			continue
		}
		if !overflowed {
			value = next
		}
		consumed++
	}
	return value, consumed, overflowed
}

func digitValue(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'z':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'Z':
		return int(b-'A') + 10, true
	default:
		return 0, false
	}
}
