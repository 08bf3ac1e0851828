package sizedstr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualFold(t *testing.T) {
	require.True(t, EqualFold(View("lda"), View("LDA")))
	require.True(t, EqualFold(View("X"), View("x")))
	require.False(t, EqualFold(View("X"), View("Y")))
}

func TestSplitAt(t *testing.T) {
	before, after := View("foo,bar").SplitAt(',')
	require.Equal(t, View("foo"), before)
	require.Equal(t, View("bar"), after)

	before, after = View("noDelim").SplitAt(',')
	require.Equal(t, View("noDelim"), before)
	require.Equal(t, View(""), after)
}

func TestTrimLeadingSpace(t *testing.T) {
	require.Equal(t, View("x"), View("  \tx").TrimLeadingSpace())
	require.Equal(t, View(""), View("").TrimLeadingSpace())
}

func TestTruncateAtFirstWhitespace(t *testing.T) {
	require.Equal(t, View("X"), View("X  ; trailing").TruncateAtFirstWhitespace())
	require.Equal(t, View("X"), View("X").TruncateAtFirstWhitespace())
}

func TestFirstWord(t *testing.T) {
	word, rest := View("lda #$60").FirstWord()
	require.Equal(t, View("lda"), word)
	require.Equal(t, View("#$60"), rest)

	word, rest = View("lone").FirstWord()
	require.Equal(t, View("lone"), word)
	require.Equal(t, View(""), rest)
}

func TestIsLabelStart(t *testing.T) {
	require.True(t, IsLabelStart(':'))
	require.True(t, IsLabelStart('A'))
	require.False(t, IsLabelStart(' '))
	require.False(t, IsLabelStart('$'))
}

func TestLabelRunLength(t *testing.T) {
	require.Equal(t, 5, LabelRunLength(View("entry lda")))
	require.Equal(t, 0, LabelRunLength(View(" entry")))
}

func TestParseUintHex(t *testing.T) {
	value, consumed, overflowed := ParseUint(View("1Fxyz"), 16)
	require.Equal(t, uint32(0x1F), value)
	require.Equal(t, 2, consumed)
	require.False(t, overflowed)
}

// Scenario 7 from the testable-properties list: strtoul-style overflow
// saturates at UINT_MAX rather than wrapping.
func TestParseUintOverflowSaturatesAtUintMax(t *testing.T) {
	value, consumed, overflowed := ParseUint(View("12345678901234567890"), 10)
	require.True(t, overflowed)
	require.Equal(t, uint32(0xFFFFFFFF), value)
	require.Equal(t, 20, consumed)
}

func TestParseUintNoDigitsConsumesNothing(t *testing.T) {
	_, consumed, overflowed := ParseUint(View("xyz"), 10)
	require.Equal(t, 0, consumed)
	require.False(t, overflowed)
}
