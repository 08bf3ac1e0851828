package opcodes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTablesAreSortedByMnemonic(t *testing.T) {
	tables := Tables()
	for _, table := range tables {
		for i := 1; i < len(table); i++ {
			require.LessOrEqual(t, table[i-1].Mnemonic, table[i].Mnemonic)
		}
	}
}

func TestBase6502Lookup(t *testing.T) {
	tables := Tables()
	lda, found := tables[Set6502].Find("LDA")
	require.True(t, found)
	require.Equal(t, byte(0xA9), lda.Immediate)
	require.Equal(t, byte(0xA5), lda.ZeroPage)
	require.Equal(t, byte(0xAD), lda.Absolute)
}

func TestFindMissingMnemonic(t *testing.T) {
	tables := Tables()
	_, found := tables[Set6502].Find("BRA")
	require.False(t, found)
}

// 65C02's delta adds entirely new mnemonics (BRA) and new addressing
// modes for existing ones (the (zp) indirect forms), without disturbing
// the 6502 base's opcodes for mnemonics it doesn't touch.
func Test65C02MergeAddsNewMnemonicAndAddressingMode(t *testing.T) {
	tables := Tables()
	bra, found := tables[Set65C02].Find("BRA")
	require.True(t, found)
	require.Equal(t, byte(0x80), bra.Relative)

	lda, found := tables[Set65C02].Find("LDA")
	require.True(t, found)
	require.Equal(t, byte(0xB2), lda.ZeroPageIndirect)
	require.Equal(t, byte(0xA9), lda.Immediate, "base addressing modes survive the merge untouched")
}

// 65816's delta layers onto the merged 65C02 table: JML's ZeroPage
// column holds the LongAddressMode sentinel rather than a real opcode.
func Test65816JMLUsesLongAddressModeSentinel(t *testing.T) {
	tables := Tables()
	jml, found := tables[Set65816].Find("JML")
	require.True(t, found)
	require.Equal(t, LongAddressMode, jml.ZeroPage)
	require.Equal(t, byte(0x5C), jml.Absolute)
}

func Test65816LongImmediateFlagsCarryThroughMerge(t *testing.T) {
	tables := Tables()
	lda, found := tables[Set65816].Find("LDA")
	require.True(t, found)
	require.True(t, lda.LongImmediateIfLongA)
	require.False(t, lda.LongImmediateIfLongXY)
}

func TestDirectiveEntryHasNoLiveOpcodes(t *testing.T) {
	tables := Tables()
	equ, found := tables[Set6502].Find("EQU")
	require.True(t, found)
	require.True(t, equ.IsDirective)
	require.Equal(t, Unsupported, equ.Implied)
}

func TestMergeOverlayLastWinsForNonSentinelOnly(t *testing.T) {
	base := sorted([]Entry{mn("FOO", func(e *Entry) { e.ZeroPage = 0x10; e.Absolute = 0x11 })})
	delta := []Entry{mn("FOO", func(e *Entry) { e.ZeroPage = 0x20 })}

	merged := merge(base, delta)
	foo, found := merged.Find("FOO")
	require.True(t, found)
	require.Equal(t, byte(0x20), foo.ZeroPage, "delta's non-sentinel value overlays base")
	require.Equal(t, byte(0x11), foo.Absolute, "base value survives where delta left it at the sentinel")
}

func TestMergeAppendsMnemonicsNotInBase(t *testing.T) {
	base := sorted([]Entry{mn("FOO", func(e *Entry) { e.Implied = 0x01 })})
	delta := []Entry{mn("BAR", func(e *Entry) { e.Implied = 0x02 })}

	merged := merge(base, delta)
	require.Len(t, merged, 2)
	bar, found := merged.Find("BAR")
	require.True(t, found)
	require.Equal(t, byte(0x02), bar.Implied)
}
