// Package opcodes holds the merged 6502/65C02/65816 instruction tables:
// three tables (base, +65C02 delta, +65816 delta), each sorted by
// mnemonic, merged by the stable "last-wins-for-non-sentinel" rule of
// spec.md §4.7/§9. Directive entries live in the same table, flagged by
// IsDirective, with all opcode columns left at the sentinel value.
package opcodes

import (
	"sort"

	"github.com/samber/lo"
)

// Sentinel opcode values, named after the original's _xXX/_xLL markers.
const (
	Unsupported     byte = 0x44 // _xXX: addressing mode not supported
	LongAddressMode byte = 0x54 // _xLL: ZeroPage column means "use 4-byte long Absolute encoding"
)

// Entry is one mnemonic's (or directive's) addressing-mode -> opcode map.
type Entry struct {
	Mnemonic string
	IsDirective bool

	Immediate                  byte
	Absolute                   byte
	ZeroPage                   byte
	Implied                    byte
	ZeroPageIndexedIndirect    byte // (zp,X)
	IndirectIndexed            byte // (zp),Y
	ZeroPageIndexedX           byte
	ZeroPageIndexedY           byte
	AbsoluteIndexedX           byte
	AbsoluteIndexedY           byte
	Relative                   byte
	AbsoluteIndirect           byte
	AbsoluteIndexedIndirect    byte
	ZeroPageIndirect           byte

	LongImmediateIfLongA  bool
	LongImmediateIfLongXY bool
}

func allUnsupported() Entry {
	u := Unsupported
	return Entry{
		Immediate: u, Absolute: u, ZeroPage: u, Implied: u,
		ZeroPageIndexedIndirect: u, IndirectIndexed: u,
		ZeroPageIndexedX: u, ZeroPageIndexedY: u,
		AbsoluteIndexedX: u, AbsoluteIndexedY: u,
		Relative: u, AbsoluteIndirect: u, AbsoluteIndexedIndirect: u,
		ZeroPageIndirect: u,
	}
}

func directive(name string) Entry {
	e := allUnsupported()
	e.Mnemonic = name
	e.IsDirective = true
	return e
}

// Table is a mnemonic-sorted instruction set.
type Table []Entry

// Find performs a case-sensitive (pre-uppercased) lookup by mnemonic.
func (t Table) Find(mnemonic string) (Entry, bool) {
	i := sort.Search(len(t), func(i int) bool { return t[i].Mnemonic >= mnemonic })
	if i < len(t) && t[i].Mnemonic == mnemonic {
		return t[i], true
	}
	return Entry{}, false
}

func sorted(entries []Entry) Table {
	t := make(Table, len(entries))
	copy(t, entries)
	sort.Slice(t, func(i, j int) bool { return t[i].Mnemonic < t[j].Mnemonic })
	return t
}

// merge applies delta on top of base: for each delta entry, if the
// mnemonic already exists in base, only its non-sentinel fields replace
// the base entry's fields (stable last-wins-for-non-sentinel); otherwise
// the delta entry is appended outright. Per spec.md §4.7/§9.
func merge(base Table, delta []Entry) Table {
	byMnemonic := make(map[string]Entry, len(base))
	order := lo.Map(base, func(e Entry, _ int) string { return e.Mnemonic })
	for _, e := range base {
		byMnemonic[e.Mnemonic] = e
	}
	// New mnemonics introduced by delta (no base entry to overlay onto)
	// are appended to the merge order; existing ones are overlaid in place.
	newMnemonics := lo.Filter(delta, func(d Entry, _ int) bool {
		_, found := byMnemonic[d.Mnemonic]
		return !found
	})
	order = append(order, lo.Map(newMnemonics, func(d Entry, _ int) string { return d.Mnemonic })...)

	for _, d := range delta {
		existing, found := byMnemonic[d.Mnemonic]
		if !found {
			byMnemonic[d.Mnemonic] = d
			continue
		}
		byMnemonic[d.Mnemonic] = overlayNonSentinel(existing, d)
	}
	merged := lo.Map(order, func(name string, _ int) Entry { return byMnemonic[name] })
	return sorted(merged)
}

func overlayNonSentinel(base, delta Entry) Entry {
	result := base
	result.IsDirective = result.IsDirective || delta.IsDirective
	result.LongImmediateIfLongA = result.LongImmediateIfLongA || delta.LongImmediateIfLongA
	result.LongImmediateIfLongXY = result.LongImmediateIfLongXY || delta.LongImmediateIfLongXY
	if delta.Immediate != Unsupported {
		result.Immediate = delta.Immediate
	}
	if delta.Absolute != Unsupported {
		result.Absolute = delta.Absolute
	}
	if delta.ZeroPage != Unsupported {
		result.ZeroPage = delta.ZeroPage
	}
	if delta.Implied != Unsupported {
		result.Implied = delta.Implied
	}
	if delta.ZeroPageIndexedIndirect != Unsupported {
		result.ZeroPageIndexedIndirect = delta.ZeroPageIndexedIndirect
	}
	if delta.IndirectIndexed != Unsupported {
		result.IndirectIndexed = delta.IndirectIndexed
	}
	if delta.ZeroPageIndexedX != Unsupported {
		result.ZeroPageIndexedX = delta.ZeroPageIndexedX
	}
	if delta.ZeroPageIndexedY != Unsupported {
		result.ZeroPageIndexedY = delta.ZeroPageIndexedY
	}
	if delta.AbsoluteIndexedX != Unsupported {
		result.AbsoluteIndexedX = delta.AbsoluteIndexedX
	}
	if delta.AbsoluteIndexedY != Unsupported {
		result.AbsoluteIndexedY = delta.AbsoluteIndexedY
	}
	if delta.Relative != Unsupported {
		result.Relative = delta.Relative
	}
	if delta.AbsoluteIndirect != Unsupported {
		result.AbsoluteIndirect = delta.AbsoluteIndirect
	}
	if delta.AbsoluteIndexedIndirect != Unsupported {
		result.AbsoluteIndexedIndirect = delta.AbsoluteIndexedIndirect
	}
	if delta.ZeroPageIndirect != Unsupported {
		result.ZeroPageIndirect = delta.ZeroPageIndirect
	}
	return result
}

// InstructionSet identifies which merged table an assembler is using.
type InstructionSet int

const (
	Set6502 InstructionSet = iota
	Set65C02
	Set65816
)

// Tables returns the three merged tables, built once: 6502 base,
// 65C02 (base merged with its delta), and 65816 (65C02 merged with its
// delta).
func Tables() [3]Table {
	base := sorted(base6502)
	c02 := merge(base, delta65C02)
	w816 := merge(c02, delta65816)
	return [3]Table{base, c02, w816}
}
