package opcodes

// mn builds a mnemonic entry starting from "all unsupported" and lets
// the caller fill in only the addressing modes that mnemonic supports.
func mn(name string, fill func(e *Entry)) Entry {
	e := allUnsupported()
	e.Mnemonic = name
	fill(&e)
	return e
}

// base6502 is the documented MOS 6502 instruction set, plus the
// directive pseudo-ops that share its dispatch table.
var base6502 = []Entry{
	mn("ADC", func(e *Entry) { e.Immediate = 0x69; e.ZeroPage = 0x65; e.ZeroPageIndexedX = 0x75; e.Absolute = 0x6D; e.AbsoluteIndexedX = 0x7D; e.AbsoluteIndexedY = 0x79; e.ZeroPageIndexedIndirect = 0x61; e.IndirectIndexed = 0x71 }),
	mn("AND", func(e *Entry) { e.Immediate = 0x29; e.ZeroPage = 0x25; e.ZeroPageIndexedX = 0x35; e.Absolute = 0x2D; e.AbsoluteIndexedX = 0x3D; e.AbsoluteIndexedY = 0x39; e.ZeroPageIndexedIndirect = 0x21; e.IndirectIndexed = 0x31 }),
	mn("ASL", func(e *Entry) { e.ZeroPage = 0x06; e.ZeroPageIndexedX = 0x16; e.Absolute = 0x0E; e.AbsoluteIndexedX = 0x1E; e.Implied = 0x0A }),
	mn("BCC", func(e *Entry) { e.Relative = 0x90 }),
	mn("BCS", func(e *Entry) { e.Relative = 0xB0 }),
	mn("BEQ", func(e *Entry) { e.Relative = 0xF0 }),
	mn("BIT", func(e *Entry) { e.ZeroPage = 0x24; e.Absolute = 0x2C }),
	mn("BMI", func(e *Entry) { e.Relative = 0x30 }),
	mn("BNE", func(e *Entry) { e.Relative = 0xD0 }),
	mn("BPL", func(e *Entry) { e.Relative = 0x10 }),
	mn("BRK", func(e *Entry) { e.Implied = 0x00 }),
	mn("BVC", func(e *Entry) { e.Relative = 0x50 }),
	mn("BVS", func(e *Entry) { e.Relative = 0x70 }),
	mn("CLC", func(e *Entry) { e.Implied = 0x18 }),
	mn("CLD", func(e *Entry) { e.Implied = 0xD8 }),
	mn("CLI", func(e *Entry) { e.Implied = 0x58 }),
	mn("CLV", func(e *Entry) { e.Implied = 0xB8 }),
	mn("CMP", func(e *Entry) { e.Immediate = 0xC9; e.ZeroPage = 0xC5; e.ZeroPageIndexedX = 0xD5; e.Absolute = 0xCD; e.AbsoluteIndexedX = 0xDD; e.AbsoluteIndexedY = 0xD9; e.ZeroPageIndexedIndirect = 0xC1; e.IndirectIndexed = 0xD1 }),
	mn("CPX", func(e *Entry) { e.Immediate = 0xE0; e.ZeroPage = 0xE4; e.Absolute = 0xEC }),
	mn("CPY", func(e *Entry) { e.Immediate = 0xC0; e.ZeroPage = 0xC4; e.Absolute = 0xCC }),
	mn("DEC", func(e *Entry) { e.ZeroPage = 0xC6; e.ZeroPageIndexedX = 0xD6; e.Absolute = 0xCE; e.AbsoluteIndexedX = 0xDE }),
	mn("DEX", func(e *Entry) { e.Implied = 0xCA }),
	mn("DEY", func(e *Entry) { e.Implied = 0x88 }),
	mn("EOR", func(e *Entry) { e.Immediate = 0x49; e.ZeroPage = 0x45; e.ZeroPageIndexedX = 0x55; e.Absolute = 0x4D; e.AbsoluteIndexedX = 0x5D; e.AbsoluteIndexedY = 0x59; e.ZeroPageIndexedIndirect = 0x41; e.IndirectIndexed = 0x51 }),
	mn("INC", func(e *Entry) { e.ZeroPage = 0xE6; e.ZeroPageIndexedX = 0xF6; e.Absolute = 0xEE; e.AbsoluteIndexedX = 0xFE }),
	mn("INX", func(e *Entry) { e.Implied = 0xE8 }),
	mn("INY", func(e *Entry) { e.Implied = 0xC8 }),
	mn("JMP", func(e *Entry) { e.Absolute = 0x4C; e.AbsoluteIndirect = 0x6C }),
	mn("JSR", func(e *Entry) { e.Absolute = 0x20 }),
	mn("LDA", func(e *Entry) { e.Immediate = 0xA9; e.ZeroPage = 0xA5; e.ZeroPageIndexedX = 0xB5; e.Absolute = 0xAD; e.AbsoluteIndexedX = 0xBD; e.AbsoluteIndexedY = 0xB9; e.ZeroPageIndexedIndirect = 0xA1; e.IndirectIndexed = 0xB1 }),
	mn("LDX", func(e *Entry) { e.Immediate = 0xA2; e.ZeroPage = 0xA6; e.ZeroPageIndexedY = 0xB6; e.Absolute = 0xAE; e.AbsoluteIndexedY = 0xBE }),
	mn("LDY", func(e *Entry) { e.Immediate = 0xA0; e.ZeroPage = 0xA4; e.ZeroPageIndexedX = 0xB4; e.Absolute = 0xAC; e.AbsoluteIndexedX = 0xBC }),
	mn("LSR", func(e *Entry) { e.ZeroPage = 0x46; e.ZeroPageIndexedX = 0x56; e.Absolute = 0x4E; e.AbsoluteIndexedX = 0x5E; e.Implied = 0x4A }),
	mn("NOP", func(e *Entry) { e.Implied = 0xEA }),
	mn("ORA", func(e *Entry) { e.Immediate = 0x09; e.ZeroPage = 0x05; e.ZeroPageIndexedX = 0x15; e.Absolute = 0x0D; e.AbsoluteIndexedX = 0x1D; e.AbsoluteIndexedY = 0x19; e.ZeroPageIndexedIndirect = 0x01; e.IndirectIndexed = 0x11 }),
	mn("PHA", func(e *Entry) { e.Implied = 0x48 }),
	mn("PHP", func(e *Entry) { e.Implied = 0x08 }),
	mn("PLA", func(e *Entry) { e.Implied = 0x68 }),
	mn("PLP", func(e *Entry) { e.Implied = 0x28 }),
	mn("ROL", func(e *Entry) { e.ZeroPage = 0x26; e.ZeroPageIndexedX = 0x36; e.Absolute = 0x2E; e.AbsoluteIndexedX = 0x3E; e.Implied = 0x2A }),
	mn("ROR", func(e *Entry) { e.ZeroPage = 0x66; e.ZeroPageIndexedX = 0x76; e.Absolute = 0x6E; e.AbsoluteIndexedX = 0x7E; e.Implied = 0x6A }),
	mn("RTI", func(e *Entry) { e.Implied = 0x40 }),
	mn("RTS", func(e *Entry) { e.Implied = 0x60 }),
	mn("SBC", func(e *Entry) { e.Immediate = 0xE9; e.ZeroPage = 0xE5; e.ZeroPageIndexedX = 0xF5; e.Absolute = 0xED; e.AbsoluteIndexedX = 0xFD; e.AbsoluteIndexedY = 0xF9; e.ZeroPageIndexedIndirect = 0xE1; e.IndirectIndexed = 0xF1 }),
	mn("SEC", func(e *Entry) { e.Implied = 0x38 }),
	mn("SED", func(e *Entry) { e.Implied = 0xF8 }),
	mn("SEI", func(e *Entry) { e.Implied = 0x78 }),
	mn("STA", func(e *Entry) { e.ZeroPage = 0x85; e.ZeroPageIndexedX = 0x95; e.Absolute = 0x8D; e.AbsoluteIndexedX = 0x9D; e.AbsoluteIndexedY = 0x99; e.ZeroPageIndexedIndirect = 0x81; e.IndirectIndexed = 0x91 }),
	mn("STX", func(e *Entry) { e.ZeroPage = 0x86; e.ZeroPageIndexedY = 0x96; e.Absolute = 0x8E }),
	mn("STY", func(e *Entry) { e.ZeroPage = 0x84; e.ZeroPageIndexedX = 0x94; e.Absolute = 0x8C }),
	mn("TAX", func(e *Entry) { e.Implied = 0xAA }),
	mn("TAY", func(e *Entry) { e.Implied = 0xA8 }),
	mn("TSX", func(e *Entry) { e.Implied = 0xBA }),
	mn("TXA", func(e *Entry) { e.Implied = 0x8A }),
	mn("TXS", func(e *Entry) { e.Implied = 0x9A }),
	mn("TYA", func(e *Entry) { e.Implied = 0x98 }),

	directive("EQU"),
	directive("ORG"),
	directive("HEX"),
	directive("ASC"),
	directive("REV"),
	directive("DB"),
	directive("DFB"),
	directive("DA"),
	directive("DW"),
	directive("DS"),
	directive("SAV"),
	directive("DO"),
	directive("IF"),
	directive("ELSE"),
	directive("FIN"),
	directive("LUP"),
	directive("DUM"),
	directive("DEND"),
	directive("PUT"),
	directive("MAC"),
	directive("XC"),
}

// delta65C02 layers the WDC 65C02 additions on top of base6502: new
// addressing modes for existing mnemonics, plus new mnemonics.
var delta65C02 = []Entry{
	mn("ADC", func(e *Entry) { e.ZeroPageIndirect = 0x72 }),
	mn("AND", func(e *Entry) { e.ZeroPageIndirect = 0x32 }),
	mn("CMP", func(e *Entry) { e.ZeroPageIndirect = 0xD2 }),
	mn("EOR", func(e *Entry) { e.ZeroPageIndirect = 0x52 }),
	mn("LDA", func(e *Entry) { e.ZeroPageIndirect = 0xB2 }),
	mn("ORA", func(e *Entry) { e.ZeroPageIndirect = 0x12 }),
	mn("SBC", func(e *Entry) { e.ZeroPageIndirect = 0xF2 }),
	mn("STA", func(e *Entry) { e.ZeroPageIndirect = 0x92 }),
	mn("BIT", func(e *Entry) { e.Immediate = 0x89; e.ZeroPageIndexedX = 0x34; e.AbsoluteIndexedX = 0x3C }),
	mn("JMP", func(e *Entry) { e.AbsoluteIndexedIndirect = 0x7C }),
	mn("DEC", func(e *Entry) { e.Implied = 0x3A }),
	mn("INC", func(e *Entry) { e.Implied = 0x1A }),
	mn("TRB", func(e *Entry) { e.ZeroPage = 0x14; e.Absolute = 0x1C }),
	mn("TSB", func(e *Entry) { e.ZeroPage = 0x04; e.Absolute = 0x0C }),
	mn("STZ", func(e *Entry) { e.ZeroPage = 0x64; e.ZeroPageIndexedX = 0x74; e.Absolute = 0x9C; e.AbsoluteIndexedX = 0x9E }),
	mn("BRA", func(e *Entry) { e.Relative = 0x80 }),
	mn("PHX", func(e *Entry) { e.Implied = 0xDA }),
	mn("PLX", func(e *Entry) { e.Implied = 0xFA }),
	mn("PHY", func(e *Entry) { e.Implied = 0x5A }),
	mn("PLY", func(e *Entry) { e.Implied = 0x7A }),
}

// delta65816 layers the WDC 65816 additions on top of the 65C02 table:
// the mode-switch directives (MX/REP/SEP/XCE/MVN/MVP) and a handful of
// 65816-exclusive mnemonics, including JML's long-absolute addressing
// (flagged via the ZeroPage=_xLL sentinel per spec.md §4.7).
var delta65816 = []Entry{
	directive("MX"),
	directive("REP"),
	directive("SEP"),
	directive("XCE"),
	directive("MVN"),
	directive("MVP"),
	mn("JML", func(e *Entry) { e.ZeroPage = LongAddressMode; e.Absolute = 0x5C }),
	mn("PEA", func(e *Entry) { e.Absolute = 0xF4 }),
	mn("PHB", func(e *Entry) { e.Implied = 0x8B }),
	mn("PLB", func(e *Entry) { e.Implied = 0xAB }),
	mn("PHD", func(e *Entry) { e.Implied = 0x0B }),
	mn("PLD", func(e *Entry) { e.Implied = 0x2B }),
	mn("PHK", func(e *Entry) { e.Implied = 0x4B }),
	mn("TCD", func(e *Entry) { e.Implied = 0x5B }),
	mn("TDC", func(e *Entry) { e.Implied = 0x7B }),
	mn("TCS", func(e *Entry) { e.Implied = 0x1B }),
	mn("TSC", func(e *Entry) { e.Implied = 0x3B }),
	mn("TXY", func(e *Entry) { e.Implied = 0x9B }),
	mn("TYX", func(e *Entry) { e.Implied = 0xBB }),
	mn("XBA", func(e *Entry) { e.Implied = 0xEB }),
	mn("STZ", func(e *Entry) { e.ZeroPageIndexedX = 0x74 }),
	mn("LDA", func(e *Entry) { e.LongImmediateIfLongA = true }),
	mn("LDX", func(e *Entry) { e.LongImmediateIfLongXY = true }),
	mn("LDY", func(e *Entry) { e.LongImmediateIfLongXY = true }),
	mn("CMP", func(e *Entry) { e.LongImmediateIfLongA = true }),
	mn("CPX", func(e *Entry) { e.LongImmediateIfLongXY = true }),
	mn("CPY", func(e *Entry) { e.LongImmediateIfLongXY = true }),
	mn("ADC", func(e *Entry) { e.LongImmediateIfLongA = true }),
	mn("SBC", func(e *Entry) { e.LongImmediateIfLongA = true }),
	mn("AND", func(e *Entry) { e.LongImmediateIfLongA = true }),
	mn("ORA", func(e *Entry) { e.LongImmediateIfLongA = true }),
	mn("EOR", func(e *Entry) { e.LongImmediateIfLongA = true }),
}
