package asm

import (
	"github.com/adamgreen/snapncrackle/internal/addrmode"
	"github.com/adamgreen/snapncrackle/internal/expr"
	"github.com/adamgreen/snapncrackle/internal/lineparser"
	"github.com/adamgreen/snapncrackle/internal/opcodes"
)

// assembleMnemonic classifies the operand and emits the opcode for
// whichever addressing mode the entry actually supports, per spec.md
// §4.8 step 6's fall-back rules (zero-page before absolute, relative
// branches computed from PC+2).
func (m *Module) assembleMnemonic(entry opcodes.Entry, parsed lineparser.Parsed) {
	am, err := m.evalAddrMode(parsed.Operands)
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}

	if entry.Relative != opcodes.Unsupported && am.Mode == addrmode.Absolute {
		m.emitRelative(entry, am.Expression)
		return
	}

	switch am.Mode {
	case addrmode.Implied:
		m.emitImplied(entry)
	case addrmode.Immediate:
		m.emitImmediate(entry, am.Expression)
	case addrmode.IndexedIndirect:
		m.emitIndexedIndirect(entry, am.Expression)
	case addrmode.IndirectIndexed:
		m.emitSimple(entry.Mnemonic, entry.IndirectIndexed, am.Expression, 1)
	case addrmode.Indirect:
		m.emitSimple(entry.Mnemonic, entry.AbsoluteIndirect, am.Expression, 2)
	case addrmode.AbsoluteIndexedX:
		m.emitIndexedAbsolute(entry, entry.ZeroPageIndexedX, entry.AbsoluteIndexedX, am.Expression)
	case addrmode.AbsoluteIndexedY:
		m.emitIndexedAbsolute(entry, entry.ZeroPageIndexedY, entry.AbsoluteIndexedY, am.Expression)
	case addrmode.Absolute:
		m.emitAbsoluteOrZeroPage(entry, am.Expression)
	}
}

// emit allocates len(bytes) in the current line's machine code and
// copies bytes into it.
func (m *Module) emit(bytes ...byte) {
	buf, ok := m.allocMachineCode(len(bytes))
	if !ok {
		return
	}
	copy(buf, bytes)
}

func (m *Module) emitImplied(entry opcodes.Entry) {
	if entry.Implied == opcodes.Unsupported {
		m.errorf("'%s' does not support implied/accumulator addressing", entry.Mnemonic)
		return
	}
	m.emit(entry.Implied)
}

func (m *Module) emitImmediate(entry opcodes.Entry, e expr.Expression) {
	if entry.Immediate == opcodes.Unsupported {
		m.errorf("'%s' does not support immediate addressing", entry.Mnemonic)
		return
	}
	wide := (entry.LongImmediateIfLongA && m.longA) || (entry.LongImmediateIfLongXY && m.longXY)
	if wide {
		m.emit(entry.Immediate, byte(e.Value), byte(e.Value>>8))
		return
	}
	m.emit(entry.Immediate, byte(e.Value))
}

// emitIndexedIndirect handles "(expr,X)" — either a zero-page indexed
// indirect (the common case) or, for a mnemonic like 65C02 JMP that only
// defines AbsoluteIndexedIndirect, a 3-byte absolute form.
func (m *Module) emitIndexedIndirect(entry opcodes.Entry, e expr.Expression) {
	if entry.ZeroPageIndexedIndirect != opcodes.Unsupported {
		m.emit(entry.ZeroPageIndexedIndirect, byte(e.Value))
		return
	}
	if entry.AbsoluteIndexedIndirect != opcodes.Unsupported {
		m.emit(entry.AbsoluteIndexedIndirect, byte(e.Value), byte(e.Value>>8))
		return
	}
	m.errorf("'%s' does not support indexed-indirect addressing", entry.Mnemonic)
}

func (m *Module) emitSimple(mnemonic string, opcode byte, e expr.Expression, operandBytes int) {
	if opcode == opcodes.Unsupported {
		m.errorf("'%s' does not support this addressing mode", mnemonic)
		return
	}
	switch operandBytes {
	case 1:
		m.emit(opcode, byte(e.Value))
	case 2:
		m.emit(opcode, byte(e.Value), byte(e.Value>>8))
	}
}

// emitIndexedAbsolute picks the zero-page indexed opcode when the
// expression folds to zero page and one is available, else falls back
// to the absolute indexed opcode.
func (m *Module) emitIndexedAbsolute(entry opcodes.Entry, zpOpcode, absOpcode byte, e expr.Expression) {
	if e.Type == expr.ZeroPage && zpOpcode != opcodes.Unsupported {
		m.emit(zpOpcode, byte(e.Value))
		return
	}
	if absOpcode != opcodes.Unsupported {
		m.emit(absOpcode, byte(e.Value), byte(e.Value>>8))
		return
	}
	m.errorf("'%s' does not support indexed addressing", entry.Mnemonic)
}

// emitAbsoluteOrZeroPage implements spec.md §4.8 step 6's fall-back:
// zero-page expression + zero-page opcode available wins a 2-byte
// emit; otherwise absolute (3 bytes, or 4 for a JML-style long
// absolute, flagged by the ZeroPage column holding LongAddressMode).
func (m *Module) emitAbsoluteOrZeroPage(entry opcodes.Entry, e expr.Expression) {
	isLong := entry.ZeroPage == opcodes.LongAddressMode
	if !isLong && e.Type == expr.ZeroPage && entry.ZeroPage != opcodes.Unsupported {
		m.emit(entry.ZeroPage, byte(e.Value))
		return
	}
	if entry.Absolute != opcodes.Unsupported {
		if isLong {
			m.emit(entry.Absolute, byte(e.Value), byte(e.Value>>8), byte(e.Value>>16))
		} else {
			m.emit(entry.Absolute, byte(e.Value), byte(e.Value>>8))
		}
		return
	}
	m.errorf("'%s' does not support absolute addressing", entry.Mnemonic)
}

// emitRelative computes the signed 8-bit branch offset from (PC+2) to
// the target, per spec.md §4.8 step 6: an out-of-range offset on a
// resolved (non-forward) reference is reported but the two bytes are
// still emitted.
func (m *Module) emitRelative(entry opcodes.Entry, e expr.Expression) {
	li := &m.lines[m.curLine]
	offset := int32(e.Value) - int32(li.Address) - 2
	if !e.ForwardRef && (offset < -128 || offset > 127) {
		m.errorf("branch target out of range for '%s'", entry.Mnemonic)
	}
	m.emit(entry.Relative, byte(int8(offset)))
}
