// Package asm is the assembler's two-pass orchestration core: it walks
// the source stack, dispatches each line to a directive handler or an
// opcode emitter, maintains the conditional/LUP/DUM state machines, and
// resolves forward references by re-assembling the lines that used
// them. Grounded on spec.md §4.8 and the original Assembler.c.
package asm

import (
	"strconv"
	"strings"

	"github.com/adamgreen/snapncrackle/internal/addrmode"
	"github.com/adamgreen/snapncrackle/internal/binbuf"
	"github.com/adamgreen/snapncrackle/internal/diag"
	"github.com/adamgreen/snapncrackle/internal/expr"
	"github.com/adamgreen/snapncrackle/internal/lineparser"
	"github.com/adamgreen/snapncrackle/internal/opcodes"
	"github.com/adamgreen/snapncrackle/internal/sizedstr"
	"github.com/adamgreen/snapncrackle/internal/source"
	"github.com/adamgreen/snapncrackle/internal/symtab"
)

// conditionalFlags mirror CONDITIONAL_SKIP_SOURCE / _INHERITED_SKIP_SOURCE
// / _SEEN_ELSE from AssemblerPriv.h.
type conditionalFlags int

const (
	condSkipSource conditionalFlags = 1 << iota
	condInheritedSkipSource
	condSeenElse
)

type conditional struct {
	flags conditionalFlags
}

func (c conditional) skipping() bool {
	return c.flags&(condSkipSource|condInheritedSkipSource) != 0
}

// System abstracts the filesystem/PUT-search-path operations the
// assembler needs, so tests can substitute an in-memory fake instead of
// real files — the Go equivalent of spec.md §9's SystemInterface
// capability-object recommendation in place of libc hook pointers.
type System interface {
	ReadFile(path string) (string, error)
}

// Module is one assembler instance: its own source stack, symbol
// table, line arena, and output buffers.
type Module struct {
	Diag   *diag.Log
	System System

	tables         [3]opcodes.Table
	instructionSet opcodes.InstructionSet

	symbols *symtab.Table
	lines   []LineInfo

	objectBuffer *binbuf.Buffer
	dummyBuffer  *binbuf.Buffer
	currentBuf   *binbuf.Buffer
	inDummy      bool

	programCounter          uint16
	programCounterBeforeDUM uint16

	globalLabel string

	conditionals []conditional

	longA, longXY bool // 65816 M/X status flags

	src *source.Stack

	curLine int // index of the line currently being assembled, -1 outside a line

	putSearchPath []string

	errorCount   int
	warningCount int
}

// New returns a Module ready to assemble, starting in 6502 mode.
func New(diagLog *diag.Log, sys System) *Module {
	return &Module{
		Diag:           diagLog,
		System:         sys,
		tables:         opcodes.Tables(),
		instructionSet: opcodes.Set6502,
		symbols:        symtab.New(),
		objectBuffer:   binbuf.New(),
		dummyBuffer:    binbuf.New(),
		curLine:        -1,
	}
}

// ErrorCount returns the number of errors logged during assembly.
func (m *Module) ErrorCount() int { return m.errorCount }

// WarningCount returns the number of warnings logged during assembly.
func (m *Module) WarningCount() int { return m.warningCount }

// ObjectQueue returns the queued SAV/RW18SAV writes from the object
// buffer, ready to drain if ErrorCount() == 0.
func (m *Module) ObjectQueue() []binbuf.QueuedWrite { return m.objectBuffer.Queue() }

// EncodeQueuedWrite renders one queued write's header+payload bytes.
func (m *Module) EncodeQueuedWrite(q binbuf.QueuedWrite) []byte { return m.objectBuffer.Encode(q) }

// Lines returns the assembled line-info chain, in source order, for
// list-file generation.
func (m *Module) Lines() []LineInfo { return m.lines }

// AssembleString runs pass 1 over a named in-memory source.
func (m *Module) AssembleString(filename, text string) {
	file := source.NewFile(filename, text)
	m.src = source.NewStack()
	m.src.Push(source.NewFileSource(file))
	m.currentBuf = m.objectBuffer

	for {
		line, lineNumber, fname, ok := m.src.NextLine()
		if !ok {
			break
		}
		m.assembleOneLine(line, lineNumber, fname)
	}

	if len(m.conditionals) > 0 {
		m.warning(lastLineFile(m), lastLineNumber(m), "missing FIN for DO")
	}
}

func lastLineFile(m *Module) string {
	if len(m.lines) == 0 {
		return ""
	}
	return m.lines[len(m.lines)-1].Filename
}

func lastLineNumber(m *Module) int {
	if len(m.lines) == 0 {
		return 0
	}
	return m.lines[len(m.lines)-1].LineNumber
}

// assembleOneLine implements one iteration of pass 1, per spec.md §4.8
// steps 1-8.
func (m *Module) assembleOneLine(text string, lineNumber int, filename string) {
	originalPC := m.programCounter // pre-directive PC, for the DUM-on-same-line quirk

	idx := len(m.lines)
	li := LineInfo{
		Text:           text,
		LineNumber:     lineNumber,
		Filename:       filename,
		Address:        m.programCounter,
		InstructionSet: m.instructionSet,
		Indentation:    m.src.Depth(),
	}
	li.ConditionalSkip = m.skipping()
	m.lines = append(m.lines, li)
	m.curLine = idx

	parsed := lineparser.Parse(text)
	if parsed.Comment {
		return
	}

	if !m.skipping() && !parsed.Label.Empty() {
		m.rememberLabelIfGlobal(parsed.Label)
	}

	if parsed.Op.Empty() {
		if !parsed.Label.Empty() {
			m.defineLabelForCurrentLine(parsed.Label, originalPC)
		}
		return
	}

	entry, found := m.tables[m.instructionSet].Find(strings.ToUpper(parsed.Op.String()))
	if !found {
		m.errorf("unknown mnemonic or directive '%s'", parsed.Op.String())
		return
	}

	if m.skipping() && !isAlwaysLiveDirective(entry) {
		return
	}

	if entry.IsDirective {
		if !reassemblableDirectives[entry.Mnemonic] {
			m.lines[idx].DisallowForward = true
		}
		m.dispatchDirective(entry.Mnemonic, parsed)
	} else {
		m.assembleMnemonic(entry, parsed)
	}

	if !parsed.Label.Empty() && !m.lines[idx].WasEqu {
		m.defineLabelForCurrentLine(parsed.Label, originalPC)
	}

	emitted := len(m.lines[m.curLine].MachineCode)
	m.programCounter += uint16(emitted)
}

func isAlwaysLiveDirective(e opcodes.Entry) bool {
	switch e.Mnemonic {
	case "ELSE", "DO", "IF", "FIN":
		return true
	default:
		return false
	}
}

func (m *Module) skipping() bool {
	if len(m.conditionals) == 0 {
		return false
	}
	return m.conditionals[len(m.conditionals)-1].skipping()
}

// rememberLabelIfGlobal classifies the label and, if it is a global
// label (no ':' or ']' prefix), updates the current global-label
// context used to qualify subsequent local labels.
func (m *Module) rememberLabelIfGlobal(label sizedstr.View) {
	s := label.String()
	if len(s) == 0 {
		return
	}
	switch s[0] {
	case ':':
		if m.globalLabel == "" {
			m.errorf("local label '%s' is not allowed before first global label", s)
		}
	case ']':
		// variable label: no global-context update
	default:
		m.globalLabel = s
	}
}

func (m *Module) labelKeys(label string) (global, local string) {
	if len(label) == 0 {
		return "", ""
	}
	switch label[0] {
	case ':':
		return m.globalLabel, label
	case ']':
		return "", label
	default:
		return label, ""
	}
}

// defineLabelForCurrentLine adds or updates the symbol for label with
// the line's address (or, if DUM is active, the dummy-section PC),
// per spec.md §4.8 step 7 / the DUM quirk.
func (m *Module) defineLabelForCurrentLine(label sizedstr.View, preDirectivePC uint16) {
	s := label.String()
	if s == "" {
		return
	}
	global, local := m.labelKeys(s)
	isVariable := strings.HasPrefix(s, "]")

	value := preDirectivePC
	sym := m.symbols.Find(global, local)
	if sym != nil && sym.Defined() && !isVariable {
		m.errorf("symbol '%s' has already been defined", s)
		return
	}
	if sym == nil {
		sym = m.symbols.Add(global, local)
	}
	sym.Expr = expr.Expression{Value: uint32(value), Type: typeForAddress(value)}
	sym.DefiningLine = m.curLine

	m.resolveForwardReferences(sym)
}

func typeForAddress(v uint16) expr.Type {
	if v <= 0xFF {
		return expr.ZeroPage
	}
	return expr.Absolute
}

// resolveForwardReferences re-assembles every line that referenced sym
// before it was defined, per spec.md §4.8's forward-reference section.
func (m *Module) resolveForwardReferences(sym *symtab.Symbol) {
	pending := append([]int(nil), sym.PendingRefs...)
	sym.PendingRefs = nil
	for _, lineIdx := range pending {
		m.reassembleLine(lineIdx)
	}
}

// reassembleLine re-parses and re-emits a previously forward-referenced
// line in place. li.MachineCode is left intact (not reallocated):
// allocMachineCode's "already has machine code" path overwrites the
// same buffer bytes and itself reports a size mismatch if the
// re-emitted length disagrees with the pass-1 reservation, per
// spec.md §4.8's "couldn't infer size of forward reference" rule.
func (m *Module) reassembleLine(lineIdx int) {
	li := &m.lines[lineIdx]
	saved := m.curLine
	savedPC := m.programCounter
	m.curLine = lineIdx
	m.programCounter = li.Address
	m.instructionSet = li.InstructionSet

	parsed := lineparser.Parse(li.Text)
	li.ForwardReference = true

	if !parsed.Op.Empty() {
		entry, found := m.tables[li.InstructionSet].Find(strings.ToUpper(parsed.Op.String()))
		if found {
			if entry.IsDirective {
				if !li.DisallowForward {
					m.dispatchDirective(entry.Mnemonic, parsed)
				}
			} else {
				m.assembleMnemonic(entry, parsed)
			}
		}
	}

	m.curLine = saved
	m.programCounter = savedPC
}

// resolver adapts Module to expr.Resolver for the duration of one
// expression evaluation.
type resolver struct {
	m *Module
}

func (r resolver) ProgramCounter() uint32 { return uint32(r.m.programCounter) }

func (r resolver) Lookup(name string) (expr.Expression, bool) {
	m := r.m
	globalKey, localKey := global(m, name), local(m, name)
	sym := m.symbols.Find(globalKey, localKey)
	if sym == nil {
		sym = m.symbols.Add(globalKey, localKey)
	}
	if !sym.Defined() {
		if m.curLine >= 0 {
			symtab.AddLineReference(sym, m.curLine)
		}
		return expr.Expression{Value: 0, Type: expr.ZeroPage, ForwardRef: true}, true
	}
	return sym.Expr, true
}

func global(m *Module, name string) string { g, _ := m.labelKeys(name); return g }
func local(m *Module, name string) string  { _, l := m.labelKeys(name); return l }

func (m *Module) evalOperand(operands sizedstr.View) (expr.Expression, error) {
	return expr.Eval(resolver{m: m}, operands)
}

func (m *Module) evalAddrMode(operands sizedstr.View) (addrmode.AddressingMode, error) {
	return addrmode.Eval(resolver{m: m}, operands)
}

func (m *Module) errorf(format string, args ...any) {
	li := &m.lines[m.curLine]
	m.Diag.Error(li.Filename, li.LineNumber, format, args...)
	li.ErrorCount++
	m.errorCount++
}

func (m *Module) warning(filename string, lineNumber int, format string, args ...any) {
	m.Diag.Warning(filename, lineNumber, format, args...)
	m.warningCount++
}

func (m *Module) warningf(format string, args ...any) {
	li := &m.lines[m.curLine]
	m.Diag.Warning(li.Filename, li.LineNumber, format, args...)
	li.WarningCount++
	m.warningCount++
}

// allocMachineCode allocates (or verifies, for a re-assembly pass) n
// bytes of machine code for the current line.
func (m *Module) allocMachineCode(n int) ([]byte, bool) {
	li := &m.lines[m.curLine]
	if li.HasMachineCode {
		if len(li.MachineCode) != n {
			m.errorf("couldn't properly infer size of a forward reference in operand")
			return nil, false
		}
		return li.MachineCode, true
	}
	buf, err := m.currentBuf.Alloc(n)
	if err != nil {
		m.errorf("%s", err.Error())
		return nil, false
	}
	li.MachineCode = buf
	li.HasMachineCode = true
	return buf, true
}

func parseDecimal(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
