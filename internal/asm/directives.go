package asm

import (
	"strconv"
	"strings"

	"github.com/adamgreen/snapncrackle/internal/errs"
	"github.com/adamgreen/snapncrackle/internal/expr"
	"github.com/adamgreen/snapncrackle/internal/lineparser"
	"github.com/adamgreen/snapncrackle/internal/opcodes"
	"github.com/adamgreen/snapncrackle/internal/sizedstr"
	"github.com/adamgreen/snapncrackle/internal/source"
)

// SetPutSearchPath installs the semicolon-style search-path directory
// list consulted by PUT, per spec.md §4.8's PUT directive.
func (m *Module) SetPutSearchPath(dirs []string) { m.putSearchPath = dirs }

// reassemblableDirectives are the directives safe to re-run during
// forward-reference resolution: pure byte emitters with no stateful
// side effect beyond their own line's machine code. DO/LUP/DUM/PUT/SAV
// and the rest carry a side effect (pushing a conditional frame or
// source, queuing a file write) that must fire exactly once, so their
// lines are marked DisallowForward and never replayed.
var reassemblableDirectives = map[string]bool{
	"HEX": true, "ASC": true, "REV": true,
	"DB": true, "DFB": true, "DA": true, "DW": true, "DS": true,
}

// dispatchDirective runs the handler for a recognized directive
// mnemonic, per spec.md §4.8 step 5.
func (m *Module) dispatchDirective(mnemonic string, parsed lineparser.Parsed) {
	switch mnemonic {
	case "EQU":
		m.handleEqu(parsed)
	case "ORG":
		m.handleOrg(parsed)
	case "HEX":
		m.handleHex(parsed)
	case "ASC", "REV":
		m.handleAscRev(mnemonic, parsed)
	case "DB", "DFB":
		m.handleByteList(parsed)
	case "DA", "DW":
		m.handleWordList(parsed)
	case "DS":
		m.handleDS(parsed)
	case "SAV":
		m.handleSav(parsed)
	case "DO", "IF":
		m.handleDo(parsed)
	case "ELSE":
		m.handleElse()
	case "FIN":
		m.handleFin()
	case "LUP":
		m.handleLup(parsed)
	case "DUM":
		m.handleDum(parsed)
	case "DEND":
		m.handleDend()
	case "PUT":
		m.handlePut(parsed)
	case "MAC":
		m.errorf("unimplemented directive 'MAC'")
	case "XC":
		m.handleXC()
	case "MX":
		m.handleMX(parsed)
	case "REP":
		m.handleRepSep(parsed, true)
	case "SEP":
		m.handleRepSep(parsed, false)
	case "XCE":
		m.handleXCE()
	case "MVN", "MVP":
		m.handleMoveBlock(mnemonic, parsed)
	default:
		m.errorf("unimplemented directive '%s'", mnemonic)
	}
}

// handleEqu defines label (required) with the operand's evaluated
// expression instead of the current PC, records the value in the line's
// Address field (list-file convention for EQU), and sets the line's
// WasEqu flag, which signals assembleOneLine to skip the generic
// post-dispatch label definition for this line.
func (m *Module) handleEqu(parsed lineparser.Parsed) {
	e, err := m.evalOperand(parsed.Operands)
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	s := parsed.Label.String()
	if s == "" {
		m.errorf("EQU requires a label")
		return
	}
	global, local := m.labelKeys(s)
	isVariable := strings.HasPrefix(s, "]")
	sym := m.symbols.Find(global, local)
	if sym != nil && sym.Defined() && !isVariable {
		m.errorf("symbol '%s' has already been defined", s)
		return
	}
	if sym == nil {
		sym = m.symbols.Add(global, local)
	}
	sym.Expr = e
	sym.DefiningLine = m.curLine

	li := &m.lines[m.curLine]
	li.WasEqu = true
	li.Address = uint16(e.Value)

	m.resolveForwardReferences(sym)
}

func (m *Module) handleOrg(parsed lineparser.Parsed) {
	e, err := m.evalOperand(parsed.Operands)
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	m.programCounter = uint16(e.Value)
	m.currentBuf.SetOrigin(m.programCounter)
}

func (m *Module) handleHex(parsed lineparser.Parsed) {
	out, err := parseHexList(parsed.Operands.String())
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	if len(out) > 32 {
		m.errorf("HEX directive exceeds the 32 byte limit")
		return
	}
	m.emit(out...)
}

func parseHexList(s string) ([]byte, error) {
	var out []byte
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if len(tok)%2 != 0 {
			return nil, errs.Errorf(errs.InvalidArgument, "odd number of hex digits in '"+tok+"'")
		}
		for i := 0; i < len(tok); i += 2 {
			v, convErr := strconv.ParseUint(tok[i:i+2], 16, 8)
			if convErr != nil {
				return nil, errs.Errorf(errs.InvalidHexDigit, tok)
			}
			out = append(out, byte(v))
		}
	}
	return out, nil
}

func (m *Module) handleAscRev(mnemonic string, parsed lineparser.Parsed) {
	out, err := parseQuotedString(parsed.Operands.String())
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	if mnemonic == "REV" {
		reverseBytes(out)
	}
	m.emit(out...)
}

// parseQuotedString implements ASC/REV's delimiter rule: a delimiter
// byte whose ASCII value is below '\'' (0x27) — i.e. '"' — forces the
// high bit on every character, matching the '<"c>' vs "'c'" distinction
// spec.md §4.5 draws for character literals.
func parseQuotedString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return nil, errs.Errorf(errs.MissingOperand)
	}
	delim := s[0]
	highBit := delim < '\''
	body := s[1:]
	if end := strings.IndexByte(body, delim); end >= 0 {
		body = body[:end]
	}
	out := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if highBit {
			c |= 0x80
		}
		out[i] = c
	}
	return out, nil
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func (m *Module) handleByteList(parsed lineparser.Parsed) {
	vals, ok := m.evalCommaList(parsed.Operands)
	if !ok {
		return
	}
	out := make([]byte, len(vals))
	for i, v := range vals {
		out[i] = byte(v.Value)
	}
	m.emit(out...)
}

func (m *Module) handleWordList(parsed lineparser.Parsed) {
	vals, ok := m.evalCommaList(parsed.Operands)
	if !ok {
		return
	}
	out := make([]byte, 0, len(vals)*2)
	for _, v := range vals {
		out = append(out, byte(v.Value), byte(v.Value>>8))
	}
	m.emit(out...)
}

func (m *Module) evalCommaList(operands sizedstr.View) ([]expr.Expression, bool) {
	parts := splitTopLevelCommas(operands.String())
	out := make([]expr.Expression, 0, len(parts))
	for _, p := range parts {
		e, err := m.evalOperand(sizedstr.View(strings.TrimSpace(p)))
		if err != nil {
			m.errorf("%s", err.Error())
			return nil, false
		}
		out = append(out, e)
	}
	return out, true
}

// splitTopLevelCommas splits on commas that are not inside a quoted
// character literal or parentheses, so "(a,x)" and "';'" survive an
// operand list split intact.
func splitTopLevelCommas(s string) []string {
	var out []string
	depth := 0
	inQuote := byte(0)
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote != 0:
			if c == inQuote {
				inQuote = 0
			}
		case c == '\'' || c == '"':
			inQuote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// handleDS implements the DS fill directive: "count,fill" or, when
// count is prefixed with '\', the number of bytes remaining to the
// next page boundary from the current PC.
func (m *Module) handleDS(parsed lineparser.Parsed) {
	s := strings.TrimSpace(parsed.Operands.String())
	if s == "" {
		m.errorf("missing operand for DS")
		return
	}
	parts := splitTopLevelCommas(s)
	countStr := strings.TrimSpace(parts[0])

	var count int
	if strings.HasPrefix(countStr, "\\") {
		pc := m.lines[m.curLine].Address
		count = int((0x100 - int(pc&0xFF)) & 0xFF)
	} else {
		e, err := m.evalOperand(sizedstr.View(countStr))
		if err != nil {
			m.errorf("%s", err.Error())
			return
		}
		count = int(int32(e.Value))
	}
	if count < 0 {
		m.errorf("invalid DS count")
		return
	}

	fill := byte(0)
	if len(parts) > 1 {
		e, err := m.evalOperand(sizedstr.View(strings.TrimSpace(parts[1])))
		if err != nil {
			m.errorf("%s", err.Error())
			return
		}
		fill = byte(e.Value)
	}

	out := make([]byte, count)
	for i := range out {
		out[i] = fill
	}
	m.emit(out...)
}

func (m *Module) handleSav(parsed lineparser.Parsed) {
	filename := strings.TrimSpace(parsed.Operands.String())
	if filename == "" {
		m.errorf("missing filename for SAV")
		return
	}
	m.currentBuf.QueueWriteToFile(filename)
}

func (m *Module) handleDo(parsed lineparser.Parsed) {
	e, err := m.evalOperand(parsed.Operands)
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	if e.ForwardRef {
		m.errorf("forward reference not allowed in DO/IF expression")
	}
	var flags conditionalFlags
	if m.skipping() {
		flags |= condInheritedSkipSource
	}
	if e.Value == 0 {
		flags |= condSkipSource
	}
	m.conditionals = append(m.conditionals, conditional{flags: flags})
}

func (m *Module) handleElse() {
	if len(m.conditionals) == 0 {
		m.errorf("ELSE without matching DO")
		return
	}
	top := &m.conditionals[len(m.conditionals)-1]
	if top.flags&condSeenElse != 0 {
		m.errorf("duplicate ELSE for this DO")
		return
	}
	top.flags |= condSeenElse
	if top.flags&condInheritedSkipSource == 0 {
		top.flags ^= condSkipSource
	}
}

func (m *Module) handleFin() {
	if len(m.conditionals) == 0 {
		m.errorf("FIN without matching DO")
		return
	}
	m.conditionals = m.conditionals[:len(m.conditionals)-1]
}

func (m *Module) handleLup(parsed lineparser.Parsed) {
	e, err := m.evalOperand(parsed.Operands)
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	if e.ForwardRef {
		m.errorf("forward reference not allowed in LUP count expression")
		return
	}
	count := int(e.Value)
	if count < 1 || count > 32768 {
		m.errorf("LUP count must be between 1 and 32768")
		return
	}

	file, ok := m.src.TopFile()
	if !ok {
		m.errorf("LUP requires an active file source")
		return
	}
	startIdx := file.CursorIndex()
	lines := file.Lines()
	endIdx := -1
	for i := startIdx; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "--^" {
			endIdx = i
			break
		}
	}
	if endIdx < 0 {
		m.errorf("LUP without matching --^")
		return
	}
	derived := file.DeriveRange(startIdx, endIdx)
	file.SkipTo(endIdx + 1)
	m.src.Push(source.NewLupSource(derived, count))
}

func (m *Module) handleDum(parsed lineparser.Parsed) {
	e, err := m.evalOperand(parsed.Operands)
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	m.programCounterBeforeDUM = m.programCounter
	m.inDummy = true
	m.currentBuf = m.dummyBuffer
	m.programCounter = uint16(e.Value)
}

func (m *Module) handleDend() {
	if !m.inDummy {
		m.errorf("DEND without matching DUM")
		return
	}
	m.inDummy = false
	m.currentBuf = m.objectBuffer
	m.programCounter = m.programCounterBeforeDUM
}

func (m *Module) handlePut(parsed lineparser.Parsed) {
	parts := splitTopLevelCommas(parsed.Operands.String())
	filename := strings.TrimSpace(parts[0])
	if filename == "" {
		m.errorf("missing filename for PUT")
		return
	}
	skipLines := 0
	if len(parts) >= 4 {
		if n, convErr := parseDecimal(strings.TrimSpace(parts[3])); convErr == nil {
			skipLines = n
		}
	}
	text, err := m.readPutFile(filename)
	if err != nil {
		m.errorf("unable to open file '%s'", filename)
		return
	}
	file := source.NewFile(filename, text)
	if skipLines > 0 {
		file = file.DeriveRange(skipLines, len(file.Lines()))
	}
	m.src.Push(source.NewFileSource(file))
}

// readPutFile tries the bare filename first, then each directory in
// the PUT search path in order, per spec.md §4.8.
func (m *Module) readPutFile(filename string) (string, error) {
	if m.System == nil {
		return "", errs.Errorf(errs.FileOpen, filename)
	}
	candidates := append([]string{""}, m.putSearchPath...)
	var lastErr error
	for _, dir := range candidates {
		path := filename
		if dir != "" {
			path = strings.TrimSuffix(dir, "/") + "/" + filename
		}
		text, err := m.System.ReadFile(path)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (m *Module) handleXC() {
	switch m.instructionSet {
	case opcodes.Set6502:
		m.instructionSet = opcodes.Set65C02
	case opcodes.Set65C02:
		m.instructionSet = opcodes.Set65816
	default:
		m.warningf("XC directive has no further effect in 65816 mode")
	}
}

// handleMX sets the long-A/long-XY status flags directly from an
// immediate bitmask: bit 0 selects the accumulator width, bit 1 the
// index-register width, per spec.md §4.7/§4.8.
func (m *Module) handleMX(parsed lineparser.Parsed) {
	e, err := m.evalOperand(parsed.Operands)
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	m.longA = e.Value&0x01 != 0
	m.longXY = e.Value&0x02 != 0
}

// handleRepSep implements REP/SEP: REP (clearing=true) clears the
// requested status bits, putting the corresponding registers in
// 16-bit/"long" mode; SEP sets them back to 8-bit. Both emit their
// real 65816 opcode (0xC2, 0xE2) followed by the immediate byte.
func (m *Module) handleRepSep(parsed lineparser.Parsed, clearing bool) {
	e, err := m.evalOperand(parsed.Operands)
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	if e.Value&0x01 != 0 {
		m.longA = clearing
	}
	if e.Value&0x02 != 0 {
		m.longXY = clearing
	}
	opcode := byte(0xE2)
	if clearing {
		opcode = 0xC2
	}
	m.emit(opcode, byte(e.Value))
}

func (m *Module) handleXCE() {
	m.longA = false
	m.longXY = false
	m.emit(0xFB)
}

// handleMoveBlock implements MVN/MVP: two comma-separated 24-bit bank
// expressions, emitted as a 3-byte instruction carrying the high
// (bank) byte of each, per spec.md §4.8.
func (m *Module) handleMoveBlock(mnemonic string, parsed lineparser.Parsed) {
	parts := splitTopLevelCommas(parsed.Operands.String())
	if len(parts) != 2 {
		m.errorf("invalid argument count: %s", parsed.Operands.String())
		return
	}
	src, err := m.evalOperand(sizedstr.View(strings.TrimSpace(parts[0])))
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	dest, err := m.evalOperand(sizedstr.View(strings.TrimSpace(parts[1])))
	if err != nil {
		m.errorf("%s", err.Error())
		return
	}
	opcode := byte(0x54) // MVN
	if mnemonic == "MVP" {
		opcode = 0x44
	}
	// MVN/MVP operand syntax is "src,dest" but the encoded instruction
	// stream carries the destination bank before the source bank.
	m.emit(opcode, byte(dest.Value>>16), byte(src.Value>>16))
}
