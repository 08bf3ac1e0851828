package asm

import "github.com/adamgreen/snapncrackle/internal/opcodes"

// LineInfo is one parsed+assembled source line. Lines live in a single
// arena (Module.lines); everything that used to be a pointer in the
// original C (defining symbol, forward references) is now an index
// into that arena or into the symbol table, per spec.md §9's
// arena-plus-index recommendation.
type LineInfo struct {
	Text       string
	LineNumber int
	Filename   string
	Indentation int

	Address        uint16
	MachineCode    []byte
	HasMachineCode bool

	InstructionSet opcodes.InstructionSet

	WasEqu            bool
	ForwardReference  bool
	DisallowForward   bool
	ConditionalSkip   bool
	InDummySection    bool

	ErrorCount   int
	WarningCount int
}
