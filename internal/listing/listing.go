// Package listing renders the assembler's per-line list file: address,
// emitted bytes, line number and indentation, and source text columns.
// Carried as ambient output per SPEC_FULL.md's AMBIENT STACK — every
// complete assembler in the teacher pack pairs a code generator with a
// human-readable listing, but (per spec.md's Non-goals) its exact column
// widths are not pinned by any testable invariant.
package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/adamgreen/snapncrackle/internal/asm"
)

// bytesColumnWidth is wide enough for the common case (a 3-byte absolute
// instruction, "XX XX XX") without wrapping; a line with more emitted
// bytes (HEX, DS, ...) simply overruns the column.
const bytesColumnWidth = 12

// Write renders one line per LineInfo in lines, in source order, to w.
func Write(w io.Writer, lines []asm.LineInfo) {
	for _, li := range lines {
		writeLine(w, li)
	}
}

func writeLine(w io.Writer, li asm.LineInfo) {
	addr := fmt.Sprintf("%04X", li.Address)
	bytesCol := formatBytes(li.MachineCode)
	if len(bytesCol) < bytesColumnWidth {
		bytesCol += strings.Repeat(" ", bytesColumnWidth-len(bytesCol))
	}
	indent := strings.Repeat("  ", li.Indentation)
	fmt.Fprintf(w, "%s: %s%6d  %s%s\n", addr, bytesCol, li.LineNumber, indent, li.Text)
}

func formatBytes(code []byte) string {
	parts := make([]string, len(code))
	for i, b := range code {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}
