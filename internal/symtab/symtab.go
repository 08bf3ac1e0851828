// Package symtab implements the assembler's symbol table: a map keyed
// by (global, local) label pairs, with a per-symbol list of line
// indices that referenced the symbol before it was defined. Grounded on
// spec.md §4.4 and the original SymbolTable.c, re-expressed as a native
// Go map (the idiomatic equivalent of the original's open-chained
// bucket array) with symbols addressed by arena index rather than
// pointer, per the Design Notes' arena-plus-index recommendation.
package symtab

import "github.com/adamgreen/snapncrackle/internal/expr"

// key pairs the global and local portions of a symbol name, mirroring
// the original hash's "hash(global) then hash(local)" order without
// needing a separate hash function — Go's map already hashes both
// fields of the struct.
type key struct {
	global string
	local  string
}

// Symbol is one entry: its expression, whether/where it was defined,
// and the set of line indices that referenced it while undefined.
type Symbol struct {
	GlobalKey string
	LocalKey  string
	Expr      expr.Expression
	// DefiningLine is the index into the assembler's LineInfo arena, or
	// -1 if the symbol is not yet defined.
	DefiningLine int
	// PendingRefs are LineInfo indices awaiting this symbol's value.
	PendingRefs []int
}

// Defined reports whether the symbol has a defining line.
func (s *Symbol) Defined() bool { return s.DefiningLine >= 0 }

// Table is the hashed symbol map. BucketHint preserves spec.md's
// documented bucket count for fidelity notes even though Go's map
// manages its own table sizing.
const BucketHint = 511

// Table owns all Symbols for one assembler instance.
type Table struct {
	symbols map[key]*Symbol
}

// New returns an empty Table.
func New() *Table {
	return &Table{symbols: make(map[key]*Symbol)}
}

// Add creates and inserts a new, as-yet-undefined Symbol. It does not
// check for an existing entry; callers must Find first (matching the
// original's separation of lookup from insert).
func (t *Table) Add(global, local string) *Symbol {
	s := &Symbol{GlobalKey: global, LocalKey: local, DefiningLine: -1}
	t.symbols[key{global, local}] = s
	return s
}

// Find returns the symbol for (global, local), or nil if absent.
func (t *Table) Find(global, local string) *Symbol {
	return t.symbols[key{global, local}]
}

// Count returns the number of symbols in the table.
func (t *Table) Count() int { return len(t.symbols) }

// All returns every symbol, for list-file / symbol-dump style output.
// Order is unspecified, matching the original's bucket-order enumerator.
func (t *Table) All() []*Symbol {
	out := make([]*Symbol, 0, len(t.symbols))
	for _, s := range t.symbols {
		out = append(out, s)
	}
	return out
}

// AddLineReference records lineIdx as referencing sym while undefined,
// ignoring duplicate references.
func AddLineReference(sym *Symbol, lineIdx int) {
	for _, existing := range sym.PendingRefs {
		if existing == lineIdx {
			return
		}
	}
	sym.PendingRefs = append(sym.PendingRefs, lineIdx)
}

// RemoveLineReference deletes lineIdx from sym's pending-reference list,
// if present.
func RemoveLineReference(sym *Symbol, lineIdx int) {
	for i, existing := range sym.PendingRefs {
		if existing == lineIdx {
			sym.PendingRefs = append(sym.PendingRefs[:i], sym.PendingRefs[i+1:]...)
			return
		}
	}
}
