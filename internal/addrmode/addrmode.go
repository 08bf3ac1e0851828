// Package addrmode classifies an operand string into a 6502/65C02/65816
// addressing mode by purely structural inspection — comma and
// parenthesis positions — then evaluates the contained expression.
// Grounded on spec.md §4.6 and the original AddressingMode.c.
package addrmode

import (
	"strings"

	"github.com/adamgreen/snapncrackle/internal/errs"
	"github.com/adamgreen/snapncrackle/internal/expr"
	"github.com/adamgreen/snapncrackle/internal/sizedstr"
)

// Mode enumerates the addressing modes the classifier can produce.
type Mode int

const (
	Implied Mode = iota
	Immediate
	Absolute
	IndexedIndirect  // (expr,X)
	IndirectIndexed  // (expr),Y
	Indirect         // (expr)
	AbsoluteIndexedX // expr,X
	AbsoluteIndexedY // expr,Y
)

// AddressingMode pairs a classified Mode with its evaluated Expression.
type AddressingMode struct {
	Mode       Mode
	Expression expr.Expression
}

// Eval classifies operand and evaluates its expression component.
func Eval(r expr.Resolver, operand sizedstr.View) (AddressingMode, error) {
	s := strings.TrimSpace(operand.String())
	if s == "" {
		return AddressingMode{Mode: Implied}, nil
	}
	if s[0] == '#' {
		e, err := expr.Eval(r, sizedstr.View(s))
		if err != nil {
			return AddressingMode{}, err
		}
		return AddressingMode{Mode: Immediate, Expression: e}, nil
	}
	if s[0] == '(' {
		return evalParenthesized(r, s)
	}

	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		e, err := expr.Eval(r, sizedstr.View(s))
		if err != nil {
			return AddressingMode{}, err
		}
		return AddressingMode{Mode: Absolute, Expression: e}, nil
	}

	inner := s[:comma]
	reg := sizedstr.View(s[comma+1:]).TrimLeadingSpace().TruncateAtFirstWhitespace()
	e, err := expr.Eval(r, sizedstr.View(inner))
	if err != nil {
		return AddressingMode{}, err
	}
	switch {
	case sizedstr.EqualFold(reg, "X"):
		return AddressingMode{Mode: AbsoluteIndexedX, Expression: e}, nil
	case sizedstr.EqualFold(reg, "Y"):
		return AddressingMode{Mode: AbsoluteIndexedY, Expression: e}, nil
	default:
		return AddressingMode{}, errs.Errorf(errs.InvalidArgument, "invalid index register in '"+s+"'")
	}
}

func evalParenthesized(r expr.Resolver, s string) (AddressingMode, error) {
	closeIdx := strings.IndexByte(s, ')')
	if closeIdx < 0 {
		return AddressingMode{}, errs.Errorf(errs.InvalidArgument, "'"+s+"' doesn't represent a known addressing mode")
	}
	inner := s[1:closeIdx]
	after := s[closeIdx+1:]

	commaInInner := strings.IndexByte(inner, ',')
	if commaInInner >= 0 {
		// (expr,X) — indexed indirect.
		reg := sizedstr.View(inner[commaInInner+1:]).TrimLeadingSpace().TruncateAtFirstWhitespace()
		if !sizedstr.EqualFold(reg, "X") {
			return AddressingMode{}, errs.Errorf(errs.InvalidArgument, "invalid index register in '"+s+"'")
		}
		e, err := expr.Eval(r, sizedstr.View(inner[:commaInInner]))
		if err != nil {
			return AddressingMode{}, err
		}
		return AddressingMode{Mode: IndexedIndirect, Expression: e}, nil
	}

	trimmedAfter := strings.TrimLeft(after, " \t")
	if strings.HasPrefix(trimmedAfter, ",") {
		// (expr),Y — indirect indexed.
		reg := sizedstr.View(trimmedAfter[1:]).TrimLeadingSpace().TruncateAtFirstWhitespace()
		if !sizedstr.EqualFold(reg, "Y") {
			return AddressingMode{}, errs.Errorf(errs.InvalidArgument, "invalid index register in '"+s+"'")
		}
		e, err := expr.Eval(r, sizedstr.View(inner))
		if err != nil {
			return AddressingMode{}, err
		}
		if e.Type != expr.ZeroPage {
			return AddressingMode{}, errs.Errorf(errs.InvalidArgument, "'"+s+"' requires a zero page expression")
		}
		return AddressingMode{Mode: IndirectIndexed, Expression: e}, nil
	}

	if strings.TrimSpace(after) != "" {
		return AddressingMode{}, errs.Errorf(errs.InvalidArgument, "'"+s+"' doesn't represent a known addressing mode")
	}

	e, err := expr.Eval(r, sizedstr.View(inner))
	if err != nil {
		return AddressingMode{}, err
	}
	return AddressingMode{Mode: Indirect, Expression: e}, nil
}
