package expression

import (
	"fmt"
	"strconv"
)

// Token is one element of an infix or postfix sequence. It is one of
// Number, Operator or Paren.
type Token interface {
	fmt.Stringer
	isToken()
}

type Radix int

const (
	Decimal Radix = iota
	Binary
	Octal
	Hexadecimal
)

func (r Radix) Base() int {
	switch r {
	case Binary:
		return 2
	case Octal:
		return 8
	case Hexadecimal:
		return 16
	default:
		return 10
	}
}

func (r Radix) Prefix() string {
	switch r {
	case Binary:
		return "0b"
	case Octal:
		return "0o"
	case Hexadecimal:
		return "0x"
	default:
		return ""
	}
}

func (r Radix) String() string {
	switch r {
	case Binary:
		return "Binary"
	case Octal:
		return "Octal"
	case Hexadecimal:
		return "Hexadecimal"
	default:
		return "Decimal"
	}
}

// Number is an integer literal. Radix only records how the literal was
// written; arithmetic uses Value alone.
type Number struct {
	Value int64
	Radix Radix
}

func (Number) isToken() {}

func (n Number) String() string {
	return fmt.Sprintf("Number(%s(%d))", n.Radix, n.Value)
}

// Literal renders the number back in the notation it was written in.
func (n Number) Literal() string {
	return n.Radix.Prefix() + strconv.FormatInt(n.Value, n.Radix.Base())
}

type Associativity int

const (
	LeftAssociative Associativity = iota
	RightAssociative
)

type Operator int

const (
	Add Operator = iota
	Subtract
	Multiply
	Divide
)

var operatorSymbolMap = map[byte]Operator{
	'+': Add,
	'-': Subtract,
	'*': Multiply,
	'/': Divide,
}

func (Operator) isToken() {}

func (o Operator) Precedence() uint8 {
	switch o {
	case Multiply, Divide:
		return 2
	default:
		return 1
	}
}

func (o Operator) Associativity() Associativity {
	return LeftAssociative
}

func (o Operator) Symbol() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

func (o Operator) String() string {
	switch o {
	case Add:
		return "Operator(Add)"
	case Subtract:
		return "Operator(Subtract)"
	case Multiply:
		return "Operator(Multiply)"
	case Divide:
		return "Operator(Divide)"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

type Paren int

const (
	OpenParen Paren = iota
	CloseParen
)

func (Paren) isToken() {}

func (p Paren) String() string {
	if p == OpenParen {
		return "Paren(Open)"
	}
	return "Paren(Close)"
}
