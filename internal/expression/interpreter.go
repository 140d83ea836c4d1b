package expression

import (
	"fmt"
	"math"

	"github.com/Injng/boxi/internal/types"
)

// Interpret evaluates a postfix sequence. Overflowing arithmetic is
// reported as IntegerOverflow, never wrapped.
func Interpret(postfix []Token) (int64, error) {
	stack := make([]int64, 0, len(postfix))
	for i, token := range postfix {
		switch tok := token.(type) {
		case Number:
			stack = append(stack, tok.Value)

		case Operator:
			if len(stack) < 2 {
				return 0, &types.Error{
					Tag: types.StackUnderflowTag,
					Err: fmt.Errorf("operator %q at token %d needs 2 operands but the stack has %d", tok.Symbol(), i, len(stack)),
				}
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			v, err := calculate(tok, a, b)
			if err != nil {
				return 0, err
			}
			stack = append(stack, v)

		default:
			return 0, &types.Error{
				Tag: types.MalformedPostfixSequenceTag,
				Err: fmt.Errorf("unexpected token in postfix sequence at %d: %s", i, token),
			}
		}
	}

	if len(stack) != 1 {
		return 0, &types.Error{
			Tag: types.MalformedPostfixSequenceTag,
			Err: fmt.Errorf("expected exactly 1 value left on the stack but got %d", len(stack)),
		}
	}
	return stack[0], nil
}

func calculate(op Operator, a, b int64) (int64, error) {
	switch op {
	case Add:
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return 0, overflowError(op, a, b)
		}
		return a + b, nil

	case Subtract:
		if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
			return 0, overflowError(op, a, b)
		}
		return a - b, nil

	case Multiply:
		if a == 0 || b == 0 {
			return 0, nil
		}
		v := a * b
		if v/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, overflowError(op, a, b)
		}
		return v, nil

	case Divide:
		if b == 0 {
			return 0, &types.Error{
				Tag: types.DivideByZeroTag,
				Err: fmt.Errorf("%d / 0", a),
			}
		}
		if a == math.MinInt64 && b == -1 {
			return 0, overflowError(op, a, b)
		}
		return a / b, nil

	default:
		return 0, &types.Error{
			Tag: types.InternalErrorTag,
			Err: fmt.Errorf("unknown operator: %d", int(op)),
		}
	}
}

func overflowError(op Operator, a, b int64) error {
	return &types.Error{
		Tag: types.IntegerOverflowTag,
		Err: fmt.Errorf("%d %s %d overflows a 64-bit integer", a, op.Symbol(), b),
	}
}
