package expression

import (
	"fmt"

	"github.com/Injng/boxi/internal/types"
)

// Shunt reorders a validated infix sequence into postfix order. Paren
// tokens are consumed and never reach the output.
func Shunt(infix []Token) ([]Token, error) {
	output := make([]Token, 0, len(infix))
	var stack []Token
	for i, token := range infix {
		switch tok := token.(type) {
		case Number:
			output = append(output, tok)

		case Operator:
			for len(stack) != 0 {
				top, isOP := stack[len(stack)-1].(Operator)
				if !isOP || !shouldPopBefore(top, tok) {
					break
				}
				stack = stack[:len(stack)-1]
				output = append(output, top)
			}
			stack = append(stack, tok)

		case Paren:
			if tok == OpenParen {
				stack = append(stack, tok)
				continue
			}
			for {
				if len(stack) == 0 {
					return nil, &types.Error{
						Tag: types.InternalErrorTag,
						Err: fmt.Errorf("unbalanced stack: no open paren for close paren at token %d", i),
					}
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top == Token(OpenParen) {
					break
				}
				output = append(output, top)
			}

		default:
			return nil, &types.Error{
				Tag: types.InternalErrorTag,
				Err: fmt.Errorf("unknown token type at %d: %T", i, token),
			}
		}
	}

	for len(stack) != 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, isParen := top.(Paren); isParen {
			return nil, &types.Error{
				Tag: types.InternalErrorTag,
				Err: fmt.Errorf("unbalanced stack: unclosed open paren"),
			}
		}
		output = append(output, top)
	}

	return output, nil
}

// shouldPopBefore reports whether top, sitting on the operator stack, must
// be emitted before incoming is pushed.
func shouldPopBefore(top, incoming Operator) bool {
	if top.Precedence() > incoming.Precedence() {
		return true
	}
	return top.Precedence() == incoming.Precedence() && incoming.Associativity() == LeftAssociative
}
