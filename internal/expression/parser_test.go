package expression_test

import (
	"errors"
	"testing"

	"github.com/Injng/boxi/internal/expression"
	"github.com/Injng/boxi/internal/types"
	"github.com/google/go-cmp/cmp"
)

func TestParseExpr(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source                string
		expected              int64
		expectToBeParseErr    types.ErrorTag
		expectToBeEvaluateErr types.ErrorTag
		debug                 bool
	}{
		{source: "", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "   ", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "+", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "-", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "*", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "/", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "+3", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "3+", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "2++3", expectToBeParseErr: types.ConsecutiveOperatorsTag},
		{source: "2+*3", expectToBeParseErr: types.ConsecutiveOperatorsTag},
		{source: "2 + + 3", expectToBeParseErr: types.ConsecutiveOperatorsTag},
		{source: "(2+3", expectToBeParseErr: types.MismatchedParenthesesTag},
		{source: "2+3)", expectToBeParseErr: types.MismatchedParenthesesTag},
		{source: ")(", expectToBeParseErr: types.MismatchedParenthesesTag},
		{source: "((1)", expectToBeParseErr: types.MismatchedParenthesesTag},
		{source: "(1))", expectToBeParseErr: types.MismatchedParenthesesTag},
		{source: "(2++3", expectToBeParseErr: types.MismatchedParenthesesTag},
		{source: "()", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "(+2)", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "(2+)", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "2(3)", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "(2)3", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "(1)(2)", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "0b2", expectToBeParseErr: types.InvalidRadixDigitTag},
		{source: "0o8", expectToBeParseErr: types.InvalidRadixDigitTag},
		{source: "12a", expectToBeParseErr: types.InvalidRadixDigitTag},
		{source: "1+0b102", expectToBeParseErr: types.InvalidRadixDigitTag},
		{source: "0x1g", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "0x", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "0b", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "2^3", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "1.5", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "a+1", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "2%3", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "1+２", expectToBeParseErr: types.InvalidExpressionTag},
		{source: "9223372036854775808", expectToBeParseErr: types.IntegerOverflowTag},
		{source: "0x8000000000000000", expectToBeParseErr: types.IntegerOverflowTag},
		{source: "1", expected: 1},
		{source: "(1+2)*3", expected: 9, debug: true},
		{source: "0", expected: 0},
		{source: "007", expected: 7},
		{source: "(1)", expected: 1},
		{source: "((1))", expected: 1},
		{source: "2+3*4", expected: 14},
		{source: "2*3+4", expected: 10},
		{source: "10-3-2", expected: 5},
		{source: "8/3/2", expected: 1},
		{source: "(2+3)*4", expected: 20},
		{source: "2*(3+4)*5", expected: 70},
		{source: "((2+3)*(4-1))/5", expected: 3},
		{source: "2-3", expected: -1},
		{source: "7/2", expected: 3},
		{source: "(0-7)/2", expected: -3},
		{source: "0/5", expected: 0},
		{source: "0b1010", expected: 10},
		{source: "0o12", expected: 10},
		{source: "0xa", expected: 10},
		{source: "0xA", expected: 10},
		{source: "0xa+0b1010", expected: 20},
		{source: "0xff*0o10-0b1", expected: 2039},
		{source: " 1 + 2 ", expected: 3},
		{source: "\t(1 +\n2) * 3", expected: 9},
		{source: "1 2", expected: 12},
		{source: "9223372036854775807", expected: 9223372036854775807},
		{source: "0x7fffffffffffffff", expected: 9223372036854775807},
		{source: "0-9223372036854775807-1", expected: -9223372036854775808},
		{source: "5/0", expectToBeEvaluateErr: types.DivideByZeroTag},
		{source: "5/(3-3)", expectToBeEvaluateErr: types.DivideByZeroTag},
		{source: "9223372036854775807+1", expectToBeEvaluateErr: types.IntegerOverflowTag},
		{source: "0-9223372036854775807-2", expectToBeEvaluateErr: types.IntegerOverflowTag},
		{source: "4611686018427387904*2", expectToBeEvaluateErr: types.IntegerOverflowTag},
		{source: "(0-9223372036854775807-1)/(0-1)", expectToBeEvaluateErr: types.IntegerOverflowTag},
		{source: "(0-9223372036854775807-1)*(0-1)", expectToBeEvaluateErr: types.IntegerOverflowTag},
	} {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			parse := expression.Parse
			if tt.debug {
				parse = expression.ParseWithDebugOutput
			}

			infix, err := parse(tt.source)
			if err != nil {
				if tt.expectToBeParseErr != "" {
					if !types.HasTag(err, tt.expectToBeParseErr) {
						t.Fatalf("expect %s but got: %v", tt.expectToBeParseErr, err)
					}
					t.Logf("expected parse error: %v", err)
					return
				}
				t.Fatal(err)
			}
			if tt.expectToBeParseErr != "" {
				t.Errorf("should be parse error %s", tt.expectToBeParseErr)
				return
			}

			postfix, err := expression.Shunt(infix)
			if err != nil {
				t.Fatal(err)
			}

			ret, err := expression.Interpret(postfix)
			if err != nil {
				if tt.expectToBeEvaluateErr != "" {
					if !types.HasTag(err, tt.expectToBeEvaluateErr) {
						t.Fatalf("expect %s but got: %v", tt.expectToBeEvaluateErr, err)
					}
					t.Logf("expected evaluate error: %v", err)
					return
				}
				t.Fatal(err)
			}
			if tt.expectToBeEvaluateErr != "" {
				t.Errorf("should be evaluate error %s", tt.expectToBeEvaluateErr)
				return
			}

			if ret != tt.expected {
				t.Errorf("expect to %d but got %d", tt.expected, ret)
			}
		})
	}
}

func TestParseTokens(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source   string
		expected []expression.Token
	}{
		{
			source: "0b1010",
			expected: []expression.Token{
				expression.Number{Value: 10, Radix: expression.Binary},
			},
		},
		{
			source: "0o12 - 0xa",
			expected: []expression.Token{
				expression.Number{Value: 10, Radix: expression.Octal},
				expression.Subtract,
				expression.Number{Value: 10, Radix: expression.Hexadecimal},
			},
		},
		{
			source: "(2+3)*4",
			expected: []expression.Token{
				expression.OpenParen,
				expression.Number{Value: 2, Radix: expression.Decimal},
				expression.Add,
				expression.Number{Value: 3, Radix: expression.Decimal},
				expression.CloseParen,
				expression.Multiply,
				expression.Number{Value: 4, Radix: expression.Decimal},
			},
		},
		{
			source: "1/((2))",
			expected: []expression.Token{
				expression.Number{Value: 1, Radix: expression.Decimal},
				expression.Divide,
				expression.OpenParen,
				expression.OpenParen,
				expression.Number{Value: 2, Radix: expression.Decimal},
				expression.CloseParen,
				expression.CloseParen,
			},
		},
	} {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			tokens, err := expression.Parse(tt.source)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.expected, tokens); diff != "" {
				t.Errorf("unexpected tokens (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source   string
		position int
	}{
		{source: "2 ++3", position: 4},
		{source: "1 + 0b12", position: 8},
		{source: "(1 + 2", position: 1},
		{source: "1 + 2)", position: 6},
		{source: "1 +", position: 3},
		{source: "7 $", position: 3},
	} {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			_, err := expression.Parse(tt.source)
			var e *types.Error
			if !errors.As(err, &e) {
				t.Fatalf("expect *types.Error but got: %v", err)
			}
			if got := e.Extra["position"]; got != tt.position {
				t.Errorf("expect position %d but got %v (%v)", tt.position, got, err)
			}
			if got := e.Extra["expression"]; got != tt.source {
				t.Errorf("expect expression %q but got %v", tt.source, got)
			}
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()

	const source = "(0x10 + 0o7) * 0b11 - 100 / 7"
	first, err := expression.Evaluate(source)
	if err != nil {
		t.Fatal(err)
	}
	if first != 55 {
		t.Fatalf("expect to 55 but got %d", first)
	}
	for i := 0; i < 10; i++ {
		ret, err := expression.Evaluate(source)
		if err != nil {
			t.Fatal(err)
		}
		if ret != first {
			t.Fatalf("evaluation %d: expect to %d but got %d", i, first, ret)
		}
	}
}

func TestCompile(t *testing.T) {
	t.Parallel()

	expr, err := expression.Compile("1 + 2 * 3")
	if err != nil {
		t.Fatal(err)
	}
	if got := expression.RenderTokens(expr.Infix); got != "1 + 2 * 3" {
		t.Errorf("unexpected infix: %s", got)
	}
	if got := expression.RenderTokens(expr.Postfix); got != "1 2 3 * +" {
		t.Errorf("unexpected postfix: %s", got)
	}
	ret, err := expr.Evaluate()
	if err != nil {
		t.Fatal(err)
	}
	if ret != 7 {
		t.Errorf("expect to 7 but got %d", ret)
	}
}

func FuzzParseExpr(f *testing.F) {
	for _, seed := range []string{"1+2", "(0x1f*0b1)/0o7", "2++3", "((1)", "0b2", "5/0"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, source string) {
		ret, err := expression.Evaluate(source)
		if err != nil {
			if tag, ok := types.TagOf(err); !ok || tag.IsInternal() {
				t.Fatalf("unexpected error for %q: %v", source, err)
			}
			t.Logf("INVALID: %q (%v)", source, err)
			return
		}

		t.Logf("PASS: %q = %d", source, ret)
	})
}
