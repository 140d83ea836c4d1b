package expression

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Injng/boxi/internal/types"
	"github.com/k0kubun/pp"
	"github.com/samber/lo"
)

var parserDebugLog = false

func init() {
	if v, err := strconv.ParseBool(os.Getenv("BOXI_EXPRESSION_DEBUG")); v && err == nil {
		parserDebugLog = true
	}
}

// sourceMap keeps the user's input together with its whitespace-stripped
// form, which is what the lexer scans.
type sourceMap struct {
	original  string
	stripped  string
	positions []int
}

func newSourceMap(source string) *sourceMap {
	var b strings.Builder
	positions := make([]int, 0, len(source))
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case ' ', '\t', '\n', '\r':
			continue // whitespace is insignificant
		}
		b.WriteByte(source[i])
		positions = append(positions, i+1)
	}
	return &sourceMap{
		original:  source,
		stripped:  b.String(),
		positions: positions,
	}
}

// position returns the 1-based position in the original input of the
// stripped byte at idx. The end of input maps past the last byte.
func (m *sourceMap) position(idx int) int {
	if idx < len(m.positions) {
		return m.positions[idx]
	}
	return len(m.original) + 1
}

func (m *sourceMap) errorAt(idx int, tag types.ErrorTag, format string, args ...any) error {
	pos := m.position(idx)
	return types.NewError(tag, "%s at %d: expr=%q", fmt.Sprintf(format, args...), pos, m.original).
		WithPosition(m.original, pos)
}

type parser struct {
	src   *sourceMap
	debug bool
}

// Parse validates source and returns its tokens in infix order.
func Parse(source string) ([]Token, error) {
	p := &parser{src: newSourceMap(source), debug: parserDebugLog}
	return p.parse()
}

func ParseWithDebugOutput(source string) ([]Token, error) {
	p := &parser{src: newSourceMap(source), debug: true}
	return p.parse()
}

func (p *parser) parse() ([]Token, error) {
	if p.src.stripped == "" {
		return nil, types.NewError(types.InvalidExpressionTag, "empty expression is not allowed")
	}
	if err := p.checkParentheses(); err != nil {
		return nil, err
	}

	lex := newLexer(p.src)
	tokens, err := p.parseExpr(lex, false)
	if err != nil {
		return nil, err
	}
	if !lex.isCompleted() {
		tok, err := lex.consume()
		if err != nil {
			return nil, err
		}
		return nil, p.createInvalidTokenError(tok)
	}

	if p.debug {
		pp.Println(p.src.original)
		pp.Println(tokens)
		log.Println(RenderTokens(tokens))
	}
	return tokens, nil
}

func (p *parser) checkParentheses() error {
	var opens []int
	for i := 0; i < len(p.src.stripped); i++ {
		switch p.src.stripped[i] {
		case '(':
			opens = append(opens, i)
		case ')':
			if len(opens) == 0 {
				return p.src.errorAt(i, types.MismatchedParenthesesTag, "unmatched %q", ")")
			}
			opens = opens[:len(opens)-1]
		}
	}
	if len(opens) != 0 {
		return p.src.errorAt(opens[len(opens)-1], types.MismatchedParenthesesTag, "unclosed %q", "(")
	}
	return nil
}

// parseExpr reads `operand (operator operand)*` and returns the flattened
// tokens. When nested, the closing paren is left for the caller.
func (p *parser) parseExpr(lex *lexer, nested bool) ([]Token, error) {
	var tokens []Token
	var lastOp *lexeme
	for {
		tok, err := lex.consume()
		if errors.Is(err, io.EOF) {
			if lastOp != nil {
				return nil, p.src.errorAt(lastOp.beginsPos, types.InvalidExpressionTag, "missing operand after operator %q", p.extractLiteralString(*lastOp))
			}
			return nil, p.src.errorAt(len(p.src.stripped), types.InvalidExpressionTag, "unexpected end of expression")
		} else if err != nil {
			return nil, err
		}
		if p.debug {
			log.Println("operand token: ", p.extractLiteralString(tok))
		}

		switch tok.kind {
		case numericLiteralLexeme:
			num, err := p.parseNumber(tok)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, num)

		case openParenLexeme:
			inner, err := p.parseExpr(lex, true)
			if err != nil {
				return nil, err
			}
			closeTok, err := lex.consume()
			if errors.Is(err, io.EOF) || (err == nil && closeTok.kind != closeParenLexeme) {
				return nil, p.src.errorAt(tok.beginsPos, types.MismatchedParenthesesTag, "unclosed %q", "(")
			} else if err != nil {
				return nil, err
			}
			tokens = append(tokens, OpenParen)
			tokens = append(tokens, inner...)
			tokens = append(tokens, CloseParen)

		case operatorLexeme:
			if lastOp != nil {
				return nil, p.src.errorAt(tok.beginsPos, types.ConsecutiveOperatorsTag,
					"operator %q follows operator %q", p.extractLiteralString(tok), p.extractLiteralString(*lastOp))
			}
			return nil, p.src.errorAt(tok.beginsPos, types.InvalidExpressionTag, "missing operand before operator %q", p.extractLiteralString(tok))

		case closeParenLexeme:
			if lastOp != nil {
				return nil, p.src.errorAt(lastOp.beginsPos, types.InvalidExpressionTag, "missing operand after operator %q", p.extractLiteralString(*lastOp))
			}
			return nil, p.src.errorAt(tok.beginsPos, types.InvalidExpressionTag, "empty parentheses")
		}
		lastOp = nil

		tok, err = lex.consume()
		if errors.Is(err, io.EOF) {
			if nested {
				return nil, p.src.errorAt(len(p.src.stripped), types.MismatchedParenthesesTag, "unclosed %q", "(")
			}
			return tokens, nil
		} else if err != nil {
			return nil, err
		}
		if p.debug {
			log.Println("operator token: ", p.extractLiteralString(tok))
		}

		switch tok.kind {
		case operatorLexeme:
			tokens = append(tokens, operatorSymbolMap[p.src.stripped[tok.beginsPos]])
			lastOp = &tok

		case closeParenLexeme:
			if !nested {
				return nil, p.src.errorAt(tok.beginsPos, types.MismatchedParenthesesTag, "unmatched %q", ")")
			}
			lex.push(tok)
			return tokens, nil

		default:
			// juxtaposition such as "2(3)" or "(1)2" is not an implied multiplication
			return nil, p.src.errorAt(tok.beginsPos, types.InvalidExpressionTag,
				"missing operator before %q", p.extractLiteralString(tok))
		}
	}
}

var radixPrefixMap = map[string]Radix{
	"0b": Binary,
	"0o": Octal,
	"0x": Hexadecimal,
}

func (p *parser) parseNumber(tok lexeme) (Number, error) {
	literal := p.extractLiteralString(tok)
	radix := Decimal
	digitsBeginsPos := tok.beginsPos
	if len(literal) >= 2 {
		if r, ok := radixPrefixMap[literal[:2]]; ok {
			radix = r
			digitsBeginsPos += 2
		}
	}

	digits := p.src.stripped[digitsBeginsPos:tok.endsPos]
	if digits == "" {
		return Number{}, p.src.errorAt(tok.beginsPos, types.InvalidExpressionTag, "missing digits after radix prefix %q", radix.Prefix())
	}

	base := radix.Base()
	for i := 0; i < len(digits); i++ {
		v, ok := digitValue(digits[i])
		if ok && v < base {
			continue
		}
		if ok && v < 16 {
			return Number{}, p.src.errorAt(digitsBeginsPos+i, types.InvalidRadixDigitTag,
				"invalid digit %q for %s literal %q", digits[i], strings.ToLower(radix.String()), literal)
		}
		return Number{}, p.src.errorAt(digitsBeginsPos+i, types.InvalidExpressionTag, "invalid character %q in literal %q", digits[i], literal)
	}

	v, err := strconv.ParseInt(digits, base, 64)
	if errors.Is(err, strconv.ErrRange) {
		return Number{}, p.src.errorAt(tok.beginsPos, types.IntegerOverflowTag, "literal %q does not fit in a 64-bit integer", literal)
	} else if err != nil {
		return Number{}, p.src.errorAt(tok.beginsPos, types.InvalidExpressionTag, "invalid literal %q: %v", literal, err)
	}

	return Number{Value: v, Radix: radix}, nil
}

func digitValue(c byte) (int, bool) {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0'), true
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10, true
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func (p *parser) extractLiteralString(t lexeme) string {
	return p.src.stripped[t.beginsPos:t.endsPos]
}

func (p *parser) createInvalidTokenError(t lexeme) error {
	return p.src.errorAt(t.beginsPos, types.InvalidExpressionTag, "invalid token %s", p.extractLiteralString(t))
}

// RenderTokens renders a token sequence in its source notation, separated
// by spaces.
func RenderTokens(tokens []Token) string {
	return strings.Join(lo.Map(tokens, func(t Token, _ int) string {
		switch v := t.(type) {
		case Number:
			return v.Literal()
		case Operator:
			return v.Symbol()
		case Paren:
			if v == OpenParen {
				return "("
			}
			return ")"
		default:
			return t.String()
		}
	}), " ")
}
