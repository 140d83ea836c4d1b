package expression

import (
	"io"
	"unicode/utf8"

	"github.com/Injng/boxi/internal/types"
)

type lexemeKind int

const (
	numericLiteralLexeme lexemeKind = iota
	operatorLexeme
	openParenLexeme
	closeParenLexeme
)

// lexeme is a span of the whitespace-stripped source.
type lexeme struct {
	kind               lexemeKind
	beginsPos, endsPos int
}

type lexerContextKind int

const (
	defaultLexerContext lexerContextKind = iota
	numericLiteralLexerContext
)

type lexerContext struct {
	kind           lexerContextKind
	rangeBeginsIdx int
}

type lexer struct {
	source string
	index  int
	stack  []lexerContext
	buf    []lexeme
	src    *sourceMap
}

func newLexer(src *sourceMap) *lexer {
	return &lexer{
		source: src.stripped,
		index:  0,
		stack: []lexerContext{
			{kind: defaultLexerContext},
		},
		src: src,
	}
}

func (l *lexer) isCompleted() bool {
	return l.index == len(l.source) && len(l.buf) == 0
}

func (l *lexer) push(t lexeme) {
	l.buf = append(l.buf, t)
}

func (l *lexer) consume() (lexeme, error) {
	if len(l.buf) != 0 {
		tok := l.buf[len(l.buf)-1]
		l.buf = l.buf[:len(l.buf)-1]
		return tok, nil
	}

	for l.index != len(l.source) {
		context := l.stack[len(l.stack)-1]
		switch context.kind {
		case defaultLexerContext:
			switch c := l.source[l.index]; {
			case isDigit(c):
				l.stack = append(l.stack, lexerContext{kind: numericLiteralLexerContext, rangeBeginsIdx: l.index})
				l.index++
			case c == '+', c == '-', c == '*', c == '/':
				l.index++
				return lexeme{kind: operatorLexeme, beginsPos: l.index - 1, endsPos: l.index}, nil
			case c == '(':
				l.index++
				return lexeme{kind: openParenLexeme, beginsPos: l.index - 1, endsPos: l.index}, nil
			case c == ')':
				l.index++
				return lexeme{kind: closeParenLexeme, beginsPos: l.index - 1, endsPos: l.index}, nil
			default:
				r, _ := utf8.DecodeRuneInString(l.source[l.index:])
				return lexeme{}, l.src.errorAt(l.index, types.InvalidExpressionTag, "invalid character %q", r)
			}

		case numericLiteralLexerContext:
			// a literal swallows every alphanumeric byte so that digits out
			// of range for the radix are reported by the parser
			if isAlnum(l.source[l.index]) {
				l.index++
				continue
			}

			l.stack = l.stack[:len(l.stack)-1]
			return lexeme{kind: numericLiteralLexeme, beginsPos: context.rangeBeginsIdx, endsPos: l.index}, nil
		}
	}

	context := l.stack[len(l.stack)-1]
	switch context.kind {
	case numericLiteralLexerContext:
		l.stack = l.stack[:len(l.stack)-1]
		return lexeme{kind: numericLiteralLexeme, beginsPos: context.rangeBeginsIdx, endsPos: l.index}, nil
	default:
		return lexeme{}, io.EOF
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlnum(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
