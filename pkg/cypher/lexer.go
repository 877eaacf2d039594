package cypher

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokQuotedIdent
	tokString
	tokInteger
	tokFloat
	tokParam
	tokPunct
)

func (tt tokenType) String() string {
	switch tt {
	case tokEOF:
		return "end of input"
	case tokIdent, tokQuotedIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokInteger:
		return "integer"
	case tokFloat:
		return "float"
	case tokParam:
		return "parameter"
	case tokPunct:
		return "punctuation"
	default:
		return "token"
	}
}

// token is one lexical unit. Text is the raw source; value is the decoded
// form (unescaped string, unquoted identifier, parameter name).
type token struct {
	typ   tokenType
	text  string
	value string
	start int
	end   int
}

// multiPunct lists the punctuation recognised as a single token, longest first.
//
//nolint:gochecknoglobals // Static lexer table.
var multiPunct = []string{"<>", "<=", ">=", "=~", "+=", "..", "!="}

const singlePunct = "()[]{},;:.=<>+-*/%^|"

type lexer struct {
	src      string
	pos      int
	comments []*Comment
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// skipTrivia skips whitespace and records comments.
func (lx *lexer) skipTrivia() error {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])

		switch {
		case unicode.IsSpace(r):
			lx.pos += size
		case strings.HasPrefix(lx.src[lx.pos:], "//"):
			lx.lineComment()
		case strings.HasPrefix(lx.src[lx.pos:], "/*"):
			err := lx.blockComment()
			if err != nil {
				return err
			}
		default:
			return nil
		}
	}

	return nil
}

func (lx *lexer) lineComment() {
	start := lx.pos + len("//")

	end := strings.IndexByte(lx.src[start:], '\n')
	if end < 0 {
		end = len(lx.src)
	} else {
		end += start
	}

	lx.comments = append(lx.comments, newComment(KindLineComment, Span{start, end}, lx.src[start:end]))
	lx.pos = end
}

func (lx *lexer) blockComment() error {
	open := lx.pos
	start := lx.pos + len("/*")

	end := strings.Index(lx.src[start:], "*/")
	if end < 0 {
		return newSyntaxError(open, "unterminated block comment")
	}

	end += start
	lx.comments = append(lx.comments, newComment(KindBlockComment, Span{start, end}, lx.src[start:end]))
	lx.pos = end + len("*/")

	return nil
}

func newComment(kind Kind, span Span, value string) *Comment {
	return &Comment{base: newBase(kind, span), Value: value}
}

func (lx *lexer) next() (token, error) {
	err := lx.skipTrivia()
	if err != nil {
		return token{}, err
	}

	if lx.pos >= len(lx.src) {
		return token{typ: tokEOF, start: len(lx.src), end: len(lx.src)}, nil
	}

	start := lx.pos
	r, _ := utf8.DecodeRuneInString(lx.src[start:])

	switch {
	case r == '\'' || r == '"':
		return lx.stringLiteral(start, byte(r))
	case r == '`':
		return lx.quotedIdent(start)
	case r == '$':
		return lx.parameter(start)
	case isDigit(r):
		return lx.number(start), nil
	case r == '.' && start+1 < len(lx.src) && isDigit(rune(lx.src[start+1])):
		return lx.number(start), nil
	case isIdentStart(r):
		return lx.ident(start), nil
	}

	for _, punct := range multiPunct {
		if strings.HasPrefix(lx.src[start:], punct) {
			lx.pos += len(punct)

			return token{typ: tokPunct, text: punct, value: punct, start: start, end: lx.pos}, nil
		}
	}

	if r < utf8.RuneSelf && strings.ContainsRune(singlePunct, r) {
		lx.pos++

		return token{typ: tokPunct, text: string(r), value: string(r), start: start, end: lx.pos}, nil
	}

	return token{}, newSyntaxError(start, "unexpected character "+strconv.QuoteRune(r))
}

func (lx *lexer) ident(start int) token {
	lx.pos = start

	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !isIdentPart(r) {
			break
		}

		lx.pos += size
	}

	text := lx.src[start:lx.pos]

	return token{typ: tokIdent, text: text, value: text, start: start, end: lx.pos}
}

func (lx *lexer) quotedIdent(start int) (token, error) {
	var buf strings.Builder

	lx.pos = start + 1

	for {
		if lx.pos >= len(lx.src) {
			return token{}, newSyntaxError(start, "unterminated quoted identifier")
		}

		ch := lx.src[lx.pos]
		if ch == '`' {
			if lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '`' {
				buf.WriteByte('`')
				lx.pos += 2

				continue
			}

			lx.pos++

			break
		}

		buf.WriteByte(ch)
		lx.pos++
	}

	return token{typ: tokQuotedIdent, text: lx.src[start:lx.pos], value: buf.String(), start: start, end: lx.pos}, nil
}

func (lx *lexer) parameter(start int) (token, error) {
	lx.pos = start + 1

	if lx.pos < len(lx.src) && lx.src[lx.pos] == '`' {
		quoted, err := lx.quotedIdent(lx.pos)
		if err != nil {
			return token{}, err
		}

		return token{typ: tokParam, text: lx.src[start:lx.pos], value: quoted.value, start: start, end: lx.pos}, nil
	}

	nameStart := lx.pos

	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !isIdentPart(r) {
			break
		}

		lx.pos += size
	}

	if lx.pos == nameStart {
		return token{}, newSyntaxError(start, "expected parameter name after '$'")
	}

	name := lx.src[nameStart:lx.pos]

	return token{typ: tokParam, text: lx.src[start:lx.pos], value: name, start: start, end: lx.pos}, nil
}

func (lx *lexer) number(start int) token {
	lx.pos = start
	src := lx.src

	if strings.HasPrefix(src[start:], "0x") || strings.HasPrefix(src[start:], "0X") {
		lx.pos += 2

		for lx.pos < len(src) && isHexDigit(rune(src[lx.pos])) {
			lx.pos++
		}

		return lx.numberToken(start, tokInteger)
	}

	typ := tokInteger
	lx.skipDigits()

	// A single dot followed by a digit continues a float; ".." is a range.
	if lx.pos+1 < len(src) && src[lx.pos] == '.' && isDigit(rune(src[lx.pos+1])) {
		typ = tokFloat
		lx.pos++
		lx.skipDigits()
	}

	if lx.pos < len(src) && (src[lx.pos] == 'e' || src[lx.pos] == 'E') {
		save := lx.pos
		lx.pos++

		if lx.pos < len(src) && (src[lx.pos] == '+' || src[lx.pos] == '-') {
			lx.pos++
		}

		if lx.pos < len(src) && isDigit(rune(src[lx.pos])) {
			typ = tokFloat
			lx.skipDigits()
		} else {
			lx.pos = save
		}
	}

	return lx.numberToken(start, typ)
}

func (lx *lexer) numberToken(start int, typ tokenType) token {
	text := lx.src[start:lx.pos]

	return token{typ: typ, text: text, value: text, start: start, end: lx.pos}
}

func (lx *lexer) skipDigits() {
	for lx.pos < len(lx.src) && isDigit(rune(lx.src[lx.pos])) {
		lx.pos++
	}
}

func (lx *lexer) stringLiteral(start int, quote byte) (token, error) {
	var buf strings.Builder

	lx.pos = start + 1

	for {
		if lx.pos >= len(lx.src) {
			return token{}, newSyntaxError(start, "unterminated string literal")
		}

		ch := lx.src[lx.pos]

		switch ch {
		case quote:
			lx.pos++

			return token{typ: tokString, text: lx.src[start:lx.pos], value: buf.String(), start: start, end: lx.pos}, nil
		case '\\':
			err := lx.escape(&buf)
			if err != nil {
				return token{}, err
			}
		default:
			buf.WriteByte(ch)
			lx.pos++
		}
	}
}

//nolint:gochecknoglobals // Static escape table.
var simpleEscapes = map[byte]byte{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

const (
	shortUnicodeEscape = 4
	longUnicodeEscape  = 8
)

func (lx *lexer) escape(buf *strings.Builder) error {
	escStart := lx.pos

	if lx.pos+1 >= len(lx.src) {
		return newSyntaxError(escStart, "unterminated string literal")
	}

	code := lx.src[lx.pos+1]

	if replacement, ok := simpleEscapes[code]; ok {
		buf.WriteByte(replacement)
		lx.pos += 2

		return nil
	}

	width := 0

	switch code {
	case 'u':
		width = shortUnicodeEscape
	case 'U':
		width = longUnicodeEscape
	default:
		return newSyntaxError(escStart, "invalid escape sequence \\"+string(code))
	}

	digitsStart := lx.pos + 2
	if digitsStart+width > len(lx.src) {
		return newSyntaxError(escStart, "truncated unicode escape")
	}

	codepoint, err := strconv.ParseUint(lx.src[digitsStart:digitsStart+width], 16, 32)
	if err != nil {
		return newSyntaxError(escStart, "invalid unicode escape")
	}

	buf.WriteRune(rune(codepoint))
	lx.pos = digitsStart + width

	return nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
