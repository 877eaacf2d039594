package cypher

import (
	"strings"
)

// Result holds the roots produced by Parse. Roots are statements, client
// commands, top-level comments and, in recovery mode, error nodes.
type Result struct {
	src      string
	roots    []Node
	errs     []*SyntaxError
	released bool
	err      error
}

// Roots returns the top-level nodes in source order. It returns nil once the
// result has been released.
func (r *Result) Roots() []Node {
	return r.roots
}

// Errors returns the syntax errors skipped in recovery mode.
func (r *Result) Errors() []*SyntaxError {
	return r.errs
}

// Source returns the parsed input text.
func (r *Result) Source() string {
	return r.src
}

// Released reports whether Release has been called.
func (r *Result) Released() bool {
	return r.released
}

// Err reports misuse of the result, such as a second Release.
func (r *Result) Err() error {
	return r.err
}

// Release drops the tree held by the result. It must be called exactly once;
// later calls return ErrReleased.
func (r *Result) Release() error {
	if r.released {
		r.err = ErrReleased

		return ErrReleased
	}

	r.released = true
	r.roots = nil
	r.errs = nil

	return nil
}

type parseConfig struct {
	recover bool
}

// Option configures Parse.
type Option func(*parseConfig)

// WithRecovery makes Parse skip a malformed statement up to the next ';' and
// record it as an error node instead of failing.
func WithRecovery() Option {
	return func(cfg *parseConfig) {
		cfg.recover = true
	}
}

// Parse parses one or more statements and client commands.
func Parse(text string, opts ...Option) (*Result, error) {
	var cfg parseConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	p := &parser{src: text, lx: newLexer(text)}
	result := &Result{src: text}

	var statements []Node

	for {
		before := p.lastEnd

		root, done, err := p.parseRoot()
		if err != nil {
			var syntaxErr *SyntaxError
			if !asSyntaxError(err, &syntaxErr) || !cfg.recover {
				return nil, err
			}

			syntaxErr.locate(text)
			result.errs = append(result.errs, syntaxErr)
			root = p.recoverStatement(syntaxErr.Offset)

			if p.lastEnd <= before {
				// No progress; the rest of the input becomes one error node.
				root = p.recoverRest(before)
			}
		}

		if root != nil {
			statements = append(statements, root)
		}

		if done {
			break
		}
	}

	result.roots = attachComments(statements, p.lx.comments)

	return result, nil
}

func asSyntaxError(err error, target **SyntaxError) bool {
	syntaxErr, ok := err.(*SyntaxError) //nolint:errorlint // parser errors are never wrapped.
	if ok {
		*target = syntaxErr
	}

	return ok
}

type parser struct {
	src       string
	lx        *lexer
	buf       []token
	lastEnd   int
	stmtStart int
}

// bailout unwinds the recursive descent on the first syntax error.
type bailout struct {
	err *SyntaxError
}

func (p *parser) fail(offset int, message string) {
	err := newSyntaxError(offset, message)
	err.locate(p.src)

	panic(bailout{err: err})
}

func (p *parser) failAt(tok token, expected string) {
	if tok.typ == tokEOF {
		p.fail(tok.start, "unexpected end of input, expected "+expected)
	}

	p.fail(tok.start, "unexpected "+quoteToken(tok)+", expected "+expected)
}

func quoteToken(tok token) string {
	return "'" + tok.text + "'"
}

// parseRoot parses the next statement or command. done is true at end of input.
func (p *parser) parseRoot() (root Node, done bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			bail, ok := rec.(bailout)
			if !ok {
				panic(rec)
			}

			root, done, err = nil, false, bail.err
		}
	}()

	p.stmtStart = p.lastEnd

	if len(p.buf) > 0 && p.buf[0].typ == tokPunct && p.buf[0].text == ":" {
		p.rewindTo(p.buf[0].start)
	}

	if len(p.buf) == 0 {
		p.stmtStart = max(p.stmtStart, p.lx.pos)
	}

	if len(p.buf) == 0 {
		lexErr := p.lx.skipTrivia()
		if lexErr != nil {
			return nil, false, p.located(lexErr)
		}

		if p.lx.pos < len(p.src) && p.src[p.lx.pos] == ':' {
			return p.parseCommand(), false, nil
		}
	}

	tok := p.peek()
	if tok.typ == tokEOF {
		return nil, true, nil
	}

	p.stmtStart = tok.start

	if p.atPunct(";") {
		// Empty statement.
		p.advance()

		return nil, false, nil
	}

	return p.parseStatement(), false, nil
}

func (p *parser) located(err error) error {
	if syntaxErr, ok := err.(*SyntaxError); ok { //nolint:errorlint // lexer errors are never wrapped.
		syntaxErr.locate(p.src)
	}

	return err
}

// rewindTo drops buffered lookahead and moves the lexer back to offset.
func (p *parser) rewindTo(offset int) {
	p.buf = p.buf[:0]
	p.lx.pos = offset

	kept := p.lx.comments[:0]

	for _, comment := range p.lx.comments {
		if comment.Span().Start < offset {
			kept = append(kept, comment)
		}
	}

	p.lx.comments = kept
}

// recoverStatement skips input from offset to the next ';' outside quotes and
// returns an error node covering the skipped text.
func (p *parser) recoverStatement(offset int) Node {
	start := min(p.stmtStart, offset)

	end := skipToSemicolon(p.src, start)
	p.rewindTo(end)
	p.lastEnd = end

	if end < len(p.src) {
		// Step over the ';' so the next statement starts after it.
		p.lx.pos++
		p.lastEnd = end + 1
	}

	value := strings.TrimSpace(p.src[start:end])

	return &Error{base: newBase(KindError, Span{start, end}), Value: value}
}

// recoverRest turns everything from start to the end of input into one error
// node and leaves the lexer at end of input.
func (p *parser) recoverRest(start int) Node {
	end := len(p.src)
	p.rewindTo(end)
	p.lastEnd = end

	value := strings.TrimSpace(p.src[start:end])

	return &Error{base: newBase(KindError, Span{start, end}), Value: value}
}

func skipToSemicolon(src string, from int) int {
	var quote byte

	for idx := from; idx < len(src); idx++ {
		ch := src[idx]

		switch {
		case quote != 0 && ch == '\\':
			idx++
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
		case ch == ';':
			return idx
		}
	}

	return len(src)
}

// Token buffer helpers.

func (p *parser) peekN(n int) token {
	for len(p.buf) <= n {
		tok, err := p.lx.next()
		if err != nil {
			var syntaxErr *SyntaxError
			if asSyntaxError(err, &syntaxErr) {
				syntaxErr.locate(p.src)
				panic(bailout{err: syntaxErr})
			}

			panic(err)
		}

		p.buf = append(p.buf, tok)

		if tok.typ == tokEOF {
			break
		}
	}

	if n >= len(p.buf) {
		return p.buf[len(p.buf)-1]
	}

	return p.buf[n]
}

func (p *parser) peek() token {
	return p.peekN(0)
}

func (p *parser) advance() token {
	tok := p.peek()
	if tok.typ == tokEOF {
		return tok
	}

	p.buf = p.buf[1:]
	p.lastEnd = tok.end

	return tok
}

func isKeyword(tok token, keyword string) bool {
	return tok.typ == tokIdent && strings.EqualFold(tok.text, keyword)
}

// atKeyword reports whether the next tokens are the given keywords in order.
func (p *parser) atKeyword(keywords ...string) bool {
	for idx, keyword := range keywords {
		if !isKeyword(p.peekN(idx), keyword) {
			return false
		}
	}

	return true
}

func (p *parser) acceptKeyword(keywords ...string) bool {
	if !p.atKeyword(keywords...) {
		return false
	}

	for range keywords {
		p.advance()
	}

	return true
}

func (p *parser) expectKeyword(keywords ...string) token {
	var first token

	for idx, keyword := range keywords {
		tok := p.peek()
		if !isKeyword(tok, keyword) {
			p.failAt(tok, keyword)
		}

		p.advance()

		if idx == 0 {
			first = tok
		}
	}

	return first
}

func (p *parser) atPunct(punct string) bool {
	tok := p.peek()

	return tok.typ == tokPunct && tok.text == punct
}

func (p *parser) atPunctN(n int, punct string) bool {
	tok := p.peekN(n)

	return tok.typ == tokPunct && tok.text == punct
}

func (p *parser) acceptPunct(punct string) bool {
	if !p.atPunct(punct) {
		return false
	}

	p.advance()

	return true
}

func (p *parser) expectPunct(punct string) token {
	tok := p.peek()
	if tok.typ != tokPunct || tok.text != punct {
		p.failAt(tok, "'"+punct+"'")
	}

	return p.advance()
}

func (p *parser) spanFrom(start int) Span {
	return Span{Start: start, End: max(p.lastEnd, start)}
}

// Statements.

func (p *parser) parseStatement() Node {
	start := p.peek().start

	var options []Node

	for {
		switch {
		case p.atKeyword("CYPHER"):
			options = append(options, p.parseCypherOption())
		case p.atKeyword("EXPLAIN"):
			tok := p.advance()
			options = append(options, &ExplainOption{base: newBase(KindExplainOption, Span{tok.start, tok.end})})
		case p.atKeyword("PROFILE"):
			tok := p.advance()
			options = append(options, &ProfileOption{base: newBase(KindProfileOption, Span{tok.start, tok.end})})
		default:
			return p.finishStatement(start, options)
		}
	}
}

func (p *parser) finishStatement(start int, options []Node) Node {
	var (
		body  Node
		query *Query
	)

	if p.atSchemaCommand() {
		body = p.parseSchemaCommand()
	} else {
		query = p.parseQuery()
		body = query
	}

	if !p.acceptPunct(";") {
		tok := p.peek()
		if tok.typ != tokEOF {
			p.failAt(tok, "';' or end of input")
		}
	}

	// The query range runs to the end of the statement, terminator included.
	if query != nil {
		query.span.End = p.lastEnd
	}

	return &Statement{
		base:    newBase(KindStatement, p.spanFrom(start), options, body),
		Options: options,
		Body:    body,
	}
}

func (p *parser) parseCypherOption() Node {
	start := p.expectKeyword("CYPHER").start

	var version Node

	tok := p.peek()
	if tok.typ == tokFloat || tok.typ == tokInteger {
		p.advance()
		version = &String{base: newBase(KindString, Span{tok.start, tok.end}), Value: tok.text}
	}

	var params []Node

	for p.peek().typ == tokIdent && p.atPunctN(1, "=") {
		params = append(params, p.parseCypherOptionParam())
	}

	return &CypherOption{
		base:    newBase(KindCypherOption, p.spanFrom(start), version, params),
		Version: version,
		Params:  params,
	}
}

func (p *parser) parseCypherOptionParam() Node {
	nameTok := p.advance()
	p.expectPunct("=")

	valueTok := p.peek()
	switch valueTok.typ {
	case tokIdent, tokInteger, tokFloat, tokString:
		p.advance()
	default:
		p.failAt(valueTok, "option value")
	}

	name := &String{base: newBase(KindString, Span{nameTok.start, nameTok.end}), Value: nameTok.value}
	value := &String{base: newBase(KindString, Span{valueTok.start, valueTok.end}), Value: valueTok.value}

	return &CypherOptionParam{
		base:  newBase(KindCypherOptionParam, p.spanFrom(nameTok.start), name, value),
		Name:  name,
		Value: value,
	}
}

// Client commands are lexed from raw text: ":name arg 'quoted arg'".

func (p *parser) parseCommand() Node {
	src := p.src
	start := p.lx.pos
	pos := start + 1

	nameStart := pos
	for pos < len(src) && !isCommandBreak(src[pos]) && src[pos] != ' ' && src[pos] != '\t' {
		pos++
	}

	if pos == nameStart {
		p.fail(start, "expected command name after ':'")
	}

	name := &String{base: newBase(KindString, Span{nameStart, pos}), Value: src[nameStart:pos]}
	end := pos

	var args []Node

	for {
		for pos < len(src) && (src[pos] == ' ' || src[pos] == '\t') {
			pos++
		}

		if pos >= len(src) || isCommandBreak(src[pos]) {
			break
		}

		arg, next := p.commandArgument(pos)
		args = append(args, arg)
		pos, end = next, next
	}

	if pos < len(src) && src[pos] == ';' {
		pos++
	}

	p.lx.pos = pos
	p.lastEnd = end

	return &Command{
		base:      newBase(KindCommand, Span{start, end}, name, args),
		Name:      name,
		Arguments: args,
	}
}

func (p *parser) commandArgument(pos int) (Node, int) {
	src := p.src
	start := pos

	if quote := src[pos]; quote == '\'' || quote == '"' {
		var buf strings.Builder

		pos++

		for pos < len(src) && src[pos] != quote {
			if src[pos] == '\\' && pos+1 < len(src) {
				pos++
			}

			buf.WriteByte(src[pos])
			pos++
		}

		if pos >= len(src) {
			p.fail(start, "unterminated quoted command argument")
		}

		pos++

		return &String{base: newBase(KindString, Span{start, pos}), Value: buf.String()}, pos
	}

	for pos < len(src) && !isCommandBreak(src[pos]) && src[pos] != ' ' && src[pos] != '\t' {
		pos++
	}

	return &String{base: newBase(KindString, Span{start, pos}), Value: src[start:pos]}, pos
}

func isCommandBreak(ch byte) bool {
	return ch == '\n' || ch == '\r' || ch == ';'
}

type childInserter interface {
	insertChild(child Node)
}

// attachComments places each comment under the deepest node whose range
// contains it. Comments outside every root become roots themselves.
func attachComments(roots []Node, comments []*Comment) []Node {
	for _, comment := range comments {
		span := comment.Span()

		owner := deepestContaining(roots, span)
		if owner == nil {
			roots = insertRoot(roots, comment)

			continue
		}

		if inserter, ok := owner.(childInserter); ok {
			inserter.insertChild(comment)
		}
	}

	return roots
}

func deepestContaining(nodes []Node, span Span) Node {
	var found Node

	for {
		var next Node

		for _, node := range nodes {
			if node.Kind() != KindLineComment && node.Kind() != KindBlockComment && node.Span().Contains(span) {
				next = node

				break
			}
		}

		if next == nil {
			return found
		}

		found = next
		nodes = next.Children()
	}
}

func insertRoot(roots []Node, root Node) []Node {
	pos := len(roots)

	for idx, existing := range roots {
		if existing.Span().Start > root.Span().Start {
			pos = idx

			break
		}
	}

	roots = append(roots, nil)
	copy(roots[pos+1:], roots[pos:])
	roots[pos] = root

	return roots
}
