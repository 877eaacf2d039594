package cypher

import (
	"strings"
)

// reservedWords cannot be used as bare identifiers.
//
//nolint:gochecknoglobals // Static keyword table.
var reservedWords = map[string]bool{
	"AND": true, "AS": true, "ASC": true, "ASCENDING": true, "BY": true,
	"CALL": true, "CASE": true, "CONTAINS": true, "CREATE": true,
	"DELETE": true, "DESC": true, "DESCENDING": true, "DETACH": true,
	"DISTINCT": true, "ELSE": true, "END": true, "ENDS": true,
	"FOREACH": true, "IN": true, "IS": true, "LIMIT": true, "MATCH": true,
	"MERGE": true, "NOT": true, "OPTIONAL": true, "OR": true, "ORDER": true,
	"REMOVE": true, "RETURN": true, "SET": true, "SKIP": true, "STARTS": true,
	"THEN": true, "UNION": true, "UNWIND": true, "WHEN": true, "WHERE": true,
	"WITH": true, "XOR": true, "YIELD": true,
}

func (p *parser) atIdentifier() bool {
	tok := p.peek()

	return tok.typ == tokQuotedIdent || (tok.typ == tokIdent && !reservedWords[strings.ToUpper(tok.text)])
}

func (p *parser) parseIdentifier() Node {
	tok := p.peek()
	if !p.atIdentifier() {
		p.failAt(tok, "an identifier")
	}

	p.advance()

	return &Identifier{base: newBase(KindIdentifier, Span{tok.start, tok.end}), Name: tok.value}
}

func (p *parser) parseInteger() Node {
	tok := p.peek()
	if tok.typ != tokInteger {
		p.failAt(tok, "an integer")
	}

	p.advance()

	return &Integer{base: newBase(KindInteger, Span{tok.start, tok.end}), ValueStr: tok.text}
}

func (p *parser) parseStringLiteral() Node {
	tok := p.peek()
	if tok.typ != tokString {
		p.failAt(tok, "a string")
	}

	p.advance()

	return &String{base: newBase(KindString, Span{tok.start, tok.end}), Value: tok.value}
}

// parseSymbol parses a name-like leaf. With colon set, the leading ':' is
// required and included in the span.
func (p *parser) parseSymbol(kind Kind, colon bool) Node {
	start := p.peek().start

	if colon {
		p.expectPunct(":")
	}

	tok := p.peek()
	if tok.typ != tokIdent && tok.typ != tokQuotedIdent {
		p.failAt(tok, "a name")
	}

	p.advance()

	return &Symbol{base: newBase(kind, p.spanFrom(start)), Value: tok.value}
}

func (p *parser) parseLabel() Node {
	return p.parseSymbol(KindLabel, true)
}

func (p *parser) parseLabels() []Node {
	var labels []Node

	for p.atPunct(":") {
		labels = append(labels, p.parseLabel())
	}

	return labels
}

// parseDottedName parses "a.b.c" into a single symbol.
func (p *parser) parseDottedName(kind Kind) Node {
	start := p.peek().start

	parts := []string{p.parseSymbol(kind, false).(*Symbol).Value}

	for p.atPunct(".") {
		tok := p.peekN(1)
		if tok.typ != tokIdent && tok.typ != tokQuotedIdent {
			break
		}

		p.advance()
		p.advance()

		parts = append(parts, tok.value)
	}

	return &Symbol{base: newBase(kind, p.spanFrom(start)), Value: strings.Join(parts, ".")}
}

func (p *parser) parseExpression() Node {
	return p.parseOr()
}

func (p *parser) parseBinaryLevel(keyword string, op Operator, next func() Node) Node {
	start := p.peek().start
	left := next()

	for p.acceptKeyword(keyword) {
		right := next()
		left = &BinaryOperator{
			base:      newBase(KindBinaryOperator, p.spanFrom(start), left, right),
			Op:        op,
			Argument1: left,
			Argument2: right,
		}
	}

	return left
}

func (p *parser) parseOr() Node {
	return p.parseBinaryLevel("OR", OpOr, p.parseXor)
}

func (p *parser) parseXor() Node {
	return p.parseBinaryLevel("XOR", OpXor, p.parseAnd)
}

func (p *parser) parseAnd() Node {
	return p.parseBinaryLevel("AND", OpAnd, p.parseNot)
}

func (p *parser) parseNot() Node {
	if !p.atKeyword("NOT") {
		return p.parseComparison()
	}

	start := p.advance().start
	argument := p.parseNot()

	return &UnaryOperator{
		base:     newBase(KindUnaryOperator, p.spanFrom(start), argument),
		Op:       OpNot,
		Argument: argument,
	}
}

//nolint:gochecknoglobals // Static operator table.
var relationalOps = map[string]Operator{
	"<":  OpLessThan,
	">":  OpGreaterThan,
	"<=": OpLessThanEqual,
	">=": OpGreaterThanEqual,
}

//nolint:gochecknoglobals // Static operator table.
var equalityOps = map[string]Operator{
	"=":  OpEqual,
	"<>": OpNotEqual,
	"!=": OpNotEqual,
	"=~": OpRegex,
}

// parseComparison chains relational operators into a Comparison; equality and
// regex operators are plain binary operators.
func (p *parser) parseComparison() Node {
	start := p.peek().start
	left := p.parseAddSub()

	for {
		tok := p.peek()
		if tok.typ != tokPunct {
			return left
		}

		if op, ok := equalityOps[tok.text]; ok {
			p.advance()

			right := p.parseAddSub()
			left = &BinaryOperator{
				base:      newBase(KindBinaryOperator, p.spanFrom(start), left, right),
				Op:        op,
				Argument1: left,
				Argument2: right,
			}

			continue
		}

		if _, ok := relationalOps[tok.text]; !ok || p.atRelationshipArrow() {
			return left
		}

		left = p.parseComparisonChain(start, left)
	}
}

// atRelationshipArrow reports whether '<' starts "<-" of a pattern.
func (p *parser) atRelationshipArrow() bool {
	return p.atPunct("<") && p.atPunctN(1, "-") && p.peekN(1).start == p.peek().end
}

func (p *parser) parseComparisonChain(start int, first Node) Node {
	arguments := []Node{first}

	var ops []Operator

	for {
		tok := p.peek()

		op, ok := relationalOps[tok.text]
		if tok.typ != tokPunct || !ok || p.atRelationshipArrow() {
			break
		}

		p.advance()

		ops = append(ops, op)
		arguments = append(arguments, p.parseAddSub())
	}

	return &Comparison{
		base:      newBase(KindComparison, p.spanFrom(start), arguments),
		Ops:       ops,
		Arguments: arguments,
	}
}

func (p *parser) parsePunctLevel(ops map[string]Operator, next func() Node) Node {
	start := p.peek().start
	left := next()

	for {
		tok := p.peek()

		op, ok := ops[tok.text]
		if tok.typ != tokPunct || !ok {
			return left
		}

		p.advance()

		right := next()
		left = &BinaryOperator{
			base:      newBase(KindBinaryOperator, p.spanFrom(start), left, right),
			Op:        op,
			Argument1: left,
			Argument2: right,
		}
	}
}

//nolint:gochecknoglobals // Static operator tables.
var (
	additiveOps       = map[string]Operator{"+": OpPlus, "-": OpMinus}
	multiplicativeOps = map[string]Operator{"*": OpMult, "/": OpDiv, "%": OpMod}
	powerOps          = map[string]Operator{"^": OpPow}
)

func (p *parser) parseAddSub() Node {
	return p.parsePunctLevel(additiveOps, p.parseMulDiv)
}

func (p *parser) parseMulDiv() Node {
	return p.parsePunctLevel(multiplicativeOps, p.parsePower)
}

func (p *parser) parsePower() Node {
	return p.parsePunctLevel(powerOps, p.parseUnary)
}

func (p *parser) parseUnary() Node {
	var op Operator

	switch {
	case p.atPunct("+"):
		op = OpUnaryPlus
	case p.atPunct("-"):
		op = OpUnaryMinus
	default:
		return p.parseStringListNull()
	}

	start := p.advance().start
	argument := p.parseUnary()

	return &UnaryOperator{
		base:     newBase(KindUnaryOperator, p.spanFrom(start), argument),
		Op:       op,
		Argument: argument,
	}
}

func (p *parser) parseStringListNull() Node {
	start := p.peek().start
	left := p.parsePostfix()

	for {
		var op Operator

		switch {
		case p.acceptKeyword("STARTS", "WITH"):
			op = OpStartsWith
		case p.acceptKeyword("ENDS", "WITH"):
			op = OpEndsWith
		case p.acceptKeyword("CONTAINS"):
			op = OpContains
		case p.acceptKeyword("IN"):
			op = OpIn
		case p.acceptKeyword("IS", "NULL"):
			left = p.postfixUnary(start, OpIsNull, left)

			continue
		case p.acceptKeyword("IS", "NOT", "NULL"):
			left = p.postfixUnary(start, OpIsNotNull, left)

			continue
		default:
			return left
		}

		right := p.parsePostfix()
		left = &BinaryOperator{
			base:      newBase(KindBinaryOperator, p.spanFrom(start), left, right),
			Op:        op,
			Argument1: left,
			Argument2: right,
		}
	}
}

func (p *parser) postfixUnary(start int, op Operator, argument Node) Node {
	return &UnaryOperator{
		base:     newBase(KindUnaryOperator, p.spanFrom(start), argument),
		Op:       op,
		Argument: argument,
	}
}

// parsePostfix parses an atom followed by property lookups, subscripts,
// slices, label checks and map projections.
func (p *parser) parsePostfix() Node {
	start := p.peek().start
	expr := p.parseAtom()

	for {
		switch {
		case p.atPunct(".") && p.atNameN(1):
			p.advance()

			propName := p.parseSymbol(KindPropName, false)
			expr = &PropertyOperator{
				base:       newBase(KindPropertyOperator, p.spanFrom(start), expr, propName),
				Expression: expr,
				PropName:   propName,
			}
		case p.atPunct("["):
			expr = p.parseSubscript(start, expr)
		case p.atPunct(":") && p.atNameN(1):
			labels := p.parseLabels()
			expr = &LabelsOperator{
				base:       newBase(KindLabelsOperator, p.spanFrom(start), expr, labels),
				Expression: expr,
				Labels:     labels,
			}
		case p.atPunct("{") && expr.Kind() == KindIdentifier:
			expr = p.parseMapProjection(start, expr)
		default:
			return expr
		}
	}
}

func (p *parser) atNameN(n int) bool {
	tok := p.peekN(n)

	return tok.typ == tokIdent || tok.typ == tokQuotedIdent
}

func (p *parser) parseSubscript(start int, expr Node) Node {
	p.expectPunct("[")

	var lower Node

	if !p.atPunct("..") {
		lower = p.parseExpression()

		if p.acceptPunct("]") {
			return &SubscriptOperator{
				base:       newBase(KindSubscriptOperator, p.spanFrom(start), expr, lower),
				Expression: expr,
				Subscript:  lower,
			}
		}
	}

	p.expectPunct("..")

	var upper Node

	if !p.atPunct("]") {
		upper = p.parseExpression()
	}

	p.expectPunct("]")

	return &SliceOperator{
		base:       newBase(KindSliceOperator, p.spanFrom(start), expr, lower, upper),
		Expression: expr,
		Start:      lower,
		End:        upper,
	}
}

func (p *parser) parseMapProjection(start int, expr Node) Node {
	p.expectPunct("{")

	var selectors []Node

	if !p.atPunct("}") {
		selectors = append(selectors, p.parseMapProjectionSelector())
		for p.acceptPunct(",") {
			selectors = append(selectors, p.parseMapProjectionSelector())
		}
	}

	p.expectPunct("}")

	return &MapProjection{
		base:       newBase(KindMapProjection, p.spanFrom(start), expr, selectors),
		Expression: expr,
		Selectors:  selectors,
	}
}

func (p *parser) parseMapProjectionSelector() Node {
	start := p.peek().start

	if p.acceptPunct(".") {
		if p.acceptPunct("*") {
			return &MapProjectionAllProperties{
				base: newBase(KindMapProjectionAllProperties, p.spanFrom(start)),
			}
		}

		propName := p.parseSymbol(KindPropName, false)

		return &MapProjectionProperty{
			base:     newBase(KindMapProjectionProperty, p.spanFrom(start), propName),
			PropName: propName,
		}
	}

	if p.atNameN(0) && p.atPunctN(1, ":") {
		propName := p.parseSymbol(KindPropName, false)

		p.expectPunct(":")
		expression := p.parseExpression()

		return &MapProjectionLiteral{
			base:       newBase(KindMapProjectionLiteral, p.spanFrom(start), propName, expression),
			PropName:   propName,
			Expression: expression,
		}
	}

	identifier := p.parseIdentifier()

	return &MapProjectionIdentifier{
		base:       newBase(KindMapProjectionIdentifier, p.spanFrom(start), identifier),
		Identifier: identifier,
	}
}

//nolint:gochecknoglobals // Static keyword table.
var listPredicateKinds = map[string]Kind{
	"FILTER":  KindFilter,
	"EXTRACT": KindExtract,
	"ALL":     KindAll,
	"ANY":     KindAny,
	"SINGLE":  KindSingle,
	"NONE":    KindNone,
}

func (p *parser) parseAtom() Node {
	tok := p.peek()

	switch tok.typ {
	case tokInteger:
		return p.parseInteger()
	case tokFloat:
		p.advance()

		return &Float{base: newBase(KindFloat, Span{tok.start, tok.end}), ValueStr: tok.text}
	case tokString:
		return p.parseStringLiteral()
	case tokParam:
		p.advance()

		return &Parameter{base: newBase(KindParameter, Span{tok.start, tok.end}), Name: tok.value}
	case tokQuotedIdent:
		return p.parseIdentifier()
	case tokIdent:
		return p.parseWordAtom(tok)
	case tokPunct:
		switch tok.text {
		case "(":
			return p.parseParenthesized()
		case "[":
			return p.parseBracketed()
		case "{":
			return p.parseBrace()
		}
	case tokEOF:
	}

	p.failAt(tok, "an expression")

	return nil
}

func (p *parser) parseWordAtom(tok token) Node {
	word := strings.ToUpper(tok.text)

	switch {
	case word == "TRUE" || word == "FALSE":
		p.advance()

		kind := KindFalse
		if word == "TRUE" {
			kind = KindTrue
		}

		return &Boolean{base: newBase(kind, Span{tok.start, tok.end})}
	case word == "NULL":
		p.advance()

		return &Null{base: newBase(KindNull, Span{tok.start, tok.end})}
	case word == "CASE":
		return p.parseCase()
	}

	if !p.atPunctN(1, "(") {
		if p.atPunctN(1, ".") && p.atNameN(2) && p.dottedCallAhead() {
			return p.parseApply()
		}

		return p.parseIdentifier()
	}

	switch {
	case word == "REDUCE":
		return p.parseReduce()
	case word == "SHORTESTPATH" || word == "ALLSHORTESTPATHS":
		return p.parseShortestPath()
	}

	if kind, ok := listPredicateKinds[word]; ok && p.atNameN(2) && isKeyword(p.peekN(3), "IN") {
		return p.parseListPredicate(kind)
	}

	return p.parseApply()
}

// dottedCallAhead reports whether "a.b.c(" follows, i.e. a namespaced function.
func (p *parser) dottedCallAhead() bool {
	for n := 1; ; n += 2 {
		if !p.atPunctN(n, ".") || !p.atNameN(n+1) {
			return false
		}

		if p.atPunctN(n+2, "(") {
			return true
		}
	}
}

func (p *parser) parseApply() Node {
	start := p.peek().start
	funcName := p.parseDottedName(KindFunctionName)

	p.expectPunct("(")
	distinct := p.acceptKeyword("DISTINCT")

	if p.acceptPunct("*") {
		p.expectPunct(")")

		return &ApplyAllOperator{
			base:     newBase(KindApplyAllOperator, p.spanFrom(start), funcName),
			FuncName: funcName,
			Distinct: distinct,
		}
	}

	arguments := p.parseArguments()

	return &ApplyOperator{
		base:      newBase(KindApplyOperator, p.spanFrom(start), funcName, arguments),
		FuncName:  funcName,
		Distinct:  distinct,
		Arguments: arguments,
	}
}

func (p *parser) parseCase() Node {
	start := p.expectKeyword("CASE").start

	var expression Node

	if !p.atKeyword("WHEN") {
		expression = p.parseExpression()
	}

	var predicates, values, alternatives []Node

	for p.acceptKeyword("WHEN") {
		predicate := p.parseExpression()

		p.expectKeyword("THEN")
		value := p.parseExpression()

		predicates = append(predicates, predicate)
		values = append(values, value)
		alternatives = append(alternatives, predicate, value)
	}

	if len(predicates) == 0 {
		p.failAt(p.peek(), "WHEN")
	}

	var deflt Node

	if p.acceptKeyword("ELSE") {
		deflt = p.parseExpression()
	}

	p.expectKeyword("END")

	return &Case{
		base:       newBase(KindCase, p.spanFrom(start), expression, alternatives, deflt),
		Expression: expression,
		Predicates: predicates,
		Values:     values,
		Default:    deflt,
	}
}

func (p *parser) parseReduce() Node {
	start := p.advance().start

	p.expectPunct("(")
	accumulator := p.parseIdentifier()

	p.expectPunct("=")
	init := p.parseExpression()

	p.expectPunct(",")
	identifier := p.parseIdentifier()

	p.expectKeyword("IN")
	expression := p.parseExpression()

	p.expectPunct("|")
	eval := p.parseExpression()
	p.expectPunct(")")

	return &Reduce{
		base:        newBase(KindReduce, p.spanFrom(start), accumulator, init, identifier, expression, eval),
		Accumulator: accumulator,
		Init:        init,
		Identifier:  identifier,
		Expression:  expression,
		Eval:        eval,
	}
}

// parseListPredicate parses filter(), extract(), all(), any(), single() and
// none().
func (p *parser) parseListPredicate(kind Kind) Node {
	start := p.advance().start

	p.expectPunct("(")
	identifier, expression, predicate, eval := p.parseComprehensionBody()
	p.expectPunct(")")

	return &ListComprehension{
		base:       newBase(kind, p.spanFrom(start), identifier, expression, predicate, eval),
		Identifier: identifier,
		Expression: expression,
		Predicate:  predicate,
		Eval:       eval,
	}
}

func (p *parser) parseComprehensionBody() (identifier, expression, predicate, eval Node) {
	identifier = p.parseIdentifier()

	p.expectKeyword("IN")
	expression = p.parseExpression()
	predicate = p.parseOptionalWhere()

	if p.acceptPunct("|") {
		eval = p.parseExpression()
	}

	return identifier, expression, predicate, eval
}

func (p *parser) parseParenthesized() Node {
	if path := p.tryPatternPath(); path != nil {
		return path
	}

	p.expectPunct("(")
	expr := p.parseExpression()
	p.expectPunct(")")

	return expr
}

// parseBracketed parses a list literal, list comprehension or pattern
// comprehension.
func (p *parser) parseBracketed() Node {
	start := p.peek().start

	if p.atNameN(1) && isKeyword(p.peekN(2), "IN") {
		p.advance()

		identifier, expression, predicate, eval := p.parseComprehensionBody()
		p.expectPunct("]")

		return &ListComprehension{
			base:       newBase(KindListComprehension, p.spanFrom(start), identifier, expression, predicate, eval),
			Identifier: identifier,
			Expression: expression,
			Predicate:  predicate,
			Eval:       eval,
		}
	}

	if comprehension := p.tryPatternComprehension(); comprehension != nil {
		return comprehension
	}

	p.expectPunct("[")

	var elements []Node

	if !p.atPunct("]") {
		elements = append(elements, p.parseExpression())
		for p.acceptPunct(",") {
			elements = append(elements, p.parseExpression())
		}
	}

	p.expectPunct("]")

	return &Collection{base: newBase(KindCollection, p.spanFrom(start), elements), Elements: elements}
}

func (p *parser) tryPatternComprehension() Node {
	return p.try(func() Node {
		start := p.expectPunct("[").start

		var identifier Node

		if p.atIdentifier() && p.atPunctN(1, "=") {
			identifier = p.parseIdentifier()
			p.advance()
		}

		pattern := p.parseRelationshipsPattern()
		predicate := p.parseOptionalWhere()

		p.expectPunct("|")
		eval := p.parseExpression()
		p.expectPunct("]")

		return &PatternComprehension{
			base:       newBase(KindPatternComprehension, p.spanFrom(start), identifier, pattern, predicate, eval),
			Identifier: identifier,
			Pattern:    pattern,
			Predicate:  predicate,
			Eval:       eval,
		}
	})
}

// parseBrace parses a legacy "{param}" parameter or a map literal.
func (p *parser) parseBrace() Node {
	start := p.peek().start

	if name := p.peekN(1); (name.typ == tokIdent || name.typ == tokQuotedIdent || name.typ == tokInteger) &&
		p.atPunctN(2, "}") {
		p.advance()
		p.advance()
		p.advance()

		return &Parameter{base: newBase(KindParameter, p.spanFrom(start)), Name: name.value}
	}

	return p.parseMapLiteral()
}

func (p *parser) parseMapLiteral() Node {
	start := p.expectPunct("{").start

	var keys, values, entries []Node

	for !p.atPunct("}") {
		if len(keys) > 0 {
			p.expectPunct(",")
		}

		key := p.parseSymbol(KindPropName, false)

		p.expectPunct(":")
		value := p.parseExpression()

		keys = append(keys, key)
		values = append(values, value)
		entries = append(entries, key, value)
	}

	p.expectPunct("}")

	return &Map{
		base:   newBase(KindMap, p.spanFrom(start), entries),
		Keys:   keys,
		Values: values,
	}
}
