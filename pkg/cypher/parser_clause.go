package cypher

import (
	"strings"
)

func (p *parser) parseQuery() *Query {
	start := p.peek().start

	var options []Node

	if p.atKeyword("USING", "PERIODIC", "COMMIT") {
		options = append(options, p.parseUsingPeriodicCommit())
	}

	clauses := p.parseClauses()
	if len(clauses) == 0 {
		p.failAt(p.peek(), "a query clause")
	}

	return &Query{
		base:    newBase(KindQuery, p.spanFrom(start), options, clauses),
		Options: options,
		Clauses: clauses,
	}
}

func (p *parser) parseClauses() []Node {
	var clauses []Node

	for {
		clause := p.parseClause()
		if clause == nil {
			return clauses
		}

		clauses = append(clauses, clause)
	}
}

func (p *parser) parseUsingPeriodicCommit() Node {
	start := p.expectKeyword("USING", "PERIODIC", "COMMIT").start

	var limit Node

	if tok := p.peek(); tok.typ == tokInteger {
		limit = p.parseInteger()
	}

	return &UsingPeriodicCommit{
		base:  newBase(KindUsingPeriodicCommit, p.spanFrom(start), limit),
		Limit: limit,
	}
}

// parseClause returns nil when the next token does not start a clause.
func (p *parser) parseClause() Node {
	switch {
	case p.atKeyword("LOAD", "CSV"):
		return p.parseLoadCSV()
	case p.atKeyword("START"):
		return p.parseStart()
	case p.atKeyword("MATCH"), p.atKeyword("OPTIONAL", "MATCH"):
		return p.parseMatch()
	case p.atKeyword("MERGE"):
		return p.parseMerge()
	case p.atKeyword("CREATE"):
		return p.parseCreate()
	case p.atKeyword("SET"):
		return p.parseSet()
	case p.atKeyword("DELETE"), p.atKeyword("DETACH", "DELETE"):
		return p.parseDelete()
	case p.atKeyword("REMOVE"):
		return p.parseRemove()
	case p.atKeyword("FOREACH"):
		return p.parseForeach()
	case p.atKeyword("WITH"):
		return p.parseWith()
	case p.atKeyword("UNWIND"):
		return p.parseUnwind()
	case p.atKeyword("CALL"):
		return p.parseCall()
	case p.atKeyword("RETURN"):
		return p.parseReturn()
	case p.atKeyword("UNION"):
		return p.parseUnion()
	default:
		return nil
	}
}

func (p *parser) parseLoadCSV() Node {
	start := p.expectKeyword("LOAD", "CSV").start
	withHeaders := p.acceptKeyword("WITH", "HEADERS")

	p.expectKeyword("FROM")
	url := p.parseExpression()

	p.expectKeyword("AS")
	identifier := p.parseIdentifier()

	var terminator Node

	if p.acceptKeyword("FIELDTERMINATOR") {
		terminator = p.parseStringLiteral()
	}

	return &LoadCSV{
		base:            newBase(KindLoadCSV, p.spanFrom(start), url, identifier, terminator),
		WithHeaders:     withHeaders,
		URL:             url,
		Identifier:      identifier,
		FieldTerminator: terminator,
	}
}

func (p *parser) parseStart() Node {
	start := p.expectKeyword("START").start

	points := []Node{p.parseStartPoint()}
	for p.acceptPunct(",") {
		points = append(points, p.parseStartPoint())
	}

	predicate := p.parseOptionalWhere()

	return &Start{
		base:      newBase(KindStart, p.spanFrom(start), points, predicate),
		Points:    points,
		Predicate: predicate,
	}
}

// parseStartPoint parses "n = node:index(...)", "n = node(ids)" and their
// relationship forms.
func (p *parser) parseStartPoint() Node {
	start := p.peek().start
	identifier := p.parseIdentifier()

	p.expectPunct("=")

	var isNode bool

	switch {
	case p.acceptKeyword("NODE"):
		isNode = true
	case p.acceptKeyword("RELATIONSHIP"), p.acceptKeyword("REL"):
	default:
		p.failAt(p.peek(), "node or rel")
	}

	if p.acceptPunct(":") {
		return p.parseIndexStartPoint(start, identifier, isNode)
	}

	p.expectPunct("(")

	if p.acceptPunct("*") {
		p.expectPunct(")")

		kind := KindAllRelsScan
		if isNode {
			kind = KindAllNodesScan
		}

		return &Scan{base: newBase(kind, p.spanFrom(start), identifier), Identifier: identifier}
	}

	ids := []Node{p.parseIDLiteral()}
	for p.acceptPunct(",") {
		ids = append(ids, p.parseIDLiteral())
	}

	p.expectPunct(")")

	kind := KindRelIDLookup
	if isNode {
		kind = KindNodeIDLookup
	}

	return &IDLookup{base: newBase(kind, p.spanFrom(start), identifier, ids), Identifier: identifier, IDs: ids}
}

func (p *parser) parseIDLiteral() Node {
	if tok := p.peek(); tok.typ == tokParam {
		return p.parseAtom()
	}

	return p.parseInteger()
}

func (p *parser) parseIndexStartPoint(start int, identifier Node, isNode bool) Node {
	indexName := p.parseSymbol(KindIndexName, false)

	p.expectPunct("(")

	if tok := p.peek(); (tok.typ == tokIdent || tok.typ == tokQuotedIdent) && p.atPunctN(1, "=") {
		propName := p.parseSymbol(KindPropName, false)

		p.expectPunct("=")
		lookup := p.parseLookupValue()
		p.expectPunct(")")

		kind := KindRelIndexLookup
		if isNode {
			kind = KindNodeIndexLookup
		}

		return &IndexLookup{
			base:       newBase(kind, p.spanFrom(start), identifier, indexName, propName, lookup),
			Identifier: identifier,
			IndexName:  indexName,
			PropName:   propName,
			Lookup:     lookup,
		}
	}

	query := p.parseLookupValue()
	p.expectPunct(")")

	kind := KindRelIndexQuery
	if isNode {
		kind = KindNodeIndexQuery
	}

	return &IndexQuery{
		base:       newBase(kind, p.spanFrom(start), identifier, indexName, query),
		Identifier: identifier,
		IndexName:  indexName,
		Query:      query,
	}
}

// parseLookupValue accepts a string literal or a parameter.
func (p *parser) parseLookupValue() Node {
	tok := p.peek()
	if tok.typ == tokString {
		return p.parseStringLiteral()
	}

	if tok.typ == tokParam || (tok.typ == tokPunct && tok.text == "{") {
		return p.parseAtom()
	}

	p.failAt(tok, "string or parameter")

	return nil
}

func (p *parser) parseMatch() Node {
	start := p.peek().start
	optional := p.acceptKeyword("OPTIONAL")

	p.expectKeyword("MATCH")
	pattern := p.parsePattern()

	var hints []Node

	for p.atKeyword("USING") {
		hints = append(hints, p.parseMatchHint())
	}

	predicate := p.parseOptionalWhere()

	return &Match{
		base:      newBase(KindMatch, p.spanFrom(start), pattern, hints, predicate),
		Optional:  optional,
		Pattern:   pattern,
		Hints:     hints,
		Predicate: predicate,
	}
}

func (p *parser) parseMatchHint() Node {
	start := p.expectKeyword("USING").start

	switch {
	case p.acceptKeyword("INDEX"):
		identifier := p.parseIdentifier()
		label := p.parseLabel()

		p.expectPunct("(")
		propName := p.parseSymbol(KindPropName, false)
		p.expectPunct(")")

		return &UsingIndex{
			base:       newBase(KindUsingIndex, p.spanFrom(start), identifier, label, propName),
			Identifier: identifier,
			Label:      label,
			PropName:   propName,
		}
	case p.acceptKeyword("JOIN"):
		p.expectKeyword("ON")

		identifiers := []Node{p.parseIdentifier()}
		for p.acceptPunct(",") {
			identifiers = append(identifiers, p.parseIdentifier())
		}

		return &UsingJoin{
			base:        newBase(KindUsingJoin, p.spanFrom(start), identifiers),
			Identifiers: identifiers,
		}
	case p.acceptKeyword("SCAN"):
		identifier := p.parseIdentifier()
		label := p.parseLabel()

		return &UsingScan{
			base:       newBase(KindUsingScan, p.spanFrom(start), identifier, label),
			Identifier: identifier,
			Label:      label,
		}
	default:
		p.failAt(p.peek(), "INDEX, JOIN or SCAN")

		return nil
	}
}

func (p *parser) parseMerge() Node {
	start := p.expectKeyword("MERGE").start
	path := p.parsePatternPart()

	var actions []Node

	for p.atKeyword("ON") {
		actions = append(actions, p.parseMergeAction())
	}

	return &Merge{
		base:        newBase(KindMerge, p.spanFrom(start), path, actions),
		PatternPath: path,
		Actions:     actions,
	}
}

func (p *parser) parseMergeAction() Node {
	start := p.expectKeyword("ON").start

	var kind Kind

	switch {
	case p.acceptKeyword("MATCH"):
		kind = KindOnMatch
	case p.acceptKeyword("CREATE"):
		kind = KindOnCreate
	default:
		p.failAt(p.peek(), "MATCH or CREATE")
	}

	p.expectKeyword("SET")
	items := p.parseSetItems()

	return &MergeAction{base: newBase(kind, p.spanFrom(start), items), Items: items}
}

func (p *parser) parseCreate() Node {
	start := p.expectKeyword("CREATE").start
	unique := p.acceptKeyword("UNIQUE")
	pattern := p.parsePattern()

	return &Create{
		base:    newBase(KindCreate, p.spanFrom(start), pattern),
		Unique:  unique,
		Pattern: pattern,
	}
}

func (p *parser) parseSet() Node {
	start := p.expectKeyword("SET").start
	items := p.parseSetItems()

	return &Set{base: newBase(KindSet, p.spanFrom(start), items), Items: items}
}

func (p *parser) parseSetItems() []Node {
	items := []Node{p.parseSetItem()}
	for p.acceptPunct(",") {
		items = append(items, p.parseSetItem())
	}

	return items
}

func (p *parser) parseSetItem() Node {
	start := p.peek().start

	if p.atIdentifier() {
		switch {
		case p.atPunctN(1, ":"):
			identifier := p.parseIdentifier()
			labels := p.parseLabels()

			return &LabelsUpdate{
				base:       newBase(KindSetLabels, p.spanFrom(start), identifier, labels),
				Identifier: identifier,
				Labels:     labels,
			}
		case p.atPunctN(1, "="), p.atPunctN(1, "+="):
			identifier := p.parseIdentifier()

			kind := KindSetAllProperties
			if p.advance().text == "+=" {
				kind = KindMergeProperties
			}

			expression := p.parseExpression()

			return &AssignProperties{
				base:       newBase(kind, p.spanFrom(start), identifier, expression),
				Identifier: identifier,
				Expression: expression,
			}
		}
	}

	property := p.parsePropertyExpression()

	p.expectPunct("=")
	expression := p.parseExpression()

	return &SetProperty{
		base:       newBase(KindSetProperty, p.spanFrom(start), property, expression),
		Property:   property,
		Expression: expression,
	}
}

// parsePropertyExpression parses an expression that must end in a property
// lookup, as used by SET and REMOVE.
func (p *parser) parsePropertyExpression() Node {
	tok := p.peek()

	expr := p.parsePostfix()
	if expr.Kind() != KindPropertyOperator {
		p.fail(tok.start, "expected a property expression")
	}

	return expr
}

func (p *parser) parseDelete() Node {
	start := p.peek().start
	detach := p.acceptKeyword("DETACH")

	p.expectKeyword("DELETE")

	expressions := []Node{p.parseExpression()}
	for p.acceptPunct(",") {
		expressions = append(expressions, p.parseExpression())
	}

	return &Delete{
		base:        newBase(KindDelete, p.spanFrom(start), expressions),
		Detach:      detach,
		Expressions: expressions,
	}
}

func (p *parser) parseRemove() Node {
	start := p.expectKeyword("REMOVE").start

	items := []Node{p.parseRemoveItem()}
	for p.acceptPunct(",") {
		items = append(items, p.parseRemoveItem())
	}

	return &Remove{base: newBase(KindRemove, p.spanFrom(start), items), Items: items}
}

func (p *parser) parseRemoveItem() Node {
	start := p.peek().start

	if p.atIdentifier() && p.atPunctN(1, ":") {
		identifier := p.parseIdentifier()
		labels := p.parseLabels()

		return &LabelsUpdate{
			base:       newBase(KindRemoveLabels, p.spanFrom(start), identifier, labels),
			Identifier: identifier,
			Labels:     labels,
		}
	}

	property := p.parsePropertyExpression()

	return &RemoveProperty{
		base:     newBase(KindRemoveProperty, p.spanFrom(start), property),
		Property: property,
	}
}

func (p *parser) parseForeach() Node {
	start := p.expectKeyword("FOREACH").start

	p.expectPunct("(")
	identifier := p.parseIdentifier()

	p.expectKeyword("IN")
	expression := p.parseExpression()

	p.expectPunct("|")

	clauses := p.parseClauses()
	if len(clauses) == 0 {
		p.failAt(p.peek(), "an update clause")
	}

	p.expectPunct(")")

	return &Foreach{
		base:       newBase(KindForeach, p.spanFrom(start), identifier, expression, clauses),
		Identifier: identifier,
		Expression: expression,
		Clauses:    clauses,
	}
}

// projectionBody holds the parts shared by WITH and RETURN.
type projectionBody struct {
	distinct        bool
	includeExisting bool
	projections     []Node
	orderBy         Node
	skip            Node
	limit           Node
}

func (p *parser) parseProjectionBody() projectionBody {
	var body projectionBody

	body.distinct = p.acceptKeyword("DISTINCT")

	if p.acceptPunct("*") {
		body.includeExisting = true

		if p.acceptPunct(",") {
			body.projections = p.parseProjections(true)
		}
	} else {
		body.projections = p.parseProjections(true)
	}

	if p.atKeyword("ORDER", "BY") {
		body.orderBy = p.parseOrderBy()
	}

	if p.acceptKeyword("SKIP") {
		body.skip = p.parseExpression()
	}

	if p.acceptKeyword("LIMIT") {
		body.limit = p.parseExpression()
	}

	return body
}

func (p *parser) parseWith() Node {
	start := p.expectKeyword("WITH").start
	body := p.parseProjectionBody()
	predicate := p.parseOptionalWhere()

	return &With{
		base: newBase(KindWith, p.spanFrom(start),
			body.projections, body.orderBy, body.skip, body.limit, predicate),
		Distinct:        body.distinct,
		IncludeExisting: body.includeExisting,
		Projections:     body.projections,
		OrderBy:         body.orderBy,
		Skip:            body.skip,
		Limit:           body.limit,
		Predicate:       predicate,
	}
}

func (p *parser) parseReturn() Node {
	start := p.expectKeyword("RETURN").start
	body := p.parseProjectionBody()

	return &Return{
		base: newBase(KindReturn, p.spanFrom(start),
			body.projections, body.orderBy, body.skip, body.limit),
		Distinct:        body.distinct,
		IncludeExisting: body.includeExisting,
		Projections:     body.projections,
		OrderBy:         body.orderBy,
		Skip:            body.skip,
		Limit:           body.limit,
	}
}

func (p *parser) parseProjections(synthesizeAlias bool) []Node {
	projections := []Node{p.parseProjection(synthesizeAlias)}
	for p.acceptPunct(",") {
		projections = append(projections, p.parseProjection(synthesizeAlias))
	}

	return projections
}

// parseProjection parses "expr [AS alias]". Without an explicit alias, a
// non-identifier expression gets an identifier alias named by its source text.
func (p *parser) parseProjection(synthesizeAlias bool) Node {
	start := p.peek().start
	expression := p.parseExpression()

	var alias Node

	switch {
	case p.acceptKeyword("AS"):
		alias = p.parseIdentifier()
	case synthesizeAlias && expression.Kind() != KindIdentifier:
		span := expression.Span()
		alias = &Identifier{
			base: newBase(KindIdentifier, span),
			Name: strings.TrimSpace(p.src[span.Start:span.End]),
		}
	}

	return &Projection{
		base:       newBase(KindProjection, p.spanFrom(start), expression, alias),
		Expression: expression,
		Alias:      alias,
	}
}

func (p *parser) parseOrderBy() Node {
	start := p.expectKeyword("ORDER", "BY").start

	items := []Node{p.parseSortItem()}
	for p.acceptPunct(",") {
		items = append(items, p.parseSortItem())
	}

	return &OrderBy{base: newBase(KindOrderBy, p.spanFrom(start), items), Items: items}
}

func (p *parser) parseSortItem() Node {
	start := p.peek().start
	expression := p.parseExpression()
	ascending := true

	switch {
	case p.acceptKeyword("DESC"), p.acceptKeyword("DESCENDING"):
		ascending = false
	case p.acceptKeyword("ASC"), p.acceptKeyword("ASCENDING"):
	}

	return &SortItem{
		base:       newBase(KindSortItem, p.spanFrom(start), expression),
		Expression: expression,
		Ascending:  ascending,
	}
}

func (p *parser) parseUnwind() Node {
	start := p.expectKeyword("UNWIND").start
	expression := p.parseExpression()

	p.expectKeyword("AS")
	alias := p.parseIdentifier()

	return &Unwind{
		base:       newBase(KindUnwind, p.spanFrom(start), expression, alias),
		Expression: expression,
		Alias:      alias,
	}
}

func (p *parser) parseCall() Node {
	start := p.expectKeyword("CALL").start
	procName := p.parseDottedName(KindProcName)

	var arguments []Node

	if p.acceptPunct("(") {
		arguments = p.parseArguments()
	}

	var projections []Node

	if p.acceptKeyword("YIELD") {
		projections = p.parseProjections(false)
	}

	return &Call{
		base:        newBase(KindCall, p.spanFrom(start), procName, arguments, projections),
		ProcName:    procName,
		Arguments:   arguments,
		Projections: projections,
	}
}

// parseArguments parses a comma separated expression list after '(' up to and
// including the closing ')'.
func (p *parser) parseArguments() []Node {
	var arguments []Node

	if p.acceptPunct(")") {
		return arguments
	}

	arguments = append(arguments, p.parseExpression())
	for p.acceptPunct(",") {
		arguments = append(arguments, p.parseExpression())
	}

	p.expectPunct(")")

	return arguments
}

func (p *parser) parseUnion() Node {
	start := p.expectKeyword("UNION").start
	all := p.acceptKeyword("ALL")

	return &Union{base: newBase(KindUnion, p.spanFrom(start)), All: all}
}

func (p *parser) parseOptionalWhere() Node {
	if !p.acceptKeyword("WHERE") {
		return nil
	}

	return p.parseExpression()
}
