package cypher

func (p *parser) atSchemaCommand() bool {
	if !p.atKeyword("CREATE") && !p.atKeyword("DROP") {
		return false
	}

	next := p.peekN(1)

	return isKeyword(next, "INDEX") || isKeyword(next, "CONSTRAINT")
}

// parseSchemaCommand parses index and property constraint commands.
func (p *parser) parseSchemaCommand() Node {
	start := p.peek().start
	create := isKeyword(p.advance(), "CREATE")

	if p.acceptKeyword("INDEX") {
		return p.parseNodePropIndex(start, create)
	}

	p.expectKeyword("CONSTRAINT")
	p.expectKeyword("ON")

	return p.parsePropConstraint(start, create)
}

func (p *parser) parseNodePropIndex(start int, create bool) Node {
	p.expectKeyword("ON")
	label := p.parseLabel()

	p.expectPunct("(")
	propName := p.parseSymbol(KindPropName, false)
	p.expectPunct(")")

	kind := KindDropNodePropIndex
	if create {
		kind = KindCreateNodePropIndex
	}

	return &NodePropIndex{
		base:     newBase(kind, p.spanFrom(start), label, propName),
		Label:    label,
		PropName: propName,
	}
}

// parsePropConstraint parses "(n:Label) ASSERT ..." or "()-[r:TYPE]-() ASSERT ...".
func (p *parser) parsePropConstraint(start int, create bool) Node {
	var (
		identifier, entity Node
		relationship       bool
	)

	p.expectPunct("(")

	if p.acceptPunct(")") {
		relationship = true

		p.acceptPunct("<")
		p.expectPunct("-")
		p.expectPunct("[")
		identifier = p.parseIdentifier()
		entity = p.parseSymbol(KindReltype, true)
		p.expectPunct("]")
		p.expectPunct("-")
		p.acceptPunct(">")
		p.expectPunct("(")
		p.expectPunct(")")
	} else {
		identifier = p.parseIdentifier()
		entity = p.parseLabel()
		p.expectPunct(")")
	}

	p.expectKeyword("ASSERT")
	expression := p.parseExpression()
	unique := p.acceptKeyword("IS", "UNIQUE")

	var kind Kind

	switch {
	case relationship && create:
		kind = KindCreateRelPropConstraint
	case relationship:
		kind = KindDropRelPropConstraint
	case create:
		kind = KindCreateNodePropConstraint
	default:
		kind = KindDropNodePropConstraint
	}

	return &PropConstraint{
		base:       newBase(kind, p.spanFrom(start), identifier, entity, expression),
		Identifier: identifier,
		Entity:     entity,
		Expression: expression,
		Unique:     unique,
	}
}
