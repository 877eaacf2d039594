package cypher

import (
	"strings"
)

// parserMark is a restorable parser position.
type parserMark struct {
	buf       []token
	pos       int
	lastEnd   int
	nComments int
}

func (p *parser) mark() parserMark {
	return parserMark{
		buf:       append([]token(nil), p.buf...),
		pos:       p.lx.pos,
		lastEnd:   p.lastEnd,
		nComments: len(p.lx.comments),
	}
}

func (p *parser) reset(m parserMark) {
	p.buf = m.buf
	p.lx.pos = m.pos
	p.lastEnd = m.lastEnd
	p.lx.comments = p.lx.comments[:m.nComments]
}

// try runs a speculative parse. On a syntax error, or when fn returns nil, the
// parser is rewound and try returns nil.
func (p *parser) try(fn func() Node) (result Node) {
	saved := p.mark()

	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(bailout); !ok {
				panic(rec)
			}

			p.reset(saved)
			result = nil
		}
	}()

	result = fn()
	if result == nil {
		p.reset(saved)
	}

	return result
}

func (p *parser) parsePattern() Node {
	start := p.peek().start

	paths := []Node{p.parsePatternPart()}
	for p.acceptPunct(",") {
		paths = append(paths, p.parsePatternPart())
	}

	return &Pattern{base: newBase(KindPattern, p.spanFrom(start), paths), Paths: paths}
}

// parsePatternPart parses an optionally named path.
func (p *parser) parsePatternPart() Node {
	if !p.atIdentifier() || !p.atPunctN(1, "=") {
		return p.parseAnonymousPath()
	}

	start := p.peek().start
	identifier := p.parseIdentifier()

	p.expectPunct("=")
	path := p.parseAnonymousPath()

	return &NamedPath{
		base:       newBase(KindNamedPath, p.spanFrom(start), identifier, path),
		Identifier: identifier,
		Path:       path,
	}
}

func (p *parser) parseAnonymousPath() Node {
	if p.atKeyword("SHORTESTPATH") || p.atKeyword("ALLSHORTESTPATHS") {
		return p.parseShortestPath()
	}

	return p.parsePatternPath(false)
}

func (p *parser) parseShortestPath() Node {
	tok := p.advance()
	single := strings.EqualFold(tok.text, "shortestPath")

	p.expectPunct("(")
	path := p.parsePatternPath(false)
	p.expectPunct(")")

	return &ShortestPath{
		base:   newBase(KindShortestPath, p.spanFrom(tok.start), path),
		Single: single,
		Path:   path,
	}
}

// parsePatternPath parses "(a)-[r]->(b)...". With needRel set, at least one
// relationship is required.
func (p *parser) parsePatternPath(needRel bool) Node {
	start := p.peek().start
	elements := []Node{p.parseNodePattern()}

	for p.atPunct("-") || p.atRelationshipArrow() {
		elements = append(elements, p.parseRelPattern(), p.parseNodePattern())
	}

	if needRel && len(elements) == 1 {
		p.failAt(p.peek(), "a relationship pattern")
	}

	return &PatternPath{base: newBase(KindPatternPath, p.spanFrom(start), elements), Elems: elements}
}

// parseRelationshipsPattern parses a path with at least one relationship.
func (p *parser) parseRelationshipsPattern() Node {
	return p.parsePatternPath(true)
}

// tryPatternPath parses a pattern predicate such as "(a)-[:KNOWS]->(b)" in
// expression position.
func (p *parser) tryPatternPath() Node {
	return p.try(func() Node {
		return p.parseRelationshipsPattern()
	})
}

func (p *parser) parseNodePattern() Node {
	start := p.expectPunct("(").start

	var identifier Node

	if p.atIdentifier() {
		identifier = p.parseIdentifier()
	}

	labels := p.parseLabels()
	properties := p.parsePatternProperties()

	p.expectPunct(")")

	return &NodePattern{
		base:       newBase(KindNodePattern, p.spanFrom(start), identifier, labels, properties),
		Identifier: identifier,
		Labels:     labels,
		Properties: properties,
	}
}

// parsePatternProperties parses an optional map literal or parameter.
func (p *parser) parsePatternProperties() Node {
	switch tok := p.peek(); {
	case tok.typ == tokParam:
		return p.parseAtom()
	case tok.typ == tokPunct && tok.text == "{":
		return p.parseBrace()
	default:
		return nil
	}
}

func (p *parser) parseRelPattern() Node {
	start := p.peek().start
	inbound := p.acceptPunct("<")

	p.expectPunct("-")

	var (
		identifier, varlength, properties Node
		reltypes                          []Node
	)

	if p.acceptPunct("[") {
		if p.atIdentifier() {
			identifier = p.parseIdentifier()
		}

		if p.atPunct(":") {
			reltypes = append(reltypes, p.parseSymbol(KindReltype, true))

			for p.acceptPunct("|") {
				colon := p.atPunct(":")
				reltypes = append(reltypes, p.parseSymbol(KindReltype, colon))
			}
		}

		if p.atPunct("*") {
			varlength = p.parseRange()
		}

		properties = p.parsePatternProperties()

		p.expectPunct("]")
	}

	p.expectPunct("-")
	outbound := p.acceptPunct(">")

	direction := DirBidirectional

	switch {
	case inbound && !outbound:
		direction = DirInbound
	case outbound && !inbound:
		direction = DirOutbound
	}

	return &RelPattern{
		base:       newBase(KindRelPattern, p.spanFrom(start), identifier, reltypes, varlength, properties),
		Direction:  direction,
		Identifier: identifier,
		Reltypes:   reltypes,
		Varlength:  varlength,
		Properties: properties,
	}
}

// parseRange parses "*", "*n", "*n..", "*..m" and "*n..m". A fixed length
// "*n" uses the same node as both bounds.
func (p *parser) parseRange() Node {
	start := p.expectPunct("*").start

	var lower, upper Node

	if p.peek().typ == tokInteger {
		lower = p.parseInteger()
	}

	switch {
	case p.acceptPunct(".."):
		if p.peek().typ == tokInteger {
			upper = p.parseInteger()
		}
	case lower != nil:
		return &Range{base: newBase(KindRange, p.spanFrom(start), lower), Start: lower, End: lower}
	}

	return &Range{base: newBase(KindRange, p.spanFrom(start), lower, upper), Start: lower, End: upper}
}
