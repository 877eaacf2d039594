package cypher

// Span is a half-open byte range [Start, End) in the parsed input.
type Span struct {
	Start int
	End   int
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Node is a syntax tree node.
type Node interface {
	// Kind returns the concrete kind of the node.
	Kind() Kind
	// Span returns the byte range the node covers.
	Span() Span
	// Children returns the direct children in source order.
	Children() []Node
}

type base struct {
	kind     Kind
	span     Span
	children []Node
}

// Kind implements Node.
func (b *base) Kind() Kind { return b.kind }

// Span implements Node.
func (b *base) Span() Span { return b.span }

// Children implements Node.
func (b *base) Children() []Node { return b.children }

// NChildren returns the number of direct children.
func (b *base) NChildren() int { return len(b.children) }

// insertChild places child before the first existing child starting after it.
func (b *base) insertChild(child Node) {
	pos := len(b.children)

	for idx, existing := range b.children {
		if existing.Span().Start > child.Span().Start {
			pos = idx

			break
		}
	}

	b.children = append(b.children, nil)
	copy(b.children[pos+1:], b.children[pos:])
	b.children[pos] = child
}

// newBase builds the common node header. Each part is a Node (nil is skipped)
// or a []Node, listed in source order.
func newBase(kind Kind, span Span, parts ...any) base {
	children := make([]Node, 0, len(parts))

	for _, part := range parts {
		switch typed := part.(type) {
		case nil:
		case Node:
			children = append(children, typed)
		case []Node:
			for _, child := range typed {
				if child != nil {
					children = append(children, child)
				}
			}
		}
	}

	return base{kind: kind, span: span, children: children}
}

// Statement is a single top-level statement.
type Statement struct {
	base

	Options []Node
	Body    Node
}

// CypherOption is the "CYPHER [version] [name=value ...]" statement option.
type CypherOption struct {
	base

	Version Node
	Params  []Node
}

// CypherOptionParam is one name=value pair of a CYPHER option.
type CypherOptionParam struct {
	base

	Name  Node
	Value Node
}

// ExplainOption is the EXPLAIN statement option.
type ExplainOption struct{ base }

// ProfileOption is the PROFILE statement option.
type ProfileOption struct{ base }

// NodePropIndex is CREATE INDEX or DROP INDEX on a node label property.
type NodePropIndex struct {
	base

	Label    Node
	PropName Node
}

// PropConstraint is CREATE or DROP CONSTRAINT on a node or relationship
// property. Entity holds the label (node constraints) or reltype
// (relationship constraints).
type PropConstraint struct {
	base

	Identifier Node
	Entity     Node
	Expression Node
	Unique     bool
}

// Query is a sequence of clauses with optional query options.
type Query struct {
	base

	Options []Node
	Clauses []Node
}

// UsingPeriodicCommit is the "USING PERIODIC COMMIT [limit]" query option.
type UsingPeriodicCommit struct {
	base

	Limit Node
}

// LoadCSV is the LOAD CSV clause.
type LoadCSV struct {
	base

	WithHeaders     bool
	URL             Node
	Identifier      Node
	FieldTerminator Node
}

// Start is the legacy START clause.
type Start struct {
	base

	Points    []Node
	Predicate Node
}

// IndexLookup is a node or relationship index lookup start point.
type IndexLookup struct {
	base

	Identifier Node
	IndexName  Node
	PropName   Node
	Lookup     Node
}

// IndexQuery is a node or relationship index query start point.
type IndexQuery struct {
	base

	Identifier Node
	IndexName  Node
	Query      Node
}

// IDLookup is a node or relationship id lookup start point.
type IDLookup struct {
	base

	Identifier Node
	IDs        []Node
}

// Scan is an all-nodes or all-relationships scan start point.
type Scan struct {
	base

	Identifier Node
}

// Match is the MATCH clause.
type Match struct {
	base

	Optional  bool
	Pattern   Node
	Hints     []Node
	Predicate Node
}

// UsingIndex is the USING INDEX match hint.
type UsingIndex struct {
	base

	Identifier Node
	Label      Node
	PropName   Node
}

// UsingJoin is the USING JOIN match hint.
type UsingJoin struct {
	base

	Identifiers []Node
}

// UsingScan is the USING SCAN match hint.
type UsingScan struct {
	base

	Identifier Node
	Label      Node
}

// Merge is the MERGE clause.
type Merge struct {
	base

	PatternPath Node
	Actions     []Node
}

// MergeAction is an ON MATCH or ON CREATE action of MERGE.
type MergeAction struct {
	base

	Items []Node
}

// Create is the CREATE clause.
type Create struct {
	base

	Unique  bool
	Pattern Node
}

// Set is the SET clause.
type Set struct {
	base

	Items []Node
}

// SetProperty is the "prop = expr" set item.
type SetProperty struct {
	base

	Property   Node
	Expression Node
}

// AssignProperties is the "n = expr" or "n += expr" set item.
type AssignProperties struct {
	base

	Identifier Node
	Expression Node
}

// LabelsUpdate is a set-labels or remove-labels item.
type LabelsUpdate struct {
	base

	Identifier Node
	Labels     []Node
}

// Delete is the DELETE clause.
type Delete struct {
	base

	Detach      bool
	Expressions []Node
}

// Remove is the REMOVE clause.
type Remove struct {
	base

	Items []Node
}

// RemoveProperty is the "REMOVE n.prop" item.
type RemoveProperty struct {
	base

	Property Node
}

// Foreach is the FOREACH clause.
type Foreach struct {
	base

	Identifier Node
	Expression Node
	Clauses    []Node
}

// With is the WITH clause.
type With struct {
	base

	Distinct        bool
	IncludeExisting bool
	Projections     []Node
	OrderBy         Node
	Skip            Node
	Limit           Node
	Predicate       Node
}

// Unwind is the UNWIND clause.
type Unwind struct {
	base

	Expression Node
	Alias      Node
}

// Call is the CALL clause.
type Call struct {
	base

	ProcName    Node
	Arguments   []Node
	Projections []Node
}

// Return is the RETURN clause.
type Return struct {
	base

	Distinct        bool
	IncludeExisting bool
	Projections     []Node
	OrderBy         Node
	Skip            Node
	Limit           Node
}

// Projection is one projected expression of RETURN, WITH or YIELD.
type Projection struct {
	base

	Expression Node
	Alias      Node
}

// OrderBy is the ORDER BY sub-clause.
type OrderBy struct {
	base

	Items []Node
}

// SortItem is one ORDER BY item.
type SortItem struct {
	base

	Expression Node
	Ascending  bool
}

// Union joins two parts of a query.
type Union struct {
	base

	All bool
}

// UnaryOperator is a prefix or postfix operator applied to one argument.
type UnaryOperator struct {
	base

	Op       Operator
	Argument Node
}

// BinaryOperator applies an operator to two arguments.
type BinaryOperator struct {
	base

	Op        Operator
	Argument1 Node
	Argument2 Node
}

// Comparison is a chain of relational comparisons such as "a < b <= c".
// It holds len(Ops) operators and len(Ops)+1 arguments.
type Comparison struct {
	base

	Ops       []Operator
	Arguments []Node
}

// Length returns the number of operators in the chain.
func (c *Comparison) Length() int { return len(c.Ops) }

// ApplyOperator is a function application.
type ApplyOperator struct {
	base

	FuncName  Node
	Distinct  bool
	Arguments []Node
}

// ApplyAllOperator is a function applied to "*", e.g. count(*).
type ApplyAllOperator struct {
	base

	FuncName Node
	Distinct bool
}

// PropertyOperator is "expr.prop".
type PropertyOperator struct {
	base

	Expression Node
	PropName   Node
}

// SubscriptOperator is "expr[subscript]".
type SubscriptOperator struct {
	base

	Expression Node
	Subscript  Node
}

// SliceOperator is "expr[start..end]".
type SliceOperator struct {
	base

	Expression Node
	Start      Node
	End        Node
}

// MapProjection is "expr{selectors}".
type MapProjection struct {
	base

	Expression Node
	Selectors  []Node
}

// MapProjectionLiteral is the "key: expr" selector.
type MapProjectionLiteral struct {
	base

	PropName   Node
	Expression Node
}

// MapProjectionProperty is the ".prop" selector.
type MapProjectionProperty struct {
	base

	PropName Node
}

// MapProjectionIdentifier is the "identifier" selector.
type MapProjectionIdentifier struct {
	base

	Identifier Node
}

// MapProjectionAllProperties is the ".*" selector.
type MapProjectionAllProperties struct{ base }

// LabelsOperator is "expr:Label:Other".
type LabelsOperator struct {
	base

	Expression Node
	Labels     []Node
}

// ListComprehension covers "[x IN list WHERE p | e]" and the filter, extract,
// all, any, single and none forms.
type ListComprehension struct {
	base

	Identifier Node
	Expression Node
	Predicate  Node
	Eval       Node
}

// PatternComprehension is "[p = (a)-->(b) WHERE pred | eval]".
type PatternComprehension struct {
	base

	Identifier Node
	Pattern    Node
	Predicate  Node
	Eval       Node
}

// Case is the CASE expression.
type Case struct {
	base

	Expression Node
	Predicates []Node
	Values     []Node
	Default    Node
}

// NAlternatives returns the number of WHEN/THEN alternatives.
func (c *Case) NAlternatives() int { return len(c.Predicates) }

// Reduce is "reduce(acc = init, x IN list | eval)".
type Reduce struct {
	base

	Accumulator Node
	Init        Node
	Identifier  Node
	Expression  Node
	Eval        Node
}

// Collection is a list literal.
type Collection struct {
	base

	Elements []Node
}

// Map is a map literal. Keys and Values have equal length.
type Map struct {
	base

	Keys   []Node
	Values []Node
}

// NEntries returns the number of key/value pairs.
func (m *Map) NEntries() int { return len(m.Keys) }

// Identifier is a variable name.
type Identifier struct {
	base

	Name string
}

// Parameter is a "$name" or legacy "{name}" parameter.
type Parameter struct {
	base

	Name string
}

// String is a string literal with escapes resolved.
type String struct {
	base

	Value string
}

// Integer is an integer literal kept in its source form.
type Integer struct {
	base

	ValueStr string
}

// Float is a float literal kept in its source form.
type Float struct {
	base

	ValueStr string
}

// Boolean is the TRUE or FALSE literal.
type Boolean struct{ base }

// Value reports the literal's truth value.
func (b *Boolean) Value() bool { return b.kind == KindTrue }

// Null is the NULL literal.
type Null struct{ base }

// Symbol is a name-like leaf: label, reltype, property name, function name,
// index name or procedure name.
type Symbol struct {
	base

	Value string
}

// Pattern is a comma separated list of pattern paths.
type Pattern struct {
	base

	Paths []Node
}

// Path is implemented by pattern paths, named paths and shortest paths.
type Path interface {
	Node

	// Elements returns the alternating node and relationship patterns.
	Elements() []Node
}

// PatternPath is an anonymous "(a)-[r]->(b)" path.
type PatternPath struct {
	base

	Elems []Node
}

// Elements implements Path.
func (p *PatternPath) Elements() []Node { return p.Elems }

// NamedPath is "p = path".
type NamedPath struct {
	base

	Identifier Node
	Path       Node
}

// Elements implements Path by delegating to the named path.
func (p *NamedPath) Elements() []Node { return pathElements(p.Path) }

// ShortestPath is shortestPath(path) or allShortestPaths(path).
type ShortestPath struct {
	base

	Single bool
	Path   Node
}

// Elements implements Path by delegating to the wrapped path.
func (p *ShortestPath) Elements() []Node { return pathElements(p.Path) }

func pathElements(n Node) []Node {
	if path, ok := n.(Path); ok {
		return path.Elements()
	}

	return nil
}

// NodePattern is "(identifier:Label {props})".
type NodePattern struct {
	base

	Identifier Node
	Labels     []Node
	Properties Node
}

// RelPattern is "-[identifier:TYPE*1..2 {props}]->".
type RelPattern struct {
	base

	Direction  Direction
	Identifier Node
	Reltypes   []Node
	Varlength  Node
	Properties Node
}

// Range is the "*min..max" length of a variable length relationship.
type Range struct {
	base

	Start Node
	End   Node
}

// Command is a client command such as ":schema".
type Command struct {
	base

	Name      Node
	Arguments []Node
}

// Comment is a line or block comment. Value excludes the delimiters.
type Comment struct {
	base

	Value string
}

// Error holds the text of a statement skipped during error recovery.
type Error struct {
	base

	Value string
}
