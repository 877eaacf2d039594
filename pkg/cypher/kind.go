// Package cypher provides a lexer and recursive-descent parser for the Cypher
// query language. It produces a typed syntax tree whose node kinds, kind
// hierarchy, operators and byte ranges follow libcypher-parser, so the tree can
// be reflected into a generic representation by table-driven extractors.
package cypher

// Kind identifies the grammar production of a syntax tree node. A kind may be
// concrete (e.g. KindMatch) or abstract (e.g. KindQueryClause).
type Kind int

// Node kinds. The declaration order is the canonical registry order.
const (
	KindStatement Kind = iota
	KindStatementOption
	KindCypherOption
	KindCypherOptionParam
	KindExplainOption
	KindProfileOption
	KindSchemaCommand
	KindCreateNodePropIndex
	KindDropNodePropIndex
	KindCreateNodePropConstraint
	KindDropNodePropConstraint
	KindCreateRelPropConstraint
	KindDropRelPropConstraint
	KindQuery
	KindQueryOption
	KindUsingPeriodicCommit
	KindQueryClause
	KindLoadCSV
	KindStart
	KindStartPoint
	KindNodeIndexLookup
	KindNodeIndexQuery
	KindNodeIDLookup
	KindAllNodesScan
	KindRelIndexLookup
	KindRelIndexQuery
	KindRelIDLookup
	KindAllRelsScan
	KindMatch
	KindMatchHint
	KindUsingIndex
	KindUsingJoin
	KindUsingScan
	KindMerge
	KindMergeAction
	KindOnMatch
	KindOnCreate
	KindCreate
	KindSet
	KindSetItem
	KindSetProperty
	KindSetAllProperties
	KindMergeProperties
	KindSetLabels
	KindDelete
	KindRemove
	KindRemoveItem
	KindRemoveLabels
	KindRemoveProperty
	KindForeach
	KindWith
	KindUnwind
	KindCall
	KindReturn
	KindProjection
	KindOrderBy
	KindSortItem
	KindUnion
	KindExpression
	KindUnaryOperator
	KindBinaryOperator
	KindComparison
	KindApplyOperator
	KindApplyAllOperator
	KindPropertyOperator
	KindSubscriptOperator
	KindSliceOperator
	KindMapProjection
	KindMapProjectionSelector
	KindMapProjectionLiteral
	KindMapProjectionProperty
	KindMapProjectionIdentifier
	KindMapProjectionAllProperties
	KindLabelsOperator
	KindListComprehension
	KindPatternComprehension
	KindCase
	KindFilter
	KindExtract
	KindReduce
	KindAll
	KindAny
	KindSingle
	KindNone
	KindCollection
	KindMap
	KindIdentifier
	KindParameter
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindTrue
	KindFalse
	KindNull
	KindLabel
	KindReltype
	KindPropName
	KindFunctionName
	KindIndexName
	KindProcName
	KindPattern
	KindNamedPath
	KindShortestPath
	KindPatternPath
	KindNodePattern
	KindRelPattern
	KindRange
	KindCommand
	KindComment
	KindLineComment
	KindBlockComment
	KindError

	kindCount
)

// kindNone marks a kind without a parent in the hierarchy.
const kindNone Kind = -1

type kindInfo struct {
	name   string
	label  string
	parent Kind
}

//nolint:gochecknoglobals // Static kind table.
var kindInfos = [kindCount]kindInfo{
	KindStatement:                  {"CYPHER_AST_STATEMENT", "statement", kindNone},
	KindStatementOption:            {"CYPHER_AST_STATEMENT_OPTION", "statement option", kindNone},
	KindCypherOption:               {"CYPHER_AST_CYPHER_OPTION", "CYPHER", KindStatementOption},
	KindCypherOptionParam:          {"CYPHER_AST_CYPHER_OPTION_PARAM", "cypher parameter", kindNone},
	KindExplainOption:              {"CYPHER_AST_EXPLAIN_OPTION", "EXPLAIN", KindStatementOption},
	KindProfileOption:              {"CYPHER_AST_PROFILE_OPTION", "PROFILE", KindStatementOption},
	KindSchemaCommand:              {"CYPHER_AST_SCHEMA_COMMAND", "schema command", kindNone},
	KindCreateNodePropIndex:        {"CYPHER_AST_CREATE_NODE_PROP_INDEX", "CREATE INDEX", KindSchemaCommand},
	KindDropNodePropIndex:          {"CYPHER_AST_DROP_NODE_PROP_INDEX", "DROP INDEX", KindSchemaCommand},
	KindCreateNodePropConstraint:   {"CYPHER_AST_CREATE_NODE_PROP_CONSTRAINT", "create node prop constraint", KindSchemaCommand},
	KindDropNodePropConstraint:     {"CYPHER_AST_DROP_NODE_PROP_CONSTRAINT", "drop node prop constraint", KindSchemaCommand},
	KindCreateRelPropConstraint:    {"CYPHER_AST_CREATE_REL_PROP_CONSTRAINT", "create rel prop constraint", KindSchemaCommand},
	KindDropRelPropConstraint:      {"CYPHER_AST_DROP_REL_PROP_CONSTRAINT", "drop rel prop constraint", KindSchemaCommand},
	KindQuery:                      {"CYPHER_AST_QUERY", "query", kindNone},
	KindQueryOption:                {"CYPHER_AST_QUERY_OPTION", "query option", kindNone},
	KindUsingPeriodicCommit:        {"CYPHER_AST_USING_PERIODIC_COMMIT", "USING PERIODIC_COMMIT", KindQueryOption},
	KindQueryClause:                {"CYPHER_AST_QUERY_CLAUSE", "query clause", kindNone},
	KindLoadCSV:                    {"CYPHER_AST_LOAD_CSV", "LOAD CSV", KindQueryClause},
	KindStart:                      {"CYPHER_AST_START", "START", KindQueryClause},
	KindStartPoint:                 {"CYPHER_AST_START_POINT", "start point", kindNone},
	KindNodeIndexLookup:            {"CYPHER_AST_NODE_INDEX_LOOKUP", "node index lookup", KindStartPoint},
	KindNodeIndexQuery:             {"CYPHER_AST_NODE_INDEX_QUERY", "node index query", KindStartPoint},
	KindNodeIDLookup:               {"CYPHER_AST_NODE_ID_LOOKUP", "node id lookup", KindStartPoint},
	KindAllNodesScan:               {"CYPHER_AST_ALL_NODES_SCAN", "all nodes scan", KindStartPoint},
	KindRelIndexLookup:             {"CYPHER_AST_REL_INDEX_LOOKUP", "rel index lookup", KindStartPoint},
	KindRelIndexQuery:              {"CYPHER_AST_REL_INDEX_QUERY", "rel index query", KindStartPoint},
	KindRelIDLookup:                {"CYPHER_AST_REL_ID_LOOKUP", "rel id lookup", KindStartPoint},
	KindAllRelsScan:                {"CYPHER_AST_ALL_RELS_SCAN", "all rels scan", KindStartPoint},
	KindMatch:                      {"CYPHER_AST_MATCH", "MATCH", KindQueryClause},
	KindMatchHint:                  {"CYPHER_AST_MATCH_HINT", "match hint", kindNone},
	KindUsingIndex:                 {"CYPHER_AST_USING_INDEX", "USING INDEX", KindMatchHint},
	KindUsingJoin:                  {"CYPHER_AST_USING_JOIN", "USING JOIN", KindMatchHint},
	KindUsingScan:                  {"CYPHER_AST_USING_SCAN", "USING SCAN", KindMatchHint},
	KindMerge:                      {"CYPHER_AST_MERGE", "MERGE", KindQueryClause},
	KindMergeAction:                {"CYPHER_AST_MERGE_ACTION", "merge action", kindNone},
	KindOnMatch:                    {"CYPHER_AST_ON_MATCH", "ON MATCH", KindMergeAction},
	KindOnCreate:                   {"CYPHER_AST_ON_CREATE", "ON CREATE", KindMergeAction},
	KindCreate:                     {"CYPHER_AST_CREATE", "CREATE", KindQueryClause},
	KindSet:                        {"CYPHER_AST_SET", "SET", KindQueryClause},
	KindSetItem:                    {"CYPHER_AST_SET_ITEM", "set item", kindNone},
	KindSetProperty:                {"CYPHER_AST_SET_PROPERTY", "set property", KindSetItem},
	KindSetAllProperties:           {"CYPHER_AST_SET_ALL_PROPERTIES", "set all properties", KindSetItem},
	KindMergeProperties:            {"CYPHER_AST_MERGE_PROPERTIES", "merge properties", KindSetItem},
	KindSetLabels:                  {"CYPHER_AST_SET_LABELS", "set labels", KindSetItem},
	KindDelete:                     {"CYPHER_AST_DELETE", "DELETE", KindQueryClause},
	KindRemove:                     {"CYPHER_AST_REMOVE", "REMOVE", KindQueryClause},
	KindRemoveItem:                 {"CYPHER_AST_REMOVE_ITEM", "remove item", kindNone},
	KindRemoveLabels:               {"CYPHER_AST_REMOVE_LABELS", "remove labels", KindRemoveItem},
	KindRemoveProperty:             {"CYPHER_AST_REMOVE_PROPERTY", "remove property", KindRemoveItem},
	KindForeach:                    {"CYPHER_AST_FOREACH", "FOREACH", KindQueryClause},
	KindWith:                       {"CYPHER_AST_WITH", "WITH", KindQueryClause},
	KindUnwind:                     {"CYPHER_AST_UNWIND", "UNWIND", KindQueryClause},
	KindCall:                       {"CYPHER_AST_CALL", "CALL", KindQueryClause},
	KindReturn:                     {"CYPHER_AST_RETURN", "RETURN", KindQueryClause},
	KindProjection:                 {"CYPHER_AST_PROJECTION", "projection", kindNone},
	KindOrderBy:                    {"CYPHER_AST_ORDER_BY", "ORDER BY", kindNone},
	KindSortItem:                   {"CYPHER_AST_SORT_ITEM", "sort item", kindNone},
	KindUnion:                      {"CYPHER_AST_UNION", "UNION", KindQueryClause},
	KindExpression:                 {"CYPHER_AST_EXPRESSION", "expression", kindNone},
	KindUnaryOperator:              {"CYPHER_AST_UNARY_OPERATOR", "unary operator", KindExpression},
	KindBinaryOperator:             {"CYPHER_AST_BINARY_OPERATOR", "binary operator", KindExpression},
	KindComparison:                 {"CYPHER_AST_COMPARISON", "comparison", KindExpression},
	KindApplyOperator:              {"CYPHER_AST_APPLY_OPERATOR", "apply", KindExpression},
	KindApplyAllOperator:           {"CYPHER_AST_APPLY_ALL_OPERATOR", "apply all", KindExpression},
	KindPropertyOperator:           {"CYPHER_AST_PROPERTY_OPERATOR", "property", KindExpression},
	KindSubscriptOperator:          {"CYPHER_AST_SUBSCRIPT_OPERATOR", "subscript", KindExpression},
	KindSliceOperator:              {"CYPHER_AST_SLICE_OPERATOR", "slice", KindExpression},
	KindMapProjection:              {"CYPHER_AST_MAP_PROJECTION", "map projection", KindExpression},
	KindMapProjectionSelector:      {"CYPHER_AST_MAP_PROJECTION_SELECTOR", "map projection selector", kindNone},
	KindMapProjectionLiteral:       {"CYPHER_AST_MAP_PROJECTION_LITERAL", "literal projection", KindMapProjectionSelector},
	KindMapProjectionProperty:      {"CYPHER_AST_MAP_PROJECTION_PROPERTY", "property projection", KindMapProjectionSelector},
	KindMapProjectionIdentifier:    {"CYPHER_AST_MAP_PROJECTION_IDENTIFIER", "identifier projection", KindMapProjectionSelector},
	KindMapProjectionAllProperties: {"CYPHER_AST_MAP_PROJECTION_ALL_PROPERTIES", "all properties projection", KindMapProjectionSelector},
	KindLabelsOperator:             {"CYPHER_AST_LABELS_OPERATOR", "has labels", KindExpression},
	KindListComprehension:          {"CYPHER_AST_LIST_COMPREHENSION", "list comprehension", KindExpression},
	KindPatternComprehension:       {"CYPHER_AST_PATTERN_COMPREHENSION", "pattern comprehension", KindExpression},
	KindCase:                       {"CYPHER_AST_CASE", "case", KindExpression},
	KindFilter:                     {"CYPHER_AST_FILTER", "filter", KindListComprehension},
	KindExtract:                    {"CYPHER_AST_EXTRACT", "extract", KindListComprehension},
	KindReduce:                     {"CYPHER_AST_REDUCE", "reduce", KindExpression},
	KindAll:                        {"CYPHER_AST_ALL", "all", KindListComprehension},
	KindAny:                        {"CYPHER_AST_ANY", "any", KindListComprehension},
	KindSingle:                     {"CYPHER_AST_SINGLE", "single", KindListComprehension},
	KindNone:                       {"CYPHER_AST_NONE", "none", KindListComprehension},
	KindCollection:                 {"CYPHER_AST_COLLECTION", "collection", KindExpression},
	KindMap:                        {"CYPHER_AST_MAP", "map", KindExpression},
	KindIdentifier:                 {"CYPHER_AST_IDENTIFIER", "identifier", KindExpression},
	KindParameter:                  {"CYPHER_AST_PARAMETER", "parameter", KindExpression},
	KindString:                     {"CYPHER_AST_STRING", "string", KindExpression},
	KindInteger:                    {"CYPHER_AST_INTEGER", "integer", KindExpression},
	KindFloat:                      {"CYPHER_AST_FLOAT", "float", KindExpression},
	KindBoolean:                    {"CYPHER_AST_BOOLEAN", "boolean", KindExpression},
	KindTrue:                       {"CYPHER_AST_TRUE", "TRUE", KindBoolean},
	KindFalse:                      {"CYPHER_AST_FALSE", "FALSE", KindBoolean},
	KindNull:                       {"CYPHER_AST_NULL", "NULL", KindExpression},
	KindLabel:                      {"CYPHER_AST_LABEL", "label", kindNone},
	KindReltype:                    {"CYPHER_AST_RELTYPE", "rel type", kindNone},
	KindPropName:                   {"CYPHER_AST_PROP_NAME", "prop name", kindNone},
	KindFunctionName:               {"CYPHER_AST_FUNCTION_NAME", "function name", kindNone},
	KindIndexName:                  {"CYPHER_AST_INDEX_NAME", "index name", kindNone},
	KindProcName:                   {"CYPHER_AST_PROC_NAME", "proc name", kindNone},
	KindPattern:                    {"CYPHER_AST_PATTERN", "pattern", kindNone},
	KindNamedPath:                  {"CYPHER_AST_NAMED_PATH", "named path", KindPatternPath},
	KindShortestPath:               {"CYPHER_AST_SHORTEST_PATH", "shortestPath", KindPatternPath},
	KindPatternPath:                {"CYPHER_AST_PATTERN_PATH", "pattern path", KindExpression},
	KindNodePattern:                {"CYPHER_AST_NODE_PATTERN", "node pattern", kindNone},
	KindRelPattern:                 {"CYPHER_AST_REL_PATTERN", "rel pattern", kindNone},
	KindRange:                      {"CYPHER_AST_RANGE", "range", kindNone},
	KindCommand:                    {"CYPHER_AST_COMMAND", "command", kindNone},
	KindComment:                    {"CYPHER_AST_COMMENT", "comment", kindNone},
	KindLineComment:                {"CYPHER_AST_LINE_COMMENT", "line_comment", KindComment},
	KindBlockComment:               {"CYPHER_AST_BLOCK_COMMENT", "block_comment", KindComment},
	KindError:                      {"CYPHER_AST_ERROR", "error", kindNone},
}

// UnknownKindName is returned by Name for kinds outside the known set.
const UnknownKindName = "CYPHER_AST_UNKNOWN"

// Kinds returns every known kind in registry order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)

	for kind := range kindCount {
		kinds = append(kinds, kind)
	}

	return kinds
}

// Valid reports whether the kind is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Name returns the symbolic name of the kind, e.g. "CYPHER_AST_MATCH".
func (k Kind) Name() string {
	if !k.Valid() {
		return UnknownKindName
	}

	return kindInfos[k].name
}

// String returns the human readable label used in tree dumps.
func (k Kind) String() string {
	if !k.Valid() {
		return "unknown"
	}

	return kindInfos[k].label
}

// Parent returns the direct supertype of the kind, if any.
func (k Kind) Parent() (Kind, bool) {
	if !k.Valid() || kindInfos[k].parent == kindNone {
		return kindNone, false
	}

	return kindInfos[k].parent, true
}

// InstanceOf reports whether kind is super or a descendant of super.
func InstanceOf(kind, super Kind) bool {
	for kind.Valid() {
		if kind == super {
			return true
		}

		kind = kindInfos[kind].parent
	}

	return false
}
