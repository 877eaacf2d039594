package cypherast

import (
	c "github.com/Sumatoshi-tech/cypherast/pkg/cypher"
)

// NewTables returns the property tables for every parser node kind.
func NewTables() *Tables {
	entries := make([]Entry, 0, 192) //nolint:mnd // Roughly the number of entries below.

	entries = append(entries, directionEntries()...)
	entries = append(entries, operatorEntries()...)
	entries = append(entries, boolEntries()...)
	entries = append(entries, stringEntries()...)
	entries = append(entries, astListEntries()...)
	entries = append(entries, astEntries()...)

	return NewTablesFrom(entries...)
}

func directionEntries() []Entry {
	return []Entry{
		DirectionEntry(c.KindRelPattern, "direction", func(n *c.RelPattern) c.Direction { return n.Direction }),
	}
}

func operatorEntries() []Entry {
	return []Entry{
		OperatorEntry(c.KindUnaryOperator, "operator", func(n *c.UnaryOperator) c.Operator { return n.Op }),
		OperatorEntry(c.KindBinaryOperator, "operator", func(n *c.BinaryOperator) c.Operator { return n.Op }),
		OperatorListEntry(c.KindComparison, "operators", func(n *c.Comparison) []c.Operator { return n.Ops }),
	}
}

func boolEntries() []Entry {
	constraintUnique := func(n *c.PropConstraint) bool { return n.Unique }

	return []Entry{
		BoolEntry(c.KindApplyOperator, "distinct", func(n *c.ApplyOperator) bool { return n.Distinct }),
		BoolEntry(c.KindApplyAllOperator, "distinct", func(n *c.ApplyAllOperator) bool { return n.Distinct }),
		BoolEntry(c.KindWith, "distinct", func(n *c.With) bool { return n.Distinct }),
		BoolEntry(c.KindReturn, "distinct", func(n *c.Return) bool { return n.Distinct }),
		BoolEntry(c.KindMatch, "optional", func(n *c.Match) bool { return n.Optional }),
		BoolEntry(c.KindCreate, "unique", func(n *c.Create) bool { return n.Unique }),
		BoolEntry(c.KindCreateNodePropConstraint, "unique", constraintUnique),
		BoolEntry(c.KindDropNodePropConstraint, "unique", constraintUnique),
		BoolEntry(c.KindCreateRelPropConstraint, "unique", constraintUnique),
		BoolEntry(c.KindDropRelPropConstraint, "unique", constraintUnique),
		BoolEntry(c.KindSortItem, "ascending", func(n *c.SortItem) bool { return n.Ascending }),
		BoolEntry(c.KindShortestPath, "single", func(n *c.ShortestPath) bool { return n.Single }),
		BoolEntry(c.KindDelete, "detach", func(n *c.Delete) bool { return n.Detach }),
		BoolEntry(c.KindWith, "include_existing", func(n *c.With) bool { return n.IncludeExisting }),
		BoolEntry(c.KindReturn, "include_existing", func(n *c.Return) bool { return n.IncludeExisting }),
		BoolEntry(c.KindUnion, "all", func(n *c.Union) bool { return n.All }),
		BoolEntry(c.KindLoadCSV, "with_headers", func(n *c.LoadCSV) bool { return n.WithHeaders }),
	}
}

func stringEntries() []Entry {
	symbol := func(n *c.Symbol) string { return n.Value }
	comment := func(n *c.Comment) string { return n.Value }

	return []Entry{
		StringEntry(c.KindIdentifier, "name", func(n *c.Identifier) string { return n.Name }),
		StringEntry(c.KindParameter, "name", func(n *c.Parameter) string { return n.Name }),
		StringEntry(c.KindString, "value", func(n *c.String) string { return n.Value }),
		StringEntry(c.KindInteger, "valuestr", func(n *c.Integer) string { return n.ValueStr }),
		StringEntry(c.KindFloat, "valuestr", func(n *c.Float) string { return n.ValueStr }),
		StringEntry(c.KindLabel, "name", symbol),
		StringEntry(c.KindReltype, "name", symbol),
		StringEntry(c.KindPropName, "value", symbol),
		StringEntry(c.KindFunctionName, "value", symbol),
		StringEntry(c.KindIndexName, "value", symbol),
		StringEntry(c.KindProcName, "value", symbol),
		StringEntry(c.KindLineComment, "value", comment),
		StringEntry(c.KindBlockComment, "value", comment),
		StringEntry(c.KindError, "value", func(n *c.Error) string { return n.Value }),
	}
}

func astListEntries() []Entry {
	idLookupIDs := func(n *c.IDLookup) []c.Node { return n.IDs }
	actionItems := func(n *c.MergeAction) []c.Node { return n.Items }
	labelsUpdate := func(n *c.LabelsUpdate) []c.Node { return n.Labels }

	return []Entry{
		ASTListEntry(c.KindStatement, "options", "option", func(n *c.Statement) []c.Node { return n.Options }),
		ASTListEntry(c.KindCypherOption, "params", "param", func(n *c.CypherOption) []c.Node { return n.Params }),
		ASTListEntry(c.KindQuery, "options", "option", func(n *c.Query) []c.Node { return n.Options }),
		ASTListEntry(c.KindQuery, "clauses", "clause", func(n *c.Query) []c.Node { return n.Clauses }),
		ASTListEntry(c.KindStart, "points", "point", func(n *c.Start) []c.Node { return n.Points }),
		ASTListEntry(c.KindNodeIDLookup, "ids", "id", idLookupIDs),
		ASTListEntry(c.KindRelIDLookup, "ids", "id", idLookupIDs),
		ASTListEntry(c.KindMatch, "hints", "hint", func(n *c.Match) []c.Node { return n.Hints }),
		ASTListEntry(c.KindUsingJoin, "identifiers", "identifier", func(n *c.UsingJoin) []c.Node { return n.Identifiers }),
		ASTListEntry(c.KindMerge, "actions", "action", func(n *c.Merge) []c.Node { return n.Actions }),
		ASTListEntry(c.KindOnMatch, "items", "item", actionItems),
		ASTListEntry(c.KindOnCreate, "items", "item", actionItems),
		ASTListEntry(c.KindSet, "items", "item", func(n *c.Set) []c.Node { return n.Items }),
		ASTListEntry(c.KindSetLabels, "labels", "label", labelsUpdate),
		ASTListEntry(c.KindDelete, "expressions", "expression", func(n *c.Delete) []c.Node { return n.Expressions }),
		ASTListEntry(c.KindRemove, "items", "item", func(n *c.Remove) []c.Node { return n.Items }),
		ASTListEntry(c.KindRemoveLabels, "labels", "label", labelsUpdate),
		ASTListEntry(c.KindForeach, "clauses", "clause", func(n *c.Foreach) []c.Node { return n.Clauses }),
		ASTListEntry(c.KindWith, "projections", "projection", func(n *c.With) []c.Node { return n.Projections }),
		ASTListEntry(c.KindCall, "arguments", "argument", func(n *c.Call) []c.Node { return n.Arguments }),
		ASTListEntry(c.KindCall, "projections", "projection", func(n *c.Call) []c.Node { return n.Projections }),
		ASTListEntry(c.KindReturn, "projections", "projection", func(n *c.Return) []c.Node { return n.Projections }),
		ASTListEntry(c.KindOrderBy, "items", "item", func(n *c.OrderBy) []c.Node { return n.Items }),
		ASTListEntry(c.KindApplyOperator, "arguments", "argument", func(n *c.ApplyOperator) []c.Node { return n.Arguments }),
		ASTListEntry(c.KindMapProjection, "selectors", "selector", func(n *c.MapProjection) []c.Node { return n.Selectors }),
		ASTListEntry(c.KindLabelsOperator, "labels", "label", func(n *c.LabelsOperator) []c.Node { return n.Labels }),
		ASTListEntry(c.KindCase, "predicates", "predicate", func(n *c.Case) []c.Node { return n.Predicates[:n.NAlternatives()] }),
		ASTListEntry(c.KindCase, "values", "value", func(n *c.Case) []c.Node { return n.Values[:n.NAlternatives()] }),
		ASTListEntry(c.KindMap, "keys", "key", func(n *c.Map) []c.Node { return n.Keys[:n.NEntries()] }),
		ASTListEntry(c.KindMap, "values", "value", func(n *c.Map) []c.Node { return n.Values[:n.NEntries()] }),
		ASTListEntry(c.KindPattern, "paths", "path", func(n *c.Pattern) []c.Node { return n.Paths }),
		ASTListEntry(c.KindPatternPath, "elements", "element", func(n c.Path) []c.Node { return n.Elements() }),
		ASTListEntry(c.KindNodePattern, "labels", "label", func(n *c.NodePattern) []c.Node { return n.Labels }),
		ASTListEntry(c.KindRelPattern, "reltypes", "reltype", func(n *c.RelPattern) []c.Node { return n.Reltypes }),
		ASTListEntry(c.KindCommand, "arguments", "argument", func(n *c.Command) []c.Node { return n.Arguments }),
		// A chain of N operators has N+1 arguments.
		ASTListEntry(c.KindComparison, "arguments", "argument", func(n *c.Comparison) []c.Node {
			return n.Arguments[:n.Length()+1]
		}),
	}
}

func astEntries() []Entry {
	return append(append(append(
		statementASTEntries(),
		clauseASTEntries()...),
		expressionASTEntries()...),
		patternASTEntries()...)
}

func statementASTEntries() []Entry {
	index := struct {
		label, propName func(*c.NodePropIndex) c.Node
	}{
		label:    func(n *c.NodePropIndex) c.Node { return n.Label },
		propName: func(n *c.NodePropIndex) c.Node { return n.PropName },
	}
	constraintIdentifier := func(n *c.PropConstraint) c.Node { return n.Identifier }
	constraintEntity := func(n *c.PropConstraint) c.Node { return n.Entity }
	constraintExpression := func(n *c.PropConstraint) c.Node { return n.Expression }

	return []Entry{
		ASTEntry(c.KindStatement, "body", func(n *c.Statement) c.Node { return n.Body }),
		ASTEntry(c.KindCypherOption, "version", func(n *c.CypherOption) c.Node { return n.Version }),
		ASTEntry(c.KindCypherOptionParam, "name", func(n *c.CypherOptionParam) c.Node { return n.Name }),
		ASTEntry(c.KindCypherOptionParam, "value", func(n *c.CypherOptionParam) c.Node { return n.Value }),
		ASTEntry(c.KindCreateNodePropIndex, "label", index.label),
		ASTEntry(c.KindCreateNodePropIndex, "prop_name", index.propName),
		ASTEntry(c.KindDropNodePropIndex, "label", index.label),
		ASTEntry(c.KindDropNodePropIndex, "prop_name", index.propName),
		ASTEntry(c.KindCreateNodePropConstraint, "identifier", constraintIdentifier),
		ASTEntry(c.KindCreateNodePropConstraint, "label", constraintEntity),
		ASTEntry(c.KindCreateNodePropConstraint, "expression", constraintExpression),
		ASTEntry(c.KindDropNodePropConstraint, "identifier", constraintIdentifier),
		ASTEntry(c.KindDropNodePropConstraint, "label", constraintEntity),
		ASTEntry(c.KindDropNodePropConstraint, "expression", constraintExpression),
		ASTEntry(c.KindCreateRelPropConstraint, "identifier", constraintIdentifier),
		ASTEntry(c.KindCreateRelPropConstraint, "reltype", constraintEntity),
		ASTEntry(c.KindCreateRelPropConstraint, "expression", constraintExpression),
		ASTEntry(c.KindDropRelPropConstraint, "identifier", constraintIdentifier),
		ASTEntry(c.KindDropRelPropConstraint, "reltype", constraintEntity),
		ASTEntry(c.KindDropRelPropConstraint, "expression", constraintExpression),
		ASTEntry(c.KindUsingPeriodicCommit, "limit", func(n *c.UsingPeriodicCommit) c.Node { return n.Limit }),
		ASTEntry(c.KindCommand, "name", func(n *c.Command) c.Node { return n.Name }),
	}
}

func clauseASTEntries() []Entry {
	indexLookup := struct {
		identifier, indexName, propName, lookup func(*c.IndexLookup) c.Node
	}{
		identifier: func(n *c.IndexLookup) c.Node { return n.Identifier },
		indexName:  func(n *c.IndexLookup) c.Node { return n.IndexName },
		propName:   func(n *c.IndexLookup) c.Node { return n.PropName },
		lookup:     func(n *c.IndexLookup) c.Node { return n.Lookup },
	}
	indexQuery := struct {
		identifier, indexName, query func(*c.IndexQuery) c.Node
	}{
		identifier: func(n *c.IndexQuery) c.Node { return n.Identifier },
		indexName:  func(n *c.IndexQuery) c.Node { return n.IndexName },
		query:      func(n *c.IndexQuery) c.Node { return n.Query },
	}
	idLookupIdentifier := func(n *c.IDLookup) c.Node { return n.Identifier }
	scanIdentifier := func(n *c.Scan) c.Node { return n.Identifier }
	assignIdentifier := func(n *c.AssignProperties) c.Node { return n.Identifier }
	assignExpression := func(n *c.AssignProperties) c.Node { return n.Expression }
	labelsIdentifier := func(n *c.LabelsUpdate) c.Node { return n.Identifier }

	return []Entry{
		ASTEntry(c.KindLoadCSV, "url", func(n *c.LoadCSV) c.Node { return n.URL }),
		ASTEntry(c.KindLoadCSV, "identifier", func(n *c.LoadCSV) c.Node { return n.Identifier }),
		ASTEntry(c.KindLoadCSV, "field_terminator", func(n *c.LoadCSV) c.Node { return n.FieldTerminator }),
		ASTEntry(c.KindStart, "predicate", func(n *c.Start) c.Node { return n.Predicate }),
		ASTEntry(c.KindNodeIndexLookup, "identifier", indexLookup.identifier),
		ASTEntry(c.KindNodeIndexLookup, "index_name", indexLookup.indexName),
		ASTEntry(c.KindNodeIndexLookup, "prop_name", indexLookup.propName),
		ASTEntry(c.KindNodeIndexLookup, "lookup", indexLookup.lookup),
		ASTEntry(c.KindNodeIndexQuery, "identifier", indexQuery.identifier),
		ASTEntry(c.KindNodeIndexQuery, "index_name", indexQuery.indexName),
		ASTEntry(c.KindNodeIndexQuery, "query", indexQuery.query),
		ASTEntry(c.KindNodeIDLookup, "identifier", idLookupIdentifier),
		ASTEntry(c.KindAllNodesScan, "identifier", scanIdentifier),
		ASTEntry(c.KindRelIndexLookup, "identifier", indexLookup.identifier),
		ASTEntry(c.KindRelIndexLookup, "index_name", indexLookup.indexName),
		ASTEntry(c.KindRelIndexLookup, "prop_name", indexLookup.propName),
		ASTEntry(c.KindRelIndexLookup, "lookup", indexLookup.lookup),
		ASTEntry(c.KindRelIndexQuery, "identifier", indexQuery.identifier),
		ASTEntry(c.KindRelIndexQuery, "index_name", indexQuery.indexName),
		ASTEntry(c.KindRelIndexQuery, "query", indexQuery.query),
		ASTEntry(c.KindRelIDLookup, "identifier", idLookupIdentifier),
		ASTEntry(c.KindAllRelsScan, "identifier", scanIdentifier),
		ASTEntry(c.KindMatch, "pattern", func(n *c.Match) c.Node { return n.Pattern }),
		ASTEntry(c.KindMatch, "predicate", func(n *c.Match) c.Node { return n.Predicate }),
		ASTEntry(c.KindUsingIndex, "identifier", func(n *c.UsingIndex) c.Node { return n.Identifier }),
		ASTEntry(c.KindUsingIndex, "label", func(n *c.UsingIndex) c.Node { return n.Label }),
		ASTEntry(c.KindUsingIndex, "prop_name", func(n *c.UsingIndex) c.Node { return n.PropName }),
		ASTEntry(c.KindUsingScan, "identifier", func(n *c.UsingScan) c.Node { return n.Identifier }),
		ASTEntry(c.KindUsingScan, "label", func(n *c.UsingScan) c.Node { return n.Label }),
		ASTEntry(c.KindMerge, "pattern_path", func(n *c.Merge) c.Node { return n.PatternPath }),
		ASTEntry(c.KindCreate, "pattern", func(n *c.Create) c.Node { return n.Pattern }),
		ASTEntry(c.KindSetProperty, "property", func(n *c.SetProperty) c.Node { return n.Property }),
		ASTEntry(c.KindSetProperty, "expression", func(n *c.SetProperty) c.Node { return n.Expression }),
		ASTEntry(c.KindSetAllProperties, "identifier", assignIdentifier),
		ASTEntry(c.KindSetAllProperties, "expression", assignExpression),
		ASTEntry(c.KindMergeProperties, "identifier", assignIdentifier),
		ASTEntry(c.KindMergeProperties, "expression", assignExpression),
		ASTEntry(c.KindSetLabels, "identifier", labelsIdentifier),
		ASTEntry(c.KindRemoveLabels, "identifier", labelsIdentifier),
		ASTEntry(c.KindRemoveProperty, "property", func(n *c.RemoveProperty) c.Node { return n.Property }),
		ASTEntry(c.KindForeach, "identifier", func(n *c.Foreach) c.Node { return n.Identifier }),
		ASTEntry(c.KindForeach, "expression", func(n *c.Foreach) c.Node { return n.Expression }),
		ASTEntry(c.KindWith, "order_by", func(n *c.With) c.Node { return n.OrderBy }),
		ASTEntry(c.KindWith, "skip", func(n *c.With) c.Node { return n.Skip }),
		ASTEntry(c.KindWith, "limit", func(n *c.With) c.Node { return n.Limit }),
		ASTEntry(c.KindWith, "predicate", func(n *c.With) c.Node { return n.Predicate }),
		ASTEntry(c.KindUnwind, "expression", func(n *c.Unwind) c.Node { return n.Expression }),
		ASTEntry(c.KindUnwind, "alias", func(n *c.Unwind) c.Node { return n.Alias }),
		ASTEntry(c.KindCall, "proc_name", func(n *c.Call) c.Node { return n.ProcName }),
		ASTEntry(c.KindReturn, "order_by", func(n *c.Return) c.Node { return n.OrderBy }),
		ASTEntry(c.KindReturn, "skip", func(n *c.Return) c.Node { return n.Skip }),
		ASTEntry(c.KindReturn, "limit", func(n *c.Return) c.Node { return n.Limit }),
		ASTEntry(c.KindProjection, "expression", func(n *c.Projection) c.Node { return n.Expression }),
		ASTEntry(c.KindProjection, "alias", func(n *c.Projection) c.Node { return n.Alias }),
		ASTEntry(c.KindSortItem, "expression", func(n *c.SortItem) c.Node { return n.Expression }),
	}
}

func expressionASTEntries() []Entry {
	comprehension := struct {
		identifier, expression, predicate, eval func(*c.ListComprehension) c.Node
	}{
		identifier: func(n *c.ListComprehension) c.Node { return n.Identifier },
		expression: func(n *c.ListComprehension) c.Node { return n.Expression },
		predicate:  func(n *c.ListComprehension) c.Node { return n.Predicate },
		eval:       func(n *c.ListComprehension) c.Node { return n.Eval },
	}

	return []Entry{
		ASTEntry(c.KindUnaryOperator, "argument", func(n *c.UnaryOperator) c.Node { return n.Argument }),
		ASTEntry(c.KindBinaryOperator, "argument1", func(n *c.BinaryOperator) c.Node { return n.Argument1 }),
		ASTEntry(c.KindBinaryOperator, "argument2", func(n *c.BinaryOperator) c.Node { return n.Argument2 }),
		ASTEntry(c.KindApplyOperator, "func_name", func(n *c.ApplyOperator) c.Node { return n.FuncName }),
		ASTEntry(c.KindApplyAllOperator, "func_name", func(n *c.ApplyAllOperator) c.Node { return n.FuncName }),
		ASTEntry(c.KindPropertyOperator, "expression", func(n *c.PropertyOperator) c.Node { return n.Expression }),
		ASTEntry(c.KindPropertyOperator, "prop_name", func(n *c.PropertyOperator) c.Node { return n.PropName }),
		ASTEntry(c.KindSubscriptOperator, "expression", func(n *c.SubscriptOperator) c.Node { return n.Expression }),
		ASTEntry(c.KindSubscriptOperator, "subscript", func(n *c.SubscriptOperator) c.Node { return n.Subscript }),
		ASTEntry(c.KindSliceOperator, "expression", func(n *c.SliceOperator) c.Node { return n.Expression }),
		ASTEntry(c.KindSliceOperator, "start", func(n *c.SliceOperator) c.Node { return n.Start }),
		ASTEntry(c.KindSliceOperator, "end", func(n *c.SliceOperator) c.Node { return n.End }),
		ASTEntry(c.KindMapProjection, "expression", func(n *c.MapProjection) c.Node { return n.Expression }),
		ASTEntry(c.KindMapProjectionLiteral, "prop_name", func(n *c.MapProjectionLiteral) c.Node { return n.PropName }),
		ASTEntry(c.KindMapProjectionLiteral, "expression", func(n *c.MapProjectionLiteral) c.Node { return n.Expression }),
		ASTEntry(c.KindMapProjectionProperty, "prop_name", func(n *c.MapProjectionProperty) c.Node { return n.PropName }),
		ASTEntry(c.KindMapProjectionIdentifier, "identifier", func(n *c.MapProjectionIdentifier) c.Node {
			return n.Identifier
		}),
		ASTEntry(c.KindLabelsOperator, "expression", func(n *c.LabelsOperator) c.Node { return n.Expression }),
		ASTEntry(c.KindListComprehension, "identifier", comprehension.identifier),
		ASTEntry(c.KindListComprehension, "expression", comprehension.expression),
		ASTEntry(c.KindListComprehension, "predicate", comprehension.predicate),
		ASTEntry(c.KindListComprehension, "eval", comprehension.eval),
		ASTEntry(c.KindPatternComprehension, "identifier", func(n *c.PatternComprehension) c.Node { return n.Identifier }),
		ASTEntry(c.KindPatternComprehension, "pattern", func(n *c.PatternComprehension) c.Node { return n.Pattern }),
		ASTEntry(c.KindPatternComprehension, "predicate", func(n *c.PatternComprehension) c.Node { return n.Predicate }),
		ASTEntry(c.KindPatternComprehension, "eval", func(n *c.PatternComprehension) c.Node { return n.Eval }),
		ASTEntry(c.KindReduce, "accumulator", func(n *c.Reduce) c.Node { return n.Accumulator }),
		ASTEntry(c.KindReduce, "init", func(n *c.Reduce) c.Node { return n.Init }),
		ASTEntry(c.KindReduce, "identifier", func(n *c.Reduce) c.Node { return n.Identifier }),
		ASTEntry(c.KindReduce, "expression", func(n *c.Reduce) c.Node { return n.Expression }),
		ASTEntry(c.KindReduce, "eval", func(n *c.Reduce) c.Node { return n.Eval }),
		ASTEntry(c.KindCase, "expression", func(n *c.Case) c.Node { return n.Expression }),
		ASTEntry(c.KindCase, "default", func(n *c.Case) c.Node { return n.Default }),
	}
}

func patternASTEntries() []Entry {
	return []Entry{
		ASTEntry(c.KindNamedPath, "identifier", func(n *c.NamedPath) c.Node { return n.Identifier }),
		ASTEntry(c.KindNamedPath, "path", func(n *c.NamedPath) c.Node { return n.Path }),
		ASTEntry(c.KindShortestPath, "path", func(n *c.ShortestPath) c.Node { return n.Path }),
		ASTEntry(c.KindNodePattern, "identifier", func(n *c.NodePattern) c.Node { return n.Identifier }),
		ASTEntry(c.KindNodePattern, "properties", func(n *c.NodePattern) c.Node { return n.Properties }),
		ASTEntry(c.KindRelPattern, "identifier", func(n *c.RelPattern) c.Node { return n.Identifier }),
		ASTEntry(c.KindRelPattern, "varlength", func(n *c.RelPattern) c.Node { return n.Varlength }),
		ASTEntry(c.KindRelPattern, "properties", func(n *c.RelPattern) c.Node { return n.Properties }),
		ASTEntry(c.KindRange, "start", func(n *c.Range) c.Node { return n.Start }),
		ASTEntry(c.KindRange, "end", func(n *c.Range) c.Node { return n.End }),
	}
}
