package cypherast

import (
	"context"
	"errors"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
)

// NodeSpec describes one node to the host constructor. Children are already
// constructed, in source order.
type NodeSpec[T any] struct {
	ID         int
	Kind       string
	InstanceOf []string
	Children   []T
	Props      *Properties
	Start      int
	End        int
}

// Constructor builds host nodes from specs.
type Constructor[T any] interface {
	Construct(spec NodeSpec[T]) (T, error)
}

// ConstructorFunc adapts a function to Constructor.
type ConstructorFunc[T any] func(spec NodeSpec[T]) (T, error)

// Construct implements Constructor.
func (f ConstructorFunc[T]) Construct(spec NodeSpec[T]) (T, error) {
	return f(spec)
}

// Builder turns syntax trees into host trees.
type Builder[T any] struct {
	types     *TypeRegistry
	extractor *Extractor
	ctor      Constructor[T]
}

// NewBuilder returns a builder over the given registries, tables and
// constructor.
func NewBuilder[T any](types *TypeRegistry, ops *OperatorRegistry, tables *Tables, ctor Constructor[T]) *Builder[T] {
	return &Builder[T]{
		types:     types,
		extractor: NewExtractor(types, ops, tables),
		ctor:      ctor,
	}
}

// Build constructs node and its subtree, children first. The first
// constructor failure aborts the walk.
func (b *Builder[T]) Build(node cypher.Node, ids Identities) (T, error) {
	children := make([]T, 0, len(node.Children()))

	for _, child := range node.Children() {
		built, err := b.Build(child, ids)
		if err != nil {
			var zero T

			return zero, err
		}

		children = append(children, built)
	}

	span := node.Span()
	id := ids.Ref(node, "").ID
	kind := b.types.KindName(node)

	out, err := b.ctor.Construct(NodeSpec[T]{
		ID:         id,
		Kind:       kind,
		InstanceOf: b.types.AllSatisfiedNames(node),
		Children:   children,
		Props:      b.extractor.Extract(node, ids),
		Start:      span.Start,
		End:        span.End,
	})
	if err != nil {
		var zero T

		return zero, &ConstructionError{ID: id, Kind: kind, Err: err}
	}

	return out, nil
}

// BuildForest numbers every node of roots and builds each root in order. The
// context is checked between roots.
func (b *Builder[T]) BuildForest(ctx context.Context, roots []cypher.Node) ([]T, error) {
	ids := AssignIdentities(roots)
	forest := make([]T, 0, len(roots))

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		built, err := b.Build(root, ids)
		if err != nil {
			return nil, err
		}

		forest = append(forest, built)
	}

	return forest, nil
}

// IsConstructionError reports whether err carries a *ConstructionError and
// returns it.
func IsConstructionError(err error) (*ConstructionError, bool) {
	var ce *ConstructionError
	if errors.As(err, &ce) {
		return ce, true
	}

	return nil, false
}
