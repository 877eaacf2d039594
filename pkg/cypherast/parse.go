package cypherast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
)

// Stats describes one parse for observers.
type Stats struct {
	InputBytes int
	Roots      int
	Nodes      int
	Duration   time.Duration
	Err        error
	// Result is the parser result, already released by the time observers
	// see it. It is nil when the parser failed.
	Result *cypher.Result
}

// ParseObserver receives a Stats record after every parse.
type ParseObserver interface {
	ObserveParse(ctx context.Context, stats Stats)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecovery makes the engine keep parsing after a malformed statement.
// The skipped text becomes a CYPHER_AST_ERROR root.
func WithRecovery() EngineOption {
	return func(e *Engine) {
		e.recover = true
	}
}

// WithMaxInputBytes rejects texts longer than n bytes with ErrInputTooLarge.
// Zero means no limit.
func WithMaxInputBytes(n int) EngineOption {
	return func(e *Engine) {
		e.maxInput = max(n, 0)
	}
}

// WithTables replaces the property tables.
func WithTables(tables *Tables) EngineOption {
	return func(e *Engine) {
		if tables != nil {
			e.tables = tables
		}
	}
}

// WithObserver registers a parse observer.
func WithObserver(observer ParseObserver) EngineOption {
	return func(e *Engine) {
		if observer != nil {
			e.observers = append(e.observers, observer)
		}
	}
}

// Engine bundles the registries and tables. It is safe for concurrent use.
type Engine struct {
	types     *TypeRegistry
	ops       *OperatorRegistry
	tables    *Tables
	logger    *slog.Logger
	observers []ParseObserver
	recover   bool
	maxInput  int
}

// NewEngine returns an engine over the full kind and operator sets.
func NewEngine(opts ...EngineOption) *Engine {
	engine := &Engine{
		types:  NewTypeRegistry(),
		ops:    NewOperatorRegistry(),
		tables: NewTables(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

var (
	defaultEngine     *Engine   //nolint:gochecknoglobals // Lazily built shared engine.
	defaultEngineOnce sync.Once //nolint:gochecknoglobals // Guards defaultEngine.
)

// Default returns the shared engine.
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine()
	})

	return defaultEngine
}

// Types returns the engine's kind registry.
func (e *Engine) Types() *TypeRegistry { return e.types }

// Operators returns the engine's operator registry.
func (e *Engine) Operators() *OperatorRegistry { return e.ops }

// Tables returns the engine's property tables.
func (e *Engine) Tables() *Tables { return e.tables }

// Recovers reports whether the engine was built WithRecovery.
func (e *Engine) Recovers() bool { return e.recover }

// MaxInputBytes returns the input limit, 0 when unlimited.
func (e *Engine) MaxInputBytes() int { return e.maxInput }

// Extractor returns an extractor over the engine's registries and tables.
func (e *Engine) Extractor() *Extractor {
	return NewExtractor(e.types, e.ops, e.tables)
}

// ParseResult runs the parser and returns its raw result. The caller must
// release it.
func (e *Engine) ParseResult(ctx context.Context, text string) (*cypher.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.maxInput > 0 && len(text) > e.maxInput {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(text), e.maxInput)
	}

	var opts []cypher.Option
	if e.recover {
		opts = append(opts, cypher.WithRecovery())
	}

	result, err := cypher.Parse(text, opts...)
	if err != nil {
		return nil, newParseError(err)
	}

	return result, nil
}

func newParseError(err error) error {
	var syntax *cypher.SyntaxError
	if errors.As(err, &syntax) {
		return &ParseError{
			Offset:  syntax.Offset,
			Line:    syntax.Line,
			Column:  syntax.Column,
			Message: syntax.Message,
			Err:     err,
		}
	}

	return &ParseError{Message: err.Error(), Err: err}
}

// Parse parses text with the default engine and builds a host forest.
func Parse[T any](ctx context.Context, ctor Constructor[T], text string) ([]T, error) {
	return ParseWith(ctx, Default(), ctor, text)
}

// ParseWith parses text with engine and builds a host forest, one tree per
// root in source order.
func ParseWith[T any](ctx context.Context, engine *Engine, ctor Constructor[T], text string) (forest []T, err error) {
	started := time.Now()
	stats := Stats{InputBytes: len(text)}

	defer func() {
		stats.Duration = time.Since(started)
		stats.Err = err
		engine.observe(ctx, stats)
	}()

	result, err := engine.ParseResult(ctx, text)
	if err != nil {
		engine.logger.DebugContext(ctx, "cypher parse failed", "bytes", len(text), "error", err)

		return nil, err
	}

	stats.Result = result

	defer func() {
		if releaseErr := result.Release(); releaseErr != nil && err == nil {
			err = fmt.Errorf("release parse result: %w", releaseErr)
		}
	}()

	roots := result.Roots()
	stats.Roots = len(roots)

	for _, skipped := range result.Errors() {
		engine.logger.DebugContext(ctx, "skipped malformed statement",
			"line", skipped.Line, "column", skipped.Column, "message", skipped.Message)
	}

	counting := ConstructorFunc[T](func(spec NodeSpec[T]) (T, error) {
		stats.Nodes++

		return ctor.Construct(spec)
	})

	builder := NewBuilder[T](engine.types, engine.ops, engine.tables, counting)

	forest, err = builder.BuildForest(ctx, roots)
	if err != nil {
		return nil, err
	}

	engine.logger.DebugContext(ctx, "cypher parsed", "roots", stats.Roots, "nodes", stats.Nodes)

	return forest, nil
}

func (e *Engine) observe(ctx context.Context, stats Stats) {
	for _, observer := range e.observers {
		observer.ObserveParse(ctx, stats)
	}
}
