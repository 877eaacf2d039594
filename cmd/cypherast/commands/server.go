package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	internalobs "github.com/Sumatoshi-tech/cypherast/internal/observability"
	"github.com/Sumatoshi-tech/cypherast/pkg/cache"
	"github.com/Sumatoshi-tech/cypherast/pkg/config"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast/astnode"
	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
)

// maxBodyOverhead is the request body allowance beyond the query size limit
// for the JSON envelope.
const maxBodyOverhead = 4 << 10

// ParseRequest is the body of POST /api/parse.
type ParseRequest struct {
	Query string `json:"query"`
}

// ParseResponse is the body returned by POST /api/parse.
type ParseResponse struct {
	Forest json.RawMessage `json:"forest,omitempty"`
	Cached bool            `json:"cached,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// FindRequest is the body of POST /api/find.
type FindRequest struct {
	Query      string `json:"query"`
	Type       string `json:"type,omitempty"`
	Role       string `json:"role,omitempty"`
	InstanceOf string `json:"instanceof,omitempty"`
	Start      *int   `json:"start,omitempty"`
	End        *int   `json:"end,omitempty"`
}

// FindResponse is the body returned by POST /api/find.
type FindResponse struct {
	Matches []astnode.Match `json:"matches"`
	Error   string          `json:"error,omitempty"`
}

type serverFlags struct {
	host string
	port int
}

func newServerCommand(opts *Options) *cobra.Command {
	flags := &serverFlags{}

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the parse API over HTTP",
		Long: `Start an HTTP server exposing:

  POST /api/parse   {"query": "..."}                 -> {"forest": [...]}
  POST /api/find    {"query": "...", "type": "..."}  -> {"matches": [...]}
  GET  /api/kinds   [?instanceof=EXPRESSION]         -> [...]
  GET  /metrics     Prometheus metrics
  GET  /healthz     liveness
  GET  /readyz      readiness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("host") {
				cfg.Server.Host = flags.host
			}

			if cmd.Flags().Changed("port") {
				cfg.Server.Port = flags.port
			}

			return runServer(cmd.Context(), opts, cfg)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "address to listen on (default from config)")
	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "port to listen on (default from config)")

	return cmd
}

// apiDeps are the collaborators of the HTTP API.
type apiDeps struct {
	engine  *cypherast.Engine
	cache   *cache.ForestCache
	logger  *slog.Logger
	tracer  trace.Tracer
	red     *observability.REDMetrics
	metrics http.Handler
	maxBody int64
}

func runServer(parent context.Context, opts *Options, cfg *config.Config) error {
	prom, err := internalobs.NewPrometheus()
	if err != nil {
		return err
	}

	providers, err := observability.Init(opts.observability(cfg, observability.ModeServe),
		observability.WithMetricReader(prom.Reader))
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	logger := providers.Logger

	defer func() {
		if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
			logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	deps, err := newAPIDeps(cfg, providers, logger)
	if err != nil {
		return err
	}

	deps.metrics = prom.Handler

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newServerMux(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	}

	logger.Info("cypherast server starting", "addr", "http://"+listener.Addr().String())

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("cypherast server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func newAPIDeps(cfg *config.Config, providers observability.Providers, logger *slog.Logger) (apiDeps, error) {
	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return apiDeps{}, fmt.Errorf("create RED metrics: %w", err)
	}

	parseMetrics, err := observability.NewParseMetrics(providers.Meter)
	if err != nil {
		return apiDeps{}, fmt.Errorf("create parse metrics: %w", err)
	}

	engine := newEngine(cfg, logger, false, cypherast.WithObserver(parseMetrics))

	deps := apiDeps{
		engine:  engine,
		logger:  logger,
		tracer:  providers.Tracer,
		red:     red,
		maxBody: int64(cfg.Parser.MaxQueryBytes) + maxBodyOverhead,
	}

	if cfg.Cache.Enabled {
		deps.cache = cache.New(cache.Config{
			Namespace:  cacheNamespace(engine),
			MaxEntries: cfg.Cache.MaxEntries,
			MaxBytes:   cfg.Cache.MaxBytes,
		})

		err = observability.RegisterCacheMetrics(providers.Meter, map[string]observability.CacheStatsProvider{
			"forest": deps.cache,
		})
		if err != nil {
			return apiDeps{}, fmt.Errorf("register cache metrics: %w", err)
		}
	}

	return deps, nil
}

// cacheNamespace separates cached forests by the settings that change them.
func cacheNamespace(engine *cypherast.Engine) string {
	return "recover=" + strconv.FormatBool(engine.Recovers())
}

// newServerMux routes the API, wrapped in tracing and RED middleware, plus
// the operational endpoints.
func newServerMux(deps apiDeps) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/parse", deps.handleParse)
	api.HandleFunc("POST /api/find", deps.handleFind)
	api.HandleFunc("GET /api/kinds", deps.handleKinds)

	tracer := deps.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", observability.HTTPMiddleware(tracer, deps.red, api))
	mux.Handle("GET /healthz", internalobs.HealthHandler())
	mux.Handle("GET /readyz", internalobs.ReadyHandler(func(context.Context) error {
		return deps.engine.Tables().Validate(deps.engine.Types())
	}))

	if deps.metrics != nil {
		mux.Handle("GET /metrics", deps.metrics)
	}

	return mux
}

// writeJSON encodes the given value as JSON with status code.
func writeJSON(ctx context.Context, rw http.ResponseWriter, code int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	if encodeErr := json.NewEncoder(rw).Encode(value); encodeErr != nil {
		slog.Default().ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}

// statusFor maps parse failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cypherast.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, cypherast.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (d apiDeps) decode(rw http.ResponseWriter, req *http.Request, into any) error {
	if d.maxBody > maxBodyOverhead {
		req.Body = http.MaxBytesReader(rw, req.Body, d.maxBody)
	}

	if err := json.NewDecoder(req.Body).Decode(into); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

func (d apiDeps) handleParse(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body ParseRequest

	if err := d.decode(rw, req, &body); err != nil {
		writeJSON(ctx, rw, http.StatusBadRequest, ParseResponse{Error: err.Error()})

		return
	}

	compute := func(ctx context.Context) (any, error) {
		forest, err := astnode.ParseWith(ctx, d.engine, body.Query)

		return nonNil(forest), err
	}

	var (
		raw []byte
		hit bool
		err error
	)

	if d.cache != nil {
		raw, hit, err = d.cache.GetOrCompute(ctx, body.Query, compute)
	} else {
		var forest any

		if forest, err = compute(ctx); err == nil {
			raw, err = json.Marshal(forest)
		}
	}

	if err != nil {
		d.logger.DebugContext(ctx, "parse request failed", "error", err)
		writeJSON(ctx, rw, statusFor(err), ParseResponse{Error: err.Error()})

		return
	}

	writeJSON(ctx, rw, http.StatusOK, ParseResponse{Forest: raw, Cached: hit})
}

func (d apiDeps) handleFind(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body FindRequest

	if err := d.decode(rw, req, &body); err != nil {
		writeJSON(ctx, rw, http.StatusBadRequest, FindResponse{Error: err.Error()})

		return
	}

	query := astnode.Query{Role: body.Role, Start: body.Start, End: body.End}

	var err error

	if query.Type, err = resolveKind(d.engine, body.Type); err == nil {
		query.InstanceOf, err = resolveKind(d.engine, body.InstanceOf)
	}

	if err != nil {
		writeJSON(ctx, rw, statusFor(err), FindResponse{Error: err.Error()})

		return
	}

	forest, err := astnode.ParseWith(ctx, d.engine, body.Query)
	if err != nil {
		writeJSON(ctx, rw, statusFor(err), FindResponse{Error: err.Error()})

		return
	}

	writeJSON(ctx, rw, http.StatusOK, FindResponse{
		Matches: astnode.Matches(astnode.FindAll(forest, query), body.Query),
	})
}

func (d apiDeps) handleKinds(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	parent, err := resolveKind(d.engine, req.URL.Query().Get("instanceof"))
	if err != nil {
		writeJSON(ctx, rw, http.StatusBadRequest, map[string]string{"error": err.Error()})

		return
	}

	infos := d.engine.KindInfos()

	if parent != "" {
		infos = slices.DeleteFunc(infos, func(info cypherast.KindInfo) bool {
			return !slices.Contains(info.InstanceOf, parent)
		})
	}

	writeJSON(ctx, rw, http.StatusOK, infos)
}
