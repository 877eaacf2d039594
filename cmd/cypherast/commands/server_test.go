package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/cypherast/pkg/cache"
	"github.com/Sumatoshi-tech/cypherast/pkg/config"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
)

func newTestMux(t *testing.T, opts ...cypherast.EngineOption) (http.Handler, *cache.ForestCache) {
	t.Helper()

	engine := cypherast.NewEngine(append([]cypherast.EngineOption{cypherast.WithMaxInputBytes(256)}, opts...)...)
	forestCache := cache.New(cache.Config{Namespace: cacheNamespace(engine), MaxEntries: 16})

	mux := newServerMux(apiDeps{
		engine:  engine,
		cache:   forestCache,
		logger:  slog.New(slog.DiscardHandler),
		maxBody: 256 + maxBodyOverhead,
	})

	return mux, forestCache
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	return recorder
}

func TestHandleParse(t *testing.T) {
	t.Parallel()

	mux, forestCache := newTestMux(t)

	first := postJSON(t, mux, "/api/parse", ParseRequest{Query: "RETURN 1;"})
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "application/json", first.Header().Get("Content-Type"))

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))
	assert.False(t, resp.Cached)
	assert.Empty(t, resp.Error)

	var forest []map[string]any
	require.NoError(t, json.Unmarshal(resp.Forest, &forest))
	require.Len(t, forest, 1)
	assert.Equal(t, "CYPHER_AST_STATEMENT", forest[0]["type"])

	second := postJSON(t, mux, "/api/parse", ParseRequest{Query: "RETURN 1;"})
	require.Equal(t, http.StatusOK, second.Code)

	var cached ParseResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &cached))
	assert.True(t, cached.Cached)
	assert.JSONEq(t, string(resp.Forest), string(cached.Forest))

	stats := forestCache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestHandleParse_EmptyQuery(t *testing.T) {
	t.Parallel()

	mux, _ := newTestMux(t)

	recorder := postJSON(t, mux, "/api/parse", ParseRequest{Query: "  "})
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.JSONEq(t, "[]", string(resp.Forest))
}

func TestHandleParse_RecoveredQuote(t *testing.T) {
	t.Parallel()

	mux, _ := newTestMux(t, cypherast.WithRecovery())

	recorder := postJSON(t, mux, "/api/parse", ParseRequest{Query: "x ;'"})
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))

	var forest []map[string]any
	require.NoError(t, json.Unmarshal(resp.Forest, &forest))
	require.Len(t, forest, 2)
	assert.Equal(t, "CYPHER_AST_ERROR", forest[1]["type"])
}

func TestHandleParse_Errors(t *testing.T) {
	t.Parallel()

	mux, forestCache := newTestMux(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "bad body", body: `{"query":`, wantCode: http.StatusBadRequest},
		{name: "syntax", body: `{"query":"MATCH (n RETURN n;"}`, wantCode: http.StatusUnprocessableEntity},
		{name: "too large", body: `{"query":"RETURN ` + string(bytes.Repeat([]byte("1"), 300)) + `;"}`, wantCode: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewBufferString(tt.body))
		recorder := httptest.NewRecorder()
		mux.ServeHTTP(recorder, req)

		assert.Equal(t, tt.wantCode, recorder.Code, tt.name)

		var resp ParseResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp), tt.name)
		assert.NotEmpty(t, resp.Error, tt.name)
		assert.Empty(t, resp.Forest, tt.name)
	}

	assert.Zero(t, forestCache.Stats().Entries)
}

func TestHandleParse_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	mux, _ := newTestMux(t)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/parse", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestHandleFind(t *testing.T) {
	t.Parallel()

	mux, _ := newTestMux(t)

	recorder := postJSON(t, mux, "/api/find", FindRequest{
		Query: "MATCH (n) WHERE n.age > 30 RETURN n;",
		Type:  "integer",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp FindResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "CYPHER_AST_INTEGER", resp.Matches[0].Type)
	assert.Equal(t, "30", resp.Matches[0].Text)

	end := 5
	recorder = postJSON(t, mux, "/api/find", FindRequest{Query: "RETURN 1;", End: &end})
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Empty(t, resp.Matches)
	assert.NotNil(t, resp.Matches)

	recorder = postJSON(t, mux, "/api/find", FindRequest{Query: "RETURN 1;", InstanceOf: "nope"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandleKinds(t *testing.T) {
	t.Parallel()

	mux, _ := newTestMux(t)

	query := url.Values{"instanceof": {"CYPHER_AST_EXPRESSION"}}

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/kinds?"+query.Encode(), nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var infos []cypherast.KindInfo
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &infos))
	require.NotEmpty(t, infos)

	for _, info := range infos {
		assert.Contains(t, info.InstanceOf, "CYPHER_AST_EXPRESSION", info.Name)
	}

	recorder = httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/kinds?instanceof=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestProbes(t *testing.T) {
	t.Parallel()

	mux, _ := newTestMux(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		recorder := httptest.NewRecorder()
		mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, recorder.Code, path)
		assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String(), path)
	}

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestNewAPIDeps(t *testing.T) {
	t.Parallel()

	providers := observability.Providers{
		Tracer: nooptrace.NewTracerProvider().Tracer(""),
		Meter:  noopmetric.NewMeterProvider().Meter(""),
		Logger: slog.New(slog.DiscardHandler),
	}

	cfg := config.Default()

	deps, err := newAPIDeps(cfg, providers, providers.Logger)
	require.NoError(t, err)
	require.NotNil(t, deps.cache)
	assert.True(t, deps.engine.Recovers())
	assert.Equal(t, cfg.Parser.MaxQueryBytes, deps.engine.MaxInputBytes())
	assert.Equal(t, "recover=true", cacheNamespace(deps.engine))

	cfg.Cache.Enabled = false

	deps, err = newAPIDeps(cfg, providers, providers.Logger)
	require.NoError(t, err)
	assert.Nil(t, deps.cache)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusRequestEntityTooLarge, statusFor(cypherast.ErrInputTooLarge))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&cypherast.ParseError{Message: "x"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(ErrUnknownKind))
	assert.Equal(t, http.StatusInternalServerError, statusFor(cypherast.ErrConstruction))
}
