package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/cypherast/internal/observability"
)

func scrape(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	return rec
}

func TestPrometheus_ServesMetrics(t *testing.T) {
	t.Parallel()

	prom, err := observability.NewPrometheus()
	require.NoError(t, err)

	rec := scrape(t, prom.Handler)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPrometheus_ExportsInstruments(t *testing.T) {
	t.Parallel()

	prom, err := observability.NewPrometheus()
	require.NoError(t, err)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(prom.Reader))

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	counter, err := mp.Meter("test").Int64Counter("cypherast.parse.total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	body := scrape(t, prom.Handler).Body.String()
	assert.Contains(t, body, "cypherast_parse_total")
	assert.Contains(t, body, "target_info")
}
