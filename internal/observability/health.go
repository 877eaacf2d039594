package observability

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

const (
	healthStatusOK          = "ok"
	healthStatusUnavailable = "unavailable"
)

// ReadyCheck returns nil when its subsystem is ready.
type ReadyCheck func(ctx context.Context) error

type healthBody struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthHandler serves /healthz. It always answers 200 {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		writeHealth(rw, http.StatusOK, healthBody{Status: healthStatusOK})
	})
}

// ReadyHandler serves /readyz. The first failing check turns the answer into
// 503 with the check's error message.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		for _, check := range checks {
			err := check(hr.Context())
			if err != nil {
				writeHealth(rw, http.StatusServiceUnavailable, healthBody{
					Status: healthStatusUnavailable,
					Error:  err.Error(),
				})

				return
			}
		}

		writeHealth(rw, http.StatusOK, healthBody{Status: healthStatusOK})
	})
}

func writeHealth(rw http.ResponseWriter, code int, body healthBody) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	writeOrDiscard(rw, body)
}

func writeOrDiscard(w io.Writer, body healthBody) {
	data, err := json.Marshal(body)
	if err != nil {
		return
	}

	_, err = w.Write(data)
	if err != nil {
		return
	}
}
