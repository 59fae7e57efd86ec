// Package httpapi exposes the command surface over HTTP for tooling that
// prefers request/response over a long-lived socket: POST /v1/command
// carries the same envelope as the TCP transport, plus health and
// prometheus metrics endpoints.
package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rigwire/rigwire/internal/logging"
	"github.com/rigwire/rigwire/internal/metrics"
	"github.com/rigwire/rigwire/internal/router"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// maxBodyBytes bounds a single command body, matching the TCP frame cap.
const maxBodyBytes = 8 << 20

// Handler builds the HTTP adapter. Commands go through the same router and
// dispatch bridge as every other transport.
func Handler(rt *router.Router, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Post("/v1/command", func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
		if err != nil {
			writeResponse(w, logger, protocol.ErrorMessage("failed to read request body"))
			return
		}

		cmd, err := protocol.ParseCommand(body)
		if err != nil {
			writeResponse(w, logger, protocol.Errorf(err))
			return
		}
		writeResponse(w, logger, rt.Dispatch(req.Context(), cmd))
	})

	return r
}

func writeResponse(w http.ResponseWriter, logger *slog.Logger, resp *protocol.Response) {
	w.Header().Set("Content-Type", "application/json")
	// The envelope carries its own status; HTTP stays 200 so clients only
	// parse one error channel.
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn("response encode failed", "err", err)
	}
}
