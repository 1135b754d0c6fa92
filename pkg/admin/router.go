// Package admin serves an HTTP API for inspecting and driving one init
// chain: state and order, run, reset and release, plus Prometheus metrics.
package admin

import (
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/logging"
	"github.com/joeydtaylor/initchain/pkg/metrics"
	"github.com/joeydtaylor/initchain/pkg/transport/httpx"
)

// Deps is everything BuildRouter wires together. Only Runner is required.
type Deps struct {
	Runner   chain.Runner
	Params   chain.Config // base params; request bodies override per key
	Auth     *Auth
	Access   *logging.Access
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	Router   httpx.Router
	Log      *zap.Logger
}

func BuildRouter(d Deps) http.Handler {
	if d.Router == nil {
		d.Router = httpx.NewChi()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))

	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
	}
	if d.Access != nil {
		r.Use(d.Access.Middleware(Subject))
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Handle(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))

	h := &handlers{runner: d.Runner, params: d.Params, log: d.Log}
	r.Get("/chain", http.HandlerFunc(h.describe))

	guarded := r.Group(requireAuth(d.Auth))
	guarded.Post("/chain/run", http.HandlerFunc(h.run))
	guarded.Post("/chain/reset", http.HandlerFunc(h.reset))
	guarded.Post("/chain/release", http.HandlerFunc(h.release))
	return r.Mux()
}
