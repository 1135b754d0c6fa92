// Package metrics exports init chain activity and admin HTTP traffic to
// Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joeydtaylor/initchain/pkg/chain"
)

// Collector implements chain.Observer and also records HTTP requests.
type Collector struct {
	c collectors

	skipMu    sync.RWMutex
	skipPaths map[string]struct{}

	normMu    sync.RWMutex
	normalize func(*http.Request) string
}

// Unmatched is the uri label of requests that matched no route.
const Unmatched = "unmatched"

// RoutePattern labels a request with the chi route it matched, so path
// parameters and unknown paths do not mint new series.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return Unmatched
}

var _ chain.Observer = (*Collector)(nil)

// NewCollector registers its collectors with reg (prometheus.DefaultRegisterer
// when nil). It panics if they are already registered there.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	col := &Collector{
		c:         newCollectors(),
		skipPaths: map[string]struct{}{"/metrics": {}},
		normalize: RoutePattern,
	}
	reg.MustRegister(col.c.all()...)
	return col
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func (col *Collector) ObserveLink(name string, op chain.Op, level int, ok bool, d time.Duration) {
	col.c.linkCalls.WithLabelValues(name, string(op), strconv.Itoa(level), outcome(ok)).Inc()
	col.c.linkDuration.WithLabelValues(name, string(op)).Observe(d.Seconds())
}

func (col *Collector) ObservePass(name string, op chain.Op, ok bool, d time.Duration) {
	col.c.passes.WithLabelValues(name, string(op), outcome(ok)).Inc()
	col.c.passDuration.WithLabelValues(name, string(op)).Observe(d.Seconds())
	v := 0.0
	if ok {
		v = 1
	}
	col.c.lastPass.WithLabelValues(name, string(op)).Set(v)
}

// AddSkipPaths excludes paths from HTTP metrics ("/metrics" always is).
func (col *Collector) AddSkipPaths(paths ...string) {
	col.skipMu.Lock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			col.skipPaths[p] = struct{}{}
		}
	}
	col.skipMu.Unlock()
}

// SetPathNormalizer replaces RoutePattern as the source of the uri label.
// A nil fn is ignored.
func (col *Collector) SetPathNormalizer(fn func(*http.Request) string) {
	if fn == nil {
		return
	}
	col.normMu.Lock()
	col.normalize = fn
	col.normMu.Unlock()
}

func (col *Collector) uri(r *http.Request) string {
	col.normMu.RLock()
	fn := col.normalize
	col.normMu.RUnlock()
	return fn(r)
}

func (col *Collector) skip(r *http.Request) bool {
	col.skipMu.RLock()
	_, ok := col.skipPaths[r.URL.Path]
	col.skipMu.RUnlock()
	return ok
}

// Middleware records status, route and latency of every request it wraps.
// The route is read after the handler returns, once chi has matched it.
func (col *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			if col.skip(r) {
				return
			}
			col.c.httpRequests.WithLabelValues(strconv.Itoa(ww.Status()), col.uri(r), r.Method).Inc()
			col.c.responseTime.Observe(time.Since(start).Seconds())
		}()
		next.ServeHTTP(ww, r)
	})
}

// Handler serves g in the Prometheus text format; nil means the default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
