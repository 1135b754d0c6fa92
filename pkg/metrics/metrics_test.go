package metrics_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/chaintest"
	"github.com/joeydtaylor/initchain/pkg/metrics"
)

func TestCollectorObservesChain(t *testing.T) {
	preg := prometheus.NewRegistry()
	col := metrics.NewCollector(preg)

	reg := chain.New(chain.WithName("svc"), chain.WithObserver(col))
	chaintest.NewProbe(reg, 1, true, nil, nil)
	bad := chaintest.NewProbe(reg, 2, true, nil, nil)
	bad.ArmFailure()
	rn := chain.NewRunner(reg)

	require.Error(t, rn.Run(context.Background(), nil))

	expected := `
# HELP initchain_passes_total run and reset passes by outcome
# TYPE initchain_passes_total counter
initchain_passes_total{chain="svc",op="init",outcome="failed"} 1
`
	require.NoError(t, testutil.GatherAndCompare(preg, strings.NewReader(expected), "initchain_passes_total"))

	expected = `
# HELP initchain_link_calls_total link callbacks by chain, op, level and outcome
# TYPE initchain_link_calls_total counter
initchain_link_calls_total{chain="svc",level="1",op="init",outcome="ok"} 1
initchain_link_calls_total{chain="svc",level="2",op="init",outcome="failed"} 1
`
	require.NoError(t, testutil.GatherAndCompare(preg, strings.NewReader(expected), "initchain_link_calls_total"))

	expected = `
# HELP initchain_last_pass_success 1 if the last pass of this op succeeded
# TYPE initchain_last_pass_success gauge
initchain_last_pass_success{chain="svc",op="init"} 0
`
	require.NoError(t, testutil.GatherAndCompare(preg, strings.NewReader(expected), "initchain_last_pass_success"))
}

func TestMiddlewareSkipsMetricsPath(t *testing.T) {
	preg := prometheus.NewRegistry()
	col := metrics.NewCollector(preg)
	col.AddSkipPaths("/ping")

	mux := chi.NewRouter()
	mux.Use(col.Middleware)
	mux.Handle("/metrics", metrics.Handler(preg))
	mux.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Get("/chain", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := http.Handler(mux)

	for _, p := range []string{"/metrics", "/ping", "/chain", "/chain"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `initchain_http_requests_total{code="418",method="GET",uri="/chain"} 2`)
	require.NotContains(t, rec.Body.String(), `uri="/ping"`)
	require.NotContains(t, rec.Body.String(), `uri="/metrics"`)
}

func TestUnknownPathsShareOneSeries(t *testing.T) {
	preg := prometheus.NewRegistry()
	col := metrics.NewCollector(preg)

	mux := chi.NewRouter()
	mux.Use(col.Middleware)
	mux.Get("/chain/{name}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	for i := range 50 {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, fmt.Sprintf("/x/%d", i), nil))
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, fmt.Sprintf("/chain/c%d", i), nil))
	}

	n, err := testutil.GatherAndCount(preg, "initchain_http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	expected := `
# HELP initchain_http_requests_total admin http requests by code, uri and method
# TYPE initchain_http_requests_total counter
initchain_http_requests_total{code="200",method="GET",uri="/chain/{name}"} 50
initchain_http_requests_total{code="404",method="GET",uri="unmatched"} 50
`
	require.NoError(t, testutil.GatherAndCompare(preg, strings.NewReader(expected), "initchain_http_requests_total"))
}

func TestCustomPathNormalizer(t *testing.T) {
	preg := prometheus.NewRegistry()
	col := metrics.NewCollector(preg)
	col.SetPathNormalizer(nil)
	col.SetPathNormalizer(func(*http.Request) string { return "all" })

	h := col.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/b", nil))

	n, err := testutil.GatherAndCount(preg, "initchain_http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestNewCollectorPanicsOnDoubleRegister(t *testing.T) {
	preg := prometheus.NewRegistry()
	metrics.NewCollector(preg)
	require.Panics(t, func() { metrics.NewCollector(preg) })
}
