// Package httpx is the small router contract the admin API is written
// against, with a chi implementation.
package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router is the minimal HTTP router contract initchain depends on.
// NewChi implements it.
type Router interface {
	Handle(method, path string, h http.Handler)
	Get(path string, h http.Handler)
	Post(path string, h http.Handler)
	Mux() http.Handler
	Use(mw ...func(http.Handler) http.Handler)
	// Group returns a sub-router sharing this prefix with extra middleware.
	Group(mw ...func(http.Handler) http.Handler) Router
}

// chiRouter is the default Router backed by github.com/go-chi/chi/v5.
type chiRouter struct{ r chi.Router }

// NewChi returns a chi-backed Router.
func NewChi() Router { return &chiRouter{r: chi.NewRouter()} }

func (c *chiRouter) Handle(method, path string, h http.Handler) { c.r.Method(method, path, h) }
func (c *chiRouter) Get(path string, h http.Handler)            { c.r.Method(http.MethodGet, path, h) }
func (c *chiRouter) Post(path string, h http.Handler)           { c.r.Method(http.MethodPost, path, h) }
func (c *chiRouter) Mux() http.Handler                          { return c.r }
func (c *chiRouter) Use(mw ...func(http.Handler) http.Handler)  { c.r.Use(mw...) }

func (c *chiRouter) Group(mw ...func(http.Handler) http.Handler) Router {
	return &chiRouter{r: c.r.With(mw...)}
}
