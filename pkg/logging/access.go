package logging

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Subject names the caller of a request for the access log. The admin
// auth guard provides it.
type Subject func(r *http.Request) (name string, ok bool)

// Access writes one log line per HTTP request.
type Access struct {
	log *zap.Logger

	bodyMu    sync.RWMutex
	bodyPaths map[string]struct{}
}

func NewAccess(log *zap.Logger) *Access {
	if log == nil {
		log = zap.NewNop()
	}
	return &Access{log: log, bodyPaths: map[string]struct{}{}}
}

// AddBodyLogPaths allowlists paths whose small JSON request bodies are logged.
func (a *Access) AddBodyLogPaths(paths ...string) {
	a.bodyMu.Lock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			a.bodyPaths[p] = struct{}{}
		}
	}
	a.bodyMu.Unlock()
}

// maxLoggedBody caps how much of a request body the access log buffers.
const maxLoggedBody = 1 << 16

// wantsBody reports whether r may have its body logged. Nothing is read
// from the body for any other request.
func (a *Access) wantsBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return false
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return false
	}
	a.bodyMu.RLock()
	_, ok := a.bodyPaths[r.URL.Path]
	a.bodyMu.RUnlock()
	return ok
}

// peekBody reads at most maxLoggedBody+1 bytes and puts them back in front
// of the unread rest, so the handler still sees the whole body. The prefix
// is returned only when it holds the complete body.
func peekBody(r *http.Request) []byte {
	head, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	if err != nil || len(head) == 0 || len(head) > maxLoggedBody {
		return nil
	}
	return head
}

// Middleware logs the request after the handler returns. who may be nil.
func (a *Access) Middleware(who Subject) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)

			var body []byte
			if a.wantsBody(r) {
				body = peekBody(r)
			}

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}

			start := time.Now()
			defer func() {
				subject, authed := "", false
				if who != nil {
					subject, authed = who(r)
				}
				log := a.log.With(
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("httpScheme", scheme),
					zap.Bool("isAuthenticated", authed),
					zap.String("subject", subject),
					zap.String("httpProto", r.Proto),
					zap.String("httpMethod", r.Method),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.String("uri", r.URL.Path),
					zap.Duration("lat", time.Since(start)),
					zap.Int("responseSize", ww.BytesWritten()),
					zap.Int("status", ww.Status()),
				)
				if body != nil {
					log.Info("http request", zap.ByteString("requestData", body))
				} else {
					log.Info("http request")
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
