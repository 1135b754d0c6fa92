package chainfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/joeydtaylor/initchain/pkg/manifest"
)

// Handler is the admin API, wrapped so it can be named in the graph.
type Handler struct{ http.Handler }

// Server owns the admin listener. It listens synchronously in Start so a
// bad address fails the fx start instead of a background goroutine.
type Server struct {
	log  *zap.Logger
	srv  *http.Server
	cert string
	key  string

	mu sync.Mutex
	ln net.Listener
}

type serverDeps struct {
	fx.In
	Manifest manifest.Config
	Handler  *Handler `name:"admin"`
	Log      *zap.Logger
}

func newServer(d serverDeps) *Server {
	return &Server{
		log:  d.Log,
		cert: os.Getenv(d.Manifest.Admin.TLSCertEnv),
		key:  os.Getenv(d.Manifest.Admin.TLSKeyEnv),
		srv: &http.Server{
			Addr:         d.Manifest.Admin.Listen,
			Handler:      d.Handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13},
		},
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	useTLS := fileExists(s.cert) && fileExists(s.key)
	if useTLS {
		s.log.Info("admin server starting (TLS)", zap.String("addr", ln.Addr().String()), zap.String("cert", s.cert))
	} else {
		s.log.Info("admin server starting (PLAINTEXT)", zap.String("addr", ln.Addr().String()))
		s.srv.TLSConfig = nil
	}
	go func() {
		var err error
		if useTLS {
			err = s.srv.ServeTLS(ln, s.cert, s.key)
		} else {
			err = s.srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("admin server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("admin server stopping")
	return s.srv.Shutdown(ctx)
}

// Addr is the bound address once started, or "" before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
