// Package chainfx runs an init chain inside an fx application: Run on
// start, optional Reset on stop, and an optional admin HTTP server.
package chainfx

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/joeydtaylor/initchain/pkg/admin"
	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/logging"
	"github.com/joeydtaylor/initchain/pkg/manifest"
	"github.com/joeydtaylor/initchain/pkg/metrics"
	"github.com/joeydtaylor/initchain/pkg/transport/httpx"
)

// Options selects the manifest and the registry to drive. A nil Registry
// means chain.Default().
type Options struct {
	Manifest manifest.Config
	Registry *chain.Registry
}

// Module needs a *zap.Logger and, when the admin server is enabled, a
// *logging.Access from elsewhere in the graph (logging.Module provides both).
func Module(o Options) fx.Option {
	return fx.Module("initchain",
		fx.Supply(o.Manifest),
		fx.Provide(
			providePrometheus,
			fx.Annotate(provideCollector, fx.ParamTags(`name:"registerer"`)),
			func(col *metrics.Collector, log *zap.Logger) *chain.Registry {
				return configureRegistry(o, col, log)
			},
			chain.NewRunner,
			provideAuth,
			fx.Annotate(provideAdmin, fx.ParamTags(``, ``, ``, ``, `optional:"true"`, `name:"gatherer"`, ``), fx.ResultTags(`name:"admin"`)),
			newServer,
		),
		fx.Invoke(registerHooks),
	)
}

type promOut struct {
	fx.Out
	Registerer prometheus.Registerer `name:"registerer"`
	Gatherer   prometheus.Gatherer   `name:"gatherer"`
}

func providePrometheus() promOut {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promOut{Registerer: reg, Gatherer: reg}
}

func provideCollector(reg prometheus.Registerer, m manifest.Config) *metrics.Collector {
	col := metrics.NewCollector(reg)
	col.AddSkipPaths(m.Admin.MetricsSkipPaths...)
	return col
}

func configureRegistry(o Options, col *metrics.Collector, log *zap.Logger) *chain.Registry {
	reg := o.Registry
	if reg == nil {
		reg = chain.Default()
	}
	opts := append(o.Manifest.ChainOptions(), chain.WithLogger(log), chain.WithObserver(col))
	reg.Configure(opts...)
	return reg
}

// provideAuth returns nil when the secret env var is unset, which leaves the
// mutating admin endpoints closed.
func provideAuth(m manifest.Config, log *zap.Logger) (*admin.Auth, error) {
	secret := os.Getenv(m.Admin.JWTSecretEnv)
	if secret == "" {
		if m.Admin.Enable {
			log.Warn("admin secret not set; mutating endpoints disabled", zap.String("env", m.Admin.JWTSecretEnv))
		}
		return nil, nil
	}
	return admin.NewAuth([]byte(secret), m.Admin.Issuer)
}

func provideAdmin(
	m manifest.Config,
	rn chain.Runner,
	a *admin.Auth,
	col *metrics.Collector,
	acc *logging.Access,
	/* name:"gatherer" */ g prometheus.Gatherer,
	log *zap.Logger,
) *Handler {
	h := admin.BuildRouter(admin.Deps{
		Runner:   rn,
		Params:   m.ChainConfig(),
		Auth:     a,
		Access:   acc,
		Metrics:  col,
		Gatherer: g,
		Router:   httpx.NewChi(),
		Log:      log,
	})
	return &Handler{h}
}

type hookDeps struct {
	fx.In
	Manifest manifest.Config
	Runner   chain.Runner
	Server   *Server
	Log      *zap.Logger
}

func registerHooks(lc fx.Lifecycle, d hookDeps) {
	m := d.Manifest
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := d.Runner.Run(ctx, m.ChainConfig()); err != nil {
				d.Log.Error("init chain failed", zap.String("chain", m.Chain.Name), zap.Error(err))
				return err
			}
			if m.Admin.Enable {
				return d.Server.Start()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var err error
			if m.Admin.Enable {
				err = d.Server.Stop(ctx)
			}
			if m.Chain.ResetOnStop {
				if rerr := d.Runner.Reset(ctx, m.ChainConfig()); rerr != nil {
					d.Log.Warn("init chain reset on stop refused", zap.Error(rerr))
				}
			}
			return err
		},
	})
}
