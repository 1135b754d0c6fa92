// Package bundlefx bundles the fx modules a served initchain process needs.
package bundlefx

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/chainfx"
	"github.com/joeydtaylor/initchain/pkg/chaintest"
	"github.com/joeydtaylor/initchain/pkg/demo"
	"github.com/joeydtaylor/initchain/pkg/logging"
	"github.com/joeydtaylor/initchain/pkg/manifest"
)

// Module wires logging, fx's own event log and the chain module for cfg.
// withDemo registers the demo components in the default chain before start.
func Module(cfg manifest.Config, withDemo bool) fx.Option {
	opts := []fx.Option{
		logging.Module(cfg.LogOptions()),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		chainfx.Module(chainfx.Options{Manifest: cfg}),
	}
	if withDemo {
		opts = append(opts, fx.Invoke(registerDemo))
	}
	return fx.Options(opts...)
}

func registerDemo(reg *chain.Registry, log *zap.Logger) {
	demo.Register(reg, chaintest.NewRecorder(), log.Named("demo"))
}
