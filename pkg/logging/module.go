package logging

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the system logger (untagged) and the access logger, both
// built from the supplied Options. The access log goes to its own file.
func Module(o Options) fx.Option {
	return fx.Module("logging",
		fx.Supply(o),
		fx.Provide(
			ProvideLogger,
			ProvideAccess,
		),
	)
}

func ProvideLogger(lc fx.Lifecycle, o Options) (*zap.Logger, error) {
	log, err := NewLog(o)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		_ = log.Sync()
		return nil
	}})
	return log, nil
}

func ProvideAccess(o Options) (*Access, error) {
	o.File = "http-access.log"
	log, err := NewLog(o)
	if err != nil {
		return nil, err
	}
	acc := NewAccess(log)
	acc.AddBodyLogPaths(o.BodyPaths...)
	return acc, nil
}
