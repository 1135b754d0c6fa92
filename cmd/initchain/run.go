package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/demo"
	"github.com/joeydtaylor/initchain/pkg/logging"
)

var errScenarioFailed = errors.New("scenario ended with an error")

func newRunCmd(o *rootOpts) *cobra.Command {
	var (
		mode  demo.Mode
		retry bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive the demo components through a run/reset scenario and print a report",
		Long: `Registers the demo components in a fresh chain and drives them through one
scenario, printing what every component saw as JSON.

  initchain run                  run, run again, reset, run
  initchain run --failure        arm comp-d to fail, then reset and run
  initchain run --exception      arm comp-d to panic, then reset and run
  initchain run --release        release every link, then run
  initchain run --link-release   release comp-a's link, then run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := mode.Validate(); err != nil {
				return err
			}
			cfg, err := o.loadManifest()
			if err != nil {
				return err
			}
			lo := cfg.LogOptions()
			lo.Console = false
			log, err := logging.NewLog(lo)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			opts := cfg.ChainOptions()
			if cmd.Flags().Changed("retry") {
				opts = append(opts, chain.WithRetryAfterFailure(retry))
			}
			opts = append(opts, chain.WithLogger(log))
			reg := chain.New(opts...)

			rep, err := demo.Play(cmd.Context(), reg, cfg.ChainConfig(), mode, log)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(o.out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
			if last := rep.Steps[len(rep.Steps)-1]; last.Err != "" {
				log.Warn("scenario ended with an error", zap.String("op", last.Op), zap.String("error", last.Err))
				return fmt.Errorf("%w: %s", errScenarioFailed, last.Err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&mode.Failure, "failure", "f", false, "simulate an init failure in comp-d")
	f.BoolVarP(&mode.Exception, "exception", "e", false, "panic inside comp-d's init")
	f.BoolVarP(&mode.Release, "release", "r", false, "release every link before running")
	f.BoolVarP(&mode.LinkRelease, "link-release", "l", false, "release comp-a's link before running")
	f.BoolVar(&retry, "retry", false, "allow reset after a failed run (overrides the manifest)")
	cmd.MarkFlagsMutuallyExclusive("failure", "exception")
	cmd.MarkFlagsMutuallyExclusive("release", "link-release")
	return cmd
}
