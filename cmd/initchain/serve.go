package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/joeydtaylor/initchain/pkg/bundlefx"
)

func newServeCmd(o *rootOpts) *cobra.Command {
	var withDemo bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the default chain inside an fx app and serve the admin API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := o.loadManifest()
			if err != nil {
				return err
			}
			cfg.Admin.Enable = true
			fx.New(bundlefx.Module(cfg, withDemo)).Run()
			return nil
		},
	}
	cmd.Flags().BoolVar(&withDemo, "demo", true, "register the demo components in the default chain")
	return cmd
}
