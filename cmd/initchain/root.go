package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/joeydtaylor/initchain/pkg/manifest"
)

type rootOpts struct {
	cfgFile string
	out     io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	o := &rootOpts{out: out}
	cmd := &cobra.Command{
		Use:          "initchain",
		Short:        "Ordered init/reset chains with an admin API",
		Version:      version,
		SilenceUsage: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.PersistentFlags().StringVarP(&o.cfgFile, "config", "c", "", "manifest file (TOML); defaults apply when empty")

	cmd.AddCommand(newRunCmd(o), newServeCmd(o), newTokenCmd(o))
	return cmd
}

// loadManifest loads the --config file, or the defaults when none was given.
func (o *rootOpts) loadManifest() (manifest.Config, error) {
	if o.cfgFile == "" {
		cfg := manifest.Default()
		cfg.ApplyEnv()
		return cfg, cfg.Validate()
	}
	return manifest.Load(o.cfgFile)
}
