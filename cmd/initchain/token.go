package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joeydtaylor/initchain/pkg/admin"
)

func newTokenCmd(o *rootOpts) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token signed with the manifest's secret",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := o.loadManifest()
			if err != nil {
				return err
			}
			a, err := admin.NewAuth([]byte(os.Getenv(cfg.Admin.JWTSecretEnv)), cfg.Admin.Issuer)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Admin.JWTSecretEnv, err)
			}
			tok, err := a.Issue(subject, role, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(o.out, tok)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&subject, "subject", "admin", "token subject")
	f.StringVar(&role, "role", "", "optional role claim")
	f.DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
