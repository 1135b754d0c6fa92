package manifest

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/joeydtaylor/initchain/pkg/logging"
)

func (c *Config) fill() {
	if strings.TrimSpace(c.Chain.Name) == "" {
		c.Chain.Name = "default"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "log"
	}
	if c.Log.File == "" {
		c.Log.File = "initchain.log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Admin.Listen == "" {
		c.Admin.Listen = ":4000"
	}
	if c.Admin.JWTSecretEnv == "" {
		c.Admin.JWTSecretEnv = "INITCHAIN_ADMIN_SECRET"
	}
	if c.Admin.Issuer == "" {
		c.Admin.Issuer = "initchain"
	}
	if c.Admin.TLSCertEnv == "" {
		c.Admin.TLSCertEnv = "SSL_SERVER_CERTIFICATE"
	}
	if c.Admin.TLSKeyEnv == "" {
		c.Admin.TLSKeyEnv = "SSL_SERVER_KEY"
	}
	if c.Params == nil {
		c.Params = map[string]string{}
	}
}

// Validate fills defaults and rejects values that cannot work.
func (c *Config) Validate() error {
	c.fill()
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if strings.ContainsAny(c.Log.File, `/\`) {
		return fmt.Errorf("log.file %q must be a bare file name", c.Log.File)
	}
	if _, _, err := net.SplitHostPort(c.Admin.Listen); err != nil {
		return fmt.Errorf("admin.listen %q: %w", c.Admin.Listen, err)
	}
	for _, p := range slices.Concat(c.Log.BodyPaths, c.Admin.MetricsSkipPaths) {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("path %q must start with /", p)
		}
	}
	for k := range c.Params {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("params: empty key")
		}
	}
	return nil
}
