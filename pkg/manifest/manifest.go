// Package manifest loads the TOML file that configures an initchain
// process: chain policy, the params handed to every callback, logging and
// the admin server.
package manifest

import (
	"maps"

	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/logging"
)

/* ===========================
   Top-level config
   =========================== */

type Config struct {
	Chain  Chain             `toml:"chain"`
	Params map[string]string `toml:"params"`
	Log    Log               `toml:"log"`
	Admin  Admin             `toml:"admin"`
}

type Chain struct {
	Name              string `toml:"name"`
	RetryAfterFailure bool   `toml:"retry_after_failure"`
	// ResetOnStop runs a reset pass when the process shuts down.
	ResetOnStop bool `toml:"reset_on_stop"`
}

type Log struct {
	Dir       string   `toml:"dir"`
	File      string   `toml:"file"`
	Level     string   `toml:"level"`
	Console   *bool    `toml:"console"`
	BodyPaths []string `toml:"body_paths"`
}

type Admin struct {
	Enable           bool     `toml:"enable"`
	Listen           string   `toml:"listen"`
	JWTSecretEnv     string   `toml:"jwt_secret_env"`
	Issuer           string   `toml:"issuer"`
	TLSCertEnv       string   `toml:"tls_cert_env"`
	TLSKeyEnv        string   `toml:"tls_key_env"`
	MetricsSkipPaths []string `toml:"metrics_skip_paths"`
}

/* ===========================
   Conversions
   =========================== */

// ChainOptions turns the [chain] table into registry options.
func (c Config) ChainOptions() []chain.Option {
	return []chain.Option{
		chain.WithName(c.Chain.Name),
		chain.WithRetryAfterFailure(c.Chain.RetryAfterFailure),
	}
}

// ChainConfig returns a copy of [params].
func (c Config) ChainConfig() chain.Config {
	out := chain.Config{}
	maps.Copy(out, c.Params)
	return out
}

func (c Config) LogOptions() logging.Options {
	console := true
	if c.Log.Console != nil {
		console = *c.Log.Console
	}
	return logging.Options{
		Dir:       c.Log.Dir,
		File:      c.Log.File,
		Level:     c.Log.Level,
		Console:   console,
		BodyPaths: c.Log.BodyPaths,
	}
}
