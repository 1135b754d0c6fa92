package manifest

import (
	"bytes"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Env names read by ApplyEnv.
const (
	EnvChainName   = "INITCHAIN_CHAIN_NAME"
	EnvLogLevel    = "INITCHAIN_LOG_LEVEL"
	EnvAdminListen = "INITCHAIN_ADMIN_LISTEN"
)

// Default is the configuration used when no manifest file is given.
func Default() Config {
	c := Config{}
	c.fill()
	return c
}

// Load reads, decodes, applies env overrides to and validates the manifest
// at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse is Load without the file read. Unknown keys are rejected.
func Parse(b []byte) (Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides a few fields from the environment.
func (c *Config) ApplyEnv() {
	c.Chain.Name = envOr(EnvChainName, c.Chain.Name)
	c.Log.Level = envOr(EnvLogLevel, c.Log.Level)
	c.Admin.Listen = envOr(EnvAdminListen, c.Admin.Listen)
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
