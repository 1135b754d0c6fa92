package chain

import "maps"

// Config is the string map handed to every init and reset callback of a pass.
type Config map[string]string

// Get returns the value for key, or def when the key is absent.
func (c Config) Get(key, def string) string {
	if v, ok := c[key]; ok {
		return v
	}
	return def
}

// snapshot copies c so callbacks of one pass share a view the caller can't mutate.
func (c Config) snapshot() Config {
	if c == nil {
		return Config{}
	}
	return maps.Clone(c)
}
