package config

import (
	"os"
	"path/filepath"
)

// Backend modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Config holds runtime settings for the shiftnotes CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP API (remote mode).
//   - Mode: which repository backend to use, local or remote.
//   - DataDir: directory for the local JSON document and preferences.
type Config struct {
	ServerEndpointAddr string
	Mode               string
	DataDir            string
}

// LoadDefaults populates c with sensible defaults. The data directory
// defaults to ~/.shiftnotes, falling back to the current directory when the
// home directory cannot be resolved.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.Mode = ModeLocal

	home, err := os.UserHomeDir()
	if err != nil {
		c.DataDir = ".shiftnotes"
		return
	}
	c.DataDir = filepath.Join(home, ".shiftnotes")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
