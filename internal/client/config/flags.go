package config

import (
	"flag"
	"os"

	"github.com/mpetrenko/shiftnotes/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     base URL of the backend server (default from Config)
//	-m string     backend mode: local | remote
//	-dir string   data directory for the local backend
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-dir"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL to access server")
	fs.StringVar(&cfg.Mode, "m", cfg.Mode, "backend mode (local|remote)")
	fs.StringVar(&cfg.DataDir, "dir", cfg.DataDir, "data directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
