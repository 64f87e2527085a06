// Package config loads runtime configuration for the shiftnotes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the backend HTTP API
//	-m string     backend mode: local | remote
//	-dir string   data directory for the local backend
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080",
//	  "mode": "local",
//	  "data_dir": "/home/user/.shiftnotes"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
