package config

import (
	"flag"
	"os"
	"time"

	"github.com/mpetrenko/shiftnotes/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g., ":8080")
//	-b string    storage backend: memory | postgres | dynamo
//	-d string    PostgreSQL DSN
//	-s string    JWT HMAC secret key
//	-t int       access token validity, minutes
//	-dt string   DynamoDB table name
//	-dr string   DynamoDB region
//	-de string   DynamoDB endpoint (for local DynamoDB)
//	-dk string   DynamoDB access key (static credentials)
//	-dp string   DynamoDB secret key (static credentials)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-b", "-d", "-s", "-t", "-dt", "-dr", "-de", "-dk", "-dp",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (memory|postgres|dynamo)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.StringVar(&config.DynamoTable, "dt", config.DynamoTable, "DynamoDB table name")
	fs.StringVar(&config.DynamoRegion, "dr", config.DynamoRegion, "DynamoDB region")
	fs.StringVar(&config.DynamoEndpoint, "de", config.DynamoEndpoint, "DynamoDB endpoint")
	fs.StringVar(&config.DynamoAccessKey, "dk", config.DynamoAccessKey, "DynamoDB access key")
	fs.StringVar(&config.DynamoSecretKey, "dp", config.DynamoSecretKey, "DynamoDB secret key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
}
