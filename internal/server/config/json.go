package config

import (
	"encoding/json"
	"os"

	"github.com/mpetrenko/shiftnotes/internal/flagx"
	"github.com/mpetrenko/shiftnotes/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. It uses
// timex.Duration for interval fields, which allows parsing both string
// values such as "30m" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config struct.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	StorageBackend              string         `json:"storage_backend"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	DynamoTable                 string         `json:"dynamo_table"`
	DynamoRegion                string         `json:"dynamo_region"`
	DynamoEndpoint              string         `json:"dynamo_endpoint"`
	DynamoAccessKey             string         `json:"dynamo_access_key"`
	DynamoSecretKey             string         `json:"dynamo_secret_key"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If neither flag is set, no
// file is loaded. An unreadable or invalid file panics: a config file that
// was asked for but cannot be used is a startup error.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.StorageBackend = c.StorageBackend
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.DynamoTable = c.DynamoTable
	config.DynamoRegion = c.DynamoRegion
	config.DynamoEndpoint = c.DynamoEndpoint
	config.DynamoAccessKey = c.DynamoAccessKey
	config.DynamoSecretKey = c.DynamoSecretKey
}
