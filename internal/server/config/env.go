package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "STAMPCARD_"

// envFiles are tried in order; godotenv never overrides variables that are
// already set, so the shell environment wins over the files.
var envFiles = []string{".env", "../.env"}

var lookupEnv = os.LookupEnv

// parseEnv loads the first .env file found and overlays STAMPCARD_*
// variables. A malformed duration panics like a malformed JSON file does.
func parseEnv(config *Config) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			break
		}
	}

	if v, ok := lookupEnv(envPrefix + "GRPC_ADDR"); ok {
		config.EndpointAddrGRPC = v
	}
	if v, ok := lookupEnv(envPrefix + "METRICS_ADDR"); ok {
		config.MetricsAddr = v
	}
	if v, ok := lookupEnv(envPrefix + "DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := lookupEnv(envPrefix + "SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.ShutdownTimeout = d
	}
	if v, ok := lookupEnv(envPrefix + "LOG_LEVEL"); ok {
		config.LogLevel = v
	}
}
