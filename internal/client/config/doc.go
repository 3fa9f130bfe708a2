// Package config loads runtime configuration for the stamp card CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-b string   storage backend: memory, sqlite, file, redis or remote
//	-d string   sqlite database path
//	-f string   key-value file path (backend "file")
//	-r string   redis URL (backend "redis")
//	-a string   address:port of the record service (backend "remote")
//	-l string   launch link, e.g. https://cafe.example/?user=dara
//	-s string   seed file imported when the store is empty
//	-e string   export directory
//	-p int      poll interval in milliseconds
//	-v string   log level: debug, info, warn or error
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "2s" or
// integer nanoseconds:
//
//	{
//	  "backend": "sqlite",
//	  "sqlite_path": "data/stampcard.db",
//	  "poll_interval": "2s",
//	  "s3": {"bucket": "exports", "endpoint": "http://127.0.0.1:9000"}
//	}
package config
