package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/flagx"
)

var ownFlags = []string{"-b", "-d", "-f", "-r", "-a", "-l", "-s", "-e", "-p", "-v"}

// parseFlags populates selected Config fields from command-line flags. Only
// the flags listed in ownFlags are looked at.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], ownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	backend := fs.String("b", string(cfg.Backend), "storage backend: memory, sqlite, file, redis, remote")
	fs.StringVar(&cfg.SQLitePath, "d", cfg.SQLitePath, "sqlite database path")
	fs.StringVar(&cfg.KVFilePath, "f", cfg.KVFilePath, "key-value file path")
	fs.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "redis URL")
	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address and port of the record service")
	fs.StringVar(&cfg.LaunchLink, "l", cfg.LaunchLink, "launch link")
	fs.StringVar(&cfg.SeedFile, "s", cfg.SeedFile, "seed file imported into an empty store")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "export directory")
	pollInterval := fs.Int("p", int(cfg.PollInterval.Milliseconds()), "poll interval (in milliseconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Backend = Backend(*backend)
	cfg.PollInterval = time.Duration(*pollInterval) * time.Millisecond
}
