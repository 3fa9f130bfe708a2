package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/client/admin"
	"github.com/dmitrijs2005/stampcard/internal/client/card"
	"github.com/dmitrijs2005/stampcard/internal/client/notify"
	"github.com/dmitrijs2005/stampcard/internal/client/poller"
	"github.com/dmitrijs2005/stampcard/internal/client/share"
	"github.com/dmitrijs2005/stampcard/internal/logging"
)

// Backend names a record store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendRedis  Backend = "redis"
	BackendRemote Backend = "remote"
)

func (b Backend) Valid() bool {
	switch b {
	case BackendMemory, BackendSQLite, BackendFile, BackendRedis, BackendRemote:
		return true
	}
	return false
}

// S3 holds the bucket used by "export s3". Empty Bucket disables it.
type S3 struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Bucket    string
	LinkTTL   time.Duration
}

// Config holds runtime settings for the stamp card CLI.
type Config struct {
	Backend Backend

	SQLitePath  string
	KVFilePath  string
	RedisURL    string
	RedisPrefix string
	ServerAddr  string
	RPCTimeout  time.Duration

	PollInterval   time.Duration
	AnimationStep  time.Duration
	RewardDelay    time.Duration
	ToastLifetime  time.Duration
	ProfileBaseURL string
	QREndpoint     string

	LaunchLink string
	SeedFile   string
	ExportDir  string
	S3         S3

	AdminUsername string
	AdminPassword string

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Backend = BackendSQLite
	c.SQLitePath = "data/stampcard.db"
	c.KVFilePath = "data/stampcard.json"
	c.RedisURL = "redis://127.0.0.1:6379/0"
	c.RedisPrefix = "stampcard:"
	c.ServerAddr = "127.0.0.1:50051"
	c.RPCTimeout = 5 * time.Second

	c.PollInterval = poller.DefaultInterval
	c.AnimationStep = card.DefaultStep
	c.RewardDelay = card.DefaultDelay
	c.ToastLifetime = notify.DefaultTTL
	c.ProfileBaseURL = "http://localhost:8080"
	c.QREndpoint = share.DefaultQREndpoint

	c.ExportDir = "exports"
	c.S3.Region = "us-east-1"
	c.S3.LinkTTL = 15 * time.Minute

	c.AdminUsername = admin.DefaultUsername
	c.AdminPassword = admin.DefaultPassword

	c.LogLevel = "warn"
}

// Validate reports settings the CLI cannot start with.
func (c *Config) Validate() error {
	if !c.Backend.Valid() {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	return logging.ParseLevel(s)
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
