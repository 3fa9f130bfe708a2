package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/flagx"
	"github.com/dmitrijs2005/stampcard/internal/timex"
)

type jsonS3 struct {
	Region    string         `json:"region"`
	AccessKey string         `json:"access_key"`
	SecretKey string         `json:"secret_key"`
	Endpoint  string         `json:"endpoint"`
	Bucket    string         `json:"bucket"`
	LinkTTL   timex.Duration `json:"link_ttl"`
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Zero values
// leave the corresponding Config field untouched.
type JsonConfig struct {
	Backend        string         `json:"backend"`
	SQLitePath     string         `json:"sqlite_path"`
	KVFilePath     string         `json:"kv_file_path"`
	RedisURL       string         `json:"redis_url"`
	RedisPrefix    string         `json:"redis_prefix"`
	ServerAddr     string         `json:"server_addr"`
	RPCTimeout     timex.Duration `json:"rpc_timeout"`
	PollInterval   timex.Duration `json:"poll_interval"`
	AnimationStep  timex.Duration `json:"animation_step"`
	RewardDelay    timex.Duration `json:"reward_delay"`
	ToastLifetime  timex.Duration `json:"toast_lifetime"`
	ProfileBaseURL string         `json:"profile_base_url"`
	QREndpoint     string         `json:"qr_endpoint"`
	LaunchLink     string         `json:"launch_link"`
	SeedFile       string         `json:"seed_file"`
	ExportDir      string         `json:"export_dir"`
	S3             jsonS3         `json:"s3"`
	AdminUsername  string         `json:"admin_username"`
	AdminPassword  string         `json:"admin_password"`
	LogLevel       string         `json:"log_level"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c / -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Backend != "" {
		cfg.Backend = Backend(jc.Backend)
	}
	setString(&cfg.SQLitePath, jc.SQLitePath)
	setString(&cfg.KVFilePath, jc.KVFilePath)
	setString(&cfg.RedisURL, jc.RedisURL)
	setString(&cfg.RedisPrefix, jc.RedisPrefix)
	setString(&cfg.ServerAddr, jc.ServerAddr)
	setDuration(&cfg.RPCTimeout, jc.RPCTimeout)
	setDuration(&cfg.PollInterval, jc.PollInterval)
	setDuration(&cfg.AnimationStep, jc.AnimationStep)
	setDuration(&cfg.RewardDelay, jc.RewardDelay)
	setDuration(&cfg.ToastLifetime, jc.ToastLifetime)
	setString(&cfg.ProfileBaseURL, jc.ProfileBaseURL)
	setString(&cfg.QREndpoint, jc.QREndpoint)
	setString(&cfg.LaunchLink, jc.LaunchLink)
	setString(&cfg.SeedFile, jc.SeedFile)
	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
	setString(&cfg.S3.Bucket, jc.S3.Bucket)
	setDuration(&cfg.S3.LinkTTL, jc.S3.LinkTTL)
	setString(&cfg.AdminUsername, jc.AdminUsername)
	setString(&cfg.AdminPassword, jc.AdminPassword)
	setString(&cfg.LogLevel, jc.LogLevel)
}
