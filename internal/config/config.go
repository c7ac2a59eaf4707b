package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/klanec/pic2pin/pkg/common"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	LogLevel string
	Scan     ScanConfig
	Geocode  GeocodeConfig
	S3       S3Config
}

// ScanConfig represents scan pipeline configuration
type ScanConfig struct {
	Recursive   bool
	Concurrency int
	Format      string
	Output      string
	NoProgress  bool
}

// GeocodeConfig represents reverse-geocoding enrichment configuration
type GeocodeConfig struct {
	Enabled   bool
	Endpoint  string
	Email     string
	CachePath string
	NoCache   bool
}

// S3Config represents optional report publishing configuration
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel: "info",
		Scan: ScanConfig{
			Concurrency: runtime.NumCPU(),
			Format:      "plain",
		},
		Geocode: GeocodeConfig{},
		S3: S3Config{
			Region: "us-east-1",
			UseSSL: true,
		},
	}
}

// Load reads configuration from an optional file and PIC2PIN_* environment
// variables on top of the defaults. Command-line flags are bound by the CLI
// layer and take precedence over both.
func Load(configFile string) (*Config, error) {
	cfg := New()

	v := viper.New()
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("scan.recursive", cfg.Scan.Recursive)
	v.SetDefault("scan.concurrency", cfg.Scan.Concurrency)
	v.SetDefault("scan.format", cfg.Scan.Format)
	v.SetDefault("scan.output", "")
	v.SetDefault("scan.no_progress", false)
	v.SetDefault("geocode.enabled", false)
	v.SetDefault("geocode.endpoint", "")
	v.SetDefault("geocode.no_cache", false)
	v.SetDefault("s3.region", cfg.S3.Region)
	v.SetDefault("s3.use_ssl", cfg.S3.UseSSL)

	v.SetEnvPrefix("PIC2PIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, common.NewConfigError(fmt.Sprintf("reading config file: %v", err))
		}
	}

	cfg.LogLevel = v.GetString("log_level")
	cfg.Scan.Recursive = v.GetBool("scan.recursive")
	cfg.Scan.Concurrency = v.GetInt("scan.concurrency")
	cfg.Scan.Format = v.GetString("scan.format")
	cfg.Scan.Output = v.GetString("scan.output")
	cfg.Scan.NoProgress = v.GetBool("scan.no_progress")
	cfg.Geocode.Enabled = v.GetBool("geocode.enabled")
	cfg.Geocode.Endpoint = v.GetString("geocode.endpoint")
	cfg.Geocode.Email = v.GetString("geocode.email")
	cfg.Geocode.CachePath = v.GetString("geocode.cache_path")
	cfg.Geocode.NoCache = v.GetBool("geocode.no_cache")
	cfg.S3.Endpoint = v.GetString("s3.endpoint")
	cfg.S3.Region = v.GetString("s3.region")
	cfg.S3.Bucket = v.GetString("s3.bucket")
	cfg.S3.AccessKey = v.GetString("s3.access_key")
	cfg.S3.SecretKey = v.GetString("s3.secret_key")
	cfg.S3.UseSSL = v.GetBool("s3.use_ssl")
	cfg.S3.Prefix = v.GetString("s3.prefix")

	return cfg, nil
}
