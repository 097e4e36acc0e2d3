package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level gateway configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Site     SiteConfig     `yaml:"site"`
	Storage  StorageConfig  `yaml:"storage"`
	Metadata MetadataConfig `yaml:"metadata"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds listener settings
type ServerConfig struct {
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"`
}

// SiteConfig describes the site the gateway fronts
type SiteConfig struct {
	// CDNOrigin is the public origin embedded images are served from,
	// e.g. https://library.thecontrarian.in
	CDNOrigin string `yaml:"cdn_origin" validate:"required,url"`
	// CDNHost is the hostname the gateway answers image paths on directly
	CDNHost string `yaml:"cdn_host" validate:"required,hostname"`
	// SiteName appears in fallback titles and descriptions
	SiteName string `yaml:"site_name" validate:"required"`
	SiteURL  string `yaml:"site_url" validate:"required,url"`
	// AllowedReferers are hostnames (exact or any-subdomain) whose embeds
	// receive raw image bytes
	AllowedReferers []string `yaml:"allowed_referers" validate:"min=1"`
	// PassthroughOrigin receives requests for hostnames the gateway does
	// not recognize; empty means such requests get a plain 404
	PassthroughOrigin string `yaml:"passthrough_origin" validate:"omitempty,url"`
}

// StorageConfig selects and configures the backing object store
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"oneof=s3 file"`
	// Prefix namespaces every key before lookup, e.g. "originals/"
	Prefix string `yaml:"prefix"`

	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`

	// FileRoot is the directory backing the file store in development
	FileRoot string `yaml:"file_root"`
}

// MetadataConfig points at the provenance/EXIF extraction service
type MetadataConfig struct {
	BaseURL   string `yaml:"base_url" validate:"required,url"`
	TimeoutMS int    `yaml:"timeout_ms" validate:"gt=0"`
}

// CacheConfig configures the rendered-document cache
type CacheConfig struct {
	Backend    string `yaml:"backend" validate:"oneof=memory file"`
	FilePath   string `yaml:"file_path"`
	TTLMinutes int    `yaml:"ttl_minutes" validate:"gt=0"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads, defaults and validates the gateway configuration file
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Storage.Backend == "s3" && cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("invalid configuration: storage.bucket is required for the s3 backend")
	}
	if cfg.Storage.Backend == "file" && cfg.Storage.FileRoot == "" {
		return nil, fmt.Errorf("invalid configuration: storage.file_root is required for the file backend")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8787,
		},
		Storage: StorageConfig{
			Backend: "s3",
			Prefix:  "originals/",
			Region:  "auto",
		},
		Metadata: MetadataConfig{
			TimeoutMS: 2000,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTLMinutes: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// MetadataTimeout returns the per-upstream-call timeout
func (c *Config) MetadataTimeout() time.Duration {
	return time.Duration(c.Metadata.TimeoutMS) * time.Millisecond
}

// CacheTTL returns the document cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}
