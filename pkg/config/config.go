// Package config loads cardsheet settings.
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults ([Default])
//  2. A TOML file, by default $XDG_CONFIG_HOME/cardsheet/config.toml
//  3. Environment variables (CARDSHEET_* and CLOUDINARY_*), including any
//     set by a .env file in the working directory
//
// A minimal config file:
//
//	[server]
//	addr = ":5000"
//
//	[admin]
//	email = "admin@school.example"
//	password_hash = "$2a$10$..."
//	session_ttl = "24h"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//	database = "idcards"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const appName = "cardsheet"

// Duration is a time.Duration written as a string such as "24h" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete application configuration.
type Config struct {
	Server     Server     `toml:"server"`
	Admin      Admin      `toml:"admin"`
	Mongo      Mongo      `toml:"mongo"`
	Redis      Redis      `toml:"redis"`
	Cloudinary Cloudinary `toml:"cloudinary"`
	Media      Media      `toml:"media"`
	Cache      Cache      `toml:"cache"`
	Export     Export     `toml:"export"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr    string `toml:"addr"`
	BaseURL string `toml:"base_url"` // public origin used in local media URLs
}

// Admin is the single administrator credential.
type Admin struct {
	Email        string   `toml:"email"`
	PasswordHash string   `toml:"password_hash"` // bcrypt
	SessionTTL   Duration `toml:"session_ttl"`
}

// Mongo configures document storage. An empty URI selects the in-memory store.
type Mongo struct {
	URI      string   `toml:"uri"`
	Database string   `toml:"database"`
	Timeout  Duration `toml:"timeout"`
}

// Redis configures the session store and raster cache. An empty address
// keeps both in process.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Cloudinary holds image host credentials. When incomplete, uploads are
// stored on local disk under [Media.Dir].
type Cloudinary struct {
	CloudName string `toml:"cloud_name"`
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
}

// Enabled reports whether all credentials are set.
func (c Cloudinary) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Media configures local upload storage.
type Media struct {
	Dir string `toml:"dir"`
}

// Cache configures the raster cache.
type Cache struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// Export holds default export options.
type Export struct {
	Layout   string `toml:"layout"`
	PageSize string `toml:"page_size"`
	Quality  string `toml:"quality"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{Addr: ":5000"},
		Admin:  Admin{SessionTTL: Duration{24 * time.Hour}},
		Mongo: Mongo{
			Database: "idcards",
			Timeout:  Duration{10 * time.Second},
		},
		Media:  Media{Dir: filepath.Join(DataHome(), appName, "uploads")},
		Export: Export{Layout: "2x4", PageSize: "a4", Quality: "high"},
	}
}

// ConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func ConfigHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// DataHome returns $XDG_DATA_HOME or ~/.local/share.
func DataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(ConfigHome(), appName, "config.toml")
}

// Load reads the configuration. An empty path reads [DefaultPath] if it
// exists; an explicit path must exist. A .env file in the working directory
// is loaded first without overriding variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("decode %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides fields from environment variables looked up with
// lookup. Variables that are unset or empty leave the field alone.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	str("CARDSHEET_ADDR", &c.Server.Addr)
	str("CARDSHEET_BASE_URL", &c.Server.BaseURL)
	str("CARDSHEET_ADMIN_EMAIL", &c.Admin.Email)
	str("CARDSHEET_ADMIN_PASSWORD_HASH", &c.Admin.PasswordHash)
	str("CARDSHEET_MONGO_URI", &c.Mongo.URI)
	str("CARDSHEET_MONGO_DATABASE", &c.Mongo.Database)
	str("CARDSHEET_REDIS_ADDR", &c.Redis.Addr)
	str("CARDSHEET_REDIS_PASSWORD", &c.Redis.Password)
	str("CARDSHEET_MEDIA_DIR", &c.Media.Dir)
	str("CARDSHEET_CACHE_DIR", &c.Cache.Dir)
	str("CLOUDINARY_CLOUD_NAME", &c.Cloudinary.CloudName)
	str("CLOUDINARY_API_KEY", &c.Cloudinary.APIKey)
	str("CLOUDINARY_API_SECRET", &c.Cloudinary.APISecret)

	if v, ok := lookup("CARDSHEET_SESSION_TTL"); ok && v != "" {
		if err := c.Admin.SessionTTL.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("CARDSHEET_SESSION_TTL: %w", err)
		}
	}
	if v, ok := lookup("CARDSHEET_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CARDSHEET_REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	if v, ok := lookup("CARDSHEET_CACHE_DISABLED"); ok && v != "" {
		off, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CARDSHEET_CACHE_DISABLED: %w", err)
		}
		c.Cache.Disabled = off
	}
	return nil
}

// Validate checks settings needed to serve admin requests.
func (c *Config) Validate() error {
	var problems []string
	if c.Admin.Email == "" {
		problems = append(problems, "admin email is not set")
	}
	if c.Admin.PasswordHash == "" {
		problems = append(problems, "admin password hash is not set")
	}
	if c.Admin.SessionTTL.Duration < 0 {
		problems = append(problems, "session ttl must not be negative")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Write encodes c as TOML to path, creating parent directories.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
