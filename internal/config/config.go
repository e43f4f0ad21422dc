package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application level configuration.
type Config struct {
	ServerURL       string
	ListenAddress   string
	CacheDSN        string
	CacheKey        string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	ShutdownTimeout time.Duration
	DeleteBy        DeleteKey
	UploadFileName  string
	LogLevel        string
	LogFile         string
}

// DeleteKey selects how deletes address a record on the service.
type DeleteKey string

const (
	DeleteByNumber DeleteKey = "number"
	DeleteByID     DeleteKey = "id"
)

const (
	envPrefix = "PHONETRACK"

	keyServerURL       = "server_url"
	keyListenAddress   = "listen_address"
	keyCacheDSN        = "cache_dsn"
	keyCacheKey        = "cache_key"
	keyRequestTimeout  = "request_timeout"
	keyRefreshInterval = "refresh_interval"
	keyShutdownTimeout = "shutdown_timeout"
	keyDeleteBy        = "delete_by"
	keyUploadFileName  = "upload_file_name"
	keyLogLevel        = "log_level"
	keyLogFile         = "log_file"

	defaultListenAddress   = "127.0.0.1:8787"
	defaultCacheDSN        = "phonetrack.db"
	defaultCacheKey        = "phoneNumbers"
	defaultRequestTimeout  = 10 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultUploadFileName  = "uploaded_image.jpeg"
	defaultLogLevel        = "info"
)

var keys = []string{
	keyServerURL, keyListenAddress, keyCacheDSN, keyCacheKey,
	keyRequestTimeout, keyRefreshInterval, keyShutdownTimeout,
	keyDeleteBy, keyUploadFileName, keyLogLevel, keyLogFile,
}

// Source points Load at an optional config file and command line flags.
type Source struct {
	File  string
	Flags *pflag.FlagSet
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(flagName(keyServerURL), "", "Phone number service base URL")
	fs.String(flagName(keyListenAddress), defaultListenAddress, "Bridge API listen address")
	fs.String(flagName(keyCacheDSN), defaultCacheDSN, "Cache location: sqlite file, postgres:// DSN or memory:")
	fs.String(flagName(keyCacheKey), defaultCacheKey, "Key of the cache entry holding the collection")
	fs.Duration(flagName(keyRequestTimeout), defaultRequestTimeout, "Timeout for a single remote request")
	fs.Duration(flagName(keyRefreshInterval), 0, "Interval between background refreshes, 0 disables")
	fs.Duration(flagName(keyShutdownTimeout), defaultShutdownTimeout, "Graceful shutdown timeout")
	fs.String(flagName(keyDeleteBy), string(DeleteByNumber), "Delete records by number or id")
	fs.String(flagName(keyUploadFileName), defaultUploadFileName, "File name sent with uploaded images")
	fs.String(flagName(keyLogLevel), defaultLogLevel, "Log level: debug, info, warn, error")
	fs.String(flagName(keyLogFile), "", "Write logs to a rotating file instead of stderr")
}

// Load resolves configuration from defaults, config file, environment and flags,
// in increasing order of precedence.
func Load(src Source) (*Config, error) {
	return load(src, os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(src Source, lookup envLookup) (*Config, error) {
	v := viper.New()
	v.SetDefault(keyListenAddress, defaultListenAddress)
	v.SetDefault(keyCacheDSN, defaultCacheDSN)
	v.SetDefault(keyCacheKey, defaultCacheKey)
	v.SetDefault(keyRequestTimeout, defaultRequestTimeout.String())
	v.SetDefault(keyRefreshInterval, "0s")
	v.SetDefault(keyShutdownTimeout, defaultShutdownTimeout.String())
	v.SetDefault(keyDeleteBy, string(DeleteByNumber))
	v.SetDefault(keyUploadFileName, defaultUploadFileName)
	v.SetDefault(keyLogLevel, defaultLogLevel)

	file := src.File
	if file == "" {
		file = getString(lookup, envPrefix+"_CONFIG", "")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	for _, key := range keys {
		if val, ok := lookup(envName(key)); ok && val != "" {
			v.Set(key, val)
		}
	}

	if src.Flags != nil {
		src.Flags.Visit(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if slices.Contains(keys, key) {
				v.Set(key, f.Value.String())
			}
		})
	}

	cfg := &Config{
		ServerURL:      strings.TrimRight(strings.TrimSpace(v.GetString(keyServerURL)), "/"),
		ListenAddress:  v.GetString(keyListenAddress),
		CacheDSN:       v.GetString(keyCacheDSN),
		CacheKey:       v.GetString(keyCacheKey),
		DeleteBy:       DeleteKey(strings.ToLower(v.GetString(keyDeleteBy))),
		UploadFileName: v.GetString(keyUploadFileName),
		LogLevel:       strings.ToLower(v.GetString(keyLogLevel)),
		LogFile:        v.GetString(keyLogFile),
	}

	var err error
	if cfg.RequestTimeout, err = parseDuration(v, keyRequestTimeout); err != nil {
		return nil, fmt.Errorf("invalid request timeout: %w", err)
	}
	if cfg.RefreshInterval, err = parseDuration(v, keyRefreshInterval); err != nil {
		return nil, fmt.Errorf("invalid refresh interval: %w", err)
	}
	if cfg.ShutdownTimeout, err = parseDuration(v, keyShutdownTimeout); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.RefreshInterval < 0 {
		cfg.RefreshInterval = 0
	}
	if cfg.CacheKey == "" {
		cfg.CacheKey = defaultCacheKey
	}
	if cfg.UploadFileName == "" {
		cfg.UploadFileName = defaultUploadFileName
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListenAddress
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return errors.New("server url must be provided")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server url must be absolute, got %q", c.ServerURL)
	}
	switch c.DeleteBy {
	case DeleteByNumber, DeleteByID:
	default:
		return fmt.Errorf("delete_by must be %q or %q, got %q", DeleteByNumber, DeleteByID, c.DeleteBy)
	}
	if c.CacheDSN == "" {
		return errors.New("cache dsn must be provided")
	}
	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" || raw == "0" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(key)
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
