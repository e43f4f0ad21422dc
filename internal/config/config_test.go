package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func envFrom(env map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	_, err := load(Source{}, envFrom(nil))
	if err == nil {
		t.Fatalf("expected error due to missing server url, got nil")
	}

	cfg, err := load(Source{}, envFrom(map[string]string{"PHONETRACK_SERVER_URL": "http://127.0.0.1:8000/"}))
	if err != nil {
		t.Fatalf("load returned unexpected error: %v", err)
	}

	if cfg.ServerURL != "http://127.0.0.1:8000" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.ServerURL)
	}
	if cfg.ListenAddress != defaultListenAddress {
		t.Errorf("expected default listen address %q, got %q", defaultListenAddress, cfg.ListenAddress)
	}
	if cfg.CacheDSN != defaultCacheDSN {
		t.Errorf("expected default cache dsn %q, got %q", defaultCacheDSN, cfg.CacheDSN)
	}
	if cfg.CacheKey != defaultCacheKey {
		t.Errorf("expected default cache key %q, got %q", defaultCacheKey, cfg.CacheKey)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Errorf("expected default request timeout %v, got %v", defaultRequestTimeout, cfg.RequestTimeout)
	}
	if cfg.RefreshInterval != 0 {
		t.Errorf("expected refresher disabled by default, got %v", cfg.RefreshInterval)
	}
	if cfg.DeleteBy != DeleteByNumber {
		t.Errorf("expected delete by number, got %q", cfg.DeleteBy)
	}
	if cfg.UploadFileName != defaultUploadFileName {
		t.Errorf("expected default upload file name, got %q", cfg.UploadFileName)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level, got %q", cfg.LogLevel)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "phonetrack.yaml")
	content := "server_url: http://file.local\ncache_key: fromFile\nrequest_timeout: 3s\nlog_level: debug\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	env := map[string]string{
		"PHONETRACK_CACHE_KEY":       "fromEnv",
		"PHONETRACK_REQUEST_TIMEOUT": "4s",
	}

	fs := pflag.NewFlagSet("phonetrack", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--request-timeout", "5s", "--delete-by", "id", "--refresh-interval", "1m"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := load(Source{File: file, Flags: fs}, envFrom(env))
	if err != nil {
		t.Fatalf("load returned unexpected error: %v", err)
	}

	if cfg.ServerURL != "http://file.local" {
		t.Errorf("expected server url from file, got %q", cfg.ServerURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level from file, got %q", cfg.LogLevel)
	}
	if cfg.CacheKey != "fromEnv" {
		t.Errorf("expected env to beat file, got %q", cfg.CacheKey)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("expected flag to beat env, got %v", cfg.RequestTimeout)
	}
	if cfg.DeleteBy != DeleteByID {
		t.Errorf("expected delete by id, got %q", cfg.DeleteBy)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Errorf("expected refresh interval 1m, got %v", cfg.RefreshInterval)
	}
	if cfg.ListenAddress != defaultListenAddress {
		t.Errorf("expected unset flag to keep default, got %q", cfg.ListenAddress)
	}
}

func TestLoadConfigFileFromEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte("server_url: https://tracker.example\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := load(Source{}, envFrom(map[string]string{"PHONETRACK_CONFIG": file}))
	if err != nil {
		t.Fatalf("load returned unexpected error: %v", err)
	}
	if cfg.ServerURL != "https://tracker.example" {
		t.Errorf("expected server url from env-selected file, got %q", cfg.ServerURL)
	}

	if _, err := load(Source{File: filepath.Join(dir, "missing.yaml")}, envFrom(nil)); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "relative server url",
			env:  map[string]string{"PHONETRACK_SERVER_URL": "localhost:8000"},
			want: "server url must be absolute",
		},
		{
			name: "bad delete key",
			env:  map[string]string{"PHONETRACK_SERVER_URL": "http://x", "PHONETRACK_DELETE_BY": "name"},
			want: "delete_by",
		},
		{
			name: "bad request timeout",
			env:  map[string]string{"PHONETRACK_SERVER_URL": "http://x", "PHONETRACK_REQUEST_TIMEOUT": "soon"},
			want: "invalid request timeout",
		},
		{
			name: "bad shutdown timeout",
			env:  map[string]string{"PHONETRACK_SERVER_URL": "http://x", "PHONETRACK_SHUTDOWN_TIMEOUT": "later"},
			want: "invalid shutdown timeout",
		},
		{
			name: "bad refresh interval",
			env:  map[string]string{"PHONETRACK_SERVER_URL": "http://x", "PHONETRACK_REFRESH_INTERVAL": "often"},
			want: "invalid refresh interval",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(Source{}, envFrom(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadNormalizesNonPositiveValues(t *testing.T) {
	env := map[string]string{
		"PHONETRACK_SERVER_URL":       "http://x",
		"PHONETRACK_REQUEST_TIMEOUT":  "0s",
		"PHONETRACK_SHUTDOWN_TIMEOUT": "-1s",
		"PHONETRACK_REFRESH_INTERVAL": "-5s",
	}

	cfg, err := load(Source{}, envFrom(env))
	if err != nil {
		t.Fatalf("load returned unexpected error: %v", err)
	}

	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Errorf("expected default request timeout %v, got %v", defaultRequestTimeout, cfg.RequestTimeout)
	}
	if cfg.ShutdownTimeout != defaultShutdownTimeout {
		t.Errorf("expected default shutdown timeout %v, got %v", defaultShutdownTimeout, cfg.ShutdownTimeout)
	}
	if cfg.RefreshInterval != 0 {
		t.Errorf("expected negative refresh interval to disable refresher, got %v", cfg.RefreshInterval)
	}
}
