package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.InboxDirectory = t.TempDir()
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != ModeStdio {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}
	if cfg.ServerName != "mcp-casefile-import" {
		t.Errorf("Expected default server name to be 'mcp-casefile-import', got '%s'", cfg.ServerName)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("Expected info/text logging, got '%s'/'%s'", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}
	if cfg.MinPageText != 50 || cfg.PreviewLength != 500 {
		t.Errorf("Expected min page text 50 and preview 500, got %d and %d", cfg.MinPageText, cfg.PreviewLength)
	}
	if cfg.Workers != 4 || cfg.OCRWorkers != 2 {
		t.Errorf("Expected 4 workers and 2 OCR workers, got %d and %d", cfg.Workers, cfg.OCRWorkers)
	}

	currentDir, _ := os.Getwd()
	if cfg.InboxDirectory != currentDir {
		t.Errorf("Expected default inbox directory to be '%s', got '%s'", currentDir, cfg.InboxDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid stdio config", modify: func(*Config) {}},
		{name: "valid server config", modify: func(c *Config) { c.Mode = ModeServer }},
		{name: "port ignored in stdio mode", modify: func(c *Config) { c.Port = 0 }},
		{name: "OCR language not needed without OCR", modify: func(c *Config) { c.OCREnabled = false; c.OCRLanguage = "" }},
		{name: "invalid mode", modify: func(c *Config) { c.Mode = "http" }, wantErr: "mode must be"},
		{name: "invalid port", modify: func(c *Config) { c.Mode = ModeServer; c.Port = 70000 }, wantErr: "port must be"},
		{name: "empty directory", modify: func(c *Config) { c.InboxDirectory = "" }, wantErr: "inbox directory cannot be empty"},
		{name: "zero file size", modify: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "maximum file size"},
		{name: "zero min page text", modify: func(c *Config) { c.MinPageText = 0 }, wantErr: "minimum page text"},
		{name: "zero preview", modify: func(c *Config) { c.PreviewLength = 0 }, wantErr: "preview length"},
		{name: "zero OCR workers", modify: func(c *Config) { c.OCRWorkers = 0 }, wantErr: "OCR workers"},
		{name: "zero timeout", modify: func(c *Config) { c.FileTimeout = 0 }, wantErr: "file timeout"},
		{name: "dpi too high", modify: func(c *Config) { c.OCRDPI = 2400 }, wantErr: "OCR DPI"},
		{name: "empty OCR language", modify: func(c *Config) { c.OCRLanguage = "" }, wantErr: "OCR language"},
		{name: "bad log format", modify: func(c *Config) { c.LogFormat = "logfmt" }, wantErr: "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Config.Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Config.Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateDirectoryCreation(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "inbox", "2024")

	cfg := validConfig(t)
	cfg.InboxDirectory = missing

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() unexpected error = %v", err)
	}
	if info, err := os.Stat(missing); err != nil || !info.IsDir() {
		t.Errorf("Expected inbox directory to be created: %v", err)
	}
}

func TestConfigValidateLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig(t)
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("Config.Validate() with log level '%s' should be valid, got error: %v", level, err)
		}
	}

	for _, level := range []string{"DEBUG", "trace", "fatal", ""} {
		cfg := validConfig(t)
		cfg.LogLevel = level
		if err := cfg.Validate(); err == nil {
			t.Errorf("Config.Validate() with log level '%s' should be invalid", level)
		}
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 9090}
	if got := cfg.Address(); got != "localhost:9090" {
		t.Errorf("Config.Address() = %v, want localhost:9090", got)
	}
}

func TestConfigModes(t *testing.T) {
	cfg := &Config{Mode: ModeServer}
	if !cfg.IsServerMode() || cfg.IsStdioMode() {
		t.Error("Expected server mode")
	}
	cfg.Mode = ModeStdio
	if cfg.IsServerMode() || !cfg.IsStdioMode() {
		t.Error("Expected stdio mode")
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:            ModeServer,
		Host:            "0.0.0.0",
		Port:            8080,
		InboxDirectory:  "/srv/inbox",
		OutputDirectory: "/srv/out",
		LogLevel:        "debug",
		MaxFileSize:     1024,
		OCREnabled:      true,
		Workers:         4,
		FileTimeout:     time.Minute,
	}

	got := cfg.String()
	for _, want := range []string{"Mode: server", "InboxDirectory: /srv/inbox", "OCR: true", "Workers: 4"} {
		if !strings.Contains(got, want) {
			t.Errorf("Config.String() = %v, missing %q", got, want)
		}
	}
}
