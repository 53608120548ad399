package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB
	DefaultOCRLanguage   = "deu"
	DefaultOCRDPI        = 300
	DefaultOCRWorkers    = 2
	DefaultMinPageText   = 50
	DefaultWorkers       = 4
	DefaultFileTimeout   = 5 * time.Minute
	DefaultPreviewLength = 500
	DefaultOutputDirName = "import-output"

	MinOCRDPI = 72
	MaxOCRDPI = 1200

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "CASEFILE"
)

// Config holds all configuration for the case-file importer
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Directories
	InboxDirectory  string // bundles are read from here; MCP paths are confined to it
	OutputDirectory string // split documents, metadata and batch reports

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Pipeline
	MaxFileSize   int64 // Maximum bundle size in bytes
	MinPageText   int   // pages with fewer runes are sent to OCR
	PreviewLength int
	RulesFile     string // optional JSON rule set replacing the built-in table

	// OCR
	OCREnabled  bool
	OCRLanguage string
	OCRDPI      int
	OCRWorkers  int

	// Batch
	Workers     int
	FileTimeout time.Duration

	// Positional arguments left after flag parsing
	Inputs []string

	// Application configuration
	Version    string
	ServerName string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio, // Default to stdio mode for MCP compatibility
		Host:           DefaultHost,
		Port:           DefaultPort,
		InboxDirectory: currentDir,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		MaxFileSize:    DefaultMaxFileSize,
		MinPageText:    DefaultMinPageText,
		PreviewLength:  DefaultPreviewLength,
		OCREnabled:     true,
		OCRLanguage:    DefaultOCRLanguage,
		OCRDPI:         DefaultOCRDPI,
		OCRWorkers:     DefaultOCRWorkers,
		Workers:        DefaultWorkers,
		FileTimeout:    DefaultFileTimeout,
		Version:        "1.0.0",
		ServerName:     "mcp-casefile-import",
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.Inputs = pflag.Args()

	// Expand paths if needed
	if cfg.InboxDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.InboxDirectory); err == nil {
			cfg.InboxDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory == "" && cfg.InboxDirectory != "" {
		cfg.OutputDirectory = filepath.Join(cfg.InboxDirectory, DefaultOutputDirName)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// CASEFILE_OCR_LANG for --ocr-lang
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.InboxDirectory)
	viper.SetDefault("out", cfg.OutputDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("min-page-text", cfg.MinPageText)
	viper.SetDefault("preview-length", cfg.PreviewLength)
	viper.SetDefault("rules", cfg.RulesFile)
	viper.SetDefault("ocr", cfg.OCREnabled)
	viper.SetDefault("ocr-lang", cfg.OCRLanguage)
	viper.SetDefault("ocr-dpi", cfg.OCRDPI)
	viper.SetDefault("ocr-workers", cfg.OCRWorkers)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("file-timeout", cfg.FileTimeout)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.InboxDirectory, "Inbox directory containing case-file bundles")
	pflag.String("out", cfg.OutputDirectory, "Output directory (default <dir>/"+DefaultOutputDirName+")")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (text, json)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum bundle size in bytes")
	pflag.Int("min-page-text", cfg.MinPageText, "Pages with fewer characters of text are sent to OCR")
	pflag.Int("preview-length", cfg.PreviewLength, "Number of characters kept as document preview")
	pflag.String("rules", cfg.RulesFile, "JSON file with classification rules (default: built-in table)")
	pflag.Bool("ocr", cfg.OCREnabled, "Enable OCR fallback for scanned pages")
	pflag.String("ocr-lang", cfg.OCRLanguage, "Tesseract language")
	pflag.Int("ocr-dpi", cfg.OCRDPI, "Rasterisation resolution for OCR")
	pflag.Int("ocr-workers", cfg.OCRWorkers, "Maximum concurrent OCR jobs")
	pflag.Int("workers", cfg.Workers, "Bundles imported in parallel")
	pflag.Duration("file-timeout", cfg.FileTimeout, "Time limit per bundle")
}

var flagNames = []string{
	"mode", "host", "port", "dir", "out", "loglevel", "logformat", "maxfilesize",
	"min-page-text", "preview-length", "rules", "ocr", "ocr-lang", "ocr-dpi",
	"ocr-workers", "workers", "file-timeout",
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range flagNames {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nCase-file importer - splits law-firm case-file PDF bundles into classified documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/inbox                  # stdio mode with custom inbox\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/srv/inbox    # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --ocr=false --workers=8           # text layer only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_<FLAG>  any flag, upper case with '-' replaced by '_' (e.g. %s_OCR_LANG)\n",
			envPrefix, envPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.InboxDirectory = viper.GetString("dir")
	cfg.OutputDirectory = viper.GetString("out")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.MinPageText = viper.GetInt("min-page-text")
	cfg.PreviewLength = viper.GetInt("preview-length")
	cfg.RulesFile = viper.GetString("rules")
	cfg.OCREnabled = viper.GetBool("ocr")
	cfg.OCRLanguage = viper.GetString("ocr-lang")
	cfg.OCRDPI = viper.GetInt("ocr-dpi")
	cfg.OCRWorkers = viper.GetInt("ocr-workers")
	cfg.Workers = viper.GetInt("workers")
	cfg.FileTimeout = viper.GetDuration("file-timeout")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate inbox directory
	if c.InboxDirectory == "" {
		return errors.New("inbox directory cannot be empty")
	}

	// Check if inbox directory exists, create if it doesn't
	if _, err := os.Stat(c.InboxDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.InboxDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create inbox directory %s: %w", c.InboxDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access inbox directory %s: %w", c.InboxDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.MinPageText <= 0 {
		return errors.New("minimum page text must be positive")
	}
	if c.PreviewLength <= 0 {
		return errors.New("preview length must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.OCRWorkers <= 0 {
		return errors.New("OCR workers must be positive")
	}
	if c.FileTimeout <= 0 {
		return errors.New("file timeout must be positive")
	}
	if c.OCRDPI < MinOCRDPI || c.OCRDPI > MaxOCRDPI {
		return fmt.Errorf("OCR DPI must be between %d and %d", MinOCRDPI, MaxOCRDPI)
	}
	if c.OCREnabled && c.OCRLanguage == "" {
		return errors.New("OCR language cannot be empty")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.LogFormat)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, InboxDirectory: %s, OutputDirectory: %s, "+
		"LogLevel: %s, MaxFileSize: %d, OCR: %t, Workers: %d}",
		c.Mode, c.Host, c.Port, c.InboxDirectory, c.OutputDirectory,
		c.LogLevel, c.MaxFileSize, c.OCREnabled, c.Workers)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
