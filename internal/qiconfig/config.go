// Package qiconfig loads qictl/qinet runtime configuration from
// layered sources: defaults, a YAML file, a .env file, process
// environment variables, then command-line flags, each layer
// overriding the last.
package qiconfig

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aldebaran/qimessaging/pkg/minilog"
)

// Config holds everything a qictl process needs to stand up an
// Endpoint and its ambient services.
type Config struct {
	// Listen is the address a "serve" invocation binds to (host:port).
	Listen string `yaml:"listen"`

	// ClientRequestCapacity bounds an Endpoint's client request channel
	// (spec.md §4.6.2).
	ClientRequestCapacity int `yaml:"client_request_capacity"`

	// LogLevel is one of debug/info/warn/error/fatal.
	LogLevel string `yaml:"log_level"`
	// LogFile, if set, additionally logs to this path.
	LogFile string `yaml:"log_file"`

	// DebugListen, if set, binds the HTTP debug surface (internal/qidebug).
	DebugListen string `yaml:"debug_listen"`
	// DebugRingSize is the number of log lines the /debug/log ring
	// buffer retains.
	DebugRingSize int `yaml:"debug_ring_size"`
}

// Default returns the configuration used when no layer overrides a
// field.
func Default() Config {
	return Config{
		Listen:                "127.0.0.1:9900",
		ClientRequestCapacity: 64,
		LogLevel:              "info",
		DebugListen:           "",
		DebugRingSize:         1024,
	}
}

// Load builds a Config by applying, in increasing priority: Default(),
// a YAML file at yamlPath (if non-empty and present), a .env file in
// the working directory (if present), the process environment, then
// flags parsed from args (program name excluded, matching flag.Parse
// convention). Flag parsing errors and YAML decode errors are
// returned; a missing optional file is not an error.
func Load(yamlPath string, args []string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		if err := mergeYAML(&cfg, yamlPath); err != nil {
			return Config{}, fmt.Errorf("qiconfig: loading %s: %w", yamlPath, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		minilog.Warn("qiconfig: .env: %v", err)
	}
	mergeEnv(&cfg)

	fs := flag.NewFlagSet("qictl", flag.ContinueOnError)
	listen := fs.String("listen", cfg.Listen, "address to listen on")
	capacity := fs.Int("client-request-capacity", cfg.ClientRequestCapacity, "bounded client request channel capacity")
	logLevel := fs.String("log-level", cfg.LogLevel, "debug|info|warn|error|fatal")
	logFile := fs.String("log-file", cfg.LogFile, "additionally log to this file")
	debugListen := fs.String("debug-listen", cfg.DebugListen, "address for the HTTP debug surface, empty disables it")
	debugRingSize := fs.Int("debug-ring-size", cfg.DebugRingSize, "lines retained by the /debug/log ring buffer")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Listen = *listen
	cfg.ClientRequestCapacity = *capacity
	cfg.LogLevel = *logLevel
	cfg.LogFile = *logFile
	cfg.DebugListen = *debugListen
	cfg.DebugRingSize = *debugRingSize

	return cfg, nil
}

func mergeYAML(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

func mergeEnv(cfg *Config) {
	if v, ok := os.LookupEnv("QI_LISTEN"); ok {
		cfg.Listen = v
	}
	if v, ok := os.LookupEnv("QI_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("QI_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := os.LookupEnv("QI_DEBUG_LISTEN"); ok {
		cfg.DebugListen = v
	}
}

// SetupLogging wires minilog per cfg: a stderr logger at cfg.LogLevel,
// optionally a file logger at the same level, following the teacher's
// own SetupStderr/SetupFile split between stdout-facing and persisted
// logs.
func SetupLogging(cfg Config) error {
	level, err := minilog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("qiconfig: %w", err)
	}
	minilog.SetupStderr(level)
	if cfg.LogFile != "" {
		if err := minilog.SetupFile(cfg.LogFile, level); err != nil {
			return fmt.Errorf("qiconfig: log file: %w", err)
		}
	}
	return nil
}
