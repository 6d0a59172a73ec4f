// Package config loads the tool configuration: defaults, then an optional
// .resumedb/config.yaml, then RESUMEDB_* environment variables, each layer
// overriding the last.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

// Config is the resolved tool configuration.
type Config struct {
	// StorePath is the SQLite store file.
	StorePath string `mapstructure:"store_path" yaml:"store_path"`
	// DefaultLanguage is assigned to documents with no language of their
	// own.
	DefaultLanguage string `mapstructure:"default_language" yaml:"default_language"`
	// BackupDir receives migration backups; empty means alongside the
	// store.
	BackupDir string `mapstructure:"backup_dir" yaml:"backup_dir"`
	// LogFile is the rotating operation log; empty disables file logging.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
	// WatchDebounceMS is the watch-mode debounce window in milliseconds.
	WatchDebounceMS int `mapstructure:"watch_debounce_ms" yaml:"watch_debounce_ms"`
}

// Defaults is the zero-configuration setup: everything under .resumedb in
// the working directory.
func Defaults() Config {
	return Config{
		StorePath:       filepath.Join(".resumedb", "resumes.db"),
		DefaultLanguage: "en",
		LogFile:         filepath.Join(".resumedb", "resumedb.log"),
		WatchDebounceMS: 500,
	}
}

// Load resolves the configuration. explicitPath, when non-empty, names a
// config file that must exist; otherwise .resumedb/config.yaml is used when
// present and silently skipped when not.
func Load(explicitPath string) (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("store_path", d.StorePath)
	v.SetDefault("default_language", d.DefaultLanguage)
	v.SetDefault("backup_dir", d.BackupDir)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("watch_debounce_ms", d.WatchDebounceMS)

	v.SetEnvPrefix("RESUMEDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", explicitPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".resumedb")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// WriteStarter writes a commented starter config, refusing to overwrite an
// existing one.
func WriteStarter(path string, cfg Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	content := "# resumedb configuration. Every key can be overridden with a\n" +
		"# RESUMEDB_<KEY> environment variable.\n" + string(body)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// NewLogger builds the operation logger backed by a size-rotated file.
// Returns a quiet logger when file logging is disabled.
func NewLogger(cfg Config) *log.Logger {
	if cfg.LogFile == "" {
		l := log.New(os.Stderr, "", 0)
		l.SetOutput(nopWriter{})
		return l
	}
	sink := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return log.New(sink, "", log.LstdFlags)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
