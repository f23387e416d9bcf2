package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of a configuration file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatForPath picks the format from the file extension. Anything that is
// not .toml is read as YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Loader handles loading and parsing of hv configuration files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *Config
	Errors []error
}

// LoadFromFile loads configuration from path.
// Returns the configuration and any non-fatal errors encountered.
// If the file doesn't exist, returns default configuration with no error.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("no config file, using defaults", zap.String("path", path))
			return &LoadResult{Config: DefaultConfig(), Errors: []error{}}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.LoadFromBytes(content, FormatForPath(path))
}

// LoadFromBytes decodes source on top of the defaults. Decode and validation
// problems are reported in LoadResult.Errors; the affected values keep their
// defaults.
func (l *Loader) LoadFromBytes(source []byte, format Format) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}

	if len(bytes.TrimSpace(source)) == 0 {
		return result, nil
	}

	decoded := DefaultConfig()
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(source), decoded)
	case FormatYAML:
		err = yaml.Unmarshal(source, decoded)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("parse error: %w", err))
		// Continue with defaults on parse errors
		return result, nil
	}

	result.Config = decoded
	l.validate(result)
	return result, nil
}

// validate resets invalid values to their defaults and records why.
func (l *Loader) validate(result *LoadResult) {
	defaults := DefaultConfig()
	cfg := result.Config

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("log_level: %w", err))
		cfg.LogLevel = defaults.LogLevel
	}

	switch cfg.AI.Assistant.Mode {
	case AssistantModeClipboard, AssistantModeCommand, AssistantModeOpenAI:
	case "":
		cfg.AI.Assistant.Mode = defaults.AI.Assistant.Mode
	default:
		result.Errors = append(result.Errors, fmt.Errorf("ai.assistant.mode: unknown mode %q", cfg.AI.Assistant.Mode))
		cfg.AI.Assistant.Mode = defaults.AI.Assistant.Mode
	}

	if cfg.AI.OutputFile == "" {
		cfg.AI.OutputFile = defaults.AI.OutputFile
	}

	for _, err := range result.Errors {
		l.logger.Warn("invalid configuration value", zap.Error(err))
	}
}
