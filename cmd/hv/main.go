package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hugo-vanthournhout/hv-cli/internal/cli"
	"github.com/hugo-vanthournhout/hv-cli/internal/config"
	"github.com/hugo-vanthournhout/hv-cli/internal/core"
	"github.com/hugo-vanthournhout/hv-cli/internal/history"
	"github.com/hugo-vanthournhout/hv-cli/internal/styles"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var BUILD_VERSION = "dev"

func main() {
	if err := cli.LoadEnvFile(core.EnvFile()); err != nil {
		fmt.Fprintln(os.Stderr, styles.WARNING(err.Error()))
	}

	cfg, configErrors := loadConfig()

	logger, err := initializeLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new hv session --------", zap.Any("args", os.Args))
	for _, e := range configErrors {
		fmt.Fprintln(os.Stderr, styles.WARNING("config: "+e.Error()))
	}

	app := &cli.App{
		Config:  cfg,
		Logger:  logger,
		Version: BUILD_VERSION,
		HomeDir: core.HomeDir(),
	}

	historyManager, err := initializeHistoryManager()
	if err != nil {
		logger.Warn("export history disabled", zap.Error(err))
	} else {
		app.History = historyManager
		defer historyManager.Close()
	}

	if err := cli.Execute(context.Background(), app, os.Args[1:]); err != nil {
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, styles.ERROR("Error: "+err.Error()))
		logger.Sync()
		os.Exit(1)
	}
}

// loadConfig reads the configuration file. Problems never stop hv: the
// returned config falls back to defaults and the problems are returned for
// display.
func loadConfig() (*config.Config, []error) {
	loader := config.NewLoader(zap.NewNop())
	result, err := loader.LoadFromFile(core.ConfigFile())
	if err != nil {
		return config.DefaultConfig(), []error{err}
	}
	return result.Config, result.Errors
}

// logLevel picks HV_LOG_LEVEL over the configured level. Dev builds always
// log at debug level.
func logLevel(configured string) zap.AtomicLevel {
	if BUILD_VERSION == "dev" {
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	for _, candidate := range []string{os.Getenv("HV_LOG_LEVEL"), configured} {
		if candidate == "" {
			continue
		}
		if level, err := zapcore.ParseLevel(candidate); err == nil {
			return zap.NewAtomicLevelAt(level)
		}
	}
	return zap.NewAtomicLevelAt(zap.InfoLevel)
}

func initializeLogger(configuredLevel string) (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel(configuredLevel)
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	// Use `tail -f ~/.hv/hv.log` to follow logs while a command runs
	return loggerConfig.Build()
}

func initializeHistoryManager() (*history.HistoryManager, error) {
	return history.NewHistoryManager(core.HistoryFile())
}
