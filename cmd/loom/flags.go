package main

import (
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loom/internal/hub"
	"github.com/samcharles93/loom/internal/logger"
)

var (
	modelRef  string
	cacheDir  string
	hubURL    string
	logLevel  string
	logFormat string
	debug     bool
)

func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "model reference: hub id (org/name), id@tokenizer-id, or a local directory",
			Destination: &modelRef,
		},
		&cli.StringFlag{
			Name:        "cache-dir",
			Usage:       "directory where fetched artifacts are cached",
			Destination: &cacheDir,
		},
		&cli.StringFlag{
			Name:        "hub-url",
			Usage:       "artifact host base URL",
			Destination: &hubURL,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func newLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	if logFormat == "json" {
		return logger.JSON(os.Stderr, level)
	}
	return logger.Pretty(os.Stderr, level)
}

func newHub(log logger.Logger) (*hub.Hub, error) {
	return hub.New(hub.Options{
		BaseURL:  hubURL,
		CacheDir: cacheDir,
		Logger:   log,
	})
}
