package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func listModelsCmd() *cli.Command {
	return &cli.Command{
		Name:    "list-models",
		Aliases: []string{"ls", "models"},
		Usage:   "List models with cached tokenizer artifacts",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "cache-dir",
				Usage:       "directory where fetched artifacts are cached",
				Destination: &cacheDir,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyModelConfig(c, cfg)
			log := newLogger()

			h, err := newHub(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			models, err := h.CachedModels()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if len(models) == 0 {
				log.Info("no cached models", "path", h.CacheDir())
				return nil
			}

			fmt.Printf("Models in %s:\n\n", h.CacheDir())
			for _, m := range models {
				fmt.Printf("  %-50s %s\n", m.ID, m.Kind)
			}
			fmt.Printf("\n%d model(s) found\n", len(models))
			return nil
		},
	}
}
