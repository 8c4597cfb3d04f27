package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loom/internal/api"
	"github.com/samcharles93/loom/internal/logger"
	"github.com/samcharles93/loom/internal/webui"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		noUI        bool
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the tokenizer REST API",
		Flags: append(append(commonModelFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.BoolFlag{
				Name:        "no-ui",
				Usage:       "disable the playground page",
				Destination: &noUI,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyServeConfig(c, cfg, &addr)
			log := newLogger()
			ctx = logger.WithContext(ctx, log)

			h, err := newHub(log)
			if err != nil {
				return err
			}

			defaultModel := modelRef
			if defaultModel == "" {
				defaultModel = cfg.DefaultModel
			}
			provider := api.NewCachedTokenizerProvider(api.ProviderConfig{
				DefaultModel: defaultModel,
				Fetcher:      h,
			})
			server := api.NewServer(provider, h)

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			if !noUI {
				e.GET("/", func(c *echo.Context) error {
					return c.Blob(http.StatusOK, "text/html; charset=utf-8", webui.Index())
				})
			}

			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
