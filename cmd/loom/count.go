package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkoukk/tiktoken-go"
	"github.com/urfave/cli/v3"
)

func countCmd() *cli.Command {
	var (
		encodingName string
		openaiModel  string
	)

	return &cli.Command{
		Name:      "count",
		Usage:     "Count tokens with a tiktoken encoding, or with a resolved model tokenizer",
		ArgsUsage: "[text]",
		Flags: append(append(commonModelFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "encoding",
				Aliases:     []string{"e"},
				Usage:       "tiktoken encoding (cl100k_base, o200k_base, p50k_base, r50k_base)",
				Value:       "cl100k_base",
				Destination: &encodingName,
			},
			&cli.StringFlag{
				Name:        "openai-model",
				Usage:       "pick the encoding by OpenAI model name instead (gpt-4o, gpt-4, ...)",
				Destination: &openaiModel,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			if cfg.CountEncoding != "" && !c.IsSet("encoding") && !c.IsSet("e") {
				encodingName = cfg.CountEncoding
			}

			text, err := readTextArg(c, os.Stdin)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if modelRef != "" {
				tok, err := loadTokenizer(ctx, c)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: load tokenizer: %v", err), 1)
				}
				ids, err := tok.Encode(text)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: encode: %v", err), 1)
				}
				fmt.Println(len(ids))
				return nil
			}

			var enc *tiktoken.Tiktoken
			if openaiModel != "" {
				enc, err = tiktoken.EncodingForModel(openaiModel)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: load encoding for model %q: %v", openaiModel, err), 1)
				}
			} else {
				enc, err = tiktoken.GetEncoding(encodingName)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: load encoding %q: %v", encodingName, err), 1)
				}
			}

			tokens := enc.Encode(text, nil, nil)
			fmt.Println(len(tokens))
			return nil
		},
	}
}
