package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

func encodeCmd() *cli.Command {
	var (
		showPieces bool
		asJSON     bool
	)

	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode text into token ids",
		ArgsUsage: "[text]",
		Flags: append(append(commonModelFlags(), loggingFlags()...),
			&cli.BoolFlag{
				Name:        "pieces",
				Aliases:     []string{"p"},
				Usage:       "print token pieces alongside ids",
				Destination: &showPieces,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print result as JSON",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			text, err := readTextArg(c, os.Stdin)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			tok, err := loadTokenizer(ctx, c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load tokenizer: %v", err), 1)
			}

			ids, err := tok.Encode(text)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: encode: %v", err), 1)
			}
			var pieces []string
			if showPieces || asJSON {
				pieces, err = tok.Tokenize(text)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: tokenize: %v", err), 1)
				}
			}

			if asJSON {
				out := map[string]any{
					"tokens": ids,
					"pieces": pieces,
					"count":  len(ids),
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			if showPieces {
				for i, id := range ids {
					piece := ""
					if i < len(pieces) {
						piece = pieces[i]
					}
					fmt.Printf("%8d  %q\n", id, piece)
				}
			} else {
				parts := make([]string, len(ids))
				for i, id := range ids {
					parts[i] = fmt.Sprintf("%d", id)
				}
				fmt.Println(strings.Join(parts, " "))
			}
			fmt.Fprintf(os.Stderr, "%d tokens\n", len(ids))
			return nil
		},
	}
}
