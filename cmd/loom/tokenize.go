package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func tokenizeCmd() *cli.Command {
	return &cli.Command{
		Name:      "tokenize",
		Usage:     "Print the token pieces of a text",
		ArgsUsage: "[text]",
		Flags:     append(commonModelFlags(), loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			text, err := readTextArg(c, os.Stdin)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			tok, err := loadTokenizer(ctx, c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load tokenizer: %v", err), 1)
			}

			pieces, err := tok.Tokenize(text)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: tokenize: %v", err), 1)
			}
			for _, piece := range pieces {
				fmt.Printf("%q\n", piece)
			}
			fmt.Fprintf(os.Stderr, "%d tokens\n", len(pieces))
			return nil
		},
	}
}
