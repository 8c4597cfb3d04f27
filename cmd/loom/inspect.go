package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loom/internal/tokenizer"
)

func inspectCmd() *cli.Command {
	var sample string

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print tokenizer details for a model",
		Flags: append(append(commonModelFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "sample",
				Usage:       "text to round-trip through the tokenizer",
				Value:       "The quick brown fox",
				Destination: &sample,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			tok, err := loadTokenizer(ctx, c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load tokenizer: %v", err), 1)
			}

			fmt.Printf("kind:           %s\n", tok.Kind())
			fmt.Printf("chat template:  %s\n", supportLabel(tok.SupportsChatTemplate()))

			sp := tok.SpecialTokens()
			printSpecial("bos", sp.BOS)
			printSpecial("eos", sp.EOS)
			printSpecial("unk", sp.UNK)

			if sample != "" {
				ids, err := tok.Encode(sample)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: encode sample: %v", err), 1)
				}
				back, err := tok.Decode(ids)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: decode sample: %v", err), 1)
				}
				fmt.Printf("\nsample:         %q\n", sample)
				fmt.Printf("tokens:         %v\n", ids)
				fmt.Printf("round trip:     %q\n", back)
			}
			return nil
		},
	}
}

func supportLabel(ok bool) string {
	if ok {
		return "supported"
	}
	return "unsupported"
}

func printSpecial(name string, tok tokenizer.SpecialToken) {
	if tok.Text == "" && tok.ID < 0 {
		fmt.Printf("%s token:      (none)\n", name)
		return
	}
	fmt.Printf("%s token:      %q = %d\n", name, tok.Text, tok.ID)
}
