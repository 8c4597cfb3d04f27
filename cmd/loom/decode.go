package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
)

func decodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode token ids back into text",
		ArgsUsage: "id [id ...]",
		Flags:     append(commonModelFlags(), loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			raw := c.Args().Slice()
			if len(raw) == 0 {
				text, err := readTextArg(c, os.Stdin)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				raw = strings.Fields(text)
			}
			if len(raw) == 0 {
				return cli.Exit("error: no token ids given", 1)
			}

			ids := make([]int32, 0, len(raw))
			for _, tokenArg := range raw {
				for _, field := range strings.FieldsFunc(tokenArg, func(r rune) bool {
					return r == ',' || r == ' '
				}) {
					id, err := strconv.ParseInt(field, 10, 32)
					if err != nil {
						return cli.Exit(fmt.Sprintf("error: invalid token id %q", field), 1)
					}
					ids = append(ids, int32(id))
				}
			}

			tok, err := loadTokenizer(ctx, c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load tokenizer: %v", err), 1)
			}

			text, err := tok.Decode(ids)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: decode: %v", err), 1)
			}
			fmt.Println(text)
			return nil
		},
	}
}
