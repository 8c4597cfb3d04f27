package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loom/internal/tokenizer"
)

func shellCmd() *cli.Command {
	var showPieces bool

	return &cli.Command{
		Name:  "shell",
		Usage: "Interactive tokenizer shell",
		Flags: append(append(commonModelFlags(), loggingFlags()...),
			&cli.BoolFlag{
				Name:        "pieces",
				Aliases:     []string{"p"},
				Usage:       "print token pieces alongside ids",
				Value:       true,
				Destination: &showPieces,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			tok, err := loadTokenizer(ctx, c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load tokenizer: %v", err), 1)
			}

			fmt.Printf("loom shell (%s tokenizer). Type text to encode, /help for commands.\n", tok.Kind())
			for {
				line, err := readInteractiveLine("> ")
				if err != nil {
					if errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if strings.HasPrefix(line, "/") {
					done, err := runShellCommand(tok, line, &showPieces)
					if err != nil {
						fmt.Printf("error: %v\n", err)
					}
					if done {
						return nil
					}
					continue
				}

				ids, err := tok.Encode(line)
				if err != nil {
					fmt.Printf("error: encode: %v\n", err)
					continue
				}
				printIDs(tok, ids, showPieces, line)
			}
		},
	}
}

func runShellCommand(tok tokenizer.Tokenizer, line string, showPieces *bool) (done bool, err error) {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit", "/q", "/exit":
		return true, nil
	case "/help", "/h":
		fmt.Println("  <text>          encode text")
		fmt.Println("  /decode id ...  decode token ids")
		fmt.Println("  /pieces         toggle piece display")
		fmt.Println("  /inspect        tokenizer details")
		fmt.Println("  /exit           quit the shell")
		return false, nil
	case "/pieces":
		*showPieces = !*showPieces
		fmt.Printf("pieces: %v\n", *showPieces)
		return false, nil
	case "/inspect", "/info":
		sp := tok.SpecialTokens()
		fmt.Printf("kind=%s chat-template=%s\n", tok.Kind(), supportLabel(tok.SupportsChatTemplate()))
		printSpecial("bos", sp.BOS)
		printSpecial("eos", sp.EOS)
		printSpecial("unk", sp.UNK)
		return false, nil
	case "/decode":
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return false, errors.New("usage: /decode id [id ...]")
		}
		ids := make([]int32, 0, len(fields))
		for _, f := range fields {
			var id int32
			if _, err := fmt.Sscanf(f, "%d", &id); err != nil {
				return false, fmt.Errorf("invalid token id %q", f)
			}
			ids = append(ids, id)
		}
		text, err := tok.Decode(ids)
		if err != nil {
			return false, err
		}
		fmt.Printf("%q\n", text)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %s", cmd)
	}
}

func printIDs(tok tokenizer.Tokenizer, ids []int32, showPieces bool, text string) {
	if showPieces {
		pieces, err := tok.Tokenize(text)
		if err == nil {
			for i, id := range ids {
				piece := ""
				if i < len(pieces) {
					piece = pieces[i]
				}
				fmt.Printf("%8d  %q\n", id, piece)
			}
			fmt.Printf("%d tokens\n", len(ids))
			return
		}
		fmt.Printf("warning: tokenize: %v\n", err)
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	fmt.Printf("%s\n%d tokens\n", strings.Join(parts, " "), len(ids))
}
