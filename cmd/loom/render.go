package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loom/internal/tokenizer"
)

func renderCmd() *cli.Command {
	var (
		messagesFile string
		toolsFile    string
		system       string
		user         string
		noGenPrompt  bool
		showIDs      bool
	)

	return &cli.Command{
		Name:  "render",
		Usage: "Render a chat conversation through the model's chat template",
		Flags: append(append(commonModelFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "messages",
				Usage:       "path to a JSON file with the conversation",
				Destination: &messagesFile,
			},
			&cli.StringFlag{
				Name:        "tools",
				Usage:       "path to a JSON file with tool definitions",
				Destination: &toolsFile,
			},
			&cli.StringFlag{
				Name:        "system",
				Aliases:     []string{"sys"},
				Usage:       "system prompt for a quick one-turn conversation",
				Destination: &system,
			},
			&cli.StringFlag{
				Name:        "user",
				Aliases:     []string{"u"},
				Usage:       "user message for a quick one-turn conversation",
				Destination: &user,
			},
			&cli.BoolFlag{
				Name:        "no-generation-prompt",
				Usage:       "do not append the assistant turn opener",
				Destination: &noGenPrompt,
			},
			&cli.BoolFlag{
				Name:        "ids",
				Usage:       "print token ids instead of the decoded rendering",
				Destination: &showIDs,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			var messages []tokenizer.Message
			switch {
			case messagesFile != "":
				var err error
				messages, err = tokenizer.LoadMessagesJSON(messagesFile)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
			case user != "":
				if system != "" {
					messages = append(messages, tokenizer.Message{Role: "system", Content: system})
				}
				messages = append(messages, tokenizer.Message{Role: "user", Content: user})
			default:
				return cli.Exit("error: --messages or --user is required", 1)
			}

			var tools []any
			if toolsFile != "" {
				var err error
				tools, err = tokenizer.LoadToolsJSON(toolsFile)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
			}

			tok, err := loadTokenizer(ctx, c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load tokenizer: %v", err), 1)
			}

			ids, err := tok.ApplyChatTemplate(messages, tokenizer.TemplateOptions{
				AddGenerationPrompt: !noGenPrompt,
				Tools:               tools,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: render: %v", err), 1)
			}

			if showIDs {
				parts := make([]string, len(ids))
				for i, id := range ids {
					parts[i] = fmt.Sprintf("%d", id)
				}
				fmt.Println(strings.Join(parts, " "))
			} else {
				text, err := tok.Decode(ids)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: decode rendering: %v", err), 1)
				}
				fmt.Println(text)
			}
			fmt.Fprintf(os.Stderr, "%d tokens\n", len(ids))
			return nil
		},
	}
}
