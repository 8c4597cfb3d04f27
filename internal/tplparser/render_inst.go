package tplparser

import (
	"fmt"
	"strings"
)

func renderInst(opts RenderOptions) (string, bool, error) {
	if len(opts.Tools) > 0 {
		return "", false, fmt.Errorf("inst: tools are not supported")
	}

	var b strings.Builder
	if !opts.AddBOS && opts.BOSToken != "" {
		b.WriteString(opts.BOSToken)
	}

	msgs := opts.Messages
	var system string
	if len(msgs) > 0 && strings.EqualFold(msgs[0].Role, "system") {
		text, err := contentText(msgs[0].Content)
		if err != nil {
			return "", false, fmt.Errorf("inst: system content: %w", err)
		}
		system = text
		msgs = msgs[1:]
	}

	if err := validateInstAlternation(msgs); err != nil {
		return "", false, err
	}

	firstUser := true
	for _, m := range msgs {
		text, err := contentText(m.Content)
		if err != nil {
			return "", false, fmt.Errorf("inst: content: %w", err)
		}
		switch m.Role {
		case "user":
			b.WriteString("[INST] ")
			if firstUser && system != "" {
				b.WriteString("<<SYS>>\n")
				b.WriteString(system)
				b.WriteString("\n<</SYS>>\n\n")
			}
			firstUser = false
			b.WriteString(text)
			b.WriteString(" [/INST]")
		case "assistant":
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(text))
			if opts.EOSToken != "" {
				b.WriteString(opts.EOSToken)
			}
		default:
			return "", false, fmt.Errorf("inst: unsupported role %q", m.Role)
		}
	}

	return b.String(), true, nil
}

func validateInstAlternation(msgs []Message) error {
	for i, m := range msgs {
		expectUser := i%2 == 0
		if (m.Role == "user") != expectUser {
			return fmt.Errorf("inst: messages must alternate user/assistant roles")
		}
	}
	return nil
}
