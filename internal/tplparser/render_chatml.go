package tplparser

import (
	"fmt"
	"strings"
)

func renderChatML(opts RenderOptions) (string, bool, error) {
	var b strings.Builder

	if !opts.AddBOS && opts.BOSToken != "" {
		b.WriteString(opts.BOSToken)
	}

	msgs := opts.Messages
	var systemPrompt string
	if len(msgs) > 0 && strings.EqualFold(msgs[0].Role, "system") {
		text, err := contentText(msgs[0].Content)
		if err != nil {
			return "", false, fmt.Errorf("chatml: system content: %w", err)
		}
		systemPrompt = text
		msgs = msgs[1:]
	}

	if len(opts.Tools) > 0 {
		var toolParts []string
		for _, tool := range opts.Tools {
			if s, ok := tool.(string); ok {
				toolParts = append(toolParts, s)
				continue
			}
			j, err := jsonString(tool)
			if err != nil {
				return "", false, fmt.Errorf("chatml: tool tojson: %w", err)
			}
			toolParts = append(toolParts, j)
		}
		toolList := "List of tools: [" + strings.Join(toolParts, ", ") + "]"
		if systemPrompt == "" {
			systemPrompt = toolList
		} else {
			systemPrompt = systemPrompt + "\n" + toolList
		}
	}

	if systemPrompt != "" {
		b.WriteString("<|im_start|>system\n")
		b.WriteString(systemPrompt)
		b.WriteString("<|im_end|>\n")
	}

	lastAssistant := -1
	for i, m := range msgs {
		if m.Role == "assistant" {
			lastAssistant = i
		}
	}

	for i, m := range msgs {
		b.WriteString("<|im_start|>")
		b.WriteString(m.Role)
		b.WriteString("\n")

		text, err := contentText(m.Content)
		if err != nil {
			return "", false, fmt.Errorf("chatml: content tojson: %w", err)
		}
		if m.Role == "assistant" && !opts.KeepPastThinking && i != lastAssistant {
			if cut := strings.LastIndex(text, "</think>"); cut >= 0 {
				text = strings.TrimSpace(text[cut+len("</think>"):])
			}
		}
		b.WriteString(text)
		b.WriteString("<|im_end|>\n")
	}

	if opts.AddGenerationPrompt {
		b.WriteString("<|im_start|>assistant\n")
	}
	return b.String(), true, nil
}

// contentText flattens message content to a string; non-string content is
// serialized the way a template's tojson filter would.
func contentText(content any) (string, error) {
	if content == nil {
		return "", nil
	}
	if s, ok := asString(content); ok {
		return s, nil
	}
	if seq, ok := asSlice(content); ok {
		var b strings.Builder
		textOnly := true
		for _, item := range seq {
			m, ok := asMap(item)
			if !ok {
				textOnly = false
				break
			}
			if t, _ := asString(m["type"]); t != "text" {
				textOnly = false
				break
			}
			if txt, ok := asString(m["text"]); ok {
				b.WriteString(txt)
			}
		}
		if textOnly {
			return b.String(), nil
		}
	}
	return jsonString(content)
}
