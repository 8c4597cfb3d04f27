package tokenizer

import "github.com/samcharles93/loom/internal/tplparser"

// Message represents one chat turn handed to ApplyChatTemplate.
// Content may be a string or a slice of typed blocks depending on the
// template dialect.
type Message = tplparser.Message

type ToolCall = tplparser.ToolCall

type ToolCallFunction = tplparser.ToolCallFunction

// TemplateOptions controls chat-template rendering.
type TemplateOptions struct {
	// AddGenerationPrompt appends the assistant turn opener so the model
	// continues the conversation.
	AddGenerationPrompt bool
	Tools               []any
}

// MessageText returns the content if it is a string.
func MessageText(msg Message) (string, bool) {
	if msg.Content == nil {
		return "", false
	}
	text, ok := msg.Content.(string)
	return text, ok
}
