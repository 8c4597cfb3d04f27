package tokenizer

import (
	"errors"
	"fmt"
)

// ErrChatTemplateUnsupported reports that a tokenizer cannot render chat
// templates. Match with errors.Is.
var ErrChatTemplateUnsupported = errors.New("chat_template_unsupported")

// ErrMissingConfig reports that the tokenizer configuration document could
// not be found for a configurable tokenizer.
var ErrMissingConfig = errors.New("missing_tokenizer_config")

type chatTemplateError struct {
	msg string
}

func (e *chatTemplateError) Error() string { return e.msg }

func (e *chatTemplateError) Unwrap() error { return ErrChatTemplateUnsupported }

func newChatTemplateError(format string, args ...any) error {
	return &chatTemplateError{msg: fmt.Sprintf(format, args...)}
}
