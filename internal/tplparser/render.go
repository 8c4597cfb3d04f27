// Package tplparser renders chat conversations into prompt text for the
// template dialects it recognizes. Templates are matched by signature, not
// executed: this is not a Jinja engine, and unfamiliar templates report
// ok=false so callers can refuse instead of producing a wrong prompt.
package tplparser

import "strings"

// Render returns (output, ok). ok=false means the template is unsupported.
func Render(opts RenderOptions) (string, bool, error) {
	switch {
	case isChatMLTemplate(opts.Template):
		return renderChatML(opts)
	case isInstTemplate(opts.Template):
		return renderInst(opts)
	default:
		return "", false, nil
	}
}

// Supported reports whether Render recognizes the template.
func Supported(template string) bool {
	return isChatMLTemplate(template) || isInstTemplate(template)
}

func isChatMLTemplate(tpl string) bool {
	return strings.Contains(tpl, "<|im_start|>") && strings.Contains(tpl, "<|im_end|>")
}

func isInstTemplate(tpl string) bool {
	return strings.Contains(tpl, "[INST]")
}
