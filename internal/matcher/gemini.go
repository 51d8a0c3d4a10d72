package matcher

import "time"

// GeminiBackend matches episodes through the gemini CLI, prompt on stdin.
type GeminiBackend struct {
	cliBackend
}

var _ Backend = (*GeminiBackend)(nil)

// NewGeminiBackend builds a gemini-backed matcher. model may be empty to use
// the CLI's configured default.
func NewGeminiBackend(model string, timeout time.Duration, maxTranscriptChars int) *GeminiBackend {
	var args []string
	if model != "" {
		args = append(args, "-m", model)
	}
	return &GeminiBackend{cliBackend{
		id:                 "gemini",
		binary:             "gemini",
		model:              model,
		args:               args,
		timeout:            timeout,
		maxTranscriptChars: maxTranscriptChars,
	}}
}

// WithCommandRunner sets a custom command runner (for testing).
func (b *GeminiBackend) WithCommandRunner(runner commandFunc) {
	b.runner = runner
}
