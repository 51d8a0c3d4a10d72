package matcher

import "time"

// ClaudeBackend matches episodes through the claude CLI. The prompt goes to
// stdin and `-p --output-format text` keeps the reply to plain text.
type ClaudeBackend struct {
	cliBackend
}

var _ Backend = (*ClaudeBackend)(nil)

// NewClaudeBackend builds a claude-backed matcher. model may be empty to use
// the CLI's configured default.
func NewClaudeBackend(model string, timeout time.Duration, maxTranscriptChars int) *ClaudeBackend {
	args := []string{"-p", "--output-format", "text"}
	if model != "" {
		args = append(args, "--model", model)
	}
	return &ClaudeBackend{cliBackend{
		id:                 "claude",
		binary:             "claude",
		model:              model,
		args:               args,
		timeout:            timeout,
		maxTranscriptChars: maxTranscriptChars,
	}}
}

// WithCommandRunner sets a custom command runner (for testing).
func (b *ClaudeBackend) WithCommandRunner(runner commandFunc) {
	b.runner = runner
}
