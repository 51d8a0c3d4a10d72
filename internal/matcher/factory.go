package matcher

import (
	"fmt"
	"strings"
	"time"

	"dialogdetective/internal/services"
)

// New builds the backend named by the configuration.
func New(backend, model string, timeout time.Duration, maxTranscriptChars int) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "claude":
		return NewClaudeBackend(model, timeout, maxTranscriptChars), nil
	case "gemini":
		return NewGeminiBackend(model, timeout, maxTranscriptChars), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "matcher", "new",
			fmt.Sprintf("unknown backend %q (expected claude or gemini)", backend), nil)
	}
}
