package matcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"dialogdetective/internal/catalog"
)

// commandFunc runs an external command with the prompt on stdin and returns
// its stdout. Injectable for tests.
type commandFunc func(ctx context.Context, name string, args []string, stdin string) (string, error)

// cliBackend is the shared shape of the claude and gemini backends: build a
// prompt, pipe it to a CLI, parse the reply.
type cliBackend struct {
	id                 string
	binary             string
	model              string
	args               []string
	timeout            time.Duration
	maxTranscriptChars int
	runner             commandFunc
}

func (b *cliBackend) ID() string {
	return b.id
}

func (b *cliBackend) Model() string {
	if b.model == "" {
		return "default"
	}
	return b.model
}

func (b *cliBackend) Invoke(ctx context.Context, transcript string, candidates []catalog.Episode) (Reference, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(transcript, candidates, b.maxTranscriptChars)
	output, err := b.run(ctx, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Reference{}, &BackendError{Backend: b.id, Kind: FailureTimeout, Err: err}
		}
		return Reference{}, &BackendError{Backend: b.id, Kind: FailureProcess, Err: err}
	}

	ref, err := ParseResponse(output)
	if err != nil {
		return Reference{}, &BackendError{Backend: b.id, Kind: FailureMalformed, Err: err}
	}
	return ref, nil
}

func (b *cliBackend) run(ctx context.Context, prompt string) (string, error) {
	if b.runner != nil {
		return b.runner(ctx, b.binary, b.args, prompt)
	}
	cmd := exec.CommandContext(ctx, b.binary, b.args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("%s: %w: %s", b.binary, err, detail)
	}
	return stdout.String(), nil
}
