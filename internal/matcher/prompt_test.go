package matcher

import (
	"strings"
	"testing"
	"unicode/utf8"

	"dialogdetective/internal/catalog"
)

func promptCandidates() []catalog.Episode {
	return []catalog.Episode{
		{Season: 1, Episode: 1, Title: "Pilot", Summary: "It begins."},
		{Season: 1, Episode: 2, Title: "Second"},
	}
}

func TestBuildPromptListsCandidates(t *testing.T) {
	prompt := BuildPrompt("some dialog", promptCandidates(), 0)
	for _, fragment := range []string{"S01E01: Pilot", "It begins.", "S01E02: Second", "some dialog"} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
}

func TestBuildPromptStatesResponseContract(t *testing.T) {
	prompt := BuildPrompt("d", promptCandidates(), 0)
	if !strings.Contains(prompt, `"season": XX, "episode": YY`) {
		t.Fatalf("prompt missing response contract:\n%s", prompt)
	}
	if !strings.Contains(prompt, "```json") {
		t.Fatalf("prompt missing fence instruction:\n%s", prompt)
	}
}

func TestBuildPromptTruncatesTranscript(t *testing.T) {
	long := strings.Repeat("word ", 100)
	prompt := BuildPrompt(long, promptCandidates(), 50)
	if strings.Contains(prompt, long) {
		t.Fatal("transcript not truncated")
	}
}

func TestTruncateTranscript(t *testing.T) {
	if got := truncateTranscript("short", 100); got != "short" {
		t.Fatalf("under-limit transcript changed: %q", got)
	}
	got := truncateTranscript("alpha beta gamma delta", 17)
	if len(got) > 17 {
		t.Fatalf("truncation exceeded limit: %q", got)
	}
	if strings.HasSuffix(got, " ") || !strings.HasSuffix(got, "gamma") {
		t.Fatalf("expected word-boundary cut, got %q", got)
	}
	if got := truncateTranscript("anything", 0); got != "anything" {
		t.Fatalf("zero limit should disable truncation, got %q", got)
	}
}

func TestTruncateTranscriptNeverSplitsRunes(t *testing.T) {
	// No space in the first half, so the cut cannot land on a word
	// boundary and must back off the partial rune instead.
	transcript := strings.Repeat("é", 20)
	for limit := 1; limit < len(transcript); limit++ {
		got := truncateTranscript(transcript, limit)
		if len(got) > limit {
			t.Fatalf("limit %d exceeded: %d bytes", limit, len(got))
		}
		if !utf8.ValidString(got) {
			t.Fatalf("limit %d produced invalid UTF-8: %q", limit, got)
		}
	}
}
