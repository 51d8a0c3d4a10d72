package matcher

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"dialogdetective/internal/catalog"
)

// BuildPrompt renders the instruction given to a backend. The candidate list
// enumerates every episode the backend is allowed to answer with, and the
// response contract pins the output to a single JSON object.
func BuildPrompt(transcript string, candidates []catalog.Episode, maxTranscriptChars int) string {
	var builder strings.Builder
	builder.WriteString("You are identifying which TV episode a dialog transcript comes from.\n\n")
	builder.WriteString("Candidate episodes (you MUST pick exactly one of these):\n")
	for _, ep := range candidates {
		builder.WriteString(fmt.Sprintf("- %s: %s", ep.Ref(), ep.Title))
		if ep.Summary != "" {
			builder.WriteString(" — ")
			builder.WriteString(ep.Summary)
		}
		builder.WriteByte('\n')
	}
	builder.WriteString("\nTranscript:\n")
	builder.WriteString(truncateTranscript(transcript, maxTranscriptChars))
	builder.WriteString("\n\nRespond with ONLY a JSON object in this exact format, nothing else:\n")
	builder.WriteString("```json\n{\"season\": XX, \"episode\": YY, \"evidence\": \"one sentence naming the dialog that identifies the episode\"}\n```\n")
	return builder.String()
}

// truncateTranscript caps the transcript at limit bytes, cutting on a word
// boundary so the tail is not mid-token garbage. Without a usable word
// boundary it still never splits a UTF-8 sequence. A limit of zero or less
// means no cap.
func truncateTranscript(transcript string, limit int) string {
	if limit <= 0 || len(transcript) <= limit {
		return transcript
	}
	cut := transcript[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		return cut[:idx]
	}
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size != 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}
