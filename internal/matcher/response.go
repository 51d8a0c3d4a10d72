package matcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseResponse extracts the proposed reference from raw backend output.
// Output wrapped in code fences or surrounded by prose is tolerated; the
// reference itself must be a JSON object with integer season and episode.
func ParseResponse(output string) (Reference, error) {
	var payload struct {
		Season   json.Number `json:"season"`
		Episode  json.Number `json:"episode"`
		Evidence string      `json:"evidence"`
	}
	if err := decodeJSONPayload(output, &payload); err != nil {
		return Reference{}, err
	}

	season, err := payload.Season.Int64()
	if err != nil {
		return Reference{}, fmt.Errorf("non-integer season %q", payload.Season.String())
	}
	episode, err := payload.Episode.Int64()
	if err != nil {
		return Reference{}, fmt.Errorf("non-integer episode %q", payload.Episode.String())
	}
	if season <= 0 || episode <= 0 {
		return Reference{}, fmt.Errorf("reference out of range: season=%d episode=%d", season, episode)
	}
	return Reference{
		Season:   int(season),
		Episode:  int(episode),
		Evidence: strings.TrimSpace(payload.Evidence),
	}, nil
}

func decodeJSONPayload(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := sanitizeJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, summarizePayloadSnippet(trimmed))
	}

	sanitizedErr := json.Unmarshal([]byte(sanitized), target)
	if sanitizedErr == nil {
		return nil
	}
	return fmt.Errorf("%w (sanitized payload snippet: %s)", sanitizedErr, summarizePayloadSnippet(sanitized))
}

func sanitizeJSONPayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFenceBlock(content))
	if trimmed == "" {
		return ""
	}
	if trimmed[0] == '{' {
		return trimmed
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return ""
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	idx := strings.Index(trimmed, "```")
	if idx < 0 {
		return trimmed
	}
	body := trimmed[idx+3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	replacer := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
	clean := replacer.Replace(trimmed)
	clean = strings.Join(strings.Fields(clean), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
