package planner

import (
	"errors"
	"testing"

	"dialogdetective/internal/services"
)

func TestRenderDefaultTemplate(t *testing.T) {
	tmpl, err := ParseTemplate("{show} - S{season:02}E{episode:02} - {title}.{ext}")
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	got := tmpl.Render(Fields{Show: "X", Season: 1, Episode: 3, Title: "Pilot", Ext: "mkv"})
	if got != "X - S01E03 - Pilot.mkv" {
		t.Fatalf("Render = %q", got)
	}
}

func TestRenderUnpaddedNumbers(t *testing.T) {
	tmpl, err := ParseTemplate("{season}x{episode}")
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	if got := tmpl.Render(Fields{Season: 1, Episode: 12}); got != "1x12" {
		t.Fatalf("Render = %q", got)
	}
}

func TestRenderWidePadding(t *testing.T) {
	tmpl, err := ParseTemplate("{episode:04}")
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	if got := tmpl.Render(Fields{Episode: 7}); got != "0007" {
		t.Fatalf("Render = %q", got)
	}
}

func TestRenderPaddingDoesNotTruncate(t *testing.T) {
	tmpl, err := ParseTemplate("{episode:02}")
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	if got := tmpl.Render(Fields{Episode: 123}); got != "123" {
		t.Fatalf("Render = %q", got)
	}
}

func TestParseTemplateRejectsUnknownField(t *testing.T) {
	_, err := ParseTemplate("{show} {year}")
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestParseTemplateRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"{show",
		"{title:02}",
		"{season:zz}",
	}
	for _, raw := range cases {
		if _, err := ParseTemplate(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseTemplateLiteralOnly(t *testing.T) {
	tmpl, err := ParseTemplate("fixed-name.mkv")
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	if got := tmpl.Render(Fields{}); got != "fixed-name.mkv" {
		t.Fatalf("Render = %q", got)
	}
}
