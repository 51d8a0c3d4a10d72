package planner

import (
	"fmt"
	"strconv"
	"strings"

	"dialogdetective/internal/services"
)

// Fields holds the values available to a filename template.
type Fields struct {
	Show    string
	Season  int
	Episode int
	Title   string
	Ext     string
}

// Template is a parsed filename template. Recognized fields are {show},
// {season}, {episode}, {title}, and {ext}; the numeric fields accept an
// optional zero-pad width, e.g. {season:02}.
type Template struct {
	raw      string
	segments []segment
}

type segment struct {
	literal string
	field   string
	pad     int
}

// ParseTemplate validates and compiles a template. Unknown fields are a
// configuration error reported before any file is touched.
func ParseTemplate(raw string) (*Template, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "planner", "template", "template must not be empty", nil)
	}
	tmpl := &Template{raw: raw}
	rest := raw
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if rest != "" {
				tmpl.segments = append(tmpl.segments, segment{literal: rest})
			}
			return tmpl, nil
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return nil, services.Wrap(services.ErrConfiguration, "planner", "template",
				fmt.Sprintf("unclosed field starting at %q", rest[open:]), nil)
		}
		if open > 0 {
			tmpl.segments = append(tmpl.segments, segment{literal: rest[:open]})
		}
		spec := rest[open+1 : open+closing]
		seg, err := parseField(spec)
		if err != nil {
			return nil, err
		}
		tmpl.segments = append(tmpl.segments, seg)
		rest = rest[open+closing+1:]
	}
}

func parseField(spec string) (segment, error) {
	name, padSpec, hasPad := strings.Cut(spec, ":")
	seg := segment{field: strings.ToLower(strings.TrimSpace(name))}
	switch seg.field {
	case "show", "title", "ext":
		if hasPad {
			return segment{}, services.Wrap(services.ErrConfiguration, "planner", "template",
				fmt.Sprintf("field %q does not accept a pad width", seg.field), nil)
		}
	case "season", "episode":
		if hasPad {
			width, err := strconv.Atoi(strings.TrimPrefix(padSpec, "0"))
			if err != nil || width <= 0 {
				return segment{}, services.Wrap(services.ErrConfiguration, "planner", "template",
					fmt.Sprintf("invalid pad width %q for field %q", padSpec, seg.field), nil)
			}
			seg.pad = width
		}
	default:
		return segment{}, services.Wrap(services.ErrConfiguration, "planner", "template",
			fmt.Sprintf("unknown template field %q", spec), nil)
	}
	return seg, nil
}

// Render produces the filename for the fields. Values are substituted
// verbatim; sanitization happens in the planner where the show and title
// come from untrusted sources.
func (t *Template) Render(fields Fields) string {
	var builder strings.Builder
	for _, seg := range t.segments {
		if seg.field == "" {
			builder.WriteString(seg.literal)
			continue
		}
		switch seg.field {
		case "show":
			builder.WriteString(fields.Show)
		case "title":
			builder.WriteString(fields.Title)
		case "ext":
			builder.WriteString(fields.Ext)
		case "season":
			builder.WriteString(padNumber(fields.Season, seg.pad))
		case "episode":
			builder.WriteString(padNumber(fields.Episode, seg.pad))
		}
	}
	return builder.String()
}

// String returns the original template text.
func (t *Template) String() string {
	return t.raw
}

func padNumber(value, width int) string {
	if width <= 0 {
		return strconv.Itoa(value)
	}
	return fmt.Sprintf("%0*d", width, value)
}
