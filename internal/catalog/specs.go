package catalog

import (
	"strings"

	"golang.org/x/net/html"
)

type SpecRow struct {
	Key   string
	Value string
}

// Specs is the structured view of a product description.
type Specs struct {
	Features []string
	Rows     []SpecRow
}

func (s Specs) Empty() bool {
	return len(s.Features) == 0 && len(s.Rows) == 0
}

var lineBreaking = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true,
}

type textLine struct {
	text   string
	bullet bool
}

// ParseSpecs pulls features and key/value rows out of description HTML.
// List items and lines starting with a bullet become features, "key: value"
// lines become rows and anything else is dropped.
func ParseSpecs(descriptionHTML string) Specs {
	var specs Specs
	for _, line := range textLines(descriptionHTML) {
		text := line.text
		if marker, ok := bulletMarker(text); ok {
			text = strings.TrimSpace(strings.TrimPrefix(text, marker))
			line.bullet = true
		}
		if text == "" {
			continue
		}

		if key, value, ok := splitRow(text); ok && !line.bullet {
			specs.Rows = append(specs.Rows, SpecRow{Key: key, Value: value})
			continue
		}
		if line.bullet {
			specs.Features = append(specs.Features, text)
		}
	}
	return specs
}

func textLines(src string) []textLine {
	var (
		lines   []textLine
		current strings.Builder
		inItem  bool
		skip    int
	)
	flush := func() {
		if t := strings.Join(strings.Fields(current.String()), " "); t != "" {
			lines = append(lines, textLine{text: t, bullet: inItem})
		}
		current.Reset()
	}

	z := html.NewTokenizer(strings.NewReader(src))
	for {
		switch z.Next() {
		case html.ErrorToken:
			flush()
			return lines
		case html.TextToken:
			if skip > 0 {
				continue
			}
			for i, part := range strings.Split(string(z.Text()), "\n") {
				if i > 0 {
					flush()
				}
				current.WriteString(part)
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				skip++
			case lineBreaking[tag]:
				flush()
				if tag == "li" {
					inItem = true
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case (tag == "script" || tag == "style") && skip > 0:
				skip--
			case lineBreaking[tag]:
				flush()
				if tag == "li" {
					inItem = false
				}
			}
		}
	}
}

func bulletMarker(text string) (string, bool) {
	for _, m := range []string{"•", "-", "*"} {
		if strings.HasPrefix(text, m) {
			return m, true
		}
	}
	return "", false
}

func splitRow(text string) (string, string, bool) {
	key, value, ok := strings.Cut(text, ":")
	if !ok {
		return "", "", false
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}
