package view

import (
	"html"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/RoyXiang/posterbot/media"
)

type style int

const (
	styleNone style = iota
	styleBold
	styleItalic
	styleLink
)

type segment struct {
	text  string
	style style
	href  string
}

// richText renders the same content as HTML for the normal path and as
// plain text for the degraded path.
type richText []segment

func (r *richText) add(s string) *richText {
	*r = append(*r, segment{text: s})
	return r
}

func (r *richText) bold(s string) *richText {
	*r = append(*r, segment{text: s, style: styleBold})
	return r
}

func (r *richText) italic(s string) *richText {
	*r = append(*r, segment{text: s, style: styleItalic})
	return r
}

func (r *richText) link(s, href string) *richText {
	*r = append(*r, segment{text: s, style: styleLink, href: href})
	return r
}

func (r richText) HTML() string {
	var b strings.Builder
	for _, s := range r {
		text := html.EscapeString(s.text)
		switch s.style {
		case styleBold:
			b.WriteString("<b>" + text + "</b>")
		case styleItalic:
			b.WriteString("<i>" + text + "</i>")
		case styleLink:
			b.WriteString(`<a href="` + html.EscapeString(s.href) + `">` + text + "</a>")
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}

func (r richText) Plain() string {
	var b strings.Builder
	for _, s := range r {
		b.WriteString(s.text)
		if s.style == styleLink {
			b.WriteString(": " + s.href)
		}
	}
	return b.String()
}

var langNamer = display.English.Languages()

// KindLabel turns "posters" into "Posters". A Caser holds state, so each
// call gets its own.
func KindLabel(kind string) string {
	return cases.Title(language.English).String(kind)
}

// LanguageLabel names a language code in English, "No Language" for the
// sentinel, and the upper-cased code when the code is unknown.
func LanguageLabel(code string) string {
	if code == media.NoLanguage || code == "" {
		return "No Language"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	if name := langNamer.Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(code)
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
