package domain

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/net/html"
)

// RenderText turns the HTML fragment the API returns in "text" into plain
// terminal text: tags are dropped, <p> starts a new paragraph, <br> a new
// line, entities are decoded and escape sequences removed.
func RenderText(fragment string) string {
	if fragment == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p":
				if b.Len() > 0 {
					b.WriteString("\n\n")
				}
			case "br":
				b.WriteString("\n")
			}
		}
	}

	return strings.TrimSpace(sanitize(b.String(), true))
}

// sanitizeLine is RenderText's terminal cleanup for single-line fields
// such as titles.
func sanitizeLine(s string) string {
	return strings.TrimSpace(sanitize(s, false))
}

func sanitize(s string, keepNewlines bool) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' && keepNewlines:
			return r
		case r == '\n' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}
