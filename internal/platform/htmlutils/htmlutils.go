// Package htmlutils turns HTML document bodies, such as exported emails and
// wiki pages, into plain text for phrase matching.
package htmlutils

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRegex = regexp.MustCompile(`<(/?)([a-zA-Z0-9-]+)([^>]*)>`)
	// Content of these elements is never prose.
	invisibleRegex = regexp.MustCompile(`(?is)<(script|style|head)\b[^>]*>.*?</(script|style|head)>`)
	commentRegex   = regexp.MustCompile(`(?s)<!--.*?-->`)
	spaceRegex     = regexp.MustCompile(`[ \t\f\v]+`)
	blankRunRegex  = regexp.MustCompile(`\n{3,}`)
)

// blockTags end a line of text when opened or closed.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true, "ul": true, "ol": true, "hr": true,
}

// PlainText strips markup from text. Block elements become line breaks so
// "Author:" style header lines survive. Text without markup or entities is
// returned unchanged.
func PlainText(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	result := invisibleRegex.ReplaceAllString(text, "")
	result = commentRegex.ReplaceAllString(result, "")

	result = tagRegex.ReplaceAllStringFunc(result, func(tag string) string {
		if blockTags[strings.ToLower(GetTagName(tag))] {
			return "\n"
		}

		return ""
	})

	result = html.UnescapeString(result)

	lines := strings.Split(result, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRegex.ReplaceAllString(line, " "))
	}

	result = blankRunRegex.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")

	return strings.TrimSpace(result)
}

// GetTagName extracts the tag name from a full tag like "<a href='...'>" or "</b>".
func GetTagName(fullTag string) string {
	m := tagRegex.FindStringSubmatch(fullTag)
	if len(m) < 3 {
		return ""
	}

	return m[2]
}
