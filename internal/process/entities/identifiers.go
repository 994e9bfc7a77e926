package entities

import (
	"regexp"
	"strings"
)

var (
	shortCodePattern  = regexp.MustCompile(`\b[A-Z]{2,10}-\d{1,5}\b`)
	projectPhrase     = regexp.MustCompile(`\b[Pp]roject\s+([A-Z][A-Za-z0-9]*(?:[-_][A-Za-z0-9]+)*)`)
	branchPattern     = regexp.MustCompile(`\b(?:feature|project|research|rnd|experiment)/([a-z0-9][a-z0-9._-]{2,40})\b`)
	structuredPattern = regexp.MustCompile(`(?i)\b(?:project\s+(?:code|id|no\.?|number)|code\s*name|codename)\s*[:#]\s*([A-Za-z0-9][A-Za-z0-9_-]{1,30})`)
)

// Words that follow "Project" in ordinary prose and are not names.
var projectPhraseStop = map[string]bool{
	"The": true, "This": true, "That": true, "Our": true, "A": true, "An": true,
	"Manager": true, "Management": true, "Plan": true, "Status": true, "Team": true,
	"Update": true, "Overview": true, "Summary": true, "Scope": true, "Lead": true,
	"Code": true, "ID": true, "No": true, "Number": true, "Name": true,
}

// extractIdentifiers returns (name candidates, short-code identifiers).
func extractIdentifiers(text string) ([]string, []string) {
	idents := uniqueInOrder(shortCodePattern.FindAllString(text, -1))

	var names []string

	for _, m := range projectPhrase.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if projectPhraseStop[name] {
			continue
		}

		names = append(names, "Project "+name)
	}

	for _, m := range branchPattern.FindAllStringSubmatch(text, -1) {
		names = append(names, m[1])
	}

	for _, m := range structuredPattern.FindAllStringSubmatch(text, -1) {
		names = append(names, m[1])
	}

	return uniqueInOrder(names), idents
}

// IdentifierPrefix returns the alphabetic prefix of a short code, e.g. "AURORA" for "AURORA-12".
func IdentifierPrefix(code string) string {
	prefix, _, ok := strings.Cut(code, "-")
	if !ok {
		return ""
	}

	return prefix
}

func uniqueInOrder(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}

		seen[v] = true
		out = append(out, v)
	}

	return out
}
