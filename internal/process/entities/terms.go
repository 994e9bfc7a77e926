package entities

import "regexp"

var (
	acronymPattern   = regexp.MustCompile(`\b[A-Z]{3,}\b`)
	camelCasePattern = regexp.MustCompile(`\b(?:[A-Z][a-z0-9]+(?:[A-Z][a-z0-9]+)+|[a-z]+(?:[A-Z][a-z0-9]+)+)\b`)
	versionPattern   = regexp.MustCompile(`\b(?:[vV]\d+(?:\.\d+){0,2}|\d+\.\d+\.\d+)\b`)
)

// Uppercase words that are ordinary English, business or document noise
// rather than technical vocabulary.
var acronymDenylist = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "BUT": true, "NOT": true, "ALL": true,
	"ARE": true, "WAS": true, "YOU": true, "OUR": true, "WITH": true, "FROM": true,
	"THIS": true, "THAT": true, "HAVE": true, "WILL": true, "NOTE": true, "NOTES": true,
	"LLC": true, "INC": true, "LTD": true, "CORP": true, "USA": true, "CAD": true,
	"USD": true, "CEO": true, "CFO": true, "COO": true, "CTO": true, "VP": true,
	"ASAP": true, "FYI": true, "TBD": true, "TBA": true, "ETA": true, "EOD": true,
	"FAQ": true, "PDF": true, "RE": true, "FW": true, "FWD": true, "CC": true,
	"BCC": true, "SUBJECT": true, "DRAFT": true, "FINAL": true, "CONFIDENTIAL": true,
	"MEETING": true, "MINUTES": true, "AGENDA": true, "TODO": true, "YES": true,
	"NEW": true, "END": true, "HST": true, "GST": true, "SRED": true,
	"JAN": true, "FEB": true, "MAR": true, "APR": true, "JUN": true, "JUL": true,
	"AUG": true, "SEP": true, "SEPT": true, "OCT": true, "NOV": true, "DEC": true,
}

// extractTechnicalTerms collects acronyms, CamelCase identifiers and version
// tokens, deduplicated in order of appearance.
func extractTechnicalTerms(text string) []string {
	var terms []string

	for _, a := range acronymPattern.FindAllString(text, -1) {
		if acronymDenylist[a] {
			continue
		}

		terms = append(terms, a)
	}

	terms = append(terms, camelCasePattern.FindAllString(text, -1)...)
	terms = append(terms, versionPattern.FindAllString(text, -1)...)

	return uniqueInOrder(terms)
}
