// Package entities pulls dates, project identifiers, contributors and
// technical terms out of document text.
package entities

import (
	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

// MaxTextLength bounds extraction to the head of a document for predictable latency.
const MaxTextLength = 100000

// Extractor extracts entities from text. All patterns are package-level and
// compiled once; an Extractor holds no mutable state and is safe to share.
type Extractor struct {
	maxLength int
}

// NewExtractor creates an extractor with the default length bound.
func NewExtractor() *Extractor {
	return &Extractor{maxLength: MaxTextLength}
}

// Extract returns the entities found in the first MaxTextLength characters of text.
func (e *Extractor) Extract(text string) domain.ExtractedEntities {
	text = truncate(text, e.maxLength)

	names, idents := extractIdentifiers(text)

	return domain.ExtractedEntities{
		Dates:          extractDates(text),
		ProjectNames:   names,
		Identifiers:    idents,
		Contributors:   extractContributors(text),
		TechnicalTerms: extractTechnicalTerms(text),
	}
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}

		count++
	}

	return s
}
