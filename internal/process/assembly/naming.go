package assembly

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/process/entities"
)

const minTermDocuments = 2

// counter tallies string keys and breaks ties lexically.
type counter map[string]int

func (c counter) top() (string, int) {
	best, bestN := "", 0

	for k, n := range c {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}

	return best, bestN
}

// chooseName picks a label by priority: most frequent name candidate, most
// frequent identifier prefix, a technical term seen in at least two
// documents, the dominant document type, then a generic fallback.
// It also returns the other raw spellings of the chosen name and whether
// the label is a document-type or fallback label that says nothing about
// which project the documents belong to.
func (a *Assembler) chooseName(docs []domain.Document) (string, []string, bool) {
	if name, variations := a.nameFromCandidates(docs); name != "" {
		return name, variations, false
	}

	prefixes := counter{}
	terms := counter{}
	types := counter{}

	for _, doc := range docs {
		if doc.Entities != nil {
			for _, id := range uniqueStrings(doc.Entities.Identifiers) {
				if p := entities.IdentifierPrefix(id); p != "" {
					prefixes[p]++
				}
			}

			for _, term := range uniqueStrings(doc.Entities.TechnicalTerms) {
				terms[term]++
			}
		}

		if t := strings.TrimSpace(doc.DocumentType); t != "" {
			types[strings.ToLower(t)]++
		}
	}

	if p, n := prefixes.top(); n > 0 {
		return "Project " + p, nil, false
	}

	if term, n := terms.top(); n >= minTermDocuments {
		return term + " R&D", nil, false
	}

	if t, n := types.top(); n > 0 {
		label := strings.NewReplacer("_", " ", "-", " ").Replace(t)
		return cases.Title(language.English).String(label) + " Project", nil, true
	}

	return fmt.Sprintf("Unnamed Project (%d documents)", len(docs)), nil, true
}

// nameFromCandidates counts normalised name keys once per document and
// displays the winner in its most common raw spelling.
func (a *Assembler) nameFromCandidates(docs []domain.Document) (string, []string) {
	keys := counter{}
	raws := make(map[string]counter)

	for _, doc := range docs {
		if doc.Entities == nil {
			continue
		}

		seen := make(map[string]bool)

		for _, raw := range doc.Entities.ProjectNames {
			key := a.normalizer.Normalize(raw)
			if key == "" {
				continue
			}

			if raws[key] == nil {
				raws[key] = counter{}
			}

			raws[key][raw]++

			if !seen[key] {
				seen[key] = true
				keys[key]++
			}
		}
	}

	key, n := keys.top()
	if n == 0 {
		return "", nil
	}

	display, _ := raws[key].top()

	var variations []string

	for raw := range raws[key] {
		if raw != display {
			variations = append(variations, raw)
		}
	}

	sort.Strings(variations)

	return display, variations
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	return out
}
