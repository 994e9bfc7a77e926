// Package names canonicalises free-text project names and groups spelling
// variants of the same project.
package names

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSimilarityThreshold is the minimum Levenshtein ratio for two
// normalised names to count as the same project.
const DefaultSimilarityThreshold = 0.8

// maxContainmentGap is the relative length difference under which one
// normalised name containing the other counts as a match.
const maxContainmentGap = 0.3

var (
	prefixPattern    = regexp.MustCompile(`(?i)^(?:project|proj|prj|codename|code[\s_-]*name|code)(?:[\s:_#-]+|$)`)
	separatorPattern = regexp.MustCompile(`[\s\-_/.:,;#]+`)
	suffixPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)_(?:19|20)\d{2}$`),
		regexp.MustCompile(`(?i)_v\d+(?:_\d+)*$`),
		regexp.MustCompile(`(?i)_(?:phase|stage|version|release|rev|sprint|part|iteration)_?\d+$`),
		regexp.MustCompile(`_\d+$`),
	}
)

// Normalizer canonicalises project names. It is immutable after
// construction and safe for concurrent use.
type Normalizer struct {
	threshold float64
	stopwords map[string]bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithThreshold overrides the similarity threshold used by GroupBySimilarity.
func WithThreshold(threshold float64) Option {
	return func(n *Normalizer) {
		if threshold > 0 && threshold <= 1 {
			n.threshold = threshold
		}
	}
}

// NewNormalizer creates a normalizer over the built-in stopword set.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		threshold: DefaultSimilarityThreshold,
		stopwords: stopwords,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Threshold returns the configured similarity threshold.
func (n *Normalizer) Threshold() float64 {
	return n.threshold
}

// Normalize returns the canonical key for name, or "" when nothing
// meaningful is left once prefixes, suffixes and stopwords are removed.
func (n *Normalizer) Normalize(name string) string {
	s := strings.TrimSpace(foldDiacritics(name))

	for {
		stripped := strings.TrimSpace(prefixPattern.ReplaceAllString(s, ""))
		if stripped == s {
			break
		}

		s = stripped
	}

	s = strings.Trim(separatorPattern.ReplaceAllString(s, "_"), "_")

	for changed := true; changed; {
		changed = false

		for _, p := range suffixPatterns {
			if p.MatchString(s) {
				s = p.ReplaceAllString(s, "")
				changed = true
			}
		}
	}

	s = cases.Upper(language.Und).String(strings.Trim(s, "_"))

	if s == "" || !strings.ContainsFunc(s, unicode.IsLetter) || n.isStopword(s) {
		return ""
	}

	return s
}

func (n *Normalizer) isStopword(s string) bool {
	if n.stopwords[s] {
		return true
	}

	padded := "_" + s + "_"
	for sw := range n.stopwords {
		if strings.Contains(padded, "_"+sw+"_") {
			return true
		}
	}

	return false
}

// AreSimilar reports whether a and b name the same project under threshold.
func (n *Normalizer) AreSimilar(a, b string, threshold float64) bool {
	return similarKeys(n.Normalize(a), n.Normalize(b), threshold)
}

func similarKeys(a, b string, threshold float64) bool {
	if a == "" || b == "" {
		return false
	}

	if a == b {
		return true
	}

	la, lb := len([]rune(a)), len([]rune(b))
	longer, shorter, ll, ls := a, b, la, lb

	if lb > la {
		longer, shorter, ll, ls = b, a, lb, la
	}

	if strings.Contains(longer, shorter) && float64(ll-ls)/float64(ll) < maxContainmentGap {
		return true
	}

	return Ratio(a, b) >= threshold
}

// Ratio is 1 − Levenshtein distance / longer length, in [0,1].
func Ratio(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}

	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// foldDiacritics strips combining marks after NFD decomposition. Transform
// chains carry state, so one is built per call.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}
