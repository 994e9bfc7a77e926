package entities

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

const (
	minNameTokens   = 2
	maxNameTokens   = 4
	minNameTokenLen = 2
	maxNameTokenLen = 20
)

const (
	namePart  = `[A-Z][A-Za-z'\-]{1,19}(?:[ \t]+[A-Z][A-Za-z'\-]{1,19}){1,3}`
	titlePart = `[A-Z][A-Za-z&/\-]*(?:[ \t]+(?:of|and|&|[A-Z][A-Za-z&/\-]*)){0,5}`
)

var (
	commaTitlePattern   = regexp.MustCompile(`(` + namePart + `),[ \t]+(` + titlePart + `)`)
	honorificPattern    = regexp.MustCompile(`\b(Dr|Prof|Mr|Mrs|Ms|Mx)\.?[ \t]+(` + namePart + `)`)
	signatureBlock      = regexp.MustCompile(`(?m)^[ \t]*(` + namePart + `)[ \t]*\r?\n[ \t]*(` + titlePart + `)[ \t]*$`)
	pipeSignature       = regexp.MustCompile(`(` + namePart + `)[ \t]*\|[ \t]*(` + titlePart + `)`)
	parentheticalTitle  = regexp.MustCompile(`(` + namePart + `)[ \t]*\((` + titlePart + `)\)`)
	headerPattern       = regexp.MustCompile(`(?im)^[ \t]*(from|authors?|prepared by|written by|submitted by|to|cc|attendees|participants|present)[ \t]*:[ \t]*(.+)$`)
	mentionPattern      = regexp.MustCompile(`@(` + namePart + `)`)
	emailPattern        = regexp.MustCompile(`<[^>]*>|\S+@\S+`)
	parenthesisPattern  = regexp.MustCompile(`\([^)]*\)`)
	headerListSeparator = regexp.MustCompile(`[,;]|\s+and\s+`)
)

// Tokens that never belong to a person's name: salutations, honorifics and
// title words that the greedy name pattern can pick up.
var nameStopTokens = map[string]bool{
	"Dear": true, "Hi": true, "Hello": true, "Hey": true, "Regards": true,
	"Best": true, "Kind": true, "Warm": true, "Thanks": true, "Thank": true,
	"Sincerely": true, "Cheers": true, "Team": true, "All": true, "Sir": true,
	"Madam": true, "Mr": true, "Mrs": true, "Ms": true, "Dr": true, "Prof": true,
	"From": true, "To": true, "Cc": true, "Subject": true, "Re": true, "Date": true,
	"Sent": true, "The": true, "And": true, "Project": true, "Meeting": true,
	"Senior": true, "Junior": true, "Lead": true, "Principal": true, "Staff": true,
	"Chief": true, "Head": true, "Vice": true, "President": true, "Manager": true,
	"Director": true, "Engineer": true, "Developer": true, "Scientist": true,
	"Research": true, "Attendees": true, "Notes": true, "Minutes": true,
}

var headerContribution = map[string]domain.ContributionType{
	"from":         domain.ContributionAuthor,
	"author":       domain.ContributionAuthor,
	"authors":      domain.ContributionAuthor,
	"prepared by":  domain.ContributionAuthor,
	"written by":   domain.ContributionAuthor,
	"submitted by": domain.ContributionAuthor,
	"attendees":    domain.ContributionAttendee,
	"participants": domain.ContributionAttendee,
	"present":      domain.ContributionAttendee,
	"to":           domain.ContributionRecipient,
	"cc":           domain.ContributionRecipient,
}

type titledPattern struct {
	pattern      *regexp.Regexp
	contribution domain.ContributionType
}

var titledPatterns = []titledPattern{
	{pattern: signatureBlock, contribution: domain.ContributionAuthor},
	{pattern: pipeSignature, contribution: domain.ContributionAuthor},
	{pattern: parentheticalTitle, contribution: domain.ContributionAttendee},
	{pattern: commaTitlePattern, contribution: domain.ContributionMentioned},
}

// contributorSet merges contributors by exact name, preserving first-seen order.
type contributorSet struct {
	order []string
	byKey map[string]*domain.Contributor
}

func newContributorSet() *contributorSet {
	return &contributorSet{byKey: make(map[string]*domain.Contributor)}
}

func (s *contributorSet) add(c domain.Contributor) {
	if c.RoleType == "" {
		c.RoleType = domain.RoleUnknown
	}

	if existing, ok := s.byKey[c.Name]; ok {
		existing.Merge(c)
		return
	}

	s.order = append(s.order, c.Name)
	s.byKey[c.Name] = &c
}

func (s *contributorSet) list() []domain.Contributor {
	if len(s.order) == 0 {
		return nil
	}

	out := make([]domain.Contributor, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.byKey[name])
	}

	return out
}

// extractContributors runs the titled pass then the header pass.
func extractContributors(text string) []domain.Contributor {
	set := newContributorSet()

	for _, tp := range titledPatterns {
		for _, m := range tp.pattern.FindAllStringSubmatch(text, -1) {
			name, ok := cleanName(m[1])
			title := strings.TrimSpace(m[2])

			if !ok || !looksLikeTitle(title) {
				continue
			}

			role, qualified := ClassifyTitle(title)
			set.add(domain.Contributor{
				Name:                 name,
				Title:                title,
				RoleType:             role,
				IsQualifiedPersonnel: qualified,
				ContributionType:     tp.contribution,
			})
		}
	}

	for _, m := range honorificPattern.FindAllStringSubmatch(text, -1) {
		name, ok := cleanName(m[2])
		if !ok {
			continue
		}

		c := domain.Contributor{Name: name, RoleType: domain.RoleUnknown, ContributionType: domain.ContributionMentioned}
		if m[1] == "Dr" || m[1] == "Prof" {
			c.Title = m[1] + "."
			c.RoleType = domain.RoleTechnical
			c.IsQualifiedPersonnel = true
		}

		set.add(c)
	}

	for _, m := range headerPattern.FindAllStringSubmatch(text, -1) {
		contribution := headerContribution[strings.ToLower(strings.Join(strings.Fields(m[1]), " "))]

		for _, name := range splitHeaderNames(m[2]) {
			set.add(domain.Contributor{Name: name, RoleType: domain.RoleUnknown, ContributionType: contribution})
		}
	}

	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		if name, ok := cleanName(m[1]); ok {
			set.add(domain.Contributor{Name: name, RoleType: domain.RoleUnknown, ContributionType: domain.ContributionMentioned})
		}
	}

	return set.list()
}

func splitHeaderNames(value string) []string {
	value = emailPattern.ReplaceAllString(value, " ")
	value = parenthesisPattern.ReplaceAllString(value, " ")

	var names []string

	for _, part := range headerListSeparator.Split(value, -1) {
		if name, ok := cleanName(part); ok {
			names = append(names, name)
		}
	}

	return names
}

// cleanName trims leading stop tokens (e.g. "Dear", "Regards") and reports
// whether what remains is a plausible person name.
func cleanName(raw string) (string, bool) {
	tokens := strings.Fields(raw)
	for len(tokens) > 0 && nameStopTokens[strings.TrimRight(tokens[0], ".,")] {
		tokens = tokens[1:]
	}

	name := strings.Join(tokens, " ")

	return name, IsValidName(name)
}

// IsValidName requires 2–4 capitalised tokens of 2–20 characters, none of
// which is a salutation or title word.
func IsValidName(name string) bool {
	tokens := strings.Fields(name)
	if len(tokens) < minNameTokens || len(tokens) > maxNameTokens {
		return false
	}

	for _, tok := range tokens {
		n := utf8.RuneCountInString(tok)
		if n < minNameTokenLen || n > maxNameTokenLen || nameStopTokens[tok] {
			return false
		}

		first, _ := utf8.DecodeRuneInString(tok)
		if !unicode.IsUpper(first) {
			return false
		}

		for _, r := range tok {
			if !unicode.IsLetter(r) && r != '\'' && r != '-' {
				return false
			}
		}
	}

	return true
}
