package entities

import (
	"strings"
	"unicode"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

// Title keyword sets. Matching is by word prefix, so "engineer" also covers
// "engineering" and "engineers".
var (
	managementKeywords = []string{
		"manager", "director", "vp", "vice president", "head of", "ceo", "coo",
		"cfo", "cto", "cio", "president", "founder", "co-founder", "owner",
		"chief", "partner", "supervisor",
	}

	technicalKeywords = []string{
		"engineer", "developer", "scientist", "researcher", "architect",
		"programmer", "technician", "technologist", "physicist", "chemist",
		"biologist", "mathematician", "statistician", "software",
		"hardware", "firmware", "devops", "machine learning", "ml ", "r&d",
	}

	supportKeywords = []string{
		"assistant", "coordinator", "administrator", "admin", "accountant",
		"accounting", "bookkeeper", "clerk", "hr", "human resources", "recruiter",
		"sales", "marketing", "receptionist", "office", "legal", "counsel",
		"paralegal", "customer", "support", "finance", "payroll",
	}

	// A management title with one of these is technical leadership.
	technicalFlavor = []string{
		"engineering", "technical", "technology", "research", "r&d", "software",
		"product", "cto", "data", "scientific",
	}

	// Fallback stems for otherwise unclassified titles.
	genericTechStems = []string{"tech", "eng", "dev", "sci", "lab", "design", "system", "code"}
)

// ClassifyTitle maps a free-text job title to a role and whether the holder
// plausibly counts as qualified personnel.
func ClassifyTitle(title string) (domain.RoleType, bool) {
	text := normalizeTitle(title)
	if strings.TrimSpace(text) == "" {
		return domain.RoleUnknown, false
	}

	switch {
	case containsAny(text, managementKeywords):
		return domain.RoleManagement, containsAny(text, technicalFlavor)
	case containsAny(text, technicalKeywords):
		return domain.RoleTechnical, true
	case containsAny(text, supportKeywords):
		return domain.RoleSupport, false
	case containsAny(text, genericTechStems):
		return domain.RoleTechnical, true
	default:
		return domain.RoleUnknown, false
	}
}

// looksLikeTitle guards titled contributor patterns against ordinary
// "Name, Place" prose.
func looksLikeTitle(title string) bool {
	role, _ := ClassifyTitle(title)
	return role != domain.RoleUnknown
}

// normalizeTitle lowercases, replaces punctuation other than & and - with
// spaces, and pads with spaces so keywords match at word starts.
func normalizeTitle(title string) string {
	var b strings.Builder

	b.WriteByte(' ')

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' || r == '-' {
			b.WriteRune(r)
			continue
		}

		b.WriteByte(' ')
	}

	b.WriteByte(' ')

	return strings.Join(strings.Fields(b.String()), " ") + " "
}

func containsAny(text string, keywords []string) bool {
	padded := " " + text

	for _, kw := range keywords {
		if strings.Contains(padded, " "+kw) {
			return true
		}
	}

	return false
}
