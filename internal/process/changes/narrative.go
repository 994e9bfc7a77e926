package changes

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/platform/htmlutils"
	"github.com/lueurxax/sred-discovery/internal/process/signals"
)

// Phrases suggesting the work reused existing knowledge, which undercuts a
// claimed technological advancement.
var contradictionPhrases = []string{
	"adapted", "adopted", "open source", "open-source", "borrowed", "off-the-shelf",
	"off the shelf", "existing library", "existing solution", "third-party",
	"third party", "vendor solution", "licensed", "reused", "copied from",
	"followed the tutorial", "out of the box",
}

// Phrases suggesting the problem had a known answer, which undercuts a
// claimed uncertainty.
var knownSolutionPhrases = []string{
	"standard", "well-known", "well known", "common practice", "best practice",
	"documented approach", "straightforward", "trivial", "as expected",
	"textbook", "industry standard", "known solution",
}

var (
	contradictionPattern = signals.CompilePhrases(contradictionPhrases)
	knownSolutionPattern = signals.CompilePhrases(knownSolutionPhrases)
)

type impactKey struct {
	impactType string
	section    string
}

// scanNarrative flags documents matched to p that contradict or could
// strengthen its stored narrative.
func (d *Detector) scanNarrative(p domain.ExistingProject, add domain.ProjectAddition, docs []domain.Document) []domain.NarrativeImpact {
	grouped := make(map[impactKey]*domain.NarrativeImpact)

	flag := func(key impactKey, severity, docID string, phrases []string) {
		impact, ok := grouped[key]
		if !ok {
			impact = &domain.NarrativeImpact{
				ProjectID:  p.ID,
				ImpactType: key.impactType,
				Section:    key.section,
				Severity:   severity,
			}
			grouped[key] = impact
		}

		impact.DocumentIDs = appendUnique(impact.DocumentIDs, docID)

		for _, ph := range phrases {
			impact.MatchedPhrases = appendUnique(impact.MatchedPhrases, ph)
		}
	}

	contradictionSeverity := domain.SeverityMedium
	if add.BestConfidence() == domain.MatchHigh {
		contradictionSeverity = domain.SeverityHigh
	}

	for _, doc := range docs {
		text := htmlutils.PlainText(doc.Text)
		flagged := false

		if p.Narrative.Advancement != "" {
			if phrases := matchedPhrases(contradictionPattern, text); len(phrases) > 0 {
				flag(impactKey{domain.ImpactContradiction, domain.SectionAdvancement}, contradictionSeverity, doc.ID, phrases)
				flagged = true
			}
		}

		if p.Narrative.Uncertainty != "" {
			if phrases := matchedPhrases(knownSolutionPattern, text); len(phrases) > 0 {
				flag(impactKey{domain.ImpactContradiction, domain.SectionUncertainty}, domain.SeverityMedium, doc.ID, phrases)
				flagged = true
			}
		}

		if flagged {
			continue
		}

		profile := doc.Signals
		if profile == nil {
			detected := d.deps.Detector.Detect(text)
			profile = &detected
		}

		if profile.Score > d.cfg.EnhancementThreshold {
			flag(impactKey{domain.ImpactEnhancement, strongestSection(profile)}, domain.SeverityLow, doc.ID, nil)
		}
	}

	out := make([]domain.NarrativeImpact, 0, len(grouped))
	for _, impact := range grouped {
		out = append(out, *impact)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ImpactType != out[j].ImpactType {
			return out[i].ImpactType < out[j].ImpactType
		}

		return out[i].Section < out[j].Section
	})

	return out
}

// strongestSection picks the narrative section the document supports most.
// Ties favour uncertainty, then systematic.
func strongestSection(p *domain.SignalProfile) string {
	section, best := domain.SectionUncertainty, p.UncertaintyCount

	if p.SystematicCount > best {
		section, best = domain.SectionSystematic, p.SystematicCount
	}

	if p.AdvancementCount > best {
		section = domain.SectionAdvancement
	}

	return section
}

func matchedPhrases(pattern *regexp.Regexp, text string) []string {
	var out []string

	for _, m := range pattern.FindAllString(text, -1) {
		out = appendUnique(out, strings.ToLower(strings.Join(strings.Fields(m), " ")))
	}

	return out
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}

	return append(values, v)
}
