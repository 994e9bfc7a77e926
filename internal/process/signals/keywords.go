package signals

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

// Keyword tables. Phrases are matched case-insensitively on word boundaries;
// internal spaces match any run of whitespace.
var (
	uncertaintyPhrases = []string{
		"uncertain", "uncertainty", "uncertainties", "technological uncertainty",
		"technical uncertainty", "unknown", "unknowns", "unclear", "not clear whether",
		"unable to predict", "could not predict", "unpredictable", "not known whether",
		"no known solution", "no existing solution", "could not determine",
		"unable to determine", "did not know", "open question", "technical challenge",
		"technical risk", "feasibility", "not feasible", "whether it was possible",
		"limitation of current", "beyond the state of", "unsolved",
	}

	systematicPhrases = []string{
		"hypothesis", "hypotheses", "hypothesized", "experiment", "experiments",
		"experimental", "experimentation", "tested", "testing", "test results",
		"trial", "trials", "prototype", "prototypes", "prototyping", "iteration",
		"iterations", "iterative", "measured", "measurement", "measurements",
		"benchmark", "benchmarks", "benchmarked", "methodology", "systematic",
		"systematically", "controlled test", "analysis of results", "analyzed",
		"simulation", "simulations", "proof of concept", "root cause analysis",
		"a/b test", "validated", "evaluated",
	}

	failurePhrases = []string{
		"failed", "failure", "failures", "did not work", "didn't work",
		"unsuccessful", "abandoned", "dead end", "did not meet", "regression",
		"crashed", "could not achieve", "unable to achieve", "fell short",
		"not successful", "rolled back", "discarded", "rejected approach",
	}

	advancementPhrases = []string{
		"achieved", "breakthrough", "novel", "new approach", "new method",
		"new technique", "advancement", "advance the state", "improved",
		"improvement", "improvements", "increased throughput", "reduced latency",
		"outperformed", "outperforms", "state of the art", "first of its kind",
		"new knowledge", "resolved the uncertainty", "succeeded", "successfully",
		"enabled", "patent", "invention",
	}

	routinePhrases = []string{
		"routine", "routine maintenance", "maintenance", "bug fix", "bug fixes",
		"cosmetic", "data entry", "quality control", "market research",
		"user training", "configuration change", "standard practice",
		"style guide", "copy editing", "customer support", "sales meeting",
		"administrative", "reformatting", "minor update", "content update",
	}
)

type category struct {
	name    string
	pattern *regexp.Regexp
}

// Compiled once at process start; immutable afterwards.
var categories = []category{
	{name: domain.CategoryUncertainty, pattern: compilePhrases(uncertaintyPhrases)},
	{name: domain.CategorySystematic, pattern: compilePhrases(systematicPhrases)},
	{name: domain.CategoryFailure, pattern: compilePhrases(failurePhrases)},
	{name: domain.CategoryAdvancement, pattern: compilePhrases(advancementPhrases)},
	{name: domain.CategoryRoutine, pattern: compilePhrases(routinePhrases)},
}

// compilePhrases builds one alternation regex, longest phrase first so that
// "test results" wins over "tested" style prefixes.
func compilePhrases(phrases []string) *regexp.Regexp {
	sorted := make([]string, len(phrases))
	copy(sorted, phrases)

	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	parts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		quoted := regexp.QuoteMeta(p)
		parts = append(parts, strings.ReplaceAll(quoted, " ", `\s+`))
	}

	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
}

// CompilePhrases exposes the phrase compiler for other keyword scanners.
func CompilePhrases(phrases []string) *regexp.Regexp {
	return compilePhrases(phrases)
}
