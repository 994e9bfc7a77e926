package domain

// ExistingProject is a project already approved or discovered for a claim.
type ExistingProject struct {
	ID               string
	Name             string
	Status           string
	MemberEmbeddings [][]float32
	Narrative        *Narrative
}

// Narrative is the stored eligibility narrative of a project, split by section.
type Narrative struct {
	Uncertainty string
	Systematic  string
	Advancement string
}

// IsEmpty reports whether no section is populated.
func (n *Narrative) IsEmpty() bool {
	return n == nil || (n.Uncertainty == "" && n.Systematic == "" && n.Advancement == "")
}

// MatchConfidence labels a document-to-project match.
type MatchConfidence string

// Match confidence levels.
const (
	MatchHigh   MatchConfidence = "high"
	MatchMedium MatchConfidence = "medium"
	MatchLow    MatchConfidence = "low"
)

// DocumentMatch records one new document assigned to an existing project.
type DocumentMatch struct {
	DocumentID string          `json:"document_id"`
	Similarity float64         `json:"similarity"`
	Confidence MatchConfidence `json:"confidence"`
}

// ProjectAddition groups the new documents matched to one existing project.
type ProjectAddition struct {
	ProjectID   string          `json:"project_id"`
	ProjectName string          `json:"project_name"`
	Documents   []DocumentMatch `json:"documents"`
}

// BestConfidence returns the strongest match confidence in the addition.
func (a ProjectAddition) BestConfidence() MatchConfidence {
	best := MatchLow

	for _, d := range a.Documents {
		switch {
		case d.Confidence == MatchHigh:
			return MatchHigh
		case d.Confidence == MatchMedium:
			best = MatchMedium
		}
	}

	return best
}

// NewProjectCandidate is a cluster of unmatched documents that may be a new project.
type NewProjectCandidate struct {
	Candidate   ProjectCandidate `json:"candidate"`
	DocumentIDs []string         `json:"document_ids"`
}

// Narrative impact types.
const (
	ImpactContradiction = "contradiction"
	ImpactEnhancement   = "enhancement"
)

// Narrative sections.
const (
	SectionUncertainty = "uncertainty"
	SectionSystematic  = "systematic"
	SectionAdvancement = "advancement"
)

// Severity levels.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// NarrativeImpact flags a possible conflict or enhancement for human review.
type NarrativeImpact struct {
	ProjectID      string   `json:"project_id"`
	ImpactType     string   `json:"impact_type"`
	Section        string   `json:"section"`
	Severity       string   `json:"severity"`
	DocumentIDs    []string `json:"document_ids"`
	MatchedPhrases []string `json:"matched_phrases,omitempty"`
}

// ChangeSet is the structured diff produced by change detection.
// It has no persistence side effects until applied.
type ChangeSet struct {
	Additions        []ProjectAddition     `json:"additions"`
	NewProjects      []NewProjectCandidate `json:"new_projects"`
	NarrativeImpacts []NarrativeImpact     `json:"narrative_impacts"`
	Unassigned       []string              `json:"unassigned"`
}

// Association links a document to a project once a change set is applied.
type Association struct {
	ProjectID  string
	DocumentID string
	Similarity float64
	Confidence MatchConfidence
}
