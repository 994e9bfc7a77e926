package domain

import "time"

// Document is a single business document attached to a claim.
// It is read-only input to the discovery engine.
type Document struct {
	ID              string
	ClaimID         string
	Filename        string
	DocumentType    string
	Text            string
	Date            *time.Time
	Embedding       []float32
	ChunkEmbeddings [][]float32
	Signals         *SignalProfile
	Entities        *ExtractedEntities
	CreatedAt       time.Time
}

// Signal categories.
const (
	CategoryUncertainty = "uncertainty"
	CategorySystematic  = "systematic"
	CategoryFailure     = "failure"
	CategoryAdvancement = "advancement"
	CategoryRoutine     = "routine"
)

// SignalProfile summarises eligibility-relevant language in one document.
type SignalProfile struct {
	UncertaintyCount int                 `json:"uncertainty_count"`
	SystematicCount  int                 `json:"systematic_count"`
	FailureCount     int                 `json:"failure_count"`
	AdvancementCount int                 `json:"advancement_count"`
	RoutineCount     int                 `json:"routine_count"`
	Score            float64             `json:"score"`
	Evidence         map[string][]string `json:"evidence,omitempty"`
}

// HasUncertainty reports whether the profile recorded uncertainty evidence.
func (p *SignalProfile) HasUncertainty() bool {
	return p != nil && p.UncertaintyCount > 0
}

// HasResolution reports whether the profile recorded advancement or failure evidence.
func (p *SignalProfile) HasResolution() bool {
	return p != nil && (p.AdvancementCount > 0 || p.FailureCount > 0)
}

// ExtractedEntities holds entities pulled from document text.
type ExtractedEntities struct {
	Dates          []string      `json:"dates,omitempty"`
	ProjectNames   []string      `json:"project_names,omitempty"`
	Identifiers    []string      `json:"identifiers,omitempty"`
	Contributors   []Contributor `json:"contributors,omitempty"`
	TechnicalTerms []string      `json:"technical_terms,omitempty"`
}

// RoleType classifies a contributor's job function.
type RoleType string

// Role types.
const (
	RoleTechnical  RoleType = "technical"
	RoleManagement RoleType = "management"
	RoleSupport    RoleType = "support"
	RoleUnknown    RoleType = "unknown"
)

// ContributionType describes how a contributor appears in a document.
type ContributionType string

// Contribution types, strongest first.
const (
	ContributionAuthor    ContributionType = "author"
	ContributionAttendee  ContributionType = "attendee"
	ContributionRecipient ContributionType = "recipient"
	ContributionMentioned ContributionType = "mentioned"
)

// Priority orders contribution types: author > attendee > recipient > mentioned.
func (c ContributionType) Priority() int {
	switch c {
	case ContributionAuthor:
		return 4
	case ContributionAttendee:
		return 3
	case ContributionRecipient:
		return 2
	case ContributionMentioned:
		return 1
	default:
		return 0
	}
}

// Contributor is a person named in one or more documents.
type Contributor struct {
	Name                 string           `json:"name"`
	Title                string           `json:"title,omitempty"`
	RoleType             RoleType         `json:"role_type"`
	IsQualifiedPersonnel bool             `json:"is_qualified_personnel"`
	ContributionType     ContributionType `json:"contribution_type"`
}

// Merge folds other into c. Titles are never downgraded, role only moves
// from unknown to known, and contribution type only upgrades.
func (c *Contributor) Merge(other Contributor) {
	if c.Title == "" && other.Title != "" {
		c.Title = other.Title
	}

	if (c.RoleType == "" || c.RoleType == RoleUnknown) && other.RoleType != "" && other.RoleType != RoleUnknown {
		c.RoleType = other.RoleType
		c.IsQualifiedPersonnel = other.IsQualifiedPersonnel
	}

	if c.RoleType == "" {
		c.RoleType = RoleUnknown
	}

	if other.ContributionType.Priority() > c.ContributionType.Priority() {
		c.ContributionType = other.ContributionType
	}
}

// EffectiveDate returns the document date, falling back to the earliest date
// extracted from its text. It returns nil when neither is known.
func (d *Document) EffectiveDate() *time.Time {
	if d.Date != nil {
		return d.Date
	}

	if d.Entities == nil {
		return nil
	}

	for _, s := range d.Entities.Dates {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			return &t
		}
	}

	return nil
}
