// Package changes compares newly arrived documents against existing projects
// and produces a reviewable change set. Nothing is persisted until the set is
// applied.
package changes

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/platform/observability"
	"github.com/lueurxax/sred-discovery/internal/process/assembly"
	"github.com/lueurxax/sred-discovery/internal/process/clustering"
	"github.com/lueurxax/sred-discovery/internal/process/dedup"
	"github.com/lueurxax/sred-discovery/internal/process/signals"
)

// Defaults.
const (
	DefaultMatchThreshold       = 0.60
	DefaultHighConfidence       = 0.80
	DefaultMaxAnchorMembers     = 10
	DefaultEnhancementThreshold = 0.6
)

const (
	outcomeMatched    = "matched"
	outcomeClustered  = "clustered"
	outcomeUnassigned = "unassigned"

	logFieldProjectID = "project_id"
)

// Dependencies are the engine components change detection uses.
type Dependencies struct {
	Detector  *signals.Detector
	Engine    *clustering.Engine
	Assembler *assembly.Assembler
}

// Config tunes change detection.
type Config struct {
	MatchThreshold       float64
	HighConfidence       float64
	MinClusterSize       int
	MaxAnchorMembers     int
	EnhancementThreshold float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MatchThreshold:       DefaultMatchThreshold,
		HighConfidence:       DefaultHighConfidence,
		MinClusterSize:       clustering.DefaultMinClusterSize,
		MaxAnchorMembers:     DefaultMaxAnchorMembers,
		EnhancementThreshold: DefaultEnhancementThreshold,
	}
}

// Detector computes change sets.
type Detector struct {
	deps   Dependencies
	cfg    Config
	logger *zerolog.Logger
}

// NewDetector creates a change detector. Zero config fields take defaults.
func NewDetector(deps Dependencies, cfg Config, logger *zerolog.Logger) *Detector {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if deps.Detector == nil {
		deps.Detector = signals.NewDetector()
	}

	if deps.Engine == nil {
		deps.Engine = clustering.NewEngine(nil, nil, logger)
	}

	if deps.Assembler == nil {
		deps.Assembler = assembly.NewAssembler(nil, logger)
	}

	defaults := DefaultConfig()

	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = defaults.MatchThreshold
	}

	if cfg.HighConfidence <= 0 {
		cfg.HighConfidence = defaults.HighConfidence
	}

	if cfg.MinClusterSize <= 0 {
		cfg.MinClusterSize = defaults.MinClusterSize
	}

	if cfg.MaxAnchorMembers <= 0 {
		cfg.MaxAnchorMembers = defaults.MaxAnchorMembers
	}

	if cfg.EnhancementThreshold <= 0 {
		cfg.EnhancementThreshold = defaults.EnhancementThreshold
	}

	return &Detector{deps: deps, cfg: cfg, logger: logger}
}

// Detect matches docs to existing projects, clusters what is left into
// possible new projects and flags narrative impacts on matched projects.
func (d *Detector) Detect(ctx context.Context, existing []domain.ExistingProject, docs []domain.Document) (*domain.ChangeSet, error) {
	set := &domain.ChangeSet{}

	if len(docs) == 0 {
		return set, nil
	}

	res, err := d.deps.Engine.Builder().Resolve(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("resolve embeddings: %w", err)
	}

	set.Unassigned = append(set.Unassigned, res.Excluded...)

	anchors := d.anchors(existing)
	projects := make(map[string]domain.ExistingProject, len(existing))

	for _, p := range existing {
		projects[p.ID] = p
	}

	additions := make(map[string]*domain.ProjectAddition)
	matchedDocs := make(map[string][]domain.Document)

	var pending []domain.Document

	for _, doc := range res.Documents {
		m := dedup.BestMatch(doc.Embedding, anchors, float32(d.cfg.MatchThreshold))
		if !m.Found {
			pending = append(pending, doc)
			continue
		}

		pid := m.Item.ProjectID

		add, ok := additions[pid]
		if !ok {
			add = &domain.ProjectAddition{ProjectID: pid, ProjectName: projects[pid].Name}
			additions[pid] = add
		}

		add.Documents = append(add.Documents, domain.DocumentMatch{
			DocumentID: doc.ID,
			Similarity: float64(m.Similarity),
			Confidence: d.matchConfidence(float64(m.Similarity)),
		})
		matchedDocs[pid] = append(matchedDocs[pid], doc)

		observability.ChangeDocuments.WithLabelValues(outcomeMatched).Inc()
	}

	for _, add := range additions {
		set.Additions = append(set.Additions, *add)
	}

	sort.Slice(set.Additions, func(i, j int) bool { return set.Additions[i].ProjectID < set.Additions[j].ProjectID })

	newProjects, unassigned, err := d.clusterPending(ctx, pending)
	if err != nil {
		return nil, err
	}

	set.NewProjects = newProjects
	set.Unassigned = append(set.Unassigned, unassigned...)
	sort.Strings(set.Unassigned)

	for _, add := range set.Additions {
		p := projects[add.ProjectID]
		if p.Narrative.IsEmpty() {
			continue
		}

		set.NarrativeImpacts = append(set.NarrativeImpacts, d.scanNarrative(p, add, matchedDocs[add.ProjectID])...)
	}

	for _, impact := range set.NarrativeImpacts {
		observability.NarrativeImpacts.WithLabelValues(impact.ImpactType, impact.Severity).Inc()
	}

	d.logger.Info().
		Int("additions", len(set.Additions)).
		Int("new_projects", len(set.NewProjects)).
		Int("impacts", len(set.NarrativeImpacts)).
		Int("unassigned", len(set.Unassigned)).
		Msg("change detection complete")

	return set, nil
}

// anchors averages up to MaxAnchorMembers member embeddings per project.
// Projects without members get no anchor.
func (d *Detector) anchors(existing []domain.ExistingProject) []*domain.Anchor {
	out := make([]*domain.Anchor, 0, len(existing))

	for _, p := range existing {
		members := p.MemberEmbeddings
		if len(members) > d.cfg.MaxAnchorMembers {
			members = members[:d.cfg.MaxAnchorMembers]
		}

		v := dedup.Mean(members)
		if len(v) == 0 {
			d.logger.Debug().Str(logFieldProjectID, p.ID).Msg("project has no member embeddings")
			continue
		}

		out = append(out, &domain.Anchor{ProjectID: p.ID, Vector: v})
	}

	return out
}

func (d *Detector) matchConfidence(similarity float64) domain.MatchConfidence {
	switch {
	case similarity >= d.cfg.HighConfidence:
		return domain.MatchHigh
	case similarity >= d.cfg.MatchThreshold:
		return domain.MatchMedium
	default:
		return domain.MatchLow
	}
}

// clusterPending groups unmatched documents into possible new projects.
// Without clustering, or with too few documents, they stay unassigned.
func (d *Detector) clusterPending(ctx context.Context, pending []domain.Document) ([]domain.NewProjectCandidate, []string, error) {
	ids := func(docs []domain.Document) []string {
		out := make([]string, 0, len(docs))
		for _, doc := range docs {
			out = append(out, doc.ID)
		}

		return out
	}

	if len(pending) < d.cfg.MinClusterSize || !d.deps.Engine.Available() {
		observability.ChangeDocuments.WithLabelValues(outcomeUnassigned).Add(float64(len(pending)))
		return nil, ids(pending), nil
	}

	result, err := d.deps.Engine.Cluster(ctx, pending, d.cfg.MinClusterSize)
	if err != nil {
		return nil, nil, fmt.Errorf("cluster pending documents: %w", err)
	}

	var out []domain.NewProjectCandidate

	for _, cluster := range result.Clusters {
		c := d.deps.Assembler.Assemble(cluster, domain.SourceClustering)
		out = append(out, domain.NewProjectCandidate{Candidate: c, DocumentIDs: c.DocumentIDs})

		observability.ChangeDocuments.WithLabelValues(outcomeClustered).Add(float64(len(cluster)))
	}

	unassigned := append(result.Noise, result.Excluded...)
	observability.ChangeDocuments.WithLabelValues(outcomeUnassigned).Add(float64(len(unassigned)))

	return out, unassigned, nil
}
