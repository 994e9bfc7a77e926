package discovery

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/platform/observability"
	"github.com/lueurxax/sred-discovery/internal/process/dedup"
	"github.com/lueurxax/sred-discovery/internal/process/names"
)

const (
	singletonConfidenceCap = 0.5
	clusterConfidenceBoost = 1.2
	minNameGroupDocuments  = 2

	fallbackTooFew      = "too_few_signal_documents"
	fallbackUnavailable = "clustering_unavailable"
	fallbackNoClusters  = "zero_clusters"
)

func (o *Orchestrator) signalBearing(docs []domain.Document) []domain.Document {
	var out []domain.Document

	for _, d := range docs {
		if d.Signals != nil && d.Signals.Score >= o.cfg.SignalThreshold {
			out = append(out, d)
		}
	}

	return out
}

// signalFirst clusters signal-bearing documents and boosts the resulting
// candidates. When they cannot be clustered each one becomes a singleton
// with capped confidence, so no signal evidence is dropped.
func (o *Orchestrator) signalFirst(ctx context.Context, run *Run, docs []domain.Document, logger *zerolog.Logger) ([]domain.ProjectCandidate, error) {
	bearing := o.signalBearing(docs)
	if len(bearing) == 0 {
		return nil, nil
	}

	if len(bearing) < o.cfg.MinClusterSize {
		observability.DiscoveryFallbacks.WithLabelValues(fallbackTooFew).Inc()
		return o.singletons(bearing), nil
	}

	if !o.deps.Engine.Available() {
		observability.DiscoveryFallbacks.WithLabelValues(fallbackUnavailable).Inc()
		logger.Warn().Int("documents", len(bearing)).Msg("clustering unavailable, emitting singleton candidates")

		return o.singletons(bearing), nil
	}

	result, err := o.deps.Engine.Cluster(ctx, bearing, o.cfg.MinClusterSize)
	if err != nil {
		return nil, fmt.Errorf("cluster signal documents: %w", err)
	}

	run.Stats.Excluded += len(result.Excluded)

	if len(result.Clusters) == 0 {
		observability.DiscoveryFallbacks.WithLabelValues(fallbackNoClusters).Inc()
		logger.Warn().Int("documents", len(bearing)).Msg("no clusters found, emitting singleton candidates")

		return o.singletons(bearing), nil
	}

	run.Stats.Clusters += len(result.Clusters)

	cands := make([]domain.ProjectCandidate, 0, len(result.Clusters))

	for _, cluster := range result.Clusters {
		c := o.deps.Assembler.Assemble(cluster, domain.SourceSignal)
		c.Confidence = math.Min(c.Confidence*clusterConfidenceBoost, 1)
		cands = append(cands, c)
	}

	return cands, nil
}

func (o *Orchestrator) singletons(docs []domain.Document) []domain.ProjectCandidate {
	cands := make([]domain.ProjectCandidate, 0, len(docs))

	for _, d := range docs {
		c := o.deps.Assembler.Assemble([]domain.Document{d}, domain.SourceSignal)
		c.Confidence = math.Min(c.Confidence, singletonConfidenceCap)
		cands = append(cands, c)
	}

	return cands
}

// nameGroup is a name group with the documents that mention it.
type nameGroup struct {
	group names.NameGroup
	docs  []domain.Document
}

// groupByName returns the name groups spanning at least two documents.
// A document may appear in several groups.
func (o *Orchestrator) groupByName(docs []domain.Document) []nameGroup {
	var all []string

	for _, d := range docs {
		if d.Entities != nil {
			all = append(all, d.Entities.ProjectNames...)
		}
	}

	var out []nameGroup

	for _, g := range o.deps.Normalizer.GroupBySimilarity(all) {
		var members []domain.Document

		for _, d := range docs {
			if mentions(d, g) {
				members = append(members, d)
			}
		}

		if len(members) >= minNameGroupDocuments {
			out = append(out, nameGroup{group: g, docs: members})
		}
	}

	return out
}

func mentions(d domain.Document, g names.NameGroup) bool {
	if d.Entities == nil {
		return false
	}

	for _, n := range d.Entities.ProjectNames {
		if g.Has(n) {
			return true
		}
	}

	return false
}

func (o *Orchestrator) namesOnly(docs []domain.Document) []domain.ProjectCandidate {
	groups := o.groupByName(docs)
	cands := make([]domain.ProjectCandidate, 0, len(groups))

	for _, g := range groups {
		cands = append(cands, o.deps.Assembler.AssembleNamed(g.docs, g.group, domain.SourceNameBased))
	}

	return cands
}

func (o *Orchestrator) clusteringOnly(ctx context.Context, run *Run, docs []domain.Document) ([]domain.ProjectCandidate, error) {
	result, err := o.deps.Engine.Cluster(ctx, docs, o.cfg.MinClusterSize)
	if err != nil {
		return nil, fmt.Errorf("cluster documents: %w", err)
	}

	run.Stats.Excluded += len(result.Excluded)
	run.Stats.Clusters += len(result.Clusters)

	cands := make([]domain.ProjectCandidate, 0, len(result.Clusters))

	for _, cluster := range result.Clusters {
		cands = append(cands, o.deps.Assembler.Assemble(cluster, domain.SourceClustering))
	}

	return cands, nil
}

// hybrid forms name groups, pulls ungrouped documents into the group whose
// centroid they match, and clusters the remainder.
func (o *Orchestrator) hybrid(ctx context.Context, run *Run, docs []domain.Document, logger *zerolog.Logger) ([]domain.ProjectCandidate, error) {
	groups := o.groupByName(docs)

	res, err := o.deps.Engine.Builder().Resolve(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("resolve embeddings: %w", err)
	}

	run.Stats.Excluded += len(res.Excluded)

	embedded := make(map[string][]float32, len(res.Documents))
	for _, d := range res.Documents {
		embedded[d.ID] = d.Embedding
	}

	grouped := make(map[string]bool)
	anchors := make([]*domain.Anchor, 0, len(groups))

	for i, g := range groups {
		var vectors [][]float32

		for _, d := range g.docs {
			grouped[d.ID] = true

			if v := embedded[d.ID]; len(v) > 0 {
				vectors = append(vectors, v)
			}
		}

		anchors = append(anchors, &domain.Anchor{ProjectID: strconv.Itoa(i), Vector: dedup.Mean(vectors)})
	}

	var singles []*domain.Document

	for i := range res.Documents {
		if !grouped[res.Documents[i].ID] {
			singles = append(singles, &res.Documents[i])
		}
	}

	assigned := dedup.AssignToReferences(singles, anchors, float32(o.cfg.HybridMatchThreshold), logger)

	for ref, matched := range assigned.Assigned {
		i, _ := strconv.Atoi(ref)
		for _, d := range matched {
			groups[i].docs = append(groups[i].docs, *d)
		}
	}

	cands := make([]domain.ProjectCandidate, 0, len(groups))
	for _, g := range groups {
		cands = append(cands, o.deps.Assembler.AssembleNamed(g.docs, g.group, domain.SourceNameBased))
	}

	remainder := make([]domain.Document, 0, len(assigned.Unmatched))
	for _, d := range assigned.Unmatched {
		remainder = append(remainder, *d)
	}

	if len(remainder) == 0 {
		return cands, nil
	}

	if !o.deps.Engine.Available() {
		observability.DiscoveryFallbacks.WithLabelValues(fallbackUnavailable).Inc()
		logger.Warn().Int("documents", len(remainder)).Msg("clustering unavailable, leaving remainder as orphans")

		return cands, nil
	}

	clustered, err := o.clusteringOnly(ctx, run, remainder)
	if err != nil {
		return nil, err
	}

	return append(cands, clustered...), nil
}
