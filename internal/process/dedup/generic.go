package dedup

import (
	"github.com/rs/zerolog"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

// Log key constants for matching.
const (
	logKeyItemID  = "item_id"
	logKeyMatchOf = "match_of"
)

// Match is the best reference found for an embedding.
type Match[T domain.Embeddable] struct {
	Item       T
	Similarity float32
	Found      bool
}

// BestMatch returns the reference most similar to embedding. Found is set only
// when that similarity reaches threshold. References without an embedding
// are skipped; ties keep the earlier reference.
//
// This generic implementation works with any type implementing
// domain.Embeddable, so documents and project anchors share one code path.
func BestMatch[T domain.Embeddable](embedding []float32, references []T, threshold float32) Match[T] {
	var best Match[T]

	if len(embedding) == 0 {
		return best
	}

	bestSim := float32(-2)

	for _, ref := range references {
		refEmbedding := ref.GetEmbedding()
		if len(refEmbedding) == 0 {
			continue
		}

		if sim := CosineSimilarity(embedding, refEmbedding); sim > bestSim {
			bestSim = sim
			best.Item = ref
			best.Similarity = sim
		}
	}

	best.Found = bestSim >= threshold

	return best
}

// AssignResult contains the outcome of matching items against references.
type AssignResult[T domain.Embeddable] struct {
	// Assigned maps reference IDs to the items matched to them, in input order.
	Assigned map[string][]T

	// Similarity records the winning similarity per assigned item ID.
	Similarity map[string]float32

	// Unmatched holds items below threshold or without an embedding.
	Unmatched []T
}

// AssignToReferences matches every item to its best reference at or above
// threshold. Use this when a batch of items must be routed to existing groups.
func AssignToReferences[T, R domain.Embeddable](items []T, references []R, threshold float32, logger *zerolog.Logger) AssignResult[T] {
	result := AssignResult[T]{
		Assigned:   make(map[string][]T),
		Similarity: make(map[string]float32),
	}

	for _, item := range items {
		m := BestMatch(item.GetEmbedding(), references, threshold)
		if !m.Found {
			result.Unmatched = append(result.Unmatched, item)
			continue
		}

		refID := m.Item.GetID()
		result.Assigned[refID] = append(result.Assigned[refID], item)
		result.Similarity[item.GetID()] = m.Similarity

		if logger != nil {
			logger.Debug().
				Str(logKeyItemID, item.GetID()).
				Str(logKeyMatchOf, refID).
				Float32("similarity", m.Similarity).
				Msg("Assigned to reference")
		}
	}

	return result
}
