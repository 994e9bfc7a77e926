package clustering

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	coreerrors "github.com/lueurxax/sred-discovery/internal/core/errors"
	"github.com/lueurxax/sred-discovery/internal/platform/observability"
	"github.com/lueurxax/sred-discovery/internal/process/features"
)

// Result is the outcome of one clustering pass. Every input document lands
// in exactly one of Clusters, Noise or Excluded.
type Result struct {
	Clusters [][]domain.Document
	// Noise holds IDs of usable documents outside every cluster.
	Noise []string
	// Excluded holds IDs of documents without a usable embedding.
	Excluded []string
}

// Engine builds feature vectors and runs a clustering algorithm over them.
type Engine struct {
	builder   *features.Builder
	algorithm Algorithm
	logger    *zerolog.Logger
}

// NewEngine creates an engine. A nil algorithm is treated as Unavailable.
func NewEngine(builder *features.Builder, algorithm Algorithm, logger *zerolog.Logger) *Engine {
	if algorithm == nil {
		algorithm = Unavailable{}
	}

	if builder == nil {
		builder = features.NewBuilder(nil)
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Engine{builder: builder, algorithm: algorithm, logger: logger}
}

// Available reports whether the configured algorithm can run.
func (e *Engine) Available() bool {
	return e.algorithm.Available()
}

// Builder returns the feature builder, for callers that only need embeddings.
func (e *Engine) Builder() *features.Builder {
	return e.builder
}

// Cluster groups docs. With fewer usable documents than minClusterSize it
// returns zero clusters and no error. Noise is never folded into a cluster.
func (e *Engine) Cluster(ctx context.Context, docs []domain.Document, minClusterSize int) (Result, error) {
	if !e.algorithm.Available() {
		return Result{}, fmt.Errorf("cluster documents: %w", coreerrors.ErrDependencyUnavailable)
	}

	if minClusterSize <= 0 {
		minClusterSize = DefaultMinClusterSize
	}

	vectors, excluded, err := e.builder.Build(ctx, docs)
	if err != nil {
		return Result{}, fmt.Errorf("build features: %w", err)
	}

	result := Result{Excluded: excluded}

	if len(vectors) < minClusterSize {
		for _, v := range vectors {
			result.Noise = append(result.Noise, v.Document.ID)
		}

		e.logger.Debug().Int("usable", len(vectors)).Int("min_cluster_size", minClusterSize).Msg("too few documents to cluster")
		observability.ClustersFound.Observe(0)

		return result, nil
	}

	points := make([][]float64, len(vectors))
	for i, v := range vectors {
		points[i] = v.Values
	}

	labels, err := e.algorithm.Labels(Standardize(points), minClusterSize)
	if err != nil {
		return Result{}, fmt.Errorf("label points: %w", err)
	}

	byLabel := make(map[int]int)

	for i, label := range labels {
		if label == Noise {
			result.Noise = append(result.Noise, vectors[i].Document.ID)
			continue
		}

		idx, ok := byLabel[label]
		if !ok {
			idx = len(result.Clusters)
			byLabel[label] = idx
			result.Clusters = append(result.Clusters, nil)
		}

		result.Clusters[idx] = append(result.Clusters[idx], vectors[i].Document)
	}

	observability.ClustersFound.Observe(float64(len(result.Clusters)))
	e.logger.Debug().
		Int("clusters", len(result.Clusters)).
		Int("noise", len(result.Noise)).
		Int("excluded", len(result.Excluded)).
		Msg("clustering pass complete")

	return result, nil
}
