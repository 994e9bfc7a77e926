// Package features turns documents into fixed-width numeric vectors for
// density clustering.
package features

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/platform/observability"
	"github.com/lueurxax/sred-discovery/internal/process/dedup"
)

// Vector layout: temporal block, then semantic block, then team block.
const (
	TemporalDims = 5
	SemanticDims = 50
	TeamDims     = 10
	Dims         = TemporalDims + SemanticDims + TeamDims
)

const (
	defaultFetchRPS         = 20
	defaultFetchBurst       = 5
	defaultFetchConcurrency = 8

	daysPerYear     = 365.25
	hoursPerDay     = 24
	monthsPerYear   = 12
	quartersPerYear = 4
	monthsPerQtr    = 3

	exclusionNoEmbedding = "no_embedding"
	exclusionFetchFailed = "fetch_failed"

	logFieldDocumentID = "document_id"
)

// EmbeddingSource supplies mean embeddings for documents that arrive
// without one.
type EmbeddingSource interface {
	DocumentEmbedding(ctx context.Context, documentID string) ([]float32, error)
}

// Builder computes document vectors. It is stateless between calls apart
// from the shared fetch rate limiter.
type Builder struct {
	source      EmbeddingSource
	limiter     *rate.Limiter
	concurrency int
	logger      *zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithRateLimit bounds embedding fetches to rps requests per second.
func WithRateLimit(rps float64) Option {
	return func(b *Builder) {
		if rps > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(rps), defaultFetchBurst)
		}
	}
}

// WithConcurrency bounds the number of in-flight embedding fetches.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithLogger sets the logger used for fetch warnings.
func WithLogger(logger *zerolog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a builder. source may be nil, in which case documents
// without a cached embedding are simply excluded.
func NewBuilder(source EmbeddingSource, opts ...Option) *Builder {
	nop := zerolog.Nop()

	b := &Builder{
		source:      source,
		limiter:     rate.NewLimiter(rate.Limit(defaultFetchRPS), defaultFetchBurst),
		concurrency: defaultFetchConcurrency,
		logger:      &nop,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Vector is one document's feature vector.
type Vector struct {
	Document domain.Document
	Values   []float64
}

// Resolution is the outcome of embedding resolution.
type Resolution struct {
	// Documents carry a populated Embedding, in input order.
	Documents []domain.Document
	// Excluded lists IDs with no usable embedding.
	Excluded []string
}

// Resolve ensures every document has a mean embedding, fetching missing ones
// from the source. A failed fetch excludes that document only; the error is
// logged and counted but not returned. The only error is context
// cancellation while waiting on the rate limiter.
func (b *Builder) Resolve(ctx context.Context, docs []domain.Document) (Resolution, error) {
	fetched := make([][]float32, len(docs))
	failed := make([]bool, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i := range docs {
		if docs[i].HasEmbedding() || b.source == nil {
			continue
		}

		g.Go(func() error {
			if err := b.limiter.Wait(gctx); err != nil {
				return fmt.Errorf("embedding rate limit: %w", err)
			}

			v, err := b.source.DocumentEmbedding(gctx, docs[i].ID)
			if err != nil {
				observability.EmbeddingFetches.WithLabelValues("error").Inc()
				b.logger.Warn().Err(err).Str(logFieldDocumentID, docs[i].ID).Msg("embedding fetch failed, excluding document")

				failed[i] = true

				return nil
			}

			observability.EmbeddingFetches.WithLabelValues("success").Inc()

			fetched[i] = v

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Resolution{}, err
	}

	out := Resolution{Documents: make([]domain.Document, 0, len(docs))}

	for i, doc := range docs {
		emb := doc.Embedding
		if len(emb) == 0 {
			emb = dedup.Mean(doc.ChunkEmbeddings)
		}

		if len(emb) == 0 {
			emb = fetched[i]
		}

		if len(emb) == 0 {
			reason := exclusionNoEmbedding
			if failed[i] {
				reason = exclusionFetchFailed
			}

			observability.DocumentsExcluded.WithLabelValues(reason).Inc()

			out.Excluded = append(out.Excluded, doc.ID)

			continue
		}

		doc.Embedding = emb
		out.Documents = append(out.Documents, doc)
	}

	return out, nil
}

// Build resolves embeddings and computes vectors for every usable document.
// Undated documents receive the mean temporal block of the dated ones.
// Extracted text dates stand in for a missing document date.
func (b *Builder) Build(ctx context.Context, docs []domain.Document) ([]Vector, []string, error) {
	res, err := b.Resolve(ctx, docs)
	if err != nil {
		return nil, nil, err
	}

	vectors := make([]Vector, 0, len(res.Documents))
	meanTemporal := make([]float64, TemporalDims)
	dated := 0

	for _, doc := range res.Documents {
		date := doc.EffectiveDate()
		if date == nil {
			continue
		}

		for i, x := range Temporal(*date) {
			meanTemporal[i] += x
		}

		dated++
	}

	if dated > 0 {
		for i := range meanTemporal {
			meanTemporal[i] /= float64(dated)
		}
	}

	for _, doc := range res.Documents {
		values := make([]float64, 0, Dims)

		if date := doc.EffectiveDate(); date != nil {
			values = append(values, Temporal(*date)...)
		} else {
			values = append(values, meanTemporal...)
		}

		values = append(values, Semantic(doc.Embedding)...)
		values = append(values, Team(contributorNames(doc))...)

		vectors = append(vectors, Vector{Document: doc, Values: values})
	}

	return vectors, res.Excluded, nil
}

// Temporal encodes a date as fractional years since 1970 plus sine and
// cosine of month and quarter, so December and January sit close together.
func Temporal(t time.Time) []float64 {
	t = t.UTC()
	years := t.Sub(time.Unix(0, 0).UTC()).Hours() / hoursPerDay / daysPerYear

	monthAngle := 2 * math.Pi * float64(int(t.Month())-1) / monthsPerYear
	quarter := (int(t.Month()) - 1) / monthsPerQtr
	quarterAngle := 2 * math.Pi * float64(quarter) / quartersPerYear

	return []float64{
		years,
		math.Sin(monthAngle),
		math.Cos(monthAngle),
		math.Sin(quarterAngle),
		math.Cos(quarterAngle),
	}
}

// Semantic returns the first SemanticDims values of the embedding, zero padded.
func Semantic(embedding []float32) []float64 {
	out := make([]float64, SemanticDims)
	for i := 0; i < SemanticDims && i < len(embedding); i++ {
		out[i] = float64(embedding[i])
	}

	return out
}

// Team sets one hashed bucket per contributor name.
func Team(names []string) []float64 {
	out := make([]float64, TeamDims)

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}

		out[xxhash.Sum64String(key)%TeamDims] = 1
	}

	return out
}

func contributorNames(doc domain.Document) []string {
	if doc.Entities == nil {
		return nil
	}

	names := make([]string, 0, len(doc.Entities.Contributors))
	for _, c := range doc.Entities.Contributors {
		names = append(names, c.Name)
	}

	return names
}
