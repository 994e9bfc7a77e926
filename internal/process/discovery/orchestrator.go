// Package discovery runs a claim's documents through signal detection,
// grouping, assembly and deduplication to produce tiered project candidates.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	coreerrors "github.com/lueurxax/sred-discovery/internal/core/errors"
	"github.com/lueurxax/sred-discovery/internal/platform/htmlutils"
	"github.com/lueurxax/sred-discovery/internal/platform/observability"
	"github.com/lueurxax/sred-discovery/internal/process/assembly"
	"github.com/lueurxax/sred-discovery/internal/process/clustering"
	"github.com/lueurxax/sred-discovery/internal/process/dedup"
	"github.com/lueurxax/sred-discovery/internal/process/entities"
	"github.com/lueurxax/sred-discovery/internal/process/names"
	"github.com/lueurxax/sred-discovery/internal/process/signals"
)

// Log field names.
const (
	logFieldRunID    = "run_id"
	logFieldClaimID  = "claim_id"
	logFieldStrategy = "strategy"
	logFieldStatus   = "status"
)

// Defaults.
const (
	DefaultSignalThreshold      = 0.1
	DefaultHybridMatchThreshold = 0.75
)

// DocumentSource loads the documents attached to a claim.
type DocumentSource interface {
	ListDocuments(ctx context.Context, claimID string) ([]domain.Document, error)
}

// Dependencies are the engine components a run uses. Nil fields get default
// instances, except Engine which defaults to the unavailable variant.
type Dependencies struct {
	Detector   *signals.Detector
	Extractor  *entities.Extractor
	Normalizer *names.Normalizer
	Engine     *clustering.Engine
	Assembler  *assembly.Assembler
}

// Config tunes discovery.
type Config struct {
	Strategy             Strategy
	MinClusterSize       int
	SignalThreshold      float64
	HybridMatchThreshold float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Strategy:             StrategySignalFirst,
		MinClusterSize:       clustering.DefaultMinClusterSize,
		SignalThreshold:      DefaultSignalThreshold,
		HybridMatchThreshold: DefaultHybridMatchThreshold,
	}
}

// RunOptions override configuration for a single run.
type RunOptions struct {
	// Strategy overrides Config.Strategy when set.
	Strategy Strategy
	// Backfill recomputes missing signal profiles and entities.
	Backfill bool
}

// Orchestrator executes discovery runs. Runs share no mutable state, so one
// orchestrator may serve concurrent callers.
type Orchestrator struct {
	source DocumentSource
	deps   Dependencies
	cfg    Config
	logger *zerolog.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(source DocumentSource, deps Dependencies, cfg Config, logger *zerolog.Logger) *Orchestrator {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if deps.Detector == nil {
		deps.Detector = signals.NewDetector()
	}

	if deps.Extractor == nil {
		deps.Extractor = entities.NewExtractor()
	}

	if deps.Normalizer == nil {
		deps.Normalizer = names.NewNormalizer()
	}

	if deps.Engine == nil {
		deps.Engine = clustering.NewEngine(nil, nil, logger)
	}

	if deps.Assembler == nil {
		deps.Assembler = assembly.NewAssembler(deps.Normalizer, logger)
	}

	defaults := DefaultConfig()

	if cfg.Strategy == "" {
		cfg.Strategy = defaults.Strategy
	}

	if cfg.MinClusterSize <= 0 {
		cfg.MinClusterSize = defaults.MinClusterSize
	}

	if cfg.SignalThreshold <= 0 {
		cfg.SignalThreshold = defaults.SignalThreshold
	}

	if cfg.HybridMatchThreshold <= 0 {
		cfg.HybridMatchThreshold = defaults.HybridMatchThreshold
	}

	return &Orchestrator{source: source, deps: deps, cfg: cfg, logger: logger}
}

// Run discovers project candidates for claimID.
//
// Invalid input (blank claim, unknown strategy, no documents) and a
// requested-but-absent clustering capability are returned before a run
// exists, with a nil Run. Any later error or panic yields a failed Run and a
// *coreerrors.RunError.
func (o *Orchestrator) Run(ctx context.Context, claimID string, opts RunOptions) (*Run, error) {
	strategy := o.cfg.Strategy
	if opts.Strategy != "" {
		strategy = opts.Strategy
	}

	strategy, err := ParseStrategy(string(strategy))
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(claimID) == "" {
		return nil, fmt.Errorf("claim id is required: %w", coreerrors.ErrInvalidInput)
	}

	if strategy == StrategyClusteringOnly && !o.deps.Engine.Available() {
		return nil, fmt.Errorf("strategy %s: %w", strategy, coreerrors.ErrDependencyUnavailable)
	}

	run := &Run{
		ID:        uuid.NewString(),
		ClaimID:   claimID,
		Strategy:  strategy,
		StartedAt: time.Now().UTC(),
	}

	logger := o.logger.With().
		Str(logFieldRunID, run.ID).
		Str(logFieldClaimID, claimID).
		Str(logFieldStrategy, string(strategy)).
		Logger()

	o.transition(run, StatusFetching, &logger)

	docs, err := o.source.ListDocuments(ctx, claimID)
	if err != nil {
		return run, o.fail(run, fmt.Errorf("fetch documents: %w", err), &logger)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("claim %s has no documents: %w", claimID, coreerrors.ErrInvalidInput)
	}

	// Runs are not cancellable once documents are in hand.
	runCtx := context.WithoutCancel(ctx)

	if err := o.execute(runCtx, run, docs, opts, &logger); err != nil {
		return run, o.fail(run, err, &logger)
	}

	o.finish(run, StatusCompleted)
	o.transition(run, StatusCompleted, &logger)

	for tier, cands := range map[domain.ConfidenceTier][]domain.ProjectCandidate{
		domain.TierHigh:   run.High,
		domain.TierMedium: run.Medium,
		domain.TierLow:    run.Low,
	} {
		observability.DiscoveryCandidates.WithLabelValues(string(tier)).Add(float64(len(cands)))
	}

	observability.DiscoveryOrphans.Add(float64(len(run.Orphans)))

	logger.Info().
		Int("high", len(run.High)).
		Int("medium", len(run.Medium)).
		Int("low", len(run.Low)).
		Int("orphans", len(run.Orphans)).
		Msg("discovery run completed")

	return run, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *Run, docs []domain.Document, opts RunOptions, logger *zerolog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during %s: %v", run.Status, r)
		}
	}()

	docs = append([]domain.Document(nil), docs...)

	if opts.Backfill {
		o.transition(run, StatusBackfilling, logger)
		run.Backfilled = o.backfill(docs)
	}

	run.Stats.Documents = len(docs)
	run.Stats.SignalBearing = len(o.signalBearing(docs))

	o.transition(run, StatusDiscovering, logger)

	cands, err := o.discover(ctx, run, docs, logger)
	if err != nil {
		return err
	}

	o.transition(run, StatusDeduplicating, logger)

	cands = dedup.MergeCandidates(cands, o.deps.Normalizer, logger)

	o.transition(run, StatusCategorizing, logger)

	run.High, run.Medium, run.Low = categorize(cands)
	run.Orphans = orphansOf(docs, cands)

	return nil
}

func (o *Orchestrator) discover(ctx context.Context, run *Run, docs []domain.Document, logger *zerolog.Logger) ([]domain.ProjectCandidate, error) {
	switch run.Strategy {
	case StrategyNamesOnly:
		return o.namesOnly(docs), nil
	case StrategyClusteringOnly:
		return o.clusteringOnly(ctx, run, docs)
	case StrategyHybrid:
		return o.hybrid(ctx, run, docs, logger)
	default:
		return o.signalFirst(ctx, run, docs, logger)
	}
}

// backfill fills missing profiles in place and returns the touched documents.
func (o *Orchestrator) backfill(docs []domain.Document) []domain.Document {
	var touched []domain.Document

	for i := range docs {
		if docs[i].Signals != nil && docs[i].Entities != nil {
			continue
		}

		text := htmlutils.PlainText(docs[i].Text)

		if docs[i].Signals == nil {
			profile := o.deps.Detector.Detect(text)
			docs[i].Signals = &profile
		}

		if docs[i].Entities == nil {
			ents := o.deps.Extractor.Extract(text)
			docs[i].Entities = &ents
		}

		touched = append(touched, docs[i])
	}

	observability.SignalsBackfilled.Add(float64(len(touched)))

	return touched
}

func (o *Orchestrator) transition(run *Run, status Status, logger *zerolog.Logger) {
	run.Status = status
	logger.Debug().Str(logFieldStatus, string(status)).Msg("run state")
}

func (o *Orchestrator) finish(run *Run, status Status) {
	now := time.Now().UTC()
	run.CompletedAt = &now
	run.Status = status

	observability.DiscoveryRuns.WithLabelValues(string(run.Strategy), string(status)).Inc()
	observability.DiscoveryRunDuration.WithLabelValues(string(run.Strategy)).Observe(now.Sub(run.StartedAt).Seconds())
}

// fail records err on the run and drops any partial results.
func (o *Orchestrator) fail(run *Run, err error, logger *zerolog.Logger) error {
	logger.Error().Err(err).Str(logFieldStatus, string(run.Status)).Msg("discovery run failed")

	run.Message = err.Error()
	run.High, run.Medium, run.Low = nil, nil, nil
	run.Orphans = nil
	run.Backfilled = nil

	o.finish(run, StatusFailed)

	return &coreerrors.RunError{RunID: run.ID, Message: run.Message}
}
