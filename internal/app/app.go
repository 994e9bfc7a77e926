// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Discover mode: One discovery run over a claim, persisted and printed
//   - Changes mode: Change detection for documents not yet in a project
//   - Apply mode: Change detection followed by idempotent association writes
//   - Watch mode: Periodic change detection with health and metrics endpoints
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/platform/config"
	"github.com/lueurxax/sred-discovery/internal/platform/observability"
	"github.com/lueurxax/sred-discovery/internal/platform/worker"
	"github.com/lueurxax/sred-discovery/internal/process/assembly"
	"github.com/lueurxax/sred-discovery/internal/process/changes"
	"github.com/lueurxax/sred-discovery/internal/process/clustering"
	"github.com/lueurxax/sred-discovery/internal/process/discovery"
	"github.com/lueurxax/sred-discovery/internal/process/features"
	"github.com/lueurxax/sred-discovery/internal/process/names"
	"github.com/lueurxax/sred-discovery/internal/process/signals"
	db "github.com/lueurxax/sred-discovery/internal/storage"
)

const (
	logFieldClaimID    = "claim_id"
	logFieldRunID      = "run_id"
	logFieldDocuments  = "documents"
	logFieldAdditions  = "additions"
	logFieldNew        = "new_projects"
	logFieldImpacts    = "narrative_impacts"
	logFieldUnassigned = "unassigned"

	watchWorkerName = "change-watch"
	watchTimeout    = 10 * time.Minute

	tickStatusOK      = "ok"
	tickStatusIdle    = "idle"
	tickStatusLocked  = "locked"
	tickStatusFailure = "error"
)

// Repository is the storage the modes need.
type Repository interface {
	discovery.DocumentSource
	features.EmbeddingSource
	changes.AssociationStore
	observability.Pinger

	ListNewDocuments(ctx context.Context, claimID string, since time.Time) ([]domain.Document, error)
	LatestDocumentTime(ctx context.Context, claimID string) (time.Time, error)
	ListExistingProjects(ctx context.Context, claimID string, maxMembers int) ([]domain.ExistingProject, error)
	SaveDocumentAnalysis(ctx context.Context, doc domain.Document) error
	SaveRun(ctx context.Context, r db.RunRecord) error
	TryAcquireAdvisoryLock(ctx context.Context, lockID int64) (func(), bool, error)
}

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg          *config.Config
	repo         Repository
	logger       *zerolog.Logger
	out          io.Writer
	orchestrator *discovery.Orchestrator
	detector     *changes.Detector
	maxMembers   int
}

// New creates a new App instance and builds the engine from cfg.
func New(cfg *config.Config, repo Repository, logger *zerolog.Logger) *App {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	builder := features.NewBuilder(repo,
		features.WithRateLimit(cfg.EmbeddingFetchRPS),
		features.WithConcurrency(cfg.EmbeddingFetchConcurrency),
		features.WithLogger(logger),
	)

	var algorithm clustering.Algorithm = clustering.Unavailable{}
	if cfg.ClusteringEnabled {
		algorithm = clustering.HDBSCAN{}
	}

	engine := clustering.NewEngine(builder, algorithm, logger)
	normalizer := names.NewNormalizer(names.WithThreshold(cfg.NameSimilarityThreshold))
	assembler := assembly.NewAssembler(normalizer, logger)
	detector := signals.NewDetector()

	strategy, err := discovery.ParseStrategy(cfg.DiscoveryStrategy)
	if err != nil {
		logger.Warn().Err(err).Msg("falling back to signal_first")
	}

	orchestrator := discovery.NewOrchestrator(repo, discovery.Dependencies{
		Detector:   detector,
		Normalizer: normalizer,
		Engine:     engine,
		Assembler:  assembler,
	}, discovery.Config{
		Strategy:             strategy,
		MinClusterSize:       cfg.MinClusterSize,
		SignalThreshold:      cfg.SignalThreshold,
		HybridMatchThreshold: cfg.HybridMatchThreshold,
	}, logger)

	changeCfg := changes.DefaultConfig()
	changeCfg.MatchThreshold = cfg.ChangeMatchThreshold
	changeCfg.HighConfidence = cfg.ChangeHighConfidence
	changeCfg.MinClusterSize = cfg.MinClusterSize

	return &App{
		cfg:          cfg,
		repo:         repo,
		logger:       logger,
		out:          os.Stdout,
		orchestrator: orchestrator,
		detector:     changes.NewDetector(changes.Dependencies{Detector: detector, Engine: engine, Assembler: assembler}, changeCfg, logger),
		maxMembers:   changeCfg.MaxAnchorMembers,
	}
}

// SetOutput redirects JSON results, stdout by default.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// RunDiscover runs discovery over a claim, stores the run and any
// backfilled analyses, and prints the run. A failed run is still stored and
// printed before its error is returned.
func (a *App) RunDiscover(ctx context.Context, claimID, strategy string, backfill bool) error {
	opts := discovery.RunOptions{Backfill: backfill || a.cfg.SignalBackfill}

	if strategy != "" {
		parsed, err := discovery.ParseStrategy(strategy)
		if err != nil {
			return err
		}

		opts.Strategy = parsed
	}

	a.logger.Info().Str(logFieldClaimID, claimID).Str("strategy", string(opts.Strategy)).Msg("Starting discovery")

	run, runErr := a.orchestrator.Run(ctx, claimID, opts)
	if run == nil {
		return fmt.Errorf("discovery: %w", runErr)
	}

	//nolint:contextcheck // results are stored even when the caller gives up
	if err := a.persistRun(context.WithoutCancel(ctx), run); err != nil {
		return errors.Join(runErr, err)
	}

	if err := a.writeJSON(run); err != nil {
		return errors.Join(runErr, err)
	}

	return runErr
}

func (a *App) persistRun(ctx context.Context, run *discovery.Run) error {
	for _, doc := range run.Backfilled {
		if err := a.repo.SaveDocumentAnalysis(ctx, doc); err != nil {
			return fmt.Errorf("save backfilled document %s: %w", doc.ID, err)
		}
	}

	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	if err := a.repo.SaveRun(ctx, db.RunRecord{
		ID:          run.ID,
		ClaimID:     run.ClaimID,
		Strategy:    string(run.Strategy),
		Status:      string(run.Status),
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		Message:     run.Message,
		Payload:     payload,
	}); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	a.logger.Info().Str(logFieldRunID, run.ID).Int(logFieldDocuments, run.Stats.Documents).
		Int("backfilled", len(run.Backfilled)).Msg("Discovery run stored")

	return nil
}

// RunChanges prints the change set for documents of a claim created after
// since that belong to no project yet.
func (a *App) RunChanges(ctx context.Context, claimID string, since time.Time) error {
	set, _, err := a.detectChanges(ctx, claimID, since)
	if err != nil {
		return err
	}

	return a.writeJSON(set)
}

// ApplyOutput is what apply mode prints.
type ApplyOutput struct {
	Changes *domain.ChangeSet   `json:"changes"`
	Applied changes.ApplyResult `json:"applied"`
}

// RunApply detects changes and writes their additions as associations.
func (a *App) RunApply(ctx context.Context, claimID string, since time.Time) error {
	set, _, err := a.detectChanges(ctx, claimID, since)
	if err != nil {
		return err
	}

	res, err := changes.Apply(ctx, a.repo, set)
	if err != nil {
		return fmt.Errorf("apply changes: %w", err)
	}

	a.logger.Info().Str(logFieldClaimID, claimID).Int("created", res.Created).Int("skipped", res.Skipped).Msg("Changes applied")

	return a.writeJSON(ApplyOutput{Changes: set, Applied: res})
}

// detectChanges returns the change set and the newest created_at among the
// documents it covered.
func (a *App) detectChanges(ctx context.Context, claimID string, since time.Time) (*domain.ChangeSet, time.Time, error) {
	docs, err := a.repo.ListNewDocuments(ctx, claimID, since)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("list new documents: %w", err)
	}

	existing, err := a.repo.ListExistingProjects(ctx, claimID, a.maxMembers)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("list existing projects: %w", err)
	}

	set, err := a.detector.Detect(ctx, existing, docs)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("detect changes: %w", err)
	}

	latest := since

	for _, d := range docs {
		if d.CreatedAt.After(latest) {
			latest = d.CreatedAt
		}
	}

	a.logger.Info().
		Str(logFieldClaimID, claimID).
		Int(logFieldDocuments, len(docs)).
		Int(logFieldAdditions, len(set.Additions)).
		Int(logFieldNew, len(set.NewProjects)).
		Int(logFieldImpacts, len(set.NarrativeImpacts)).
		Int(logFieldUnassigned, len(set.Unassigned)).
		Msg("Change detection finished")

	return set, latest, nil
}

// RunWatch polls for new documents every WatchInterval and prints a change
// set for each batch. It serves health and metrics while running.
func (a *App) RunWatch(ctx context.Context, claimID string) error {
	a.logger.Info().Str(logFieldClaimID, claimID).Dur("interval", a.cfg.WatchInterval).Msg("Starting watch mode")

	go func() {
		srv := observability.NewServer(a.repo, a.cfg.HealthPort, a.logger)
		if err := srv.Start(ctx); err != nil {
			a.logger.Error().Err(err).Msg("health check server error")
		}
	}()

	cursor, err := a.repo.LatestDocumentTime(ctx, claimID)
	if err != nil {
		return fmt.Errorf("initial watch cursor: %w", err)
	}

	err = worker.Loop(ctx, worker.Config{
		Name:         watchWorkerName,
		PollInterval: a.cfg.WatchInterval,
		Logger:       a.logger,
		Process: func(ctx context.Context) error {
			next, err := a.watchTick(ctx, claimID, cursor)
			if err != nil {
				return err
			}

			cursor = next

			return nil
		},
		OnError: func(err error) bool {
			observability.WatchTicks.WithLabelValues(tickStatusFailure).Inc()
			a.logger.Warn().Err(err).Str(logFieldClaimID, claimID).Msg("watch tick failed")

			return true
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch loop: %w", err)
	}

	return nil
}

// watchTick runs one detection pass under the claim's advisory lock and
// returns the advanced cursor.
func (a *App) watchTick(ctx context.Context, claimID string, cursor time.Time) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, watchTimeout)
	defer cancel()

	release, acquired, err := a.repo.TryAcquireAdvisoryLock(ctx, db.ClaimLockID(claimID))
	if err != nil {
		return cursor, fmt.Errorf("watch lock: %w", err)
	}

	if !acquired {
		observability.WatchTicks.WithLabelValues(tickStatusLocked).Inc()
		a.logger.Debug().Str(logFieldClaimID, claimID).Msg("claim locked by another watcher")

		return cursor, nil
	}
	defer release()

	set, next, err := a.detectChanges(ctx, claimID, cursor)
	if err != nil {
		return cursor, err
	}

	if !next.After(cursor) {
		observability.WatchTicks.WithLabelValues(tickStatusIdle).Inc()
		return cursor, nil
	}

	if err := a.writeJSON(set); err != nil {
		return cursor, err
	}

	observability.WatchTicks.WithLabelValues(tickStatusOK).Inc()

	return next, nil
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
