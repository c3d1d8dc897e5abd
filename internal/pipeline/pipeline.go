package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/argo-profile-etl/internal/domain"
	"github.com/couchcryptid/argo-profile-etl/internal/observability"
)

// ErrPersist marks a sink failure. The file's records may be partially written.
var ErrPersist = errors.New("persist failed")

// Opener opens one profile file.
type Opener interface {
	Open(path string) (domain.Container, error)
}

// Sink is the append-only record store. Inserting an existing _id must fail
// rather than overwrite.
type Sink interface {
	InsertMeta(ctx context.Context, rec domain.MetaRecord) error
	InsertProfile(ctx context.Context, rec domain.ProfileRecord) error
}

// Pipeline converts profile files one at a time and hands the records to a Sink.
type Pipeline struct {
	opener  Opener
	sink    Sink
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline reading through opener and writing to sink.
func New(opener Opener, sink Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		opener:  opener,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once the pipeline has converted at least one file.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not converted any files yet")
	}
	return nil
}

// Run converts paths in order with a fresh metadata cache. A file that cannot
// be converted or persisted is reported in the Summary and the batch moves on.
// Run only returns an error when ctx is cancelled, and it stops between files.
func (p *Pipeline) Run(ctx context.Context, paths []string) (Summary, error) {
	s := Summary{RunID: uuid.NewString(), Files: len(paths)}
	logger := p.logger.With("run_id", s.RunID)
	logger.Info("batch started", "files", len(paths))

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := clock.Now()
	cache := domain.NewMetaCache()

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			s.Duration = clock.Since(start)
			s.MetadataCreated = cache.Len()
			logger.Warn("batch interrupted", "remaining", len(paths)-i, "reason", err)
			return s, fmt.Errorf("batch interrupted after %d of %d files: %w", i, len(paths), err)
		}

		fileStart := clock.Now()
		rec, err := p.processFile(ctx, cache, path, logger)
		p.metrics.FileDuration.Observe(clock.Since(fileStart).Seconds())

		switch {
		case err == nil:
			s.Converted++
			p.metrics.FilesTotal.WithLabelValues(observability.OutcomeConverted).Inc()
			p.ready.Store(true)
			logger.Info("file converted",
				"file", path,
				"profile_id", rec.ID,
				"metadata_id", rec.MetadataID(),
				"progress", fmt.Sprintf("%d/%d", i+1, len(paths)),
			)
		case errors.Is(err, ErrPersist):
			s.Failed++
			s.Problems = append(s.Problems, Problem{File: path, Reason: err.Error(), Fatal: true})
			p.metrics.FilesTotal.WithLabelValues(observability.OutcomeFailed).Inc()
			logger.Error("file not persisted", "file", path, "error", err)
		default:
			s.Skipped++
			s.Problems = append(s.Problems, Problem{File: path, Reason: err.Error()})
			p.metrics.FilesTotal.WithLabelValues(observability.OutcomeSkipped).Inc()
			logger.Warn("file skipped", "file", path, "reason", err)
		}
	}

	s.Duration = clock.Since(start)
	s.MetadataCreated = cache.Len()
	p.metrics.BatchDuration.Observe(s.Duration.Seconds())
	logger.Info("batch finished",
		"converted", s.Converted,
		"skipped", s.Skipped,
		"failed", s.Failed,
		"metadata_created", s.MetadataCreated,
		"duration", s.Duration,
	)
	return s, nil
}

// ProcessFile converts one file against cache and persists its records. A new
// MetaRecord is written before the profile; if that write fails the record is
// retracted from cache so a later run mints it again. A MetaRecord whose insert
// succeeded stays cached even when the profile insert then fails.
func (p *Pipeline) ProcessFile(ctx context.Context, cache *domain.MetaCache, path string) (domain.ProfileRecord, error) {
	return p.processFile(ctx, cache, path, p.logger)
}

func (p *Pipeline) processFile(ctx context.Context, cache *domain.MetaCache, path string, logger *slog.Logger) (domain.ProfileRecord, error) {
	logger = logger.With("file", path)

	c, err := p.opener.Open(path)
	if err != nil {
		return domain.ProfileRecord{}, fmt.Errorf("open: %w", err)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			logger.Warn("close file failed", "error", cerr)
		}
	}()

	fields, err := domain.ExtractFields(c, logger)
	if err != nil {
		return domain.ProfileRecord{}, fmt.Errorf("extract: %w", err)
	}
	logger.Debug("dimensions read",
		"n_prof", fields.Dims.Prof,
		"n_param", fields.Dims.Param,
		"n_levels", fields.Dims.Levels,
		"n_calib", fields.Dims.Calib,
		"n_history", fields.Dims.History,
	)
	if len(fields.Degraded) > 0 {
		p.metrics.DegradedFields.Add(float64(len(fields.Degraded)))
		logger.Warn("fields replaced by fallback values", "fields", fields.Degraded)
	}

	meta, created := cache.Resolve(fields.Meta)
	logger = logger.With("metadata_id", meta.ID)
	if created {
		if err := p.sink.InsertMeta(ctx, meta); err != nil {
			cache.Retract(meta.ID)
			p.metrics.MetadataRetracted.Inc()
			return domain.ProfileRecord{}, fmt.Errorf("%w: metadata %s: %w", ErrPersist, meta.ID, err)
		}
		p.metrics.MetadataCreated.Inc()
		logger.Debug("metadata created")
	}

	rec := domain.Assemble(fields, meta.ID)
	if err := p.sink.InsertProfile(ctx, rec); err != nil {
		return rec, fmt.Errorf("%w: profile %s: %w", ErrPersist, rec.ID, err)
	}
	p.metrics.ProfilesPersisted.Inc()
	logger.Debug("profile persisted", "profile_id", rec.ID, "data_mode", rec.DataMode)
	return rec, nil
}

// Summary reports the outcome of one Run.
type Summary struct {
	RunID           string
	Files           int
	Converted       int
	Skipped         int
	Failed          int
	MetadataCreated int
	Duration        time.Duration
	Problems        []Problem
}

// Problem names a file that was not converted. Fatal is set when the records
// could not be persisted; otherwise the file itself was unusable.
type Problem struct {
	File   string
	Reason string
	Fatal  bool
}
