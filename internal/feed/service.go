package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/onnwee/chirpfeed/internal/tracing"
)

// Source supplies viewer records and candidate snapshots to the
// service. The in-memory store implements it; a remote document store
// adapter would too.
type Source interface {
	// Viewer returns the viewer record for an id.
	Viewer(ctx context.Context, id string) (*Viewer, error)

	// ViewerConfig returns the viewer's ranking configuration,
	// defaulted when none has been saved.
	ViewerConfig(ctx context.Context, viewerID string) (Config, error)

	// RecentCandidates returns candidates created at or after since,
	// newest first.
	RecentCandidates(ctx context.Context, since time.Time) ([]*Candidate, error)
}

// Service orchestrates a ranking pass for a viewer: fetch the viewer,
// their configuration, and the candidate snapshot, then run the pure
// ranking pipeline. Observability (metrics, spans, logs) lives here so
// the core functions stay pure.
type Service struct {
	source  Source
	weights *Weights
	metrics *Metrics
	logger  *slog.Logger
}

// NewService creates a feed service. weights may be nil for defaults,
// metrics may be nil to disable recording, logger may be nil for the
// default slog logger.
func NewService(source Source, weights *Weights, metrics *Metrics, logger *slog.Logger) *Service {
	if weights == nil {
		weights = DefaultWeights()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:  source,
		weights: weights,
		metrics: metrics,
		logger:  logger,
	}
}

// RankForViewer produces the ranked feed page for a viewer id.
// Degenerate outcomes (no eligible candidates) return an empty page,
// not an error.
func (s *Service) RankForViewer(ctx context.Context, viewerID string, limit int) ([]ScoredCandidate, error) {
	start := time.Now()

	viewer, err := s.source.Viewer(ctx, viewerID)
	if err != nil {
		s.observe(start, 0, false, err)
		return nil, fmt.Errorf("load viewer %s: %w", viewerID, err)
	}

	cfg, err := s.source.ViewerConfig(ctx, viewerID)
	if err != nil {
		s.observe(start, 0, false, err)
		return nil, fmt.Errorf("load config for viewer %s: %w", viewerID, err)
	}

	now := time.Now()
	since := now.Add(-time.Duration(cfg.EffectiveTimeWindowDays()) * 24 * time.Hour)
	candidates, err := s.source.RecentCandidates(ctx, since)
	if err != nil {
		s.observe(start, 0, false, err)
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	_, endSpan := tracing.StartRankSpan(ctx, viewerID, len(candidates))
	page, relaxed := rankAt(candidates, viewer, &cfg, s.weights, now, limit)
	endSpan(nil)

	if relaxed {
		s.logger.Info("ranking used relaxed-mute fallback",
			"viewer_id", viewerID,
			"candidates", len(candidates))
	}
	s.logger.Debug("ranked feed page",
		"viewer_id", viewerID,
		"candidates", len(candidates),
		"results", len(page),
		"duration", time.Since(start))

	s.observe(start, len(page), relaxed, nil)
	return page, nil
}

func (s *Service) observe(start time.Time, size int, relaxed bool, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveRankPass(time.Since(start), size, relaxed, err)
}
