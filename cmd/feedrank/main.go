// Package main is the entry point for the feedrank tool: it loads a
// JSON snapshot of candidates and viewers, optionally applies a
// free-text instruction, and prints the ranked feed page for one
// viewer. Useful for calibration work and for debugging ranking
// behavior against production snapshots.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onnwee/chirpfeed/internal/config"
	"github.com/onnwee/chirpfeed/internal/feed"
	"github.com/onnwee/chirpfeed/internal/instruction"
	"github.com/onnwee/chirpfeed/internal/store"
	"github.com/onnwee/chirpfeed/internal/topic"
	"github.com/onnwee/chirpfeed/internal/tracing"
	"github.com/onnwee/chirpfeed/internal/vector"
)

// snapshot is the on-disk input format: viewers and candidates with
// raw embedding vectors.
type snapshot struct {
	Viewers    []snapshotViewer    `json:"viewers"`
	Candidates []snapshotCandidate `json:"candidates"`
}

type snapshotViewer struct {
	feed.Viewer
	ProfileVector []float64 `json:"profile_vector,omitempty"`
}

type snapshotCandidate struct {
	feed.Candidate
	AudienceVector []float64 `json:"audience_vector,omitempty"`
}

func main() {
	var (
		help            = flag.Bool("help", false, "display help message")
		configPath      = flag.String("config", "", "path to YAML config file")
		snapshotPath    = flag.String("snapshot", "", "path to JSON candidate/viewer snapshot (required)")
		viewerID        = flag.String("viewer", "", "viewer id to rank for (required)")
		instructionText = flag.String("instruction", "", "optional free-text instruction applied before ranking")
		limit           = flag.Int("limit", 0, "page size (default from config)")
	)
	flag.Parse()

	if *help {
		fmt.Println("Chirpfeed Ranking Tool")
		fmt.Println()
		fmt.Println("Usage: feedrank -snapshot feed.json -viewer viewer-1 [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *snapshotPath == "" || *viewerID == "" {
		fmt.Fprintln(os.Stderr, "both -snapshot and -viewer are required; see -help")
		os.Exit(2)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := run(cfg, logger, *snapshotPath, *viewerID, *instructionText, *limit); err != nil {
		logger.Error("feedrank failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, snapshotPath, viewerID, instructionText string, limit int) error {
	ctx := context.Background()

	weights, err := feed.LoadCalibration(cfg.CalibrationPath)
	if err != nil {
		// LoadCalibration already fell back to defaults.
		logger.Warn("using default scoring weights", "error", err)
	}

	snap, err := loadSnapshot(snapshotPath)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	st := store.NewInMemoryStore()
	for i := range snap.Viewers {
		v := snap.Viewers[i].Viewer
		v.ProfileEmbedding = vector.New(snap.Viewers[i].ProfileVector)
		if err := st.PutViewer(ctx, &v); err != nil {
			return fmt.Errorf("load viewer %s: %w", v.ID, err)
		}
	}
	for i := range snap.Candidates {
		c := snap.Candidates[i].Candidate
		c.AudienceEmbedding = vector.New(snap.Candidates[i].AudienceVector)
		if err := st.CreateCandidate(ctx, &c); err != nil {
			return fmt.Errorf("load candidate %s: %w", c.ID, err)
		}
	}
	logger.Info("loaded snapshot",
		"viewers", len(snap.Viewers),
		"candidates", len(snap.Candidates))

	rankCfg := feed.Config{
		FollowingWeight:          feed.FollowMedium,
		BoostActiveConversations: cfg.BoostActiveConversations,
		TimeWindowDays:           cfg.TimeWindowDays,
		SimilarityThreshold:      cfg.SimilarityThreshold,
	}
	if err := st.SaveConfig(ctx, viewerID, rankCfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	metrics := feed.NewMetrics()
	if err := metrics.Register(prometheus.NewRegistry()); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	if instructionText != "" {
		compiler := instruction.NewCompiler(topic.Default())
		_, endSpan := tracing.StartCompileSpan(ctx, len(instructionText))
		result, err := compiler.Compile(instructionText, rankCfg)
		endSpan(err)
		metrics.ObserveInstruction(err)
		if err != nil {
			return fmt.Errorf("compile instruction: %w", err)
		}

		if err := st.SaveConfig(ctx, viewerID, result.Config); err != nil {
			return fmt.Errorf("save compiled config: %w", err)
		}
		if err := st.ApplyInterestChanges(ctx, viewerID, result.AddInterests, result.RemoveInterests); err != nil {
			return fmt.Errorf("apply interests: %w", err)
		}

		for _, change := range result.Changes {
			fmt.Println("change:", change)
		}
	}

	svc := feed.NewService(st, weights, metrics, logger)
	if limit <= 0 {
		limit = cfg.FeedLimit
	}

	page, err := svc.RankForViewer(ctx, viewerID, limit)
	if err != nil {
		return err
	}

	if len(page) == 0 {
		fmt.Println("nothing to show")
		return nil
	}

	for i, sc := range page {
		fmt.Printf("%2d. %-12s score=%7.2f author=%-12s topic=%-12s age=%s\n",
			i+1, sc.Candidate.ID, sc.Score, sc.Candidate.AuthorID, sc.Candidate.Topic,
			time.Since(sc.Candidate.CreatedAt).Round(time.Minute))
		for _, reason := range sc.Reasons {
			fmt.Printf("      - %s\n", reason)
		}
	}
	return nil
}

func loadSnapshot(path string) (*snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// newLogger builds a JSON logger in production and a text logger
// elsewhere, mirroring the deployment convention.
func newLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
