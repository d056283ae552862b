// Package store provides the in-memory document-store collaborator
// for the ranking engine: candidate snapshots, viewer records, and
// per-viewer ranking configurations. The engine itself never writes
// here; interest changes produced by the instruction compiler are
// applied through ApplyInterestChanges.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/chirpfeed/internal/feed"
	"github.com/onnwee/chirpfeed/internal/tracing"
)

// Common errors for store operations.
var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrCandidateDeleted  = errors.New("candidate has been deleted")
	ErrViewerNotFound    = errors.New("viewer not found")
)

// FeedCursor represents a cursor for paginating through candidates.
// Uses (created_at, id) for stable pagination with tie-breaking.
type FeedCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

// InMemoryStore is a mutex-guarded in-memory store. Safe for
// concurrent use.
type InMemoryStore struct {
	mu         sync.RWMutex
	candidates map[string]*feed.Candidate
	deleted    map[string]time.Time
	viewers    map[string]*feed.Viewer
	configs    map[string]feed.Config
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		candidates: make(map[string]*feed.Candidate),
		deleted:    make(map[string]time.Time),
		viewers:    make(map[string]*feed.Viewer),
		configs:    make(map[string]feed.Config),
	}
}

// CreateCandidate inserts a candidate, generating a UUID when the ID
// is empty and stamping CreatedAt when zero.
func (s *InMemoryStore) CreateCandidate(ctx context.Context, c *feed.Candidate) error {
	_, endSpan := tracing.StartSpan(ctx, "store.create_candidate")
	defer endSpan(nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.candidates[c.ID] = c
	return nil
}

// GetCandidate retrieves a candidate by ID, excluding soft-deleted
// ones.
func (s *InMemoryStore) GetCandidate(ctx context.Context, id string) (*feed.Candidate, error) {
	var err error
	_, endSpan := tracing.StartSpan(ctx, "store.get_candidate")
	defer func() { endSpan(err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, gone := s.deleted[id]; gone {
		err = ErrCandidateDeleted
		return nil, err
	}
	c, ok := s.candidates[id]
	if !ok {
		err = ErrCandidateNotFound
		return nil, err
	}
	return c, nil
}

// DeleteCandidate soft-deletes a candidate so it stops appearing in
// listings while remaining addressable for audit.
func (s *InMemoryStore) DeleteCandidate(ctx context.Context, id string) error {
	var err error
	_, endSpan := tracing.StartSpan(ctx, "store.delete_candidate")
	defer func() { endSpan(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.candidates[id]; !ok {
		err = ErrCandidateNotFound
		return err
	}
	s.deleted[id] = time.Now()
	return nil
}

// RecentCandidates returns all non-deleted candidates created at or
// after since, ordered by created_at DESC with id ASC tie-breaking.
func (s *InMemoryStore) RecentCandidates(ctx context.Context, since time.Time) ([]*feed.Candidate, error) {
	_, endSpan := tracing.StartSpan(ctx, "store.recent_candidates")
	defer endSpan(nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*feed.Candidate, 0, len(s.candidates))
	for id, c := range s.candidates {
		if _, gone := s.deleted[id]; gone {
			continue
		}
		if c.CreatedAt.Before(since) {
			continue
		}
		out = append(out, c)
	}
	sortCandidates(out)
	return out, nil
}

// ListRecent pages through non-deleted candidates newest first with a
// (created_at, id) cursor. Returns the page, the next cursor (nil when
// exhausted), and an error.
func (s *InMemoryStore) ListRecent(ctx context.Context, limit int, cursor *FeedCursor) ([]*feed.Candidate, *FeedCursor, error) {
	_, endSpan := tracing.StartSpan(ctx, "store.list_recent",
		attribute.Int("store.limit", limit))
	defer endSpan(nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*feed.Candidate, 0, len(s.candidates))
	for id, c := range s.candidates {
		if _, gone := s.deleted[id]; gone {
			continue
		}
		all = append(all, c)
	}
	sortCandidates(all)

	start := 0
	if cursor != nil {
		for i, c := range all {
			if c.CreatedAt.Before(cursor.CreatedAt) ||
				(c.CreatedAt.Equal(cursor.CreatedAt) && c.ID > cursor.ID) {
				start = i
				break
			}
			start = len(all)
		}
	}

	if limit <= 0 || start >= len(all) {
		return []*feed.Candidate{}, nil, nil
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[start:end]

	var next *FeedCursor
	if end < len(all) {
		last := page[len(page)-1]
		next = &FeedCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return page, next, nil
}

// PutViewer inserts or replaces a viewer record.
func (s *InMemoryStore) PutViewer(ctx context.Context, v *feed.Viewer) error {
	_, endSpan := tracing.StartSpan(ctx, "store.put_viewer")
	defer endSpan(nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	s.viewers[v.ID] = v
	return nil
}

// Viewer retrieves a viewer record by ID.
func (s *InMemoryStore) Viewer(ctx context.Context, id string) (*feed.Viewer, error) {
	var err error
	_, endSpan := tracing.StartSpan(ctx, "store.get_viewer")
	defer func() { endSpan(err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.viewers[id]
	if !ok {
		err = ErrViewerNotFound
		return nil, err
	}
	return v, nil
}

// ViewerConfig returns the viewer's ranking configuration, falling
// back to onboarding defaults when none has been saved.
func (s *InMemoryStore) ViewerConfig(ctx context.Context, viewerID string) (feed.Config, error) {
	_, endSpan := tracing.StartSpan(ctx, "store.get_config")
	defer endSpan(nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if cfg, ok := s.configs[viewerID]; ok {
		return cfg, nil
	}
	return feed.DefaultConfig(), nil
}

// SaveConfig stores a viewer's ranking configuration.
func (s *InMemoryStore) SaveConfig(ctx context.Context, viewerID string, cfg feed.Config) error {
	_, endSpan := tracing.StartSpan(ctx, "store.save_config")
	defer endSpan(nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs[viewerID] = cfg
	return nil
}

// ApplyInterestChanges applies the instruction compiler's add/remove
// lists to the viewer's stored interest set. Comparison is
// case-insensitive; adds deduplicate, removes are best-effort.
func (s *InMemoryStore) ApplyInterestChanges(ctx context.Context, viewerID string, add, remove []string) error {
	var err error
	_, endSpan := tracing.StartSpan(ctx, "store.apply_interests",
		attribute.Int("interests.add", len(add)),
		attribute.Int("interests.remove", len(remove)))
	defer func() { endSpan(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.viewers[viewerID]
	if !ok {
		err = ErrViewerNotFound
		return err
	}

	removeSet := make(map[string]bool, len(remove))
	for _, term := range remove {
		removeSet[strings.ToLower(term)] = true
	}

	kept := make([]string, 0, len(v.Interests)+len(add))
	present := make(map[string]bool, len(v.Interests))
	for _, interest := range v.Interests {
		key := strings.ToLower(interest)
		if removeSet[key] || present[key] {
			continue
		}
		present[key] = true
		kept = append(kept, interest)
	}
	for _, term := range add {
		key := strings.ToLower(term)
		if removeSet[key] || present[key] {
			continue
		}
		present[key] = true
		kept = append(kept, term)
	}

	v.Interests = kept
	return nil
}

// sortCandidates orders newest first with id ASC tie-breaking, the
// same stable order the pagination cursor relies on.
func sortCandidates(cs []*feed.Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}
