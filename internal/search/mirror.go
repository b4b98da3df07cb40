package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/internal/repositories"
)

// DefaultTimeout bounds every call the mirror makes to its index.
const DefaultTimeout = 3 * time.Second

// Mirror keeps the text index in step with committed searchable entities.
// The index is best-effort: failures are logged and never reach the caller.
type Mirror struct {
	index   Index
	timeout time.Duration
}

var _ repositories.CommitHook = (*Mirror)(nil)
var _ repositories.Searcher = (*Mirror)(nil)

type Option func(*Mirror)

// WithTimeout replaces DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(m *Mirror) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func NewMirror(index Index, opts ...Option) *Mirror {
	if index == nil {
		index = NopIndex{}
	}
	m := &Mirror{index: index, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AfterCommit upserts added and updated searchable entities and removes deleted ones.
func (m *Mirror) AfterCommit(ctx context.Context, changes repositories.Changeset) {
	// the request may be finished by now; the rows are committed either way
	ctx = context.WithoutCancel(ctx)

	for _, group := range [][]models.Entity{changes.Added, changes.Updated} {
		for _, e := range group {
			m.add(ctx, e)
		}
	}
	for _, e := range changes.Deleted {
		doc, ok := e.SearchDocument()
		if !ok {
			continue
		}
		if err := m.remove(ctx, doc); err != nil {
			slog.Warn("search: remove from index failed", "index", doc.Index, "id", doc.ID, "error", err)
		}
	}
}

func (m *Mirror) add(ctx context.Context, e models.Entity) bool {
	doc, ok := e.SearchDocument()
	if !ok {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.index.Add(ctx, doc.Index, doc.ID, doc.Fields); err != nil {
		slog.Warn("search: add to index failed", "index", doc.Index, "id", doc.ID, "error", err)
		return false
	}
	return true
}

func (m *Mirror) remove(ctx context.Context, doc models.SearchDocument) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.index.Remove(ctx, doc.Index, doc.ID)
}

// Search returns one page of ranked ids and the total match count.
// Any index failure yields (nil, 0).
func (m *Mirror) Search(ctx context.Context, index, text string, page, perPage int) ([]uint, int64) {
	if strings.TrimSpace(text) == "" || page < 1 || perPage < 1 {
		return nil, 0
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	ids, total, err := m.index.Query(ctx, index, text, page, perPage)
	if err != nil {
		slog.Warn("search: query failed", "index", index, "query", text, "error", err)
		return nil, 0
	}
	return ids, total
}

// Reindex pushes every searchable entity to the index and reports how many made it.
func (m *Mirror) Reindex(ctx context.Context, entities []models.Entity) int {
	n := 0
	for _, e := range entities {
		if m.add(ctx, e) {
			n++
		}
	}
	return n
}
