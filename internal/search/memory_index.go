package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// MemoryIndex is an in-process Index. A document matches when it shares at least
// one term with the query; more shared terms rank higher, ties go to the lower id.
type MemoryIndex struct {
	mu      sync.RWMutex
	indexes map[string]map[uint]map[string]struct{}
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{indexes: make(map[string]map[uint]map[string]struct{})}
}

func (m *MemoryIndex) Add(_ context.Context, index string, id uint, fields map[string]interface{}) error {
	terms := make(map[string]struct{})
	for _, v := range fields {
		s, ok := v.(string)
		if !ok {
			continue
		}
		for _, term := range tokenize(s) {
			terms[term] = struct{}{}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.indexes[index]
	if !ok {
		docs = make(map[uint]map[string]struct{})
		m.indexes[index] = docs
	}
	docs[id] = terms
	return nil
}

func (m *MemoryIndex) Remove(_ context.Context, index string, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexes[index], id)
	return nil
}

func (m *MemoryIndex) Query(_ context.Context, index, text string, page, perPage int) ([]uint, int64, error) {
	query := tokenize(text)
	if len(query) == 0 || page < 1 || perPage < 1 {
		return nil, 0, nil
	}

	type hit struct {
		id    uint
		score int
	}
	var hits []hit

	m.mu.RLock()
	for id, terms := range m.indexes[index] {
		score := 0
		for _, q := range query {
			if _, ok := terms[q]; ok {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{id: id, score: score})
		}
	}
	m.mu.RUnlock()
	if len(hits) == 0 {
		return nil, 0, nil
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].id < hits[j].id
	})

	total := int64(len(hits))
	start, ok := pageOffset(page, perPage)
	if !ok || start >= len(hits) {
		return []uint{}, total, nil
	}
	end := len(hits)
	if perPage < end-start {
		end = start + perPage
	}
	ids := make([]uint, 0, end-start)
	for _, h := range hits[start:end] {
		ids = append(ids, h.id)
	}
	return ids, total, nil
}

// tokenize lower-cases s and splits it into distinct words.
func tokenize(s string) []string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(words))
	out := words[:0]
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
