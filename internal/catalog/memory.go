package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-process catalog for the memory backend and tests.
type Memory struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]Resource
}

func NewMemory(seed ...Resource) *Memory {
	m := &Memory{items: map[int64]Resource{}}
	for _, r := range seed {
		_, _ = m.Upsert(context.Background(), r)
	}
	return m
}

func (m *Memory) Get(ctx context.Context, id int64) (Resource, error) {
	if err := ctx.Err(); err != nil {
		return Resource{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[id]
	if !ok {
		return Resource{}, ErrResourceNotFound
	}
	return r, nil
}

func (m *Memory) ListActive(ctx context.Context, kind Kind) ([]Resource, error) {
	return m.list(ctx, kind, true)
}

func (m *Memory) FetchAll(ctx context.Context, kind Kind) ([]Resource, error) {
	return m.list(ctx, kind, false)
}

func (m *Memory) list(ctx context.Context, kind Kind, activeOnly bool) ([]Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Resource{}
	for _, r := range m.items {
		if kind != "" && r.Kind != kind {
			continue
		}
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Resource) int {
		if c := strings.Compare(string(a.Kind), string(b.Kind)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// Upsert keys on (kind, name) like the Postgres table.
func (m *Memory) Upsert(_ context.Context, res Resource) (Resource, error) {
	if err := res.Validate(); err != nil {
		return Resource{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.items {
		if existing.Kind == res.Kind && existing.Name == res.Name {
			res.ID = id
			m.items[id] = res
			return res, nil
		}
	}
	m.seq++
	res.ID = m.seq
	m.items[res.ID] = res
	return res, nil
}
