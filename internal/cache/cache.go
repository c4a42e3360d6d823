package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStale: view инвалидировали, пока данные для него читались из БД.
var ErrStale = errors.New("view invalidated during load")

// ViewCache хранит данные view вместе с номером поколения. Invalidate
// увеличивает поколение, поэтому Set с номером, снятым до чтения из БД,
// не перезапишет view данными, которые успели устареть.
type ViewCache interface {
	Get(ctx context.Context, view string) ([]byte, bool)
	Version(ctx context.Context, view string) (uint64, error)
	Set(ctx context.Context, view string, version uint64, data []byte) error
	Invalidate(ctx context.Context, views ...string) error
}

func key(view string) string {
	return "view:" + view
}

func versionKey(view string) string {
	return "view-gen:" + view
}

// Memory: кэш в памяти процесса, используется без Redis и в тестах.
type Memory struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryItem
	gens  map[string]uint64
	now   func() time.Time
}

type memoryItem struct {
	data    []byte
	expires time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:   ttl,
		items: map[string]memoryItem{},
		gens:  map[string]uint64{},
		now:   time.Now,
	}
}

func (m *Memory) Get(_ context.Context, view string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key(view)]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && m.now().After(it.expires) {
		delete(m.items, key(view))
		return nil, false
	}
	return it.data, true
}

func (m *Memory) Version(_ context.Context, view string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.gens[view], nil
}

func (m *Memory) Set(_ context.Context, view string, version uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gens[view] != version {
		return ErrStale
	}
	m.items[key(view)] = memoryItem{data: data, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, views ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range views {
		delete(m.items, key(v))
		m.gens[v]++
	}
	return nil
}
