package products

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/luizgft/produtos-api/internal/platform/httpx"
)

var errSequenceExhausted = errors.New("products: insert: id sequence exhausted")

// priceLimit is the first value NUMERIC(12,2) cannot hold.
var priceLimit = decimal.New(1, 10)

// MemoryRepository keeps products in process memory. It backs the
// STORAGE_DRIVER=memory mode and the tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	items  map[int64]Product
	lastID int64
	now    func() time.Time
}

// NewMemoryRepository returns an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[int64]Product),
		now:   time.Now,
	}
}

func (m *MemoryRepository) List(ctx context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Product, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out, nil
}

func (m *MemoryRepository) FindByID(ctx context.Context, id int64) (Product, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.items[id]
	if !ok {
		return Product{}, false, nil
	}
	return clone(p), true, nil
}

func (m *MemoryRepository) Save(ctx context.Context, p Product) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.Price.Abs().GreaterThanOrEqual(priceLimit) {
		return Product{}, fmt.Errorf("%w: price %s exceeds the column precision", httpx.ErrValidation, p.Price)
	}

	now := m.now().UTC()
	if !p.Persisted() {
		if m.lastID == math.MaxInt64 {
			return Product{}, errSequenceExhausted
		}
		m.lastID++
		id := m.lastID
		p.ID = &id
		p.CreatedAt = now
	} else {
		id := *p.ID
		p.ID = &id
		if existing, ok := m.items[id]; ok {
			p.CreatedAt = existing.CreatedAt
		} else {
			p.CreatedAt = now
		}
		if id > m.lastID {
			m.lastID = id
		}
	}
	p.UpdatedAt = now
	m.items[*p.ID] = p
	return clone(p), nil
}

func (m *MemoryRepository) DeleteByID(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, id)
	return nil
}

func clone(p Product) Product {
	p.ID = copyID(p.ID)
	return p
}
