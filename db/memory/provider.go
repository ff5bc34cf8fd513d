package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jd-116/bulletin-board-api/db"
)

// Provider is a key-value store held entirely in process memory.
// It is the default backend for development and is used throughout the tests
type Provider struct {
	sync.RWMutex
	values map[string][]byte
}

// NewProvider creates a new, empty provider
func NewProvider() *Provider {
	return &Provider{
		values: make(map[string][]byte),
	}
}

// Connect is a no-op
func (p *Provider) Connect(ctx context.Context) error {
	return nil
}

// Disconnect is a no-op; stored values are kept
func (p *Provider) Disconnect(ctx context.Context) error {
	return nil
}

// Get returns a copy of the value stored under key
func (p *Provider) Get(ctx context.Context, key string) ([]byte, error) {
	p.RLock()
	defer p.RUnlock()

	value, ok := p.values[key]
	if !ok {
		return nil, db.NewNotFoundError(key)
	}

	return copyBytes(value), nil
}

// Set stores a copy of value under key
func (p *Provider) Set(ctx context.Context, key string, value []byte) error {
	p.Lock()
	defer p.Unlock()

	p.values[key] = copyBytes(value)
	return nil
}

// Delete removes key if it is present
func (p *Provider) Delete(ctx context.Context, key string) error {
	p.Lock()
	defer p.Unlock()

	delete(p.values, key)
	return nil
}

// ListByPrefix returns copies of every value whose key begins with prefix,
// ordered by key
func (p *Provider) ListByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	p.RLock()
	defer p.RUnlock()

	keys := []string{}
	for key := range p.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	values := make([][]byte, 0, len(keys))
	for _, key := range keys {
		values = append(values, copyBytes(p.values[key]))
	}

	return values, nil
}

// Len returns the number of stored keys
func (p *Provider) Len() int {
	p.RLock()
	defer p.RUnlock()

	return len(p.values)
}

func copyBytes(value []byte) []byte {
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
