package memory

import (
	"context"
	"testing"

	"github.com/jd-116/bulletin-board-api/db/dbtest"
)

func TestProviderContract(t *testing.T) {
	dbtest.RunKVStoreTests(t, NewProvider())
}

func TestProviderCopiesValues(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()

	value := []byte(`{"id":1}`)
	if err := p.Set(ctx, "event:1", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[2] = 'X'

	stored, err := p.Get(ctx, "event:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(stored) != `{"id":1}` {
		t.Errorf("stored value was mutated through the caller's slice: %s", stored)
	}

	if p.Len() != 1 {
		t.Errorf("expected 1 key, got %d", p.Len())
	}
}
