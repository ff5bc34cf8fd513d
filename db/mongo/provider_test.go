package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jd-116/bulletin-board-api/db/dbtest"
)

// TestProviderContract runs against a live server and is skipped unless MONGO_URI is set.
// Each run uses its own collection, dropped afterwards
func TestProviderContract(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set; skipping mongo integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := fmt.Sprintf("kv_test_%d", time.Now().UnixNano())
	p := New(uri, "bulletin_test", collection)
	if err := p.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer p.Disconnect(ctx)
	defer p.entries().Drop(ctx)

	dbtest.RunKVStoreTests(t, p)
}
