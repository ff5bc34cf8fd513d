// Package dbtest contains the behaviour every db.KVStore backend must share.
// Backend packages run it from their own tests
package dbtest

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/jd-116/bulletin-board-api/db"
)

// RunKVStoreTests exercises the KVStore contract against a freshly connected, empty store
func RunKVStoreTests(t *testing.T, store db.KVStore) {
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "announcement:missing")
		var notFound *db.NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := store.Set(ctx, "announcement:1", []byte(`{"id":1}`)); err != nil {
			t.Fatalf("set: %v", err)
		}
		value, err := store.Get(ctx, "announcement:1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if string(value) != `{"id":1}` {
			t.Errorf("unexpected value %s", value)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := store.Set(ctx, "announcement:2", []byte(`{"id":2,"title":"old"}`)); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := store.Set(ctx, "announcement:2", []byte(`{"id":2,"title":"new"}`)); err != nil {
			t.Fatalf("overwrite: %v", err)
		}
		value, err := store.Get(ctx, "announcement:2")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if string(value) != `{"id":2,"title":"new"}` {
			t.Errorf("expected the overwritten value, got %s", value)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		if err := store.Set(ctx, "event:3", []byte(`{"id":3}`)); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := store.Delete(ctx, "event:3"); err != nil {
			t.Fatalf("first delete: %v", err)
		}
		if err := store.Delete(ctx, "event:3"); err != nil {
			t.Fatalf("second delete: %v", err)
		}
		if _, err := store.Get(ctx, "event:3"); err == nil {
			t.Error("expected the key to be gone")
		}
	})

	t.Run("list by prefix", func(t *testing.T) {
		fixtures := map[string]string{
			"moment:10":   `{"id":10}`,
			"moment:11":   `{"id":11}`,
			"moments:99":  `{"id":99}`,
			"event:10":    `{"id":10}`,
			"xmoment:12":  `{"id":12}`,
			"moment_:13":  `{"id":13}`,
			"moment%:14":  `{"id":14}`,
			"moment*:15":  `{"id":15}`,
			"moment[1]:1": `{"id":16}`,
			"MOMENT:17":   `{"id":17}`,
		}
		for key, value := range fixtures {
			if err := store.Set(ctx, key, []byte(value)); err != nil {
				t.Fatalf("set %s: %v", key, err)
			}
		}

		values, err := store.ListByPrefix(ctx, "moment:")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		got := make([]string, 0, len(values))
		for _, value := range values {
			got = append(got, string(value))
		}
		sort.Strings(got)

		want := []string{`{"id":10}`, `{"id":11}`}
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("list by prefix with pattern characters", func(t *testing.T) {
		cases := map[string]string{
			"moment_:":   `{"id":13}`,
			"moment%:":   `{"id":14}`,
			"moment*:":   `{"id":15}`,
			"moment[1]:": `{"id":16}`,
		}
		for prefix, want := range cases {
			values, err := store.ListByPrefix(ctx, prefix)
			if err != nil {
				t.Fatalf("list %s: %v", prefix, err)
			}
			if len(values) != 1 || string(values[0]) != want {
				t.Errorf("prefix %q: expected only %s, got %q", prefix, want, values)
			}
		}
	})

	t.Run("list empty prefix result", func(t *testing.T) {
		values, err := store.ListByPrefix(ctx, "nothing-here:")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(values) != 0 {
			t.Errorf("expected no values, got %d", len(values))
		}
	})
}
