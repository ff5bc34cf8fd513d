package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jd-116/bulletin-board-api/db"
	"github.com/jd-116/bulletin-board-api/db/memory"
	"github.com/jd-116/bulletin-board-api/types"
)

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProvider()
	events := db.NewCollection[types.Event](store, types.EventPrefix)

	event := types.Event{ID: 5, Title: "Potluck", Date: "2024-02-10", Time: "18:00"}
	if err := events.Put(ctx, "5", &event); err != nil {
		t.Fatalf("put: %v", err)
	}

	raw, err := store.Get(ctx, "event:5")
	if err != nil {
		t.Fatalf("expected the record under event:5: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected a JSON document")
	}

	got, err := events.Get(ctx, "5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != event {
		t.Errorf("expected %+v, got %+v", event, *got)
	}
}

func TestCollectionGetMissingNamesID(t *testing.T) {
	moments := db.NewCollection[types.Moment](memory.NewProvider(), types.MomentPrefix)

	_, err := moments.Get(context.Background(), "404")
	var notFound *db.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.ID != "404" {
		t.Errorf("expected the record ID, got %q", notFound.ID)
	}
}

func TestCollectionListIsolatesPrefixes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProvider()
	announcements := db.NewCollection[types.Announcement](store, types.AnnouncementPrefix)
	events := db.NewCollection[types.Event](store, types.EventPrefix)

	empty, err := announcements.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected a non-nil empty list, got %#v", empty)
	}

	announcements.Put(ctx, "1", &types.Announcement{ID: 1, Title: "a"})
	announcements.Put(ctx, "2", &types.Announcement{ID: 2, Title: "b"})
	events.Put(ctx, "3", &types.Event{ID: 3, Title: "c"})

	list, err := announcements.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 announcements, got %d", len(list))
	}
}

func TestCollectionModify(t *testing.T) {
	ctx := context.Background()
	moments := db.NewCollection[types.Moment](memory.NewProvider(), types.MomentPrefix)
	moments.Put(ctx, "9", &types.Moment{ID: 9, Likes: 1})

	updated, err := moments.Modify(ctx, "9", func(m *types.Moment) {
		m.Likes++
	})
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if updated.Likes != 2 {
		t.Errorf("expected 2 likes, got %d", updated.Likes)
	}

	stored, _ := moments.Get(ctx, "9")
	if stored.Likes != 2 {
		t.Errorf("expected the modification to be persisted, got %d", stored.Likes)
	}

	if _, err := moments.Modify(ctx, "10", func(m *types.Moment) {}); err == nil {
		t.Error("expected modifying a missing record to fail")
	}
}

// Modify is a read-modify-write without serialization; concurrent increments
// may be lost but never exceed the number of calls
func TestCollectionModifyConcurrentIncrementsMayBeLost(t *testing.T) {
	ctx := context.Background()
	events := db.NewCollection[types.Event](memory.NewProvider(), types.EventPrefix)
	events.Put(ctx, "1", &types.Event{ID: 1})

	const calls = 50
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events.Modify(ctx, "1", func(e *types.Event) {
				e.Attendees++
			})
		}()
	}
	wg.Wait()

	stored, err := events.Get(ctx, "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Attendees < 1 || stored.Attendees > calls {
		t.Errorf("expected between 1 and %d attendees, got %d", calls, stored.Attendees)
	}
}
