package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/jd-116/bulletin-board-api/api/apitest"
	"github.com/jd-116/bulletin-board-api/api/board"
	"github.com/jd-116/bulletin-board-api/types"
)

func newServer(t *testing.T) (*httptest.Server, *apitest.Fixture) {
	t.Helper()

	fixture := apitest.NewFixture(t, time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC))
	server := httptest.NewServer(board.Routes(fixture.Resources))
	t.Cleanup(server.Close)
	return server, fixture
}

func TestAnnouncementLifecycle(t *testing.T) {
	server, fixture := newServer(t)
	ctx := context.Background()
	announcements := New(server.URL, fixture.Token).Announcements()

	created, err := announcements.Create(ctx, types.AnnouncementCreate{
		Title: "Pool opening", Content: "Saturday at noon", Author: "Parks",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Date != "2024-03-01" {
		t.Errorf("unexpected created record %+v", created)
	}

	updated, err := announcements.Update(ctx, created.ID, types.AnnouncementUpdate{
		Title: "Pool opening moved", Content: "Sunday at noon",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Pool opening moved" || updated.Author != "Parks" {
		t.Errorf("unexpected updated record %+v", updated)
	}

	list, err := announcements.List(ctx)
	if err != nil || len(list) != 1 || list[0] != updated {
		t.Fatalf("unexpected list %+v (%v)", list, err)
	}

	if err := announcements.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err = announcements.List(ctx)
	if err != nil || len(list) != 0 || list == nil {
		t.Errorf("expected an empty non-nil list, got %#v (%v)", list, err)
	}
}

func TestIncrement(t *testing.T) {
	server, fixture := newServer(t)
	ctx := context.Background()
	c := New(server.URL+"/", fixture.Token)

	event, err := c.Events().Create(ctx, types.EventCreate{Title: "Fair", Date: "2024-04-01", Time: "10:00"})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	event, err = c.Events().Increment(ctx, event.ID)
	if err != nil || event.Attendees != 1 {
		t.Errorf("expected one attendee, got %+v (%v)", event, err)
	}

	moment, err := c.Moments().Create(ctx, types.MomentCreate{Image: "https://x/y.jpg", Caption: "c", Author: "a"})
	if err != nil {
		t.Fatalf("create moment: %v", err)
	}
	moment, err = c.Moments().Increment(ctx, moment.ID)
	if err != nil || moment.Likes != 1 {
		t.Errorf("expected one like, got %+v (%v)", moment, err)
	}

	_, err = c.Announcements().Increment(ctx, 1)
	if err != ErrNoCounter {
		t.Errorf("expected ErrNoCounter, got %v", err)
	}
}

func TestAPIErrors(t *testing.T) {
	server, fixture := newServer(t)
	ctx := context.Background()

	_, err := New(server.URL, fixture.Token).Events().Create(ctx, types.EventCreate{Title: "No date"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected a 400 APIError, got %v", err)
	}
	if apiErr.Message != "Missing required fields: date, time" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}

	_, err = New(server.URL, fixture.Token).Moments().Increment(ctx, 404)
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("expected a 404 APIError, got %v", err)
	}

	_, err = New(server.URL, "").Moments().Create(ctx, types.MomentCreate{Image: "i", Caption: "c", Author: "a"})
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("expected a 401 APIError, got %v", err)
	}
}

func TestNonEnvelopeResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, "").Announcements().List(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Errorf("expected a 502 APIError, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	server, _ := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(server.URL, "").Announcements().List(ctx)
	if err == nil {
		t.Error("expected a cancelled context to fail the request")
	}
}
