package main

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jd-116/bulletin-board-api/types"
)

func newTestServer(t *testing.T) (*httptest.Server, *APIServer) {
	t.Helper()

	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("API_PREFIX", "/v1")
	t.Setenv("AUTH_JWT_SECRET", base64.StdEncoding.EncodeToString([]byte("server-test-secret")))
	t.Setenv("AUTH_BYPASS", "")
	t.Setenv("UPLOAD_S3_BUCKET", "")

	a, err := NewAPIServer(zerolog.Nop())
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	server := httptest.NewServer(a.routes())
	t.Cleanup(server.Close)
	return server, a
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
}

func TestRoutesUnderPrefix(t *testing.T) {
	server, a := newTestServer(t)

	token, err := a.jwtManager.IssueToken("server-test", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	body := strings.NewReader(`{"title":"Welcome","content":"Hello, neighbours","author":"Board"}`)
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/v1/announcements", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 creating, got %d", resp.StatusCode)
	}

	for _, path := range []string{"/v1/announcements", "/v1/events", "/v1/moments"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatal(err)
		}

		var response types.Response
		err = json.NewDecoder(resp.Body).Decode(&response)
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK || !response.Success {
			t.Errorf("GET %s: unexpected %d %+v (%v)", path, resp.StatusCode, response, err)
		}
		if resp.Header.Get("Content-Type") != "application/json; charset=utf-8" &&
			resp.Header.Get("Content-Type") != "application/json" {
			t.Errorf("GET %s: unexpected content type %q", path, resp.Header.Get("Content-Type"))
		}
	}

	resp, err = http.Get(server.URL + "/v1/uploads")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected uploads to be unmounted, got %d", resp.StatusCode)
	}
}

func TestMutationWithoutToken(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/v1/events", "application/json",
		strings.NewReader(`{"title":"t","date":"2024-01-01","time":"10:00"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := newStoreProvider("cassandra"); err == nil {
		t.Error("expected an unknown backend to be rejected")
	}

	provider, err := newStoreProvider("sqlite")
	if err != nil || provider == nil {
		t.Errorf("expected a sqlite provider, got %v", err)
	}
}

func TestIssue(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", base64.StdEncoding.EncodeToString([]byte("issue-secret")))
	t.Setenv("AUTH_BYPASS", "")

	token, err := issue("board-frontend", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("expected a compact JWT, got %q", token)
	}
}
