// Package apitest wires the resource routers against an in-memory store for tests
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jd-116/bulletin-board-api/api"
	"github.com/jd-116/bulletin-board-api/auth"
	"github.com/jd-116/bulletin-board-api/db/memory"
	"github.com/jd-116/bulletin-board-api/ids"
)

// Fixture is a set of resources backed by an in-memory store,
// plus a bearer token that the resources accept
type Fixture struct {
	Resources api.Resources
	Store     *memory.Provider
	Token     string
}

// Envelope is the decoded form of every API response
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// NewFixture creates a fixture whose clock is fixed at now
func NewFixture(t testing.TB, now time.Time) *Fixture {
	t.Helper()

	jwtManager := auth.NewJWTManagerFromSecret([]byte("apitest-secret"), false)
	token, err := jwtManager.IssueToken("apitest", time.Hour)
	if err != nil {
		t.Fatalf("issuing test token: %v", err)
	}

	store := memory.NewProvider()
	return &Fixture{
		Resources: api.Resources{
			Store:         store,
			IDs:           ids.NewGenerator(),
			Clock:         func() time.Time { return now },
			Logger:        zerolog.New(io.Discard),
			Authenticated: jwtManager.Authenticated(),
		},
		Store: store,
		Token: token,
	}
}

// Do sends a request to the handler and decodes the response envelope.
// An empty token sends the request without an Authorization header
func Do(t testing.TB, handler http.Handler, method string, path string, token string, body interface{}) (int, Envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	var envelope Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding %s %s response %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, envelope
}

// Decode unmarshals the envelope's data into v
func Decode(t testing.TB, envelope Envelope, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(envelope.Data, v); err != nil {
		t.Fatalf("decoding data %q: %v", string(envelope.Data), err)
	}
}
