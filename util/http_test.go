package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"

	"github.com/jd-116/bulletin-board-api/db"
	"github.com/jd-116/bulletin-board-api/types"
)

func TestResponseCodeFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", types.NewValidationError("title"), http.StatusBadRequest},
		{"not found", db.NewNotFoundError("7"), http.StatusNotFound},
		{"wrapped not found", pkgerrors.Wrap(db.NewNotFoundError("7"), "context"), http.StatusNotFound},
		{"anything else", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ResponseCodeFromError(c.err); got != c.code {
				t.Errorf("expected %d, got %d", c.code, got)
			}
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(w, r, db.NewNotFoundError("12"))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != false {
		t.Errorf("expected success false, got %v", body["success"])
	}
	if !strings.Contains(body["error"].(string), "'12'") {
		t.Errorf("expected the error message, got %v", body["error"])
	}
	if _, ok := body["data"]; ok {
		t.Error("failure envelopes carry no data")
	}
}

func TestSuccessEnvelopes(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/", nil)
	Success(w, r)
	if strings.TrimSpace(w.Body.String()) != `{"success":true}` {
		t.Errorf("unexpected bare success body %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	Data(w, r, []types.Event{})
	if strings.TrimSpace(w.Body.String()) != `{"success":true,"data":[]}` {
		t.Errorf("unexpected data body %s", w.Body.String())
	}
}

func TestDecodeJSONMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	var body types.AnnouncementCreate

	err := DecodeJSON(r, &body)
	if ResponseCodeFromError(err) != http.StatusBadRequest {
		t.Errorf("expected a malformed body to be a bad request, got %v", err)
	}
}
