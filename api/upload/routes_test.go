package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jd-116/bulletin-board-api/types"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

type fakeProvider struct {
	maxBytes int64
	err      error

	ext  string
	mime string
	body []byte
}

func (f *fakeProvider) MaxBytes() int64 {
	return f.maxBytes
}

func (f *fakeProvider) Upload(ctx context.Context, body io.Reader, ext string, mime string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	var err error
	f.body, err = io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.ext = ext
	f.mime = mime
	return "https://bucket.example/abc" + ext, nil
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func multipartRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, "picnic")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	writer.Close()

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	return r
}

func serve(handler http.Handler, r *http.Request) (*httptest.ResponseRecorder, types.Response) {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	var response types.Response
	json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

func TestUploadImage(t *testing.T) {
	provider := &fakeProvider{maxBytes: 1 << 20}
	router := Routes(provider, passthrough, zerolog.Nop())

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x42}, 2000)...)
	w, response := serve(router, multipartRequest(t, "file", content))

	if w.Code != http.StatusOK || !response.Success {
		t.Fatalf("expected success, got %d %s", w.Code, w.Body.String())
	}
	data, _ := response.Data.(map[string]interface{})
	if data["url"] != "https://bucket.example/abc.png" {
		t.Errorf("unexpected url %v", response.Data)
	}
	if provider.mime != "image/png" || provider.ext != ".png" {
		t.Errorf("unexpected type %q %q", provider.mime, provider.ext)
	}
	if !bytes.Equal(provider.body, content) {
		t.Errorf("expected the whole file to reach the provider, got %d of %d bytes",
			len(provider.body), len(content))
	}
}

func TestUploadRejects(t *testing.T) {
	provider := &fakeProvider{maxBytes: 1 << 20}
	router := Routes(provider, passthrough, zerolog.Nop())

	t.Run("wrong field", func(t *testing.T) {
		w, _ := serve(router, multipartRequest(t, "image", pngHeader))
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"url":"x"}`))
		r.Header.Set("Content-Type", "application/json")
		w, _ := serve(router, r)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown content", func(t *testing.T) {
		w, response := serve(router, multipartRequest(t, "file", []byte{0x00, 0x01, 0x02, 0x03}))
		if w.Code != http.StatusBadRequest || response.Success {
			t.Errorf("expected 400 failure, got %d", w.Code)
		}
	})

	if provider.body != nil {
		t.Error("expected nothing to reach the provider")
	}
}

func TestUploadMimeAllowList(t *testing.T) {
	provider := &fakeProvider{maxBytes: 1 << 20}
	handler := Upload(provider, MimeValidator("image/jpeg|image/gif"), zerolog.Nop())

	w, _ := serve(handler, multipartRequest(t, "file", pngHeader))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected png to be rejected, got %d", w.Code)
	}
}

func TestUploadProviderFailure(t *testing.T) {
	provider := &fakeProvider{maxBytes: 1 << 20, err: errors.New("bucket unavailable")}
	router := Routes(provider, passthrough, zerolog.Nop())

	w, response := serve(router, multipartRequest(t, "file", pngHeader))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if response.Error != "bucket unavailable" {
		t.Errorf("unexpected error %q", response.Error)
	}
}

func TestMimeValidator(t *testing.T) {
	all := MimeValidator("")
	if !all("image/webp") {
		t.Error("an empty list should accept everything")
	}

	some := MimeValidator(" image/png | image/jpeg ")
	if !some("image/png") || !some("image/jpeg") || some("image/gif") {
		t.Error("unexpected allow-list result")
	}
}
