package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/jd-116/bulletin-board-api/env"
	"github.com/jd-116/bulletin-board-api/types"
	"github.com/jd-116/bulletin-board-api/upload"
	"github.com/jd-116/bulletin-board-api/util"
)

const multipartPartKey string = "file"

// sniffLength is the number of bytes http.DetectContentType considers
const sniffLength = 512

// Routes creates a new Chi router with all of the routes for image uploads,
// at the root level
func Routes(uploadProvider upload.Provider, authenticated func(http.Handler) http.Handler,
	logger zerolog.Logger) *chi.Mux {

	router := chi.NewRouter()
	validMime := MimeValidator(env.GetEnvOrDefault("UPLOAD_MIME_TYPES", ""))
	logger = logger.With().Str("resource", "uploads").Logger()

	router.Group(func(r chi.Router) {
		r.Use(authenticated)
		r.Post("/", Upload(uploadProvider, validMime, logger))
	})
	return router
}

// MimeValidator builds a validator from a '|'-separated list of MIME types.
// An empty list accepts every type
func MimeValidator(list string) func(string) bool {
	validMimeTypes := make(map[string]struct{})
	for _, m := range strings.Split(list, "|") {
		m = strings.TrimSpace(m)
		if m != "" {
			validMimeTypes[m] = struct{}{}
		}
	}

	return func(m string) bool {
		if len(validMimeTypes) == 0 {
			return true
		}

		_, ok := validMimeTypes[m]
		return ok
	}
}

// Upload provides a pass-through route that takes in a multi-part
// HTTP request and uploads it to the provider,
// returning a URL that can be used as a moment image
func Upload(uploadProvider upload.Provider, validMime func(string) bool, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Limit the read size to the configured size
		if uploadProvider.MaxBytes() > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, uploadProvider.MaxBytes())
		}

		mr, err := r.MultipartReader()
		if err != nil {
			util.ErrorWithCode(w, r, err, http.StatusBadRequest)
			return
		}

		var uploadFile *multipart.Part
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				util.ErrorWithCode(w, r, err, http.StatusBadRequest)
				return
			}

			if p.FormName() == multipartPartKey {
				uploadFile = p
				break
			}
		}

		if uploadFile == nil {
			util.ErrorWithCode(w, r,
				fmt.Errorf("Expected multipart form submission with '%s' entry", multipartPartKey),
				http.StatusBadRequest)
			return
		}

		// Only the first bytes are used to sniff the content type,
		// so a multi-reader passes the whole file on
		headerBuffer := make([]byte, sniffLength)
		n, err := io.ReadFull(uploadFile, headerBuffer)
		if err != nil && err != io.ErrUnexpectedEOF {
			util.ErrorWithCode(w, r, err, http.StatusBadRequest)
			return
		}
		headerBuffer = headerBuffer[:n]
		fileReader := io.MultiReader(bytes.NewReader(headerBuffer), uploadFile)

		// DetectContentType falls back to "application/octet-stream"
		contentType := http.DetectContentType(headerBuffer)
		if contentType == "application/octet-stream" || !validMime(contentType) {
			util.ErrorWithCode(w, r,
				fmt.Errorf("Unsupported file upload MIME type '%s'", contentType),
				http.StatusBadRequest)
			return
		}

		fileExtensions, err := mime.ExtensionsByType(contentType)
		if err != nil || len(fileExtensions) == 0 {
			util.ErrorWithCode(w, r,
				fmt.Errorf("Unsupported file upload MIME type '%s'", contentType),
				http.StatusBadRequest)
			return
		}

		fileURL, err := uploadProvider.Upload(r.Context(), fileReader, fileExtensions[0], contentType)
		if err != nil {
			logger.Error().Err(err).Msg("error uploading file")
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, types.UploadResult{URL: fileURL})
	}
}
