// Package upload defines where moment images are stored before they are
// referenced by URL
package upload

import (
	"context"
	"io"
)

// Provider represents an object storage implementation for images
type Provider interface {
	MaxBytes() int64
	Upload(ctx context.Context, body io.Reader, ext string, mime string) (string, error)
}
