// Package api holds the runtime resources shared by every resource router
package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jd-116/bulletin-board-api/db"
	"github.com/jd-116/bulletin-board-api/ids"
)

// Resources bundles together the server-wide dependencies
// that the resource routers are built from
type Resources struct {
	Store  db.KVStore
	IDs    *ids.Generator
	Clock  func() time.Time
	Logger zerolog.Logger

	// Authenticated guards every mutating route
	Authenticated func(http.Handler) http.Handler
}

// Now returns the current time from the configured clock
func (r Resources) Now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}

	return r.Clock()
}
