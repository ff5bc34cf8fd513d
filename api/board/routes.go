// Package board mounts every resource router of the bulletin board
package board

import (
	"github.com/go-chi/chi"

	"github.com/jd-116/bulletin-board-api/api"
	"github.com/jd-116/bulletin-board-api/api/announcements"
	"github.com/jd-116/bulletin-board-api/api/events"
	"github.com/jd-116/bulletin-board-api/api/moments"
)

// Routes creates a new Chi router with the announcement, event and moment
// resources mounted at their paths
func Routes(resources api.Resources) *chi.Mux {
	router := chi.NewRouter()
	router.Mount("/announcements", announcements.Routes(resources))
	router.Mount("/events", events.Routes(resources))
	router.Mount("/moments", moments.Routes(resources))
	return router
}
