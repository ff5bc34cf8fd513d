package announcements

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/jd-116/bulletin-board-api/api"
	"github.com/jd-116/bulletin-board-api/db"
	"github.com/jd-116/bulletin-board-api/ids"
	"github.com/jd-116/bulletin-board-api/types"
	"github.com/jd-116/bulletin-board-api/util"
)

// Routes creates a new Chi router with all of the routes for the announcement resource,
// at the root level
func Routes(resources api.Resources) *chi.Mux {
	announcements := db.NewCollection[types.Announcement](resources.Store, types.AnnouncementPrefix)
	logger := resources.Logger.With().Str("resource", "announcements").Logger()

	router := chi.NewRouter()
	router.Get("/", GetAll(announcements, logger))

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(resources.Authenticated)

		r.Post("/", Create(announcements, resources.IDs, resources.Now, logger))
		r.Put("/{id}", Update(announcements, logger))
		r.Delete("/{id}", Delete(announcements, logger))
	})
	return router
}

// GetAll gets all announcements from the store, unsorted
func GetAll(announcements *db.Collection[types.Announcement], logger zerolog.Logger) http.HandlerFunc {
	// Use a closure to inject the collection
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := announcements.List(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("error fetching announcements")
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, list)
	}
}

// Create creates a new announcement in the store,
// assigning its ID and creation date
func Create(announcements *db.Collection[types.Announcement], generator *ids.Generator,
	now func() time.Time, logger zerolog.Logger) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {
		var body types.AnnouncementCreate
		err := util.DecodeJSON(r, &body)
		if err != nil {
			util.Error(w, r, err)
			return
		}

		err = body.Validate()
		if err != nil {
			util.Error(w, r, err)
			return
		}

		announcement := body.Announcement(generator.Next(), now())
		err = announcements.Put(r.Context(), strconv.FormatInt(announcement.ID, 10), &announcement)
		if err != nil {
			logger.Error().Err(err).Msg("error creating announcement")
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, announcement)
	}
}

// Update replaces the title and content of an existing announcement
func Update(announcements *db.Collection[types.Announcement], logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body types.AnnouncementUpdate
		err := util.DecodeJSON(r, &body)
		if err != nil {
			util.Error(w, r, err)
			return
		}

		err = body.Validate()
		if err != nil {
			util.Error(w, r, err)
			return
		}

		updated, err := announcements.Modify(r.Context(), id, body.Apply)
		if err != nil {
			if util.ResponseCodeFromError(err) == http.StatusInternalServerError {
				logger.Error().Err(err).Str("id", id).Msg("error updating announcement")
			}
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, updated)
	}
}

// Delete deletes an announcement from the store.
// Deleting an announcement that doesn't exist succeeds
func Delete(announcements *db.Collection[types.Announcement], logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := announcements.Delete(r.Context(), id)
		if err != nil {
			logger.Error().Err(err).Str("id", id).Msg("error deleting announcement")
			util.Error(w, r, err)
			return
		}

		util.Success(w, r)
	}
}
