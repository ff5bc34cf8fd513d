package events

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/jd-116/bulletin-board-api/api"
	"github.com/jd-116/bulletin-board-api/db"
	"github.com/jd-116/bulletin-board-api/ids"
	"github.com/jd-116/bulletin-board-api/types"
	"github.com/jd-116/bulletin-board-api/util"
)

// Routes creates a new Chi router with all of the routes for the event resource,
// at the root level
func Routes(resources api.Resources) *chi.Mux {
	events := db.NewCollection[types.Event](resources.Store, types.EventPrefix)
	logger := resources.Logger.With().Str("resource", "events").Logger()

	router := chi.NewRouter()
	router.Get("/", GetAll(events, logger))

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(resources.Authenticated)

		r.Post("/", Create(events, resources.IDs, logger))
		r.Put("/{id}", Update(events, logger))
		r.Delete("/{id}", Delete(events, logger))
		r.Post("/{id}/rsvp", RSVP(events, logger))
	})
	return router
}

// GetAll gets all events from the store, unsorted
func GetAll(events *db.Collection[types.Event], logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := events.List(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("error fetching events")
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, list)
	}
}

// Create creates a new event in the store with no attendees
func Create(events *db.Collection[types.Event], generator *ids.Generator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body types.EventCreate
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

		event := body.Event(generator.Next())
		err = events.Put(r.Context(), strconv.FormatInt(event.ID, 10), &event)
		if err != nil {
			logger.Error().Err(err).Msg("error creating event")
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, event)
	}
}

// Update replaces every editable field of an existing event
func Update(events *db.Collection[types.Event], logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body types.EventUpdate
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

		updated, err := events.Modify(r.Context(), id, body.Apply)
		if err != nil {
			if util.ResponseCodeFromError(err) == http.StatusInternalServerError {
				logger.Error().Err(err).Str("id", id).Msg("error updating event")
			}
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, updated)
	}
}

// Delete deletes an event from the store.
// Deleting an event that doesn't exist succeeds
func Delete(events *db.Collection[types.Event], logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := events.Delete(r.Context(), id)
		if err != nil {
			logger.Error().Err(err).Str("id", id).Msg("error deleting event")
			util.Error(w, r, err)
			return
		}

		util.Success(w, r)
	}
}

// RSVP adds one attendee to an event.
// There is no per-caller deduplication
func RSVP(events *db.Collection[types.Event], logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		updated, err := events.Modify(r.Context(), id, func(event *types.Event) {
			event.Attendees++
		})
		if err != nil {
			if util.ResponseCodeFromError(err) == http.StatusInternalServerError {
				logger.Error().Err(err).Str("id", id).Msg("error RSVP to event")
			}
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, updated)
	}
}
