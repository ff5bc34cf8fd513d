package moments

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

// Routes creates a new Chi router with all of the routes for the moment resource,
// at the root level
func Routes(resources api.Resources) *chi.Mux {
	moments := db.NewCollection[types.Moment](resources.Store, types.MomentPrefix)
	logger := resources.Logger.With().Str("resource", "moments").Logger()

	router := chi.NewRouter()
	router.Get("/", GetAll(moments, logger))

	router.Group(func(r chi.Router) {
		r.Use(resources.Authenticated)

		r.Post("/", Create(moments, resources.IDs, resources.Now, logger))
		r.Put("/{id}", Update(moments, logger))
		r.Delete("/{id}", Delete(moments, logger))
		r.Post("/{id}/like", Like(moments, logger))
	})
	return router
}

// GetAll gets all moments from the store, unsorted
func GetAll(moments *db.Collection[types.Moment], logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := moments.List(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("error fetching moments")
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, list)
	}
}

// Create shares a new moment with no likes
func Create(moments *db.Collection[types.Moment], generator *ids.Generator,
	now func() time.Time, logger zerolog.Logger) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {
		var body types.MomentCreate
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

		moment := body.Moment(generator.Next(), now())
		err = moments.Put(r.Context(), strconv.FormatInt(moment.ID, 10), &moment)
		if err != nil {
			logger.Error().Err(err).Msg("error creating moment")
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, moment)
	}
}

// Update replaces the image and caption of an existing moment
func Update(moments *db.Collection[types.Moment], logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body types.MomentUpdate
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

		updated, err := moments.Modify(r.Context(), id, body.Apply)
		if err != nil {
			if util.ResponseCodeFromError(err) == http.StatusInternalServerError {
				logger.Error().Err(err).Str("id", id).Msg("error updating moment")
			}
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, updated)
	}
}

// Delete deletes a moment; deleting a moment that doesn't exist succeeds
func Delete(moments *db.Collection[types.Moment], logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := moments.Delete(r.Context(), id)
		if err != nil {
			logger.Error().Err(err).Str("id", id).Msg("error deleting moment")
			util.Error(w, r, err)
			return
		}

		util.Success(w, r)
	}
}

// Like adds one like to a moment
func Like(moments *db.Collection[types.Moment], logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		updated, err := moments.Modify(r.Context(), id, func(moment *types.Moment) {
			moment.Likes++
		})
		if err != nil {
			if util.ResponseCodeFromError(err) == http.StatusInternalServerError {
				logger.Error().Err(err).Str("id", id).Msg("error liking moment")
			}
			util.Error(w, r, err)
			return
		}

		util.Data(w, r, updated)
	}
}
