package status

import (
	"log/slog"
	"net/http"
	"strconv"
	"weatherbot/internal/lib/api/response"
	apierrors "weatherbot/internal/lib/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Quota reports the shared weather provider budget.
func Quota(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.status.Quota"

		logger.With(
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("op", op),
		).Debug("request received")

		render.JSON(w, r, response.Ok(core.QuotaStatus()))
	}
}

// Actor reports one actor's rate limiter snapshot.
func Actor(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.status.Actor"

		log := logger.With(
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("op", op),
		)

		actorID, err := actorIDParam(r)
		if err != nil {
			apiErr := apierrors.NewValidationError("Actor id must be an integer")
			log.Warn("invalid actor id",
				slog.String("error", err.Error()),
				slog.String("error_code", string(apiErr.Code)),
			)
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		render.JSON(w, r, response.Ok(core.ActorStats(actorID)))
	}
}

// Unblock lifts an actor's rate-limit block immediately.
func Unblock(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.status.Unblock"

		log := logger.With(
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("op", op),
		)

		actorID, err := actorIDParam(r)
		if err != nil {
			apiErr := apierrors.NewValidationError("Actor id must be an integer")
			log.Warn("invalid actor id",
				slog.String("error", err.Error()),
				slog.String("error_code", string(apiErr.Code)),
			)
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		if !core.Unblock(actorID) {
			render.JSON(w, r, response.OkWithMessage(nil, "Actor was not blocked"))
			return
		}

		log.Info("actor unblocked", slog.Int64("actor_id", actorID))
		render.JSON(w, r, response.OkWithMessage(nil, "Actor unblocked"))
	}
}

func actorIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
