package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"pokedoro/internal/repositories"
)

type contextKey string

const tokenContextKey contextKey = "sessionToken"

// RequireToken lets a request through only if the browser session holds a
// session token; otherwise it redirects to loginRoute.
func RequireToken(storageFor repositories.StorageFactory, loginRoute string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			storage, err := storageFor(w, r)
			if err != nil {
				log.Error().Err(err).Msg("Failed to open session storage")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			token, err := storage.Get(r.Context(), repositories.AuthKey)
			if err != nil {
				if !errors.Is(err, repositories.ErrKeyNotFound) {
					log.Warn().Err(err).Msg("Could not read session token")
				}
				http.Redirect(w, r, loginRoute, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), tokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok && token != ""
}
