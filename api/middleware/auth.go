package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/shipdesk-backend/api/responses"
	pkgAuth "github.com/angelmondragon/shipdesk-backend/pkg/auth"
	"github.com/angelmondragon/shipdesk-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/visibility"
)

// Auth validates a bearer token and seeds the request context with the actor.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.UserID <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token is missing a user"))
				return
			}

			actor := visibility.Actor{
				UserID:   claims.UserID,
				ClientID: claims.ClientID,
				Role:     claims.Role,
				SubGroup: strings.TrimSpace(claims.SubGroup),
			}
			ctx := WithActor(r.Context(), actor)

			if logg != nil {
				ctx = logg.WithUserID(ctx, strconv.FormatInt(actor.UserID, 10))
				ctx = logg.WithActorRole(ctx, string(actor.Role))
				if actor.ClientID > 0 {
					ctx = logg.WithClientID(ctx, actor.ClientID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	token := strings.TrimSpace(header)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
