// Package http implements the HTTP transport layer of the application.
// It provides middleware, route handlers, and request/response utilities
// for the REST API. Authentication, logging, tracing, compression, and
// integrity-checking concerns are all handled at this layer before
// requests are forwarded to the service layer.
package http

import (
	"net/http"

	"github.com/MKhiriev/go-bill-keeper/internal/app"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
)

const clientIDHeader = "X-Client-ID"

// auth is an HTTP middleware that identifies the actor of a request.
//
// Guests are allowed: a request without an "Authorization" header passes
// through, identified only by its X-Client-ID header. A request that does
// carry a bearer token must present a valid one; the token subject is then
// stored in the request context under [utils.UserIDCtxKey].
//
// The middleware rejects requests with HTTP 401 Unauthorized when:
//   - the header is not of the form "Bearer <token>" ([ErrInvalidAuthorizationHeader]);
//   - the server has no token sign key configured ([ErrAuthNotConfigured]);
//   - the token is expired, has a foreign issuer or a bad signature.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)
		ctx := r.Context()

		if clientID := r.Header.Get(clientIDHeader); clientID != "" {
			ctx = utils.WithClientID(ctx, clientID)
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Debug().Err(err).Str("func", "*Handler.auth").Msg("malformed authorization header")
			utils.WriteError(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		if h.tokenSignKey == "" {
			log.Debug().Str("func", "*Handler.auth").Msg("bearer token sent to a guest-only server")
			utils.WriteError(w, ErrAuthNotConfigured.Error(), http.StatusUnauthorized)
			return
		}

		token, err := utils.ValidateAndParseJWTToken(tokenString, h.tokenSignKey, h.tokenIssuer)
		if err != nil {
			log.Debug().Err(err).Str("func", "*Handler.auth").Msg("token rejected")
			utils.WriteError(w, app.MsgTokenIsExpiredOrInvalid, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithUserID(ctx, token.UserID)))
	})
}
