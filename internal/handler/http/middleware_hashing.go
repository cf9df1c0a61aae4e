package http

import (
	"bytes"
	"crypto/hmac"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/MKhiriev/go-bill-keeper/internal/app"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
)

const hashHeader = "HashSHA256"

// checkHash verifies the HMAC-SHA256 of the request body against the
// HashSHA256 header. It is a pass-through when no hash key is configured.
func (h *Handler) checkHash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.hashKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)
		log.Debug().Str("func", "*Handler.checkHash").Msg("checking hash begins")

		// read bytes from body
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Handler.checkHash").Msg("failed to read request body")
			utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
			return
		}
		// restore request body
		r.Body = io.NopCloser(bytes.NewReader(body))

		got, err := hex.DecodeString(r.Header.Get(hashHeader))
		if err != nil || !hmac.Equal(got, utils.Hash(body)) {
			log.Error().Str("func", "*Handler.checkHash").
				Str("hash from request", r.Header.Get(hashHeader)).
				Msg("hashes are not equal")
			utils.WriteError(w, app.MsgIntegrityCheckFailed, http.StatusBadRequest)
			return
		}

		log.Debug().Str("func", "*Handler.checkHash").Msg("hashes are equal")

		next.ServeHTTP(w, r)
	})
}
