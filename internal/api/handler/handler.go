package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/api/middleware"
	"github.com/daap14/teamboard/internal/api/response"
	"github.com/daap14/teamboard/internal/api/validation"
	"github.com/daap14/teamboard/internal/auth"
)

const maxBodyBytes = 1 << 20

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the error response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return false
	}

	if fieldErrors := validation.Struct(dst); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", fieldErrors[0].Message, fieldErrors, requestID)
		return false
	}
	return true
}

// uuidParam parses a UUID route parameter, writing 400 INVALID_ID on failure.
func uuidParam(w http.ResponseWriter, r *http.Request, name, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", name+" must be a valid UUID", requestID)
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the authenticated identity, writing 401 when there is none.
func actor(w http.ResponseWriter, r *http.Request, requestID string) (*auth.Identity, bool) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
		return nil, false
	}
	return identity, true
}
