package middleware

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ParticipantIDKey is the context key for the calling participant's ID.
const ParticipantIDKey contextKey = "participant_id"

// ParticipantHeader carries the caller's participant ID.
const ParticipantHeader = "X-Participant-ID"

// GetParticipantID extracts the caller's participant ID from the context.
// Returns empty string if not found.
func GetParticipantID(ctx context.Context) string {
	id, _ := ctx.Value(ParticipantIDKey).(string)
	return id
}

// Identify copies the participant header into the request context.
// The header is trusted as-is: who may act as whom is decided upstream.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(ParticipantHeader)); id != "" {
			r = r.WithContext(context.WithValue(r.Context(), ParticipantIDKey, id))
		}
		next.ServeHTTP(w, r)
	})
}
