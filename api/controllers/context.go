package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/credeat/credeat-backend/api/middleware"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
)

// actorID resolves the authenticated caller's user id from the request
// context. The Auth middleware guarantees the value for protected routes.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id in context")
	}
	return id, nil
}

// pathID parses a route parameter as a UUID.
func pathID(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field).
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

// bearerToken extracts the raw token from the Authorization header without
// validating it. Refresh needs the expired access token's claims.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
