package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/posadmin-backend/api/middleware"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/posadmin-backend/pkg/errors"
)

// Actor identifies the authenticated user behind a request.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// ActorFromRequest reads the identity the Auth middleware placed on the context.
func ActorFromRequest(r *http.Request) (Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role")
	}
	return Actor{UserID: userID, Role: role}, nil
}
