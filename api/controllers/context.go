package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rvalverde/assettrack-backend/api/middleware"
	"github.com/rvalverde/assettrack-backend/api/validators"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
	"github.com/rvalverde/assettrack-backend/pkg/pagination"
)

func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func currentRole(r *http.Request) (enums.UserRole, error) {
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "role context missing")
	}
	return role, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return &id, nil
}

func queryLimit(r *http.Request) (int, error) {
	return validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
}

func querySearch(r *http.Request) string {
	return validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLen)
}

const maxSearchLen = 200
