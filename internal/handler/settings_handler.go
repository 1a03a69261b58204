package handler

import (
	"fmt"
	"net/http"
	"strings"

	"identity-api/internal/middleware"
	"identity-api/internal/model"
	"identity-api/internal/service"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Update replaces the authenticated user's profile fields and marks the
// onboarding survey as completed.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidToken)
		return
	}

	var req model.SettingsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Name == "" || req.Surname == "" {
		writeError(w, fmt.Errorf("%w: email, name and surname are required", model.ErrInvalidInput))
		return
	}

	view, err := h.settings.Update(r.Context(), claims.UserID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view, nil)
}
