package handler

import (
	"fmt"
	"io"
	"net/http"

	"identity-api/internal/middleware"
	"identity-api/internal/model"
	"identity-api/internal/service"
)

// Uploads above this limit are rejected before decoding.
const maxAvatarSize = 5 << 20

type AvatarHandler struct {
	settings *service.SettingsService
}

func NewAvatarHandler(settings *service.SettingsService) *AvatarHandler {
	return &AvatarHandler{settings: settings}
}

// Get streams the authenticated user's avatar.
func (h *AvatarHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidToken)
		return
	}

	file, contentType, err := h.settings.OpenAvatar(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, file)
}

// Upload replaces the avatar from a multipart form field named "avatar".
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidToken)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, fmt.Errorf("%w: multipart form too large or malformed", model.ErrInvalidInput))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, fmt.Errorf("%w: avatar file field is required", model.ErrInvalidInput))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("read avatar upload: %w", err))
		return
	}

	view, err := h.settings.UpdateAvatar(r.Context(), claims.UserID, header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view, nil)
}

// Delete removes a custom avatar, restoring the role default.
func (h *AvatarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidToken)
		return
	}

	view, err := h.settings.RemoveAvatar(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view, nil)
}
