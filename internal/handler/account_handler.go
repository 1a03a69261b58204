package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"identity-api/internal/model"
	"identity-api/internal/service"
)

type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Register creates an account and kicks off the confirmation flow. The
// ?legacy=true flag registers a legacy client with the shared password and
// skips the confirmation email.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Role == "" {
		writeError(w, fmt.Errorf("%w: email and role are required", model.ErrInvalidInput))
		return
	}

	legacy, _ := strconv.ParseBool(r.URL.Query().Get("legacy"))

	view, err := h.accounts.Register(r.Context(), req, legacy)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, view, nil)
}

// ConfirmEmail spends the token from the emailed link. The endpoint is
// unauthenticated; the token itself is the credential.
func (h *AccountHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	rawToken := r.URL.Query().Get("token")
	if rawToken == "" {
		writeError(w, fmt.Errorf("%w: token query parameter is required", model.ErrInvalidInput))
		return
	}

	confirmed, err := h.accounts.ConfirmEmail(r.Context(), rawToken)
	if err != nil {
		writeError(w, err)
		return
	}
	if !confirmed {
		writeError(w, model.ErrInvalidToken)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"confirmed": true}, nil)
}

func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		writeError(w, fmt.Errorf("%w: email is required", model.ErrInvalidInput))
		return
	}

	message, err := h.accounts.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"message": message}, nil)
}

func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Token == "" || req.Password == "" {
		writeError(w, fmt.Errorf("%w: token and password are required", model.ErrInvalidInput))
		return
	}

	view, err := h.accounts.ResetPassword(r.Context(), req.Token, req.Password, req.ConfirmPassword)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view, nil)
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, fmt.Errorf("%w: email, old_password and new_password are required", model.ErrInvalidInput))
		return
	}

	view, err := h.accounts.ChangePassword(r.Context(), req.Email, req.OldPassword, req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view, nil)
}

func (h *AccountHandler) SendLoginDetails(w http.ResponseWriter, r *http.Request) {
	var req model.SendLoginDetailsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Login == "" || req.Email == "" {
		writeError(w, fmt.Errorf("%w: login and email are required", model.ErrInvalidInput))
		return
	}

	message, err := h.accounts.SendLoginDetails(r.Context(), req.Login, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"message": message}, nil)
}
