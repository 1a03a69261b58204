package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"identity-api/internal/model"
	"identity-api/internal/token"
	"identity-api/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	} else if errors.Is(err, model.ErrEmailTaken) {
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "User with this email already exists"
	} else if errors.Is(err, model.ErrEmailNotConfirmed) {
		status = http.StatusForbidden
		body.Code = "EMAIL_NOT_CONFIRMED"
		body.Message = "Confirm your email"
	} else if errors.Is(err, model.ErrEmailAlreadyConfirmed) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Email already confirmed"
	} else if errors.Is(err, model.ErrPasswordMismatch) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Incorrect password"
	} else if errors.Is(err, model.ErrInvalidToken) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid token"
	} else if errors.Is(err, model.ErrResetTokenInvalid) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid or expired token"
	} else if errors.Is(err, model.ErrRoleNotFound) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Role does not exist"
	} else if errors.Is(err, model.ErrInvalidEmail) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid email format"
	} else if errors.Is(err, model.ErrWeakPassword) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Password must be 6-40 characters with an uppercase letter, a digit and a special symbol"
	} else if errors.Is(err, model.ErrPasswordsDoNotMatch) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Passwords do not match"
	} else if errors.Is(err, model.ErrSyncFailed) {
		status = http.StatusBadGateway
		body.Code = "SYNC_FAILED"
		body.Message = "Failed to sync user with profile service"
	} else if errors.Is(err, model.ErrInvalidRequest) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid request"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else if errors.Is(err, token.ErrSigningKeyMissing) {
		status = http.StatusInternalServerError
		body.Code = "CONFIGURATION_ERROR"
		body.Message = "Server is misconfigured"
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
