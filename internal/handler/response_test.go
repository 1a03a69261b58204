package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"identity-api/internal/model"
	"identity-api/pkg/apierror"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()

	var envelope model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestWriteError_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
		{model.ErrEmailTaken, http.StatusConflict, "ALREADY_EXISTS"},
		{model.ErrEmailNotConfirmed, http.StatusForbidden, "EMAIL_NOT_CONFIRMED"},
		{model.ErrEmailAlreadyConfirmed, http.StatusConflict, "CONFLICT"},
		{model.ErrPasswordMismatch, http.StatusUnauthorized, "UNAUTHORIZED"},
		{model.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{model.ErrResetTokenInvalid, http.StatusBadRequest, "BAD_REQUEST"},
		{model.ErrRoleNotFound, http.StatusBadRequest, "BAD_REQUEST"},
		{model.ErrInvalidEmail, http.StatusBadRequest, "BAD_REQUEST"},
		{model.ErrWeakPassword, http.StatusBadRequest, "BAD_REQUEST"},
		{model.ErrPasswordsDoNotMatch, http.StatusBadRequest, "BAD_REQUEST"},
		{model.ErrSyncFailed, http.StatusBadGateway, "SYNC_FAILED"},
		{model.ErrInvalidRequest, http.StatusBadRequest, "BAD_REQUEST"},
		{model.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
		{fmt.Errorf("opaque failure"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.code+"_"+tc.err.Error(), func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			require.Equal(t, tc.status, rec.Code)
			envelope := decodeEnvelope(t, rec)
			require.False(t, envelope.Success)
			require.NotNil(t, envelope.Error)
			require.Equal(t, tc.code, envelope.Error.Code)
		})
	}
}

func TestWriteError_WrappedSentinel(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("%w: company id is required", model.ErrInvalidRequest))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Contains(t, envelope.Error.Details, "company id is required")
}

func TestWriteError_APIErrorPassthrough(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(rec, &apierror.APIError{
		HTTPStatus: http.StatusTeapot,
		Code:       "TEAPOT",
		Message:    "short and stout",
	})

	require.Equal(t, http.StatusTeapot, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "TEAPOT", envelope.Error.Code)
}

func TestWriteSuccess(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeSuccess(rec, http.StatusCreated, map[string]string{"id": "u1"}, &model.Meta{Page: 2, Limit: 10, Total: 31, TotalPages: 4})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	envelope := decodeEnvelope(t, rec)
	require.True(t, envelope.Success)
	require.NotNil(t, envelope.Meta)
	require.Equal(t, 31, envelope.Meta.Total)
}

func TestDecodeBody(t *testing.T) {
	t.Parallel()

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"jane@example.com","password":"pw"}`))

		var body model.LoginRequest
		require.NoError(t, decodeBody(req, &body))
		require.Equal(t, "jane@example.com", body.Email)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","extra":true}`))

		var body model.LoginRequest
		require.ErrorIs(t, decodeBody(req, &body), model.ErrInvalidInput)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))

		var body model.LoginRequest
		require.ErrorIs(t, decodeBody(req, &body), model.ErrInvalidInput)
	})
}
