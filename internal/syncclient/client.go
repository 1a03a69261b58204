// Package syncclient talks to the external profile service. Every mutation
// there must succeed before the matching local write happens, so all methods
// return a plain error that callers treat as fatal for the whole operation.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"identity-api/internal/model"
)

// TokenFunc supplies the caller's bearer token for forwarding, if any.
type TokenFunc func(ctx context.Context) string

type Client struct {
	http    *http.Client
	baseURL string
	token   TokenFunc
}

func New(baseURL string, timeout time.Duration, token TokenFunc) *Client {
	if token == nil {
		token = func(context.Context) string { return "" }
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   token,
	}
}

// ExternalUser is the wire shape the profile service expects.
type ExternalUser struct {
	ID                  string `json:"id"`
	ExternalID          string `json:"external_id"`
	Position            string `json:"position"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	Patronymic          string `json:"patronymic"`
	BirthDate           string `json:"birth_date"`
	Role                string `json:"role"`
	Email               string `json:"email"`
	PersonalEmail       string `json:"personal_email"`
	PhoneNumber         string `json:"phone_number"`
	BusinessPhoneNumber string `json:"business_phone_number"`
	Gender              string `json:"gender"`
	AvatarPath          string `json:"avatar_path"`
}

type ExternalUserCompany struct {
	ExternalUser
	CompanyID string `json:"company_id"`
}

func NewExternalUser(u model.User) ExternalUser {
	return ExternalUser{
		ID:                  u.ID,
		ExternalID:          u.ExternalID,
		Position:            u.Position,
		Name:                u.Name,
		Surname:             u.Surname,
		Patronymic:          u.Patronymic,
		BirthDate:           u.BirthDate.Format("2006-01-02"),
		Role:                string(u.Role),
		Email:               u.Email,
		PersonalEmail:       u.PersonalEmail,
		PhoneNumber:         u.PhoneNumber,
		BusinessPhoneNumber: u.BusinessPhoneNumber,
		Gender:              string(u.Gender),
		AvatarPath:          u.AvatarPath,
	}
}

func (c *Client) AddClientAdmin(ctx context.Context, user ExternalUser) error {
	return c.do(ctx, http.MethodPost, "/client/create/client-admin", user)
}

func (c *Client) AddClient(ctx context.Context, user ExternalUserCompany) error {
	return c.do(ctx, http.MethodPost, "/client/create/client", user)
}

func (c *Client) AddStaff(ctx context.Context, user ExternalUser) error {
	return c.do(ctx, http.MethodPost, "/staff/create", user)
}

func (c *Client) AddAdmin(ctx context.Context, user ExternalUser) error {
	return c.do(ctx, http.MethodPost, "/admin/create", user)
}

func (c *Client) UpdateClientData(ctx context.Context, user ExternalUser) error {
	return c.do(ctx, http.MethodPut, "/client/update", user)
}

func (c *Client) UpdateStaffData(ctx context.Context, user ExternalUser) error {
	return c.do(ctx, http.MethodPut, "/staff/update", user)
}

func (c *Client) do(ctx context.Context, method string, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sync payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if bearer := c.token(ctx); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(detail))
	}

	return nil
}
