package service

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"time"

	"identity-api/internal/mailer"
	"identity-api/internal/model"
	"identity-api/internal/syncclient"
)

// In-memory collaborators for flow tests. They mirror the behavior of the
// pgx repositories, the SMTP sender and the sync client closely enough to
// exercise every ordering and failure path without external processes.

type fakeUserStore struct {
	users map[string]model.User

	failUpdateRefresh error
	failCreate        error
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	store := &fakeUserStore{users: map[string]model.User{}}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return store
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *fakeUserStore) Create(_ context.Context, u model.User) error {
	if s.failCreate != nil {
		return s.failCreate
	}
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) Update(_ context.Context, u model.User) error {
	if _, ok := s.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) UpdateRefreshToken(_ context.Context, userID string, token string, expiresAt time.Time) error {
	if s.failUpdateRefresh != nil {
		return s.failUpdateRefresh
	}
	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.RefreshToken = token
	u.RefreshTokenExpiresAt = expiresAt
	s.users[userID] = u
	return nil
}

func (s *fakeUserStore) SetEmailConfirmed(_ context.Context, userID string) error {
	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.EmailConfirmed = true
	s.users[userID] = u
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, userID string, password string) error {
	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash, _ = s.HashPassword(password)
	s.users[userID] = u
	return nil
}

func (s *fakeUserStore) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (s *fakeUserStore) CheckPassword(u model.User, password string) bool {
	return u.PasswordHash == "hashed:"+password
}

func (s *fakeUserStore) ChangePassword(ctx context.Context, userID string, oldPassword string, newPassword string) error {
	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	if !s.CheckPassword(u, oldPassword) {
		return model.ErrPasswordMismatch
	}
	return s.UpdatePassword(ctx, userID, newPassword)
}

func (s *fakeUserStore) List(_ context.Context, offset int, limit int) ([]model.User, error) {
	all := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *fakeUserStore) Count(_ context.Context) (int, error) {
	return len(s.users), nil
}

type fakeResetStore struct {
	tokens map[string]model.ResetToken
}

func newFakeResetStore() *fakeResetStore {
	return &fakeResetStore{tokens: map[string]model.ResetToken{}}
}

func (s *fakeResetStore) Store(_ context.Context, t model.ResetToken) error {
	s.tokens[t.Token] = t
	return nil
}

func (s *fakeResetStore) FindByToken(_ context.Context, token string) (model.ResetToken, error) {
	t, ok := s.tokens[token]
	if !ok {
		return model.ResetToken{}, model.ErrResetTokenInvalid
	}
	return t, nil
}

func (s *fakeResetStore) Delete(_ context.Context, token string) error {
	if _, ok := s.tokens[token]; !ok {
		return model.ErrResetTokenInvalid
	}
	delete(s.tokens, token)
	return nil
}

type sentMail struct {
	to       []string
	subject  string
	template string
	subs     mailer.Substitutions
}

type fakeMailer struct {
	sent []sentMail
	fail error
}

func (m *fakeMailer) Send(to []string, subject string, templateFile string, subs mailer.Substitutions) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, template: templateFile, subs: subs})
	return nil
}

type fakeSync struct {
	calls []string
	fail  error
}

func (s *fakeSync) record(name string) error {
	if s.fail != nil {
		return s.fail
	}
	s.calls = append(s.calls, name)
	return nil
}

func (s *fakeSync) AddClientAdmin(_ context.Context, _ syncclient.ExternalUser) error {
	return s.record("AddClientAdmin")
}

func (s *fakeSync) AddClient(_ context.Context, _ syncclient.ExternalUserCompany) error {
	return s.record("AddClient")
}

func (s *fakeSync) AddStaff(_ context.Context, _ syncclient.ExternalUser) error {
	return s.record("AddStaff")
}

func (s *fakeSync) UpdateClientData(_ context.Context, _ syncclient.ExternalUser) error {
	return s.record("UpdateClientData")
}

func (s *fakeSync) UpdateStaffData(_ context.Context, _ syncclient.ExternalUser) error {
	return s.record("UpdateStaffData")
}

type fakeAvatars struct {
	saved   int
	removed int
}

func (a *fakeAvatars) SetDefault(u model.User) model.User {
	u.AvatarName = "user-icon.png"
	u.AvatarPath = "default/user-icon.png"
	return u
}

func (a *fakeAvatars) Save(u model.User, originalName string, data []byte) (model.User, error) {
	if len(data) == 0 {
		return model.User{}, model.ErrInvalidInput
	}
	a.saved++
	u.AvatarName = "custom-" + originalName
	u.AvatarPath = "user/custom-" + originalName
	return u, nil
}

func (a *fakeAvatars) Remove(u model.User) (model.User, error) {
	a.removed++
	return a.SetDefault(u), nil
}

func (a *fakeAvatars) Open(_ model.User) (*os.File, string, error) {
	return nil, "", model.ErrInvalidInput
}
