package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"identity-api/internal/model"
	"identity-api/internal/password"
	"identity-api/internal/syncclient"
)

// SettingsService updates profile fields. Like registration, the external
// profile service is updated first; the local row changes only once the sync
// call has succeeded.
type SettingsService struct {
	users   UserStore
	sync    ProfileSync
	avatars AvatarStore
}

func NewSettingsService(users UserStore, sync ProfileSync, avatars AvatarStore) *SettingsService {
	return &SettingsService{users: users, sync: sync, avatars: avatars}
}

func (s *SettingsService) Update(ctx context.Context, userID string, req model.SettingsRequest) (model.UserView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.UserView{}, err
	}

	if !password.CheckEmail(req.Email) || (req.PersonalEmail != "" && !password.CheckEmail(req.PersonalEmail)) {
		return model.UserView{}, model.ErrInvalidEmail
	}

	if req.Email != user.Email {
		taken, err := s.users.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return model.UserView{}, err
		}
		if taken {
			return model.UserView{}, model.ErrEmailTaken
		}
	}

	user.Name = req.Name
	user.Surname = req.Surname
	user.Patronymic = req.Patronymic
	user.Position = req.Position
	user.Email = req.Email
	user.PersonalEmail = req.PersonalEmail
	user.PhoneNumber = req.PhoneNumber
	user.BusinessPhoneNumber = req.BusinessPhoneNumber
	user.Gender = model.ParseGender(req.Gender)
	user.HasCompletedSurvey = true

	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return model.UserView{}, fmt.Errorf("%w: birth_date must be YYYY-MM-DD", model.ErrInvalidInput)
		}
		user.BirthDate = birthDate
	}

	external := syncclient.NewExternalUser(user)
	switch user.Role {
	case model.RoleUser, model.RoleUserAdmin:
		err = s.sync.UpdateClientData(ctx, external)
	case model.RoleStaff:
		err = s.sync.UpdateStaffData(ctx, external)
	case model.RoleAdmin:
		// Admins exist only locally; nothing to sync.
	}
	if err != nil {
		return model.UserView{}, fmt.Errorf("%w: %v", model.ErrSyncFailed, err)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return model.UserView{}, err
	}

	return model.NewUserView(user), nil
}

// UpdateAvatar stores a new profile picture and persists the new paths.
func (s *SettingsService) UpdateAvatar(ctx context.Context, userID string, originalName string, data []byte) (model.UserView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.UserView{}, err
	}

	user, err = s.avatars.Save(user, originalName, data)
	if err != nil {
		return model.UserView{}, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return model.UserView{}, err
	}

	return model.NewUserView(user), nil
}

// RemoveAvatar deletes a custom avatar and restores the role default.
func (s *SettingsService) RemoveAvatar(ctx context.Context, userID string) (model.UserView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.UserView{}, err
	}

	user, err = s.avatars.Remove(user)
	if err != nil {
		return model.UserView{}, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return model.UserView{}, err
	}

	return model.NewUserView(user), nil
}

// OpenAvatar returns the avatar file and its content type; the caller closes
// the file.
func (s *SettingsService) OpenAvatar(ctx context.Context, userID string) (*os.File, string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	return s.avatars.Open(user)
}
