package service

import (
	"context"
	"os"
	"time"

	"identity-api/internal/mailer"
	"identity-api/internal/model"
	"identity-api/internal/syncclient"
)

// Consumer-side contracts for the collaborators the flows orchestrate. The
// pgx repositories, the SMTP sender and the sync client satisfy these; tests
// substitute in-memory fakes.

type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	Update(ctx context.Context, u model.User) error
	UpdateRefreshToken(ctx context.Context, userID string, token string, expiresAt time.Time) error
	SetEmailConfirmed(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID string, password string) error
	HashPassword(password string) (string, error)
	CheckPassword(u model.User, password string) bool
	ChangePassword(ctx context.Context, userID string, oldPassword string, newPassword string) error
	List(ctx context.Context, offset int, limit int) ([]model.User, error)
	Count(ctx context.Context) (int, error)
}

type ResetTokenStore interface {
	Store(ctx context.Context, t model.ResetToken) error
	FindByToken(ctx context.Context, token string) (model.ResetToken, error)
	Delete(ctx context.Context, token string) error
}

type Mailer interface {
	Send(to []string, subject string, templateFile string, subs mailer.Substitutions) error
}

type ProfileSync interface {
	AddClientAdmin(ctx context.Context, user syncclient.ExternalUser) error
	AddClient(ctx context.Context, user syncclient.ExternalUserCompany) error
	AddStaff(ctx context.Context, user syncclient.ExternalUser) error
	UpdateClientData(ctx context.Context, user syncclient.ExternalUser) error
	UpdateStaffData(ctx context.Context, user syncclient.ExternalUser) error
}

type AvatarAssigner interface {
	SetDefault(u model.User) model.User
}

type AvatarStore interface {
	AvatarAssigner
	Save(u model.User, originalName string, data []byte) (model.User, error)
	Remove(u model.User) (model.User, error)
	Open(u model.User) (*os.File, string, error)
}
