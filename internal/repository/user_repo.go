package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"identity-api/internal/model"
)

const bcryptCost = 12

const userColumns = `id, email, password_hash, email_confirmed, role, name, surname, patronymic,
	        birth_date, gender, position, personal_email, phone_number, business_phone_number,
	        has_completed_survey, external_id, refresh_token, refresh_token_expires_at,
	        avatar_name, avatar_path, created_at, updated_at`

// UserRepository owns the users table. Credential checks live here so that
// hashing stays an implementation detail of the store.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email))

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		u.ID, u.Email, u.PasswordHash, u.EmailConfirmed, string(u.Role), u.Name, u.Surname, u.Patronymic,
		u.BirthDate, string(u.Gender), u.Position, u.PersonalEmail, u.PhoneNumber, u.BusinessPhoneNumber,
		u.HasCompletedSurvey, u.ExternalID, u.RefreshToken, u.RefreshTokenExpiresAt,
		u.AvatarName, u.AvatarPath, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update rewrites the mutable profile fields. Refresh-token state, the
// confirmation flag and the password hash have dedicated single-statement
// updates so concurrent writers serialize on the row without clobbering each
// other's columns.
func (r *UserRepository) Update(ctx context.Context, u model.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET email = $2, name = $3, surname = $4, patronymic = $5, birth_date = $6, gender = $7,
		     position = $8, personal_email = $9, phone_number = $10, business_phone_number = $11,
		     has_completed_survey = $12, avatar_name = $13, avatar_path = $14, updated_at = $15
		 WHERE id = $1`,
		u.ID, u.Email, u.Name, u.Surname, u.Patronymic, u.BirthDate, string(u.Gender),
		u.Position, u.PersonalEmail, u.PhoneNumber, u.BusinessPhoneNumber,
		u.HasCompletedSurvey, u.AvatarName, u.AvatarPath, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// UpdateRefreshToken rotates the stored refresh token. The previous value
// stops validating the moment this statement commits.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $2, refresh_token_expires_at = $3, updated_at = $4 WHERE id = $1`,
		userID, token, expiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetEmailConfirmed(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET email_confirmed = TRUE, updated_at = $2 WHERE id = $1`,
		userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set email confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID string, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		userID, string(hash), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (r *UserRepository) CheckPassword(u model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword verifies the old password and re-hashes the new one in a
// single repository primitive, mirroring how the rest of the store owns
// credential state.
func (r *UserRepository) ChangePassword(ctx context.Context, userID string, oldPassword string, newPassword string) error {
	u, err := r.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !r.CheckPassword(u, oldPassword) {
		return model.ErrPasswordMismatch
	}

	return r.UpdatePassword(ctx, userID, newPassword)
}

// List pages users over the stable (created_at, id) ordering.
func (r *UserRepository) List(ctx context.Context, offset int, limit int) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	var role, gender string

	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.EmailConfirmed, &role, &u.Name, &u.Surname,
		&u.Patronymic, &u.BirthDate, &gender, &u.Position, &u.PersonalEmail, &u.PhoneNumber,
		&u.BusinessPhoneNumber, &u.HasCompletedSurvey, &u.ExternalID, &u.RefreshToken,
		&u.RefreshTokenExpiresAt, &u.AvatarName, &u.AvatarPath, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}

	u.Role = model.Role(role)
	u.Gender = model.ParseGender(gender)
	return u, nil
}
