package model

import "time"

type Gender string

const (
	GenderMan     Gender = "Man"
	GenderWoman   Gender = "Woman"
	GenderUnknown Gender = "Unknown"
)

func ParseGender(raw string) Gender {
	switch Gender(raw) {
	case GenderMan:
		return GenderMan
	case GenderWoman:
		return GenderWoman
	default:
		return GenderUnknown
	}
}

// Role is the closed set of account roles. Every role-dependent decision
// (default avatar, sync endpoint, storage folder) goes through an exhaustive
// mapping keyed by this type instead of ad hoc string switches.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleUserAdmin Role = "UserAdmin"
	RoleStaff     Role = "Staff"
	RoleUser      Role = "User"
)

func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleUserAdmin, RoleStaff, RoleUser:
		return Role(raw), nil
	default:
		return "", ErrRoleNotFound
	}
}

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	EmailConfirmed bool      `json:"email_confirmed"`
	Role           Role      `json:"role"`
	Name           string    `json:"name"`
	Surname        string    `json:"surname"`
	Patronymic     string    `json:"patronymic"`
	BirthDate      time.Time `json:"birth_date"`
	Gender         Gender    `json:"gender"`
	Position       string    `json:"position"`

	PersonalEmail       string `json:"personal_email"`
	PhoneNumber         string `json:"phone_number"`
	BusinessPhoneNumber string `json:"business_phone_number"`

	HasCompletedSurvey bool   `json:"has_completed_survey"`
	ExternalID         string `json:"external_id"`

	RefreshToken          string    `json:"-"`
	RefreshTokenExpiresAt time.Time `json:"-"`

	AvatarName string `json:"-"`
	AvatarPath string `json:"avatar_path"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserView is the client-facing projection of a user: no password hash and no
// refresh token state.
type UserView struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	EmailConfirmed      bool      `json:"email_confirmed"`
	Role                Role      `json:"role"`
	Name                string    `json:"name"`
	Surname             string    `json:"surname"`
	Patronymic          string    `json:"patronymic"`
	BirthDate           time.Time `json:"birth_date"`
	Gender              Gender    `json:"gender"`
	Position            string    `json:"position"`
	PersonalEmail       string    `json:"personal_email"`
	PhoneNumber         string    `json:"phone_number"`
	BusinessPhoneNumber string    `json:"business_phone_number"`
	HasCompletedSurvey  bool      `json:"has_completed_survey"`
	AvatarPath          string    `json:"avatar_path"`
}

func NewUserView(u User) UserView {
	return UserView{
		ID:                  u.ID,
		Email:               u.Email,
		EmailConfirmed:      u.EmailConfirmed,
		Role:                u.Role,
		Name:                u.Name,
		Surname:             u.Surname,
		Patronymic:          u.Patronymic,
		BirthDate:           u.BirthDate,
		Gender:              u.Gender,
		Position:            u.Position,
		PersonalEmail:       u.PersonalEmail,
		PhoneNumber:         u.PhoneNumber,
		BusinessPhoneNumber: u.BusinessPhoneNumber,
		HasCompletedSurvey:  u.HasCompletedSurvey,
		AvatarPath:          u.AvatarPath,
	}
}
