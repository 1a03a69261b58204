package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RegisterRequest struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	CompanyID  string `json:"company_id"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type ChangePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type SendLoginDetailsRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SettingsRequest struct {
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	Patronymic          string `json:"patronymic"`
	BirthDate           string `json:"birth_date"`
	Position            string `json:"position"`
	Email               string `json:"email"`
	PersonalEmail       string `json:"personal_email"`
	PhoneNumber         string `json:"phone_number"`
	BusinessPhoneNumber string `json:"business_phone_number"`
	Gender              string `json:"gender"`
}
