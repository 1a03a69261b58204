package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"identity-api/internal/mailer"
	"identity-api/internal/model"
	"identity-api/internal/password"
	"identity-api/internal/syncclient"
	"identity-api/internal/token"
)

const (
	confirmEmailTemplate = "confirm_email.html"
	resetPasswordLetter  = "reset_password.html"
	loginDetailsTemplate = "login_details.html"
)

// AccountService drives the account lifecycle: registration, email
// confirmation and the password flows. Registration synchronizes the user to
// the external profile service before any local write, so a sync failure can
// never leave an orphaned local account.
type AccountService struct {
	users   UserStore
	resets  ResetTokenStore
	tokens  *token.Engine
	mail    Mailer
	sync    ProfileSync
	avatars AvatarAssigner

	legacyPassword string
	confirmURL     string
	resetURL       string
	resetTTL       time.Duration
}

func NewAccountService(
	users UserStore,
	resets ResetTokenStore,
	tokens *token.Engine,
	mail Mailer,
	sync ProfileSync,
	avatars AvatarAssigner,
	legacyPassword string,
	confirmURL string,
	resetURL string,
	resetTTL time.Duration,
) *AccountService {
	return &AccountService{
		users:          users,
		resets:         resets,
		tokens:         tokens,
		mail:           mail,
		sync:           sync,
		avatars:        avatars,
		legacyPassword: legacyPassword,
		confirmURL:     confirmURL,
		resetURL:       resetURL,
		resetTTL:       resetTTL,
	}
}

// Register creates a confirmed-pending account. Legacy clients keep the
// configured shared password and receive no email; everyone else gets a
// generated password delivered together with the confirmation link.
func (s *AccountService) Register(ctx context.Context, req model.RegisterRequest, legacyClient bool) (model.UserView, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return model.UserView{}, err
	}

	if !password.CheckEmail(req.Email) {
		return model.UserView{}, model.ErrInvalidEmail
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return model.UserView{}, err
	}
	if exists {
		return model.UserView{}, model.ErrEmailTaken
	}

	plainPassword := s.legacyPassword
	if legacyClient {
		if plainPassword == "" {
			return model.UserView{}, fmt.Errorf("legacy client password is not configured")
		}
	} else {
		plainPassword, err = password.Generate()
		if err != nil {
			return model.UserView{}, err
		}
	}

	now := time.Now().UTC()
	user := model.User{
		ID:                    uuid.NewString(),
		Email:                 req.Email,
		Role:                  role,
		Name:                  req.Name,
		Surname:               req.Surname,
		BirthDate:             now,
		Gender:                model.GenderMan,
		ExternalID:            req.ExternalID,
		RefreshTokenExpiresAt: now.Add(24 * time.Hour),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if user.ExternalID == "" {
		user.ExternalID = uuid.NewString()
	}

	user.PasswordHash, err = s.users.HashPassword(plainPassword)
	if err != nil {
		return model.UserView{}, err
	}

	user = s.avatars.SetDefault(user)

	// Durable external effects first; local persistence only after the
	// profile service has accepted the user.
	if err := s.syncNewUser(ctx, user, req.CompanyID); err != nil {
		return model.UserView{}, err
	}

	confirmToken, err := s.tokens.IssueEmailConfirmationToken(user)
	if err != nil {
		return model.UserView{}, err
	}

	if !legacyClient {
		link := s.confirmURL + "?token=" + confirmToken
		subs := mailer.Substitutions{Link: link, Password: plainPassword, Email: user.Email}
		if err := s.mail.Send([]string{user.Email}, "Confirm your email", confirmEmailTemplate, subs); err != nil {
			return model.UserView{}, fmt.Errorf("send confirmation email: %w", err)
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.UserView{}, err
	}

	slog.Info("user registered", "user_id", user.ID, "role", user.Role, "legacy", legacyClient)

	return model.NewUserView(user), nil
}

func (s *AccountService) syncNewUser(ctx context.Context, user model.User, companyID string) error {
	external := syncclient.NewExternalUser(user)

	var err error
	switch user.Role {
	case model.RoleUserAdmin:
		err = s.sync.AddClientAdmin(ctx, external)
	case model.RoleUser:
		if companyID == "" {
			return fmt.Errorf("%w: company id is required for role %s", model.ErrInvalidRequest, user.Role)
		}
		err = s.sync.AddClient(ctx, syncclient.ExternalUserCompany{ExternalUser: external, CompanyID: companyID})
	case model.RoleStaff:
		err = s.sync.AddStaff(ctx, external)
	default:
		return fmt.Errorf("%w: role %s cannot be registered here", model.ErrInvalidRequest, user.Role)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSyncFailed, err)
	}

	return nil
}

// ConfirmEmail flips the confirmation flag exactly once. A bad token yields
// (false, nil) so the caller can render one generic failure page without
// learning why the token failed; confirming twice is an error by design.
func (s *AccountService) ConfirmEmail(ctx context.Context, rawToken string) (bool, error) {
	claims := s.tokens.DecodeAccessToken(rawToken)
	if claims == nil {
		return false, nil
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return false, err
	}

	if user.EmailConfirmed {
		return false, model.ErrEmailAlreadyConfirmed
	}

	if err := s.users.SetEmailConfirmed(ctx, user.ID); err != nil {
		return false, err
	}

	slog.Info("email confirmed", "user_id", user.ID)
	return true, nil
}

// ForgotPassword issues a reset grant and mails the link. A send failure is
// returned to the caller: the user must know the mail did not go out.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	raw, err := s.tokens.IssueResetToken()
	if err != nil {
		return "", err
	}

	entry := model.ResetToken{
		ID:        uuid.NewString(),
		Token:     raw,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.resetTTL),
	}
	if err := s.resets.Store(ctx, entry); err != nil {
		return "", err
	}

	link := s.resetURL + "?token=" + url.QueryEscape(raw)
	subs := mailer.Substitutions{Link: link, Email: user.Email}
	if err := s.mail.Send([]string{user.Email}, "Reset password link", resetPasswordLetter, subs); err != nil {
		return "", fmt.Errorf("send reset password email: %w", err)
	}

	slog.Info("reset password link sent", "user_id", user.ID)
	return fmt.Sprintf("reset password link has been sent to %s", user.Email), nil
}

// ResetPassword spends a reset grant. Absent and expired tokens produce the
// same generic error so a caller cannot probe which tokens ever existed. The
// record is deleted on success; deletion failing because the row is already
// gone means a concurrent reset won, and this attempt loses.
func (s *AccountService) ResetPassword(ctx context.Context, rawToken string, newPassword string, confirmPassword string) (model.UserView, error) {
	decoded := s.tokens.DecodeResetToken(rawToken)

	entry, err := s.resets.FindByToken(ctx, decoded)
	if err != nil {
		return model.UserView{}, err
	}

	if entry.Expired(time.Now().UTC()) {
		return model.UserView{}, model.ErrResetTokenInvalid
	}

	user, err := s.users.FindByID(ctx, entry.UserID)
	if err != nil {
		return model.UserView{}, err
	}

	if newPassword != confirmPassword {
		return model.UserView{}, model.ErrPasswordsDoNotMatch
	}

	// Deliberate shortcut: the user cannot supply an old password here, so
	// the hash is rewritten directly instead of going through ChangePassword.
	if err := s.users.UpdatePassword(ctx, user.ID, newPassword); err != nil {
		return model.UserView{}, err
	}

	if err := s.resets.Delete(ctx, entry.Token); err != nil {
		return model.UserView{}, err
	}

	slog.Info("password reset", "user_id", user.ID)
	return model.NewUserView(user), nil
}

// ChangePassword validates the new password against policy and delegates the
// old-password check and re-hash to the store's primitive.
func (s *AccountService) ChangePassword(ctx context.Context, email string, oldPassword string, newPassword string) (model.UserView, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return model.UserView{}, err
	}

	if !password.CheckPassword(newPassword) {
		return model.UserView{}, model.ErrWeakPassword
	}

	if err := s.users.ChangePassword(ctx, user.ID, oldPassword, newPassword); err != nil {
		return model.UserView{}, err
	}

	slog.Info("password changed", "user_id", user.ID)
	return model.NewUserView(user), nil
}

// SendLoginDetails mails a known login/password pair to a legacy client.
func (s *AccountService) SendLoginDetails(ctx context.Context, login string, email string, plainPassword string) (string, error) {
	if _, err := s.users.FindByEmail(ctx, login); err != nil {
		return "", err
	}

	subs := mailer.Substitutions{Password: plainPassword, Email: login}
	if err := s.mail.Send([]string{email}, "Your account data", loginDetailsTemplate, subs); err != nil {
		return "", fmt.Errorf("%w: could not send login details: %v", model.ErrInvalidRequest, err)
	}

	return fmt.Sprintf("login details were sent to %s", email), nil
}
