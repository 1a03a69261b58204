// Package token is the token engine: it issues and validates signed access
// and email-confirmation tokens and generates the opaque refresh and reset
// values. It keeps no state beyond its signing configuration; callers persist
// whatever needs revoking.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"identity-api/internal/model"
)

// ErrSigningKeyMissing indicates broken deployment configuration, not a bad
// request; it should never surface from a correctly started server.
var ErrSigningKeyMissing = errors.New("jwt signing key is not configured")

type Engine struct {
	key        []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	confirmTTL time.Duration
}

func NewEngine(secret string, issuer string, audience string, accessTTL time.Duration, confirmTTL time.Duration) *Engine {
	return &Engine{
		key:        []byte(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		confirmTTL: confirmTTL,
	}
}

// IssueAccessToken signs a self-contained HS256 token carrying the user's
// identity and profile claims. The returned expiry is the token's embedded
// exp and is the only lifetime clients should trust.
func (e *Engine) IssueAccessToken(user model.User) (string, time.Time, error) {
	if len(e.key) == 0 {
		return "", time.Time{}, ErrSigningKeyMissing
	}

	now := time.Now().UTC()
	expiresAt := now.Add(e.accessTTL)

	claims := jwt.MapClaims{
		"Id":                  user.ID,
		"Email":               user.Email,
		"Name":                user.Name,
		"Surname":             user.Surname,
		"MobilePhone":         user.PhoneNumber,
		"Gender":              string(user.Gender),
		"HasCompletedSurvey":  strconv.FormatBool(user.HasCompletedSurvey),
		"DateOfBirth":         user.BirthDate.Format("2006-01-02"),
		"PersonalEmail":       user.PersonalEmail,
		"Patronymic":          user.Patronymic,
		"BusinessPhoneNumber": user.BusinessPhoneNumber,
		"EmailConfirmed":      strconv.FormatBool(user.EmailConfirmed),
		"Role":                string(user.Role),
		"jti":                 uuid.NewString(),
		"iss":                 e.issuer,
		"aud":                 e.audience,
		"iat":                 now.Unix(),
		"exp":                 expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}

	return signed, expiresAt, nil
}

// GenerateRefreshToken returns an opaque random value with no embedded
// claims; validity comes entirely from the stored copy on the user row.
func (e *Engine) GenerateRefreshToken() string {
	return uuid.NewString()
}

// ParsePrincipal recovers claims from an access token checking only the
// signature; issuer, audience and (optionally) lifetime are skipped. The
// refresh flow uses this on possibly expired tokens and relies on the stored
// refresh-token match as the real authorization check.
func (e *Engine) ParsePrincipal(tokenString string, validateLifetime bool) (*model.AccessClaims, error) {
	if len(e.key) == 0 {
		return nil, ErrSigningKeyMissing
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if !validateLifetime {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.Parse(tokenString, e.keyFunc, opts...)
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrInvalidToken
	}

	principal := claimsFromMap(claims)
	if principal.UserID == "" {
		return nil, model.ErrInvalidToken
	}

	return principal, nil
}

// DecodeAccessToken fully validates a token: signature, exact HS256
// algorithm, lifetime, issuer and audience. It returns nil on any failure so
// callers can present one uniform "invalid token" answer without learning
// which check failed.
func (e *Engine) DecodeAccessToken(tokenString string) *model.AccessClaims {
	if len(e.key) == 0 {
		return nil
	}

	parsed, err := jwt.Parse(tokenString, e.keyFunc,
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(e.issuer),
		jwt.WithAudience(e.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	principal := claimsFromMap(claims)
	if principal.UserID == "" {
		return nil
	}

	return principal
}

// IssueEmailConfirmationToken signs a short-lived token carrying only the
// user id and a unique jti; it is spent by the confirm-email flow.
func (e *Engine) IssueEmailConfirmationToken(user model.User) (string, error) {
	if len(e.key) == 0 {
		return "", ErrSigningKeyMissing
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"id":  user.ID,
		"jti": uuid.NewString(),
		"iss": e.issuer,
		"aud": e.audience,
		"iat": now.Unix(),
		"exp": now.Add(e.confirmTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.key)
	if err != nil {
		return "", fmt.Errorf("sign email confirmation token: %w", err)
	}

	return signed, nil
}

// IssueResetToken returns 32 bytes of cryptographic randomness in base64.
// The token binds to a user only through the persisted reset record.
func (e *Engine) IssueResetToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read reset token randomness: %w", err)
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeResetToken undoes the URL escaping applied when the reset link was
// built. It has no cryptographic role.
func (e *Engine) DecodeResetToken(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func (e *Engine) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, model.ErrInvalidToken
	}
	return e.key, nil
}

func claimsFromMap(claims jwt.MapClaims) *model.AccessClaims {
	principal := &model.AccessClaims{}

	principal.UserID, _ = claims["Id"].(string)
	if principal.UserID == "" {
		// Email-confirmation tokens carry a lowercase id claim.
		principal.UserID, _ = claims["id"].(string)
	}
	principal.Email, _ = claims["Email"].(string)
	principal.Name, _ = claims["Name"].(string)
	principal.Surname, _ = claims["Surname"].(string)
	principal.Role, _ = claims["Role"].(string)
	principal.TokenID, _ = claims["jti"].(string)

	if raw, ok := claims["EmailConfirmed"].(string); ok {
		if confirmed, err := strconv.ParseBool(raw); err == nil {
			principal.EmailConfirmed = confirmed
		}
	}

	return principal
}
