package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"identity-api/internal/config"
	"identity-api/internal/handler"
	"identity-api/internal/middleware"
	"identity-api/internal/model"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Account  *handler.AccountHandler
	User     *handler.UserHandler
	Settings *handler.SettingsHandler
	Avatar   *handler.AvatarHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Post("/refresh", h.Auth.Refresh)
		})

		api.Route("/account", func(account chi.Router) {
			account.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin, model.RoleUserAdmin)).
				Post("/register", h.Account.Register)
			account.Get("/confirm-email", h.Account.ConfirmEmail)
			account.Post("/forgot-password", h.Account.ForgotPassword)
			account.Post("/reset-password", h.Account.ResetPassword)
			account.With(authMiddleware.RequireAuth).Post("/change-password", h.Account.ChangePassword)
			account.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin)).
				Post("/send-login-details", h.Account.SendLoginDetails)
		})

		api.With(authMiddleware.RequireAuth).Get("/users/me", h.User.Me)
		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin)).Get("/users", h.User.List)
		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin)).Get("/users/{id}", h.User.Get)

		api.With(authMiddleware.RequireAuth).Put("/settings", h.Settings.Update)

		api.Route("/avatar", func(avatar chi.Router) {
			avatar.Use(authMiddleware.RequireAuth)
			avatar.Get("/", h.Avatar.Get)
			avatar.Post("/", h.Avatar.Upload)
			avatar.Delete("/", h.Avatar.Delete)
		})
	})

	return r
}
