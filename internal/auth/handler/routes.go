package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	app.Post("/api/v1/register", h.Register)
	app.Post("/api/v1/verify-email", h.VerifyEmail)
	app.Post("/api/v1/resend-verification", h.ResendVerification)
	app.Post("/api/v1/login", h.Login)
	app.Post("/api/v1/oauth/login", h.OAuthLogin)
	app.Post("/api/v1/refresh", h.Refresh)
	app.Post("/api/v1/forgot-password", h.ForgotPassword)
	app.Post("/api/v1/reset-password", h.ResetPassword)

	// Endpoints below require a live access token.
	authed := app.Group("/api/v1", h.RequireAuth())
	authed.Delete("/session", h.Logout)
	authed.Get("/sessions", h.ListSessions)
	authed.Delete("/sessions/:id", h.RevokeSession)
	authed.Post("/change-password", h.ChangePassword)
}
