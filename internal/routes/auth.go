package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/authgate/authgate/internal/account"
)

// RegisterAuthRoutes wires the credential lifecycle endpoints.
func RegisterAuthRoutes(r fiber.Router, h *account.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
	group.Get("/verify", h.VerifyEmail)

	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)
}
