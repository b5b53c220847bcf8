package account

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the account lifecycle over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler wraps the service for route registration.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// UserLocalsKey is where the bearer-auth middleware stores the resolved user.
const UserLocalsKey = "current_user"

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register creates an unverified account and reports the email a verification
// link was sent to.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if req.Password == "" {
		return fiber.NewError(http.StatusUnprocessableEntity, "password is required")
	}

	user, err := h.svc.Register(c.UserContext(), Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return fiber.NewError(http.StatusBadRequest, ErrDuplicateEmail.Error())
		}
		return h.internalError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully! Verification email has been sent.",
		"email":   user.Email,
	})
}

// Login exchanges valid credentials on a verified account for a bearer token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	access, err := h.svc.Login(c.UserContext(), Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		case errors.Is(err, ErrEmailNotVerified):
			return fiber.NewError(http.StatusForbidden, ErrEmailNotVerified.Error())
		}
		return h.internalError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"access_token": access,
		"token_type":   "bearer",
	})
}

// VerifyEmail consumes the token from the mailed verification link.
func (h *Handler) VerifyEmail(c *fiber.Ctx) error {
	signed := c.Query("token")
	if signed == "" {
		return fiber.NewError(http.StatusBadRequest, ErrInvalidToken.Error())
	}

	if err := h.svc.VerifyEmail(c.UserContext(), signed); err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken):
			return fiber.NewError(http.StatusBadRequest, ErrInvalidToken.Error())
		case errors.Is(err, ErrUserNotFound):
			return fiber.NewError(http.StatusNotFound, ErrUserNotFound.Error())
		}
		return h.internalError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Email verified successfully"})
}

// Me returns the profile of the bearer-authenticated user resolved by the
// auth middleware.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, ok := c.Locals(UserLocalsKey).(User)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, ErrInvalidToken.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"id":       user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
	})
}

// ForgotPassword mails a reset link to a known account.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}

	if err := h.svc.ForgotPassword(c.UserContext(), req.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return fiber.NewError(http.StatusNotFound, "email not found")
		}
		return h.internalError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Reset password has been sent! Check your email"})
}

// ResetPassword consumes a reset token and sets the new password.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := h.svc.ResetPassword(c.UserContext(), req.Token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordMismatch):
			return fiber.NewError(http.StatusBadRequest, ErrPasswordMismatch.Error())
		case errors.Is(err, ErrInvalidToken):
			return fiber.NewError(http.StatusBadRequest, ErrInvalidToken.Error())
		case errors.Is(err, ErrUserNotFound):
			return fiber.NewError(http.StatusNotFound, ErrUserNotFound.Error())
		}
		return h.internalError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Password changed successfully"})
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fiber.NewError(http.StatusUnprocessableEntity, "invalid email address")
	}
	return nil
}

// internalError hides storage and other unexpected failures behind a generic
// 500; the detail goes to the server log only.
func (h *Handler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error("unexpected error", "path", c.Path(), "error", err)
	return fiber.NewError(http.StatusInternalServerError, "internal server error")
}
