package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/authgate/authgate/internal/account"
)

// BearerAuth guards protected routes. It extracts the Authorization bearer
// token, resolves it through the account service (which enforces the access
// purpose), and stores the user in request locals. Any token failure is a
// 401 with the normalized message; a valid token whose user no longer exists
// is a 404.
func BearerAuth(svc *account.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		raw := strings.TrimSpace(authz[len("Bearer "):])

		user, err := svc.CurrentUser(c.UserContext(), raw)
		if err != nil {
			if errors.Is(err, account.ErrUserNotFound) {
				return fiber.NewError(http.StatusNotFound, account.ErrUserNotFound.Error())
			}
			return fiber.NewError(http.StatusUnauthorized, account.ErrInvalidToken.Error())
		}

		c.Locals(account.UserLocalsKey, user)
		return c.Next()
	}
}
