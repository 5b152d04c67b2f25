package auth

import (
	"strings"

	"backend-bloghub/internal/shared/apperror"

	"github.com/gofiber/fiber/v2"
)

// Required rejects requests without a valid, unrevoked bearer token and
// stores the resolved user in locals.
func Required(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return apperror.Unauthenticated("missing bearer token")
		}
		user, err := svc.Verify(c.Context(), token)
		if err != nil {
			return err
		}
		setLocals(c, user, token)
		return c.Next()
	}
}

// Optional attaches the resolved user when a valid token is present and lets
// the request through unauthenticated otherwise.
func Optional(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token != "" {
			if user, err := svc.Verify(c.Context(), token); err == nil {
				setLocals(c, user, token)
			}
		}
		return c.Next()
	}
}

func setLocals(c *fiber.Ctx, user User, token string) {
	c.Locals("user_id", user.ID)
	c.Locals("user_role", user.Role)
	c.Locals("token", token)
}

// UserID returns the authenticated user id, empty when unauthenticated.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
