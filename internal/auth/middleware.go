package auth

import (
	"strings"

	"github.com/restcontacts/contacts-api/internal/models"
	"github.com/restcontacts/contacts-api/internal/response"

	"github.com/gofiber/fiber/v2"
)

const localsUserKey = "current_user"

// Protected resolves the bearer token to a principal and stashes it in the
// request locals. Missing, malformed, expired and wrong-scope tokens all map
// to 401; so does an unresolvable subject.
func Protected(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid token format")
		}

		user, err := svc.Authenticate(c.UserContext(), tokenParts[1])
		if err != nil {
			return response.Unauthorized(c, "Could not validate credentials")
		}

		c.Locals(localsUserKey, user)
		return c.Next()
	}
}

// RequireRoles allows the request through only when the authenticated
// principal's role is in the given set. Must run after Protected.
func RequireRoles(roles ...models.Role) fiber.Handler {
	guard := NewGuard(roles...)
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return response.Unauthorized(c, "Could not validate credentials")
		}
		if err := guard.Check(user.Role); err != nil {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// CurrentUser returns the principal Protected stored, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUserKey).(*models.User)
	return user
}
