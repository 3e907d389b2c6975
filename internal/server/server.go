package server

import (
	"github.com/restcontacts/contacts-api/internal/auth"
	"github.com/restcontacts/contacts-api/internal/user"

	"github.com/gofiber/fiber/v2"
)

// Deps bundles the constructed handlers the routes need. The auth service is
// included separately because the protected route groups build middleware
// from it.
type Deps struct {
	AuthService *auth.Service
	Auth        *auth.Handler
	Google      *auth.GoogleHandler
	Users       *user.Handler
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	SetupRoutes(app, deps)

	return app
}
