package server

import (
	"time"

	"github.com/restcontacts/contacts-api/internal/auth"
	"github.com/restcontacts/contacts-api/internal/contact"
	"github.com/restcontacts/contacts-api/internal/models"
	"github.com/restcontacts/contacts-api/internal/search"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Read access is open to every role; destructive contact operations are for
// admins and moderators only.
var (
	anyRole       = []models.Role{models.RoleAdmin, models.RoleModerator, models.RoleUser}
	elevatedRoles = []models.Role{models.RoleAdmin, models.RoleModerator}
)

func SetupRoutes(app *fiber.App, deps Deps) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Contacts API is running",
		})
	})

	protected := auth.Protected(deps.AuthService)

	// ==========================================
	// AUTH ROUTES (No authentication required)
	// ==========================================
	authGroup := app.Group("/auth")
	authGroup.Post("/signup", deps.Auth.Signup)
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), deps.Auth.Login)
	authGroup.Post("/refresh", limiter.New(limiter.Config{
		Max:        3,
		Expiration: 5 * time.Minute,
	}), deps.Auth.Refresh)
	authGroup.Get("/confirm/:token", deps.Auth.ConfirmEmail)
	authGroup.Post("/request_email", deps.Auth.RequestEmail)
	authGroup.Post("/forgot-password", deps.Auth.ForgotPassword)
	authGroup.Get("/password_reset_confirm/:token", deps.Auth.ResetTokenExchange)
	authGroup.Post("/set_new_password", deps.Auth.ResetPassword)
	authGroup.Post("/logout", protected, deps.Auth.Logout)
	if deps.Google != nil {
		authGroup.Get("/google/login", deps.Google.Login)
		authGroup.Get("/google/callback", deps.Google.Callback)
	}

	// ==========================================
	// USERS
	// ==========================================
	userGroup := app.Group("/users")
	userGroup.Use(protected)
	userGroup.Get("/me", deps.Users.Me)
	userGroup.Patch("/avatar", deps.Users.UpdateAvatar)

	// ==========================================
	// CONTACTS
	// ==========================================
	contactGroup := app.Group("/contacts")
	contactGroup.Use(protected)
	contactGroup.Get("/", auth.RequireRoles(anyRole...), contact.ListHandler)
	contactGroup.Post("/", auth.RequireRoles(anyRole...), contact.CreateHandler)
	contactGroup.Get("/:id", auth.RequireRoles(anyRole...), contact.GetHandler)
	contactGroup.Put("/:id", auth.RequireRoles(anyRole...), contact.UpdateHandler)
	contactGroup.Patch("/:id/favorite", auth.RequireRoles(anyRole...), contact.FavoriteHandler)
	contactGroup.Delete("/:id", auth.RequireRoles(elevatedRoles...), contact.DeleteHandler)

	// ==========================================
	// SEARCH
	// ==========================================
	searchGroup := app.Group("/search")
	searchGroup.Use(protected)
	searchGroup.Get("/find/:query", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
	}), auth.RequireRoles(anyRole...), search.FindHandler)
	searchGroup.Get("/birthdays/:shift", auth.RequireRoles(anyRole...), search.BirthdaysHandler)
}
