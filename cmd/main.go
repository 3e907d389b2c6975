package main

import (
	"log"

	"github.com/restcontacts/contacts-api/internal/auth"
	"github.com/restcontacts/contacts-api/internal/config"
	"github.com/restcontacts/contacts-api/internal/database"
	"github.com/restcontacts/contacts-api/internal/email"
	"github.com/restcontacts/contacts-api/internal/server"
	"github.com/restcontacts/contacts-api/internal/storage"
	"github.com/restcontacts/contacts-api/internal/user"
)

func main() {
	cfg := config.Load()

	if err := cfg.ValidateSecret(); err != nil {
		log.Fatal("❌ JWT configuration error: ", err)
	}
	log.Println("✅ JWT secret validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Println("✅ Database migrated successfully")

	// ========== STORAGE SETUP ==========
	var store *storage.Store
	if cfg.UseS3 && cfg.S3Bucket != "" && cfg.S3Region != "" {
		store, err = storage.NewS3(cfg.S3Bucket, cfg.S3Region, cfg.CloudFrontURL)
		if err != nil {
			log.Fatal("❌ S3 initialization failed:", err)
		}
		log.Printf("☁️  Using S3: %s (region: %s)", cfg.S3Bucket, cfg.S3Region)
	} else {
		store, err = storage.NewLocal("./uploads")
		if err != nil {
			log.Fatal("❌ Failed to initialize local storage:", err)
		}
		log.Println("💾 Using LOCAL storage mode (./uploads/)")
	}

	// ========== AUTH CORE ==========
	codec, err := auth.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		log.Fatal("❌ Token codec error: ", err)
	}

	directory := user.NewDirectory(db)
	hasher := auth.NewHasher(cfg.BcryptCost)
	authService := auth.NewService(codec, hasher, directory,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.EmailTokenTTL)

	mailer := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername,
		cfg.SMTPPassword, cfg.MailFrom, cfg.AppBaseURL)

	deps := server.Deps{
		AuthService: authService,
		Auth:        auth.NewHandler(authService, mailer),
		Users:       user.NewHandler(directory, store),
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		deps.Google = auth.NewGoogleHandler(authService, cfg.GoogleClientID,
			cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}

	// ========== START SERVER ==========
	app := server.New(deps)

	log.Printf("🚀 Contacts API starting on %s", cfg.ServerAddr)
	log.Printf("🔐 JWT Authentication: Enabled")

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}
