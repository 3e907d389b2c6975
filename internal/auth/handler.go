package auth

import (
	"errors"
	"log"
	"strings"

	"github.com/restcontacts/contacts-api/internal/email"
	"github.com/restcontacts/contacts-api/internal/response"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc  *Service
	mail email.Sender
}

func NewHandler(svc *Service, mail email.Sender) *Handler {
	return &Handler{svc: svc, mail: mail}
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Username == "" || body.Email == "" || body.Password == "" {
		return response.ValidationError(c, map[string]string{
			"username": "username is required",
			"email":    "email is required",
			"password": "password is required",
		})
	}

	u, err := h.svc.Register(c.UserContext(), body.Username, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return response.Conflict(c, "Account already exists")
		}
		return response.InternalError(c, "Failed to create user")
	}

	token, err := h.svc.IssueEmailToken(u.Email)
	if err != nil {
		return response.InternalError(c, "Failed to issue confirmation token")
	}
	if err := h.mail.SendConfirmation(u.Email, u.Username, token); err != nil {
		log.Println("confirmation mail not sent:", err)
	}

	return response.Created(c, u, "Check your email for confirmation")
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Email == "" || body.Password == "" {
		return response.ValidationError(c, map[string]string{
			"email":    "email is required",
			"password": "password is required",
		})
	}

	pair, err := h.svc.Login(c.UserContext(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrUnconfirmed) {
			return response.Unauthorized(c, "Email not confirmed")
		}
		// ErrNotFound and ErrBadCredentials share one message so the
		// response does not reveal whether the account exists.
		return response.Unauthorized(c, "Invalid email or password")
	}

	return response.Success(c, fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	}, "Login successful")
}

func (h *Handler) Refresh(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return response.Unauthorized(c, "Missing authorization token")
	}

	pair, err := h.svc.Refresh(c.UserContext(), token)
	if err != nil {
		return response.Unauthorized(c, "Invalid refresh token")
	}

	return response.Success(c, fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	}, "Token refreshed successfully")
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return response.Unauthorized(c, "Could not validate credentials")
	}

	if err := h.svc.Logout(c.UserContext(), user.ID); err != nil {
		return response.InternalError(c, "Failed to log out")
	}
	return response.Success(c, nil, "Logout successful")
}

func (h *Handler) ConfirmEmail(c *fiber.Ctx) error {
	already, err := h.svc.ConfirmEmail(c.UserContext(), c.Params("token"))
	if err != nil {
		return response.Unauthorized(c, "Invalid token for email verification")
	}
	if already {
		return response.Success(c, nil, "Your email is already confirmed")
	}
	return response.Success(c, nil, "Email confirmed")
}

// RequestEmail re-sends the confirmation link. The reply is the same whether
// or not the account exists.
func (h *Handler) RequestEmail(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.Email == "" {
		return response.ValidationError(c, map[string]string{"email": "email is required"})
	}

	u, err := h.svc.users.GetByEmail(c.UserContext(), body.Email)
	if err == nil {
		if u.Confirmed {
			return response.Success(c, nil, "Your email is already confirmed")
		}
		token, err := h.svc.IssueEmailToken(u.Email)
		if err == nil {
			if err := h.mail.SendConfirmation(u.Email, u.Username, token); err != nil {
				log.Println("confirmation mail not sent:", err)
			}
		}
	}

	return response.Success(c, nil, "Check your email for confirmation")
}

// ForgotPassword emails a reset link. Same reply either way, so the endpoint
// cannot be used to enumerate accounts.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.Email == "" {
		return response.ValidationError(c, map[string]string{"email": "email is required"})
	}

	if u, err := h.svc.users.GetByEmail(c.UserContext(), body.Email); err == nil {
		token, err := h.svc.IssueEmailToken(u.Email)
		if err == nil {
			if err := h.mail.SendPasswordReset(u.Email, u.Username, token); err != nil {
				log.Println("reset mail not sent:", err)
			}
		}
	}

	return response.Success(c, nil, "If account exists, reset link has been sent")
}

// ResetTokenExchange trades the emailed link token for the stored reset
// token the final step requires.
func (h *Handler) ResetTokenExchange(c *fiber.Ctx) error {
	email, err := h.svc.VerifyEmailToken(c.Params("token"))
	if err != nil {
		return response.Unauthorized(c, "Invalid token for password reset")
	}

	token, err := h.svc.RequestPasswordReset(c.UserContext(), email)
	if err != nil {
		return response.Unauthorized(c, "Invalid token for password reset")
	}

	return response.Success(c, fiber.Map{"reset_password_token": token}, "Use this token to set a new password")
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var body struct {
		ResetPasswordToken string `json:"reset_password_token"`
		NewPassword        string `json:"new_password"`
		ConfirmPassword    string `json:"confirm_password"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.ResetPasswordToken == "" || body.NewPassword == "" {
		return response.ValidationError(c, map[string]string{
			"reset_password_token": "reset_password_token is required",
			"new_password":         "new_password is required",
		})
	}

	err := h.svc.ResetPassword(c.UserContext(), body.ResetPasswordToken, body.NewPassword, body.ConfirmPassword)
	if err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return response.Unauthorized(c, "Passwords do not match")
		}
		return response.Unauthorized(c, "Invalid reset token")
	}

	return response.Success(c, nil, "Password successfully updated")
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
