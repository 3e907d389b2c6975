package auth_test

import (
	"net/http"
	"testing"

	"github.com/restcontacts/contacts-api/internal/database"
	"github.com/restcontacts/contacts-api/internal/models"
	"github.com/restcontacts/contacts-api/internal/testutils"

	"github.com/stretchr/testify/assert"
)

func tokensFrom(t *testing.T, result testutils.StandardResponse) (access, refresh string) {
	t.Helper()
	data, ok := result.Data.(map[string]interface{})
	if !assert.True(t, ok, "token response should carry a data object") {
		return "", ""
	}
	access, _ = data["access_token"].(string)
	refresh, _ = data["refresh_token"].(string)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	return access, refresh
}

func TestSignupAndConfirmFlow(t *testing.T) {
	app := testutils.SetupTestApp(t)

	rec, err := testutils.MakeRequest(app, "POST", "/auth/signup", map[string]string{
		"username": "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	sent, ok := testutils.Mailer.LastConfirmation()
	assert.True(t, ok, "signup should send a confirmation mail")
	assert.Equal(t, "alice@example.com", sent.To)

	t.Run("Login before confirmation is refused", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "password123",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		assert.Equal(t, "Email not confirmed", result.Error.Message)
	})

	t.Run("Duplicate signup conflicts", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/signup", map[string]string{
			"username": "Alice Again",
			"email":    "alice@example.com",
			"password": "password123",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)
		testutils.AssertError(t, rec, "CONFLICT")
	})

	t.Run("Confirmation link enables login", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/auth/confirm/"+sent.Token, nil, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, err = testutils.MakeRequest(app, "POST", "/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "password123",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		tokensFrom(t, result)
	})

	t.Run("Replaying the confirmation link is harmless", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/auth/confirm/"+sent.Token, nil, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		assert.Equal(t, "Your email is already confirmed", result.Message)
	})

	t.Run("Signup without required fields", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/signup", map[string]string{
			"email": "bob@example.com",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		testutils.AssertError(t, rec, "VALIDATION_ERROR")
	})
}

func TestLoginDoesNotRevealAccounts(t *testing.T) {
	app := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, database.DB, "existing@example.com", "password123", models.RoleUser, true)

	loginMessage := func(email, password string) string {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/login", map[string]string{
			"email":    email,
			"password": password,
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		if result.Error == nil {
			return ""
		}
		return result.Error.Message
	}

	unknown := loginMessage("nobody@example.com", "password123")
	wrong := loginMessage("existing@example.com", "wrongpassword")
	assert.Equal(t, unknown, wrong, "unknown account and wrong password must be indistinguishable")
	assert.Equal(t, "Invalid email or password", unknown)
}

func TestRefreshEndpoint(t *testing.T) {
	app := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, database.DB,"alice@example.com", "password123", models.RoleUser, true)

	rec, err := testutils.MakeRequest(app, "POST", "/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result testutils.StandardResponse
	testutils.ParseResponse(t, rec, &result)
	_, refresh := tokensFrom(t, result)

	rec, err = testutils.MakeRequest(app, "POST", "/auth/refresh", nil, refresh)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	testutils.ParseResponse(t, rec, &result)
	_, rotated := tokensFrom(t, result)
	assert.NotEqual(t, refresh, rotated)

	t.Run("Rotated-out token is refused", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/refresh", nil, refresh)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		testutils.AssertError(t, rec, "UNAUTHORIZED")
	})

	t.Run("Missing bearer token", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/refresh", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAccessTokenRejectedForRefresh(t *testing.T) {
	app := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, database.DB,"alice@example.com", "password123", models.RoleUser, true)

	access := testutils.GetAuthToken(t, "alice@example.com")
	rec, err := testutils.MakeRequest(app, "POST", "/auth/refresh", nil, access)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	app := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, database.DB,"alice@example.com", "password123", models.RoleUser, true)

	rec, err := testutils.MakeRequest(app, "POST", "/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result testutils.StandardResponse
	testutils.ParseResponse(t, rec, &result)
	access, refresh := tokensFrom(t, result)

	rec, err = testutils.MakeRequest(app, "POST", "/auth/logout", nil, access)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, err = testutils.MakeRequest(app, "POST", "/auth/refresh", nil, refresh)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	app := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, database.DB,"alice@example.com", "password123", models.RoleUser, true)

	forgot := func(email string) string {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/forgot-password", map[string]string{
			"email": email,
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		return result.Message
	}

	known := forgot("alice@example.com")
	unknown := forgot("nobody@example.com")
	assert.Equal(t, known, unknown, "forgot-password must not reveal whether the account exists")

	sent, ok := testutils.Mailer.LastReset()
	assert.True(t, ok, "a reset mail should go to the real account")
	assert.Equal(t, "alice@example.com", sent.To)

	rec, err := testutils.MakeRequest(app, "GET", "/auth/password_reset_confirm/"+sent.Token, nil, "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result testutils.StandardResponse
	testutils.ParseResponse(t, rec, &result)
	data, ok := result.Data.(map[string]interface{})
	assert.True(t, ok)
	resetToken, _ := data["reset_password_token"].(string)
	assert.NotEmpty(t, resetToken)

	t.Run("Mismatched confirmation password", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/set_new_password", map[string]string{
			"reset_password_token": resetToken,
			"new_password":         "newpassword",
			"confirm_password":     "different",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		assert.Equal(t, "Passwords do not match", result.Error.Message)
	})

	t.Run("Emailed link token is not the reset token", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/set_new_password", map[string]string{
			"reset_password_token": sent.Token,
			"new_password":         "newpassword",
			"confirm_password":     "newpassword",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Valid token changes the password once", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/set_new_password", map[string]string{
			"reset_password_token": resetToken,
			"new_password":         "newpassword",
			"confirm_password":     "newpassword",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, err = testutils.MakeRequest(app, "POST", "/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "password123",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec, err = testutils.MakeRequest(app, "POST", "/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "newpassword",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, err = testutils.MakeRequest(app, "POST", "/auth/set_new_password", map[string]string{
			"reset_password_token": resetToken,
			"new_password":         "thirdpassword",
			"confirm_password":     "thirdpassword",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		assert.Equal(t, "Invalid reset token", result.Error.Message)
	})
}

func TestResendConfirmation(t *testing.T) {
	app := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, database.DB,"pending@example.com", "password123", models.RoleUser, false)

	rec, err := testutils.MakeRequest(app, "POST", "/auth/request_email", map[string]string{
		"email": "pending@example.com",
	}, "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	sent, ok := testutils.Mailer.LastConfirmation()
	assert.True(t, ok)
	assert.Equal(t, "pending@example.com", sent.To)

	t.Run("Unknown address gets the same generic reply", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "POST", "/auth/request_email", map[string]string{
			"email": "nobody@example.com",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		assert.Equal(t, "Check your email for confirmation", result.Message)
		assert.Len(t, testutils.Mailer.Confirmations, 1, "no mail for unknown addresses")
	})
}

func TestProtectedMiddleware(t *testing.T) {
	app := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, database.DB,"alice@example.com", "password123", models.RoleUser, true)

	t.Run("No token", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/users/me", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Garbage token", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/users/me", nil, "not-a-jwt")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Valid access token", func(t *testing.T) {
		token := testutils.GetAuthToken(t, "alice@example.com")
		rec, err := testutils.MakeRequest(app, "GET", "/users/me", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
