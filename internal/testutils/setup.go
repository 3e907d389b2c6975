package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/restcontacts/contacts-api/internal/auth"
	"github.com/restcontacts/contacts-api/internal/database"
	"github.com/restcontacts/contacts-api/internal/models"
	"github.com/restcontacts/contacts-api/internal/response"
	"github.com/restcontacts/contacts-api/internal/server"
	"github.com/restcontacts/contacts-api/internal/storage"
	"github.com/restcontacts/contacts-api/internal/user"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const TestSecret = "test_secret_key_minimum_32_characters_long_for_testing_only"

// Shared handles into the app the last SetupTestApp built. Tests reach for
// these the same way production code reaches for database.DB.
var (
	AuthService *auth.Service
	Directory   *user.Directory
	Mailer      *FakeMailer
)

// FakeMailer captures outbound tokens instead of talking to SMTP.
type FakeMailer struct {
	mu            sync.Mutex
	Confirmations []SentMail
	Resets        []SentMail
}

type SentMail struct {
	To    string
	Token string
}

func (m *FakeMailer) SendConfirmation(to, username, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirmations = append(m.Confirmations, SentMail{To: to, Token: token})
	return nil
}

func (m *FakeMailer) SendPasswordReset(to, username, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets = append(m.Resets, SentMail{To: to, Token: token})
	return nil
}

func (m *FakeMailer) LastConfirmation() (SentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Confirmations) == 0 {
		return SentMail{}, false
	}
	return m.Confirmations[len(m.Confirmations)-1], true
}

func (m *FakeMailer) LastReset() (SentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Resets) == 0 {
		return SentMail{}, false
	}
	return m.Resets[len(m.Resets)-1], true
}

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Contact{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

func SetupTestApp(t *testing.T) *fiber.App {
	db := TestDB(t)
	database.DB = db

	codec, err := auth.NewCodec(TestSecret, "HS256")
	assert.NoError(t, err, "Failed to build token codec")

	Directory = user.NewDirectory(db)
	AuthService = auth.NewService(codec, auth.NewHasher(bcrypt.MinCost), Directory,
		15*time.Minute, 7*24*time.Hour, 7*24*time.Hour)
	Mailer = &FakeMailer{}

	store, err := storage.NewLocal(t.TempDir())
	assert.NoError(t, err, "Failed to initialize storage")

	return server.New(server.Deps{
		AuthService: AuthService,
		Auth:        auth.NewHandler(AuthService, Mailer),
		Users:       user.NewHandler(Directory, store),
	})
}

func CreateTestUser(t *testing.T, db *gorm.DB, email, password string, role models.Role, confirmed bool) *models.User {
	digest, err := auth.NewHasher(bcrypt.MinCost).Hash(password)
	assert.NoError(t, err, "Failed to hash test password")

	u := &models.User{
		Username:  "Test User",
		Email:     email,
		Password:  digest,
		Role:      role,
		Confirmed: confirmed,
		Avatar:    user.GravatarURL(email),
	}
	err = db.Create(u).Error
	assert.NoError(t, err, "Failed to create test user")

	return u
}

func GetAuthToken(t *testing.T, email string) string {
	token, err := AuthService.IssueAccessToken(email)
	assert.NoError(t, err, "Failed to generate test token")
	return token
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

type StandardResponse = response.StandardResponse

func ParseResponse(t *testing.T, rec *httptest.ResponseRecorder, out *StandardResponse) {
	err := json.Unmarshal(rec.Body.Bytes(), out)
	assert.NoError(t, err, "Failed to parse response body")
}

func AssertError(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	var result StandardResponse
	ParseResponse(t, rec, &result)
	assert.False(t, result.Success)
	if assert.NotNil(t, result.Error) {
		assert.Equal(t, code, result.Error.Code)
	}
}
