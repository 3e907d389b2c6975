package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/restcontacts/contacts-api/internal/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleHandler implements login through Google. A Google identity arrives
// with a verified address, so first sight of the email creates the account
// already confirmed.
type GoogleHandler struct {
	svc   *Service
	oauth *oauth2.Config

	mu     sync.Mutex
	states map[string]time.Time
}

func NewGoogleHandler(svc *Service, clientID, clientSecret, redirectURL string) *GoogleHandler {
	return &GoogleHandler{
		svc: svc,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		states: make(map[string]time.Time),
	}
}

func (g *GoogleHandler) Login(c *fiber.Ctx) error {
	state := generateState()
	g.storeState(state)
	return c.Redirect(g.oauth.AuthCodeURL(state))
}

func (g *GoogleHandler) Callback(c *fiber.Ctx) error {
	if !g.validateState(c.Query("state")) {
		return response.BadRequest(c, "Invalid state parameter", nil)
	}

	token, err := g.oauth.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		return response.InternalError(c, "Failed to exchange token")
	}

	client := g.oauth.Client(c.UserContext(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return response.InternalError(c, "Failed to get user info")
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var userData struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &userData); err != nil || userData.Email == "" {
		return response.InternalError(c, "Failed to parse user info")
	}

	u, pair, err := g.svc.LoginExternal(c.UserContext(), userData.Name, userData.Email)
	if err != nil {
		return response.InternalError(c, "Failed to log in")
	}

	return response.Success(c, fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
		"user":          u,
	}, "Login successful")
}

func generateState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func (g *GoogleHandler) storeState(state string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.states[state] = time.Now().Add(5 * time.Minute)

	for k, v := range g.states {
		if time.Now().After(v) {
			delete(g.states, k)
		}
	}
}

func (g *GoogleHandler) validateState(state string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	expiry, exists := g.states[state]
	if !exists || time.Now().After(expiry) {
		return false
	}
	delete(g.states, state)
	return true
}
