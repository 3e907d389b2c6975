package search_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/restcontacts/contacts-api/internal/database"
	"github.com/restcontacts/contacts-api/internal/models"
	"github.com/restcontacts/contacts-api/internal/testutils"

	"github.com/stretchr/testify/assert"
)

func seedContact(t *testing.T, contact *models.Contact) {
	t.Helper()
	err := database.DB.Create(contact).Error
	assert.NoError(t, err, "Failed to seed contact")
}

func names(t *testing.T, result testutils.StandardResponse) []string {
	t.Helper()
	items, _ := result.Data.([]interface{})
	var out []string
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if assert.True(t, ok) {
			name, _ := m["first_name"].(string)
			out = append(out, name)
		}
	}
	return out
}

func TestFindByPartialInfo(t *testing.T) {
	app := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, database.DB, "alice@example.com", "password123", models.RoleUser, true)
	bob := testutils.CreateTestUser(t, database.DB, "bob@example.com", "password123", models.RoleUser, true)

	seedContact(t, &models.Contact{UserID: alice.ID, FirstName: "Charlie", LastName: "Brown", Email: "charlie@peanuts.example", Phone: "+15550001111"})
	seedContact(t, &models.Contact{UserID: alice.ID, FirstName: "Dana", LastName: "Charleston", Email: "dana@example.com", Phone: "+15550002222"})
	seedContact(t, &models.Contact{UserID: alice.ID, FirstName: "Eve", LastName: "Smith", Email: "eve@example.com", Phone: "+15550003333"})
	seedContact(t, &models.Contact{UserID: bob.ID, FirstName: "Charlene", LastName: "Hidden", Email: "charlene@example.com", Phone: "+15550004444"})

	token := testutils.GetAuthToken(t, "alice@example.com")

	t.Run("Substring matches across name fields", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/search/find/harl", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		assert.ElementsMatch(t, []string{"Charlie", "Dana"}, names(t, result),
			"matches first and last names, never other users' contacts")
	})

	t.Run("Phone match", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/search/find/0003333", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		assert.Equal(t, []string{"Eve"}, names(t, result))
	})

	t.Run("No matches", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/search/find/zzz", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		assert.Empty(t, names(t, result))
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/search/find/harl", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpcomingBirthdays(t *testing.T) {
	app := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, database.DB, "alice@example.com", "password123", models.RoleUser, true)

	now := time.Now().UTC()
	birthdayIn := func(days int) time.Time {
		d := now.AddDate(-30, 0, days)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}

	seedContact(t, &models.Contact{UserID: alice.ID, FirstName: "Soon", Phone: "+15550001111", Birthday: birthdayIn(3)})
	seedContact(t, &models.Contact{UserID: alice.ID, FirstName: "Edge", Phone: "+15550002222", Birthday: birthdayIn(7)})
	seedContact(t, &models.Contact{UserID: alice.ID, FirstName: "Later", Phone: "+15550003333", Birthday: birthdayIn(30)})
	seedContact(t, &models.Contact{UserID: alice.ID, FirstName: "NoBirthday", Phone: "+15550004444"})

	token := testutils.GetAuthToken(t, "alice@example.com")

	t.Run("Default window of seven days", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/search/birthdays/7", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		assert.ElementsMatch(t, []string{"Soon", "Edge"}, names(t, result))
	})

	t.Run("Wider window", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/search/birthdays/31", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, rec, &result)
		assert.ElementsMatch(t, []string{"Soon", "Edge", "Later"}, names(t, result))
	})

	t.Run("Negative shift", func(t *testing.T) {
		rec, err := testutils.MakeRequest(app, "GET", "/search/birthdays/-1", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
