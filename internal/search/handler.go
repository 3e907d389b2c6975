package search

import (
	"strconv"

	"github.com/restcontacts/contacts-api/internal/auth"
	"github.com/restcontacts/contacts-api/internal/response"

	"github.com/gofiber/fiber/v2"
)

func FindHandler(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	query := c.Params("query")
	if query == "" {
		return response.BadRequest(c, "Search query is required", nil)
	}

	contacts, err := ByPartialInfo(user.ID, query)
	if err != nil {
		return response.InternalError(c, "Search failed")
	}

	return response.Success(c, contacts, "Contacts retrieved successfully")
}

func BirthdaysHandler(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	shift, err := strconv.Atoi(c.Params("shift", "7"))
	if err != nil || shift < 0 {
		return response.BadRequest(c, "Invalid day shift", nil)
	}

	contacts, err := UpcomingBirthdays(user.ID, shift)
	if err != nil {
		return response.InternalError(c, "Search failed")
	}

	return response.Success(c, contacts, "Contacts retrieved successfully")
}
