package contact

import (
	"errors"
	"time"

	"github.com/restcontacts/contacts-api/internal/auth"
	"github.com/restcontacts/contacts-api/internal/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const birthdayLayout = "2006-01-02"

type contactBody struct {
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Birthday  string         `json:"birthday"`
	Favorite  bool           `json:"favorite"`
	Notes     string         `json:"notes"`
	Extra     datatypes.JSON `json:"extra"`
}

func (b contactBody) toInput() (Input, map[string]string) {
	problems := map[string]string{}
	if b.FirstName == "" {
		problems["first_name"] = "first_name is required"
	}
	if b.Phone == "" {
		problems["phone"] = "phone is required"
	}

	var birthday time.Time
	if b.Birthday != "" {
		var err error
		birthday, err = time.Parse(birthdayLayout, b.Birthday)
		if err != nil {
			problems["birthday"] = "birthday must be formatted as YYYY-MM-DD"
		}
	}
	if len(problems) > 0 {
		return Input{}, problems
	}

	return Input{
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Email:     b.Email,
		Phone:     b.Phone,
		Birthday:  birthday,
		Favorite:  b.Favorite,
		Notes:     b.Notes,
		Extra:     b.Extra,
	}, nil
}

func ListHandler(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	contacts, total, err := List(user.ID, limit, offset)
	if err != nil {
		return response.InternalError(c, "Failed to fetch contacts")
	}

	return response.SuccessWithMeta(c, contacts, &response.Meta{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	}, "Contacts retrieved successfully")
}

func GetHandler(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid contact ID", nil)
	}

	contact, err := GetByID(user.ID, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Contact")
		}
		return response.InternalError(c, "Failed to fetch contact")
	}

	return response.Success(c, contact, "Contact retrieved successfully")
}

func CreateHandler(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)

	var body contactBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	in, problems := body.toInput()
	if problems != nil {
		return response.ValidationError(c, problems)
	}

	contact, err := Create(user.ID, in)
	if err != nil {
		return response.InternalError(c, "Failed to create contact")
	}

	return response.Created(c, contact, "Contact created successfully")
}

func UpdateHandler(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid contact ID", nil)
	}

	var body contactBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	in, problems := body.toInput()
	if problems != nil {
		return response.ValidationError(c, problems)
	}

	contact, err := Update(user.ID, uint(id), in)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Contact")
		}
		return response.InternalError(c, "Failed to update contact")
	}

	return response.Success(c, contact, "Contact updated successfully")
}

func FavoriteHandler(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid contact ID", nil)
	}

	var body struct {
		Favorite bool `json:"favorite"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	contact, err := SetFavorite(user.ID, uint(id), body.Favorite)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Contact")
		}
		return response.InternalError(c, "Failed to update contact")
	}

	return response.Success(c, contact, "Contact updated successfully")
}

func DeleteHandler(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid contact ID", nil)
	}

	if err := Delete(user.ID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Contact")
		}
		return response.InternalError(c, "Failed to delete contact")
	}

	return response.NoContent(c)
}
