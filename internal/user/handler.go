package user

import (
	"strings"

	"github.com/restcontacts/contacts-api/internal/auth"
	"github.com/restcontacts/contacts-api/internal/response"
	"github.com/restcontacts/contacts-api/internal/storage"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	dir   *Directory
	store *storage.Store
}

func NewHandler(dir *Directory, store *storage.Store) *Handler {
	return &Handler{dir: dir, store: store}
}

func (h *Handler) Me(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return response.Unauthorized(c, "Could not validate credentials")
	}
	return response.Success(c, user, "User retrieved successfully")
}

func (h *Handler) UpdateAvatar(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return response.Unauthorized(c, "Could not validate credentials")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Avatar file is required", nil)
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return response.BadRequest(c, "Avatar must be an image", nil)
	}

	url, err := h.store.Upload(file, "avatars")
	if err != nil {
		return response.InternalError(c, "Failed to upload avatar")
	}

	updated, err := h.dir.UpdateAvatar(c.UserContext(), user.ID, url)
	if err != nil {
		return response.InternalError(c, "Failed to update avatar")
	}

	return response.Success(c, updated, "Avatar updated successfully")
}
