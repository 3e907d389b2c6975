package auth

import (
	"testing"

	"github.com/restcontacts/contacts-api/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestGuardCheck(t *testing.T) {
	adminOnly := NewGuard(models.RoleAdmin)
	readers := NewGuard(models.RoleAdmin, models.RoleModerator, models.RoleUser)

	t.Run("Role outside the set is forbidden", func(t *testing.T) {
		assert.ErrorIs(t, adminOnly.Check(models.RoleUser), ErrForbidden)
		assert.ErrorIs(t, adminOnly.Check(models.RoleModerator), ErrForbidden)
	})

	t.Run("Role inside the set is allowed", func(t *testing.T) {
		assert.NoError(t, adminOnly.Check(models.RoleAdmin))
		assert.NoError(t, readers.Check(models.RoleUser))
		assert.NoError(t, readers.Check(models.RoleModerator))
		assert.NoError(t, readers.Check(models.RoleAdmin))
	})

	t.Run("Empty guard denies everything", func(t *testing.T) {
		none := NewGuard()
		assert.ErrorIs(t, none.Check(models.RoleAdmin), ErrForbidden)
	})

	t.Run("No hierarchy between roles", func(t *testing.T) {
		moderatorOnly := NewGuard(models.RoleModerator)
		assert.ErrorIs(t, moderatorOnly.Check(models.RoleAdmin), ErrForbidden)
	})
}
