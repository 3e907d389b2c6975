package user

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/restcontacts/contacts-api/internal/auth"
	"github.com/restcontacts/contacts-api/internal/models"

	"gorm.io/gorm"
)

// Directory is the gorm-backed user store the auth core talks to.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (d *Directory) Create(ctx context.Context, username, email, passwordDigest string) (*models.User, error) {
	u := models.User{
		Username: username,
		Email:    email,
		Password: passwordDigest,
		Role:     models.RoleUser,
		Avatar:   GravatarURL(email),
	}
	if err := d.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *Directory) UpdateRefreshToken(ctx context.Context, userID uint, token *string) error {
	return d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error
}

// RotateRefreshToken swaps old for new only while old is still the stored
// value. The rows-affected check is what makes a rotated-out token lose the
// race instead of minting a second valid pair.
func (d *Directory) RotateRefreshToken(ctx context.Context, userID uint, old, new string) (bool, error) {
	result := d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", userID, old).
		Update("refresh_token", new)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (d *Directory) UpdateResetToken(ctx context.Context, userID uint, token *string) error {
	return d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_reset_token", token).Error
}

func (d *Directory) ConfirmEmail(ctx context.Context, email string) error {
	result := d.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("confirmed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (d *Directory) UpdatePassword(ctx context.Context, userID uint, passwordDigest string) error {
	return d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password", passwordDigest).Error
}

func (d *Directory) UpdateAvatar(ctx context.Context, userID uint, url string) (*models.User, error) {
	if err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("avatar", url).Error; err != nil {
		return nil, err
	}
	var u models.User
	if err := d.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GravatarURL is the default avatar for fresh accounts.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon", hex.EncodeToString(sum[:]))
}
