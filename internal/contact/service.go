package contact

import (
	"time"

	"github.com/restcontacts/contacts-api/internal/database"
	"github.com/restcontacts/contacts-api/internal/models"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
)

// Notes come in as free text from clients; strip any markup before storing.
var sanitizer = bluemonday.StrictPolicy()

type Input struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  time.Time
	Favorite  bool
	Notes     string
	Extra     datatypes.JSON
}

func List(userID uint, limit, offset int) ([]models.Contact, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := database.DB.Model(&models.Contact{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contacts []models.Contact
	err := database.DB.Where("user_id = ?", userID).
		Limit(limit).Offset(offset).
		Order("id").
		Find(&contacts).Error
	return contacts, total, err
}

func GetByID(userID, contactID uint) (*models.Contact, error) {
	var contact models.Contact
	if err := database.DB.Where("user_id = ? AND id = ?", userID, contactID).First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func Create(userID uint, in Input) (*models.Contact, error) {
	contact := models.Contact{
		UserID:    userID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Birthday:  in.Birthday,
		Favorite:  in.Favorite,
		Notes:     sanitizer.Sanitize(in.Notes),
		Extra:     in.Extra,
	}
	if err := database.DB.Create(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func Update(userID, contactID uint, in Input) (*models.Contact, error) {
	contact, err := GetByID(userID, contactID)
	if err != nil {
		return nil, err
	}

	contact.FirstName = in.FirstName
	contact.LastName = in.LastName
	contact.Email = in.Email
	contact.Phone = in.Phone
	contact.Birthday = in.Birthday
	contact.Favorite = in.Favorite
	contact.Notes = sanitizer.Sanitize(in.Notes)
	if in.Extra != nil {
		contact.Extra = in.Extra
	}

	if err := database.DB.Save(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

func SetFavorite(userID, contactID uint, favorite bool) (*models.Contact, error) {
	contact, err := GetByID(userID, contactID)
	if err != nil {
		return nil, err
	}
	contact.Favorite = favorite
	if err := database.DB.Save(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

func Delete(userID, contactID uint) error {
	contact, err := GetByID(userID, contactID)
	if err != nil {
		return err
	}
	return database.DB.Delete(contact).Error
}
