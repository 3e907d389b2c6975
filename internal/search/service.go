package search

import (
	"time"

	"github.com/restcontacts/contacts-api/internal/database"
	"github.com/restcontacts/contacts-api/internal/models"
)

// ByPartialInfo matches the query as a substring of first name, last name,
// email or phone, scoped to the owner's contacts.
func ByPartialInfo(userID uint, query string) ([]models.Contact, error) {
	like := "%" + query + "%"
	var contacts []models.Contact
	err := database.DB.
		Where("user_id = ?", userID).
		Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like, like).
		Order("id").
		Find(&contacts).Error
	return contacts, err
}

// UpcomingBirthdays returns contacts whose next birthday falls within shift
// days from today. The year wraparound is handled by rolling a birthday that
// already passed this year into the next one.
func UpcomingBirthdays(userID uint, shift int) ([]models.Contact, error) {
	var all []models.Contact
	if err := database.DB.Where("user_id = ?", userID).Find(&all).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var upcoming []models.Contact
	for _, contact := range all {
		if contact.Birthday.IsZero() {
			continue
		}
		if daysUntilBirthday(today, contact.Birthday) <= shift {
			upcoming = append(upcoming, contact)
		}
	}
	return upcoming, nil
}

func daysUntilBirthday(today, birthday time.Time) int {
	// time.Date normalizes Feb 29 to Mar 1 in non-leap years.
	next := time.Date(today.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = time.Date(today.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	}
	return int(next.Sub(today).Hours() / 24)
}
