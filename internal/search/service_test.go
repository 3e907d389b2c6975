package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestDaysUntilBirthday(t *testing.T) {
	tests := []struct {
		name     string
		today    time.Time
		birthday time.Time
		want     int
	}{
		{"Today", date(2026, time.March, 10), date(1990, time.March, 10), 0},
		{"Tomorrow", date(2026, time.March, 10), date(1990, time.March, 11), 1},
		{"Next week", date(2026, time.March, 10), date(1990, time.March, 17), 7},
		{"Passed this year rolls into next", date(2026, time.March, 10), date(1990, time.March, 9), 364},
		{"Year wrap across December", date(2026, time.December, 30), date(1990, time.January, 2), 3},
		{"Feb 29 in a non-leap year reads as Mar 1", date(2026, time.February, 27), date(1992, time.February, 29), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, daysUntilBirthday(tt.today, tt.birthday))
		})
	}
}
