package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID                uint       `json:"id"`
	Email             string     `json:"email"`
	Password          string     `json:"-"`
	Name              string     `json:"name"`
	DateOfBirth       *time.Time `json:"date_of_birth"`
	IsAdmin           bool       `json:"is_admin"`
	IsActive          bool       `json:"is_active"`
	CanBookFreeOffers bool       `json:"can_book_free_offers"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Age returns the user's age in full years as of the given date, or -1 when
// the date of birth is unknown.
func (u User) Age(today time.Time) int {
	if u.DateOfBirth == nil {
		return -1
	}

	return yearsBetween(*u.DateOfBirth, today)
}

func yearsBetween(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(today) {
		years--
	}
	return years
}

type Deposit struct {
	ID             uint            `json:"id"`
	UserID         uint            `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	Source         string          `json:"source"`
	ExpirationDate *time.Time      `json:"expiration_date"`
	CreatedAt      time.Time       `json:"created_at"`
}

// IsExpired reports whether the deposit no longer funds the wallet. A nil
// expiration date means the deposit never expires.
func (d Deposit) IsExpired(now time.Time) bool {
	return d.ExpirationDate != nil && d.ExpirationDate.Before(now)
}
