package domain

import "time"

type Offerer struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Siren           string    `json:"siren"`
	IsActive        bool      `json:"is_active"`
	ValidationToken *string   `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsValidated reports whether the offerer has passed manual validation.
// A non-nil validation token means validation is still pending.
func (o Offerer) IsValidated() bool {
	return o.ValidationToken == nil
}

type Venue struct {
	ID              uint      `json:"id"`
	OffererID       uint      `json:"offerer_id"`
	Name            string    `json:"name"`
	Address         *string   `json:"address"`
	IsVirtual       bool      `json:"is_virtual"`
	ValidationToken *string   `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (v Venue) IsValidated() bool {
	return v.ValidationToken == nil
}

// UserOfferer grants a professional user editor rights on an offerer.
type UserOfferer struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	OffererID uint      `json:"offerer_id"`
	CreatedAt time.Time `json:"created_at"`
}
