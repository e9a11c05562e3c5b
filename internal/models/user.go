package models

import (
	"strings"
	"time"
)

// User holds an account imported from the company directory. Password is the
// stored credential string; its hash scheme is unknown until verification
// (see service.VerifyPassword).
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username string `gorm:"size:32;uniqueIndex;not null" json:"username"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Password string `gorm:"size:255;not null" json:"-"`
	Status   string `gorm:"size:20;default:'active'" json:"status"`

	SessionID  *string    `gorm:"size:255" json:"-"`
	LoginTime  *time.Time `json:"login_time,omitempty"`
	LogoutTime *time.Time `json:"logout_time,omitempty"`
}

var inactiveMarkers = map[string]struct{}{
	"inactive": {},
	"disabled": {},
	"blocked":  {},
	"0":        {},
	"n":        {},
	"false":    {},
}

// IsActive treats status permissively: only an explicit inactive marker
// disables the account.
func (u *User) IsActive() bool {
	status := strings.ToLower(strings.TrimSpace(u.Status))
	_, inactive := inactiveMarkers[status]
	return !inactive
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
	}
}
