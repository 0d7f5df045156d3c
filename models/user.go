package models

import "time"

// UserStatus is the account liveness flag checked on every authenticated
// request.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusDisabled UserStatus = "DISABLED"
)

// User is a mini-program end user identified by the WeChat openId.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OpenID      string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Nickname    string     `gorm:"size:64" json:"nickname"`
	AvatarURL   string     `gorm:"size:512" json:"avatar_url"`
	Status      UserStatus `gorm:"size:16;default:'ACTIVE'" json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PublicProfile is the subset of user fields exposed to other users.
type PublicProfile struct {
	ID        uint   `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

// Profile returns the public view of the user.
func (u *User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Nickname: u.Nickname, AvatarURL: u.AvatarURL}
}
