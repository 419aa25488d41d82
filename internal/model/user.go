package model

import "time"

const (
	UserTypeStudent   = "student"
	UserTypeProfessor = "professor"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:254" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Profile      *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile carries the role tag; every User has exactly one.
type Profile struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	UserType string `gorm:"size:10;not null;default:student" json:"user_type"`
}

func ValidUserType(userType string) bool {
	return userType == UserTypeStudent || userType == UserTypeProfessor
}

// Role returns the profile role, or an empty string when the profile was not loaded.
func (u *User) Role() string {
	if u == nil || u.Profile == nil {
		return ""
	}
	return u.Profile.UserType
}
