package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultImageKey is the object key shown for users without an uploaded picture.
const DefaultImageKey = "profile_pics/default.jpg"

// User represents a user in the system. Email is the login name and
// AccountName is what other users see.
type User struct {
	gorm.Model
	Email        string `gorm:"size:255;unique;not null"`
	AccountName  string `gorm:"size:30;unique;not null"`
	FirstName    string `gorm:"size:30"`
	LastName     string `gorm:"size:150"`
	Job          string `gorm:"size:30"`
	ImageKey     string `gorm:"size:255;not null;default:'profile_pics/default.jpg'"`
	PasswordHash string `gorm:"size:255;not null"`
	IsActive     bool   `gorm:"not null;index"`
	IsStaff      bool   `gorm:"not null"`
	DateJoined   time.Time
}

// DisplayName returns the account name, falling back to the email address.
func (u User) DisplayName() string {
	if u.AccountName != "" {
		return u.AccountName
	}
	return u.Email
}

// FullName joins the first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
