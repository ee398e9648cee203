package models

import "gorm.io/gorm"

// Article represents a blog-like entry written by staff.
type Article struct {
	gorm.Model
	AuthorID uint   `gorm:"not null"`
	Title    string `gorm:"size:255;not null"`
	Body     string `gorm:"type:text;not null"`

	Author User `gorm:"foreignKey:AuthorID"`
}
