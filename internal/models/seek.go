package models

import "gorm.io/gorm"

// Seek is a question where the author asks other users for advice.
type Seek struct {
	gorm.Model
	AuthorID uint   `gorm:"not null;index"`
	Content  string `gorm:"size:1000;not null"`

	Author  User     `gorm:"foreignKey:AuthorID"`
	Advices []Advice `gorm:"foreignKey:SeekID"`
}

// Advice is an answer to a Seek.
type Advice struct {
	gorm.Model
	SeekID   uint   `gorm:"not null;index"`
	AuthorID uint   `gorm:"not null"`
	Content  string `gorm:"size:1000;not null"`

	Author User `gorm:"foreignKey:AuthorID"`
}
