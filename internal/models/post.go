package models

import "gorm.io/gorm"

// Post is a short status update shown on the home feed.
type Post struct {
	gorm.Model
	AuthorID uint   `gorm:"not null;index"`
	Content  string `gorm:"size:1000;not null"`
	Likes    int    `gorm:"not null;default:0"`
	Dislikes int    `gorm:"not null;default:0"`

	Author   User      `gorm:"foreignKey:AuthorID"`
	Comments []Comment `gorm:"foreignKey:PostID"`
}

// Comment is a reply attached to a post.
type Comment struct {
	gorm.Model
	PostID   uint   `gorm:"not null;index"`
	AuthorID uint   `gorm:"not null"`
	Content  string `gorm:"size:150;not null"`

	Author User `gorm:"foreignKey:AuthorID"`
}
