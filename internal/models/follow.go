package models

import "time"

// Follow is a one-way subscription from FollowerID to FolloweeID.
// The primary key is a composite of (FollowerID, FolloweeID) to ensure uniqueness.
type Follow struct {
	FollowerID uint `gorm:"primaryKey"`
	FolloweeID uint `gorm:"primaryKey;index"`
	CreatedAt  time.Time

	// Define foreign key relationships
	Follower User `gorm:"foreignKey:FollowerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Followee User `gorm:"foreignKey:FolloweeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
