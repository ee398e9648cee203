package models

import (
	"fmt"
	"time"
)

// Intimate is a directed request from Sender to Receiver to become intimate
// friends. Once approved the relation is mutual, but the row keeps the
// direction so it is known who asked whom.
//
// PairKey is the same for (a, b) and (b, a) and is unique, so a pair of
// users can never have more than one row.
type Intimate struct {
	ID         uint       `gorm:"primaryKey"`
	SenderID   uint       `gorm:"not null;index"`
	ReceiverID uint       `gorm:"not null;index"`
	PairKey    string     `gorm:"size:64;not null;uniqueIndex"`
	Request    bool       `gorm:"not null"`
	Approval   bool       `gorm:"not null"`
	Reject     bool       `gorm:"not null"`
	Date       *time.Time // set when Approval becomes true
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Sender   User `gorm:"foreignKey:SenderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Receiver User `gorm:"foreignKey:ReceiverID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// PairKey returns the order-independent key for two user IDs.
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// Pending reports whether the request still awaits the receiver's decision.
func (i Intimate) Pending() bool {
	return i.Request && !i.Approval
}

// Accepted reports whether both sides are intimate friends.
func (i Intimate) Accepted() bool {
	return i.Request && i.Approval
}

// Partner returns the ID of the other side of the relation as seen by userID.
func (i Intimate) Partner(userID uint) uint {
	if i.SenderID == userID {
		return i.ReceiverID
	}
	return i.SenderID
}
