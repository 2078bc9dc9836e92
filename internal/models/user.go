package models

import (
	"time"
)

// User is a registered account. Password holds the bcrypt hash and never leaves the service.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	FirstName      string `gorm:"size:255;not null"`
	LastName       string `gorm:"size:255;not null"`
	Username       string `gorm:"size:255;uniqueIndex;not null"`
	Email          string `gorm:"size:255;uniqueIndex;not null"`
	Password       string `gorm:"not null"`
	ProfilePicture *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
