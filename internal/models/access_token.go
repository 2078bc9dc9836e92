package models

import (
	"time"
)

// AccessToken is an issued bearer token. A zero ExpiresIn never expires.
type AccessToken struct {
	ID          uint   `gorm:"primaryKey"`
	ClientID    string `gorm:"size:64;not null"`
	UserID      uint   `gorm:"index;not null"`
	AccessToken string `gorm:"size:512;uniqueIndex;not null"`
	Scopes      string
	IssuedAt    time.Time `gorm:"not null"`
	ExpiresIn   int64     `gorm:"not null;default:0"` // seconds
	CreatedAt   time.Time
}

func (AccessToken) TableName() string {
	return "access_tokens"
}
