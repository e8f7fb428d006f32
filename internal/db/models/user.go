package models

import (
	"time"
)

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"not null" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"` // bcrypt hash
	CreatedAt    time.Time `json:"createdAt"`
	LastLogin    time.Time `json:"-"`
}
