package models

import (
	"time"
)

type User struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"size:100;not null" json:"name"`
	Email        string        `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Age          int           `gorm:"not null" json:"age"`
	PasswordHash string        `gorm:"column:password;size:250;not null" json:"-"` // bcrypt, never serialized
	BankAccounts []BankAccount `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
