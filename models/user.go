package models

import (
	"time"
)

const UserTable = "users"

// Roles a principal can hold. Every authenticated request carries exactly one.
const (
	RoleStudent = "Student"
	RoleStaff   = "Staff"
	RoleAdmin   = "Admin"
)

func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleStaff || role == RoleAdmin
}

type User struct {
	ID           uint   `gorm:"primaryKey;column:user_id" json:"userId"`
	Username     string `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	FullName     string `gorm:"size:255;not null" json:"fullName"`
	Role         string `gorm:"size:20;not null" json:"role"`
	Email        string `gorm:"uniqueIndex;size:150;not null" json:"email"`
	PhoneNumber  string `gorm:"size:15" json:"phoneNumber,omitempty"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }
