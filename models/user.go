package models

// User represents a user in the system, keyed by the subject of their access token
type User struct {
	Base
	Subject      string   `gorm:"size:255;uniqueIndex;not null" json:"subject"`
	Email        *string  `gorm:"size:255;index" json:"email"`
	FullName     string   `gorm:"size:255" json:"full_name"`
	Role         UserRole `gorm:"size:50;not null" json:"role"`
	Organization *string  `gorm:"size:255" json:"organization"`
	IsActive     bool     `gorm:"not null" json:"is_active"`
}

func (User) TableName() string {
	return "users"
}
