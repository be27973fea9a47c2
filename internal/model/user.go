package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// RoleJobSeeker is role for candidate who apply to job post
	RoleJobSeeker = "jobseeker"
	// RoleRecruiter is role for user who own job post and review application
	RoleRecruiter = "recruiter"
	// RoleAdmin is role for administrator
	RoleAdmin = "admin"
)

// User is gorm model for every account in the system
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username    string    `gorm:"type:text;uniqueIndex;not null" json:"username"`
	Password    string    `gorm:"type:text" json:"-"`
	Role        string    `gorm:"type:text;not null" json:"role"`
	FirstName   string    `gorm:"type:text" json:"first_name"`
	LastName    string    `gorm:"type:text" json:"last_name"`
	Email       *string   `gorm:"type:text" json:"email"`
	CompanyName string    `gorm:"type:text" json:"company_name,omitempty"`

	// Profile resume used when an application is submitted without attachment
	ResumeBlobID   *uuid.UUID `gorm:"type:uuid" json:"resume_blob_id,omitempty"`
	ResumeFileName *string    `gorm:"type:text" json:"resume_file_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName join first and last name, fallback to username when both are empty
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}

// UserResponse is returned by login and register endpoint
type UserResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}
