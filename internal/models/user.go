package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusBlocked UserStatus = "blocked"
)

type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

const DefaultPhoto = "default.png"

/** --------------------ENTITIES-------------------- */
// User represents an account, local or created through an OAuth provider
type User struct {
	ID                string     `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Name              string     `gorm:"not null;index" bson:"name" json:"name"`
	Email             string     `gorm:"uniqueIndex;not null;type:varchar(320)" bson:"email" json:"email"`
	Photo             string     `bson:"photo" json:"photo"`
	Password          string     `bson:"password,omitempty" json:"-"` // bcrypt hash, never serialized
	Provider          Provider   `gorm:"type:varchar(20);default:local" bson:"provider" json:"provider"`
	ProviderID        string     `bson:"providerId,omitempty" json:"-"`
	Status            UserStatus `gorm:"type:varchar(20);default:active" bson:"status" json:"status"`
	Role              Role       `gorm:"type:varchar(20);default:user;index" bson:"role" json:"role"`
	IsVerified        bool       `bson:"isVerified" json:"isVerified"`
	PasswordChangedAt *time.Time `bson:"passwordChangedAt,omitempty" json:"-"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsBlocked() bool {
	return u.Status == StatusBlocked
}

// ChangedPasswordAfter reports whether the password changed after a token issued at issuedAt.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	return u.PasswordChangedAt != nil && u.PasswordChangedAt.After(issuedAt)
}

func (u *User) Session() Session {
	return Session{ID: u.ID, Name: u.Name, Email: u.Email, Photo: u.Photo}
}

// Session is the identity attached to an authenticated connection. It never carries the password hash.
type Session struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

// Author is the public part of a user embedded in comments.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

/** -------------------- DTOs -------------------- */
// Request
type SignupRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,alphanum"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

type GitHubLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// UserIDsRequest carries the ids for the bulk admin actions
type UserIDsRequest struct {
	Users []string `json:"users" binding:"required,min=1,dive,required"`
}

// Response
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type DashboardStats struct {
	TotalTemplates   int64 `json:"totalTemplates"`
	TotalUsers       int64 `json:"totalUsers"`
	TotalAdmins      int64 `json:"totalAdmins"`
	TotalSubmissions int64 `json:"totalSubmissions"`
}

func (s Session) Author() *Author {
	return &Author{ID: s.ID, Name: s.Name, Photo: s.Photo}
}

func (u *User) Author() *Author {
	return &Author{ID: u.ID, Name: u.Name, Photo: u.Photo}
}
