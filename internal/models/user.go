package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleMember UserRole = "member"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Identity: учётная запись для входа. Приложение её только читает,
// создаётся при регистрации или администратором.
type Identity struct {
	ID             string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	EmailConfirmed bool      `gorm:"not null;default:false" json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Identity) TableName() string { return "users" }

func (i *Identity) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = NewID()
	}
	return nil
}

// Profile: прикладные атрибуты пользователя, id совпадает с Identity.
type Profile struct {
	ID         string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email      string    `gorm:"size:255" json:"email"`
	FullName   *string   `gorm:"size:255" json:"full_name"`
	Role       UserRole  `gorm:"type:varchar(20);not null;default:member" json:"role"`
	IsApproved bool      `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Approved: админ считается одобренным независимо от сохранённого флага.
func (p *Profile) Approved() bool {
	return p != nil && (p.IsApproved || p.Role == RoleAdmin)
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestProcessed RequestStatus = "processed"
)

type AccessRequest struct {
	ID          string        `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email       string        `gorm:"size:255;not null;index" json:"email"`
	Status      RequestStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	ProcessedAt *time.Time    `json:"processed_at"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (AccessRequest) TableName() string { return "user_requests" }

func (r *AccessRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	return nil
}
