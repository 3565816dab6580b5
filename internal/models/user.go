package models

import (
	"strings"
	"time"
)

// Role classifies what a user may do inside the application.
type Role string

// Known user roles.
const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleUser          Role = "USER"
	RoleEvaluator     Role = "EVALUATOR"
)

// ParseRole normalizes an arbitrary role string into a known Role.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleAdministrator:
		return RoleAdministrator, true
	case RoleUser:
		return RoleUser, true
	case RoleEvaluator:
		return RoleEvaluator, true
	default:
		return "", false
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string {
	return string(r)
}

// User represents an employee account that can sign in.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Phone     string    `gorm:"size:32" json:"phone,omitempty"`
	NIP       string    `gorm:"size:64;column:nip" json:"nip,omitempty"`
	Role      Role      `gorm:"size:32;not null;default:USER" json:"role"`
	Jabatan   string    `gorm:"size:255" json:"jabatan,omitempty"`
	Bidang    string    `gorm:"size:255" json:"bidang,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
