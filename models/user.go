package models

import "time"

// Role is a closed set; free-form role strings are rejected at the boundary.
type Role string

const (
	RoleClient      Role = "CLIENT"
	RoleStorekeeper Role = "STOREKEEPER"
	RoleAdmin       Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleStorekeeper, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	UserID       string    `json:"id" bson:"userid"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Name         string    `json:"name" bson:"name"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         Role      `json:"role" bson:"role"`
	IsActive     bool      `json:"isActive" bson:"isActive"`
	DietIDs      []string  `json:"dietIds" bson:"dietIds"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
	LastLogin    time.Time `json:"lastLogin" bson:"lastLogin"`
}
