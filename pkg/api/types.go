package api

import (
	"time"

	"github.com/rhuss/portier/pkg/users"
)

// User is the public representation of an account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserList is a list envelope for users.
type UserList struct {
	Object string  `json:"object"`
	Data   []*User `json:"data"`
}

// Status is the body of the status endpoint.
type Status struct {
	Status string `json:"status"`
}

// Stats reports object counts.
type Stats struct {
	Users int `json:"users"`
}

// NewUser projects a stored user onto its public fields.
func NewUser(u *users.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserList projects a slice of stored users.
func NewUserList(list []*users.User) *UserList {
	data := make([]*User, 0, len(list))
	for _, u := range list {
		data = append(data, NewUser(u))
	}
	return &UserList{Object: "list", Data: data}
}
