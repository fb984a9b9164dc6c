package model

import "time"

// User is a registered exercise tracker account
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"-"`
}

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
}

// CreateUserResponse echoes the stored user
type CreateUserResponse struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}
