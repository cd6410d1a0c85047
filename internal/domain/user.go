// Package domain contains entities without logic, just meta-data
package domain

import "errors"

const MaxUserIDLen = 36

var ErrUserIDEmpty = errors.New("user id empty")

type UserID string

// User is the verified platform identity attached to a connection.
// Token issuance lives in the platform backend; here identity is read-only.
type User struct {
	ID          UserID `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

func NewUser(id UserID) (*User, error) {
	if id == "" {
		return nil, ErrUserIDEmpty
	}
	return &User{ID: id}, nil
}
