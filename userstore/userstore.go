package userstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrExists   = errors.New("user already exists")
)

type UserStore interface {
	// Create fails with ErrExists when the email is taken.
	Create(ctx context.Context, user User) error
	// GetByEmail fails with ErrNotFound for an unknown email.
	GetByEmail(ctx context.Context, email string) (User, error)
	Close() error
}

type User struct {
	Id           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
