// Package auth hashes passwords, issues JWTs and guards fiber routes.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrWrongPassword    = errors.New("invalid credentials")
)

// Hasher wraps bcrypt with a configurable cost.
type Hasher struct {
	Cost int
}

// NewHasher returns a hasher using bcrypt.DefaultCost.
func NewHasher() Hasher {
	return Hasher{Cost: bcrypt.DefaultCost}
}

// Hash validates and hashes a plaintext password.
func (h Hasher) Hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

// Check compares a stored hash with a candidate password.
func (h Hasher) Check(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}
