package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=hash.go -destination=mock_hash.go -package=auth

type HashServiceInterface interface {
	HashPassword(password string) (string, error)
	ComparePassword(hashedPassword, password string) bool
}

var ErrEmptyPassword = errors.New("password cannot be empty")

// HashService hashes with bcrypt. Zero Cost means bcrypt.DefaultCost.
type HashService struct {
	Cost int
}

func (b *HashService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (b *HashService) ComparePassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
