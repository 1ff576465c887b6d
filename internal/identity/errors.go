package identity

import "errors"

var (
	ErrEmptyField         = errors.New("empty field")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExist   = errors.New("user already exist")
	ErrInvalidToken       = errors.New("invalid token")
)
