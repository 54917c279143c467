package token

import "errors"

var (
	ErrInvalidKey      = errors.New("token secret must not be empty")
	ErrSign            = errors.New("token signing failed")
	ErrInvalidToken    = errors.New("token verification failed")
	ErrExpired         = errors.New("token has expired")
	ErrMissingField    = errors.New("token is missing a required claim")
	ErrEncodePayload   = errors.New("token payload could not be encoded")
	ErrDecodePayload   = errors.New("token payload could not be decoded")
	ErrPasswordTooLong = errors.New("password too long")
)
