package config

import "errors"

var (
	ErrFileNotFound  = errors.New("config file not found")
	ErrUnknownFormat = errors.New("cannot infer config file format")
	ErrParse         = errors.New("config parse failed")
	ErrDecode        = errors.New("config decode failed")
	ErrInvalidKey    = errors.New("invalid config key")
)
