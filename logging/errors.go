package logging

import "errors"

var (
	ErrDirectoryCreation = errors.New("logging: cannot create log directory")
	ErrInvalidLevel      = errors.New("logging: invalid level")
	ErrInvalidService    = errors.New("logging: service name is empty")
)
