package domain

import "errors"

var (
	ErrJobNotFound      = errors.New("job not found")
	ErrDuplicateJob     = errors.New("duplicate job")
	ErrInvalidInput     = errors.New("invalid input")
	ErrGeneratorFailure = errors.New("generator failure")
)
