package person

import "errors"

var (
	ErrPersonNotFound    = errors.New("person not found")
	ErrInvalidPersonType = errors.New("invalid person type")
)
