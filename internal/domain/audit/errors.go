package audit

import "errors"

var (
	ErrInvalidAction   = errors.New("invalid audit action")
	ErrMissingSnapshot = errors.New("audit entry has no snapshot for its action")
)
