package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrBadIdentity = errors.New("invalid wallet identity")
)
