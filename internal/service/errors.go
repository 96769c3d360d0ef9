package service

import "errors"

// ErrInvalidArgument marks requests rejected before reaching storage.
var ErrInvalidArgument = errors.New("invalid argument")
