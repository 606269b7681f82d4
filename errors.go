// errors.go
package chatstore

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input parameters")
	ErrNotFound           = errors.New("record not found")
	ErrCacheUnavailable   = errors.New("cache backend unavailable")
	ErrStorageUnavailable = errors.New("storage backend unavailable")
)
