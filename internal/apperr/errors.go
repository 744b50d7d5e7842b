// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	// ErrNotFound covers every reason a logical path has no servable page.
	ErrNotFound = errors.New("not found")
	// ErrRead means an approved file could not be read.
	ErrRead = errors.New("read failed")
)
