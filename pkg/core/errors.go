package core

import "errors"

// Common errors.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrStoreUnavailable = errors.New("durable store unavailable")
	ErrClosed           = errors.New("store is closed")
)
