package pagecache

import (
	"errors"
	"fmt"
)

var (
	// ErrDisabled is returned by New when Options.Disabled is set.
	ErrDisabled = errors.New("pagecache: disabled by configuration")
	// ErrNilRenderer is returned by New when no renderer is supplied.
	ErrNilRenderer = errors.New("pagecache: renderer is required")
	// ErrNoPages is returned by New when neither Pages nor IsCacheable is set.
	ErrNoPages = errors.New("pagecache: no cacheable pages configured")
	// ErrReservedKey is returned when a manual write targets the version marker key.
	ErrReservedKey = errors.New("pagecache: key is reserved for the version marker")
	// ErrEmptyKey is returned by manual operations given an empty key.
	ErrEmptyKey = errors.New("pagecache: empty key")
	// ErrUnknownCodec is returned by CodecByName.
	ErrUnknownCodec = errors.New("pagecache: unknown codec")
)

// OpError describes a failed manual cache operation.
type OpError struct {
	Op  string // "get", "set", "delete", "reset"
	Key string // empty for reset
	Err error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("pagecache: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pagecache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
