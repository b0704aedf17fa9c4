// Package storage keeps uploaded document bytes outside the database. Callers
// only ever see the returned locator.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound       = errors.New("stored object not found")
	ErrInvalidLocator = errors.New("invalid storage locator")
)

// Store writes bytes under name and returns a locator that can later be
// passed to Delete. Locators are opaque to callers.
type Store interface {
	Put(ctx context.Context, r io.Reader, name string) (string, error)
	Delete(ctx context.Context, locator string) error
}
