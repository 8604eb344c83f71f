package repository

import (
	"context"
	"strings"
)

// BlobStore is a flat key/value store for serialized records.
//
// Get returns ErrNotFound for a missing key.  Delete of a missing key is
// not an error.  Rename moves a blob to a new key, replacing any blob
// already stored there, and returns ErrNotFound when the source is missing.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Rename(ctx context.Context, from, to string) error
}

// KeyPart maps an area name to something usable as a file name and a
// Redis/MySQL key.  Distinct names can map to the same part ("Pool Deck",
// "Pool_Deck"), so callers that key by name must reject such pairs.  Letters, digits, '-' and '.' are kept, anything else
// becomes '_'.
func KeyPart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
