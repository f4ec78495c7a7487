// Package storage persists generated image assets and hands back a stable,
// publicly retrievable URI.
package storage

import "context"

// ObjectStore is the durable asset store consumed by the image pipeline.
type ObjectStore interface {
	Put(ctx context.Context, contentType string, data []byte) (string, error)
}
