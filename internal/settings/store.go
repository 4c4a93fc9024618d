package settings

import "context"

// Store persists the settings record as a single option blob.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, record Record) error
}
