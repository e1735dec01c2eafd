package ports

import (
	"context"

	"github.com/taskboard/core/internal/domain/entities"
)

// DocumentRepository is the persistence gateway for the board
// document. The document is round-tripped as a single blob; there is
// no partial or delta persistence.
type DocumentRepository interface {
	// Load returns the previously saved document, or the default
	// document when nothing has been persisted yet.
	Load(ctx context.Context) (*entities.Document, error)

	// Save persists the whole document atomically.
	Save(ctx context.Context, doc *entities.Document) error

	// HealthCheck probes the underlying storage medium.
	HealthCheck(ctx context.Context) error

	// Close releases the underlying storage handle.
	Close() error
}
