package repositories

import (
	"context"

	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
)

// VersionLogWriter persists version records as the stores commit them.
type VersionLogWriter interface {
	versioning.Sink
}

// VersionLogReader loads persisted entities back into memory.
type VersionLogReader interface {
	// LoadKind returns every entity of a kind with its full history, in creation order.
	LoadKind(ctx context.Context, kind string) ([]versioning.StoredEntity, error)
}

// VersionLogRepositoryFacade combines the version log interfaces.
type VersionLogRepositoryFacade interface {
	VersionLogReader
	VersionLogWriter
}

// VersionLogRepositoryWithTx extends VersionLogRepositoryFacade with transaction capabilities
type VersionLogRepositoryWithTx interface {
	VersionLogRepositoryFacade
	TransactionManager
}
