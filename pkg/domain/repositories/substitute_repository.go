package repositories

import (
	"context"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// SubstituteRepository provides substitute ingredients with their stock
type SubstituteRepository interface {
	// GetSubstitutes returns all substitutes registered for an ingredient code,
	// including disallowed ones. Stock is summed over the given warehouses.
	GetSubstitutes(ctx context.Context, ingredientCode string, warehouseIDs []int64) ([]entities.Substitute, error)
}

// ShortageDocumentRepository provides the externally maintained shortage list
type ShortageDocumentRepository interface {
	GetOpenShortageDocuments(ctx context.Context) ([]entities.ShortageDocument, error)
}
