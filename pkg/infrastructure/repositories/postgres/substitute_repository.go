package postgres

import (
	"context"
	"fmt"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// GetSubstitutes returns every registered substitute of an ingredient,
// allowed or not, ordered by stock descending
func (r *Repository) GetSubstitutes(ctx context.Context, ingredientCode string, warehouseIDs []int64) ([]entities.Substitute, error) {
	op := "Repository.GetSubstitutes"

	query, args, err := substitutesQuery(ingredientCode, warehouseIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	subs := []entities.Substitute{}
	if err := r.DB.SelectContext(ctx, &subs, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// GetOpenShortageDocuments returns the lines of open shortage documents
func (r *Repository) GetOpenShortageDocuments(ctx context.Context) ([]entities.ShortageDocument, error) {
	op := "Repository.GetOpenShortageDocuments"

	query := `SELECT d.document_number, d.ingredient_code,
		COALESCE(p.name, '') AS ingredient_name, d.quantity
		FROM shortage_documents d
		LEFT JOIN products p ON p.code = d.ingredient_code
		WHERE d.is_open
		ORDER BY d.document_number, d.ingredient_code`

	docs := []entities.ShortageDocument{}
	if err := r.DB.SelectContext(ctx, &docs, query); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}
