package database

import (
	"context"
	"fmt"
)

// UpdateByID is a helper to update a record by ID
func UpdateByID[T any](db *DB, ctx context.Context, column string, id any, data map[string]any) (int, error) {
	return Query[T](db).Where(column, id).Update(ctx, data)
}

// Chunk executes a callback for each chunk of results. The query must carry a
// total ORDER BY for the chunks to be stable.
func Chunk[T any](ctx context.Context, query *QueryBuilder[T], chunkSize int, fn func([]T, int) error) error {
	if chunkSize < 1 {
		chunkSize = 100
	}

	offset := 0
	chunkNumber := 0

	for {
		chunk, err := query.Limit(chunkSize).Offset(offset).All(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch chunk at offset %d: %w", offset, err)
		}

		if len(chunk) == 0 {
			break
		}

		if err := fn(chunk, chunkNumber); err != nil {
			return fmt.Errorf("chunk processing failed at chunk %d: %w", chunkNumber, err)
		}

		if len(chunk) < chunkSize {
			break
		}

		offset += chunkSize
		chunkNumber++
	}

	return nil
}
