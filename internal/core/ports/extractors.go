package ports

import (
	"context"

	"github.com/samirrijal/pilingqa/internal/core/domain"
)

// PointExtractor turns the raw bytes of one design file into a PointTable.
// A nil error with an empty table is a valid outcome.
type PointExtractor interface {
	Format() domain.Format
	Extract(ctx context.Context, data []byte) (*domain.PointTable, error)
}
