package repo

import (
	"context"

	"github.com/urbantrend/cart-recall/internal/model"
)

type CatalogRepository interface {
	// FindProductsByIDs resolves cart item ids in one batch lookup.
	// Ids that no longer exist in the catalog are silently absent from
	// the result.
	FindProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// FindFAQEntries returns all FAQ entries in storage order.
	FindFAQEntries(ctx context.Context) ([]model.FAQEntry, error)
}
