// Package search keeps a full-text index of SKUs.
package search

import (
	"context"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

type Indexer interface {
	// Enabled reports whether Search can answer queries.
	Enabled() bool
	// IndexShop replaces every document of the shop with infos.
	IndexShop(ctx context.Context, shopID uint, infos []models.ProductInfo) error
	// Search returns matching SKU ids, best match first.
	Search(ctx context.Context, query string, f Filter, limit int) ([]uint, error)
}

// Filter narrows a search before hits are ranked. Nil fields match everything.
type Filter struct {
	ShopID     *uint
	CategoryID *uint
}

type Noop struct{}

func (Noop) Enabled() bool { return false }

func (Noop) IndexShop(context.Context, uint, []models.ProductInfo) error { return nil }

func (Noop) Search(context.Context, string, Filter, int) ([]uint, error) { return nil, nil }
