package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/repo"
	"github.com/Skotchmaster/shop_orders/internal/search"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

const searchLimit = 100

type CatalogService struct {
	Repo   *repo.GormRepo
	Search search.Indexer
}

type ProductQuery struct {
	ShopID     *uint
	CategoryID *uint
	Query      string
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) Shops(ctx context.Context) ([]models.Shop, error) {
	return s.Repo.ListActiveShops(ctx)
}

// Products filters SKUs of active shops. A text query goes through the search
// index when there is one and falls back to a name match otherwise.
func (s *CatalogService) Products(ctx context.Context, q ProductQuery) ([]models.ProductInfo, error) {
	f := repo.ProductFilter{ShopID: q.ShopID, CategoryID: q.CategoryID}
	text := strings.TrimSpace(q.Query)
	if text == "" {
		return s.Repo.SearchProductInfos(ctx, f)
	}

	if s.Search != nil && s.Search.Enabled() {
		ids, err := s.Search.Search(ctx, text, search.Filter{ShopID: q.ShopID, CategoryID: q.CategoryID}, searchLimit)
		if err == nil {
			f.IDs = ids
			infos, err := s.Repo.SearchProductInfos(ctx, f)
			if err != nil {
				return nil, err
			}
			return rank(ids, infos), nil
		}
		logging.FromContext(ctx).Warn("product_search_fallback", zap.Error(err))
	}

	f.NameContains = text
	return s.Repo.SearchProductInfos(ctx, f)
}

// rank orders infos the way the index returned their ids.
func rank(ids []uint, infos []models.ProductInfo) []models.ProductInfo {
	byID := make(map[uint]models.ProductInfo, len(infos))
	for _, in := range infos {
		byID[in.ID] = in
	}
	out := make([]models.ProductInfo, 0, len(infos))
	for _, id := range ids {
		if in, ok := byID[id]; ok {
			out = append(out, in)
		}
	}
	return out
}
