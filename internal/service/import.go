package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/feed"
	"github.com/Skotchmaster/shop_orders/internal/lock"
	"github.com/Skotchmaster/shop_orders/internal/metrics"
	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/repo"
	"github.com/Skotchmaster/shop_orders/internal/search"
	"github.com/Skotchmaster/shop_orders/internal/transport"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

type FeedLoader interface {
	Load(ctx context.Context, url string) (*feed.Feed, error)
}

// ImportService replaces a shop's catalogue with the contents of its price list.
type ImportService struct {
	Repo   *repo.GormRepo
	Feeds  FeedLoader
	Locks  lock.Locker
	Search search.Indexer
}

const maxRunMessage = 500

func (s *ImportService) Import(ctx context.Context, userID uint, rawURL string) (*models.ImportRun, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, newError(ErrValidation, MsgMissingArgs, nil)
	}
	if err := validateFeedURL(rawURL); err != nil {
		return nil, newError(ErrValidation, err.Error(), err)
	}

	l := logging.FromContext(ctx)

	run := &models.ImportRun{UserID: userID, URL: rawURL, StartedAt: time.Now().UTC()}
	if err := s.Repo.CreateImportRun(ctx, run); err != nil {
		return nil, err
	}

	shopID, err := s.apply(ctx, userID, rawURL, run)

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.Success = err == nil
	if err != nil {
		run.Message = truncate(err.Error(), maxRunMessage)
	} else {
		run.ShopID = &shopID
	}
	if serr := s.Repo.SaveImportRun(context.WithoutCancel(ctx), run); serr != nil {
		l.Warn("import_run_save_error", zap.Uint("run_id", run.ID), zap.Error(serr))
	}
	metrics.FeedImportsTotal.WithLabelValues(metrics.Result(err)).Inc()

	if err != nil {
		return run, newError(ErrImportFailed, MsgImportFailed+err.Error(), err)
	}

	s.reindex(ctx, shopID)
	return run, nil
}

func (s *ImportService) apply(ctx context.Context, userID uint, rawURL string, run *models.ImportRun) (uint, error) {
	doc, err := s.Feeds.Load(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	run.Categories, run.Goods, run.Parameters = doc.Stats()

	unlock, err := s.Locks.Lock(ctx, doc.Shop)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var shopID uint
	err = s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		shop, created, err := tx.GetOrCreateShop(ctx, doc.Shop, userID, rawURL)
		if err != nil {
			return fmt.Errorf("магазин: %w", err)
		}
		if !created && (shop.UserID == nil || *shop.UserID != userID) {
			logging.FromContext(ctx).Warn("import_foreign_shop",
				zap.Uint("shop_id", shop.ID),
				zap.Uint("user_id", userID),
			)
		}
		shopID = shop.ID

		for _, c := range doc.Categories {
			if err := tx.AttachCategory(ctx, shop.ID, c.ID, c.Name); err != nil {
				return fmt.Errorf("категория %d: %w", c.ID, err)
			}
		}

		if _, err := tx.DeleteShopProductInfos(ctx, shop.ID); err != nil {
			return err
		}

		params := make(map[string]uint)
		for _, g := range doc.Goods {
			if err := writeGood(ctx, tx, shop.ID, g, params); err != nil {
				return fmt.Errorf("товар %d: %w", g.ID, err)
			}
		}
		return nil
	})
	return shopID, err
}

func writeGood(ctx context.Context, tx *repo.GormRepo, shopID uint, g feed.Good, params map[string]uint) error {
	product, err := tx.GetOrCreateProduct(ctx, g.Name, g.Category)
	if err != nil {
		return err
	}

	info := models.ProductInfo{
		ProductID:  product.ID,
		ShopID:     shopID,
		ExternalID: g.ID,
		Model:      g.Model,
		Price:      g.Price,
		PriceRRC:   g.PriceRRC,
		Quantity:   g.Quantity,
	}
	if err := tx.CreateProductInfo(ctx, &info); err != nil {
		return err
	}

	names := make([]string, 0, len(g.Parameters))
	for name := range g.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	pps := make([]models.ProductParameter, 0, len(names))
	for _, name := range names {
		id, ok := params[name]
		if !ok {
			p, err := tx.GetOrCreateParameter(ctx, name)
			if err != nil {
				return err
			}
			id = p.ID
			params[name] = id
		}
		pps = append(pps, models.ProductParameter{
			ProductInfoID: info.ID,
			ParameterID:   id,
			Value:         string(g.Parameters[name]),
		})
	}
	return tx.CreateProductParameters(ctx, pps)
}

func (s *ImportService) reindex(ctx context.Context, shopID uint) {
	if s.Search == nil || !s.Search.Enabled() {
		return
	}
	l := logging.FromContext(ctx)
	ctx = context.WithoutCancel(ctx)

	infos, err := s.Repo.ProductInfosByShop(ctx, shopID)
	if err == nil {
		err = s.Search.IndexShop(ctx, shopID, infos)
	}
	if err != nil {
		l.Warn("search_reindex_error", zap.Uint("shop_id", shopID), zap.Error(err))
	}
}

func (s *ImportService) Runs(ctx context.Context, userID uint, offset, limit int) ([]models.ImportRun, int64, error) {
	return s.Repo.ListImportRuns(ctx, userID, offset, limit)
}

var errBadURL = errors.New("Введите правильный URL.")

func validateFeedURL(raw string) error {
	if err := transport.Validate(transport.ShopUpdateRequest{URL: raw}); err != nil {
		return errBadURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errBadURL
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
