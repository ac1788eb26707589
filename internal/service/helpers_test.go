package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/feed"
	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/repo"
	"github.com/Skotchmaster/shop_orders/internal/repo/repotest"
	"github.com/Skotchmaster/shop_orders/internal/search"
)

type staticFeeds map[string]*feed.Feed

func (s staticFeeds) Load(_ context.Context, url string) (*feed.Feed, error) {
	f, ok := s[url]
	if !ok {
		return nil, &feed.Error{Stage: feed.StageFetch, Err: errors.New("HTTP 404")}
	}
	return f, nil
}

type fakeIndexer struct {
	mu      sync.Mutex
	enabled bool
	indexed map[uint]int
	hits    []uint
	err     error
	filter  search.Filter
}

func (f *fakeIndexer) Enabled() bool { return f.enabled }

func (f *fakeIndexer) IndexShop(_ context.Context, shopID uint, infos []models.ProductInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexed == nil {
		f.indexed = map[uint]int{}
	}
	f.indexed[shopID] = len(infos)
	return nil
}

func (f *fakeIndexer) Search(_ context.Context, _ string, filter search.Filter, _ int) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	return f.hits, f.err
}

type scheduled struct {
	Title, Message, Email string
	Delay                 time.Duration
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []scheduled
	err  error
}

func (d *fakeDispatcher) Schedule(_ context.Context, title, message, email string, delay time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, scheduled{title, message, email, delay})
	return nil
}

func (d *fakeDispatcher) Close() error { return nil }

func (d *fakeDispatcher) Sent() []scheduled {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]scheduled(nil), d.sent...)
}

func newRepo(t *testing.T) (*repo.GormRepo, *gorm.DB) {
	t.Helper()
	db := repotest.NewDB(t)
	return repo.New(db), db
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
