package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

type Document struct {
	ID         uint   `json:"id"`
	ShopID     uint   `json:"shop_id"`
	CategoryID uint   `json:"category_id"`
	Shop       string `json:"shop"`
	Name       string `json:"name"`
	Model      string `json:"model"`
	Category   string `json:"category"`
	Parameters string `json:"parameters"`
}

func NewDocument(info models.ProductInfo) Document {
	d := Document{ID: info.ID, ShopID: info.ShopID, Model: info.Model}
	if info.Shop != nil {
		d.Shop = info.Shop.Name
	}
	if info.Product != nil {
		d.Name = info.Product.Name
		d.CategoryID = info.Product.CategoryID
		if info.Product.Category != nil {
			d.Category = info.Product.Category.Name
		}
	}
	params := make([]string, 0, len(info.ProductParameters))
	for _, pp := range info.ProductParameters {
		if pp.Parameter != nil {
			params = append(params, pp.Parameter.Name+": "+pp.Value)
		}
	}
	d.Parameters = strings.Join(params, "; ")
	return d
}

type Elastic struct {
	Client *elasticsearch.Client
	Index  string
	Log    *zap.Logger
}

func NewClient(url, user, password string, log *zap.Logger) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}

	log.Info("elasticsearch_connected", zap.String("url", url))
	return client, nil
}

func NewElastic(client *elasticsearch.Client, index string, log *zap.Logger) *Elastic {
	return &Elastic{Client: client, Index: index, Log: log}
}

func (e *Elastic) Enabled() bool { return true }

func (e *Elastic) IndexShop(ctx context.Context, shopID uint, infos []models.ProductInfo) error {
	query := map[string]any{
		"query": map[string]any{"term": map[string]any{"shop_id": shopID}},
	}
	var qbuf bytes.Buffer
	if err := json.NewEncoder(&qbuf).Encode(query); err != nil {
		return err
	}

	res, err := e.Client.DeleteByQuery([]string{e.Index}, &qbuf,
		e.Client.DeleteByQuery.WithContext(ctx),
		e.Client.DeleteByQuery.WithConflicts("proceed"),
	)
	if err := checkResponse("delete_by_query", res, err, http.StatusNotFound); err != nil {
		return err
	}

	if len(infos) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, info := range infos {
		meta := map[string]any{"index": map[string]any{"_index": e.Index, "_id": strconv.FormatUint(uint64(info.ID), 10)}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(NewDocument(info)); err != nil {
			return err
		}
	}

	res, err = e.Client.Bulk(&body,
		e.Client.Bulk.WithContext(ctx),
		e.Client.Bulk.WithIndex(e.Index),
	)
	if err != nil {
		return fmt.Errorf("bulk: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk: %s", res.Status())
	}
	var br struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return fmt.Errorf("bulk: %w", err)
	}
	if br.Errors {
		return fmt.Errorf("bulk: часть документов не проиндексирована")
	}

	e.Log.Info("search_index_shop", zap.Uint("shop_id", shopID), zap.Int("documents", len(infos)))
	return nil
}

func (e *Elastic) Search(ctx context.Context, query string, f Filter, limit int) ([]uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "model", "category", "parameters"},
						"fuzziness": "AUTO",
					},
				},
				"filter": filterTerms(f),
			},
		},
		"_source": false,
		"size":    limit,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := e.Client.Search(
		e.Client.Search.WithContext(ctx),
		e.Client.Search.WithIndex(e.Index),
		e.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := strconv.ParseUint(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func filterTerms(f Filter) []any {
	terms := []any{}
	if f.ShopID != nil {
		terms = append(terms, map[string]any{"term": map[string]any{"shop_id": *f.ShopID}})
	}
	if f.CategoryID != nil {
		terms = append(terms, map[string]any{"term": map[string]any{"category_id": *f.CategoryID}})
	}
	return terms
}

// checkResponse drains res; statuses listed in allow are not errors.
func checkResponse(op string, res *esapi.Response, err error, allow ...int) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()
	for _, code := range allow {
		if res.StatusCode == code {
			return nil
		}
	}
	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%s: %s: %s", op, res.Status(), msg)
	}
	return nil
}
