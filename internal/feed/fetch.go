package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
}

func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: maxBytes,
	}
}

// Fetch downloads the document; bodies above MaxBytes are an error, not truncated.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Stage: StageFetch, Err: err}
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &Error{Stage: StageFetch, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Stage: StageFetch, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, &Error{Stage: StageFetch, Err: err}
	}
	if int64(len(body)) > f.MaxBytes {
		return nil, &Error{Stage: StageFetch, Err: fmt.Errorf("документ больше %d байт", f.MaxBytes)}
	}
	return body, nil
}

// Load fetches, parses and validates a feed.
func (f *Fetcher) Load(ctx context.Context, url string) (*Feed, error) {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
