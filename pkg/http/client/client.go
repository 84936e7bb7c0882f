package client

import (
	"context"
	"io"
	"net/http"
	"time"
)

type Response struct {
	StatusCode int
	Body       []byte
}

type Interface interface {
	Get(ctx context.Context, path string) (*Response, error)
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	GetFunc    func(ctx context.Context, path string) (*Response, error)
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// UserAgent is sent with every request. Nominatim's usage policy
	// requires an identifying agent, so leave it set for geocoding.
	UserAgent string
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, path)
	}

	var fullURL string
	if c.baseURL == "" {
		fullURL = path // If no base URL, treat path as full URL
	} else {
		fullURL = c.baseURL + path // Otherwise combine them
	}

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			return
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
