package clients

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

//go:generate mockgen -source=http_client.go -destination=mock_http_client.go -package=clients

const (
	defaultTimeout = time.Second * 15
	// quote payloads are small; anything bigger is not a quote
	maxBodySize = 1 << 20
)

var (
	ErrFailedCloseResponseBody = errors.New("failed close response body")
	ErrBodyTooLarge            = errors.New("response body too large")
)

type HTTPClientI interface {
	Do(req *http.Request) (*http.Response, error)
	Get(ctx context.Context, url string, headers http.Header) (statusCode int, respBody []byte, respHeaders http.Header, err error)
}

type HTTPClientAdapter struct {
	client *http.Client
}

func (h *HTTPClientAdapter) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}

// Get fetches url and reads the whole body. JSON is requested unless headers
// say otherwise.
func (h *HTTPClientAdapter) Get(ctx context.Context, url string, headers http.Header) (statusCode int, respBody []byte, respHeaders http.Header, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return
	}

	if headers != nil {
		req.Header = headers.Clone()
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return
	}

	defer func() {
		if e := resp.Body.Close(); e != nil {
			err = errors.Join(err, ErrFailedCloseResponseBody)
		}
	}()

	respBody, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return
	}
	if len(respBody) > maxBodySize {
		return 0, nil, nil, ErrBodyTooLarge
	}
	statusCode = resp.StatusCode
	respHeaders = resp.Header

	return
}

type HTTPClient struct {
	client HTTPClientI
}

// NewHTTPClient builds a client whose requests give up after timeout.
// A non-positive timeout falls back to 15s.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		client: &HTTPClientAdapter{
			client: &http.Client{Timeout: timeout},
		},
	}
}

func (h *HTTPClient) Get(ctx context.Context, url string, headers http.Header) (statusCode int, respBody []byte, respHeaders http.Header, err error) {
	return h.client.Get(ctx, url, headers)
}

func (h *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}

func (h *HTTPClient) SetClient(mock HTTPClientI) {
	h.client = mock
}
