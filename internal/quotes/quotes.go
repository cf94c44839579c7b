package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/finance/internal/config"
	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/pkg/clients"
	"github.com/GlebRadaev/finance/pkg/validate"
)

const (
	maxRetries    = 3
	retryInterval = time.Millisecond * 250
)

var errRateLimited = errors.New("rate limited")

type Response struct {
	Symbol      string              `json:"symbol"`
	CompanyName string              `json:"companyName"`
	LatestPrice decimal.NullDecimal `json:"latestPrice"`
}

// Client looks up quotes on an IEX cloud compatible API.
type Client struct {
	url           string
	token         string
	client        clients.HTTPClientI
	timeout       time.Duration
	retryInterval time.Duration
}

func New(cfg *config.Config, client clients.HTTPClientI) *Client {
	return &Client{
		url:           cfg.QuoteAddress,
		token:         cfg.QuoteToken,
		client:        client,
		timeout:       cfg.QuoteTimeout,
		retryInterval: retryInterval,
	}
}

// Lookup returns the current quote for symbol. It fails with
// domain.ErrUnknownSymbol when the provider does not know the symbol and with
// domain.ErrQuoteUnavailable when no answer arrives within the timeout.
func (c *Client) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol, ok := validate.Symbol(symbol)
	if !ok {
		return nil, domain.ErrUnknownSymbol
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/stock/%s/quote?token=%s", c.url, url.PathEscape(symbol), url.QueryEscape(c.token))
	headers := http.Header{"Accept": []string{"application/json"}}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		wait := c.retryInterval * time.Duration(attempt)

		statusCode, respBody, respHeaders, err := c.client.Get(ctx, endpoint, headers)
		switch {
		case err != nil:
			zap.L().Warn("quote request failed", zap.String("symbol", symbol), zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
		case statusCode == http.StatusOK:
			return c.parse(symbol, respBody)
		case statusCode == http.StatusNotFound:
			return nil, domain.ErrUnknownSymbol
		case statusCode == http.StatusTooManyRequests:
			wait = c.retryAfter(respHeaders, attempt)
			zap.L().Warn("quote rate limit detected, retrying", zap.String("symbol", symbol), zap.Int("attempt", attempt), zap.Duration("retryAfter", wait))
			lastErr = errRateLimited
		case statusCode >= http.StatusInternalServerError:
			zap.L().Warn("quote provider error", zap.String("symbol", symbol), zap.Int("status", statusCode), zap.Int("attempt", attempt))
			lastErr = fmt.Errorf("unexpected status code %d", statusCode)
		default:
			zap.L().Error("unexpected quote status code", zap.String("symbol", symbol), zap.Int("status", statusCode))
			return nil, fmt.Errorf("%w: unexpected status code %d", domain.ErrQuoteUnavailable, statusCode)
		}

		if attempt == maxRetries {
			break
		}
		if err := sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}

	return nil, fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, lastErr)
}

func (c *Client) parse(symbol string, body []byte) (*domain.Quote, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		zap.L().Error("failed to parse quote", zap.String("symbol", symbol), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to parse response body: %w", domain.ErrQuoteUnavailable, err)
	}
	if !response.LatestPrice.Valid || !validate.InRange(response.LatestPrice.Decimal) {
		return nil, domain.ErrUnknownSymbol
	}
	// a price that rounds to zero cents cannot be traded
	price := response.LatestPrice.Decimal.Round(2)
	if !price.IsPositive() {
		zap.L().Warn("quote below one cent", zap.String("symbol", symbol), zap.Stringer("price", response.LatestPrice.Decimal))
		return nil, domain.ErrUnknownSymbol
	}

	quote := &domain.Quote{
		Symbol: symbol,
		Name:   response.CompanyName,
		Price:  price,
	}
	if response.Symbol != "" {
		quote.Symbol = response.Symbol
	}
	if quote.Name == "" {
		quote.Name = quote.Symbol
	}
	return quote, nil
}

func (c *Client) retryAfter(respHeaders http.Header, attempt int) time.Duration {
	retryAfter := c.retryInterval * time.Duration(attempt)
	if v := respHeaders.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			retryAfter = time.Duration(seconds) * time.Second
		}
	}
	return retryAfter
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
