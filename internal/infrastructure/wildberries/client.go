// Package wildberries implements the marketplace client over the
// Wildberries statistics and common APIs.
package wildberries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/infrastructure/config"
)

const (
	pingPath   = "/ping"
	ordersPath = "/api/v1/supplier/orders"
	salesPath  = "/api/v1/supplier/sales"
	stocksPath = "/api/v1/supplier/stocks"

	// dateFromLayout is the dateFrom query format, in marketplace local time
	dateFromLayout = "2006-01-02T15:04:05"
)

// Client implements marketplace.Client with resty
type Client struct {
	http          *resty.Client
	statisticsURL string
	commonURL     string
	loc           *time.Location
	logger        *zap.Logger
}

// NewClient creates a client for the configured endpoints. Timestamps
// without an offset are read in loc.
func NewClient(cfg config.MarketplaceConfig, loc *time.Location, logger *zap.Logger) *Client {
	if loc == nil {
		loc = time.UTC
	}

	httpClient := resty.New().
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryWait * 4).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:          httpClient,
		statisticsURL: strings.TrimRight(cfg.StatisticsURL, "/"),
		commonURL:     strings.TrimRight(cfg.CommonURL, "/"),
		loc:           loc,
		logger:        logger.Named("wildberries"),
	}
}

// Ping checks that the token is accepted
func (c *Client) Ping(ctx context.Context, token string) error {
	body, err := c.get(ctx, token, c.commonURL+pingPath, nil)
	if err != nil {
		return err
	}

	var resp pingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: ping: %v", marketplace.ErrInvalidResponse, err)
	}
	if !strings.EqualFold(resp.Status, "OK") {
		return fmt.Errorf("%w: ping status %q", marketplace.ErrInvalidResponse, resp.Status)
	}
	return nil
}

// FetchOrders returns the orders changed since the given instant
func (c *Client) FetchOrders(ctx context.Context, token string, since time.Time) ([]marketplace.OrderInput, error) {
	return fetch(ctx, c, token, ordersPath, since, (*orderRecord).toInput)
}

// FetchSales returns the sales and returns changed since the given instant
func (c *Client) FetchSales(ctx context.Context, token string, since time.Time) ([]marketplace.SaleInput, error) {
	return fetch(ctx, c, token, salesPath, since, (*saleRecord).toInput)
}

// FetchStocks returns the stock rows changed since the given instant
func (c *Client) FetchStocks(ctx context.Context, token string, since time.Time) ([]marketplace.StockInput, error) {
	return fetch(ctx, c, token, stocksPath, since, (*stockRecord).toInput)
}

// fetch loads one statistics report and converts its records. Records that
// fail conversion are logged and skipped so one bad row cannot block the
// stream cursor.
func fetch[R any, T any](ctx context.Context, c *Client, token, path string, since time.Time, convert func(*R, *time.Location) (T, error)) ([]T, error) {
	query := map[string]string{"dateFrom": since.In(c.loc).Format(dateFromLayout)}
	body, err := c.get(ctx, token, c.statisticsURL+path, query)
	if err != nil {
		return nil, err
	}

	var records []R
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", marketplace.ErrInvalidResponse, path, err)
	}

	out, skipped := convertRecords(records, c.loc, convert)
	if len(skipped) > 0 {
		c.logger.Warn("Skipped malformed records",
			zap.String("path", path),
			zap.Int("skipped", len(skipped)),
			zap.Int("kept", len(out)),
			zap.Errors("errors", skipped),
		)
	}
	return out, nil
}

// convertRecords converts every record it can and returns one error per
// skipped record
func convertRecords[R any, T any](records []R, loc *time.Location, convert func(*R, *time.Location) (T, error)) ([]T, []error) {
	out := make([]T, 0, len(records))
	var skipped []error
	for i := range records {
		item, err := convert(&records[i], loc)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, item)
	}
	return out, skipped
}

// get performs an authenticated GET and maps the HTTP status to marketplace errors
func (c *Client) get(ctx context.Context, token, url string, query map[string]string) ([]byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", token)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", marketplace.ErrUnavailable, err)
	}

	if err := statusError(resp.StatusCode()); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// statusError maps a non-success HTTP status to a marketplace error
func statusError(status int) error {
	switch {
	case status < http.StatusBadRequest:
		return nil
	case status == http.StatusUnauthorized:
		return marketplace.ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return marketplace.ErrRateLimited
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: HTTP %d", marketplace.ErrUnavailable, status)
	default:
		return fmt.Errorf("%w: HTTP %d", marketplace.ErrRequestFailed, status)
	}
}

// Ensure Client implements marketplace.Client
var _ marketplace.Client = (*Client)(nil)
