// Package portal provides a client for the distribution portal API, the
// upstream source of demand grids, logistics master data, and site profiles.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

// Client defines the portal operations the sync pipeline needs.
type Client interface {
	// DemandGrid fetches demand cells covering the bounding box.
	DemandGrid(ctx context.Context, bbox model.BBox) ([]model.DemandCell, error)
	// Logistics fetches the distributor and warehouse master data.
	Logistics(ctx context.Context) (*LogisticsResponse, error)
	// SiteProfile fetches road access attributes for a coordinate.
	SiteProfile(ctx context.Context, p model.GeoPoint) (*SiteProfile, error)
}

// LogisticsResponse holds the portal's distributor and warehouse snapshot.
type LogisticsResponse struct {
	Distributors []DistributorRecord `json:"distributors"`
	Warehouses   []WarehouseRecord   `json:"warehouses"`
}

// DistributorRecord is the portal's wire shape for a distributor. The service
// radius is optional upstream; absent means the default applies.
type DistributorRecord struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Lat             float64  `json:"lat"`
	Lng             float64  `json:"lng"`
	ServiceRadiusKm *float64 `json:"serviceRadiusKm,omitempty"`
}

// WarehouseRecord is the portal's wire shape for a warehouse.
type WarehouseRecord struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// SiteProfile holds road attributes at a point. RoadWidthM is nil when the
// portal has no survey data there.
type SiteProfile struct {
	RoadWidthM *float64 `json:"roadWidthM,omitempty"`
	RoadClass  string   `json:"roadClass,omitempty"`
}

type demandGridResponse struct {
	Cells []demandCellRecord `json:"cells"`
}

type demandCellRecord struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Score float64 `json:"score"`
}

// Distributor converts the wire record to the domain model.
func (r DistributorRecord) Distributor() model.Distributor {
	d := model.Distributor{
		ID:       r.ID,
		Name:     r.Name,
		Location: model.GeoPoint{Lat: r.Lat, Lng: r.Lng},
	}
	if r.ServiceRadiusKm != nil {
		d.ServiceRadiusKm = *r.ServiceRadiusKm
	}
	return model.NormalizeDistributor(d)
}

// Option configures the portal client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithMaxRetries overrides the attempt count for transient failures.
func WithMaxRetries(n int) Option {
	return func(c *httpClient) {
		c.maxRetries = n
	}
}

type httpClient struct {
	baseURL    string
	apiKey     string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient creates a portal client for the given base URL.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:    rate.NewLimiter(5, 5),
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) DemandGrid(ctx context.Context, bbox model.BBox) ([]model.DemandCell, error) {
	q := url.Values{}
	q.Set("minLat", fmt.Sprintf("%.6f", bbox.MinLat))
	q.Set("minLng", fmt.Sprintf("%.6f", bbox.MinLng))
	q.Set("maxLat", fmt.Sprintf("%.6f", bbox.MaxLat))
	q.Set("maxLng", fmt.Sprintf("%.6f", bbox.MaxLng))

	var resp demandGridResponse
	if err := c.getJSON(ctx, "/api/v1/demand-grid?"+q.Encode(), &resp); err != nil {
		return nil, eris.Wrap(err, "portal: fetch demand grid")
	}

	cells := make([]model.DemandCell, 0, len(resp.Cells))
	for _, rec := range resp.Cells {
		cells = append(cells, model.DemandCell{
			Center: model.GeoPoint{Lat: rec.Lat, Lng: rec.Lng},
			Score:  rec.Score,
		})
	}
	return cells, nil
}

func (c *httpClient) Logistics(ctx context.Context) (*LogisticsResponse, error) {
	var resp LogisticsResponse
	if err := c.getJSON(ctx, "/api/v1/logistics", &resp); err != nil {
		return nil, eris.Wrap(err, "portal: fetch logistics")
	}
	return &resp, nil
}

func (c *httpClient) SiteProfile(ctx context.Context, p model.GeoPoint) (*SiteProfile, error) {
	path := fmt.Sprintf("/api/v1/site-profile?lat=%.6f&lng=%.6f", p.Lat, p.Lng)
	var resp SiteProfile
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, eris.Wrap(err, "portal: fetch site profile")
	}
	return &resp, nil
}

func (c *httpClient) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return eris.Wrap(err, "create request")
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("portal request failed, retrying",
				zap.String("path", path),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("portal returned %d for %s", resp.StatusCode, path)
			zap.L().Warn("portal transient error, retrying",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			_ = resp.Body.Close()
			return eris.Errorf("portal returned %d for %s: %s", resp.StatusCode, path, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		_ = resp.Body.Close()
		if err != nil {
			return eris.Wrapf(err, "decode response for %s", path)
		}
		return nil
	}
	return eris.Wrap(lastErr, "all retries exhausted")
}

func backoff(ctx context.Context, attempt int) {
	base := 500 * time.Millisecond
	maxBackoff := 10 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
