package ticketmaster

import (
	"context"
	"encoding/json"
	"errors"
	"eventsnap/internal/components/telemetry"
	"eventsnap/lib/restyutil"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseUrl      = "https://app.ticketmaster.com/discovery/v2/events.json"
	DefaultTimeout      = 30 * time.Second
	DefaultRequestDelay = 200 * time.Millisecond
	MaxPageSize         = 200
)

const (
	report_client_fetch_page = "client.fetch-page"
)

var tracer = otel.Tracer("eventsnap/ticketmaster")

// ErrMissingCredential is returned before any request is made when no api key was given.
var ErrMissingCredential = errors.New("TICKETMASTER_API_KEY is not set")

type ClientOptions struct {
	BaseUrl string
	ApiKey  string
	// per-request deadline, DefaultTimeout if zero
	Timeout time.Duration
	// minimum spacing between requests, no spacing if zero
	RequestDelay time.Duration
	// if set, every request/response pair is dumped to it
	Output restyutil.InstrumentOutput
}

type Client struct {
	http    *resty.Client
	baseUrl string
	apiKey  string
	tel     telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	if opts.ApiKey == "" {
		return nil, ErrMissingCredential
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("accept", "application/json")

	// one request per delay, max burst of 1 so the first request is not delayed
	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}
	rateLimiter := rate.NewLimiter(limit, 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})
	restyutil.InstrumentClient(httpClient, tracer, opts.Output)

	return &Client{
		http:    httpClient,
		baseUrl: opts.BaseUrl,
		apiKey:  opts.ApiKey,
		tel:     telemetry.NewScopedAPI("ticketmaster", tel),
	}, nil
}

// PageQuery selects one page of events in a date window.
type PageQuery struct {
	Classification string
	// optional, empty means all countries
	CountryCode string
	Start       time.Time
	End         time.Time
	Page        int
	// capped at MaxPageSize
	Size int
}

// FormatTimestamp renders `t` the way the discovery api expects it, in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func (q PageQuery) params(apiKey string) map[string]string {
	size := q.Size
	if size <= 0 || size > MaxPageSize {
		size = MaxPageSize
	}
	params := map[string]string{
		"apikey":        apiKey,
		"sort":          "date,asc",
		"startDateTime": FormatTimestamp(q.Start),
		"endDateTime":   FormatTimestamp(q.End),
		"page":          strconv.Itoa(q.Page),
		"size":          strconv.Itoa(size),
	}
	if q.Classification != "" {
		params["classificationName"] = q.Classification
	}
	if q.CountryCode != "" {
		params["countryCode"] = q.CountryCode
	}
	return params
}

// FetchPage requests a single page, statuses outside of 2xx are errors.
func (c *Client) FetchPage(ctx context.Context, q PageQuery) (EventsPage, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPage")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(q.params(c.apiKey)).
		Get(c.baseUrl)
	if err != nil {
		c.tel.ReportDebug(report_client_fetch_page, q.Page, err)
		return EventsPage{}, fmt.Errorf("fetch page %d: %w", q.Page, err)
	}
	if res.IsError() {
		return EventsPage{}, fmt.Errorf("fetch page %d: unexpected status %s", q.Page, res.Status())
	}

	var page EventsPage
	err = json.Unmarshal(res.Body(), &page)
	if err != nil {
		return EventsPage{}, fmt.Errorf("fetch page %d: decode: %w", q.Page, err)
	}
	return page, nil
}
