package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultJRCTBaseURL = "https://jrct.mhlw.go.jp"
	jrctSearchPath     = "/search"
	defaultJRCTTimeout = 20 * time.Second
	jrctRequestDelay   = time.Second
	userAgent          = "Mozilla/5.0 (compatible; trialfinder/1.0)"
)

// jRCT search form field names
const (
	fieldCondition  = "reg_plobrem_1"
	fieldKeyword    = "demo_1"
	fieldLocation   = "reg_address"
	fieldRecruiting = "reg_recruitment[]"
	fieldButtonType = "button_type"
	fieldToken      = "_token"

	// recruitingValue is the checkbox value for "募集中"
	recruitingValue = "2"
)

// Registry searches the jRCT registry with Japanese criteria
type Registry interface {
	Search(ctx context.Context, criteria model.Criteria) ([]model.JRCTTrial, error)
}

// RegistryOptions configures both jRCT strategies
type RegistryOptions struct {
	BaseURL      string
	Timeout      time.Duration
	RequestDelay time.Duration
}

func (o RegistryOptions) withDefaults() RegistryOptions {
	if o.BaseURL == "" {
		o.BaseURL = DefaultJRCTBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultJRCTTimeout
	}
	if o.RequestDelay <= 0 {
		o.RequestDelay = jrctRequestDelay
	}
	return o
}

// searchFields builds the form values shared by the GET and POST strategies
func searchFields(criteria model.Criteria) map[string]string {
	fields := map[string]string{
		fieldCondition:  criteria.Condition,
		fieldKeyword:    criteria.Keyword,
		fieldLocation:   criteria.Location,
		fieldButtonType: "reg",
	}
	if criteria.RecruitingOnly {
		fields[fieldRecruiting] = recruitingValue
	}
	return fields
}

// DirectRegistry queries the jRCT search page with a plain HTTP GET
type DirectRegistry struct {
	client  *http.Client
	baseURL *url.URL
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewDirectRegistry creates a DirectRegistry
func NewDirectRegistry(opts RegistryOptions, log zerolog.Logger) (*DirectRegistry, error) {
	opts = opts.withDefaults()
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid jRCT base URL: %w", err)
	}

	return &DirectRegistry{
		client:  &http.Client{Timeout: opts.Timeout},
		baseURL: base,
		limiter: rate.NewLimiter(rate.Every(opts.RequestDelay), 1),
		log:     log.With().Str("component", "jrct").Str("strategy", "direct").Logger(),
	}, nil
}

// Search implements Registry
func (r *DirectRegistry) Search(ctx context.Context, criteria model.Criteria) ([]model.JRCTTrial, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, v := range searchFields(criteria) {
		q.Set(k, v)
	}
	searchURL := r.baseURL.ResolveReference(&url.URL{Path: jrctSearchPath, RawQuery: q.Encode()})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "ja")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query jRCT: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Service: "jRCT", StatusCode: resp.StatusCode}
	}

	trials, err := ParseResultsTable(resp.Body, searchURL)
	if err != nil {
		return nil, err
	}

	r.log.Debug().Int("rows", len(trials)).Msg("jRCT search complete")
	return trials, nil
}
