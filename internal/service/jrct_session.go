package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/gocolly/colly/v2"
	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/rs/zerolog"
)

// Session is a scraping session holding resources that must be released
type Session interface {
	Close() error
}

// WithSession opens a session, hands it to use, and always closes it,
// including when use returns an error or panics.
func WithSession[S Session](ctx context.Context, open func(context.Context) (S, error), use func(S) error) (err error) {
	s, err := open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close session: %w", cerr)
		}
	}()

	return use(s)
}

// FormRegistry submits the jRCT search form through a cookie-backed
// HTTP session, the way a browser would
type FormRegistry struct {
	opts RegistryOptions
	log  zerolog.Logger
}

// NewFormRegistry creates a FormRegistry
func NewFormRegistry(opts RegistryOptions, log zerolog.Logger) *FormRegistry {
	return &FormRegistry{
		opts: opts.withDefaults(),
		log:  log.With().Str("component", "jrct").Str("strategy", "form").Logger(),
	}
}

// Search implements Registry
func (r *FormRegistry) Search(ctx context.Context, criteria model.Criteria) ([]model.JRCTTrial, error) {
	var trials []model.JRCTTrial
	err := WithSession(ctx, r.openSession, func(s *formSession) error {
		var err error
		trials, err = s.submit(criteria)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.log.Debug().Int("rows", len(trials)).Msg("jRCT form search complete")
	return trials, nil
}

func (r *FormRegistry) openSession(ctx context.Context) (*formSession, error) {
	base, err := url.Parse(r.opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid jRCT base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	c.WithTransport(transport)
	c.SetCookieJar(jar)
	c.SetRequestTimeout(r.opts.Timeout)

	return &formSession{
		collector: c,
		transport: transport,
		searchURL: base.ResolveReference(&url.URL{Path: jrctSearchPath}),
		log:       r.log,
	}, nil
}

// formSession is one search's worth of cookies, CSRF token and connections
type formSession struct {
	collector *colly.Collector
	transport *http.Transport
	searchURL *url.URL
	log       zerolog.Logger

	closeOnce sync.Once
}

// submit loads the search page for its token and cookies, then posts the form
func (s *formSession) submit(criteria model.Criteria) ([]model.JRCTTrial, error) {
	var token string
	var results []byte
	var resultsURL *url.URL

	s.collector.OnHTML(`form input[name="`+fieldToken+`"]`, func(e *colly.HTMLElement) {
		if token == "" {
			token = e.Attr("value")
		}
	})
	s.collector.OnResponse(func(resp *colly.Response) {
		if resp.Request.Method == http.MethodPost {
			results = resp.Body
			resultsURL = resp.Request.URL
		}
	})

	if err := s.collector.Visit(s.searchURL.String()); err != nil {
		return nil, fmt.Errorf("failed to load jRCT search form: %w", err)
	}

	fields := searchFields(criteria)
	if token != "" {
		fields[fieldToken] = token
	} else {
		s.log.Warn().Msg("search form has no CSRF token, submitting without one")
	}

	if err := s.collector.Post(s.searchURL.String(), fields); err != nil {
		return nil, fmt.Errorf("failed to submit jRCT search form: %w", err)
	}
	if results == nil {
		return nil, errors.New("jRCT search returned no response body")
	}

	return ParseResultsTable(bytes.NewReader(results), resultsURL)
}

// Close releases pooled connections held by the session
func (s *formSession) Close() error {
	s.closeOnce.Do(func() {
		s.transport.CloseIdleConnections()
	})
	return nil
}
