package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultCTGovBaseURL = "https://clinicaltrials.gov/api/v2"
	defaultTimeout      = 30 * time.Second
	defaultPageSize     = 100
	defaultMaxPages     = 5
	requestDelay        = 500 * time.Millisecond
	recruitingStatus    = "RECRUITING"
)

// CTGovOptions configures a CTGovClient
type CTGovOptions struct {
	BaseURL      string
	PageSize     int
	MaxPages     int
	Timeout      time.Duration
	RequestDelay time.Duration
	HTTPClient   *http.Client
}

// CTGovClient handles communication with the ClinicalTrials.gov v2 API
type CTGovClient struct {
	client   *http.Client
	baseURL  string
	pageSize int
	maxPages int
	limiter  *rate.Limiter
	log      zerolog.Logger
}

// NewCTGovClient creates a new ClinicalTrials.gov API client
func NewCTGovClient(opts CTGovOptions, log zerolog.Logger) *CTGovClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultCTGovBaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestDelay <= 0 {
		opts.RequestDelay = requestDelay
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &CTGovClient{
		client:   client,
		baseURL:  opts.BaseURL,
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
		limiter:  rate.NewLimiter(rate.Every(opts.RequestDelay), 1),
		log:      log.With().Str("component", "ctgov").Logger(),
	}
}

// studiesResponse represents the API response for /studies
type studiesResponse struct {
	Studies       []studyJSON `json:"studies"`
	NextPageToken string      `json:"nextPageToken"`
}

type studyJSON struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID         string `json:"nctId"`
			BriefTitle    string `json:"briefTitle"`
			OfficialTitle string `json:"officialTitle"`
		} `json:"identificationModule"`
		DescriptionModule struct {
			BriefSummary string `json:"briefSummary"`
		} `json:"descriptionModule"`
		EligibilityModule struct {
			EligibilityCriteria string `json:"eligibilityCriteria"`
		} `json:"eligibilityModule"`
		StatusModule struct {
			OverallStatus            string `json:"overallStatus"`
			LastUpdatePostDateStruct struct {
				Date string `json:"date"`
			} `json:"lastUpdatePostDateStruct"`
		} `json:"statusModule"`
		ContactsLocationsModule struct {
			Locations []struct {
				Facility string `json:"facility"`
				City     string `json:"city"`
				Country  string `json:"country"`
			} `json:"locations"`
		} `json:"contactsLocationsModule"`
	} `json:"protocolSection"`
}

// Search queries /studies with the translated terms, following
// nextPageToken up to the configured page limit
func (c *CTGovClient) Search(ctx context.Context, terms model.TranslatedTerms, recruitingOnly bool) ([]model.CTGovTrial, error) {
	var trials []model.CTGovTrial
	pageToken := ""

	for page := 0; page < c.maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.fetchPage(ctx, c.buildURL(terms, recruitingOnly, pageToken))
		if err != nil {
			return nil, err
		}

		for _, s := range resp.Studies {
			trials = append(trials, convertStudyJSON(s))
		}

		c.log.Debug().
			Int("page", page+1).
			Int("studies", len(resp.Studies)).
			Bool("has_next", resp.NextPageToken != "").
			Msg("fetched studies page")

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return trials, nil
}

func (c *CTGovClient) buildURL(terms model.TranslatedTerms, recruitingOnly bool, pageToken string) string {
	q := url.Values{}
	if terms.Condition != "" {
		q.Set("query.cond", terms.Condition)
	}
	if terms.Keyword != "" {
		q.Set("query.term", terms.Keyword)
	}
	if terms.Location != "" {
		q.Set("query.locn", terms.Location)
	}
	if recruitingOnly {
		q.Set("filter.overallStatus", recruitingStatus)
	}
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	return fmt.Sprintf("%s/studies?%s", c.baseURL, q.Encode())
}

// fetchPage performs a single GET. Non-200 responses abort the search
// and are not retried.
func (c *CTGovClient) fetchPage(ctx context.Context, url string) (*studiesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query ClinicalTrials.gov: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Service: "ClinicalTrials.gov", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read studies response: %w", err)
	}

	var out studiesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse studies response: %w", err)
	}
	return &out, nil
}

// convertStudyJSON flattens the nested study sections into a record
func convertStudyJSON(s studyJSON) model.CTGovTrial {
	p := s.ProtocolSection

	title := p.IdentificationModule.OfficialTitle
	if title == "" {
		title = p.IdentificationModule.BriefTitle
	}

	trial := model.CTGovTrial{
		NCTID:            p.IdentificationModule.NCTID,
		OfficialTitle:    title,
		BriefSummary:     p.DescriptionModule.BriefSummary,
		Eligibility:      p.EligibilityModule.EligibilityCriteria,
		OverallStatus:    p.StatusModule.OverallStatus,
		LastUpdatePosted: p.StatusModule.LastUpdatePostDateStruct.Date,
		DetailURL:        model.CTGovDetailURL(p.IdentificationModule.NCTID),
	}

	for _, loc := range p.ContactsLocationsModule.Locations {
		if loc.Facility != "" {
			trial.Locations = append(trial.Locations, loc.Facility)
		}
	}

	return trial
}
