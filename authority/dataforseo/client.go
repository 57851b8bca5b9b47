// Package dataforseo implements an authority.Provider backed by the
// DataForSEO backlinks summary API.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/outreachkit/bvscore/authority"
	"golang.org/x/xerrors"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.dataforseo.com"

const (
	summaryPath  = "/v3/backlinks/summary/live"
	statusOK     = 20000
	maxErrorBody = 512
)

var (
	_ authority.Provider = (*Client)(nil)

	// ErrMissingCredentials is returned by NewClient when either the login
	// or the password is empty.
	ErrMissingCredentials = xerrors.New("dataforseo: login and password are required")
)

// Client queries the backlinks summary endpoint.
type Client struct {
	baseURL  string
	login    string
	password string
	http     *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient returns a Client authenticating with the given credentials.
func NewClient(login, password string, opts ...Option) (*Client, error) {
	if login == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		baseURL:  DefaultBaseURL,
		login:    login,
		password: password,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type summaryTask struct {
	Target              string `json:"target"`
	IncludeSubdomains   bool   `json:"include_subdomains"`
	BacklinksStatusType string `json:"backlinks_status_type"`
}

type summaryResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
		Result        []*struct {
			Rank               *int `json:"rank"`
			Backlinks          *int `json:"backlinks"`
			ReferringDomains   *int `json:"referring_domains"`
			SpamScore          *int `json:"spam_score"`
			BacklinksSpamScore *int `json:"backlinks_spam_score"`
		} `json:"result"`
	} `json:"tasks"`
}

// Summary implements authority.Provider. It returns a nil summary when the
// API answered successfully but holds no data for domain.
func (c *Client) Summary(ctx context.Context, domain string) (*authority.Summary, error) {
	body, err := json.Marshal([]summaryTask{{
		Target:              domain,
		IncludeSubdomains:   true,
		BacklinksStatusType: "live",
	}})
	if err != nil {
		return nil, xerrors.Errorf("dataforseo: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+summaryPath, bytes.NewReader(body))
	if err != nil {
		return nil, xerrors.Errorf("dataforseo: build request: %w", err)
	}
	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("dataforseo: summary request for %q: %w", domain, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		snippet, _ := ioutil.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, xerrors.Errorf("dataforseo: summary request for %q: unexpected status %d: %s",
			domain, res.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded summaryResponse
	if err = json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, xerrors.Errorf("dataforseo: decode summary for %q: %w", domain, err)
	}
	if decoded.StatusCode != 0 && decoded.StatusCode != statusOK {
		return nil, apiError(domain, decoded.StatusCode, decoded.StatusMessage)
	}

	for _, task := range decoded.Tasks {
		if task.StatusCode != statusOK {
			return nil, apiError(domain, task.StatusCode, task.StatusMessage)
		}
		for _, r := range task.Result {
			if r == nil {
				continue
			}
			spam := r.SpamScore
			if spam == nil {
				spam = r.BacklinksSpamScore
			}
			return &authority.Summary{
				Rank:             r.Rank,
				ReferringDomains: r.ReferringDomains,
				Backlinks:        r.Backlinks,
				SpamScore:        spam,
			}, nil
		}
	}
	return nil, nil
}

func apiError(domain string, code int, msg string) error {
	return xerrors.Errorf("dataforseo: summary for %q failed with status %d: %s", domain, code, msg)
}
