// Package presence probes domains over HTTP(S) and extracts coarse presence
// signals from their landing pages.
package presence

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/outreachkit/bvscore/presence/privnet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/outreachkit/bvscore/presence PrivateNetworkDetector

// Short failure categories stored in Record.Error.
const (
	ErrTimeout         = "timeout"
	ErrCanceled        = "canceled"
	ErrPrivateNetwork  = "private network"
	ErrConnection      = "connection error"
	errStatusTemplate  = "http status %d"
	defaultUserAgent   = "Mozilla/5.0 (compatible; bvscore/1.0; outreach-research)"
	defaultMaxBodySize = 2 << 20
)

// PrivateNetworkDetector is implemented by objects that can detect whether a
// host resolves to a private network address.
type PrivateNetworkDetector interface {
	IsPrivate(ctx context.Context, host string) (bool, error)
}

// Config encapsulates the settings for a Prober.
type Config struct {
	// The transport for outgoing requests. If not specified, a clone of
	// http.DefaultTransport is used; certificates are only verified when
	// VerifyTLS is set.
	Transport http.RoundTripper
	VerifyTLS bool

	// Detects hosts in private networks, which are never fetched. If not
	// specified, privnet.NewDetector is used. The check is skipped
	// entirely when AllowPrivateNetworks is set.
	PrivateNetworkDetector PrivateNetworkDetector
	AllowPrivateNetworks   bool

	// The maximum number of in-flight probes. Defaults to 5.
	Concurrency int

	// The upper bound for a single fetch attempt. Defaults to 10s.
	Timeout time.Duration

	// The maximum number of redirect hops per attempt. Defaults to 5.
	MaxRedirects int

	// The maximum number of body bytes inspected. Defaults to 2 MiB.
	MaxBodyBytes int64

	UserAgent string

	// The signal vocabulary. Defaults to Signals.
	Signals []Signal

	// A clock instance used for timing probes. Defaults to the wall-clock.
	Clock clock.Clock

	// Registry for the probe metrics. If nil, the metrics are collected but
	// not registered.
	Registerer prometheus.Registerer

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Transport == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS} // #nosec G402
		cfg.Transport = tr
	}
	if cfg.PrivateNetworkDetector == nil && !cfg.AllowPrivateNetworks {
		var detErr error
		if cfg.PrivateNetworkDetector, detErr = privnet.NewDetector(); detErr != nil {
			err = multierror.Append(err, detErr)
		}
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 5
	} else if cfg.Concurrency < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for concurrency"))
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	} else if cfg.Timeout < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for timeout"))
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 5
	} else if cfg.MaxRedirects < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for max redirects"))
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = defaultMaxBodySize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Signals == nil {
		cfg.Signals = Signals
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Prober fetches the landing page of each domain and turns it into a Record.
type Prober struct {
	cfg     Config
	client  *http.Client
	metrics *metrics
}

// NewProber returns a Prober configured with cfg.
func NewProber(cfg Config) (*Prober, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("presence prober: config validation failed: %w", err)
	}

	maxRedirects := cfg.MaxRedirects
	return &Prober{
		cfg: cfg,
		client: &http.Client{
			Transport: cfg.Transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return xerrors.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		metrics: newMetrics(cfg.Registerer),
	}, nil
}

// ProbeDomain probes a single domain. HTTPS is tried first and plain HTTP is
// used as the only fallback. ProbeDomain never fails: problems are reported
// through the Error field of the returned record.
func (p *Prober) ProbeDomain(ctx context.Context, domain string) Record {
	startAt := p.cfg.Clock.Now()
	rec := p.probe(ctx, domain)
	p.metrics.observe(rec, p.cfg.Clock.Now().Sub(startAt))
	return rec
}

func (p *Prober) probe(ctx context.Context, domain string) Record {
	rec := Record{Domain: domain}

	if !p.cfg.AllowPrivateNetworks {
		isPrivate, err := p.cfg.PrivateNetworkDetector.IsPrivate(ctx, domain)
		if err != nil {
			// Unresolvable hosts are left to fail in the fetch itself.
			p.cfg.Logger.WithFields(logrus.Fields{"domain": domain, "err": err}).Debug("private network check failed")
		} else if isPrivate {
			rec.Error = ErrPrivateNetwork
			return rec
		}
	}

	for _, scheme := range []string{"https", "http"} {
		if ctx.Err() != nil {
			rec.Error = ErrCanceled
			return rec
		}

		pg, err := p.fetch(ctx, scheme+"://"+domain)
		if err != nil {
			rec.Error = failureCategory(ctx, err)
			continue
		}

		rec.HTTPStatus = pg.status
		if pg.status >= http.StatusBadRequest {
			rec.Error = fmt.Sprintf(errStatusTemplate, pg.status)
			continue
		}

		rec.Reachable = true
		rec.UsesTLS = pg.finalURL != nil && pg.finalURL.Scheme == "https"
		rec.Flags = DetectWith(p.cfg.Signals, pg.text)
		rec.Error = ""
		return rec
	}
	return rec
}

type page struct {
	status   int
	finalURL *url.URL
	text     string
}

func (p *Prober) fetch(ctx context.Context, target string) (*page, error) {
	ctx, cancelFn := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancelFn()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	pg := &page{status: res.StatusCode, finalURL: req.URL}
	if res.Request != nil {
		pg.finalURL = res.Request.URL
	}
	if res.StatusCode >= http.StatusBadRequest {
		return pg, nil
	}

	// A body that cannot be read completely still counts as a response;
	// signals are extracted from whatever arrived.
	pg.text, err = readText(res, p.cfg.MaxBodyBytes)
	if err != nil {
		p.cfg.Logger.WithFields(logrus.Fields{"url": target, "err": err}).Debug("partial body read")
	}
	return pg, nil
}

// readText decodes up to maxBytes of the response body into UTF-8 text.
// Bytes that cannot be decoded are replaced rather than rejected.
func readText(res *http.Response, maxBytes int64) (string, error) {
	body := io.LimitReader(res.Body, maxBytes)
	r, err := charset.NewReader(body, res.Header.Get("Content-Type"))
	if err != nil {
		r = body
	}
	raw, err := ioutil.ReadAll(r)
	return strings.ToValidUTF8(string(raw), "�"), err
}

// failureCategory condenses a fetch error into a short category.
func failureCategory(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return ErrCanceled
	}
	if xerrors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if xerrors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrConnection
}
