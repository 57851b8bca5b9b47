// Package authority retrieves link-based authority metrics for domains from
// a paid metrics provider.
package authority

import (
	"context"
	"io/ioutil"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/outreachkit/bvscore/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/outreachkit/bvscore/authority Provider

// CostPerDomain is the provider price, in USD, of a single summary lookup.
const CostPerDomain = 0.02

// EstimateCost returns the expected provider spend, in USD, for looking up
// n domains.
func EstimateCost(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) * CostPerDomain
}

// Provider is implemented by authority metric backends.
type Provider interface {
	// Summary returns the metrics known for domain. A nil summary with a
	// nil error means the provider has no data for the domain.
	Summary(ctx context.Context, domain string) (*Summary, error)
}

// Config encapsulates the settings for a Fetcher.
type Config struct {
	// The metrics backend. Required.
	Provider Provider

	// If positive, provider requests are paced to at most this many
	// requests per second.
	RequestsPerSecond float64

	// Registry for the lookup metrics. If nil, the metrics are collected
	// but not registered.
	Registerer prometheus.Registerer

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Provider == nil {
		err = multierror.Append(err, xerrors.Errorf("authority provider not specified"))
	}
	if cfg.RequestsPerSecond < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for requests per second"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Fetcher looks up authority metrics one domain at a time.
type Fetcher struct {
	cfg     Config
	limiter *rate.Limiter
	lookups *prometheus.CounterVec
}

// NewFetcher returns a Fetcher configured with cfg.
func NewFetcher(cfg Config) (*Fetcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("authority fetcher: config validation failed: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Fetcher{
		cfg:     cfg,
		limiter: limiter,
		lookups: promauto.With(cfg.Registerer).NewCounterVec(prometheus.CounterOpts{
			Name: "bvscore_authority_lookups_total",
			Help: "The number of authority lookups partitioned by outcome.",
		}, []string{"outcome"}),
	}, nil
}

// Fetch looks up every domain sequentially and returns one record per input
// domain, in input order. Provider failures are logged and yield a zero
// record for the affected domain; they never abort the batch. Domains left
// unvisited because ctx was cancelled also get zero records.
func (f *Fetcher) Fetch(ctx context.Context, domains []string) []Record {
	records := make([]Record, len(domains))
	for i, domain := range domains {
		records[i] = Record{Domain: domain}
	}

	pipe := pipeline.New(pipeline.FIFO(pipeline.ProcessorFunc(f.lookup)))
	src := &domainSource{domains: domains}
	sink := &recordSink{records: records, total: len(domains), logger: f.cfg.Logger}
	if err := pipe.Process(ctx, src, sink); err != nil {
		f.cfg.Logger.WithField("err", err).Warn("authority lookups aborted")
	}
	return records
}

func (f *Fetcher) lookup(ctx context.Context, in pipeline.Payload) (pipeline.Payload, error) {
	payload := in.(*lookupPayload)
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, xerrors.Errorf("waiting for rate limiter: %w", err)
	}

	summary, err := f.cfg.Provider.Summary(ctx, payload.domain)
	switch {
	case err != nil:
		f.lookups.WithLabelValues("error").Inc()
		f.cfg.Logger.WithFields(logrus.Fields{
			"domain": payload.domain,
			"err":    err,
		}).Warn("authority lookup failed")
	case summary == nil:
		f.lookups.WithLabelValues("no_data").Inc()
	default:
		f.lookups.WithLabelValues("ok").Inc()
	}

	payload.record = FromSummary(payload.domain, summary)
	return payload, nil
}

var payloadPool = sync.Pool{
	New: func() interface{} { return new(lookupPayload) },
}

type lookupPayload struct {
	index  int
	domain string
	record Record
}

// MarkAsProcessed implements pipeline.Payload.
func (p *lookupPayload) MarkAsProcessed() {
	p.domain = p.domain[:0]
	p.record = Record{}
	payloadPool.Put(p)
}

type domainSource struct {
	domains []string
	next    int
	cur     *lookupPayload
}

func (s *domainSource) Next(context.Context) bool {
	if s.next >= len(s.domains) {
		return false
	}
	s.cur = payloadPool.Get().(*lookupPayload)
	s.cur.index = s.next
	s.cur.domain = s.domains[s.next]
	s.next++
	return true
}

func (s *domainSource) Payload() pipeline.Payload { return s.cur }
func (s *domainSource) Error() error              { return nil }

type recordSink struct {
	records []Record
	total   int
	count   int
	logger  *logrus.Entry
}

func (s *recordSink) Consume(_ context.Context, in pipeline.Payload) error {
	payload := in.(*lookupPayload)
	s.records[payload.index] = payload.record
	s.count++
	s.logger.WithFields(logrus.Fields{
		"domain": payload.domain,
		"done":   s.count,
		"total":  s.total,
	}).Debug("authority lookup complete")
	return nil
}
