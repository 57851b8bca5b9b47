// Package bvs wires the domain loader, the presence prober, the authority
// fetcher, the scorer and the report assembler into a single batch run.
package bvs

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/outreachkit/bvscore/authority"
	"github.com/outreachkit/bvscore/domainlist"
	"github.com/outreachkit/bvscore/presence"
	"github.com/outreachkit/bvscore/report"
	"github.com/outreachkit/bvscore/scoring"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/outreachkit/bvscore/bvs PresenceProber,AuthorityFetcher

// DefaultOutputDir is where exports are written unless configured otherwise.
const DefaultOutputDir = "results/plays"

const timestampLayout = "20060102_150405"

// PresenceProber is implemented by objects that probe domains for presence
// signals. Probe must return one record per domain, in input order.
type PresenceProber interface {
	Probe(ctx context.Context, domains []string) []presence.Record
}

// AuthorityFetcher is implemented by objects that look up authority metrics.
// Fetch must return one record per domain, in input order.
type AuthorityFetcher interface {
	Fetch(ctx context.Context, domains []string) []authority.Record
}

// Config encapsulates the settings for a BVS scoring run.
type Config struct {
	// The presence prober. Required unless SkipPresence is set.
	Prober PresenceProber

	// The authority metrics fetcher. Required unless SkipAuthority is set.
	Authority AuthorityFetcher

	// The scorer to use. If not specified, a scorer for
	// scoring.DefaultPolicy is used.
	Scorer *scoring.Scorer

	// The directory for exported reports. Defaults to DefaultOutputDir.
	OutputDir string

	// The site the outreach campaign is run for; only used in the summary.
	TargetSite string

	// The number of domains listed in the summary.
	TopN int

	// When set, the corresponding feed is not queried and every domain
	// receives the default record for it.
	SkipPresence  bool
	SkipAuthority bool

	// Also export the report as an .xlsx workbook.
	WriteXLSX bool

	// An identifier for the run. If not specified, a random one is
	// generated.
	RunID string

	// A clock instance for timestamping exports. If not specified, the
	// default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Prober == nil && !cfg.SkipPresence {
		err = multierror.Append(err, xerrors.Errorf("presence prober has not been provided"))
	}
	if cfg.Authority == nil && !cfg.SkipAuthority {
		err = multierror.Append(err, xerrors.Errorf("authority fetcher has not been provided"))
	}
	if cfg.Scorer == nil {
		var scorerErr error
		if cfg.Scorer, scorerErr = scoring.NewScorer(scoring.DefaultPolicy()); scorerErr != nil {
			err = multierror.Append(err, scorerErr)
		}
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.TopN == 0 {
		cfg.TopN = report.DefaultTopN
	} else if cfg.TopN < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for top N"))
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.New().String()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Result is the outcome of a scoring run.
type Result struct {
	RunID string
	Total int

	// Scored lists every input domain, ranked by descending score.
	Scored []scoring.ScoredDomain
	ByTier map[scoring.Tier][]scoring.ScoredDomain

	CSVPath string

	// XLSXPath is empty unless the workbook export was enabled.
	XLSXPath string

	Summary string
}

// Service runs BVS scoring batches.
type Service struct {
	cfg Config
}

// NewService creates a new scoring service with the specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("bvs service: config validation failed: %w", err)
	}
	return &Service{cfg: cfg}, nil
}

// Run scores every domain listed in the file at inputPath and exports the
// ranked report. Input problems abort the run before any network activity;
// per-domain failures are recorded in the results and never fail the run.
func (svc *Service) Run(ctx context.Context, inputPath string) (*Result, error) {
	startAt := svc.cfg.Clock.Now()
	logger := svc.cfg.Logger.WithField("run_id", svc.cfg.RunID)

	domains, err := domainlist.Load(inputPath)
	if err != nil {
		return nil, xerrors.Errorf("bvs: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"input":   filepath.Base(inputPath),
		"domains": len(domains),
	}).Info("loaded input")

	presenceRecs, authorityRecs := svc.gather(ctx, logger, domains)
	if len(presenceRecs) != len(domains) || len(authorityRecs) != len(domains) {
		return nil, xerrors.Errorf("bvs: got %d presence and %d authority records for %d domains",
			len(presenceRecs), len(authorityRecs), len(domains))
	}

	logger.Info("scoring domains")
	scored := make([]scoring.ScoredDomain, len(domains))
	for i := range domains {
		scored[i] = svc.cfg.Scorer.Score(presenceRecs[i], authorityRecs[i])
	}
	rep := report.Assemble(scored)

	res := &Result{
		RunID:  svc.cfg.RunID,
		Total:  len(scored),
		Scored: rep.Scored,
		ByTier: rep.ByTier,
		Summary: rep.Summary(report.SummaryOptions{
			TargetSite: svc.cfg.TargetSite,
			TopN:       svc.cfg.TopN,
			Tiers:      svc.cfg.Scorer.Policy().Tiers,
		}),
	}
	if err = svc.export(rep, inputPath, startAt.Format(timestampLayout), res); err != nil {
		return nil, err
	}

	counts := rep.Counts()
	logger.WithFields(logrus.Fields{
		"gold":    counts[scoring.TierGold],
		"silver":  counts[scoring.TierSilver],
		"bronze":  counts[scoring.TierBronze],
		"skip":    counts[scoring.TierSkip],
		"csv":     res.CSVPath,
		"elapsed": svc.cfg.Clock.Now().Sub(startAt).String(),
	}).Info("scoring complete")
	return res, nil
}

// gather runs both feeds concurrently and returns once both have produced
// their records.
func (svc *Service) gather(ctx context.Context, logger *logrus.Entry, domains []string) ([]presence.Record, []authority.Record) {
	var (
		wg            sync.WaitGroup
		presenceRecs  []presence.Record
		authorityRecs []authority.Record
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if svc.cfg.SkipPresence {
			logger.Info("skipping presence probing")
			presenceRecs = make([]presence.Record, len(domains))
			for i, domain := range domains {
				presenceRecs[i] = presence.Unprobed(domain)
			}
			return
		}

		logger.WithField("domains", len(domains)).Info("probing presence")
		presenceRecs = svc.cfg.Prober.Probe(ctx, domains)
		reachable := 0
		for _, rec := range presenceRecs {
			if rec.Reachable {
				reachable++
			}
		}
		logger.WithField("reachable", reachable).Info("presence probing complete")
	}()
	go func() {
		defer wg.Done()
		if svc.cfg.SkipAuthority {
			logger.Info("skipping authority lookups")
			authorityRecs = make([]authority.Record, len(domains))
			for i, domain := range domains {
				authorityRecs[i] = authority.FromSummary(domain, nil)
			}
			return
		}

		logger.WithFields(logrus.Fields{
			"domains":      len(domains),
			"est_cost_usd": fmt.Sprintf("%.2f", authority.EstimateCost(len(domains))),
		}).Info("fetching authority metrics")
		authorityRecs = svc.cfg.Authority.Fetch(ctx, domains)
		logger.Info("authority lookups complete")
	}()
	wg.Wait()

	return presenceRecs, authorityRecs
}

// export writes the report files and records their paths in res.
func (svc *Service) export(rep *report.Report, inputPath, timestamp string, res *Result) error {
	if err := os.MkdirAll(svc.cfg.OutputDir, 0o755); err != nil {
		return xerrors.Errorf("bvs: create output dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	base := filepath.Join(svc.cfg.OutputDir, fmt.Sprintf("%s__bvs__%s", timestamp, stem))

	res.CSVPath = base + ".csv"
	if err := writeCSVFile(rep, res.CSVPath); err != nil {
		return xerrors.Errorf("bvs: export csv: %w", err)
	}

	if svc.cfg.WriteXLSX {
		res.XLSXPath = base + ".xlsx"
		if err := rep.WriteXLSX(res.XLSXPath); err != nil {
			return xerrors.Errorf("bvs: export xlsx: %w", err)
		}
	}
	return nil
}

func writeCSVFile(rep *report.Report, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return rep.WriteCSV(f)
}
