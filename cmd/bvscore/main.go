package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/outreachkit/bvscore/authority"
	"github.com/outreachkit/bvscore/authority/dataforseo"
	"github.com/outreachkit/bvscore/bvs"
	"github.com/outreachkit/bvscore/presence"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/xerrors"
)

var (
	appName    = "bvscore"
	appSha     = "populated-at-link-time"
	rootLogger = logrus.New()
	logger     *logrus.Entry
)

func main() {
	host, _ := os.Hostname()
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		_ = os.Stderr.Sync()
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Usage = "score candidate domains for outreach viability"
	app.ArgsUsage = "<input.csv|input.xlsx>"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "target-site",
			EnvVar: "BVS_TARGET_SITE",
			Usage:  "The site the outreach campaign is run for (only shown in the summary)",
		},
		cli.IntFlag{
			Name:   "concurrency",
			Value:  5,
			EnvVar: "BVS_CONCURRENCY",
			Usage:  "The maximum number of domains probed at the same time",
		},
		cli.BoolFlag{
			Name:   "skip-http",
			EnvVar: "BVS_SKIP_HTTP",
			Usage:  "Skip probing the domains over HTTP(S)",
		},
		cli.BoolFlag{
			Name:   "skip-backlinks",
			EnvVar: "BVS_SKIP_BACKLINKS",
			Usage:  "Skip the (paid) authority metric lookups",
		},
		cli.StringFlag{
			Name:   "output-dir",
			Value:  bvs.DefaultOutputDir,
			EnvVar: "BVS_OUTPUT_DIR",
			Usage:  "The directory for the exported reports",
		},
		cli.IntFlag{
			Name:   "top",
			Value:  20,
			EnvVar: "BVS_TOP",
			Usage:  "The number of top-ranked domains listed in the summary",
		},
		cli.BoolFlag{
			Name:   "xlsx",
			EnvVar: "BVS_XLSX",
			Usage:  "Also export the report as an .xlsx workbook",
		},
		cli.Float64Flag{
			Name:   "authority-rps",
			EnvVar: "BVS_AUTHORITY_RPS",
			Usage:  "The maximum number of authority lookups per second (0 = unpaced)",
		},
		cli.StringFlag{
			Name:   "dataforseo-url",
			Value:  dataforseo.DefaultBaseURL,
			EnvVar: "DATAFORSEO_URL",
			Usage:  "The DataForSEO API endpoint",
		},
		cli.BoolFlag{
			Name:   "allow-private-networks",
			EnvVar: "BVS_ALLOW_PRIVATE_NETWORKS",
			Usage:  "Probe domains that resolve to private network addresses",
		},
		cli.BoolFlag{
			Name:   "log-json",
			EnvVar: "BVS_LOG_JSON",
			Usage:  "Emit logs as JSON",
		},
		cli.StringFlag{
			Name:   "metrics-file",
			EnvVar: "BVS_METRICS_FILE",
			Usage:  "Write the collected metrics to this file in the node-exporter textfile format",
		},
	}
	app.Action = runMain
	return app
}

func runMain(appCtx *cli.Context) error {
	if appCtx.Bool("log-json") {
		rootLogger.SetFormatter(new(logrus.JSONFormatter))
	}
	if appCtx.NArg() != 1 {
		return xerrors.Errorf("expected exactly one input file; see --help")
	}
	loadEnv()

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	runID := uuid.New().String()
	runLogger := logger.WithField("run_id", runID)
	reg := prometheus.NewRegistry()

	cfg := bvs.Config{
		OutputDir:     appCtx.String("output-dir"),
		TargetSite:    appCtx.String("target-site"),
		TopN:          appCtx.Int("top"),
		SkipPresence:  appCtx.Bool("skip-http"),
		SkipAuthority: appCtx.Bool("skip-backlinks"),
		WriteXLSX:     appCtx.Bool("xlsx"),
		RunID:         runID,
		Logger:        logger,
	}

	if !cfg.SkipPresence {
		prober, err := presence.NewProber(presence.Config{
			Concurrency:          appCtx.Int("concurrency"),
			AllowPrivateNetworks: appCtx.Bool("allow-private-networks"),
			Registerer:           reg,
			Logger:               runLogger,
		})
		if err != nil {
			return err
		}
		cfg.Prober = prober
	}

	if !cfg.SkipAuthority {
		fetcher, err := newAuthorityFetcher(appCtx, reg, runLogger)
		if err != nil {
			return err
		}
		cfg.Authority = fetcher
	}

	svc, err := bvs.NewService(cfg)
	if err != nil {
		return err
	}

	// Start signal watcher
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			runLogger.WithField("signal", s.String()).Infof("cancelling run due to signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	res, err := svc.Run(ctx, appCtx.Args().First())
	if err != nil {
		return err
	}

	if path := appCtx.String("metrics-file"); path != "" {
		if err = prometheus.WriteToTextfile(path, reg); err != nil {
			return xerrors.Errorf("write metrics: %w", err)
		}
	}

	fmt.Println(res.Summary)
	fmt.Printf("\nCSV: %s\n", res.CSVPath)
	if res.XLSXPath != "" {
		fmt.Printf("XLSX: %s\n", res.XLSXPath)
	}
	return nil
}

func newAuthorityFetcher(appCtx *cli.Context, reg prometheus.Registerer, runLogger *logrus.Entry) (*authority.Fetcher, error) {
	login := os.Getenv("DATAFORSEO_LOGIN")
	if login == "" {
		login = os.Getenv("DATAFORSEO_USERNAME")
	}
	client, err := dataforseo.NewClient(login, os.Getenv("DATAFORSEO_PASSWORD"),
		dataforseo.WithBaseURL(appCtx.String("dataforseo-url")),
	)
	if err != nil {
		return nil, xerrors.Errorf("DATAFORSEO_LOGIN and DATAFORSEO_PASSWORD must be set (or use --skip-backlinks): %w", err)
	}

	return authority.NewFetcher(authority.Config{
		Provider:          client,
		RequestsPerSecond: appCtx.Float64("authority-rps"),
		Registerer:        reg,
		Logger:            runLogger,
	})
}

// loadEnv loads credentials from ~/.env and then ./.env. Variables that are
// already set are never overridden.
func loadEnv() {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".env"))
	}
	paths = append(paths, ".env")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.WithFields(logrus.Fields{"path": path, "err": err}).Warn("could not load env file")
		}
	}
}
