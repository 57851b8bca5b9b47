package report_test

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/outreachkit/bvscore/authority"
	"github.com/outreachkit/bvscore/presence"
	"github.com/outreachkit/bvscore/report"
	"github.com/outreachkit/bvscore/scoring"
	"github.com/xuri/excelize/v2"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(ReportTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type ReportTestSuite struct{}

func (s *ReportTestSuite) TestAssembleSortsAndGroups(c *gc.C) {
	input := []scoring.ScoredDomain{
		scored("a.org", 40.0, scoring.TierBronze),
		scored("b.org", 80.5, scoring.TierGold),
		scored("c.org", 40.0, scoring.TierBronze),
		scored("d.org", 10.0, scoring.TierSkip),
		scored("e.org", 80.5, scoring.TierGold),
	}
	r := report.Assemble(input)

	c.Assert(domains(r.Scored), gc.DeepEquals, []string{"b.org", "e.org", "a.org", "c.org", "d.org"})
	c.Assert(domains(r.ByTier[scoring.TierGold]), gc.DeepEquals, []string{"b.org", "e.org"})
	c.Assert(r.ByTier[scoring.TierSilver], gc.HasLen, 0)
	c.Assert(domains(r.ByTier[scoring.TierBronze]), gc.DeepEquals, []string{"a.org", "c.org"})
	c.Assert(domains(r.ByTier[scoring.TierSkip]), gc.DeepEquals, []string{"d.org"})
	c.Assert(r.Counts(), gc.DeepEquals, map[scoring.Tier]int{
		scoring.TierGold:   2,
		scoring.TierSilver: 0,
		scoring.TierBronze: 2,
		scoring.TierSkip:   1,
	})

	// The caller's slice keeps its order.
	c.Assert(input[0].Domain, gc.Equals, "a.org")
}

func (s *ReportTestSuite) TestAssembleEmpty(c *gc.C) {
	r := report.Assemble(nil)
	c.Assert(r.Scored, gc.HasLen, 0)
	c.Assert(r.ByTier, gc.HasLen, len(scoring.Tiers))
}

func (s *ReportTestSuite) TestWriteCSV(c *gc.C) {
	sd := scoring.Score(
		presence.Record{
			Domain:     "church.org",
			Reachable:  true,
			UsesTLS:    true,
			HTTPStatus: 200,
			Flags: presence.Flags{
				MobileFriendly: true,
				HasBlog:        true,
				HasContactForm: true,
				HasFacebook:    true,
				HasInstagram:   true,
			},
		},
		authority.Record{Domain: "church.org", Rank: 55, ReferringDomains: 120, SpamScore: 10},
	)
	failed := scoring.Score(
		presence.Record{Domain: "down.org", Error: presence.ErrConnection},
		authority.Record{Domain: "down.org"},
	)

	var buf bytes.Buffer
	c.Assert(report.Assemble([]scoring.ScoredDomain{failed, sd}).WriteCSV(&buf), gc.IsNil)

	rows, err := csv.NewReader(&buf).ReadAll()
	c.Assert(err, gc.IsNil)
	c.Assert(rows, gc.HasLen, 3)
	c.Assert(rows[0], gc.DeepEquals, report.Columns)
	c.Assert(rows[1], gc.DeepEquals, []string{
		"church.org", "gold", "77.3",
		"100", "55", "50", "95",
		"55", "120", "10",
		"true", "true", "true",
		"true", "true", "false", "false",
		"true", "true", "false", "false",
		"200", "",
	})
	c.Assert(rows[2][0], gc.Equals, "down.org")
	c.Assert(rows[2][1], gc.Equals, "skip")
	c.Assert(rows[2][2], gc.Equals, "0.0")
	c.Assert(rows[2][len(rows[2])-2:], gc.DeepEquals, []string{"0", "connection error"})
}

func (s *ReportTestSuite) TestWriteCSVPropagatesWriterErrors(c *gc.C) {
	r := report.Assemble([]scoring.ScoredDomain{scored("a.org", 50, scoring.TierSilver)})
	err := r.WriteCSV(failingWriter{})
	c.Assert(err, gc.ErrorMatches, "flush csv: disk full")
}

func (s *ReportTestSuite) TestWriteXLSX(c *gc.C) {
	r := report.Assemble([]scoring.ScoredDomain{
		scored("a.org", 80, scoring.TierGold),
		scored("b.org", 20, scoring.TierSkip),
	})
	path := filepath.Join(c.MkDir(), "out.xlsx")
	c.Assert(r.WriteXLSX(path), gc.IsNil)

	f, err := excelize.OpenFile(path)
	c.Assert(err, gc.IsNil)
	defer func() { _ = f.Close() }()

	c.Assert(f.GetSheetList(), gc.DeepEquals, []string{report.AllSheet, "gold", "silver", "bronze", "skip"})

	rows, err := f.GetRows(report.AllSheet)
	c.Assert(err, gc.IsNil)
	c.Assert(rows, gc.HasLen, 3)
	c.Assert(rows[0], gc.DeepEquals, report.Columns)
	c.Assert(rows[1][0], gc.Equals, "a.org")
	c.Assert(rows[2][0], gc.Equals, "b.org")

	rows, err = f.GetRows("gold")
	c.Assert(err, gc.IsNil)
	c.Assert(rows, gc.HasLen, 2)
	c.Assert(rows[1][0], gc.Equals, "a.org")

	rows, err = f.GetRows("silver")
	c.Assert(err, gc.IsNil)
	c.Assert(rows, gc.HasLen, 1)
}

func (s *ReportTestSuite) TestWriteXLSXToMissingDirectory(c *gc.C) {
	r := report.Assemble(nil)
	err := r.WriteXLSX(filepath.Join(c.MkDir(), "missing", "out.xlsx"))
	c.Assert(err, gc.ErrorMatches, "save workbook .*")
}

func (s *ReportTestSuite) TestSummary(c *gc.C) {
	rich := scored("rich.org", 77.3, scoring.TierGold)
	rich.Authority = authority.Record{Domain: "rich.org", Rank: 55, ReferringDomains: 12345}
	rich.Presence.HasBlog = true
	rich.Presence.HasNewsletter = true

	r := report.Assemble([]scoring.ScoredDomain{
		scored("low.org", 12.0, scoring.TierSkip),
		rich,
	})
	summary := r.Summary(report.SummaryOptions{TargetSite: "mysite.com"})

	c.Assert(strings.HasPrefix(summary, "# BVS Domain Scoring Report\n\nTarget site: mysite.com\n"), gc.Equals, true)
	for _, exp := range []string{
		"| Gold (75+) | 1 | Priority outreach |",
		"| Silver (50-74.9) | 0 | Standard outreach |",
		"| Bronze (30-49.9) | 0 | Low priority |",
		"| Skip (<30) | 1 | Skip |",
		"## Top 20 by BVS Score",
		"| rich.org | 77.3 | gold | 55 | 12,345 | ✅ | ❌ | ✅ |",
		"| low.org | 12.0 | skip | 0 | 0 | ❌ | ❌ | ❌ |",
	} {
		c.Assert(strings.Contains(summary, exp), gc.Equals, true, gc.Commentf("missing %q in:\n%s", exp, summary))
	}
	c.Assert(strings.Index(summary, "rich.org") < strings.Index(summary, "low.org"), gc.Equals, true)
}

func (s *ReportTestSuite) TestSummaryTopN(c *gc.C) {
	var input []scoring.ScoredDomain
	for i := 0; i < 30; i++ {
		input = append(input, scored(fmt.Sprintf("site-%02d.org", i), float64(90-i), scoring.TierGold))
	}
	summary := report.Assemble(input).Summary(report.SummaryOptions{TopN: 5})

	c.Assert(strings.Contains(summary, "Target site"), gc.Equals, false)
	c.Assert(strings.Contains(summary, "## Top 5 by BVS Score"), gc.Equals, true)
	c.Assert(strings.Contains(summary, "site-04.org"), gc.Equals, true)
	c.Assert(strings.Contains(summary, "site-05.org"), gc.Equals, false)
}

func scored(domain string, score float64, tier scoring.Tier) scoring.ScoredDomain {
	return scoring.ScoredDomain{
		Domain:    domain,
		Score:     score,
		Tier:      tier,
		Presence:  presence.Record{Domain: domain},
		Authority: authority.Record{Domain: domain},
	}
}

func domains(list []scoring.ScoredDomain) []string {
	out := make([]string, len(list))
	for i, sd := range list {
		out[i] = sd.Domain
	}
	return out
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, xerrors.New("disk full") }
