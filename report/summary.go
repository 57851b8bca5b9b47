package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/outreachkit/bvscore/scoring"
)

// DefaultTopN is the number of domains listed in a summary by default.
const DefaultTopN = 20

// SummaryOptions controls the rendering of a summary.
type SummaryOptions struct {
	// The site the outreach campaign is run for; omitted if empty.
	TargetSite string

	// The number of top-ranked domains to list. Defaults to DefaultTopN.
	TopN int

	// The thresholds used to label the tier rows. Defaults to the
	// thresholds of scoring.DefaultPolicy.
	Tiers []scoring.TierThreshold
}

var tierActions = map[scoring.Tier]string{
	scoring.TierGold:   "Priority outreach",
	scoring.TierSilver: "Standard outreach",
	scoring.TierBronze: "Low priority",
	scoring.TierSkip:   "Skip",
}

// Summary renders the tier breakdown and the top-ranked domains as markdown.
func (r *Report) Summary(opts SummaryOptions) string {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Tiers == nil {
		opts.Tiers = scoring.DefaultPolicy().Tiers
	}

	var b strings.Builder
	b.WriteString("# BVS Domain Scoring Report\n\n")
	if opts.TargetSite != "" {
		fmt.Fprintf(&b, "Target site: %s\n\n", opts.TargetSite)
	}

	b.WriteString("## Tier Breakdown\n\n")
	b.WriteString("| Tier | Count | Action |\n")
	b.WriteString("|------|-------|--------|\n")
	labels := tierLabels(opts.Tiers)
	for _, tier := range scoring.Tiers {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", labels[tier], len(r.ByTier[tier]), tierActions[tier])
	}

	top := r.Scored
	if len(top) > opts.TopN {
		top = top[:opts.TopN]
	}
	fmt.Fprintf(&b, "\n## Top %d by BVS Score\n\n", opts.TopN)
	b.WriteString("| Domain | BVS | Tier | Rank | Referring Domains | Blog | Contact | Newsletter |\n")
	b.WriteString("|--------|-----|------|------|-------------------|------|---------|------------|\n")
	for _, sd := range top {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s | %s | %s |\n",
			sd.Domain,
			formatScore(sd.Score),
			sd.Tier,
			sd.Authority.Rank,
			humanize.Comma(int64(sd.Authority.ReferringDomains)),
			mark(sd.Presence.HasBlog),
			mark(sd.Presence.HasContactForm),
			mark(sd.Presence.HasNewsletter),
		)
	}
	return b.String()
}

// tierLabels names every tier along with its score range, e.g. "Silver (50-74.9)".
func tierLabels(thresholds []scoring.TierThreshold) map[scoring.Tier]string {
	labels := make(map[scoring.Tier]string, len(scoring.Tiers))
	upper := -1.0
	for _, t := range thresholds {
		rng := fmt.Sprintf("%s+", humanize.Ftoa(t.MinScore))
		if upper >= 0 {
			rng = fmt.Sprintf("%s-%s", humanize.Ftoa(t.MinScore), humanize.Ftoa(upper-0.1))
		}
		labels[t.Tier] = fmt.Sprintf("%s (%s)", title(t.Tier), rng)
		upper = t.MinScore
	}
	if upper < 0 {
		labels[scoring.TierSkip] = title(scoring.TierSkip)
	} else {
		labels[scoring.TierSkip] = fmt.Sprintf("%s (<%s)", title(scoring.TierSkip), humanize.Ftoa(upper))
	}
	return labels
}

func title(t scoring.Tier) string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func mark(set bool) string {
	if set {
		return "✅"
	}
	return "❌"
}
