// Package report ranks scored domains and renders them as CSV, XLSX and
// markdown summaries.
package report

import (
	"sort"
	"strconv"

	"github.com/outreachkit/bvscore/scoring"
)

// Report is a ranked view over a batch of scored domains.
type Report struct {
	// Scored holds every domain sorted by descending score. Domains with
	// equal scores keep their input order.
	Scored []scoring.ScoredDomain

	// ByTier groups Scored by tier, preserving the sorted order within each
	// group. Every tier has an entry, even when empty.
	ByTier map[scoring.Tier][]scoring.ScoredDomain
}

// Assemble ranks scored and groups it by tier. The input slice is not
// modified.
func Assemble(scored []scoring.ScoredDomain) *Report {
	sorted := append([]scoring.ScoredDomain(nil), scored...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	byTier := make(map[scoring.Tier][]scoring.ScoredDomain, len(scoring.Tiers))
	for _, tier := range scoring.Tiers {
		byTier[tier] = []scoring.ScoredDomain{}
	}
	for _, sd := range sorted {
		byTier[sd.Tier] = append(byTier[sd.Tier], sd)
	}

	return &Report{Scored: sorted, ByTier: byTier}
}

// Counts returns the number of domains in each tier.
func (r *Report) Counts() map[scoring.Tier]int {
	counts := make(map[scoring.Tier]int, len(r.ByTier))
	for tier, items := range r.ByTier {
		counts[tier] = len(items)
	}
	return counts
}

// Columns is the header shared by every tabular export.
var Columns = []string{
	"domain", "tier", "score",
	"pillar_web", "pillar_content", "pillar_social", "pillar_authority",
	"authority_rank", "referring_domains", "spam_score",
	"reachable", "uses_tls", "mobile_friendly",
	"has_blog", "has_contact_form", "has_staff_page", "has_newsletter",
	"has_facebook", "has_instagram", "has_twitter", "has_youtube",
	"http_status", "error",
}

// values flattens sd into cells ordered like Columns.
func values(sd scoring.ScoredDomain) []interface{} {
	p, a := sd.Presence, sd.Authority
	return []interface{}{
		sd.Domain, string(sd.Tier), sd.Score,
		sd.Pillars.WebPresence, sd.Pillars.Content, sd.Pillars.Social, sd.Pillars.Authority,
		a.Rank, a.ReferringDomains, a.SpamScore,
		p.Reachable, p.UsesTLS, p.MobileFriendly,
		p.HasBlog, p.HasContactForm, p.HasStaffPage, p.HasNewsletter,
		p.HasFacebook, p.HasInstagram, p.HasTwitter, p.HasYouTube,
		p.HTTPStatus, p.Error,
	}
}

// formatScore renders a composite score with its single decimal.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}
