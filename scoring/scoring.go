// Package scoring fuses presence and authority signals into a composite
// viability score and an outreach tier.
package scoring

import (
	"math"

	"github.com/outreachkit/bvscore/authority"
	"github.com/outreachkit/bvscore/presence"
	"golang.org/x/xerrors"
)

// Tier is an outreach-priority bucket.
type Tier string

// The supported tiers, from highest to lowest priority.
const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
	TierSkip   Tier = "skip"
)

// Tiers lists every tier from highest to lowest priority.
var Tiers = []Tier{TierGold, TierSilver, TierBronze, TierSkip}

// Pillars holds the four 0-100 sub-scores of a domain.
type Pillars struct {
	WebPresence int
	Content     int
	Social      int
	Authority   int
}

// ScoredDomain is the terminal result for one domain.
type ScoredDomain struct {
	Domain string

	// Score is the composite score in [0, 100] with one decimal.
	Score float64
	Tier  Tier

	Pillars Pillars

	Presence  presence.Record
	Authority authority.Record
}

// Scorer applies a Policy. It holds no mutable state and is safe for
// concurrent use.
type Scorer struct {
	policy     Policy
	tierTenths []int
}

// NewScorer returns a Scorer for policy.
func NewScorer(policy Policy) (*Scorer, error) {
	if err := policy.Validate(); err != nil {
		return nil, xerrors.Errorf("scoring policy validation failed: %w", err)
	}

	tierTenths := make([]int, len(policy.Tiers))
	for i, t := range policy.Tiers {
		tierTenths[i] = int(math.Round(t.MinScore * 10))
	}
	return &Scorer{policy: policy, tierTenths: tierTenths}, nil
}

// Policy returns the policy applied by s.
func (s *Scorer) Policy() Policy { return s.policy }

var defaultScorer = mustScorer(DefaultPolicy())

func mustScorer(p Policy) *Scorer {
	s, err := NewScorer(p)
	if err != nil {
		panic(err)
	}
	return s
}

// Score scores a domain with DefaultPolicy.
func Score(p presence.Record, a authority.Record) ScoredDomain {
	return defaultScorer.Score(p, a)
}

// TierFor maps a composite score to a tier using DefaultPolicy.
func TierFor(score float64) Tier {
	return defaultScorer.tierForTenths(int(math.Round(score * 10)))
}

// Score combines one presence and one authority record into a ScoredDomain.
// The domain of the presence record is authoritative.
func (s *Scorer) Score(p presence.Record, a authority.Record) ScoredDomain {
	pillars := Pillars{
		WebPresence: s.webPresence(p),
		Content:     s.content(p),
		Social:      s.social(p),
		Authority:   s.authority(a),
	}

	// The composite is accumulated in hundredths of a point and rounded
	// half-up to tenths, so 77.25 always becomes 77.3.
	w := s.policy.Weights
	hundredths := pillars.WebPresence*w.WebPresence +
		pillars.Content*w.Content +
		pillars.Social*w.Social +
		pillars.Authority*w.Authority
	tenths := (hundredths + 5) / 10

	return ScoredDomain{
		Domain:    p.Domain,
		Score:     float64(tenths) / 10,
		Tier:      s.tierForTenths(tenths),
		Pillars:   pillars,
		Presence:  p,
		Authority: a,
	}
}

func (s *Scorer) tierForTenths(tenths int) Tier {
	for i, threshold := range s.tierTenths {
		if tenths >= threshold {
			return s.policy.Tiers[i].Tier
		}
	}
	return TierSkip
}

func (s *Scorer) webPresence(p presence.Record) int {
	pts := 0
	if p.Reachable {
		pts += s.policy.ReachablePoints
	}
	if p.UsesTLS {
		pts += s.policy.TLSPoints
	}
	if p.MobileFriendly {
		pts += s.policy.MobilePoints
	}
	if p.HTTPStatus == 200 {
		pts += s.policy.StatusOKPoints
	}
	return clampPillar(pts)
}

func (s *Scorer) content(p presence.Record) int {
	pts := 0
	if p.HasBlog {
		pts += s.policy.BlogPoints
	}
	if p.HasContactForm {
		pts += s.policy.ContactPoints
	}
	if p.HasStaffPage {
		pts += s.policy.StaffPoints
	}
	if p.HasNewsletter {
		pts += s.policy.NewsletterPoints
	}
	return clampPillar(pts)
}

func (s *Scorer) social(p presence.Record) int {
	return clampPillar(p.SocialCount() * s.policy.PointsPerNetwork)
}

func (s *Scorer) authority(a authority.Record) int {
	if a.Rank <= 0 {
		return 0
	}

	pts := s.policy.RankFloorPoints
	for _, step := range s.policy.RankLadder {
		if a.Rank >= step.Min {
			pts = step.Points
			break
		}
	}
	for _, step := range s.policy.ReferringBonus {
		if a.ReferringDomains >= step.Min {
			pts = clampPillar(pts + step.Points)
			break
		}
	}
	for _, step := range s.policy.SpamPenalty {
		if a.SpamScore > step.Min {
			pts = clampPillar(pts - step.Points)
			break
		}
	}
	return clampPillar(pts)
}

func clampPillar(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
