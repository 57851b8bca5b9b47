package scoring

import (
	"testing"

	"github.com/outreachkit/bvscore/authority"
	"github.com/outreachkit/bvscore/presence"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(ScorerTestSuite))
var _ = gc.Suite(new(PolicyTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type ScorerTestSuite struct{}

func (s *ScorerTestSuite) TestFullyPresentDomain(c *gc.C) {
	p := presence.Record{
		Domain:     "church.example",
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
	}
	a := authority.Record{Domain: "church.example", Rank: 55, ReferringDomains: 120, SpamScore: 10}

	got := Score(p, a)
	c.Assert(got.Pillars, gc.DeepEquals, Pillars{WebPresence: 100, Content: 55, Social: 50, Authority: 95})
	c.Assert(got.Score, gc.Equals, 77.3, gc.Commentf("77.25 must round half-up"))
	c.Assert(got.Tier, gc.Equals, TierGold)
	c.Assert(got.Domain, gc.Equals, "church.example")
	c.Assert(got.Presence, gc.DeepEquals, p)
	c.Assert(got.Authority, gc.DeepEquals, a)
}

func (s *ScorerTestSuite) TestUnreachableDomainWithoutAuthority(c *gc.C) {
	p := presence.Record{Domain: "gone.example", Error: "timeout"}
	a := authority.FromSummary("gone.example", nil)

	got := Score(p, a)
	c.Assert(got.Pillars, gc.DeepEquals, Pillars{})
	c.Assert(got.Score, gc.Equals, 0.0)
	c.Assert(got.Tier, gc.Equals, TierSkip)
	c.Assert(got.Presence.Error, gc.Equals, "timeout")
	c.Assert(got.Presence.HTTPStatus, gc.Equals, 0)
}

func (s *ScorerTestSuite) TestAuthorityPillar(c *gc.C) {
	specs := []struct {
		rank, rd, spam int
		exp            int
	}{
		{rank: 0, rd: 500, spam: 0, exp: 0},
		{rank: 80, rd: 0, spam: 0, exp: 80},
		{rank: 50, rd: 0, spam: 0, exp: 80},
		{rank: 49, rd: 0, spam: 0, exp: 60},
		{rank: 30, rd: 0, spam: 0, exp: 60},
		{rank: 20, rd: 0, spam: 0, exp: 45},
		{rank: 10, rd: 0, spam: 0, exp: 30},
		{rank: 9, rd: 0, spam: 0, exp: 15},
		{rank: 1, rd: 0, spam: 0, exp: 15},
		{rank: 90, rd: 100, spam: 0, exp: 95},
		{rank: 90, rd: 99, spam: 0, exp: 90},
		{rank: 90, rd: 50, spam: 0, exp: 90},
		{rank: 90, rd: 49, spam: 0, exp: 80},
		{rank: 90, rd: 100, spam: 30, exp: 95},
		{rank: 90, rd: 100, spam: 31, exp: 80},
		{rank: 90, rd: 100, spam: 50, exp: 80},
		{rank: 90, rd: 100, spam: 51, exp: 65},
		{rank: 5, rd: 0, spam: 100, exp: 0},
		{rank: 5, rd: 0, spam: 40, exp: 0},
	}
	for i, spec := range specs {
		c.Logf("spec %d: rank=%d rd=%d spam=%d", i, spec.rank, spec.rd, spec.spam)
		got := Score(presence.Record{}, authority.Record{Rank: spec.rank, ReferringDomains: spec.rd, SpamScore: spec.spam})
		c.Assert(got.Pillars.Authority, gc.Equals, spec.exp)
	}
}

func (s *ScorerTestSuite) TestSocialPillar(c *gc.C) {
	p := presence.Record{Flags: presence.Flags{HasFacebook: true, HasInstagram: true, HasTwitter: true, HasYouTube: true}}
	c.Assert(Score(p, authority.Record{}).Pillars.Social, gc.Equals, 100)

	p = presence.Record{Flags: presence.Flags{HasYouTube: true}}
	c.Assert(Score(p, authority.Record{}).Pillars.Social, gc.Equals, 25)
}

func (s *ScorerTestSuite) TestWebPresenceRequiresExactStatus200(c *gc.C) {
	p := presence.Record{Reachable: true, HTTPStatus: 204}
	c.Assert(Score(p, authority.Record{}).Pillars.WebPresence, gc.Equals, 40)
}

func (s *ScorerTestSuite) TestTierBoundaries(c *gc.C) {
	specs := []struct {
		score float64
		exp   Tier
	}{
		{100, TierGold},
		{75.0, TierGold},
		{74.9, TierSilver},
		{50.0, TierSilver},
		{49.9, TierBronze},
		{30.0, TierBronze},
		{29.9, TierSkip},
		{0, TierSkip},
	}
	for _, spec := range specs {
		c.Assert(TierFor(spec.score), gc.Equals, spec.exp, gc.Commentf("score %v", spec.score))
	}
}

func (s *ScorerTestSuite) TestRangesAndDeterminism(c *gc.C) {
	bools := []bool{false, true}
	for _, reach := range bools {
		for _, tls := range bools {
			for _, blog := range bools {
				for _, fb := range bools {
					for _, rank := range []int{0, 5, 25, 60} {
						for _, spam := range []int{0, 45, 100} {
							p := presence.Record{
								Reachable:  reach,
								UsesTLS:    tls,
								HTTPStatus: 200,
								Flags: presence.Flags{
									MobileFriendly: true, HasBlog: blog, HasContactForm: true,
									HasStaffPage: true, HasNewsletter: true, HasFacebook: fb,
									HasInstagram: true, HasTwitter: true, HasYouTube: true,
								},
							}
							a := authority.Record{Rank: rank, ReferringDomains: 1000, SpamScore: spam}
							first := Score(p, a)
							for _, v := range []int{first.Pillars.WebPresence, first.Pillars.Content, first.Pillars.Social, first.Pillars.Authority} {
								c.Assert(v >= 0 && v <= 100, gc.Equals, true)
							}
							c.Assert(first.Score >= 0 && first.Score <= 100, gc.Equals, true)
							c.Assert(Score(p, a), gc.DeepEquals, first)
						}
					}
				}
			}
		}
	}
}

type PolicyTestSuite struct{}

func (s *PolicyTestSuite) TestDefaultPolicyIsValid(c *gc.C) {
	c.Assert(DefaultPolicy().Validate(), gc.IsNil)
}

func (s *PolicyTestSuite) TestValidation(c *gc.C) {
	p := DefaultPolicy()
	p.Weights.Social = 25
	c.Assert(p.Validate(), gc.ErrorMatches, "(?ms).*pillar weights must sum to 100; got 105.*")

	p = DefaultPolicy()
	p.Tiers[1].MinScore = 80
	c.Assert(p.Validate(), gc.ErrorMatches, "(?ms).*tier thresholds must be strictly descending.*")

	p = DefaultPolicy()
	p.RankLadder = []Step{{Min: 10, Points: 30}, {Min: 50, Points: 80}}
	c.Assert(p.Validate(), gc.ErrorMatches, "(?ms).*rank ladder must be sorted.*")

	p = DefaultPolicy()
	p.Tiers = append(p.Tiers, TierThreshold{Tier: TierSkip, MinScore: 0})
	c.Assert(p.Validate(), gc.ErrorMatches, "(?ms).*skip tier is implicit.*")

	_, err := NewScorer(Policy{})
	c.Assert(err, gc.ErrorMatches, "(?ms)scoring policy validation failed.*")
}

func (s *PolicyTestSuite) TestCustomPolicy(c *gc.C) {
	p := DefaultPolicy()
	p.Weights = Weights{WebPresence: 100}
	scorer, err := NewScorer(p)
	c.Assert(err, gc.IsNil)

	got := scorer.Score(presence.Record{Reachable: true, HTTPStatus: 200}, authority.Record{})
	c.Assert(got.Score, gc.Equals, 60.0)
	c.Assert(got.Tier, gc.Equals, TierSilver)
}
