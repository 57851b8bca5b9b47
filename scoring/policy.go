package scoring

import (
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// Step awards Points once a metric reaches Min.
type Step struct {
	Min    int
	Points int
}

// Weights are the pillar weights, expressed in percent.
type Weights struct {
	WebPresence int
	Content     int
	Social      int
	Authority   int
}

func (w Weights) sum() int { return w.WebPresence + w.Content + w.Social + w.Authority }

// TierThreshold assigns Tier to composite scores of at least MinScore.
type TierThreshold struct {
	Tier     Tier
	MinScore float64
}

// Policy collects every constant of the scoring model. The values returned
// by DefaultPolicy are the compatibility baseline; other values should only
// be used after a product decision.
type Policy struct {
	// Web presence pillar.
	ReachablePoints int
	TLSPoints       int
	MobilePoints    int
	StatusOKPoints  int

	// Content pillar.
	BlogPoints       int
	ContactPoints    int
	StaffPoints      int
	NewsletterPoints int

	// Social pillar.
	PointsPerNetwork int

	// Authority pillar. RankLadder is evaluated top-down and must be
	// sorted by descending Min; ranks below every step earn
	// RankFloorPoints. Only the first matching ReferringBonus is added and
	// only the first matching SpamPenalty is subtracted; a spam penalty
	// applies when the spam score is strictly greater than its Min.
	RankLadder      []Step
	RankFloorPoints int
	ReferringBonus  []Step
	SpamPenalty     []Step

	Weights Weights

	// Tiers is evaluated top-down; scores below every threshold are
	// TierSkip.
	Tiers []TierThreshold
}

// DefaultPolicy returns the documented scoring constants.
func DefaultPolicy() Policy {
	return Policy{
		ReachablePoints: 40,
		TLSPoints:       20,
		MobilePoints:    20,
		StatusOKPoints:  20,

		BlogPoints:       30,
		ContactPoints:    25,
		StaffPoints:      25,
		NewsletterPoints: 20,

		PointsPerNetwork: 25,

		RankLadder: []Step{
			{Min: 50, Points: 80},
			{Min: 30, Points: 60},
			{Min: 20, Points: 45},
			{Min: 10, Points: 30},
		},
		RankFloorPoints: 15,
		ReferringBonus: []Step{
			{Min: 100, Points: 15},
			{Min: 50, Points: 10},
		},
		SpamPenalty: []Step{
			{Min: 50, Points: 30},
			{Min: 30, Points: 15},
		},

		Weights: Weights{WebPresence: 25, Content: 25, Social: 20, Authority: 30},

		Tiers: []TierThreshold{
			{Tier: TierGold, MinScore: 75},
			{Tier: TierSilver, MinScore: 50},
			{Tier: TierBronze, MinScore: 30},
		},
	}
}

// Validate reports every inconsistency found in the policy.
func (p Policy) Validate() error {
	var err error
	if sum := p.Weights.sum(); sum != 100 {
		err = multierror.Append(err, xerrors.Errorf("pillar weights must sum to 100; got %d", sum))
	}
	for _, w := range []int{p.Weights.WebPresence, p.Weights.Content, p.Weights.Social, p.Weights.Authority} {
		if w < 0 {
			err = multierror.Append(err, xerrors.Errorf("pillar weights must not be negative"))
			break
		}
	}
	if !descending(p.RankLadder) {
		err = multierror.Append(err, xerrors.Errorf("rank ladder must be sorted by descending minimum"))
	}
	if !descending(p.ReferringBonus) {
		err = multierror.Append(err, xerrors.Errorf("referring domain bonus must be sorted by descending minimum"))
	}
	if !descending(p.SpamPenalty) {
		err = multierror.Append(err, xerrors.Errorf("spam penalty must be sorted by descending minimum"))
	}
	for i := 1; i < len(p.Tiers); i++ {
		if p.Tiers[i].MinScore >= p.Tiers[i-1].MinScore {
			err = multierror.Append(err, xerrors.Errorf("tier thresholds must be strictly descending"))
			break
		}
	}
	for _, t := range p.Tiers {
		if t.Tier == TierSkip {
			err = multierror.Append(err, xerrors.Errorf("the skip tier is implicit and must not have a threshold"))
			break
		}
	}
	return err
}

func descending(steps []Step) bool {
	for i := 1; i < len(steps); i++ {
		if steps[i].Min >= steps[i-1].Min {
			return false
		}
	}
	return true
}
