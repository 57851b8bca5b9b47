package authority

// Record holds the link-based authority metrics of a domain. A record with a
// zero Rank carries no authority signal.
type Record struct {
	Domain string

	// Rank is the provider's authority rank; 0 means unknown.
	Rank int

	ReferringDomains int
	Backlinks        int

	// SpamScore ranges from 0 to 100.
	SpamScore int
}

// Summary is the raw, partially populated answer of a Provider. Nil fields
// were absent from the provider response.
type Summary struct {
	Rank             *int
	ReferringDomains *int
	Backlinks        *int
	SpamScore        *int
}

// UnknownSpamScore is assumed when a provider answered without a spam score.
const UnknownSpamScore = 100

// FromSummary converts a provider answer into a Record. All defaulting
// happens here: a nil summary yields an all-zero record (no data), a missing
// spam score on an otherwise present summary yields UnknownSpamScore and
// values outside their domain are clamped.
func FromSummary(domain string, s *Summary) Record {
	rec := Record{Domain: domain}
	if s == nil {
		return rec
	}

	rec.Rank = nonNegative(s.Rank)
	rec.ReferringDomains = nonNegative(s.ReferringDomains)
	rec.Backlinks = nonNegative(s.Backlinks)
	rec.SpamScore = UnknownSpamScore
	if s.SpamScore != nil {
		rec.SpamScore = clamp(*s.SpamScore, 0, 100)
	}
	return rec
}

func nonNegative(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
