package presence

// Flags are the heuristic signals extracted from a fetched page.
type Flags struct {
	MobileFriendly bool

	HasBlog        bool
	HasContactForm bool
	HasStaffPage   bool
	HasNewsletter  bool

	HasFacebook  bool
	HasInstagram bool
	HasTwitter   bool
	HasYouTube   bool
}

// SocialCount returns the number of social networks the page links to.
func (f Flags) SocialCount() int {
	n := 0
	for _, set := range []bool{f.HasFacebook, f.HasInstagram, f.HasTwitter, f.HasYouTube} {
		if set {
			n++
		}
	}
	return n
}

// Record captures what probing a single domain revealed. Records are built
// once by the Prober and never modified afterwards.
type Record struct {
	Domain string

	// Reachable is set when either the HTTPS or the HTTP attempt returned a
	// status below 400.
	Reachable bool

	// UsesTLS reports whether the final URL, after redirects, used https.
	UsesTLS bool

	// HTTPStatus is the last status code observed; 0 if no response was
	// ever received.
	HTTPStatus int

	Flags

	// Error holds a short failure category when no attempt succeeded.
	Error string
}

// Unprobed returns the record used when probing is skipped for domain.
func Unprobed(domain string) Record {
	return Record{Domain: domain}
}
