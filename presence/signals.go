package presence

import "strings"

// Predicate reports whether lower-cased page text carries a signal.
type Predicate func(lowerText string) bool

// ContainsAny returns a Predicate that matches when the text contains at
// least one of the needles. Needles must be lower-case.
func ContainsAny(needles ...string) Predicate {
	return func(lowerText string) bool {
		for _, n := range needles {
			if strings.Contains(lowerText, n) {
				return true
			}
		}
		return false
	}
}

// Signal binds a named Predicate to the flag it raises.
type Signal struct {
	Name  string
	Match Predicate
	Set   func(*Flags)
}

// Signals is the default signal vocabulary. Matching is intentionally
// coarse: a hit means the page showed evidence of the feature, not that the
// feature was verified.
var Signals = []Signal{
	{
		Name:  "mobile_friendly",
		Match: ContainsAny("viewport"),
		Set:   func(f *Flags) { f.MobileFriendly = true },
	},
	{
		Name:  "has_blog",
		Match: ContainsAny("/blog", "/news", "/articles", "/posts", "blog."),
		Set:   func(f *Flags) { f.HasBlog = true },
	},
	{
		Name:  "has_contact_form",
		Match: ContainsAny("contact", "contact-us", "get in touch", "reach us"),
		Set:   func(f *Flags) { f.HasContactForm = true },
	},
	{
		Name:  "has_staff_page",
		Match: ContainsAny("staff", "team", "pastor", "leadership", "about-us", "meet"),
		Set:   func(f *Flags) { f.HasStaffPage = true },
	},
	{
		Name:  "has_newsletter",
		Match: ContainsAny("newsletter", "subscribe", "mailing list", "email list"),
		Set:   func(f *Flags) { f.HasNewsletter = true },
	},
	{
		Name:  "has_facebook",
		Match: ContainsAny("facebook.com"),
		Set:   func(f *Flags) { f.HasFacebook = true },
	},
	{
		Name:  "has_instagram",
		Match: ContainsAny("instagram.com"),
		Set:   func(f *Flags) { f.HasInstagram = true },
	},
	{
		Name:  "has_twitter",
		Match: ContainsAny("twitter.com", "x.com"),
		Set:   func(f *Flags) { f.HasTwitter = true },
	},
	{
		Name:  "has_youtube",
		Match: ContainsAny("youtube.com"),
		Set:   func(f *Flags) { f.HasYouTube = true },
	},
}

// Detect evaluates the default Signals against page text.
func Detect(text string) Flags {
	return DetectWith(Signals, text)
}

// DetectWith evaluates signals against page text; matching is
// case-insensitive.
func DetectWith(signals []Signal, text string) Flags {
	var (
		f     Flags
		lower = strings.ToLower(text)
	)
	for _, s := range signals {
		if s.Match(lower) {
			s.Set(&f)
		}
	}
	return f
}
