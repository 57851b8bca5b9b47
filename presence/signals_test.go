package presence_test

import (
	"github.com/outreachkit/bvscore/presence"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(SignalsTestSuite))

type SignalsTestSuite struct{}

func (s *SignalsTestSuite) TestDetect(c *gc.C) {
	specs := []struct {
		descr string
		text  string
		exp   presence.Flags
	}{
		{
			descr: "empty page",
			exp:   presence.Flags{},
		},
		{
			descr: "viewport meta tag",
			text:  `<meta name="viewport" content="width=device-width">`,
			exp:   presence.Flags{MobileFriendly: true},
		},
		{
			descr: "mixed case matches",
			text:  `<A HREF="/Blog/latest">Read our BLOG</A><a href="/Contact">Contact Us</a>`,
			exp:   presence.Flags{HasBlog: true, HasContactForm: true},
		},
		{
			descr: "staff and newsletter",
			text:  `<a href="/our-team">Meet the team</a><form>Subscribe to our newsletter</form>`,
			exp:   presence.Flags{HasStaffPage: true, HasNewsletter: true},
		},
		{
			descr: "social links",
			text: `<a href="https://facebook.com/acme">fb</a>
			       <a href="https://www.instagram.com/acme">ig</a>
			       <a href="https://twitter.com/acme">tw</a>
			       <a href="https://youtube.com/@acme">yt</a>`,
			exp: presence.Flags{HasFacebook: true, HasInstagram: true, HasTwitter: true, HasYouTube: true},
		},
		{
			descr: "x.com counts as twitter",
			text:  `<a href="https://x.com/acme">follow</a>`,
			exp:   presence.Flags{HasTwitter: true},
		},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		c.Assert(presence.Detect(spec.text), gc.DeepEquals, spec.exp)
	}
}

func (s *SignalsTestSuite) TestSocialCount(c *gc.C) {
	c.Assert(presence.Flags{}.SocialCount(), gc.Equals, 0)
	c.Assert(presence.Flags{HasFacebook: true, HasYouTube: true}.SocialCount(), gc.Equals, 2)
	c.Assert(presence.Flags{HasFacebook: true, HasInstagram: true, HasTwitter: true, HasYouTube: true}.SocialCount(), gc.Equals, 4)
}

func (s *SignalsTestSuite) TestDetectWithCustomVocabulary(c *gc.C) {
	signals := []presence.Signal{
		{
			Name:  "has_blog",
			Match: presence.ContainsAny("journal"),
			Set:   func(f *presence.Flags) { f.HasBlog = true },
		},
	}

	c.Assert(presence.DetectWith(signals, "Our JOURNAL"), gc.DeepEquals, presence.Flags{HasBlog: true})
	c.Assert(presence.DetectWith(signals, `<a href="/blog">blog</a>`), gc.DeepEquals, presence.Flags{})
}
