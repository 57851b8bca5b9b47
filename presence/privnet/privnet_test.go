package privnet_test

import (
	"context"
	"net"
	"testing"

	"github.com/outreachkit/bvscore/presence/privnet"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(DetectorTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type DetectorTestSuite struct{}

func (s *DetectorTestSuite) TestIPLiterals(c *gc.C) {
	det, err := privnet.NewDetector()
	c.Assert(err, gc.IsNil)

	specs := []struct {
		host string
		exp  bool
	}{
		{"127.0.0.1", true},
		{"127.0.0.1:8443", true},
		{"10.1.2.3", true},
		{"172.20.0.1", true},
		{"192.168.1.1", true},
		{"169.254.169.254", true},
		{"::1", true},
		{"[fe80::1]:80", true},
		{"8.8.8.8", false},
		{"93.184.216.34:443", false},
		{"2001:4860:4860::8888", false},
	}
	for _, spec := range specs {
		got, err := det.IsPrivate(context.TODO(), spec.host)
		c.Assert(err, gc.IsNil, gc.Commentf("host %q", spec.host))
		c.Assert(got, gc.Equals, spec.exp, gc.Commentf("host %q", spec.host))
	}
}

func (s *DetectorTestSuite) TestResolvedNames(c *gc.C) {
	res := resolverStub{
		"intranet.example": {{IP: net.ParseIP("93.184.216.34")}, {IP: net.ParseIP("10.0.0.7")}},
		"public.example":   {{IP: net.ParseIP("93.184.216.34")}},
	}
	det, err := privnet.NewDetectorFromCIDRs(res, "10.0.0.0/8")
	c.Assert(err, gc.IsNil)

	got, err := det.IsPrivate(context.TODO(), "intranet.example")
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.Equals, true, gc.Commentf("any private address marks the host private"))

	got, err = det.IsPrivate(context.TODO(), "public.example")
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.Equals, false)

	_, err = det.IsPrivate(context.TODO(), "nxdomain.example")
	c.Assert(err, gc.ErrorMatches, `privnet: resolve "nxdomain.example": no such host`)
}

func (s *DetectorTestSuite) TestInvalidCIDR(c *gc.C) {
	_, err := privnet.NewDetectorFromCIDRs(resolverStub{}, "10.0.0.0/99")
	c.Assert(err, gc.ErrorMatches, `privnet: invalid CIDR "10.0.0.0/99".*`)
}

type resolverStub map[string][]net.IPAddr

func (r resolverStub) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	addrs, ok := r[host]
	if !ok {
		return nil, xerrors.New("no such host")
	}
	return addrs, nil
}
