package presence

import (
	"context"
	"sync"

	"github.com/outreachkit/bvscore/pipeline"
	"github.com/sirupsen/logrus"
)

const progressEvery = 10

var (
	_ pipeline.Payload = (*probePayload)(nil)

	payloadPool = sync.Pool{
		New: func() interface{} { return new(probePayload) },
	}
)

type probePayload struct {
	index  int
	domain string
	record Record
}

// MarkAsProcessed implements pipeline.Payload.
func (p *probePayload) MarkAsProcessed() {
	p.domain = p.domain[:0]
	p.record = Record{}
	payloadPool.Put(p)
}

// Probe probes every domain while keeping at most Config.Concurrency probes
// in flight. The returned slice always has one record per input domain, in
// input order. Domains that were never probed because ctx was cancelled are
// reported with the canceled error category.
func (p *Prober) Probe(ctx context.Context, domains []string) []Record {
	records := make([]Record, len(domains))
	done := make([]bool, len(domains))

	pipe := pipeline.New(
		pipeline.DynamicWorkerPool(
			pipeline.ProcessorFunc(func(ctx context.Context, in pipeline.Payload) (pipeline.Payload, error) {
				payload := in.(*probePayload)
				payload.record = p.ProbeDomain(ctx, payload.domain)
				return payload, nil
			}),
			p.cfg.Concurrency,
		),
	)

	sink := &recordSink{
		records: records,
		done:    done,
		total:   len(domains),
		logger:  p.cfg.Logger,
	}
	if err := pipe.Process(ctx, &domainSource{domains: domains}, sink); err != nil {
		p.cfg.Logger.WithField("err", err).Warn("presence probing aborted")
	}

	for i, ok := range done {
		if !ok {
			records[i] = Record{Domain: domains[i], Error: ErrCanceled}
		}
	}
	return records
}

type domainSource struct {
	domains []string
	next    int
	cur     *probePayload
}

func (s *domainSource) Next(context.Context) bool {
	if s.next >= len(s.domains) {
		return false
	}
	s.cur = payloadPool.Get().(*probePayload)
	s.cur.index = s.next
	s.cur.domain = s.domains[s.next]
	s.next++
	return true
}

func (s *domainSource) Payload() pipeline.Payload { return s.cur }
func (s *domainSource) Error() error              { return nil }

type recordSink struct {
	records []Record
	done    []bool
	total   int
	count   int
	logger  *logrus.Entry
}

// Consume is only ever invoked from the single sink go-routine, so the
// slots can be written without locking.
func (s *recordSink) Consume(_ context.Context, in pipeline.Payload) error {
	payload := in.(*probePayload)
	s.records[payload.index] = payload.record
	s.done[payload.index] = true

	s.count++
	if s.count%progressEvery == 0 || s.count == s.total {
		s.logger.WithFields(logrus.Fields{
			"probed": s.count,
			"total":  s.total,
		}).Info("presence probing progress")
	}
	return nil
}
