package pipeline_test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/outreachkit/bvscore/pipeline"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(StageTestSuite))

type StageTestSuite struct{}

func (s *StageTestSuite) TestFIFOPreservesOrder(c *gc.C) {
	src := &sourceStub{data: domainPayloads(10)}
	sink := new(sinkStub)

	err := pipeline.New(pipeline.FIFO(makePassthroughProcessor())).Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	c.Assert(sink.data, gc.DeepEquals, src.data)
}

func (s *StageTestSuite) TestDynamicWorkerPoolScalesToMax(c *gc.C) {
	numWorkers := 5
	syncCh := make(chan struct{}, numWorkers)
	rendezvousCh := make(chan struct{})

	proc := pipeline.ProcessorFunc(func(_ context.Context, _ pipeline.Payload) (pipeline.Payload, error) {
		syncCh <- struct{}{}
		<-rendezvousCh
		return nil, nil
	})

	src := &sourceStub{data: domainPayloads(numWorkers * 2)}
	doneCh := make(chan error, 1)
	go func() {
		doneCh <- pipeline.New(pipeline.DynamicWorkerPool(proc, numWorkers)).Process(context.TODO(), src, new(sinkStub))
	}()

	// All workers reaching the sync point means the pool scaled up.
	for i := 0; i < numWorkers; i++ {
		select {
		case <-syncCh:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out waiting for worker %d to reach sync point", i)
		}
	}

	close(rendezvousCh)
	select {
	case err := <-doneCh:
		c.Assert(err, gc.IsNil)
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for pipeline to complete")
	}
	assertAllProcessed(c, src.data)
}

func (s *StageTestSuite) TestDynamicWorkerPoolNeverExceedsMax(c *gc.C) {
	var inFlight, peak int32
	proc := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return p, nil
	})

	src := &sourceStub{data: domainPayloads(50)}
	sink := new(sinkStub)
	err := pipeline.New(pipeline.DynamicWorkerPool(proc, 5)).Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	c.Assert(sink.data, gc.HasLen, 50)
	c.Assert(atomic.LoadInt32(&peak) <= 5, gc.Equals, true, gc.Commentf("peak concurrency %d", peak))
}

func (s *StageTestSuite) TestDynamicWorkerPoolStopsOnCancel(c *gc.C) {
	ctx, cancelFn := context.WithCancel(context.TODO())
	started := make(chan struct{}, 1)
	proc := pipeline.ProcessorFunc(func(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil, nil
	})

	src := &sourceStub{data: domainPayloads(20)}
	doneCh := make(chan error, 1)
	go func() {
		doneCh <- pipeline.New(pipeline.DynamicWorkerPool(proc, 2)).Process(ctx, src, new(sinkStub))
	}()

	<-started
	cancelFn()
	select {
	case err := <-doneCh:
		c.Assert(err, gc.IsNil)
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for pipeline to stop")
	}
	c.Assert(src.index < 20, gc.Equals, true, gc.Commentf("source should not be drained after cancellation"))
}
