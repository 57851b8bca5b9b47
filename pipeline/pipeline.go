package pipeline

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

var _ StageParams = (*workerParams)(nil)

type workerParams struct {
	stage int

	inCh  <-chan Payload
	outCh chan<- Payload
	errCh chan<- error
}

func (p *workerParams) StageIndex() int        { return p.stage }
func (p *workerParams) Input() <-chan Payload  { return p.inCh }
func (p *workerParams) Output() chan<- Payload { return p.outCh }
func (p *workerParams) Error() chan<- error    { return p.errCh }

// Pipeline wires a source, zero or more stages and a sink together.
type Pipeline struct {
	stages []StageRunner
}

// New returns a pipeline whose payloads traverse the given stages in order.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process drains source through the pipeline stages into sink. It blocks
// until the source is exhausted and every in-flight payload has reached the
// sink, an error occurs or ctx is cancelled. Errors reported by the source,
// the stages or the sink are accumulated into a multi-error.
//
// Process may be called concurrently with different sources and sinks.
func (p *Pipeline) Process(ctx context.Context, source Source, sink Sink) error {
	var wg sync.WaitGroup
	pCtx, cancelFn := context.WithCancel(ctx)

	// stageCh[i] feeds stage i; the extra channel connects the last stage
	// to the sink.
	stageCh := make([]chan Payload, len(p.stages)+1)
	errCh := make(chan error, len(p.stages)+2)
	for i := range stageCh {
		stageCh[i] = make(chan Payload)
	}

	for i := range p.stages {
		wg.Add(1)
		go func(stageIndex int) {
			defer wg.Done()
			p.stages[stageIndex].Run(pCtx, &workerParams{
				stage: stageIndex,
				inCh:  stageCh[stageIndex],
				outCh: stageCh[stageIndex+1],
				errCh: errCh,
			})
			close(stageCh[stageIndex+1])
		}(i)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		sourceWorker(pCtx, source, stageCh[0], errCh)
		close(stageCh[0])
	}()
	go func() {
		defer wg.Done()
		sinkWorker(pCtx, sink, stageCh[len(stageCh)-1], errCh)
	}()

	go func() {
		wg.Wait()
		close(errCh)
		cancelFn()
	}()

	var err error
	for pErr := range errCh {
		err = multierror.Append(err, pErr)
		cancelFn()
	}
	return err
}

// sourceWorker pushes the payloads produced by source into the first stage.
func sourceWorker(ctx context.Context, source Source, outCh chan<- Payload, errCh chan<- error) {
	for source.Next(ctx) {
		payload := source.Payload()
		select {
		case outCh <- payload:
		case <-ctx.Done():
			payload.MarkAsProcessed()
			return
		}
	}

	if err := source.Error(); err != nil {
		maybeEmitError(xerrors.Errorf("pipeline source: %w", err), errCh)
	}
}

// sinkWorker hands the output of the last stage over to sink.
func sinkWorker(ctx context.Context, sink Sink, inCh <-chan Payload, errCh chan<- error) {
	for {
		select {
		case payload, ok := <-inCh:
			if !ok {
				return
			}
			if err := sink.Consume(ctx, payload); err != nil {
				maybeEmitError(xerrors.Errorf("pipeline sink: %w", err), errCh)
				return
			}
			payload.MarkAsProcessed()
		case <-ctx.Done():
			return
		}
	}
}

// maybeEmitError queues err unless the error channel is already full.
func maybeEmitError(err error, errCh chan<- error) {
	select {
	case errCh <- err:
	default:
	}
}
