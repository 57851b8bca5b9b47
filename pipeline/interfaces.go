package pipeline

import "context"

// Payload is implemented by values that travel through a pipeline.
type Payload interface {
	// MarkAsProcessed is invoked by the pipeline once the payload has
	// either been consumed by the sink or dropped by a stage. Payloads
	// backed by an object pool use it to return themselves to the pool.
	MarkAsProcessed()
}

// Processor is implemented by types that can process Payloads as part of a
// pipeline stage.
type Processor interface {
	// Process operates on the input payload and returns the payload that
	// should be forwarded to the next stage. Returning a nil payload drops
	// the input from the rest of the pipeline.
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc is an adapter to allow the use of plain functions as Processor
// instances.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageParams encapsulates the information required for executing a pipeline
// stage.
type StageParams interface {
	// StageIndex returns the position of this stage in the pipeline.
	StageIndex() int

	// Input returns a channel for reading the input payloads for a stage.
	Input() <-chan Payload

	// Output returns a channel for writing the output payloads for a stage.
	Output() chan<- Payload

	// Error returns a channel for reporting errors encountered by a stage.
	Error() chan<- error
}

// StageRunner is implemented by types that can be strung together to form a
// multi-stage pipeline.
type StageRunner interface {
	// Run reads payloads from the stage input, processes them and writes
	// the results to the stage output. Calls to Run block until the input
	// channel is closed, the context expires or a processor fails.
	Run(context.Context, StageParams)
}

// Source is implemented by types that feed payloads into a Pipeline.
type Source interface {
	// Next advances the source. It returns false once the source is
	// exhausted or an error occurs.
	Next(context.Context) bool

	// Payload returns the payload the source is currently positioned at.
	Payload() Payload

	// Error returns the last error observed by the source.
	Error() error
}

// Sink is implemented by types that can operate as the tail of a pipeline.
type Sink interface {
	// Consume receives a payload emitted by the last pipeline stage.
	Consume(context.Context, Payload) error
}
