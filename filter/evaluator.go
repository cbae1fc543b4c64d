package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the record count below which evaluation stays sequential
const DefaultBatchSize = 100

// EvaluatorOption configures an Evaluator
type EvaluatorOption func(*Evaluator)

// WithWorkers sets the number of concurrent chunk evaluations
func WithWorkers(workers int) EvaluatorOption {
	return func(e *Evaluator) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithBatchSize sets the minimum chunk size
func WithBatchSize(size int) EvaluatorOption {
	return func(e *Evaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// Evaluator applies a filter to record lists, in chunks for large inputs
type Evaluator struct {
	workers   int
	batchSize int
}

// NewEvaluator creates an evaluator sized to GOMAXPROCS
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		workers:   runtime.GOMAXPROCS(0),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select returns the records matching f, in input order. The first
// evaluation error aborts the selection.
func Select[T any](ctx context.Context, e *Evaluator, f *Filter, records []T, env func(T) Env) ([]T, error) {
	if len(records) == 0 {
		return []T{}, nil
	}

	if len(records) < e.batchSize {
		return selectChunk(ctx, f, records, env)
	}

	chunkSize := max(len(records)/e.workers, e.batchSize)
	chunks := make([][]T, (len(records)+chunkSize-1)/chunkSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for index := range chunks {
		start := index * chunkSize
		chunk := records[start:min(start+chunkSize, len(records))]

		g.Go(func() error {
			matches, err := selectChunk(ctx, f, chunk, env)
			if err != nil {
				return err
			}
			chunks[index] = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	matches := make([]T, 0, total)
	for _, chunk := range chunks {
		matches = append(matches, chunk...)
	}
	return matches, nil
}

func selectChunk[T any](ctx context.Context, f *Filter, records []T, env func(T) Env) ([]T, error) {
	matches := make([]T, 0, len(records)/4)
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := f.Match(env(record))
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, record)
		}
	}
	return matches, nil
}
