package filter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/s0up4200/meetbot/meetbot"
)

func makeSegments(n int) []meetbot.TranscriptSegment {
	segments := make([]meetbot.TranscriptSegment, n)
	for i := range segments {
		speaker := "Alice"
		if i%3 == 0 {
			speaker = "Bob"
		}
		segments[i] = meetbot.TranscriptSegment{
			ID:      fmt.Sprintf("s%d", i),
			Speaker: speaker,
			StartMs: int64(i * 1000),
			EndMs:   int64(i*1000 + 500),
			Text:    fmt.Sprintf("line %d", i),
		}
	}
	return segments
}

func TestSelect(t *testing.T) {
	f, err := NewCompiler().Compile(`spokenBy("bob")`)
	if err != nil {
		t.Fatal(err)
	}

	for _, size := range []int{0, 10, 1000} {
		t.Run(fmt.Sprintf("%d records", size), func(t *testing.T) {
			segments := makeSegments(size)
			evaluator := NewEvaluator(WithWorkers(4), WithBatchSize(50))

			matches, err := Select(context.Background(), evaluator, f, segments, SegmentEnv)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := (size + 2) / 3
			if len(matches) != want {
				t.Fatalf("got %d matches, want %d", len(matches), want)
			}
			for i, m := range matches {
				if m.ID != fmt.Sprintf("s%d", i*3) {
					t.Fatalf("match %d = %s, order not preserved", i, m.ID)
				}
			}
		})
	}
}

func TestSelectStopsOnError(t *testing.T) {
	f, err := NewCompiler().Compile(`startMs % 0 == 0`)
	if err != nil {
		t.Fatal(err)
	}

	_, err = Select(context.Background(), NewEvaluator(WithBatchSize(10)), f, makeSegments(100), SegmentEnv)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvaluationError, got %v", err)
	}
}

func TestSelectCancelled(t *testing.T) {
	f, err := NewCompiler().Compile(`true`)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Select(ctx, NewEvaluator(), f, makeSegments(5), SegmentEnv)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func BenchmarkSelect(b *testing.B) {
	f, err := NewCompiler().Compile(`spokenBy("alice") and durationMs > 100`)
	if err != nil {
		b.Fatal(err)
	}
	segments := makeSegments(10000)
	evaluator := NewEvaluator()

	b.ResetTimer()
	for b.Loop() {
		if _, err := Select(context.Background(), evaluator, f, segments, SegmentEnv); err != nil {
			b.Fatal(err)
		}
	}
}
