package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MeKo-Tech/terrainmap/internal/tile"
)

// mockGenerator simulates tile generation for testing
type mockGenerator struct {
	delay     time.Duration
	failTiles map[string]bool // tiles that should fail
	callCount atomic.Int32
}

func (m *mockGenerator) Generate(ctx context.Context, coords tile.Coords) ([]byte, error) {
	m.callCount.Add(1)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.delay):
	}

	if m.failTiles != nil && m.failTiles[coords.String()] {
		return nil, errors.New("simulated failure")
	}

	return []byte(coords.String()), nil
}

func TestPool_BasicExecution(t *testing.T) {
	gen := &mockGenerator{delay: 10 * time.Millisecond}

	pool := New(Config{
		Workers:   2,
		Generator: gen,
		Keep:      true,
	})

	tasks := Tasks([]tile.Coords{
		tile.NewCoords(2, 0, 0),
		tile.NewCoords(2, 0, 1),
		tile.NewCoords(2, 1, 0),
	})

	results := pool.Run(context.Background(), tasks)

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}

	for _, r := range results {
		if r.Err != nil {
			t.Errorf("Unexpected error for %s: %v", r.Task.Coords, r.Err)
		}
		if string(r.Data) != r.Task.Coords.String() {
			t.Errorf("Expected data %q, got %q", r.Task.Coords.String(), r.Data)
		}
	}

	if gen.callCount.Load() != int32(len(tasks)) {
		t.Errorf("Expected %d generator calls, got %d", len(tasks), gen.callCount.Load())
	}
}

func TestPool_DropsDataWithoutKeep(t *testing.T) {
	pool := New(Config{Generator: &mockGenerator{}})
	results := pool.Run(context.Background(), Tasks([]tile.Coords{tile.NewCoords(0, 0, 0)}))
	if len(results) != 1 || results[0].Data != nil {
		t.Errorf("Expected one result without data, got %+v", results)
	}
}

func TestPool_Parallelism(t *testing.T) {
	gen := &mockGenerator{delay: 50 * time.Millisecond}

	pool := New(Config{
		Workers:   4,
		Generator: gen,
	})

	tasks := Tasks(tile.Pyramid(0, 1)[:4])
	tasks = append(tasks, Tasks(tile.Pyramid(2, 2)[:4])...)

	start := time.Now()
	results := pool.Run(context.Background(), tasks)
	elapsed := time.Since(start)

	// With 4 workers and 8 tasks at 50ms each, should take ~100ms (2 batches)
	maxExpected := 200 * time.Millisecond
	if elapsed > maxExpected {
		t.Errorf("Expected parallel execution in ~100ms, took %v", elapsed)
	}

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	failTile := "z1_x0_y1"
	gen := &mockGenerator{
		delay:     10 * time.Millisecond,
		failTiles: map[string]bool{failTile: true},
	}

	pool := New(Config{
		Workers:   2,
		Generator: gen,
	})

	tasks := Tasks([]tile.Coords{
		tile.NewCoords(1, 0, 0),
		tile.NewCoords(1, 0, 1), // This one should fail
		tile.NewCoords(1, 1, 0),
	})

	results := pool.Run(context.Background(), tasks)

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}

	var successCount, failCount int
	for _, r := range results {
		if r.Err != nil {
			failCount++
			if r.Task.Coords.String() != failTile {
				t.Errorf("Unexpected failure for %s", r.Task.Coords)
			}
		} else {
			successCount++
		}
	}

	if successCount != 2 {
		t.Errorf("Expected 2 successes, got %d", successCount)
	}
	if failCount != 1 {
		t.Errorf("Expected 1 failure, got %d", failCount)
	}
}

func TestPool_OnResult(t *testing.T) {
	var written []string
	sinkErr := errors.New("disk full")

	pool := New(Config{
		Workers:   3,
		Generator: &mockGenerator{delay: time.Millisecond},
		OnResult: func(r Result) error {
			if r.Task.Coords.X == 1 && r.Task.Coords.Y == 1 {
				return sinkErr
			}
			written = append(written, string(r.Data))
			return nil
		},
	})

	results := pool.Run(context.Background(), Tasks(tile.Pyramid(1, 1)))

	if len(written) != 3 {
		t.Errorf("Expected 3 tiles written, got %d (%v)", len(written), written)
	}
	var failed int
	for _, r := range results {
		if errors.Is(r.Err, sinkErr) {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("Expected the sink error on one result, got %d", failed)
	}
}

func TestPool_Cancellation(t *testing.T) {
	gen := &mockGenerator{delay: 100 * time.Millisecond}

	pool := New(Config{
		Workers:   2,
		Generator: gen,
	})

	tasks := Tasks(tile.Pyramid(0, 2)[:10])

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	results := pool.Run(ctx, tasks)
	elapsed := time.Since(start)

	if elapsed > 200*time.Millisecond {
		t.Errorf("Expected early cancellation, took %v", elapsed)
	}

	var cancelledCount int
	for _, r := range results {
		if r.Err != nil && errors.Is(r.Err, context.Canceled) {
			cancelledCount++
		}
	}
	if cancelledCount == 0 {
		t.Error("Expected at least one cancelled result")
	}

	t.Logf("Completed with %d results (%d cancelled) in %v", len(results), cancelledCount, elapsed)
}

func TestPool_ProgressCallback(t *testing.T) {
	gen := &mockGenerator{delay: 10 * time.Millisecond}

	var progressCalls atomic.Int32
	var lastCompleted, lastTotal int

	pool := New(Config{
		Workers:   2,
		Generator: gen,
		OnProgress: func(completed, total, failed int) {
			progressCalls.Add(1)
			lastCompleted = completed
			lastTotal = total
		},
	})

	tasks := Tasks(tile.Pyramid(1, 1)[:3])

	pool.Run(context.Background(), tasks)

	if progressCalls.Load() == 0 {
		t.Error("Expected progress callbacks, got none")
	}

	if lastCompleted != len(tasks) {
		t.Errorf("Expected lastCompleted=%d, got %d", len(tasks), lastCompleted)
	}
	if lastTotal != len(tasks) {
		t.Errorf("Expected lastTotal=%d, got %d", len(tasks), lastTotal)
	}
}

func TestPool_EmptyTasks(t *testing.T) {
	gen := &mockGenerator{}

	pool := New(Config{
		Workers:   2,
		Generator: gen,
	})

	results := pool.Run(context.Background(), nil)

	if len(results) != 0 {
		t.Errorf("Expected 0 results for empty tasks, got %d", len(results))
	}

	if gen.callCount.Load() != 0 {
		t.Errorf("Expected 0 generator calls for empty tasks, got %d", gen.callCount.Load())
	}
}

func TestGeneratorFunc(t *testing.T) {
	var g Generator = GeneratorFunc(func(_ context.Context, c tile.Coords) ([]byte, error) {
		return []byte{byte(c.Z)}, nil
	})
	data, err := g.Generate(context.Background(), tile.NewCoords(7, 0, 0))
	if err != nil || len(data) != 1 || data[0] != 7 {
		t.Errorf("GeneratorFunc returned %v, %v", data, err)
	}
}
