// Package worker renders tiles in parallel with a bounded pool.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/MeKo-Tech/terrainmap/internal/tile"
)

// Generator renders one tile to encoded bytes.
type Generator interface {
	Generate(ctx context.Context, coords tile.Coords) ([]byte, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, coords tile.Coords) ([]byte, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, coords tile.Coords) ([]byte, error) {
	return f(ctx, coords)
}

// Task represents a single tile generation task.
type Task struct {
	Coords tile.Coords
}

// Result represents the outcome of a tile generation task.
type Result struct {
	Task    Task
	Data    []byte
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// ResultFunc receives every result on the collecting goroutine, one at a
// time, so it may write to a non-concurrent sink. A returned error is stored
// on the result and counted as a failure.
type ResultFunc func(Result) error

// Config configures the worker pool.
type Config struct {
	Workers    int
	Generator  Generator
	OnProgress ProgressFunc
	OnResult   ResultFunc
	// Keep retains tile bytes in the returned results. Without it only
	// OnResult sees the data.
	Keep bool
}

// Pool manages parallel tile generation.
type Pool struct {
	workers    int
	generator  Generator
	onProgress ProgressFunc
	onResult   ResultFunc
	keep       bool
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		generator:  cfg.Generator,
		onProgress: cfg.OnProgress,
		onResult:   cfg.OnResult,
		keep:       cfg.Keep,
	}
}

// Run executes all tasks and returns their results in completion order.
// It blocks until every dispatched task has a result. After cancellation,
// queued tasks report the context error and undispatched tasks are omitted.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		defer close(done)
		completed, failed := 0, 0
		for result := range resultCh {
			if result.Err == nil && p.onResult != nil {
				result.Err = p.onResult(result)
			}
			if !p.keep {
				result.Data = nil
			}
			results = append(results, result)

			completed++
			if result.Err != nil {
				failed++
			}
			if p.onProgress != nil {
				p.onProgress(completed, len(tasks), failed)
			}
		}
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

// worker processes tasks from the task channel and sends results to the result channel.
func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		if err := ctx.Err(); err != nil {
			results <- Result{Task: task, Err: err}
			continue
		}

		start := time.Now()
		data, err := p.generator.Generate(ctx, task.Coords)
		results <- Result{
			Task:    task,
			Data:    data,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}

// Tasks wraps tile coordinates into tasks.
func Tasks(coords []tile.Coords) []Task {
	tasks := make([]Task, len(coords))
	for i, c := range coords {
		tasks[i] = Task{Coords: c}
	}
	return tasks
}
