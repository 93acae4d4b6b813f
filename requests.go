package main

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrQueueFull     = errors.New("path request queue is full")
	ErrManagerClosed = errors.New("path request manager is closed")
	ErrNoGrid        = errors.New("navigation grid not built")
)

// PathRequest asks for a path between two world points. Callback is invoked
// exactly once, from a worker goroutine.
type PathRequest struct {
	Start    Point
	End      Point
	Callback func(PathResult, error)
}

// RequestManager queues path requests and runs them on a fixed pool of
// workers. The pathfinder is looked up per request so the grid can be swapped
// while requests are in flight.
type RequestManager struct {
	pathfinder func() *Pathfinder
	queue      chan PathRequest
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewRequestManager starts workers goroutines draining a queue of queueSize requests
func NewRequestManager(pathfinder func() *Pathfinder, workers, queueSize int) *RequestManager {
	if workers <= 0 {
		workers = 1
	}
	m := &RequestManager{
		pathfinder: pathfinder,
		queue:      make(chan PathRequest, queueSize),
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

func (m *RequestManager) worker() {
	defer m.wg.Done()
	for req := range m.queue {
		queueDepth.Set(float64(len(m.queue)))
		m.process(req)
	}
}

func (m *RequestManager) process(req PathRequest) {
	pf := m.pathfinder()
	if pf == nil {
		recordSearch(PathResult{}, ErrNoGrid, 0)
		req.Callback(PathResult{Waypoints: []Point{}}, ErrNoGrid)
		return
	}

	startedAt := time.Now()
	result, err := pf.FindPath(req.Start, req.End)
	recordSearch(result, err, time.Since(startedAt))
	req.Callback(result, err)
}

// Submit enqueues a request without blocking
func (m *RequestManager) Submit(req PathRequest) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrManagerClosed
	}

	select {
	case m.queue <- req:
		queueDepth.Set(float64(len(m.queue)))
		return nil
	default:
		recordRejected()
		return ErrQueueFull
	}
}

// Request submits a path request and waits for its result or ctx. A request
// abandoned by ctx still runs to completion on its worker.
func (m *RequestManager) Request(ctx context.Context, start, end Point) (PathResult, error) {
	done := make(chan PathOutcome, 1)
	err := m.Submit(PathRequest{
		Start: start,
		End:   end,
		Callback: func(result PathResult, err error) {
			done <- PathOutcome{Result: result, Err: err}
		},
	})
	if err != nil {
		return PathResult{}, err
	}

	select {
	case outcome := <-done:
		return outcome.Result, outcome.Err
	case <-ctx.Done():
		return PathResult{}, ctx.Err()
	}
}

// Close stops accepting requests and waits for queued ones to finish
func (m *RequestManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	m.wg.Wait()
}
