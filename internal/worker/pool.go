package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"mindsoothe-backend/internal/models"
	"mindsoothe-backend/internal/services"
)

const (
	maxAttempts   = 3
	recordTimeout = 5 * time.Second
)

// ErrQueueFull is returned by Record when every slot in the queue is taken.
var ErrQueueFull = errors.New("archive queue is full")

// ErrStopped is returned by Record after Stop.
var ErrStopped = errors.New("archive pool stopped")

type job struct {
	exchange *models.Exchange
	attempt  int
}

// Pool writes exchanges to the archive off the request path. It satisfies
// services.ExchangeRecorder so the chat service never waits on storage.
type Pool struct {
	archive     services.ExchangeRecorder
	queue       chan job
	workerCount int
	backoff     func(attempt int) time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewPool(archive services.ExchangeRecorder, workerCount, queueSize int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Pool{
		archive:     archive,
		queue:       make(chan job, queueSize),
		workerCount: workerCount,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		},
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Printf("Started %d archive worker goroutines", p.workerCount)
}

// Stop refuses new exchanges, lets the workers drain what is queued and
// waits for them to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// Record queues e for archiving. It never blocks.
func (p *Pool) Record(ctx context.Context, e *models.Exchange) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrStopped
	}
	select {
	case p.queue <- job{exchange: e}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for j := range p.queue {
		p.process(id, j)
	}
	log.Printf("Archive worker %d shutting down", id)
}

func (p *Pool) process(id int, j job) {
	for {
		j.attempt++

		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		err := p.archive.Record(ctx, j.exchange)
		cancel()
		if err == nil {
			return
		}

		if j.attempt >= maxAttempts {
			log.Printf("Archive worker %d: exchange for session %s failed permanently: %v", id, j.exchange.SessionKey, err)
			return
		}
		log.Printf("Archive worker %d: exchange for session %s failed (attempt %d): %v, retrying", id, j.exchange.SessionKey, j.attempt, err)
		time.Sleep(p.backoff(j.attempt))
	}
}
