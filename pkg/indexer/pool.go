package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/shelf/pkg/catalog"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// JobKind names the mutation a Job mirrors.
type JobKind string

const (
	JobProductSaved   JobKind = "product_saved"
	JobProductDeleted JobKind = "product_deleted"
	JobOrderPlaced    JobKind = "order_placed"
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Kind      JobKind
	Product   *catalog.Product
	ProductID int64
	Order     *catalog.Order
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Syncer performs the vector store writes.
	Syncer *Syncer

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger
}

// Pool processes sync jobs asynchronously so request handlers return as soon
// as the relational write commits.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Syncer == nil {
		return nil, errors.New("syncer is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger.With("component", "indexer_pool"),
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued", "kind", job.Kind)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped", "kind", job.Kind)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// ProductSaved queues a snapshot of p so later changes by the caller do not
// leak into the indexed document.
func (p *Pool) ProductSaved(_ context.Context, product *catalog.Product) {
	snapshot := *product
	p.Enqueue(Job{Kind: JobProductSaved, Product: &snapshot})
}

func (p *Pool) ProductDeleted(_ context.Context, id int64) {
	p.Enqueue(Job{Kind: JobProductDeleted, ProductID: id})
}

func (p *Pool) OrderPlaced(_ context.Context, o *catalog.Order) {
	snapshot := *o
	snapshot.Items = append([]catalog.OrderItem(nil), o.Items...)
	p.Enqueue(Job{Kind: JobOrderPlaced, Order: &snapshot})
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("indexer worker stopped", "worker_id", id)
}

// processJob runs the job on a background context; the request that
// produced it has usually completed by now.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()
	syncer := p.config.Syncer

	switch job.Kind {
	case JobProductSaved:
		syncer.ProductSaved(ctx, job.Product)
	case JobProductDeleted:
		syncer.ProductDeleted(ctx, job.ProductID)
	case JobOrderPlaced:
		syncer.OrderPlaced(ctx, job.Order)
	default:
		p.logger.Warn("unknown job kind", "kind", job.Kind)
	}
}

var _ Indexer = (*Pool)(nil)
