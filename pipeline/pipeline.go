// Package pipeline batches exported products into output writers.
package pipeline

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"

	"github.com/aluiziolira/cosmetics-storefront/config"
	"github.com/aluiziolira/cosmetics-storefront/models"
	"github.com/aluiziolira/cosmetics-storefront/parser"
)

var (
	// ErrPipelineClosed is returned when Process is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
	// ErrPipelineCloseTimeout is returned when workers do not drain in time.
	ErrPipelineCloseTimeout = errors.New("pipeline: timed out draining workers")
)

// drainTimeout bounds how long Close waits for workers.
var drainTimeout = 30 * time.Second

// OutputWriter receives validated products in batches.
type OutputWriter interface {
	Write(products []*models.Product) error
	Close() error
	Validate() error
}

// Stats counts what the pipeline did with the products it was given.
type Stats struct {
	Written int64
	// Skipped counts invalid products by the field that failed validation.
	Skipped map[string]int
}

// Pipeline validates products and writes them in batches. Products are
// never de-duplicated: the catalog may legitimately list the same item on
// more than one page.
type Pipeline struct {
	ctx       context.Context
	writer    OutputWriter
	batchSize int

	// inputMu is held for reading while sending on input and for writing
	// when input is closed, so a send never races the close.
	inputMu     sync.RWMutex
	input       chan *models.Product
	inputClosed bool

	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup

	written   atomic.Int64
	skippedMu sync.Mutex
	skipped   map[string]int

	errMu sync.Mutex
	err   error
}

// NewPipeline builds a pipeline sized from cfg. Cancelling ctx stops
// accepting new products.
func NewPipeline(ctx context.Context, writer OutputWriter, cfg *config.Config) *Pipeline {
	batchSize, buffer := 64, 512
	if cfg != nil {
		if cfg.BatchSize > 0 {
			batchSize = cfg.BatchSize
		}
		if cfg.PipelineBufferSize > 0 {
			buffer = cfg.PipelineBufferSize
		}
	}
	return &Pipeline{
		ctx:       ctx,
		writer:    writer,
		batchSize: batchSize,
		input:     make(chan *models.Product, buffer),
		done:      make(chan struct{}),
		skipped:   make(map[string]int),
	}
}

// Start launches worker goroutines. It does nothing once the pipeline is closed.
func (p *Pipeline) Start(workers int) {
	if p.isDone() {
		return
	}
	for i := 0; i < max(workers, 1); i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Process hands products to the workers, blocking while the buffer is full.
// Nil entries are ignored.
func (p *Pipeline) Process(products ...*models.Product) error {
	if err := p.Err(); err != nil {
		return err
	}
	if p.isDone() {
		return ErrPipelineClosed
	}
	if err := p.ctx.Err(); err != nil {
		return err
	}

	p.inputMu.RLock()
	defer p.inputMu.RUnlock()
	if p.inputClosed {
		return ErrPipelineClosed
	}
	for _, product := range products {
		if product == nil {
			continue
		}
		select {
		case <-p.done:
			if err := p.Err(); err != nil {
				return err
			}
			return ErrPipelineClosed
		case <-p.ctx.Done():
			return p.ctx.Err()
		case p.input <- product:
		}
	}
	return nil
}

// Close stops accepting products and waits, at most drainTimeout, for the
// queued ones to be written.
func (p *Pipeline) Close() error {
	p.stop()
	if !waitTimeout(&p.wg, drainTimeout) {
		return errors.Errorf("%w after %s", ErrPipelineCloseTimeout, drainTimeout)
	}
	return p.Err()
}

// Err returns the first write error, if any.
func (p *Pipeline) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Stats returns a copy of the counters.
func (p *Pipeline) Stats() Stats {
	p.skippedMu.Lock()
	defer p.skippedMu.Unlock()
	return Stats{Written: p.written.Load(), Skipped: maps.Clone(p.skipped)}
}

// StartMetricsReporting logs progress every interval until the pipeline closes.
func (p *Pipeline) StartMetricsReporting(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				stats := p.Stats()
				slog.Info("pipeline progress",
					slog.Int64("written", stats.Written),
					slog.Int("skip_kinds", len(stats.Skipped)),
				)
			case <-p.done:
				return
			}
		}
	}()
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	batch := make([]*models.Product, 0, p.batchSize)
	write := func() bool {
		if len(batch) == 0 {
			return true
		}
		if err := p.writer.Write(batch); err != nil {
			p.fail(errors.Wrap(err, "write batch"))
			return false
		}
		p.written.Add(int64(len(batch)))
		batch = batch[:0]
		return true
	}

	for product := range p.input {
		if !p.accept(product) {
			continue
		}
		batch = append(batch, product)
		if len(batch) >= p.batchSize && !write() {
			return
		}
	}
	write()
}

// accept validates product and counts it as skipped when invalid.
func (p *Pipeline) accept(product *models.Product) bool {
	err := parser.ValidateProduct(product)
	if err == nil {
		return true
	}
	kind := "invalid_record"
	var verr parser.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		kind = "invalid_" + verr.Field
	}
	p.skippedMu.Lock()
	p.skipped[kind]++
	p.skippedMu.Unlock()
	slog.Debug("skipping invalid product", slog.String("kind", kind), slog.Any("error", err))
	return false
}

func (p *Pipeline) fail(err error) {
	p.errMu.Lock()
	if p.err == nil {
		p.err = err
	}
	p.errMu.Unlock()
	p.stop()
}

// stop wakes blocked senders, then closes input so workers drain and exit.
func (p *Pipeline) stop() {
	p.doneOnce.Do(func() { close(p.done) })

	p.inputMu.Lock()
	defer p.inputMu.Unlock()
	if !p.inputClosed {
		p.inputClosed = true
		close(p.input)
	}
}

func (p *Pipeline) isDone() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// waitTimeout waits for wg and reports whether it finished within d.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-finished:
		return true
	case <-timer.C:
		return false
	}
}
