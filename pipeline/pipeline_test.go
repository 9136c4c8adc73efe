package pipeline

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/aluiziolira/cosmetics-storefront/config"
	"github.com/aluiziolira/cosmetics-storefront/models"
)

type mockWriter struct {
	mu          sync.Mutex
	batches     [][]*models.Product
	closed      bool
	writeErr    error
	validateErr error
}

func (mw *mockWriter) Write(products []*models.Product) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	if mw.writeErr != nil {
		return mw.writeErr
	}
	copyBatch := make([]*models.Product, len(products))
	copy(copyBatch, products)
	mw.batches = append(mw.batches, copyBatch)
	return nil
}

func (mw *mockWriter) Close() error {
	mw.mu.Lock()
	mw.closed = true
	mw.mu.Unlock()
	return nil
}

func (mw *mockWriter) Validate() error {
	return mw.validateErr
}

func (mw *mockWriter) totalWritten() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	total := 0
	for _, batch := range mw.batches {
		total += len(batch)
	}
	return total
}

func (mw *mockWriter) batchSizes() []int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	sizes := make([]int, 0, len(mw.batches))
	for _, batch := range mw.batches {
		sizes = append(sizes, len(batch))
	}
	return sizes
}

type blockingWriter struct {
	blockCh chan struct{}
}

func (bw *blockingWriter) Write(products []*models.Product) error {
	<-bw.blockCh
	return nil
}

func (bw *blockingWriter) Close() error {
	return nil
}

func (bw *blockingWriter) Validate() error {
	return nil
}

func product(i int) *models.Product {
	return &models.Product{
		ID:    "p" + strconv.Itoa(i),
		Name:  "Rose Water Toner",
		Price: decimal.NewFromInt(120),
	}
}

func TestPipelineProcessValidationKeepsDuplicates(t *testing.T) {
	cfg := config.DefaultConfig()
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(1)

	valid := product(1)
	missingName := &models.Product{ID: "p2", Price: decimal.NewFromInt(1)}
	negative := &models.Product{ID: "p3", Name: "Kajal", Price: decimal.NewFromInt(-5)}
	duplicate := product(1)

	if err := p.Process(valid, missingName, negative, duplicate, nil); err != nil {
		t.Fatalf("process: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := writer.totalWritten(); got != 2 {
		t.Fatalf("written products = %d, want 2 (duplicates are kept)", got)
	}

	stats := p.Stats()
	if stats.Skipped["invalid_name"] != 1 || stats.Skipped["invalid_price"] != 1 {
		t.Fatalf("skipped = %v", stats.Skipped)
	}
	if stats.Written != 2 {
		t.Fatalf("written = %d, want 2", stats.Written)
	}
}

func TestPipelineBatchFlushThreshold(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BatchSize = 64
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(1)

	for i := 0; i < 65; i++ {
		if err := p.Process(product(i)); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	sizes := writer.batchSizes()
	if len(sizes) != 2 {
		t.Fatalf("batch writes = %d, want 2", len(sizes))
	}
	if sizes[0] != 64 || sizes[1] != 1 {
		t.Fatalf("batch sizes = %v, want [64 1]", sizes)
	}
}

func TestPipelineCloseDrainsPendingItems(t *testing.T) {
	cfg := config.DefaultConfig()
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(2)

	for i := 0; i < 100; i++ {
		if err := p.Process(product(i + 200)); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := writer.totalWritten(); got != 100 {
		t.Fatalf("written products = %d, want 100", got)
	}
}

func TestPipelineRejectsAfterClose(t *testing.T) {
	p := NewPipeline(context.Background(), &mockWriter{}, config.DefaultConfig())
	p.Start(1)
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Process(product(1)); !errors.Is(err, ErrPipelineClosed) {
		t.Fatalf("process after close: %v, want ErrPipelineClosed", err)
	}
}

func TestPipelineSurfacesWriteError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BatchSize = 1
	boom := errors.New("disk full")
	p := NewPipeline(context.Background(), &mockWriter{writeErr: boom}, cfg)
	p.Start(1)

	_ = p.Process(product(1))
	if err := p.Close(); !errors.Is(err, boom) {
		t.Fatalf("close: %v, want %v", err, boom)
	}
}

func TestPipelineHonorsContext(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PipelineBufferSize = 1
	cfg.BatchSize = 1
	writer := &blockingWriter{blockCh: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPipeline(ctx, writer, cfg)
	p.Start(1)
	t.Cleanup(func() {
		close(writer.blockCh)
		_ = p.Close()
	})

	cancel()
	var err error
	for i := 0; i < 4 && err == nil; i++ {
		err = p.Process(product(i))
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("process with canceled context: %v", err)
	}
}

func TestPipelineCloseTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BatchSize = 1

	writer := &blockingWriter{blockCh: make(chan struct{})}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(1)

	if err := p.Process(product(1)); err != nil {
		t.Fatalf("process: %v", err)
	}

	previousTimeout := drainTimeout
	drainTimeout = 25 * time.Millisecond
	t.Cleanup(func() {
		drainTimeout = previousTimeout
		close(writer.blockCh)
	})

	if err := p.Close(); err == nil || !errors.Is(err, ErrPipelineCloseTimeout) {
		t.Fatalf("expected close timeout error, got %v", err)
	}
}

func TestPipelineCloseReleasesBlockedSender(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BatchSize = 1
	cfg.PipelineBufferSize = 1
	writer := &blockingWriter{blockCh: make(chan struct{})}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(1)

	previousTimeout := drainTimeout
	drainTimeout = 25 * time.Millisecond
	t.Cleanup(func() {
		drainTimeout = previousTimeout
		close(writer.blockCh)
	})

	sent := make(chan error, 1)
	go func() {
		// One product is held by the worker, one fills the buffer, the third blocks.
		sent <- p.Process(product(1), product(2), product(3))
	}()

	select {
	case err := <-sent:
		t.Fatalf("process returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	if err := p.Close(); !errors.Is(err, ErrPipelineCloseTimeout) {
		t.Fatalf("close: %v, want ErrPipelineCloseTimeout", err)
	}
	select {
	case err := <-sent:
		if !errors.Is(err, ErrPipelineClosed) {
			t.Fatalf("blocked process: %v, want ErrPipelineClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("blocked sender was not released by Close")
	}
}
