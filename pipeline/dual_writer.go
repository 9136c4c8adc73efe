package pipeline

import (
	"sync"

	"github.com/go-faster/errors"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

type namedWriter struct {
	format string
	OutputWriter
}

// DualWriter fans every batch out to a CSV and a JSONL export of the same
// products. Outputs are written in order; the first failure stops the batch.
type DualWriter struct {
	mu      sync.Mutex
	outputs []namedWriter
}

// NewDualWriter opens both outputs. Nothing is left open on failure.
func NewDualWriter(csvFilename, jsonFilename string) (*DualWriter, error) {
	csvOut, err := NewCSVWriter(csvFilename)
	if err != nil {
		return nil, errors.Wrap(err, "open csv export")
	}
	jsonOut, err := NewJSONWriter(jsonFilename)
	if err != nil {
		_ = csvOut.Close()
		return nil, errors.Wrap(err, "open json export")
	}
	return &DualWriter{outputs: []namedWriter{
		{format: "csv", OutputWriter: csvOut},
		{format: "json", OutputWriter: jsonOut},
	}}, nil
}

func (dw *DualWriter) Write(products []*models.Product) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	for _, out := range dw.outputs {
		if err := out.Write(products); err != nil {
			return errors.Wrapf(err, "%s export", out.format)
		}
	}
	return nil
}

// Close closes every output, even after a failure, and joins the errors.
func (dw *DualWriter) Close() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.each(OutputWriter.Close)
}

func (dw *DualWriter) Validate() error {
	return dw.each(OutputWriter.Validate)
}

func (dw *DualWriter) each(fn func(OutputWriter) error) error {
	var errs []error
	for _, out := range dw.outputs {
		if err := fn(out.OutputWriter); err != nil {
			errs = append(errs, errors.Wrapf(err, "%s export", out.format))
		}
	}
	return errors.Join(errs...)
}
