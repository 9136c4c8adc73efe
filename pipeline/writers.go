package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-faster/errors"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

// csvHeader is the column order of exported products.
var csvHeader = []string{
	"id", "name", "price", "category_id", "category_name", "brand", "featured",
	"quantity", "carton", "options", "images", "features", "description",
}

// fileOutput is a buffered export file. Format writers supply encode, and
// sync when their encoder buffers on its own.
type fileOutput struct {
	mu     sync.Mutex
	format string
	file   *os.File
	buf    *bufio.Writer
	encode func(*models.Product) error
	sync   func() error
}

func (o *fileOutput) open(filename, format string) error {
	if dir := filepath.Dir(filename); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %q", dir)
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s file", format)
	}
	o.format = format
	o.file = f
	o.buf = bufio.NewWriter(f)
	return nil
}

// Write encodes products and flushes them to disk before returning.
func (o *fileOutput) Write(products []*models.Product) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, p := range products {
		if err := o.encode(p); err != nil {
			return errors.Wrapf(err, "encode %s record %s", o.format, p.ID)
		}
	}
	return o.flush()
}

// Close flushes pending output and closes the file.
func (o *fileOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.flush(); err != nil {
		_ = o.file.Close()
		return err
	}
	return o.file.Close()
}

// Validate reports an error when nothing reached the file.
func (o *fileOutput) Validate() error {
	info, err := o.file.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat %s file", o.format)
	}
	if info.Size() == 0 {
		return errors.Errorf("%s file is empty", o.format)
	}
	return nil
}

func (o *fileOutput) flush() error {
	if o.sync != nil {
		if err := o.sync(); err != nil {
			return errors.Wrapf(err, "flush %s encoder", o.format)
		}
	}
	if err := o.buf.Flush(); err != nil {
		return errors.Wrapf(err, "flush %s file", o.format)
	}
	return nil
}

// CSVWriter writes one row per product under a fixed header.
type CSVWriter struct {
	fileOutput
}

// NewCSVWriter creates filename and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	cw := &CSVWriter{}
	if err := cw.open(filename, "csv"); err != nil {
		return nil, err
	}
	w := csv.NewWriter(cw.buf)
	cw.encode = func(p *models.Product) error { return w.Write(csvRecord(p)) }
	cw.sync = func() error {
		w.Flush()
		return w.Error()
	}

	err := w.Write(csvHeader)
	if err == nil {
		err = cw.flush()
	}
	if err != nil {
		_ = cw.file.Close()
		return nil, errors.Wrap(err, "write csv header")
	}
	return cw, nil
}

func csvRecord(p *models.Product) []string {
	options := make([]string, 0, len(p.QuantityOptions))
	for _, o := range p.QuantityOptions {
		options = append(options, o.Label+":"+o.Price.StringFixed(2))
	}
	return []string{
		p.ID,
		p.Name,
		p.Price.StringFixed(2),
		p.CategoryID,
		p.CategoryName,
		p.Brand,
		strconv.FormatBool(p.Featured),
		p.Quantity,
		strconv.Itoa(p.Carton),
		strings.Join(options, ";"),
		strings.Join(p.Images, "|"),
		strings.Join(p.Features, "|"),
		p.Description,
	}
}

// JSONWriter writes one JSON document per line.
type JSONWriter struct {
	fileOutput
}

// NewJSONWriter creates filename.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	jw := &JSONWriter{}
	if err := jw.open(filename, "json"); err != nil {
		return nil, err
	}
	enc := json.NewEncoder(jw.buf)
	jw.encode = func(p *models.Product) error { return enc.Encode(p) }
	return jw, nil
}
