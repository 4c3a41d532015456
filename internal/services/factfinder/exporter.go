package factfinder

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"ffbridge/internal/logger"
	"ffbridge/internal/services/shopify"
)

var ErrExportTooSmall = errors.New("export file is too small")

// ExportError wraps any failure while producing the feed file.
type ExportError struct {
	Shop string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed for %s: %v", e.Shop, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// CatalogSource streams product pages of a shop.
type CatalogSource interface {
	Stream(ctx context.Context, shop, salesChannel, locale string) iter.Seq2[[]shopify.Product, error]
}

// Exporter writes the feed of one shop to a CSV file under dir.
type Exporter struct {
	catalog CatalogSource
	mapper  *RowMapper
	dir     string
	logger  *logger.Logger
}

func NewExporter(catalog CatalogSource, mapper *RowMapper, dir string, logger *logger.Logger) *Exporter {
	return &Exporter{
		catalog: catalog,
		mapper:  mapper,
		dir:     dir,
		logger:  logger,
	}
}

// Export streams the catalog page by page into the feed file and returns its
// path. A partially written file is removed on failure.
func (e *Exporter) Export(ctx context.Context, shop, salesChannel, locale string) (string, error) {
	path, err := e.filename(shop, locale)
	if err != nil {
		return "", &ExportError{Shop: shop, Err: err}
	}

	file, err := os.Create(path)
	if err != nil {
		return "", &ExportError{Shop: shop, Err: fmt.Errorf("failed to create export file: %w", err)}
	}

	rows, err := e.write(ctx, file, shop, salesChannel, locale)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close export file: %w", closeErr)
	}
	if err != nil {
		os.Remove(path)
		return "", &ExportError{Shop: shop, Err: err}
	}

	e.logger.Info("Exported %d rows for %s to %s", rows, shop, path)
	return path, nil
}

func (e *Exporter) write(ctx context.Context, file *os.File, shop, salesChannel, locale string) (int, error) {
	w := csv.NewWriter(file)
	w.Comma = ';'

	if err := w.Write(Header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	rows := 0
	for batch, err := range e.catalog.Stream(ctx, shop, salesChannel, locale) {
		if err != nil {
			return rows, err
		}
		for row := range e.mapper.Map(batch, shop) {
			if err := w.Write(row.Record()); err != nil {
				return rows, fmt.Errorf("failed to write row %s: %w", row.ProductNumber, err)
			}
			rows++
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return rows, fmt.Errorf("failed to flush rows: %w", err)
		}
	}

	w.Flush()
	return rows, w.Error()
}

func (e *Exporter) filename(shop, locale string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", e.dir, err)
	}

	check, err := os.CreateTemp(e.dir, ".write-check-*")
	if err != nil {
		return "", fmt.Errorf("directory %s is not writable: %w", e.dir, err)
	}
	check.Close()
	os.Remove(check.Name())

	name := "shopify_products_" + shop
	if locale != "" {
		name += "_" + locale
	}
	return filepath.Join(e.dir, name+".csv"), nil
}

// CheckSize fails with ErrExportTooSmall when the file at path is smaller
// than minSize bytes.
func CheckSize(path string, minSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat export file: %w", err)
	}
	if info.Size() < minSize {
		return fmt.Errorf("%w: %s has %d bytes, expected at least %d", ErrExportTooSmall, path, info.Size(), minSize)
	}
	return nil
}
