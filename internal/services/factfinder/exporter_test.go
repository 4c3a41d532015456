package factfinder

import (
	"context"
	"encoding/csv"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ffbridge/internal/logger"
	"ffbridge/internal/services/shopify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	pages [][]shopify.Product
	err   error
}

func (f *fakeCatalog) Stream(_ context.Context, _, _, _ string) iter.Seq2[[]shopify.Product, error] {
	return func(yield func([]shopify.Product, error) bool) {
		for _, page := range f.pages {
			if !yield(page, nil) {
				return
			}
		}
		if f.err != nil {
			yield(nil, f.err)
		}
	}
}

func readFeed(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestExporterWritesFeed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "factfinder")
	catalog := &fakeCatalog{pages: [][]shopify.Product{
		{threeVariantShirt()},
		{product("200", variant("9", "Default Title", "5.00"))},
	}}
	exporter := NewExporter(catalog, NewRowMapper(), dir, logger.NewNop())

	path, err := exporter.Export(context.Background(), "shop.myshopify.com", "1", "de")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shopify_products_shop.myshopify.com_de.csv"), path)

	records := readFeed(t, path)
	require.Len(t, records, 6)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, "100", records[1][0])
	assert.Equal(t, "Apparel+%26+Accessories/Clothing/Tops", records[1][4])
	assert.Equal(t, "200", records[5][0])
}

func TestExporterPathWithoutLocale(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(&fakeCatalog{}, NewRowMapper(), dir, logger.NewNop())

	path, err := exporter.Export(context.Background(), "shop.myshopify.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shopify_products_shop.myshopify.com.csv"), path)

	records := readFeed(t, path)
	assert.Len(t, records, 1)
}

func TestExporterRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	expired := &shopify.ExpiredCredentialError{Shop: "shop.myshopify.com"}
	catalog := &fakeCatalog{pages: [][]shopify.Product{{threeVariantShirt()}}, err: expired}
	exporter := NewExporter(catalog, NewRowMapper(), dir, logger.NewNop())

	_, err := exporter.Export(context.Background(), "shop.myshopify.com", "1", "")
	require.Error(t, err)

	var exportErr *ExportError
	assert.ErrorAs(t, err, &exportErr)
	var credErr *shopify.ExpiredCredentialError
	assert.ErrorAs(t, err, &credErr)

	_, statErr := os.Stat(filepath.Join(dir, "shopify_products_shop.myshopify.com.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExporterFailsWhenDirectoryUnusable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	exporter := NewExporter(&fakeCatalog{}, NewRowMapper(), filepath.Join(blocker, "sub"), logger.NewNop())
	_, err := exporter.Export(context.Background(), "shop.myshopify.com", "", "")
	assert.Error(t, err)
}

func TestCheckSize(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.csv")
	large := filepath.Join(dir, "large.csv")
	require.NoError(t, os.WriteFile(small, []byte(strings.Join(Header, ";")), 0o644))
	require.NoError(t, os.WriteFile(large, []byte(strings.Repeat("x", 1000)), 0o644))

	assert.True(t, errors.Is(CheckSize(small, 1000), ErrExportTooSmall))
	assert.NoError(t, CheckSize(large, 1000))
	assert.Error(t, CheckSize(filepath.Join(dir, "missing.csv"), 1000))
}
