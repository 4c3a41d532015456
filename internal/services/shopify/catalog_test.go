package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ffbridge/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens map[string]string

func (s staticTokens) FindToken(_ context.Context, shop string) (string, error) {
	token, ok := s[shop]
	if !ok {
		return "", errors.New("token not found")
	}
	return token, nil
}

func productPage(ids []string, next string) string {
	edges := ""
	for i, id := range ids {
		if i > 0 {
			edges += ","
		}
		edges += fmt.Sprintf(`{"node":{"id":"gid://shopify/Product/%[1]s","legacyResourceId":"%[1]s","title":"Product %[1]s","handle":"product-%[1]s","variants":{"edges":[]},"images":{"edges":[]}}}`, id)
	}
	cursor := "null"
	if next != "" {
		cursor = fmt.Sprintf("%q", next)
	}
	return fmt.Sprintf(`{"data":{"products":{"pageInfo":{"hasNextPage":%t,"endCursor":%s},"edges":[%s]}},"extensions":{"cost":{"throttleStatus":{"maximumAvailable":1000,"currentlyAvailable":990,"restoreRate":50}}}}`, next != "", cursor, edges)
}

func newTestReader(t *testing.T, handler http.HandlerFunc) *CatalogReader {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewCatalogReader(staticTokens{"shop.myshopify.com": "shpat_test"}, "", logger.NewNop(), WithEndpoint(server.URL))
}

func TestCatalogReaderPaginates(t *testing.T) {
	var seen []map[string]interface{}
	reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))

		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req.Variables)

		if req.Variables["after"] == nil {
			fmt.Fprint(w, productPage([]string{"1", "2"}, "cursor-1"))
			return
		}
		fmt.Fprint(w, productPage([]string{"3"}, ""))
	})

	var ids []string
	for batch, err := range reader.Stream(context.Background(), "shop.myshopify.com", "42", "de") {
		require.NoError(t, err)
		for _, p := range batch {
			ids = append(ids, p.LegacyResourceID)
		}
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids)
	require.Len(t, seen, 2)
	assert.Equal(t, "status:active, publication_ids:42", seen[0]["query"])
	assert.Equal(t, "de", seen[0]["locale"])
	assert.Equal(t, true, seen[0]["translate"])
	assert.Equal(t, "cursor-1", seen[1]["after"])
}

func TestCatalogReaderEmptyCatalog(t *testing.T) {
	reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"products":null}}`)
	})

	batches := 0
	for _, err := range reader.Stream(context.Background(), "shop.myshopify.com", "", "") {
		require.NoError(t, err)
		batches++
	}
	assert.Zero(t, batches)
}

func TestCatalogReaderExpiredCredentials(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"errors":"Invalid API key or access token"}`)
		})

		var got error
		for _, err := range reader.Stream(context.Background(), "shop.myshopify.com", "1", "") {
			got = err
		}

		var expired *ExpiredCredentialError
		require.ErrorAs(t, got, &expired)
		assert.Equal(t, "shop.myshopify.com", expired.Shop)
	}
}

func TestCatalogReaderTransientErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		var got error
		for _, err := range reader.Stream(context.Background(), "shop.myshopify.com", "1", "") {
			got = err
		}
		var transient *TransientFetchError
		assert.ErrorAs(t, got, &transient)
	})

	t.Run("graphql errors", func(t *testing.T) {
		reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"errors":[{"message":"Throttled"}]}`)
		})
		var got error
		for _, err := range reader.Stream(context.Background(), "shop.myshopify.com", "1", "") {
			got = err
		}
		var transient *TransientFetchError
		require.ErrorAs(t, got, &transient)
		assert.Contains(t, got.Error(), "Throttled")
	})

	t.Run("error after first page", func(t *testing.T) {
		calls := 0
		reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				fmt.Fprint(w, productPage([]string{"1"}, "c"))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		})

		batches := 0
		var got error
		for batch, err := range reader.Stream(context.Background(), "shop.myshopify.com", "1", "") {
			if err != nil {
				got = err
				continue
			}
			batches += len(batch)
		}
		assert.Equal(t, 1, batches)
		assert.Error(t, got)
	})
}

func TestCatalogReaderMissingToken(t *testing.T) {
	reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	var got error
	for _, err := range reader.Stream(context.Background(), "other.myshopify.com", "1", "") {
		got = err
	}
	assert.EqualError(t, got, "token not found")
}

func TestCatalogReaderWaitsWhenThrottled(t *testing.T) {
	calls := 0
	reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"data":{"products":{"pageInfo":{"hasNextPage":true,"endCursor":"c"},"edges":[]}},"extensions":{"cost":{"throttleStatus":{"currentlyAvailable":10,"restoreRate":50}}}}`)
			return
		}
		fmt.Fprint(w, productPage([]string{"1"}, ""))
	})

	var waited []time.Duration
	reader.wait = func(_ context.Context, d time.Duration) error {
		waited = append(waited, d)
		return nil
	}

	for _, err := range reader.Stream(context.Background(), "shop.myshopify.com", "1", "") {
		require.NoError(t, err)
	}
	assert.Equal(t, []time.Duration{time.Second}, waited)
}

func TestAdminServiceLookups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Query == publicationsQuery {
			fmt.Fprint(w, `{"data":{"publications":{"edges":[{"node":{"id":"gid://shopify/Publication/123","name":"Online Store"}}]}}}`)
			return
		}
		fmt.Fprint(w, `{"data":{"shopLocales":[{"locale":"en","name":"English"},{"locale":"de","name":"German"}]}}`)
	}))
	defer server.Close()

	svc := NewAdminService(staticTokens{"shop.myshopify.com": "t"}, "", logger.NewNop(), WithEndpoint(server.URL))

	channels, err := svc.SalesChannels(context.Background(), "shop.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"123": "Online Store"}, channels)

	locales, err := svc.Locales(context.Background(), "shop.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"en": "English", "de": "German"}, locales)
}
