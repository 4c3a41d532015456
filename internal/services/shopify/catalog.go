package shopify

import (
	"context"
	"fmt"
	"iter"
	"time"

	"ffbridge/internal/logger"
)

const productsPerPage = 250

const productsQuery = `query Products($first: Int!, $after: String, $query: String, $locale: String!, $translate: Boolean!) {
  products(first: $first, after: $after, query: $query) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
        legacyResourceId
        translations(locale: $locale) @include(if: $translate) {
          key
          value
        }
        title
        vendor
        handle
        descriptionHtml
        onlineStoreUrl
        category {
          id
          fullName
        }
        images(first: 1) {
          edges {
            node {
              url
            }
          }
        }
        variants(first: 100) {
          edges {
            node {
              id
              translations(locale: $locale) @include(if: $translate) {
                key
                value
              }
              legacyResourceId
              title
              price
              selectedOptions {
                name
                value
              }
            }
          }
        }
      }
    }
  }
}`

// TokenStore resolves the OAuth access token of an installed shop.
type TokenStore interface {
	FindToken(ctx context.Context, shop string) (string, error)
}

// CatalogReader pages through the active products of a shop that are
// published on one sales channel.
type CatalogReader struct {
	tokens     TokenStore
	apiVersion string
	logger     *logger.Logger
	clientOpts []ClientOption
	pageSize   int
	wait       func(ctx context.Context, d time.Duration) error
}

func NewCatalogReader(tokens TokenStore, apiVersion string, logger *logger.Logger, opts ...ClientOption) *CatalogReader {
	return &CatalogReader{
		tokens:     tokens,
		apiVersion: apiVersion,
		logger:     logger,
		clientOpts: opts,
		pageSize:   productsPerPage,
		wait:       sleepContext,
	}
}

// Stream yields one batch per fetched page. Iteration stops after the first
// error, which is either an *ExpiredCredentialError, a *TransientFetchError
// or the token lookup error.
func (r *CatalogReader) Stream(ctx context.Context, shop, salesChannel, locale string) iter.Seq2[[]Product, error] {
	return func(yield func([]Product, error) bool) {
		token, err := r.tokens.FindToken(ctx, shop)
		if err != nil {
			yield(nil, err)
			return
		}

		client := NewClient(shop, token, r.apiVersion, r.logger, r.clientOpts...)
		variables := map[string]interface{}{
			"first":     r.pageSize,
			"query":     searchFilter(salesChannel),
			"locale":    locale,
			"translate": locale != "",
		}

		page := 0
		for {
			var data struct {
				Products *ProductConnection `json:"products"`
			}

			ext, err := client.Query(ctx, productsQuery, variables, &data)
			if err != nil {
				yield(nil, classifyFetchError(shop, err))
				return
			}

			if data.Products == nil {
				return
			}

			page++
			products := data.Products.Nodes()
			r.logger.Debug("Fetched page %d with %d products for %s", page, len(products), shop)

			if len(products) > 0 && !yield(products, nil) {
				return
			}

			info := data.Products.PageInfo
			if !info.HasNextPage || info.EndCursor == nil || *info.EndCursor == "" {
				return
			}
			variables["after"] = *info.EndCursor

			if delay := ext.ThrottleDelay(); delay > 0 {
				r.logger.Info("Approaching GraphQL rate limit for %s, waiting %s", shop, delay)
				if err := r.wait(ctx, delay); err != nil {
					yield(nil, &TransientFetchError{Shop: shop, Err: err})
					return
				}
			}
		}
	}
}

func searchFilter(salesChannel string) string {
	if salesChannel == "" {
		return "status:active"
	}
	return fmt.Sprintf("status:active, publication_ids:%s", salesChannel)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
