package shopify

import (
	"context"
	"strings"
	"unicode"

	"ffbridge/internal/logger"
)

const publicationsQuery = `{
  publications(first: 100) {
    edges {
      node {
        id
        name
      }
    }
  }
}`

const shopLocalesQuery = `{
  shopLocales {
    locale
    name
    primary
    published
  }
}`

// AdminService answers the lookups the configuration screens need.
type AdminService struct {
	tokens     TokenStore
	apiVersion string
	logger     *logger.Logger
	clientOpts []ClientOption
}

func NewAdminService(tokens TokenStore, apiVersion string, logger *logger.Logger, opts ...ClientOption) *AdminService {
	return &AdminService{
		tokens:     tokens,
		apiVersion: apiVersion,
		logger:     logger,
		clientOpts: opts,
	}
}

// SalesChannels maps numeric publication ids to their display names.
func (s *AdminService) SalesChannels(ctx context.Context, shop string) (map[string]string, error) {
	client, err := s.client(ctx, shop)
	if err != nil {
		return nil, err
	}

	var data struct {
		Publications struct {
			Edges []struct {
				Node struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"publications"`
	}
	if _, err := client.Query(ctx, publicationsQuery, nil, &data); err != nil {
		return nil, classifyFetchError(shop, err)
	}

	channels := make(map[string]string, len(data.Publications.Edges))
	for _, edge := range data.Publications.Edges {
		channels[numericID(edge.Node.ID)] = edge.Node.Name
	}
	return channels, nil
}

// Locales maps locale codes enabled on the shop to their names.
func (s *AdminService) Locales(ctx context.Context, shop string) (map[string]string, error) {
	client, err := s.client(ctx, shop)
	if err != nil {
		return nil, err
	}

	var data struct {
		ShopLocales []struct {
			Locale string `json:"locale"`
			Name   string `json:"name"`
		} `json:"shopLocales"`
	}
	if _, err := client.Query(ctx, shopLocalesQuery, nil, &data); err != nil {
		return nil, classifyFetchError(shop, err)
	}

	locales := make(map[string]string, len(data.ShopLocales))
	for _, l := range data.ShopLocales {
		locales[l.Locale] = l.Name
	}
	return locales, nil
}

func (s *AdminService) client(ctx context.Context, shop string) (*Client, error) {
	token, err := s.tokens.FindToken(ctx, shop)
	if err != nil {
		return nil, err
	}
	return NewClient(shop, token, s.apiVersion, s.logger, s.clientOpts...), nil
}

// numericID turns "gid://shopify/Publication/123" into "123".
func numericID(gid string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, gid)
}
