package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ffbridge/internal/logger"
	"ffbridge/internal/repository"
	"ffbridge/internal/services/shopify"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type ShopLookup interface {
	SalesChannels(ctx context.Context, shop string) (map[string]string, error)
	Locales(ctx context.Context, shop string) (map[string]string, error)
}

// ShopifyHandler serves the choices offered by the export form. Answers are
// cached per shop for a few minutes.
type ShopifyHandler struct {
	lookup ShopLookup
	cache  *cache.Cache
	logger *logger.Logger
}

func NewShopifyHandler(lookup ShopLookup, logger *logger.Logger) *ShopifyHandler {
	return &ShopifyHandler{
		lookup: lookup,
		cache:  cache.New(5*time.Minute, 10*time.Minute),
		logger: logger,
	}
}

func (h *ShopifyHandler) SalesChannels(c *gin.Context) {
	h.serveLookup(c, "sales_channels", h.lookup.SalesChannels)
}

func (h *ShopifyHandler) Locales(c *gin.Context) {
	h.serveLookup(c, "locales", h.lookup.Locales)
}

func (h *ShopifyHandler) serveLookup(c *gin.Context, kind string, fetch func(context.Context, string) (map[string]string, error)) {
	shop := c.Query("shop")
	if shop == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop parameter"})
		return
	}

	key := kind + ":" + shop
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, gin.H{"data": cached})
		return
	}

	result, err := fetch(c.Request.Context(), shop)
	if err != nil {
		var expired *shopify.ExpiredCredentialError
		switch {
		case errors.As(err, &expired), errors.Is(err, repository.ErrTokenNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Shop has to be reauthorized"})
		default:
			h.logger.Error("Failed to fetch %s for %s: %v", kind, shop, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch data from Shopify"})
		}
		return
	}

	h.cache.SetDefault(key, result)
	c.JSON(http.StatusOK, gin.H{"data": result})
}
