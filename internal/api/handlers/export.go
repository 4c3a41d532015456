package handlers

import (
	"context"
	"errors"
	"net/http"

	"ffbridge/internal/logger"
	"ffbridge/internal/models"
	"ffbridge/internal/repository"
	"ffbridge/internal/status"
	"ffbridge/internal/worker/messages"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ConfigStore interface {
	FindByShop(ctx context.Context, shop string) (*models.ShopConfig, error)
	Save(ctx context.Context, cfg *models.ShopConfig) error
	DeleteByShop(ctx context.Context, shop string) error
}

type ExportHandler struct {
	configs   ConfigStore
	publisher messages.Publisher
	tracker   status.Tracker
	logger    *logger.Logger
}

func NewExportHandler(configs ConfigStore, publisher messages.Publisher, tracker status.Tracker, logger *logger.Logger) *ExportHandler {
	return &ExportHandler{
		configs:   configs,
		publisher: publisher,
		tracker:   tracker,
		logger:    logger,
	}
}

// Start queues a product export for the shop and returns the run id.
func (h *ExportHandler) Start(c *gin.Context) {
	shop := c.Query("shop")
	if shop == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop parameter"})
		return
	}

	var request struct {
		SalesChannel string `json:"sales_channel" form:"sales_channel"`
		Locale       string `json:"locale" form:"locale"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	cfg, err := h.configs.FindByShop(c.Request.Context(), shop)
	if err != nil {
		if errors.Is(err, repository.ErrConfigNotFound) {
			h.logger.Error("Executed export without configuration for: %s", shop)
			c.JSON(http.StatusNotFound, gin.H{"error": "Configuration not found for this shop"})
			return
		}
		h.logger.Error("Failed to load config for %s: %v", shop, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load configuration"})
		return
	}

	runID := uuid.NewString()
	env, err := messages.New(runID, messages.TypeExportProducts, shop, messages.ExportProducts{
		ConfigID:          cfg.ID,
		SalesChannelID:    request.SalesChannel,
		Locale:            request.Locale,
		NotificationEmail: cfg.NotificationEmail,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue export"})
		return
	}

	if err := h.tracker.Set(c.Request.Context(), status.Run{ID: runID, Shop: shop, State: status.StatePending}); err != nil {
		h.logger.Warn("Failed to record run %s: %v", runID, err)
	}

	if err := h.publisher.Publish(c.Request.Context(), env); err != nil {
		h.logger.Error("Failed to queue export for %s: %v", shop, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue export"})
		return
	}

	h.logger.Info("Export queued for %s (config %d, run %s)", shop, cfg.ID, runID)
	c.JSON(http.StatusAccepted, gin.H{
		"run_id":  runID,
		"message": "Export queued. You will be notified when finished.",
	})
}

// Status returns the last known state of an export run.
func (h *ExportHandler) Status(c *gin.Context) {
	run, err := h.tracker.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, status.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Export run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch export run"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}
