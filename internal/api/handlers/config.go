package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"

	"ffbridge/internal/logger"
	"ffbridge/internal/models"
	"ffbridge/internal/repository"

	"github.com/gin-gonic/gin"
)

type TransferTester interface {
	Upload(ctx context.Context, cfg *models.ShopConfig, localPath, remoteName string) bool
}

// APIPinger checks FactFinder API credentials for a channel.
type APIPinger interface {
	Ping(ctx context.Context, channel string) error
}

type PingerFactory func(serverURL, username, password string) APIPinger

type ConfigHandler struct {
	configs  ConfigStore
	transfer TransferTester
	pinger   PingerFactory
	logger   *logger.Logger
}

func NewConfigHandler(configs ConfigStore, transfer TransferTester, pinger PingerFactory, logger *logger.Logger) *ConfigHandler {
	return &ConfigHandler{
		configs:  configs,
		transfer: transfer,
		pinger:   pinger,
		logger:   logger,
	}
}

type configRequest struct {
	ShopDomain        string `json:"shop_domain" binding:"required"`
	Protocol          string `json:"protocol" binding:"omitempty,oneof=FTP SFTP"`
	ServerURL         string `json:"server_url"`
	Port              int    `json:"port" binding:"omitempty,min=1,max=65535"`
	Username          string `json:"username"`
	RootDirectory     string `json:"root_directory"`
	PrivateKeyContent string `json:"private_key_content"`
	KeyPassphrase     string `json:"key_passphrase"`
	FFChannelName     string `json:"ff_channel_name"`
	FFAPIServerURL    string `json:"ff_api_server_url" binding:"omitempty,url"`
	FFAPIUsername     string `json:"ff_api_username"`
	FFAPIPassword     string `json:"ff_api_password"`
	NotificationEmail string `json:"notification_email" binding:"omitempty,email"`
}

func (h *ConfigHandler) Get(c *gin.Context) {
	cfg, ok := h.loadConfig(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cfg})
}

// Save creates or updates the shop configuration. Secrets left empty in the
// request keep their stored value.
func (h *ConfigHandler) Save(c *gin.Context) {
	var request configRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.configs.FindByShop(c.Request.Context(), request.ShopDomain)
	if errors.Is(err, repository.ErrConfigNotFound) {
		cfg = models.NewShopConfig(request.ShopDomain)
	} else if err != nil {
		h.logger.Error("Failed to load config for %s: %v", request.ShopDomain, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load configuration"})
		return
	}

	if request.Protocol != "" {
		cfg.Protocol = models.Protocol(request.Protocol)
	}
	cfg.ServerURL = request.ServerURL
	cfg.Port = request.Port
	cfg.Username = request.Username
	cfg.RootDirectory = request.RootDirectory
	cfg.FFChannelName = request.FFChannelName
	cfg.FFAPIServerURL = request.FFAPIServerURL
	cfg.FFAPIUsername = request.FFAPIUsername
	cfg.NotificationEmail = request.NotificationEmail
	if request.PrivateKeyContent != "" {
		cfg.PrivateKeyContent = request.PrivateKeyContent
	}
	if request.KeyPassphrase != "" {
		cfg.KeyPassphrase = request.KeyPassphrase
	}
	if request.FFAPIPassword != "" {
		cfg.FFAPIPassword = request.FFAPIPassword
	}

	if err := h.configs.Save(c.Request.Context(), cfg); err != nil {
		h.logger.Error("Failed to save config for %s: %v", cfg.ShopDomain, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save configuration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}

// TestTransfer uploads a small test file with the stored transfer settings.
func (h *ConfigHandler) TestTransfer(c *gin.Context) {
	cfg, ok := h.loadConfig(c)
	if !ok {
		return
	}

	testFile, err := os.CreateTemp("", "ftp_test_")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create test file"})
		return
	}
	defer os.Remove(testFile.Name())
	testFile.WriteString("test")
	testFile.Close()

	if !h.transfer.Upload(c.Request.Context(), cfg, testFile.Name(), "test_connection.txt") {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "FTP/SFTP Connection failed. Please check your FTP/SFTP credentials and data.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "FTP/SFTP connection successful!"})
}

// TestAPI checks the stored FactFinder API credentials.
func (h *ConfigHandler) TestAPI(c *gin.Context) {
	cfg, ok := h.loadConfig(c)
	if !ok {
		return
	}

	if !cfg.ImportConfigured() {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Please provide API Import credentials to test the connection.",
		})
		return
	}

	pinger := h.pinger(cfg.FFAPIServerURL, cfg.FFAPIUsername, cfg.FFAPIPassword)
	if err := pinger.Ping(c.Request.Context(), cfg.FFChannelName); err != nil {
		h.logger.Warn("API connection test failed for %s: %v", cfg.ShopDomain, err)
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "API Import credentials invalid"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "API Import connection successful!"})
}

func (h *ConfigHandler) loadConfig(c *gin.Context) (*models.ShopConfig, bool) {
	shop := c.Query("shop")
	if shop == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop parameter"})
		return nil, false
	}

	cfg, err := h.configs.FindByShop(c.Request.Context(), shop)
	if err != nil {
		if errors.Is(err, repository.ErrConfigNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Config not found"})
			return nil, false
		}
		h.logger.Error("Failed to load config for %s: %v", shop, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load configuration"})
		return nil, false
	}
	return cfg, true
}
