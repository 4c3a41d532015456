package models

import (
	"time"
)

type Protocol string

const (
	ProtocolFTP  Protocol = "FTP"
	ProtocolSFTP Protocol = "SFTP"
)

// ShopConfig is the per-shop destination configuration. KeyPassphrase doubles as
// the FTP password when Protocol is FTP.
type ShopConfig struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	ShopDomain        string    `json:"shop_domain" gorm:"uniqueIndex;size:255;not null"`
	Protocol          Protocol  `json:"protocol" gorm:"size:8;not null;default:SFTP"`
	ServerURL         string    `json:"server_url" gorm:"size:255"`
	Port              int       `json:"port"`
	Username          string    `json:"username" gorm:"size:255"`
	RootDirectory     string    `json:"root_directory" gorm:"size:255"`
	PrivateKeyContent string    `json:"-" gorm:"type:text"`
	KeyPassphrase     string    `json:"-" gorm:"size:255"`
	FFChannelName     string    `json:"ff_channel_name" gorm:"size:255"`
	FFAPIServerURL    string    `json:"ff_api_server_url" gorm:"size:255"`
	FFAPIUsername     string    `json:"ff_api_username" gorm:"size:255"`
	FFAPIPassword     string    `json:"-" gorm:"size:255"`
	NotificationEmail string    `json:"notification_email" gorm:"size:255"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (ShopConfig) TableName() string {
	return "shopify_app_config"
}

// NewShopConfig returns the configuration a freshly installed shop starts with.
func NewShopConfig(shopDomain string) *ShopConfig {
	return &ShopConfig{
		ShopDomain: shopDomain,
		Protocol:   ProtocolSFTP,
		Port:       22,
		UpdatedAt:  time.Now(),
	}
}

// ImportConfigured reports whether all FactFinder API fields are present.
func (c *ShopConfig) ImportConfigured() bool {
	return c.FFAPIServerURL != "" && c.FFAPIUsername != "" && c.FFAPIPassword != ""
}
