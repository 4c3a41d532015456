package models

import (
	"time"
)

type OAuthToken struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ShopDomain  string    `json:"shop_domain" gorm:"uniqueIndex;size:255;not null"`
	AccessToken string    `json:"-" gorm:"size:255;not null"`
	Scope       string    `json:"scope" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (OAuthToken) TableName() string {
	return "shopify_oauth_token"
}
