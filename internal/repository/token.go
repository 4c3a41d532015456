package repository

import (
	"context"
	"errors"

	"ffbridge/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTokenNotFound = errors.New("oauth token not found")

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// FindToken returns the shop's access token, or ErrTokenNotFound when the shop
// has to go through the OAuth flow again.
func (r *TokenRepository) FindToken(ctx context.Context, shopDomain string) (string, error) {
	var token models.OAuthToken
	err := r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && token.AccessToken == "") {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (r *TokenRepository) SaveToken(ctx context.Context, shopDomain, accessToken, scope string) error {
	token := models.OAuthToken{ShopDomain: shopDomain, AccessToken: accessToken, Scope: scope}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "scope", "updated_at"}),
	}).Create(&token).Error
}

func (r *TokenRepository) DeleteByShop(ctx context.Context, shopDomain string) error {
	return r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).Delete(&models.OAuthToken{}).Error
}
