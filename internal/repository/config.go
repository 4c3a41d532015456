package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ffbridge/internal/models"
	"ffbridge/internal/security"

	"gorm.io/gorm"
)

var ErrConfigNotFound = errors.New("shop config not found")

// ConfigRepository stores ShopConfig rows. Secret fields are encrypted on the way
// in and decrypted on the way out, so callers only ever see plaintext credentials.
type ConfigRepository struct {
	db        *gorm.DB
	encryptor *security.Encryptor
}

func NewConfigRepository(db *gorm.DB, encryptor *security.Encryptor) *ConfigRepository {
	return &ConfigRepository{db: db, encryptor: encryptor}
}

func (r *ConfigRepository) FindByID(ctx context.Context, id uint) (*models.ShopConfig, error) {
	var cfg models.ShopConfig
	if err := r.db.WithContext(ctx).First(&cfg, id).Error; err != nil {
		return nil, r.notFound(err)
	}
	return r.decrypt(&cfg)
}

func (r *ConfigRepository) FindByShop(ctx context.Context, shopDomain string) (*models.ShopConfig, error) {
	var cfg models.ShopConfig
	if err := r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).First(&cfg).Error; err != nil {
		return nil, r.notFound(err)
	}
	return r.decrypt(&cfg)
}

// Save inserts or updates cfg keyed by its shop domain.
func (r *ConfigRepository) Save(ctx context.Context, cfg *models.ShopConfig) error {
	stored := *cfg

	var err error
	if stored.KeyPassphrase != "" {
		if stored.KeyPassphrase, err = r.encryptor.Encrypt(stored.KeyPassphrase); err != nil {
			return fmt.Errorf("encrypt key passphrase: %w", err)
		}
	}
	if stored.FFAPIPassword != "" {
		if stored.FFAPIPassword, err = r.encryptor.Encrypt(stored.FFAPIPassword); err != nil {
			return fmt.Errorf("encrypt api password: %w", err)
		}
	}
	stored.UpdatedAt = time.Now()

	if stored.ID == 0 {
		var existing models.ShopConfig
		err := r.db.WithContext(ctx).Where("shop_domain = ?", stored.ShopDomain).First(&existing).Error
		if err == nil {
			stored.ID = existing.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	if err := r.db.WithContext(ctx).Save(&stored).Error; err != nil {
		return err
	}
	cfg.ID = stored.ID
	cfg.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *ConfigRepository) DeleteByShop(ctx context.Context, shopDomain string) error {
	return r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).Delete(&models.ShopConfig{}).Error
}

func (r *ConfigRepository) decrypt(cfg *models.ShopConfig) (*models.ShopConfig, error) {
	var err error
	if cfg.KeyPassphrase != "" {
		if cfg.KeyPassphrase, err = r.encryptor.Decrypt(cfg.KeyPassphrase); err != nil {
			return nil, fmt.Errorf("decrypt key passphrase for %s: %w", cfg.ShopDomain, err)
		}
	}
	if cfg.FFAPIPassword != "" {
		if cfg.FFAPIPassword, err = r.encryptor.Decrypt(cfg.FFAPIPassword); err != nil {
			return nil, fmt.Errorf("decrypt api password for %s: %w", cfg.ShopDomain, err)
		}
	}
	return cfg, nil
}

func (r *ConfigRepository) notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrConfigNotFound
	}
	return err
}
