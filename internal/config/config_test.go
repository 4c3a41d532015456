package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, int64(1000), cfg.MinExportSize)
	assert.Equal(t, 25*time.Second, cfg.TransferTimeout)
	assert.Equal(t, "2025-07", cfg.ShopifyAPIVersion)
	assert.Equal(t, "fact-finder-noreply@fact-finder.com", cfg.MailFrom)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("ENV", "production")
	t.Setenv("ENCRYPTION_KEY", "0f3c9a7d-prod-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.True(t, cfg.IsProduction())
}

func TestLoadSplitsCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.shopify.com,https://shop.example")
	t.Setenv("SHOPIFY_API_SECRET", "shpss_secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://admin.shopify.com", "https://shop.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "shpss_secret", cfg.ShopifyAPISecret)
}

func TestLoadRejectsDefaultEncryptionKeyInProduction(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "")
	t.Setenv("ENV", "production")

	_, err := Load()
	require.ErrorIs(t, err, ErrDefaultEncryptionKey)

	t.Setenv("ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "change-me", cfg.EncryptionKey)
}
