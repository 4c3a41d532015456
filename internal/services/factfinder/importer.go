package factfinder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ffbridge/internal/logger"
	"ffbridge/internal/models"
)

// ImportTypes are triggered in this order on every push import.
var ImportTypes = []string{"search", "recommendation", "suggest"}

var ErrImportAlreadyRunning = errors.New("push import is currently running, make sure it has finished before starting a new one")

type ImportClient interface {
	Running(ctx context.Context, channel string) (bool, error)
	Import(ctx context.Context, channel, importType string) error
}

// ClientFactory builds an import client for one set of API credentials.
type ClientFactory func(serverURL, username, password string) ImportClient

func RestClientFactory(timeout time.Duration) ClientFactory {
	return func(serverURL, username, password string) ImportClient {
		return NewRestClient(serverURL, username, password, timeout)
	}
}

type PushImportService struct {
	newClient ClientFactory
	logger    *logger.Logger
}

func NewPushImportService(newClient ClientFactory, logger *logger.Logger) *PushImportService {
	return &PushImportService{
		newClient: newClient,
		logger:    logger,
	}
}

// Execute triggers every import type for the configured channel. It does
// nothing when the API connection is not configured and fails with
// ErrImportAlreadyRunning without triggering anything if an import is in
// progress. Imports already triggered are not rolled back when a later one
// fails.
func (s *PushImportService) Execute(ctx context.Context, cfg *models.ShopConfig) error {
	if !cfg.ImportConfigured() {
		s.logger.Debug("Push import not configured for %s, skipping", cfg.ShopDomain)
		return nil
	}

	client := s.newClient(cfg.FFAPIServerURL, cfg.FFAPIUsername, cfg.FFAPIPassword)

	running, err := client.Running(ctx, cfg.FFChannelName)
	if err != nil {
		return fmt.Errorf("failed to check import status: %w", err)
	}
	if running {
		return ErrImportAlreadyRunning
	}

	for _, importType := range ImportTypes {
		if err := client.Import(ctx, cfg.FFChannelName, importType); err != nil {
			return fmt.Errorf("failed to trigger %s import: %w", importType, err)
		}
		s.logger.Info("Triggered %s import for channel %s", importType, cfg.FFChannelName)
	}
	return nil
}
