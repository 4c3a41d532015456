package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ffbridge/internal/logger"
	"ffbridge/internal/models"
)

var ErrUploadFailed = errors.New("upload failed")

// Target holds everything needed to open a transfer session.
type Target struct {
	Host       string
	Port       int
	Username   string
	PrivateKey string
	Passphrase string
	Root       string
	Timeout    time.Duration
}

func (t Target) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// Session writes files relative to the target root.
type Session interface {
	WriteStream(remoteName string, r io.Reader) error
	Close() error
}

type Connector interface {
	Connect(ctx context.Context, target Target) (Session, error)
}

type Service struct {
	connectors map[models.Protocol]Connector
	timeout    time.Duration
	logger     *logger.Logger
}

type Option func(*Service)

// WithConnector replaces the connector used for a protocol.
func WithConnector(protocol models.Protocol, c Connector) Option {
	return func(s *Service) {
		s.connectors[protocol] = c
	}
}

func NewService(timeout time.Duration, logger *logger.Logger, opts ...Option) *Service {
	s := &Service{
		connectors: map[models.Protocol]Connector{
			models.ProtocolFTP:  FTPConnector{},
			models.ProtocolSFTP: SFTPConnector{},
		},
		timeout: timeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RemoteFilename is the name FactFinder expects for a channel's product feed.
func RemoteFilename(channel string) string {
	return fmt.Sprintf("export.productData.%s.csv", channel)
}

// TargetFor resolves connection parameters from a shop configuration,
// applying protocol defaults.
func (s *Service) TargetFor(cfg *models.ShopConfig) Target {
	port := cfg.Port
	if port == 0 {
		port = 22
		if cfg.Protocol == models.ProtocolFTP {
			port = 21
		}
	}

	root := cfg.RootDirectory
	if root == "" {
		root = "/"
	}

	return Target{
		Host:       cfg.ServerURL,
		Port:       port,
		Username:   cfg.Username,
		PrivateKey: strings.TrimSpace(cfg.PrivateKeyContent),
		Passphrase: cfg.KeyPassphrase,
		Root:       root,
		Timeout:    s.timeout,
	}
}

// Upload streams localPath to remoteName on the configured server. Any failure
// is logged and reported as false.
func (s *Service) Upload(ctx context.Context, cfg *models.ShopConfig, localPath, remoteName string) bool {
	if err := s.upload(ctx, cfg, localPath, remoteName); err != nil {
		s.logger.Error("Upload of %s to %s for %s failed: %v", localPath, cfg.ServerURL, cfg.ShopDomain, err)
		return false
	}
	return true
}

func (s *Service) upload(ctx context.Context, cfg *models.ShopConfig, localPath, remoteName string) error {
	connector, ok := s.connectors[cfg.Protocol]
	if !ok {
		return fmt.Errorf("unsupported protocol %q", cfg.Protocol)
	}

	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", localPath, err)
	}
	defer file.Close()

	target := s.TargetFor(cfg)
	session, err := connector.Connect(ctx, target)
	if err != nil {
		return fmt.Errorf("connect %s: %w", target.Addr(), err)
	}
	defer session.Close()

	if err := session.WriteStream(remoteName, file); err != nil {
		return fmt.Errorf("write %s: %w", remoteName, err)
	}

	s.logger.Info("Uploaded %s to %s%s", localPath, target.Addr(), target.Root)
	return nil
}
