package validation

import (
	"errors"
	"fmt"
	"net/mail"

	"ffbridge/internal/logger"
	"ffbridge/internal/worker/messages"
)

var ErrInvalidWorkItem = errors.New("invalid work item")

// Validator rejects work items that no retry could ever make processable.
type Validator struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *Validator {
	return &Validator{
		logger: logger,
	}
}

func (v *Validator) Validate(env messages.Envelope) error {
	switch env.Type {
	case messages.TypeExportProducts:
		p, err := messages.Decode[messages.ExportProducts](env)
		if err != nil {
			return invalid(err.Error())
		}
		return v.pipelineItem(env, p.ConfigID)

	case messages.TypeUploadFile:
		p, err := messages.Decode[messages.UploadFile](env)
		if err != nil {
			return invalid(err.Error())
		}
		if p.FilePath == "" {
			return invalid("file path is empty")
		}
		return v.pipelineItem(env, p.ConfigID)

	case messages.TypePushImport:
		p, err := messages.Decode[messages.PushImport](env)
		if err != nil {
			return invalid(err.Error())
		}
		return v.pipelineItem(env, p.ConfigID)

	case messages.TypeSendNotification:
		p, err := messages.Decode[messages.SendNotification](env)
		if err != nil {
			return invalid(err.Error())
		}
		if _, err := mail.ParseAddress(p.Recipient); err != nil {
			return invalid(fmt.Sprintf("recipient %q: %v", p.Recipient, err))
		}
		if p.Status != "success" && p.Status != "failure" {
			return invalid(fmt.Sprintf("unknown notification status %q", p.Status))
		}
		return nil
	}

	v.logger.Debug("No validation rules for %s", env.Type)
	return nil
}

func (v *Validator) pipelineItem(env messages.Envelope, configID uint) error {
	if env.ShopDomain == "" {
		return invalid("shop domain is empty")
	}
	if configID == 0 {
		return invalid("config id is missing")
	}
	return nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidWorkItem, reason)
}
