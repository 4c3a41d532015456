package notification

import (
	"context"
	"fmt"

	"ffbridge/internal/logger"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

const (
	successSubject = "[FactFinder] Export completed successfully"
	failureSubject = "[FactFinder] Export failed"

	successBody = `The product export process was successful.

Best regards,
FactFinder Team

[This message is automatically generated. Please do not reply.]`

	failureBody = `Unfortunately, the export of products from your store to FactFinder failed. 
Please verify that the configuration information in the app is correct and try again.

Best regards,
FactFinder Team

[This message is automatically generated. Please do not reply.]`
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type MailDeliveryError struct {
	Recipient string
	Err       error
}

func (e *MailDeliveryError) Error() string {
	return fmt.Sprintf("failed to send notification e-mail to %s: %v", e.Recipient, e.Err)
}

func (e *MailDeliveryError) Unwrap() error {
	return e.Err
}

// Service sends the export outcome e-mails.
type Service struct {
	mailer Mailer
	from   string
	logger *logger.Logger
}

func NewService(mailer Mailer, from string, logger *logger.Logger) *Service {
	return &Service{
		mailer: mailer,
		from:   from,
		logger: logger,
	}
}

// Notify sends the template matching status. Anything other than
// StatusSuccess is reported as a failure.
func (s *Service) Notify(ctx context.Context, recipient string, status Status) error {
	msg := Message{From: s.from, To: recipient, Subject: failureSubject, Body: failureBody}
	if status == StatusSuccess {
		msg.Subject = successSubject
		msg.Body = successBody
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send notification e-mail: %v", err)
		return &MailDeliveryError{Recipient: recipient, Err: err}
	}

	s.logger.Info("Notification e-mail sent to %s (%s)", recipient, msg.Subject)
	return nil
}
