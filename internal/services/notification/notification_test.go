package notification

import (
	"context"
	"errors"
	"testing"

	"ffbridge/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestNotifySuccess(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, "fact-finder-noreply@fact-finder.com", logger.NewNop())

	require.NoError(t, svc.Notify(context.Background(), "owner@example.com", StatusSuccess))
	require.Len(t, mailer.sent, 1)

	msg := mailer.sent[0]
	assert.Equal(t, "fact-finder-noreply@fact-finder.com", msg.From)
	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, "[FactFinder] Export completed successfully", msg.Subject)
	assert.Contains(t, msg.Body, "The product export process was successful.")
}

func TestNotifyFailure(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, "noreply@example.com", logger.NewNop())

	require.NoError(t, svc.Notify(context.Background(), "owner@example.com", StatusFailure))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "[FactFinder] Export failed", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Body, "Please verify that the configuration information")
}

func TestNotifyDeliveryError(t *testing.T) {
	svc := NewService(&fakeMailer{err: errors.New("connection refused")}, "noreply@example.com", logger.NewNop())

	err := svc.Notify(context.Background(), "owner@example.com", StatusSuccess)
	var deliveryErr *MailDeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, "owner@example.com", deliveryErr.Recipient)
}

func TestSMTPMailerRejectsInvalidAddress(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25})

	err := mailer.Send(context.Background(), Message{From: "noreply@example.com", To: "not an address"})
	assert.ErrorContains(t, err, "invalid recipient")
}
