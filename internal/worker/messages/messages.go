package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeExportProducts   Type = "export_products"
	TypeUploadFile       Type = "upload_file"
	TypePushImport       Type = "push_import"
	TypeSendNotification Type = "send_notification"
)

// Envelope is the wire format of every work item on the queue.
type Envelope struct {
	ID         string          `json:"id"`
	RunID      string          `json:"run_id"`
	Type       Type            `json:"type"`
	ShopDomain string          `json:"shop_domain"`
	Attempt    int             `json:"attempt"`
	CreatedAt  time.Time       `json:"created_at"`
	Payload    json.RawMessage `json:"payload"`
}

type ExportProducts struct {
	ConfigID          uint   `json:"config_id"`
	SalesChannelID    string `json:"sales_channel_id"`
	Locale            string `json:"locale"`
	NotificationEmail string `json:"notification_email"`
}

type UploadFile struct {
	ConfigID          uint   `json:"config_id"`
	FilePath          string `json:"file_path"`
	NotificationEmail string `json:"notification_email"`
}

type PushImport struct {
	ConfigID          uint   `json:"config_id"`
	NotificationEmail string `json:"notification_email"`
}

type SendNotification struct {
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
}

// Publisher puts work items on the queue.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// New wraps payload in a fresh envelope belonging to runID.
func New(runID string, typ Type, shop string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", typ, err)
	}
	return Envelope{
		ID:         uuid.NewString(),
		RunID:      runID,
		Type:       typ,
		ShopDomain: shop,
		CreatedAt:  time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Redelivery returns a copy of env for the next attempt.
func (e Envelope) Redelivery() Envelope {
	next := e
	next.ID = uuid.NewString()
	next.Attempt = e.Attempt + 1
	next.CreatedAt = time.Now().UTC()
	return next
}

func Decode[T any](env Envelope) (T, error) {
	var out T
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	return out, nil
}

// FailureRecipient returns the address to notify when the run carrying env
// fails for good, or "" when the work item carries none.
func FailureRecipient(env Envelope) string {
	var payload struct {
		NotificationEmail string `json:"notification_email"`
	}
	if json.Unmarshal(env.Payload, &payload) != nil {
		return ""
	}
	return payload.NotificationEmail
}
