package validation

import (
	"testing"

	"ffbridge/internal/logger"
	"ffbridge/internal/worker/messages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	v := New(logger.NewNop())

	tests := []struct {
		name    string
		typ     messages.Type
		shop    string
		payload interface{}
		valid   bool
	}{
		{"export", messages.TypeExportProducts, "shop.myshopify.com", messages.ExportProducts{ConfigID: 1}, true},
		{"export without shop", messages.TypeExportProducts, "", messages.ExportProducts{ConfigID: 1}, false},
		{"export without config", messages.TypeExportProducts, "shop.myshopify.com", messages.ExportProducts{}, false},
		{"upload without file", messages.TypeUploadFile, "shop.myshopify.com", messages.UploadFile{ConfigID: 1}, false},
		{"upload", messages.TypeUploadFile, "shop.myshopify.com", messages.UploadFile{ConfigID: 1, FilePath: "/tmp/f.csv"}, true},
		{"push import", messages.TypePushImport, "shop.myshopify.com", messages.PushImport{ConfigID: 1}, true},
		{"notification", messages.TypeSendNotification, "", messages.SendNotification{Recipient: "a@example.com", Status: "failure"}, true},
		{"notification bad recipient", messages.TypeSendNotification, "", messages.SendNotification{Recipient: "nope", Status: "failure"}, false},
		{"notification bad status", messages.TypeSendNotification, "", messages.SendNotification{Recipient: "a@example.com", Status: "partial"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := messages.New("run", tt.typ, tt.shop, tt.payload)
			require.NoError(t, err)

			err = v.Validate(env)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidWorkItem)
			}
		})
	}
}

func TestValidateUndecodablePayload(t *testing.T) {
	err := New(logger.NewNop()).Validate(messages.Envelope{Type: messages.TypePushImport, Payload: []byte("[")})
	assert.ErrorIs(t, err, ErrInvalidWorkItem)
}
