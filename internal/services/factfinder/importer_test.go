package factfinder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ffbridge/internal/logger"
	"ffbridge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImportClient struct {
	running   bool
	failOn    string
	imports   []string
	checkedOn string
}

func (f *fakeImportClient) Running(_ context.Context, channel string) (bool, error) {
	f.checkedOn = channel
	return f.running, nil
}

func (f *fakeImportClient) Import(_ context.Context, channel, importType string) error {
	if importType == f.failOn {
		return errors.New("boom")
	}
	f.imports = append(f.imports, importType)
	return nil
}

func configuredShop() *models.ShopConfig {
	cfg := models.NewShopConfig("shop.myshopify.com")
	cfg.FFChannelName = "main"
	cfg.FFAPIServerURL = "https://ff.example.com/fact-finder"
	cfg.FFAPIUsername = "api"
	cfg.FFAPIPassword = "secret"
	return cfg
}

func serviceWith(client *fakeImportClient, built *int) *PushImportService {
	return NewPushImportService(func(serverURL, username, password string) ImportClient {
		*built++
		return client
	}, logger.NewNop())
}

func TestPushImportTriggersAllTypes(t *testing.T) {
	client := &fakeImportClient{}
	built := 0

	require.NoError(t, serviceWith(client, &built).Execute(context.Background(), configuredShop()))
	assert.Equal(t, "main", client.checkedOn)
	assert.Equal(t, []string{"search", "recommendation", "suggest"}, client.imports)
}

func TestPushImportNotConfigured(t *testing.T) {
	for _, reset := range []func(*models.ShopConfig){
		func(c *models.ShopConfig) { c.FFAPIServerURL = "" },
		func(c *models.ShopConfig) { c.FFAPIUsername = "" },
		func(c *models.ShopConfig) { c.FFAPIPassword = "" },
	} {
		cfg := configuredShop()
		reset(cfg)
		built := 0

		assert.NoError(t, serviceWith(&fakeImportClient{}, &built).Execute(context.Background(), cfg))
		assert.Zero(t, built)
	}
}

func TestPushImportAlreadyRunning(t *testing.T) {
	client := &fakeImportClient{running: true}
	built := 0

	err := serviceWith(client, &built).Execute(context.Background(), configuredShop())
	assert.ErrorIs(t, err, ErrImportAlreadyRunning)
	assert.Empty(t, client.imports)
}

func TestPushImportStopsOnFirstFailure(t *testing.T) {
	client := &fakeImportClient{failOn: "recommendation"}
	built := 0

	err := serviceWith(client, &built).Execute(context.Background(), configuredShop())
	assert.Error(t, err)
	assert.Equal(t, []string{"search"}, client.imports)
}

func TestRestClient(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api", user)
		assert.Equal(t, "secret", pass)

		requests = append(requests, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		switch r.URL.Path {
		case "/fact-finder/rest/v5/import/running":
			w.Write([]byte("false"))
		case "/fact-finder/rest/v5/records/main/compare":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized","errorDescription":"Bad credentials"}`))
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := NewRestClient(server.URL+"/fact-finder/", "api", "secret", 5*time.Second)
	ctx := context.Background()

	running, err := client.Running(ctx, "main")
	require.NoError(t, err)
	assert.False(t, running)

	require.NoError(t, client.Import(ctx, "main", "search"))

	err = client.Ping(ctx, "main")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Bad credentials", apiErr.Message)

	assert.Equal(t, []string{
		"GET /fact-finder/rest/v5/import/running?channel=main",
		"POST /fact-finder/rest/v5/import/search?channel=main",
		"GET /fact-finder/rest/v5/records/main/compare?",
	}, requests)
}
