package marketplace

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/groow/smoke/internal/domain/models"
)

const integrationsBase = "/vendor/integrations"

// VendorIntegrationAPI wraps third-party integration, webhook and API key management.
type VendorIntegrationAPI struct {
	c *Client
}

// VendorIntegrations returns the vendor integration module.
func (c *Client) VendorIntegrations() *VendorIntegrationAPI {
	return &VendorIntegrationAPI{c: c}
}

// IntegrationFilter narrows ListIntegrations.
type IntegrationFilter struct {
	Category string
	Status   string
}

// CreateIntegrationRequest is the body of POST /vendor/integrations.
type CreateIntegrationRequest struct {
	Name     string                     `json:"name"`
	Provider string                     `json:"provider"`
	Category string                     `json:"category"`
	Type     string                     `json:"type"`
	Config   models.IntegrationConfig   `json:"config"`
	Settings models.IntegrationSettings `json:"settings"`
}

// CreateWebhookRequest is the body of POST /vendor/integrations/webhooks.
type CreateWebhookRequest struct {
	Name        string             `json:"name"`
	URL         string             `json:"url"`
	Events      []string           `json:"events"`
	Secret      string             `json:"secret,omitempty"`
	Headers     map[string]string  `json:"headers,omitempty"`
	RetryPolicy models.RetryPolicy `json:"retryPolicy"`
}

// CreateAPIKeyRequest is the body of POST /vendor/integrations/api-keys.
type CreateAPIKeyRequest struct {
	Name        string           `json:"name"`
	Permissions []string         `json:"permissions"`
	Scopes      []string         `json:"scopes,omitempty"`
	RateLimit   models.RateLimit `json:"rateLimit"`
	IPWhitelist []string         `json:"ipWhitelist,omitempty"`
	ExpiresAt   string           `json:"expiresAt,omitempty"`
}

// TestResult is returned by connection and webhook test endpoints.
type TestResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ResponseTime int    `json:"responseTime"`
	StatusCode   int    `json:"statusCode,omitempty"`
}

// ListIntegrations returns the vendor's integrations matching f.
func (a *VendorIntegrationAPI) ListIntegrations(ctx context.Context, f IntegrationFilter) ([]models.Integration, error) {
	query := map[string]string{}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	var out []models.Integration
	err := a.c.call(ctx, http.MethodGet, integrationsBase, query, nil, &out)
	return out, err
}

// GetIntegration fetches one integration.
func (a *VendorIntegrationAPI) GetIntegration(ctx context.Context, id string) (*models.Integration, error) {
	var out models.Integration
	if err := a.c.call(ctx, http.MethodGet, integrationsBase+"/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateIntegration registers a new integration.
func (a *VendorIntegrationAPI) CreateIntegration(ctx context.Context, req CreateIntegrationRequest) (*models.Integration, error) {
	var out models.Integration
	if err := a.c.call(ctx, http.MethodPost, integrationsBase, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateIntegration patches an integration with updates.
func (a *VendorIntegrationAPI) UpdateIntegration(ctx context.Context, id string, updates map[string]any) (*models.Integration, error) {
	var out models.Integration
	if err := a.c.call(ctx, http.MethodPut, integrationsBase+"/"+url.PathEscape(id), nil, updates, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestIntegration checks the provider connection.
func (a *VendorIntegrationAPI) TestIntegration(ctx context.Context, id string) (*TestResult, error) {
	var out TestResult
	if err := a.c.call(ctx, http.MethodPost, integrationsBase+"/"+url.PathEscape(id)+"/test", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleIntegration enables or disables an integration.
func (a *VendorIntegrationAPI) ToggleIntegration(ctx context.Context, id string, enabled bool) error {
	return a.c.call(ctx, http.MethodPut, integrationsBase+"/"+url.PathEscape(id)+"/toggle", nil, map[string]bool{"enabled": enabled}, nil)
}

// DeleteIntegration removes an integration.
func (a *VendorIntegrationAPI) DeleteIntegration(ctx context.Context, id string) error {
	return a.c.call(ctx, http.MethodDelete, integrationsBase+"/"+url.PathEscape(id), nil, nil, nil)
}

// SyncIntegration starts a sync of one entity and returns the job.
func (a *VendorIntegrationAPI) SyncIntegration(ctx context.Context, id, entity string) (*models.DataSync, error) {
	var out models.DataSync
	body := map[string]string{}
	if entity != "" {
		body["entity"] = entity
	}
	if err := a.c.call(ctx, http.MethodPost, integrationsBase+"/"+url.PathEscape(id)+"/sync", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListWebhooks returns the vendor's webhook endpoints.
func (a *VendorIntegrationAPI) ListWebhooks(ctx context.Context) ([]models.WebhookEndpoint, error) {
	var out []models.WebhookEndpoint
	err := a.c.call(ctx, http.MethodGet, integrationsBase+"/webhooks", nil, nil, &out)
	return out, err
}

// CreateWebhook registers a webhook endpoint.
func (a *VendorIntegrationAPI) CreateWebhook(ctx context.Context, req CreateWebhookRequest) (*models.WebhookEndpoint, error) {
	var out models.WebhookEndpoint
	if err := a.c.call(ctx, http.MethodPost, integrationsBase+"/webhooks", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteWebhook removes a webhook endpoint.
func (a *VendorIntegrationAPI) DeleteWebhook(ctx context.Context, id string) error {
	return a.c.call(ctx, http.MethodDelete, integrationsBase+"/webhooks/"+url.PathEscape(id), nil, nil, nil)
}

// TestWebhook sends a sample event to the endpoint.
func (a *VendorIntegrationAPI) TestWebhook(ctx context.Context, id, event string) (*TestResult, error) {
	var out TestResult
	if err := a.c.call(ctx, http.MethodPost, integrationsBase+"/webhooks/"+url.PathEscape(id)+"/test", nil, map[string]string{"event": event}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAPIKeys returns the vendor's API keys.
func (a *VendorIntegrationAPI) ListAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	var out []models.APIKey
	err := a.c.call(ctx, http.MethodGet, integrationsBase+"/api-keys", nil, nil, &out)
	return out, err
}

// CreateAPIKey returns the new key; the full secret is only present in this response.
func (a *VendorIntegrationAPI) CreateAPIKey(ctx context.Context, req CreateAPIKeyRequest) (*models.APIKey, error) {
	var out models.APIKey
	if err := a.c.call(ctx, http.MethodPost, integrationsBase+"/api-keys", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeAPIKey disables an API key.
func (a *VendorIntegrationAPI) RevokeAPIKey(ctx context.Context, id string) error {
	return a.c.call(ctx, http.MethodPut, integrationsBase+"/api-keys/"+url.PathEscape(id)+"/revoke", nil, nil, nil)
}

// RegenerateAPIKey issues a new secret for an API key.
func (a *VendorIntegrationAPI) RegenerateAPIKey(ctx context.Context, id string) (*models.APIKey, error) {
	var out models.APIKey
	if err := a.c.call(ctx, http.MethodPost, integrationsBase+"/api-keys/"+url.PathEscape(id)+"/regenerate", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDataSyncs pages through sync jobs of one integration; empty integrationID lists all.
func (a *VendorIntegrationAPI) ListDataSyncs(ctx context.Context, integrationID string, page, limit int) (models.Page[models.DataSync], error) {
	query := pageQuery(page, limit)
	if integrationID != "" {
		query["integrationId"] = integrationID
	}
	var out models.Page[models.DataSync]
	err := a.c.call(ctx, http.MethodGet, integrationsBase+"/data-syncs", query, nil, &out)
	return out, err
}

// CancelDataSync stops a running data sync.
func (a *VendorIntegrationAPI) CancelDataSync(ctx context.Context, id string) error {
	return a.c.call(ctx, http.MethodPost, integrationsBase+"/data-syncs/"+url.PathEscape(id)+"/cancel", nil, nil, nil)
}

// Health reports the status of every integration.
func (a *VendorIntegrationAPI) Health(ctx context.Context) (*models.IntegrationHealth, error) {
	var out models.IntegrationHealth
	if err := a.c.call(ctx, http.MethodGet, integrationsBase+"/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageQuery(page, limit int) map[string]string {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return map[string]string{"page": strconv.Itoa(page), "limit": strconv.Itoa(limit)}
}
