package models

import "time"

// Integration is a vendor's connection to a third-party service.
type Integration struct {
	ID          string              `json:"id"`
	VendorID    string              `json:"vendorId"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug,omitempty"`
	Description string              `json:"description,omitempty"`
	Provider    string              `json:"provider"`
	Category    string              `json:"category"`
	Type        string              `json:"type"`
	Status      string              `json:"status"`
	Config      IntegrationConfig   `json:"config"`
	Settings    IntegrationSettings `json:"settings"`
	Features    []string            `json:"features,omitempty"`
	Permissions []string            `json:"permissions,omitempty"`
	LastSync    *SyncStatus         `json:"lastSync,omitempty"`
	Metrics     IntegrationMetrics  `json:"metrics"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// IntegrationConfig holds provider connection settings.
type IntegrationConfig struct {
	APIURL       string         `json:"apiUrl,omitempty"`
	APIKey       string         `json:"apiKey,omitempty"`
	SecretKey    string         `json:"secretKey,omitempty"`
	Username     string         `json:"username,omitempty"`
	Password     string         `json:"password,omitempty"`
	WebhookURL   string         `json:"webhookUrl,omitempty"`
	CustomFields map[string]any `json:"customFields,omitempty"`
}

// IntegrationSettings tunes synchronisation behavior.
type IntegrationSettings struct {
	SyncFrequency string            `json:"syncFrequency,omitempty"`
	DataMapping   map[string]string `json:"dataMapping,omitempty"`
	RetryAttempts int               `json:"retryAttempts,omitempty"`
	Timeout       int               `json:"timeout,omitempty"`
	BatchSize     int               `json:"batchSize,omitempty"`
	EnableLogging bool              `json:"enableLogging,omitempty"`
}

// SyncStatus summarises the latest synchronisation.
type SyncStatus struct {
	Timestamp        time.Time `json:"timestamp"`
	Status           string    `json:"status"`
	RecordsProcessed int       `json:"recordsProcessed"`
	Errors           []string  `json:"errors,omitempty"`
}

// IntegrationMetrics tracks sync counters.
type IntegrationMetrics struct {
	TotalSyncs          int     `json:"totalSyncs"`
	SuccessfulSyncs     int     `json:"successfulSyncs"`
	FailedSyncs         int     `json:"failedSyncs"`
	Uptime              float64 `json:"uptime"`
	AverageResponseTime float64 `json:"averageResponseTime"`
}

// WebhookEndpoint receives marketplace events on behalf of a vendor.
type WebhookEndpoint struct {
	ID           string            `json:"id"`
	VendorID     string            `json:"vendorId"`
	Name         string            `json:"name"`
	URL          string            `json:"url"`
	Events       []string          `json:"events"`
	Status       string            `json:"status"`
	Secret       string            `json:"secret,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	RetryPolicy  RetryPolicy       `json:"retryPolicy"`
	LastDelivery *WebhookDelivery  `json:"lastDelivery,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// RetryPolicy controls webhook redelivery.
type RetryPolicy struct {
	MaxRetries        int     `json:"maxRetries"`
	RetryInterval     int     `json:"retryInterval"`
	BackoffMultiplier float64 `json:"backoffMultiplier"`
}

// WebhookDelivery records the most recent delivery attempt.
type WebhookDelivery struct {
	Timestamp    time.Time `json:"timestamp"`
	Status       string    `json:"status"`
	ResponseCode int       `json:"responseCode,omitempty"`
	ResponseTime int       `json:"responseTime,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// APIKey grants programmatic access to a vendor account.
type APIKey struct {
	ID          string     `json:"id"`
	VendorID    string     `json:"vendorId"`
	Name        string     `json:"name"`
	KeyPrefix   string     `json:"keyPrefix"`
	Key         string     `json:"key,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	Scopes      []string   `json:"scopes,omitempty"`
	RateLimit   RateLimit  `json:"rateLimit"`
	IPWhitelist []string   `json:"ipWhitelist,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// RateLimit caps API key usage.
type RateLimit struct {
	RequestsPerMinute int `json:"requestsPerMinute"`
	RequestsPerHour   int `json:"requestsPerHour"`
	RequestsPerDay    int `json:"requestsPerDay"`
}

// DataSync is an import or export job between an integration and the marketplace.
type DataSync struct {
	ID            string       `json:"id"`
	IntegrationID string       `json:"integrationId"`
	Type          string       `json:"type"`
	Entity        string       `json:"entity"`
	Status        string       `json:"status"`
	Progress      SyncProgress `json:"progress"`
	StartedAt     *time.Time   `json:"startedAt,omitempty"`
	CompletedAt   *time.Time   `json:"completedAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// SyncProgress counts processed records.
type SyncProgress struct {
	TotalRecords      int     `json:"totalRecords"`
	ProcessedRecords  int     `json:"processedRecords"`
	SuccessfulRecords int     `json:"successfulRecords"`
	FailedRecords     int     `json:"failedRecords"`
	Percentage        float64 `json:"percentage"`
}

// IntegrationHealth is the aggregated status returned by /vendor/integrations/health.
type IntegrationHealth struct {
	Overall      string `json:"overall"`
	Integrations []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"integrations"`
}

// Participant is a member of a vendor conversation.
type Participant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsOnline bool   `json:"isOnline"`
}

// Conversation is a message thread between a vendor and customers or admins.
type Conversation struct {
	ID           string        `json:"id"`
	Participants []Participant `json:"participants"`
	Subject      string        `json:"subject"`
	UnreadCount  int           `json:"unreadCount"`
	Status       string        `json:"status"`
	Priority     string        `json:"priority"`
	Category     string        `json:"category"`
	Tags         []string      `json:"tags,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// VendorMessage is one message inside a conversation.
type VendorMessage struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	SenderType     string     `json:"senderType"`
	RecipientID    string     `json:"recipientId"`
	RecipientType  string     `json:"recipientType"`
	Subject        string     `json:"subject,omitempty"`
	Content        string     `json:"content"`
	Type           string     `json:"type"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	Tags           []string   `json:"tags,omitempty"`
	IsRead         bool       `json:"isRead"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// TemplateVariable is a placeholder accepted by a notification template.
type TemplateVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
}

// NotificationTemplate is a reusable vendor notification.
type NotificationTemplate struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Subject   string             `json:"subject"`
	Content   string             `json:"content"`
	Type      string             `json:"type"`
	Category  string             `json:"category"`
	Variables []TemplateVariable `json:"variables,omitempty"`
	Active    bool               `json:"active"`
	VendorID  string             `json:"vendorId"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// BroadcastAudience selects broadcast recipients.
type BroadcastAudience struct {
	Type        string         `json:"type"`
	Criteria    map[string]any `json:"criteria,omitempty"`
	CustomerIDs []string       `json:"customerIds,omitempty"`
}

// BroadcastStats counts broadcast delivery outcomes.
type BroadcastStats struct {
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Opened    int `json:"opened"`
	Clicked   int `json:"clicked"`
	Failed    int `json:"failed"`
}

// BroadcastMessage is a one-to-many vendor announcement.
type BroadcastMessage struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Type        string            `json:"type"`
	Audience    BroadcastAudience `json:"audience"`
	Channels    []string          `json:"channels"`
	ScheduledAt *time.Time        `json:"scheduledAt,omitempty"`
	Status      string            `json:"status"`
	Stats       BroadcastStats    `json:"stats"`
	CreatedAt   time.Time         `json:"createdAt"`
	SentAt      *time.Time        `json:"sentAt,omitempty"`
}

// AutoResponder replies automatically when its trigger matches.
type AutoResponder struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Trigger  struct {
		Type       string         `json:"type"`
		Conditions map[string]any `json:"conditions,omitempty"`
	} `json:"trigger"`
	Response struct {
		Type    string `json:"type"`
		Content string `json:"content"`
		Delay   int    `json:"delay,omitempty"`
	} `json:"response"`
	Active    bool      `json:"active"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommunicationStats is the overview shown on the vendor messaging dashboard.
type CommunicationStats struct {
	Overview struct {
		TotalConversations   int     `json:"totalConversations"`
		ActiveConversations  int     `json:"activeConversations"`
		AverageResponseTime  float64 `json:"averageResponseTime"`
		ResolutionRate       float64 `json:"resolutionRate"`
		CustomerSatisfaction float64 `json:"customerSatisfaction"`
	} `json:"overview"`
}

// Page is the paginated list envelope used by list endpoints.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
