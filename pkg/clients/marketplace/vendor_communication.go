package marketplace

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/groow/smoke/internal/domain/models"
)

const communicationBase = "/vendor/communication"

// VendorCommunicationAPI wraps vendor messaging, templates, broadcasts and auto-responders.
type VendorCommunicationAPI struct {
	c *Client
}

// VendorCommunication returns the vendor communication module.
func (c *Client) VendorCommunication() *VendorCommunicationAPI {
	return &VendorCommunicationAPI{c: c}
}

// ConversationFilter narrows ListConversations.
type ConversationFilter struct {
	Status     string
	Priority   string
	Category   string
	Search     string
	UnreadOnly bool
}

// SendMessageRequest is the body of POST /vendor/communication/messages.
type SendMessageRequest struct {
	ConversationID string   `json:"conversationId,omitempty"`
	RecipientID    string   `json:"recipientId"`
	RecipientType  string   `json:"recipientType"`
	Subject        string   `json:"subject,omitempty"`
	Content        string   `json:"content"`
	Type           string   `json:"type,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	RelatedOrder   string   `json:"relatedOrder,omitempty"`
	RelatedProduct string   `json:"relatedProduct,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// CreateBroadcastRequest is the body of POST /vendor/communication/broadcasts.
type CreateBroadcastRequest struct {
	Title       string                   `json:"title"`
	Content     string                   `json:"content"`
	Type        string                   `json:"type"`
	Audience    models.BroadcastAudience `json:"audience"`
	Channels    []string                 `json:"channels"`
	ScheduledAt string                   `json:"scheduledAt,omitempty"`
}

// ListConversations returns one page of conversations matching f.
func (a *VendorCommunicationAPI) ListConversations(ctx context.Context, page, limit int, f ConversationFilter) (models.Page[models.Conversation], error) {
	query := pageQuery(page, limit)
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Priority != "" {
		query["priority"] = f.Priority
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Search != "" {
		query["search"] = f.Search
	}
	if f.UnreadOnly {
		query["unreadOnly"] = strconv.FormatBool(true)
	}

	var out models.Page[models.Conversation]
	err := a.c.call(ctx, http.MethodGet, communicationBase+"/conversations", query, nil, &out)
	return out, err
}

// GetConversation fetches one conversation.
func (a *VendorCommunicationAPI) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var out models.Conversation
	if err := a.c.call(ctx, http.MethodGet, communicationBase+"/conversations/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages returns one page of a conversation's messages.
func (a *VendorCommunicationAPI) ListMessages(ctx context.Context, conversationID string, page, limit int) (models.Page[models.VendorMessage], error) {
	var out models.Page[models.VendorMessage]
	err := a.c.call(ctx, http.MethodGet, communicationBase+"/conversations/"+url.PathEscape(conversationID)+"/messages", pageQuery(page, limit), nil, &out)
	return out, err
}

// SendMessage posts a new message.
func (a *VendorCommunicationAPI) SendMessage(ctx context.Context, req SendMessageRequest) (*models.VendorMessage, error) {
	var out models.VendorMessage
	if err := a.c.call(ctx, http.MethodPost, communicationBase+"/messages", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reply answers an existing message.
func (a *VendorCommunicationAPI) Reply(ctx context.Context, messageID, content string) (*models.VendorMessage, error) {
	var out models.VendorMessage
	if err := a.c.call(ctx, http.MethodPost, communicationBase+"/messages/"+url.PathEscape(messageID)+"/reply", nil, map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkConversationRead clears the unread counter of a conversation.
func (a *VendorCommunicationAPI) MarkConversationRead(ctx context.Context, id string) error {
	return a.c.call(ctx, http.MethodPut, communicationBase+"/conversations/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

// UpdateConversationStatus moves a conversation to status.
func (a *VendorCommunicationAPI) UpdateConversationStatus(ctx context.Context, id, status, note string) (*models.Conversation, error) {
	body := map[string]string{"status": status}
	if note != "" {
		body["note"] = note
	}
	var out models.Conversation
	if err := a.c.call(ctx, http.MethodPut, communicationBase+"/conversations/"+url.PathEscape(id)+"/status", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddTags labels a conversation.
func (a *VendorCommunicationAPI) AddTags(ctx context.Context, conversationID string, tags []string) error {
	return a.c.call(ctx, http.MethodPost, communicationBase+"/conversations/"+url.PathEscape(conversationID)+"/tags", nil, map[string][]string{"tags": tags}, nil)
}

// ListTemplates returns the vendor's message templates.
func (a *VendorCommunicationAPI) ListTemplates(ctx context.Context) ([]models.NotificationTemplate, error) {
	var out []models.NotificationTemplate
	err := a.c.call(ctx, http.MethodGet, communicationBase+"/notification-templates", nil, nil, &out)
	return out, err
}

// SendTemplate delivers a template to recipients with variable substitutions.
func (a *VendorCommunicationAPI) SendTemplate(ctx context.Context, templateID string, recipients []string, variables map[string]string) error {
	body := map[string]any{"recipients": recipients, "variables": variables}
	return a.c.call(ctx, http.MethodPost, communicationBase+"/notification-templates/"+url.PathEscape(templateID)+"/send", nil, body, nil)
}

// ListBroadcasts returns one page of broadcasts.
func (a *VendorCommunicationAPI) ListBroadcasts(ctx context.Context, page, limit int, status string) (models.Page[models.BroadcastMessage], error) {
	query := pageQuery(page, limit)
	if status != "" {
		query["status"] = status
	}
	var out models.Page[models.BroadcastMessage]
	err := a.c.call(ctx, http.MethodGet, communicationBase+"/broadcasts", query, nil, &out)
	return out, err
}

// CreateBroadcast drafts or schedules a broadcast.
func (a *VendorCommunicationAPI) CreateBroadcast(ctx context.Context, req CreateBroadcastRequest) (*models.BroadcastMessage, error) {
	var out models.BroadcastMessage
	if err := a.c.call(ctx, http.MethodPost, communicationBase+"/broadcasts", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendBroadcast sends a drafted broadcast now.
func (a *VendorCommunicationAPI) SendBroadcast(ctx context.Context, id string) error {
	return a.c.call(ctx, http.MethodPost, communicationBase+"/broadcasts/"+url.PathEscape(id)+"/send", nil, nil, nil)
}

// CancelBroadcast cancels a scheduled broadcast.
func (a *VendorCommunicationAPI) CancelBroadcast(ctx context.Context, id string) error {
	return a.c.call(ctx, http.MethodPost, communicationBase+"/broadcasts/"+url.PathEscape(id)+"/cancel", nil, nil, nil)
}

// ListAutoResponders returns the configured auto responders.
func (a *VendorCommunicationAPI) ListAutoResponders(ctx context.Context) ([]models.AutoResponder, error) {
	var out []models.AutoResponder
	err := a.c.call(ctx, http.MethodGet, communicationBase+"/auto-responders", nil, nil, &out)
	return out, err
}

// ToggleAutoResponder enables or disables an auto responder.
func (a *VendorCommunicationAPI) ToggleAutoResponder(ctx context.Context, id string, active bool) (*models.AutoResponder, error) {
	var out models.AutoResponder
	if err := a.c.call(ctx, http.MethodPut, communicationBase+"/auto-responders/"+url.PathEscape(id)+"/toggle", nil, map[string]bool{"active": active}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the messaging dashboard overview for a period such as "7d" or "30d".
func (a *VendorCommunicationAPI) Stats(ctx context.Context, period string) (*models.CommunicationStats, error) {
	query := map[string]string{}
	if period != "" {
		query["period"] = period
	}
	var out models.CommunicationStats
	if err := a.c.call(ctx, http.MethodGet, communicationBase+"/stats", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
