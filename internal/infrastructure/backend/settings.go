package backend

import (
	"context"
	"net/http"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// Settings is the client of /company-settings.
type Settings struct{ conn *Conn }

func NewSettings(conn *Conn) *Settings { return &Settings{conn: conn} }

func (s *Settings) Details(ctx context.Context) (*domain.TenantSettings, error) {
	var out wireCompanySettings
	if err := s.conn.get(ctx, "settings", "/company-settings/details", nil, &out); err != nil {
		return nil, err
	}
	st := out.toDomain()
	return &st, nil
}

// UpdateWebhook sets the tenant's webhook. An empty url clears it.
func (s *Settings) UpdateWebhook(ctx context.Context, webhookURL string) (*domain.TenantSettings, error) {
	body := struct {
		WebhookURL *string `json:"webhook_url"`
	}{}
	if webhookURL != "" {
		body.WebhookURL = &webhookURL
	}

	var out wireCompanySettings
	if err := s.conn.send(ctx, http.MethodPut, "settings", "/company-settings/webhook", body, &out); err != nil {
		return nil, err
	}
	st := out.toDomain()
	return &st, nil
}
