package models

import (
	"strings"
	"time"
)

// WebhookEndpoint is a client-registered URL receiving signed event callbacks.
type WebhookEndpoint struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID  int64     `gorm:"column:client_id;not null;index"`
	URL       string    `gorm:"column:url;not null"`
	Secret    string    `gorm:"column:secret;not null"`
	Events    string    `gorm:"column:events;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Subscribes reports whether the endpoint listens for the event. An empty list
// or "*" subscribes to everything.
func (w WebhookEndpoint) Subscribes(event string) bool {
	events := strings.TrimSpace(w.Events)
	if events == "" || events == "*" {
		return true
	}
	for _, candidate := range strings.Split(events, ",") {
		if strings.EqualFold(strings.TrimSpace(candidate), event) {
			return true
		}
	}
	return false
}
