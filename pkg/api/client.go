// Package api defines the console's view of the honey-potter control plane:
// resource types, the client interface, the HTTP implementation, and a
// stateful mock used by tests and local development.
package api

import "context"

// Client is the interface for communicating with the control plane.
type Client interface {
	// Sensor management
	ListHoneypots(ctx context.Context) ([]Honeypot, error)
	CreateHoneypot(ctx context.Context, req HoneypotCreate) (*Honeypot, error)
	StartHoneypot(ctx context.Context, id string) error
	StopHoneypot(ctx context.Context, id string) error
	DeleteHoneypot(ctx context.Context, id string) error
	BulkDeleteHoneypots(ctx context.Context, ids []string) error

	// Honeytoken management
	ListHoneytokens(ctx context.Context, filter HoneytokenFilter) ([]Honeytoken, error)
	GenerateHoneytokens(ctx context.Context, req HoneytokenGenerate) ([]Honeytoken, error)
	DeleteHoneytoken(ctx context.Context, id string) error
	BulkDeleteHoneytokens(ctx context.Context, ids []string) error

	// Event stream and incident aggregation (read-only)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	ListIncidents(ctx context.Context) ([]Incident, error)

	// Notification settings (singleton per user)
	GetNotificationSettings(ctx context.Context) (*NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, req NotificationSettingsUpdate) (*NotificationSettings, error)

	// Session probe
	Me(ctx context.Context) (*User, error)
}
