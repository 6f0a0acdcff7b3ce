package api

import "time"

// Threat levels attached to events and incidents.
const (
	LevelRecon      = 1 // port scanning, probing
	LevelBruteForce = 2 // credential guessing
	LevelCompromise = 3 // honeytoken use, command execution
)

// LevelName returns the human-readable label for a threat level.
func LevelName(level int) string {
	switch level {
	case LevelRecon:
		return "reconnaissance"
	case LevelBruteForce:
		return "brute-force"
	case LevelCompromise:
		return "compromise"
	default:
		return "unknown"
	}
}

// Honeypot is a deception sensor emulating a real protocol endpoint.
// The server owns its state; the console holds a cached projection.
type Honeypot struct {
	ID                 string          `json:"id" yaml:"id"`
	Name               string          `json:"name" yaml:"name"`
	Description        string          `json:"description,omitempty" yaml:"description,omitempty"`
	Type               string          `json:"type" yaml:"type"` // ssh, postgres, http
	Port               int             `json:"port" yaml:"port"`
	Address            string          `json:"address" yaml:"address"`
	Status             string          `json:"status" yaml:"status"` // stopped, running, error
	Config             map[string]any  `json:"config" yaml:"config" table:"-"`
	NotificationLevels map[string]bool `json:"notification_levels" yaml:"notification_levels" table:"-"`
	CreatedAt          time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty" yaml:"updated_at,omitempty" table:"-"`
}

// HoneypotCreate is the payload for creating a new sensor.
type HoneypotCreate struct {
	Name               string          `json:"name" validate:"required"`
	Description        string          `json:"description,omitempty"`
	Type               string          `json:"type" validate:"required,oneof=ssh postgres http"`
	Port               int             `json:"port" validate:"required,min=1,max=65535"`
	Address            string          `json:"address" validate:"required"`
	Config             map[string]any  `json:"config"`
	NotificationLevels map[string]bool `json:"notification_levels"`
}

// Honeytoken is a planted fake credential. A set used_at is a compromise
// signal and is never cleared by client action.
type Honeytoken struct {
	ID          string     `json:"id" yaml:"id"`
	ServiceID   string     `json:"service_id,omitempty" yaml:"service_id,omitempty" table:"-"`
	ServiceType string     `json:"service_type" yaml:"service_type"`
	Username    string     `json:"username" yaml:"username"`
	Password    string     `json:"password" yaml:"password"`
	MetaData    string     `json:"meta_data,omitempty" yaml:"meta_data,omitempty"`
	GeneratedAt time.Time  `json:"generated_at" yaml:"generated_at"`
	UsedAt      *time.Time `json:"used_at,omitempty" yaml:"used_at,omitempty"`
}

// HoneytokenItem is one explicit entry in a manual generation request.
type HoneytokenItem struct {
	Username string `json:"username" validate:"required"`
	MetaData string `json:"meta_data,omitempty"`
}

// HoneytokenGenerate requests a batch of tokens: either Count random tokens,
// or the explicit Items list (Count is ignored when Items is non-empty).
type HoneytokenGenerate struct {
	ServiceType string           `json:"service_type" validate:"required"`
	Count       int              `json:"count,omitempty" validate:"omitempty,min=1,max=100"`
	ServiceID   string           `json:"service_id,omitempty"`
	Items       []HoneytokenItem `json:"items,omitempty" validate:"omitempty,max=100,dive"`
}

// HoneytokenFilter narrows a token listing.
type HoneytokenFilter struct {
	ServiceType string
	ServiceID   string
	UsedOnly    bool
}

// Event is one recorded intrusion attempt. Immutable once created.
type Event struct {
	ID          string         `json:"id" yaml:"id"`
	HoneypotID  string         `json:"honeypot_id" yaml:"honeypot_id"`
	IncidentID  string         `json:"incident_id,omitempty" yaml:"incident_id,omitempty"`
	EventType   string         `json:"event_type" yaml:"event_type"`
	Level       int            `json:"level" yaml:"level"`
	SourceIP    string         `json:"source_ip" yaml:"source_ip"`
	HoneytokenID string        `json:"honeytoken_id,omitempty" yaml:"honeytoken_id,omitempty" table:"-"`
	Timestamp   time.Time      `json:"timestamp" yaml:"timestamp"`
	Details     map[string]any `json:"details" yaml:"details" table:"-"`
}

// EventFilter narrows an event listing.
type EventFilter struct {
	IncidentID string
	Limit      int
}

// Incident is the server-side aggregation of events sharing a
// (honeypot, source IP) pair within a correlation window. Read-only here.
type Incident struct {
	ID          string         `json:"id" yaml:"id"`
	HoneypotID  string         `json:"honeypot_id" yaml:"honeypot_id"`
	SourceIP    string         `json:"source_ip" yaml:"source_ip"`
	ThreatLevel int            `json:"threat_level" yaml:"threat_level"`
	Status      string         `json:"status" yaml:"status"` // new, investigating, resolved
	EventCount  int            `json:"event_count" yaml:"event_count"`
	FirstSeen   time.Time      `json:"first_seen" yaml:"first_seen"`
	LastSeen    time.Time      `json:"last_seen" yaml:"last_seen"`
	Details     map[string]any `json:"details" yaml:"details" table:"-"`
}

// NotificationSettings is the per-user alerting configuration.
type NotificationSettings struct {
	ID               string `json:"id" yaml:"id"`
	UserID           string `json:"user_id" yaml:"user_id"`
	TelegramEnabled  bool   `json:"telegram_enabled" yaml:"telegram_enabled"`
	TelegramBotToken string `json:"telegram_bot_token,omitempty" yaml:"telegram_bot_token,omitempty"`
	TelegramChatID   string `json:"telegram_chat_id,omitempty" yaml:"telegram_chat_id,omitempty"`
	EmailEnabled     bool   `json:"email_enabled" yaml:"email_enabled"`
	EmailAddress     string `json:"email_address,omitempty" yaml:"email_address,omitempty"`
	Level1Enabled    bool   `json:"level_1_enabled" yaml:"level_1_enabled"`
	Level2Enabled    bool   `json:"level_2_enabled" yaml:"level_2_enabled"`
	Level3Enabled    bool   `json:"level_3_enabled" yaml:"level_3_enabled"`
}

// NotificationSettingsUpdate is the payload for PUT /notifications/settings.
// Nil fields are left unchanged by the server.
type NotificationSettingsUpdate struct {
	TelegramEnabled  *bool   `json:"telegram_enabled,omitempty"`
	TelegramBotToken *string `json:"telegram_bot_token,omitempty"`
	TelegramChatID   *string `json:"telegram_chat_id,omitempty"`
	EmailEnabled     *bool   `json:"email_enabled,omitempty"`
	EmailAddress     *string `json:"email_address,omitempty"`
	Level1Enabled    *bool   `json:"level_1_enabled,omitempty"`
	Level2Enabled    *bool   `json:"level_2_enabled,omitempty"`
	Level3Enabled    *bool   `json:"level_3_enabled,omitempty"`
}

// User is the authenticated operator identity, used as a session probe.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Username  string    `json:"username" yaml:"username"`
	Email     string    `json:"email,omitempty" yaml:"email,omitempty"`
	IsActive  bool      `json:"is_active" yaml:"is_active"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
