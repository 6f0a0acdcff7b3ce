// Package classify interprets raw event records for human analysis. Each
// event is dispatched to exactly one interpretation schema through an
// ordered predicate list, so precedence is a visible, testable contract
// rather than incidental conditional order.
package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fredr0ck/honey-potter/pkg/api"
)

// Schema identifies the interpretation applied to an event.
type Schema string

const (
	SchemaShellSession    Schema = "shell-session"
	SchemaDatabaseSession Schema = "database-session"
	SchemaGenericRequest  Schema = "generic-request"
)

// Field is one displayable value extracted from event details. Present
// distinguishes "omitted by the sensor" from "present but blank".
type Field struct {
	Name    string
	Value   string
	Present bool
}

// Display returns the field value, or "not available" when the sensor
// omitted it. A present-but-blank field displays as empty.
func (f Field) Display() string {
	if !f.Present {
		return "not available"
	}
	return f.Value
}

// Body describes a captured request body. Captured false with Length set
// means the sensor saw a body but did not record its content.
type Body struct {
	Captured bool
	Content  string
	Length   int
}

// Honeytoken marks an event as honeytoken-triggered.
type Honeytoken struct {
	ID       string
	Username Field
}

// Classification is the normalized interpretation of one event.
type Classification struct {
	Schema     Schema
	Fields     []Field
	Body       *Body       // generic-request only; nil when no body was sent
	Honeytoken *Honeytoken // set whenever the event references a honeytoken
}

// FieldByName returns the named extracted field and whether the schema
// defines it.
func (c Classification) FieldByName(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// schemaRule pairs a schema with its match predicate and extractor. Rules
// are tried in order; the first match wins.
type schemaRule struct {
	schema  Schema
	match   func(api.Event) bool
	extract func(api.Event) ([]Field, *Body)
}

var rules = []schemaRule{
	{SchemaShellSession, matchShellSession, extractShellSession},
	{SchemaDatabaseSession, matchDatabaseSession, extractDatabaseSession},
	{SchemaGenericRequest, func(api.Event) bool { return true }, extractGenericRequest},
}

// Classify selects the interpretation schema for e and extracts its
// displayable fields. Pure: the same event always yields the same result.
func Classify(e api.Event) Classification {
	var c Classification
	for _, r := range rules {
		if r.match(e) {
			c.Schema = r.schema
			c.Fields, c.Body = r.extract(e)
			break
		}
	}
	if e.HoneytokenID != "" {
		c.Honeytoken = &Honeytoken{
			ID:       e.HoneytokenID,
			Username: field(e.Details, "honeytoken_username"),
		}
	}
	return c
}

func matchShellSession(e api.Event) bool {
	if strings.HasPrefix(e.EventType, "ssh") {
		return true
	}
	_, hasUser := e.Details["username"]
	_, hasCmd := e.Details["command"]
	return hasUser && hasCmd
}

func matchDatabaseSession(e api.Event) bool {
	if strings.HasPrefix(e.EventType, "postgres") {
		return true
	}
	_, hasUser := e.Details["username"]
	_, hasDB := e.Details["database"]
	return hasUser || hasDB
}

func extractShellSession(e api.Event) ([]Field, *Body) {
	return fields(e.Details,
		"username", "password", "command", "method", "service",
		"local_version", "remote_version",
	), nil
}

func extractDatabaseSession(e api.Event) ([]Field, *Body) {
	return fields(e.Details, "username", "password", "database", "query"), nil
}

func extractGenericRequest(e api.Event) ([]Field, *Body) {
	fs := fields(e.Details,
		"method", "path", "full_url", "query", "headers", "cookies",
		"user_agent", "content_type",
	)
	return fs, bodyOf(e.Details)
}

// bodyOf interprets the body/body_length detail pair. nil means no body was
// sent; an uncaptured body keeps its byte length so analysis can still see
// that content arrived.
func bodyOf(details map[string]any) *Body {
	length := 0
	if raw, ok := details["body_length"]; ok {
		length = intOf(raw)
	}
	if raw, ok := details["body"]; ok && raw != nil {
		content := stringify(raw)
		if length == 0 {
			length = len(content)
		}
		return &Body{Captured: true, Content: content, Length: length}
	}
	if length > 0 {
		return &Body{Captured: false, Length: length}
	}
	return nil
}

func fields(details map[string]any, names ...string) []Field {
	out := make([]Field, 0, len(names))
	for _, name := range names {
		out = append(out, field(details, name))
	}
	return out
}

// field extracts one detail value. A key that exists with a blank value is
// Present; a missing key is not.
func field(details map[string]any, name string) Field {
	raw, ok := details[name]
	if !ok || raw == nil {
		return Field{Name: name}
	}
	return Field{Name: name, Value: stringify(raw), Present: true}
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}

func intOf(raw any) int {
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
