// Package audit records who exported which corporate hierarchy.
package audit

import (
	"context"
	"time"

	"github.com/mssola/useragent"

	"partnersearch/pkg/requestcontext"
)

type Action string

const (
	ActionHierarchyExported   Action = "hierarchy_exported"
	ActionExportLinkRedeemed  Action = "hierarchy_export_downloaded"
	ActionExportLinkRequested Action = "hierarchy_export_link_created"
)

// Event is one audited action. Subject is the D-U-N-S number acted on.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	Action      Action    `json:"action"`
	Subject     string    `json:"subject"`
	EntityCount int       `json:"entity_count"`
	FileName    string    `json:"file_name,omitempty"`
	Language    string    `json:"language,omitempty"`
	ClientIP    string    `json:"client_ip,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Browser     string    `json:"browser,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// Enrich fills request-scoped fields the caller left empty.
func Enrich(ctx context.Context, e Event) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = requestcontext.Now(ctx)
	}
	if e.UserID == "" {
		if uid := requestcontext.UserID(ctx); !uid.IsNil() {
			e.UserID = uid.String()
		}
	}
	if e.Username == "" {
		e.Username = requestcontext.Username(ctx)
	}
	if e.ClientIP == "" {
		e.ClientIP = requestcontext.ClientIP(ctx)
	}
	if e.UserAgent == "" {
		e.UserAgent = requestcontext.UserAgent(ctx)
	}
	if e.Browser == "" && e.UserAgent != "" {
		e.Browser = BrowserName(e.UserAgent)
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	return e
}

// BrowserName extracts "<name> <version>" from a User-Agent header.
func BrowserName(ua string) string {
	name, version := useragent.New(ua).Browser()
	if name == "" {
		return ""
	}
	if version == "" {
		return name
	}
	return name + " " + version
}
