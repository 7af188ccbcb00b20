// Package audit implements the tapir admin audit log event model: the wire
// shape of one log row, the closed taxonomy of administrative actions, the
// per-action payload grammars, and the rendering of decoded events into
// human-readable narratives.
//
// Keep it transport-agnostic so stores, publishers, and HTTP handlers can all
// share the same decode/encode contract.
package audit

import (
	"fmt"
	"time"
)

// Record is one persisted row of the admin audit log as the backend serves it.
// The Data field is an opaque payload whose grammar depends entirely on
// Action; never inspect Data without dispatching on the action tag first.
type Record struct {
	ID             int64  `json:"id"`
	AdminUser      string `json:"admin_user"`
	AffectedUser   string `json:"affected_user"`
	SessionID      string `json:"session_id,omitempty"`
	RemoteIP       string `json:"ip_addr,omitempty"`
	RemoteHost     string `json:"remote_host,omitempty"`
	TrackingCookie string `json:"tracking_cookie,omitempty"`
	Comment        string `json:"comment,omitempty"`
	Action         string `json:"action"`
	Data           string `json:"data"`
	LogDate        string `json:"log_date"`
}

// logDateLayouts lists the accepted log_date formats. The backend emits
// RFC 3339; legacy rows written before timezone normalization lack the offset.
var logDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Timestamp parses log_date into an instant. The internal representation is
// Unix-epoch seconds, so sub-second precision is truncated.
func (r Record) Timestamp() (time.Time, error) {
	for _, layout := range logDateLayouts {
		if t, err := time.Parse(layout, r.LogDate); err == nil {
			return time.Unix(t.Unix(), 0).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable log_date %q", r.LogDate)
}

// FormatLogDate renders an instant the way the backend serializes log_date.
func FormatLogDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
