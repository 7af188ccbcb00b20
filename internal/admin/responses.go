package admin

// EntryResponse is the HTTP response DTO for one audit log entry.
type EntryResponse struct {
	ID             int64  `json:"id"`
	AdminUser      string `json:"admin_user,omitempty"`
	AffectedUser   string `json:"affected_user"`
	SessionID      string `json:"session_id,omitempty"`
	Action         string `json:"action"`
	Data           string `json:"data,omitempty"`
	Comment        string `json:"comment,omitempty"`
	RemoteIP       string `json:"ip_addr,omitempty"`
	RemoteHost     string `json:"remote_host,omitempty"`
	TrackingCookie string `json:"tracking_cookie,omitempty"`
	LogDate        string `json:"log_date"`
	Narrative      string `json:"narrative"`
}

// LogResponse wraps a page of audit entries for HTTP response.
type LogResponse struct {
	Entries []EntryResponse `json:"entries"`
	Total   int             `json:"total"`
}

// RecordedResponse acknowledges a write-path call with the new entry id.
type RecordedResponse struct {
	EntryID int64 `json:"entry_id"`
}

// NewEntryResponse maps a service Entry to its HTTP shape.
func NewEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:             e.Record.ID,
		AdminUser:      e.Record.AdminUser,
		AffectedUser:   e.Record.AffectedUser,
		SessionID:      e.Record.SessionID,
		Action:         e.Record.Action,
		Data:           e.Record.Data,
		Comment:        e.Record.Comment,
		RemoteIP:       e.Record.RemoteIP,
		RemoteHost:     e.Record.RemoteHost,
		TrackingCookie: e.Record.TrackingCookie,
		LogDate:        e.Record.LogDate,
		Narrative:      e.Narrative,
	}
}

// NewLogResponse maps a page of service entries to the HTTP list shape.
func NewLogResponse(entries []Entry) LogResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewEntryResponse(e))
	}
	return LogResponse{Entries: out, Total: len(out)}
}
