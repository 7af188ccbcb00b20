package audit

import "time"

// Action is the stable string discriminator selecting a taxonomy variant.
// These are wire values shared with years of persisted rows; renaming one
// silently breaks decoding of historical data.
type Action string

const (
	ActionComment                Action = "comment"
	ActionAddPaperOwner          Action = "add-paper-owner"
	ActionAddPaperOwner2         Action = "add-paper-owner-2"
	ActionChangePaperPassword    Action = "arXiv-change-paper-pw"
	ActionChangeStatus           Action = "arXiv-change-status"
	ActionMakeAuthor             Action = "arXiv-make-author"
	ActionMakeNonauthor          Action = "arXiv-make-nonauthor"
	ActionRevokePaperOwner       Action = "arXiv-revoke-paper-owner"
	ActionUnrevokePaperOwner     Action = "arXiv-unrevoke-paper-owner"
	ActionBecomeUser             Action = "become-user"
	ActionChangeEmail            Action = "change-email"
	ActionChangePassword         Action = "change-password"
	ActionEndorsedBySuspect      Action = "endorsed-by-suspect"
	ActionFlipFlag               Action = "flip-flag"
	ActionGotNegativeEndorsement Action = "got-negative-endorsement"
	ActionMakeModerator          Action = "make-moderator"
	ActionUnmakeModerator        Action = "unmake-moderator"
	ActionSuspendUser            Action = "suspend-user"
	ActionUnsuspendUser          Action = "unsuspend-user"
)

// Payload is the closed union of variant-specific event fields. Concrete
// payloads are plain value structs; the dispatch table in factory.go owns
// their grammars.
type Payload interface {
	payload()
}

// Common carries the record fields shared by every event variant.
type Common struct {
	Timestamp      time.Time
	AdminID        string
	UserID         string
	SessionID      string
	RemoteIP       string
	RemoteHost     string
	TrackingCookie string
	Comment        string
}

// Event is a decoded audit record. It is an immutable value: variant fields
// round-trip losslessly through the Data string, and construction either
// validates fully or fails.
type Event struct {
	Common
	Action  Action
	Data    string
	Payload Payload
}

// Record converts the event back to its persisted wire shape.
func (e *Event) Record() Record {
	return Record{
		AdminUser:      e.AdminID,
		AffectedUser:   e.UserID,
		SessionID:      e.SessionID,
		RemoteIP:       e.RemoteIP,
		RemoteHost:     e.RemoteHost,
		TrackingCookie: e.TrackingCookie,
		Comment:        e.Comment,
		Action:         string(e.Action),
		Data:           e.Data,
		LogDate:        FormatLogDate(e.Timestamp),
	}
}

// ReferencedUsers lists every user id the event's narrative may need to name.
// The acting admin and affected user are always present; endorse events add
// the endorser and endorsee.
func (e *Event) ReferencedUsers() []string {
	ids := make([]string, 0, 4)
	if e.AdminID != "" {
		ids = append(ids, e.AdminID)
	}
	if e.UserID != "" && e.UserID != e.AdminID {
		ids = append(ids, e.UserID)
	}
	if p, ok := e.Payload.(EndorsementPayload); ok {
		for _, id := range []string{p.EndorserID, p.EndorseeID} {
			if id == "" {
				continue
			}
			dup := false
			for _, seen := range ids {
				if seen == id {
					dup = true
					break
				}
			}
			if !dup {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Identity is the displayable subset of a user record, supplied by the
// injected resolver.
type Identity struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// DisplayName renders the identity for narratives: full name, then username,
// then empty.
func (id Identity) DisplayName() string {
	switch {
	case id.FirstName != "" && id.LastName != "":
		return id.FirstName + " " + id.LastName
	case id.LastName != "":
		return id.LastName
	case id.FirstName != "":
		return id.FirstName
	}
	return id.Username
}

// Identities holds the user identities resolved so far, keyed by user id.
// Rendering with a partially resolved set is expected: missing entries get a
// neutral placeholder and a later re-render with the full set supersedes the
// earlier output.
type Identities map[string]Identity

// Name returns the display name for a user id, or a placeholder while the
// identity is still unresolved.
func (ids Identities) Name(userID string) string {
	if userID == "" {
		return "unknown user"
	}
	if id, ok := ids[userID]; ok {
		if name := id.DisplayName(); name != "" {
			return name
		}
	}
	return "user " + userID
}
