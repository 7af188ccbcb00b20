package audit

import (
	"fmt"
	"regexp"
	"strconv"
)

// The remaining variants: comment-only, impersonation, email and password
// changes, and moderatorship changes.

// CommentPayload marks events whose data field is unused; the free-text
// comment carries the content.
type CommentPayload struct{}

func (CommentPayload) payload() {}

func encodeEmptyData(action Action) encodeFunc {
	return func(p Payload) (string, error) {
		if _, ok := p.(CommentPayload); !ok {
			return "", validationErr("payload", "%s requires a CommentPayload, got %T", action, p)
		}
		return "", nil
	}
}

func decodeEmptyData(Record) (Payload, error) {
	// Data is unused for this family; tolerate whatever legacy rows carry.
	return CommentPayload{}, nil
}

func describeComment(e *Event, ids Identities) string {
	narrative := fmt.Sprintf("%s commented on %s", ids.Name(e.AdminID), ids.Name(e.UserID))
	return withComment(narrative, e.Comment)
}

func describePasswordChange(e *Event, ids Identities) string {
	narrative := fmt.Sprintf("%s changed the password of %s", ids.Name(e.AdminID), ids.Name(e.UserID))
	return withComment(narrative, e.Comment)
}

// BecomeUserPayload carries the session id opened by an impersonation.
type BecomeUserPayload struct {
	NewSessionID int64
}

func (BecomeUserPayload) payload() {}

func encodeBecomeUser(p Payload) (string, error) {
	become, ok := p.(BecomeUserPayload)
	if !ok {
		return "", validationErr("payload", "become-user requires a BecomeUserPayload, got %T", p)
	}
	if become.NewSessionID < 0 {
		return "", validationErr("session_id", "%d is not a session id", become.NewSessionID)
	}
	return strconv.FormatInt(become.NewSessionID, 10), nil
}

func decodeBecomeUser(r Record) (Payload, error) {
	sessionID, err := strconv.ParseInt(r.Data, 10, 64)
	if err != nil {
		return nil, decodeErr(ActionBecomeUser, r.Data, "payload is not an integer session id")
	}
	return BecomeUserPayload{NewSessionID: sessionID}, nil
}

func describeBecomeUser(e *Event, ids Identities) string {
	become := e.Payload.(BecomeUserPayload)
	narrative := fmt.Sprintf("%s impersonated %s (session %d)",
		ids.Name(e.AdminID), ids.Name(e.UserID), become.NewSessionID)
	return withComment(narrative, e.Comment)
}

// EmailPayload carries the new address of a change-email event. The address
// shape is not validated at decode time; legacy rows hold whatever the admin
// typed.
type EmailPayload struct {
	NewEmail string
}

func (EmailPayload) payload() {}

func encodeEmail(p Payload) (string, error) {
	email, ok := p.(EmailPayload)
	if !ok {
		return "", validationErr("payload", "change-email requires an EmailPayload, got %T", p)
	}
	if email.NewEmail == "" {
		return "", validationErr("email", "new email must not be empty")
	}
	return email.NewEmail, nil
}

func decodeEmail(r Record) (Payload, error) {
	return EmailPayload{NewEmail: r.Data}, nil
}

func describeEmail(e *Event, ids Identities) string {
	email := e.Payload.(EmailPayload)
	narrative := fmt.Sprintf("%s changed the email of %s to %s",
		ids.Name(e.AdminID), ids.Name(e.UserID), email.NewEmail)
	return withComment(narrative, e.Comment)
}

// Moderator family: payload is "archive" or "archive.subject_class".

var moderatorCategoryPattern = regexp.MustCompile(`^[a-z0-9-]+(\.[A-Za-z0-9-]+)?$`)

// ModeratorPayload carries the category of a moderatorship change.
type ModeratorPayload struct {
	Category string
}

func (ModeratorPayload) payload() {}

func encodeModerator(action Action) encodeFunc {
	return func(p Payload) (string, error) {
		mod, ok := p.(ModeratorPayload)
		if !ok {
			return "", validationErr("payload", "%s requires a ModeratorPayload, got %T", action, p)
		}
		if !moderatorCategoryPattern.MatchString(mod.Category) {
			return "", validationErr("category", "%q is not an archive or archive.subject_class", mod.Category)
		}
		return mod.Category, nil
	}
}

func decodeModerator(action Action) decodeFunc {
	return func(r Record) (Payload, error) {
		if !moderatorCategoryPattern.MatchString(r.Data) {
			return nil, decodeErr(action, r.Data, "payload is not an archive or archive.subject_class")
		}
		return ModeratorPayload{Category: r.Data}, nil
	}
}

func describeModerator(e *Event, ids Identities) string {
	mod := e.Payload.(ModeratorPayload)
	var narrative string
	if e.Action == ActionMakeModerator {
		narrative = fmt.Sprintf("%s made %s a moderator of %s",
			ids.Name(e.AdminID), ids.Name(e.UserID), mod.Category)
	} else {
		narrative = fmt.Sprintf("%s removed %s as a moderator of %s",
			ids.Name(e.AdminID), ids.Name(e.UserID), mod.Category)
	}
	return withComment(narrative, e.Comment)
}
