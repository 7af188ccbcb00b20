package audit

import (
	"fmt"
	"regexp"
)

// Status-change grammar: "<before> -> <after>". Encode validates both values
// against the closed veto-status enumeration; decode validates only the arrow
// shape so rows carrying retired statuses keep decoding.

// VetoStatus is a member of the closed veto-status enumeration.
type VetoStatus string

const (
	VetoOK        VetoStatus = "ok"
	VetoNoEndorse VetoStatus = "no-endorse"
	VetoNoUpload  VetoStatus = "no-upload"
	VetoNoReplace VetoStatus = "no-replace"
	VetoSuspect   VetoStatus = "suspect"
)

var vetoStatuses = map[VetoStatus]struct{}{
	VetoOK:        {},
	VetoNoEndorse: {},
	VetoNoUpload:  {},
	VetoNoReplace: {},
	VetoSuspect:   {},
}

// ValidVetoStatus reports whether s is a member of the closed enumeration.
func ValidVetoStatus(s VetoStatus) bool {
	_, ok := vetoStatuses[s]
	return ok
}

var statusPattern = regexp.MustCompile(`^([^ ]+) -> ([^ ]+)$`)

// StatusPayload carries a veto-status transition.
type StatusPayload struct {
	Before VetoStatus
	After  VetoStatus
}

func (StatusPayload) payload() {}

func encodeStatus(p Payload) (string, error) {
	status, ok := p.(StatusPayload)
	if !ok {
		return "", validationErr("payload", "arXiv-change-status requires a StatusPayload, got %T", p)
	}
	if !ValidVetoStatus(status.Before) {
		return "", validationErr("status_before", "%q is not a veto status", status.Before)
	}
	if !ValidVetoStatus(status.After) {
		return "", validationErr("status_after", "%q is not a veto status", status.After)
	}
	return fmt.Sprintf("%s -> %s", status.Before, status.After), nil
}

func decodeStatus(r Record) (Payload, error) {
	m := statusPattern.FindStringSubmatch(r.Data)
	if m == nil {
		return nil, decodeErr(ActionChangeStatus, r.Data, `expected "<before> -> <after>"`)
	}
	return StatusPayload{Before: VetoStatus(m[1]), After: VetoStatus(m[2])}, nil
}

func describeStatus(e *Event, ids Identities) string {
	status := e.Payload.(StatusPayload)
	narrative := fmt.Sprintf("%s changed the status of %s from %s to %s",
		ids.Name(e.AdminID), ids.Name(e.UserID), status.Before, status.After)
	// Status changes are informational; the comment is always part of the story.
	return withComment(narrative, e.Comment)
}
