package audit

import (
	"fmt"
	"regexp"
	"strings"
)

// Endorsement-triggered family: payload is "<endorserId> <category>
// <endorseeId>", space-separated, exactly three tokens. This is the strictest
// grammar in the taxonomy; decode failures carry the specific rule that broke
// so legacy data drift is diagnosable from the error alone.

var (
	digitPattern    = regexp.MustCompile(`^[0-9]+$`)
	categoryPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// EndorsementPayload carries the parties and category of an endorsement that
// triggered an audit entry.
type EndorsementPayload struct {
	EndorserID string
	Category   string
	EndorseeID string
}

func (EndorsementPayload) payload() {}

func encodeEndorsement(action Action) encodeFunc {
	return func(p Payload) (string, error) {
		end, ok := p.(EndorsementPayload)
		if !ok {
			return "", validationErr("payload", "%s requires an EndorsementPayload, got %T", action, p)
		}
		if !digitPattern.MatchString(end.EndorserID) {
			return "", validationErr("endorser_id", "%q is not a numeric user id", end.EndorserID)
		}
		if !digitPattern.MatchString(end.EndorseeID) {
			return "", validationErr("endorsee_id", "%q is not a numeric user id", end.EndorseeID)
		}
		if !categoryPattern.MatchString(end.Category) {
			return "", validationErr("category", "%q is not a category identifier", end.Category)
		}
		return end.EndorserID + " " + end.Category + " " + end.EndorseeID, nil
	}
}

func decodeEndorsement(action Action) decodeFunc {
	return func(r Record) (Payload, error) {
		tokens := strings.Fields(r.Data)
		if len(tokens) != 3 {
			return nil, decodeErr(action, r.Data, "expected 3 tokens, got %d", len(tokens))
		}
		endorser, category, endorsee := tokens[0], tokens[1], tokens[2]
		if !digitPattern.MatchString(endorser) {
			return nil, decodeErr(action, r.Data, "endorser id %q is not numeric", endorser)
		}
		if !digitPattern.MatchString(endorsee) {
			return nil, decodeErr(action, r.Data, "endorsee id %q is not numeric", endorsee)
		}
		if !categoryPattern.MatchString(category) {
			return nil, decodeErr(action, r.Data, "category %q is not a category identifier", category)
		}
		return EndorsementPayload{EndorserID: endorser, Category: category, EndorseeID: endorsee}, nil
	}
}

func describeEndorsement(e *Event, ids Identities) string {
	end := e.Payload.(EndorsementPayload)
	var narrative string
	switch e.Action {
	case ActionEndorsedBySuspect:
		narrative = fmt.Sprintf("%s was endorsed by the suspect user %s in %s",
			ids.Name(end.EndorseeID), ids.Name(end.EndorserID), end.Category)
	default: // got-negative-endorsement
		narrative = fmt.Sprintf("%s got a negative endorsement from %s in %s",
			ids.Name(end.EndorseeID), ids.Name(end.EndorserID), end.Category)
	}
	return withComment(narrative, e.Comment)
}
