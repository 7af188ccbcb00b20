package audit

import (
	"fmt"
	"regexp"
)

// Paper-ownership family: the payload is the legacy document id as a bare
// numeric string.

var paperIDPattern = regexp.MustCompile(`^[0-9]+$`)

// PaperPayload carries the legacy document id for the paper-ownership family.
type PaperPayload struct {
	PaperID string
}

func (PaperPayload) payload() {}

func encodePaper(action Action) encodeFunc {
	return func(p Payload) (string, error) {
		paper, ok := p.(PaperPayload)
		if !ok {
			return "", validationErr("payload", "%s requires a PaperPayload, got %T", action, p)
		}
		if !paperIDPattern.MatchString(paper.PaperID) {
			return "", validationErr("paper_id", "%q is not a legacy document id", paper.PaperID)
		}
		return paper.PaperID, nil
	}
}

func decodePaper(action Action) decodeFunc {
	return func(r Record) (Payload, error) {
		if !paperIDPattern.MatchString(r.Data) {
			return nil, decodeErr(action, r.Data, "payload is not a legacy document id")
		}
		return PaperPayload{PaperID: r.Data}, nil
	}
}

// paperPhrases maps each paper action to its narrative template. Every phrase
// reads "<admin> <verb> <user> ... paper <id>".
var paperPhrases = map[Action]func(admin, user, paper string) string{
	ActionAddPaperOwner: func(admin, user, paper string) string {
		return fmt.Sprintf("%s made %s an owner of paper %s", admin, user, paper)
	},
	ActionAddPaperOwner2: func(admin, user, paper string) string {
		return fmt.Sprintf("%s made %s an owner of paper %s through the process-ownership screen", admin, user, paper)
	},
	ActionChangePaperPassword: func(admin, user, paper string) string {
		return fmt.Sprintf("%s changed the paper password for paper %s of %s", admin, paper, user)
	},
	ActionMakeAuthor: func(admin, user, paper string) string {
		return fmt.Sprintf("%s made %s an author of paper %s", admin, user, paper)
	},
	ActionMakeNonauthor: func(admin, user, paper string) string {
		return fmt.Sprintf("%s made %s a nonauthor of paper %s", admin, user, paper)
	},
	ActionRevokePaperOwner: func(admin, user, paper string) string {
		return fmt.Sprintf("%s revoked the ownership of %s over paper %s", admin, user, paper)
	},
	ActionUnrevokePaperOwner: func(admin, user, paper string) string {
		return fmt.Sprintf("%s restored the ownership of %s over paper %s", admin, user, paper)
	},
}

// IsPaperAction reports whether an action belongs to the paper-ownership
// family.
func IsPaperAction(a Action) bool {
	_, ok := paperPhrases[a]
	return ok
}

func describePaper(e *Event, ids Identities) string {
	paper := e.Payload.(PaperPayload)
	phrase := paperPhrases[e.Action]
	return withComment(phrase(ids.Name(e.AdminID), ids.Name(e.UserID), paper.PaperID), e.Comment)
}
