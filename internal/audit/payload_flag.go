package audit

import (
	"fmt"
	"strings"
)

// Generic flag grammar: "<flagKey>=<value>", split on the first '='. The flag
// key must resolve in the registry; the value's shape depends on the entry's
// kind. suspend-user and unsuspend-user reuse this grammar with the banned
// flag baked in so their payloads stay consistent with flip-flag rows.

// FlagPayload carries one flag change. Value holds the raw payload literal;
// interpretation (boolean, number, string) follows the registry entry.
type FlagPayload struct {
	Flag  string
	Value string
}

func (FlagPayload) payload() {}

// NewFlagPayload validates a semantic flag change against the registry and
// formats the value for persistence. This is the write-path entry point for
// flip-flag events.
func NewFlagPayload(key string, value any) (FlagPayload, error) {
	entry, ok := LookupFlag(key)
	if !ok {
		return FlagPayload{}, &UnknownFlagError{Flag: key}
	}
	formatted, err := formatFlagValue(entry, value)
	if err != nil {
		return FlagPayload{}, err
	}
	return FlagPayload{Flag: key, Value: formatted}, nil
}

// splitFlagData parses the abstract "<flagKey>=<value>" shape. The value may
// itself contain '='; only the first separator splits.
func splitFlagData(action Action, data string) (key, value string, err error) {
	idx := strings.IndexByte(data, '=')
	if idx < 0 {
		return "", "", decodeErr(action, data, "missing '=' separator")
	}
	return data[:idx], data[idx+1:], nil
}

func encodeFlag(p Payload) (string, error) {
	flag, ok := p.(FlagPayload)
	if !ok {
		return "", validationErr("payload", "flip-flag requires a FlagPayload, got %T", p)
	}
	if _, registered := LookupFlag(flag.Flag); !registered {
		return "", &UnknownFlagError{Flag: flag.Flag}
	}
	return flag.Flag + "=" + flag.Value, nil
}

func decodeFlag(r Record) (Payload, error) {
	key, value, err := splitFlagData(ActionFlipFlag, r.Data)
	if err != nil {
		return nil, err
	}
	// Flattened two-step dispatch: the abstract shape decoded above, the
	// concrete variant selected by registry lookup here.
	if _, ok := LookupFlag(key); !ok {
		return nil, &UnknownFlagError{Flag: key}
	}
	return FlagPayload{Flag: key, Value: value}, nil
}

func describeFlag(e *Event, ids Identities) string {
	flag := e.Payload.(FlagPayload)
	entry, ok := LookupFlag(flag.Flag)
	if !ok {
		// Unreachable after factory dispatch, but render boundaries never throw.
		return fallbackNarrative(e.Record(), ids)
	}
	admin := ids.Name(e.AdminID)
	user := ids.Name(e.UserID)

	var narrative string
	switch entry.Kind {
	case KindBoolean:
		verb := entry.ClearVerb
		if parseBoolean(flag.Value) {
			verb = entry.SetVerb
		}
		narrative = fmt.Sprintf("%s %s %s", admin, verb, user)
	case KindNumber:
		narrative = fmt.Sprintf("%s set the %s of %s to %s", admin, entry.DisplayName, user, flag.Value)
	default:
		narrative = fmt.Sprintf("%s set the %s of %s to %q", admin, entry.DisplayName, user, flag.Value)
	}
	return withComment(narrative, e.Comment)
}

// Suspension events delegate to the flag grammar with the banned flag fixed.

func encodeSuspension(action Action) encodeFunc {
	want := "0"
	if action == ActionSuspendUser {
		want = "1"
	}
	return func(p Payload) (string, error) {
		flag, ok := p.(FlagPayload)
		if !ok {
			return "", validationErr("payload", "%s requires a FlagPayload, got %T", action, p)
		}
		if flag.Flag != FlagBanned {
			return "", validationErr("flag", "%s only sets %s, got %q", action, FlagBanned, flag.Flag)
		}
		if flag.Value != want {
			return "", validationErr("value", "%s requires value %q, got %q", action, want, flag.Value)
		}
		return FlagBanned + "=" + want, nil
	}
}

// NewSuspensionPayload builds the synthesized banned-flag payload for
// suspend-user and unsuspend-user events.
func NewSuspensionPayload(suspended bool) FlagPayload {
	value := "0"
	if suspended {
		value = "1"
	}
	return FlagPayload{Flag: FlagBanned, Value: value}
}

func decodeSuspension(action Action) decodeFunc {
	return func(r Record) (Payload, error) {
		key, value, err := splitFlagData(action, r.Data)
		if err != nil {
			return nil, err
		}
		if key != FlagBanned {
			return nil, decodeErr(action, r.Data, "expected flag %s, got %q", FlagBanned, key)
		}
		return FlagPayload{Flag: key, Value: value}, nil
	}
}

func describeSuspension(e *Event, ids Identities) string {
	verb := "reinstated"
	if e.Action == ActionSuspendUser {
		verb = "suspended"
	}
	narrative := fmt.Sprintf("%s %s %s", ids.Name(e.AdminID), verb, ids.Name(e.UserID))
	return withComment(narrative, e.Comment)
}
