package audit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueKind tells the flag grammar how to format and interpret a value.
type ValueKind string

const (
	KindBoolean ValueKind = "boolean"
	KindNumber  ValueKind = "number"
	KindString  ValueKind = "string"
)

// Stable flag keys as they appear inside flip-flag payloads. These are a
// versioned wire contract: rows written years ago must keep decoding, so a
// key's meaning never changes once assigned.
const (
	FlagGroupTest               = "arXiv_users.flag_group_test"
	FlagProxy                   = "tapir_users.flag_proxy"
	FlagSuspect                 = "tapir_users.flag_suspect"
	FlagXML                     = "arXiv_users.flag_xml"
	FlagEndorsementValid        = "arXiv_endorsements.flag_valid"
	FlagEndorsementPointValue   = "arXiv_endorsements.point_value"
	FlagEndorsementRequestValid = "arXiv_endorsement_requests.flag_valid"
	FlagEmailBouncing           = "tapir_users.email_bouncing"
	FlagBanned                  = "tapir_users.flag_banned"
	FlagEditSystem              = "tapir_users.flag_edit_system"
	FlagEditUsers               = "tapir_users.flag_edit_users"
	FlagEmailVerified           = "tapir_users.flag_email_verified"
)

// FlagEntry describes one registered user flag. SetVerb and ClearVerb are the
// narrative verb phrases for boolean flags; both read as
// "<admin> <verb> <user>".
type FlagEntry struct {
	Key         string
	DisplayName string
	Kind        ValueKind
	SetVerb     string
	ClearVerb   string
}

var flagTable = map[string]FlagEntry{
	FlagGroupTest: {
		Key: FlagGroupTest, DisplayName: "group test", Kind: KindBoolean,
		SetVerb: "enabled the test-user flag for", ClearVerb: "disabled the test-user flag for",
	},
	FlagProxy: {
		Key: FlagProxy, DisplayName: "proxy", Kind: KindBoolean,
		SetVerb: "enabled the proxy flag for", ClearVerb: "disabled the proxy flag for",
	},
	FlagSuspect: {
		Key: FlagSuspect, DisplayName: "suspect", Kind: KindBoolean,
		SetVerb: "flagged", ClearVerb: "unflagged",
	},
	FlagXML: {
		Key: FlagXML, DisplayName: "xml", Kind: KindBoolean,
		SetVerb: "enabled the XML flag for", ClearVerb: "disabled the XML flag for",
	},
	FlagEndorsementValid: {
		Key: FlagEndorsementValid, DisplayName: "endorsement valid", Kind: KindBoolean,
		SetVerb: "validated the endorsement of", ClearVerb: "invalidated the endorsement of",
	},
	FlagEndorsementPointValue: {
		Key: FlagEndorsementPointValue, DisplayName: "endorsement point value", Kind: KindNumber,
	},
	FlagEndorsementRequestValid: {
		Key: FlagEndorsementRequestValid, DisplayName: "endorsement request valid", Kind: KindBoolean,
		SetVerb: "validated the endorsement request of", ClearVerb: "invalidated the endorsement request of",
	},
	FlagEmailBouncing: {
		Key: FlagEmailBouncing, DisplayName: "email bouncing", Kind: KindBoolean,
		SetVerb: "set the email-bouncing flag for", ClearVerb: "cleared the email-bouncing flag for",
	},
	FlagBanned: {
		Key: FlagBanned, DisplayName: "banned", Kind: KindBoolean,
		SetVerb: "banned", ClearVerb: "unbanned",
	},
	FlagEditSystem: {
		Key: FlagEditSystem, DisplayName: "edit system", Kind: KindBoolean,
		SetVerb: "granted system-edit rights to", ClearVerb: "revoked system-edit rights from",
	},
	FlagEditUsers: {
		Key: FlagEditUsers, DisplayName: "edit users", Kind: KindBoolean,
		SetVerb: "granted user-edit rights to", ClearVerb: "revoked user-edit rights from",
	},
	FlagEmailVerified: {
		Key: FlagEmailVerified, DisplayName: "email verified", Kind: KindBoolean,
		SetVerb: "verified the email of", ClearVerb: "unverified the email of",
	},
}

// LookupFlag returns the registry entry for a flag key.
func LookupFlag(key string) (FlagEntry, bool) {
	entry, ok := flagTable[key]
	return entry, ok
}

// Flags returns all registered flags sorted by key.
func Flags() []FlagEntry {
	entries := make([]FlagEntry, 0, len(flagTable))
	for _, entry := range flagTable {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// parseBoolean interprets a stored flag value as a boolean. Only "yes",
// "true", and "1" (case-insensitive) are true; everything else, including
// unexpected synonyms, is false. Historical rows were written against this
// exact contract, so widening it would flip the reading of old data.
func parseBoolean(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// formatFlagValue renders a semantic value as the payload literal for the
// given registry entry: booleans as "1"/"0", numbers as decimal literals,
// strings raw.
func formatFlagValue(entry FlagEntry, value any) (string, error) {
	switch entry.Kind {
	case KindBoolean:
		switch v := value.(type) {
		case bool:
			if v {
				return "1", nil
			}
			return "0", nil
		case string:
			if parseBoolean(v) {
				return "1", nil
			}
			return "0", nil
		}
		return "", validationErr(entry.Key, "boolean flag requires a bool value, got %T", value)
	case KindNumber:
		switch v := value.(type) {
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			// JSON numbers decode as float64; integral values stay integral.
			if v == float64(int64(v)) {
				return strconv.FormatInt(int64(v), 10), nil
			}
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return "", validationErr(entry.Key, "numeric flag requires a decimal literal, got %q", v)
			}
			return v, nil
		}
		return "", validationErr(entry.Key, "numeric flag requires a number value, got %T", value)
	case KindString:
		if v, ok := value.(string); ok {
			return v, nil
		}
		return "", validationErr(entry.Key, "string flag requires a string value, got %T", value)
	}
	return "", validationErr(entry.Key, "unregistered value kind %q", entry.Kind)
}

// ensure display names stay unique; duplicate names make narratives ambiguous.
func init() {
	seen := make(map[string]string, len(flagTable))
	for key, entry := range flagTable {
		if prev, dup := seen[entry.DisplayName]; dup {
			panic(fmt.Sprintf("duplicate flag display name %q (%s, %s)", entry.DisplayName, prev, key))
		}
		seen[entry.DisplayName] = key
	}
}
