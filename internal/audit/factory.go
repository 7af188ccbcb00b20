package audit

type (
	encodeFunc   func(Payload) (string, error)
	decodeFunc   func(Record) (Payload, error)
	describeFunc func(*Event, Identities) string
)

// variant is one concrete case of the closed taxonomy: the grammar for its
// payload in both directions plus its narrative.
type variant struct {
	encode   encodeFunc
	decode   decodeFunc
	describe describeFunc
}

func paperVariant(action Action) variant {
	return variant{encode: encodePaper(action), decode: decodePaper(action), describe: describePaper}
}

// variants is the action-tag dispatch table. Adding an event type means adding
// a row here; nothing else inspects action tags.
var variants = map[Action]variant{
	ActionComment:             {encode: encodeEmptyData(ActionComment), decode: decodeEmptyData, describe: describeComment},
	ActionAddPaperOwner:       paperVariant(ActionAddPaperOwner),
	ActionAddPaperOwner2:      paperVariant(ActionAddPaperOwner2),
	ActionChangePaperPassword: paperVariant(ActionChangePaperPassword),
	ActionMakeAuthor:          paperVariant(ActionMakeAuthor),
	ActionMakeNonauthor:       paperVariant(ActionMakeNonauthor),
	ActionRevokePaperOwner:    paperVariant(ActionRevokePaperOwner),
	ActionUnrevokePaperOwner:  paperVariant(ActionUnrevokePaperOwner),
	ActionBecomeUser:          {encode: encodeBecomeUser, decode: decodeBecomeUser, describe: describeBecomeUser},
	ActionChangeEmail:         {encode: encodeEmail, decode: decodeEmail, describe: describeEmail},
	ActionChangePassword:      {encode: encodeEmptyData(ActionChangePassword), decode: decodeEmptyData, describe: describePasswordChange},
	ActionEndorsedBySuspect: {
		encode:   encodeEndorsement(ActionEndorsedBySuspect),
		decode:   decodeEndorsement(ActionEndorsedBySuspect),
		describe: describeEndorsement,
	},
	ActionGotNegativeEndorsement: {
		encode:   encodeEndorsement(ActionGotNegativeEndorsement),
		decode:   decodeEndorsement(ActionGotNegativeEndorsement),
		describe: describeEndorsement,
	},
	ActionFlipFlag:        {encode: encodeFlag, decode: decodeFlag, describe: describeFlag},
	ActionMakeModerator:   {encode: encodeModerator(ActionMakeModerator), decode: decodeModerator(ActionMakeModerator), describe: describeModerator},
	ActionUnmakeModerator: {encode: encodeModerator(ActionUnmakeModerator), decode: decodeModerator(ActionUnmakeModerator), describe: describeModerator},
	ActionChangeStatus:    {encode: encodeStatus, decode: decodeStatus, describe: describeStatus},
	ActionSuspendUser:     {encode: encodeSuspension(ActionSuspendUser), decode: decodeSuspension(ActionSuspendUser), describe: describeSuspension},
	ActionUnsuspendUser:   {encode: encodeSuspension(ActionUnsuspendUser), decode: decodeSuspension(ActionUnsuspendUser), describe: describeSuspension},
}

// KnownAction reports whether tag is a registered taxonomy variant.
func KnownAction(tag string) bool {
	_, ok := variants[Action(tag)]
	return ok
}

// Decode dispatches a persisted record to its taxonomy variant and returns the
// structured event. It fails with UnknownActionError for unregistered tags,
// UnknownFlagError for flip-flag rows naming an unregistered flag, and
// DecodeError when the payload does not match the variant's grammar. There is
// no partial construction: either a fully valid event comes back or none.
func Decode(r Record) (*Event, error) {
	v, ok := variants[Action(r.Action)]
	if !ok {
		return nil, &UnknownActionError{Action: r.Action}
	}
	payload, err := v.decode(r)
	if err != nil {
		return nil, err
	}
	ts, err := r.Timestamp()
	if err != nil {
		return nil, decodeErr(Action(r.Action), r.Data, "%v", err)
	}
	return &Event{
		Common: Common{
			Timestamp:      ts,
			AdminID:        r.AdminUser,
			UserID:         r.AffectedUser,
			SessionID:      r.SessionID,
			RemoteIP:       r.RemoteIP,
			RemoteHost:     r.RemoteHost,
			TrackingCookie: r.TrackingCookie,
			Comment:        r.Comment,
		},
		Action:  Action(r.Action),
		Data:    r.Data,
		Payload: payload,
	}, nil
}

// NewEvent constructs an event from semantic parameters on the write path,
// encoding the payload into its persisted data string. Parameter violations
// surface as ValidationError (or UnknownFlagError for unregistered flags) and
// must block the administrative action before anything is written.
func NewEvent(action Action, c Common, p Payload) (*Event, error) {
	v, ok := variants[action]
	if !ok {
		return nil, &UnknownActionError{Action: string(action)}
	}
	data, err := v.encode(p)
	if err != nil {
		return nil, err
	}
	return &Event{Common: c, Action: action, Data: data, Payload: p}, nil
}
