package audit

import (
	"context"
	"fmt"
)

// Resolver maps a user id to a displayable identity. The surrounding
// application supplies it (a caching store lookup in production, a stub in
// tests); the taxonomy itself never fetches anything.
type Resolver interface {
	LookupUser(ctx context.Context, userID string) (Identity, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, userID string) (Identity, error)

func (f ResolverFunc) LookupUser(ctx context.Context, userID string) (Identity, error) {
	return f(ctx, userID)
}

// ResolveIdentities looks up every user the event's narrative references.
// Failed or pending lookups are simply absent from the result; rendering with
// a partial set produces placeholders and is superseded by a later render.
func ResolveIdentities(ctx context.Context, e *Event, r Resolver) Identities {
	ids := make(Identities)
	if r == nil {
		return ids
	}
	for _, userID := range e.ReferencedUsers() {
		identity, err := r.LookupUser(ctx, userID)
		if err != nil {
			continue
		}
		ids[userID] = identity
	}
	return ids
}

// Render produces the event's narrative from already-resolved identities.
// Pure and idempotent: the same event and identity set always yield the same
// string.
func (e *Event) Render(ids Identities) string {
	v, ok := variants[e.Action]
	if !ok {
		return fallbackNarrative(e.Record(), ids)
	}
	return v.describe(e, ids)
}

// Describe is the presentation adapter: resolve, then render. It exists as a
// separate seam so callers can swap the resolver (stub, batch, cached).
func Describe(ctx context.Context, e *Event, r Resolver) string {
	return e.Render(ResolveIdentities(ctx, e, r))
}

// DescribeRecord decodes and renders a persisted row. This is the fallback
// boundary: rows that fail to decode render their raw data in a neutral
// narrative instead of propagating the error into the surrounding view.
func DescribeRecord(ctx context.Context, rec Record, r Resolver) string {
	e, err := Decode(rec)
	if err != nil {
		ids := make(Identities)
		if r != nil {
			for _, userID := range []string{rec.AdminUser, rec.AffectedUser} {
				if userID == "" {
					continue
				}
				if identity, lookupErr := r.LookupUser(ctx, userID); lookupErr == nil {
					ids[userID] = identity
				}
			}
		}
		return fallbackNarrative(rec, ids)
	}
	return Describe(ctx, e, r)
}

// fallbackNarrative renders an undecodable row without losing the evidence.
func fallbackNarrative(rec Record, ids Identities) string {
	narrative := fmt.Sprintf("%s performed %s on %s",
		ids.Name(rec.AdminUser), rec.Action, ids.Name(rec.AffectedUser))
	if rec.Data != "" {
		narrative += fmt.Sprintf(" (unrecognized data %q)", rec.Data)
	}
	return withComment(narrative, rec.Comment)
}

// withComment appends the free-text comment when present.
func withComment(narrative, comment string) string {
	if comment == "" {
		return narrative
	}
	return narrative + fmt.Sprintf(" (%s)", comment)
}
