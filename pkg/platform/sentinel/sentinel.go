package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services and handlers can translate them into responses without
// knowing which backend produced them.
//
// These represent factual states about resources, not validation failures;
// payload and parameter validation uses the typed errors in internal/audit.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
