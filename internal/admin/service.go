// Package admin implements the administrative actions of the console. The
// write path validates and encodes an audit event, persists it fail-closed,
// and queues it for downstream fan-out; the read path decodes persisted rows
// and renders narratives through the injected identity resolver.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit/publish"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/platform/metrics"
	"github.com/arXiv/arxiv-admin-console-sub000/pkg/requestcontext"
)

// ErrNoActingAdmin is returned when the write path runs without an
// authenticated admin in context. Behind the admin middleware this cannot
// happen; reaching it means a wiring bug, not a user error.
var ErrNoActingAdmin = errors.New("no acting admin in request context")

// Service coordinates the audit event model with storage, fan-out, and
// identity resolution.
type Service struct {
	store     audit.Store
	resolver  audit.Resolver
	publisher *publish.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithPublisher enables downstream fan-out of recorded events.
func WithPublisher(p *publish.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the timestamp source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store audit.Store, resolver audit.Resolver, logger *slog.Logger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	if resolver == nil {
		return nil, errors.New("identity resolver is required")
	}
	s := &Service{
		store:    store,
		resolver: resolver,
		logger:   logger,
		tracer:   otel.Tracer("admin-console/admin"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// -----------------------------------------------------------------------------
// Write path
// -----------------------------------------------------------------------------

// SetFlag records a flip-flag event for a registered user flag.
func (s *Service) SetFlag(ctx context.Context, userID, flagKey string, value any, comment string) (int64, error) {
	payload, err := audit.NewFlagPayload(flagKey, value)
	if err != nil {
		return 0, err
	}
	return s.record(ctx, audit.ActionFlipFlag, userID, comment, payload)
}

// SuspendUser records a suspend-user event (banned flag set).
func (s *Service) SuspendUser(ctx context.Context, userID, comment string) (int64, error) {
	return s.record(ctx, audit.ActionSuspendUser, userID, comment, audit.NewSuspensionPayload(true))
}

// UnsuspendUser records an unsuspend-user event (banned flag cleared).
func (s *Service) UnsuspendUser(ctx context.Context, userID, comment string) (int64, error) {
	return s.record(ctx, audit.ActionUnsuspendUser, userID, comment, audit.NewSuspensionPayload(false))
}

// ChangeStatus records a veto-status transition.
func (s *Service) ChangeStatus(ctx context.Context, userID, before, after, comment string) (int64, error) {
	payload := audit.StatusPayload{Before: audit.VetoStatus(before), After: audit.VetoStatus(after)}
	return s.record(ctx, audit.ActionChangeStatus, userID, comment, payload)
}

// ChangeEmail records a change-email event.
func (s *Service) ChangeEmail(ctx context.Context, userID, newEmail, comment string) (int64, error) {
	id, err := s.record(ctx, audit.ActionChangeEmail, userID, comment, audit.EmailPayload{NewEmail: newEmail})
	if err != nil {
		return 0, err
	}
	// The cached identity now carries a stale email.
	if invalidator, ok := s.resolver.(interface {
		Invalidate(context.Context, string) error
	}); ok {
		if invErr := invalidator.Invalidate(ctx, userID); invErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "identity cache invalidation failed", "user_id", userID, "error", invErr)
		}
	}
	return id, nil
}

// NotePasswordChange records a change-password event; the password change
// itself happens in the user service.
func (s *Service) NotePasswordChange(ctx context.Context, userID, comment string) (int64, error) {
	return s.record(ctx, audit.ActionChangePassword, userID, comment, audit.CommentPayload{})
}

// BecomeUser records an impersonation and the session it opened.
func (s *Service) BecomeUser(ctx context.Context, userID string, newSessionID int64) (int64, error) {
	return s.record(ctx, audit.ActionBecomeUser, userID, "", audit.BecomeUserPayload{NewSessionID: newSessionID})
}

// AddComment records a free-text administrative comment on a user.
func (s *Service) AddComment(ctx context.Context, userID, comment string) (int64, error) {
	if comment == "" {
		return 0, &audit.ValidationError{Field: "comment", Reason: "must not be empty"}
	}
	return s.record(ctx, audit.ActionComment, userID, comment, audit.CommentPayload{})
}

// PaperAction records one of the paper-ownership family events.
func (s *Service) PaperAction(ctx context.Context, action audit.Action, userID, paperID, comment string) (int64, error) {
	if !audit.IsPaperAction(action) {
		return 0, &audit.UnknownActionError{Action: string(action)}
	}
	return s.record(ctx, action, userID, comment, audit.PaperPayload{PaperID: paperID})
}

// Named paper operations. Each is a fixed-action form of PaperAction.

func (s *Service) AddPaperOwner(ctx context.Context, userID, paperID, comment string) (int64, error) {
	return s.PaperAction(ctx, audit.ActionAddPaperOwner, userID, paperID, comment)
}

// AddPaperOwnerFromProcess records the variant written by the bulk
// process-ownership screen.
func (s *Service) AddPaperOwnerFromProcess(ctx context.Context, userID, paperID, comment string) (int64, error) {
	return s.PaperAction(ctx, audit.ActionAddPaperOwner2, userID, paperID, comment)
}

func (s *Service) ChangePaperPassword(ctx context.Context, userID, paperID, comment string) (int64, error) {
	return s.PaperAction(ctx, audit.ActionChangePaperPassword, userID, paperID, comment)
}

func (s *Service) MakeAuthor(ctx context.Context, userID, paperID, comment string) (int64, error) {
	return s.PaperAction(ctx, audit.ActionMakeAuthor, userID, paperID, comment)
}

func (s *Service) MakeNonauthor(ctx context.Context, userID, paperID, comment string) (int64, error) {
	return s.PaperAction(ctx, audit.ActionMakeNonauthor, userID, paperID, comment)
}

func (s *Service) RevokePaperOwnership(ctx context.Context, userID, paperID, comment string) (int64, error) {
	return s.PaperAction(ctx, audit.ActionRevokePaperOwner, userID, paperID, comment)
}

func (s *Service) RestorePaperOwnership(ctx context.Context, userID, paperID, comment string) (int64, error) {
	return s.PaperAction(ctx, audit.ActionUnrevokePaperOwner, userID, paperID, comment)
}

// MakeModerator records a make-moderator event for a category.
func (s *Service) MakeModerator(ctx context.Context, userID, category, comment string) (int64, error) {
	return s.record(ctx, audit.ActionMakeModerator, userID, comment, audit.ModeratorPayload{Category: category})
}

// UnmakeModerator records an unmake-moderator event for a category.
func (s *Service) UnmakeModerator(ctx context.Context, userID, category, comment string) (int64, error) {
	return s.record(ctx, audit.ActionUnmakeModerator, userID, comment, audit.ModeratorPayload{Category: category})
}

// RecordEndorsementAudit records an endorsed-by-suspect or
// got-negative-endorsement event. The affected user is the endorsee.
func (s *Service) RecordEndorsementAudit(ctx context.Context, action audit.Action, endorserID, category, endorseeID, comment string) (int64, error) {
	if action != audit.ActionEndorsedBySuspect && action != audit.ActionGotNegativeEndorsement {
		return 0, &audit.UnknownActionError{Action: string(action)}
	}
	payload := audit.EndorsementPayload{EndorserID: endorserID, Category: category, EndorseeID: endorseeID}
	return s.record(ctx, action, endorseeID, comment, payload)
}

// record is the single write path: construct (validating), persist
// (fail-closed), then fan out and account.
func (s *Service) record(ctx context.Context, action audit.Action, userID, comment string, payload audit.Payload) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "admin.record",
		trace.WithAttributes(attribute.String("audit.action", string(action))))
	defer span.End()

	adminID := requestcontext.AdminID(ctx)
	if adminID == "" {
		return 0, ErrNoActingAdmin
	}

	event, err := audit.NewEvent(action, audit.Common{
		Timestamp:      s.now(),
		AdminID:        adminID,
		UserID:         userID,
		SessionID:      requestcontext.SessionID(ctx),
		RemoteIP:       requestcontext.ClientIP(ctx),
		RemoteHost:     requestcontext.RemoteHost(ctx),
		TrackingCookie: requestcontext.TrackingCookie(ctx),
		Comment:        comment,
	}, payload)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	entryID, err := s.store.Append(ctx, event)
	if err != nil {
		span.RecordError(err)
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "CRITICAL: audit persistence failed",
				"action", action,
				"admin_user", adminID,
				"affected_user", userID,
				"error", err,
			)
		}
		return 0, fmt.Errorf("audit persistence failed: %w", err)
	}

	if s.publisher != nil {
		s.publisher.Emit(entryID, event)
	}
	if s.metrics != nil {
		s.metrics.EventsRecorded.WithLabelValues(string(action)).Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"log_type", "audit",
			"entry_id", entryID,
			"admin_user", adminID,
			"affected_user", userID,
			"request_id", requestcontext.RequestID(ctx),
			"user_agent", requestcontext.UserAgent(ctx),
		)
	}
	return entryID, nil
}

// -----------------------------------------------------------------------------
// Read path
// -----------------------------------------------------------------------------

// Entry is one audit row together with its rendered narrative.
type Entry struct {
	Record    audit.Record
	Narrative string
}

// ListRecent returns the newest audit entries with narratives.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	ctx, span := s.tracer.Start(ctx, "admin.list_recent")
	defer span.End()

	records, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.renderAll(ctx, records), nil
}

// ListByUser returns the newest audit entries affecting one user.
func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	ctx, span := s.tracer.Start(ctx, "admin.list_by_user",
		trace.WithAttributes(attribute.String("audit.affected_user", userID)))
	defer span.End()

	records, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.renderAll(ctx, records), nil
}

// GetEntry returns a single audit entry with its narrative.
func (s *Service) GetEntry(ctx context.Context, id int64) (Entry, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Record: rec, Narrative: s.narrative(ctx, rec)}, nil
}

func (s *Service) renderAll(ctx context.Context, records []audit.Record) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{Record: rec, Narrative: s.narrative(ctx, rec)})
	}
	return entries
}

// narrative renders one row, accounting decode failures. Decode errors never
// propagate past here; the fallback narrative carries the raw payload.
func (s *Service) narrative(ctx context.Context, rec audit.Record) string {
	if s.metrics != nil {
		s.metrics.NarrativesRendered.Inc()
	}
	event, err := audit.Decode(rec)
	if err != nil {
		if s.metrics != nil {
			s.metrics.FallbackRenders.Inc()
			s.metrics.DecodeFailures.WithLabelValues(failureKind(err)).Inc()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "audit row failed to decode",
				"entry_id", rec.ID,
				"action", rec.Action,
				"error", err,
			)
		}
		return audit.DescribeRecord(ctx, rec, s.resolver)
	}
	return audit.Describe(ctx, event, s.resolver)
}

func failureKind(err error) string {
	var (
		unknownAction *audit.UnknownActionError
		unknownFlag   *audit.UnknownFlagError
		decodeErr     *audit.DecodeError
	)
	switch {
	case errors.As(err, &unknownAction):
		return "unknown_action"
	case errors.As(err, &unknownFlag):
		return "unknown_flag"
	case errors.As(err, &decodeErr):
		return "malformed_payload"
	}
	return "other"
}
