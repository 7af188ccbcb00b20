// Package handler exposes the admin console's audit operations over HTTP.
// Handlers stay thin: decode the request, call the admin service, translate
// domain errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/admin"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
	"github.com/arXiv/arxiv-admin-console-sub000/pkg/platform/sentinel"
)

type Handler struct {
	service      *admin.Service
	logger       *slog.Logger
	defaultLimit int
}

func New(service *admin.Service, logger *slog.Logger, defaultLimit int) *Handler {
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	return &Handler{service: service, logger: logger, defaultLimit: defaultLimit}
}

// Routes mounts the audit endpoints on a chi router. The caller wraps the
// returned router with the admin JWT guard.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/audit-log", h.listRecent)
	r.Get("/audit-log/{entryID}", h.getEntry)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/audit-log", h.listByUser)
		r.Post("/flags", h.setFlag)
		r.Post("/suspension", h.suspend)
		r.Delete("/suspension", h.unsuspend)
		r.Post("/status", h.changeStatus)
		r.Post("/email", h.changeEmail)
		r.Post("/password-change", h.notePasswordChange)
		r.Post("/impersonation", h.becomeUser)
		r.Post("/moderatorships", h.makeModerator)
		r.Delete("/moderatorships/{category}", h.unmakeModerator)
		r.Post("/paper-actions", h.paperAction)
		r.Post("/endorsement-audits", h.endorsementAudit)
		r.Post("/comments", h.addComment)
	})

	return r
}

// -----------------------------------------------------------------------------
// Read path
// -----------------------------------------------------------------------------

func (h *Handler) listRecent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListRecent(r.Context(), h.limit(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, admin.NewLogResponse(entries))
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListByUser(r.Context(), chi.URLParam(r, "userID"), h.limit(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, admin.NewLogResponse(entries))
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	if err != nil {
		h.badRequest(w, "entry id must be an integer")
		return
	}
	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, admin.NewEntryResponse(entry))
}

func (h *Handler) limit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return h.defaultLimit
}

// -----------------------------------------------------------------------------
// Write path
// -----------------------------------------------------------------------------

type flagRequest struct {
	Flag    string `json:"flag"`
	Value   any    `json:"value"`
	Comment string `json:"comment"`
}

func (h *Handler) setFlag(w http.ResponseWriter, r *http.Request) {
	var req flagRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.SetFlag(r.Context(), chi.URLParam(r, "userID"), req.Flag, req.Value, req.Comment)
	h.recorded(w, r, id, err)
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) suspend(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.SuspendUser(r.Context(), chi.URLParam(r, "userID"), req.Comment)
	h.recorded(w, r, id, err)
}

func (h *Handler) unsuspend(w http.ResponseWriter, r *http.Request) {
	// DELETE carries no body; the comment rides on a query parameter.
	id, err := h.service.UnsuspendUser(r.Context(), chi.URLParam(r, "userID"), r.URL.Query().Get("comment"))
	h.recorded(w, r, id, err)
}

type statusRequest struct {
	Before  string `json:"before"`
	After   string `json:"after"`
	Comment string `json:"comment"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.ChangeStatus(r.Context(), chi.URLParam(r, "userID"), req.Before, req.After, req.Comment)
	h.recorded(w, r, id, err)
}

type emailRequest struct {
	NewEmail string `json:"new_email"`
	Comment  string `json:"comment"`
}

func (h *Handler) changeEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.ChangeEmail(r.Context(), chi.URLParam(r, "userID"), req.NewEmail, req.Comment)
	h.recorded(w, r, id, err)
}

func (h *Handler) notePasswordChange(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.NotePasswordChange(r.Context(), chi.URLParam(r, "userID"), req.Comment)
	h.recorded(w, r, id, err)
}

type impersonationRequest struct {
	NewSessionID int64 `json:"new_session_id"`
}

func (h *Handler) becomeUser(w http.ResponseWriter, r *http.Request) {
	var req impersonationRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.BecomeUser(r.Context(), chi.URLParam(r, "userID"), req.NewSessionID)
	h.recorded(w, r, id, err)
}

type moderatorRequest struct {
	Category string `json:"category"`
	Comment  string `json:"comment"`
}

func (h *Handler) makeModerator(w http.ResponseWriter, r *http.Request) {
	var req moderatorRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.MakeModerator(r.Context(), chi.URLParam(r, "userID"), req.Category, req.Comment)
	h.recorded(w, r, id, err)
}

func (h *Handler) unmakeModerator(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.UnmakeModerator(r.Context(),
		chi.URLParam(r, "userID"),
		chi.URLParam(r, "category"),
		r.URL.Query().Get("comment"),
	)
	h.recorded(w, r, id, err)
}

type paperActionRequest struct {
	Action  string `json:"action"`
	PaperID string `json:"paper_id"`
	Comment string `json:"comment"`
}

func (h *Handler) paperAction(w http.ResponseWriter, r *http.Request) {
	var req paperActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.PaperAction(r.Context(), audit.Action(req.Action), chi.URLParam(r, "userID"), req.PaperID, req.Comment)
	h.recorded(w, r, id, err)
}

type endorsementAuditRequest struct {
	Action   string `json:"action"`
	Endorser string `json:"endorser"`
	Category string `json:"category"`
	Comment  string `json:"comment"`
}

func (h *Handler) endorsementAudit(w http.ResponseWriter, r *http.Request) {
	var req endorsementAuditRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.RecordEndorsementAudit(r.Context(),
		audit.Action(req.Action),
		req.Endorser,
		req.Category,
		chi.URLParam(r, "userID"),
		req.Comment,
	)
	h.recorded(w, r, id, err)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.AddComment(r.Context(), chi.URLParam(r, "userID"), req.Comment)
	h.recorded(w, r, id, err)
}

// -----------------------------------------------------------------------------
// Plumbing
// -----------------------------------------------------------------------------

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.badRequest(w, "malformed request body")
		return false
	}
	return true
}

func (h *Handler) recorded(w http.ResponseWriter, r *http.Request, entryID int64, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, admin.RecordedResponse{EntryID: entryID})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) badRequest(w http.ResponseWriter, reason string) {
	h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": reason})
}

// writeError translates domain errors to HTTP status codes. Validation
// failures are 422 so clients can distinguish rejected semantics from
// malformed requests.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation    *audit.ValidationError
		unknownAction *audit.UnknownActionError
		unknownFlag   *audit.UnknownFlagError
	)
	switch {
	case errors.As(err, &validation):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": validation.Error()})
	case errors.As(err, &unknownAction), errors.As(err, &unknownFlag):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, sentinel.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, admin.ErrNoActingAdmin):
		h.writeJSON(w, http.StatusForbidden, map[string]string{"error": "no acting admin"})
	default:
		if h.logger != nil {
			h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		}
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
