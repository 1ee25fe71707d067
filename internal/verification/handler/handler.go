package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vendorhub/internal/verification/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/httputil"
	"vendorhub/pkg/requestcontext"
)

type Service interface {
	Initiate(ctx context.Context, vendorID id.VendorID, verificationType, initiatedBy string) (*models.Case, error)
	Get(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	ListByVendor(ctx context.Context, vendorID id.VendorID) ([]*models.Case, error)
	Assign(ctx context.Context, caseID id.CaseID, assignedTo string) (*models.Case, error)
	Complete(ctx context.Context, caseID id.CaseID, done models.Completion) (*models.Case, error)
	Cancel(ctx context.Context, caseID id.CaseID, cancelledBy, reason string) (*models.Case, error)
	UpdatePriority(ctx context.Context, caseID id.CaseID, priority models.Priority) (*models.Case, error)
	Schedule(ctx context.Context, caseID id.CaseID, expiry, nextReview *time.Time) (*models.Case, error)
	Resync(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	ListOverdue(ctx context.Context) ([]*models.Case, error)
	ListExpiring(ctx context.Context, days int) ([]*models.Case, error)
	ListHighPriority(ctx context.Context, limit int) ([]*models.Case, error)
	Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error)
}

// Handler serves /api/vendor-verifications.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/vendor-verifications", func(r chi.Router) {
		r.Get("/overdue", h.handleOverdue)
		r.Get("/expiring", h.handleExpiring)
		r.Get("/high-priority", h.handleHighPriority)
		r.Get("/stats/vendor/{vendorId}", h.handleStats)
		r.Post("/vendor/{vendorId}", h.handleInitiate)
		r.Get("/vendor/{vendorId}", h.handleListByVendor)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}/assign", h.handleAssign)
		r.Put("/{id}/complete", h.handleComplete)
		r.Put("/{id}/priority", h.handlePriority)
		r.Put("/{id}/schedule", h.handleSchedule)
		r.Put("/{id}/cancel", h.handleCancel)
		r.Post("/{id}/resync", h.handleResync)
	})
}

type listResponse struct {
	Cases []*models.Case `json:"cases"`
	Count int            `json:"count"`
}

func (h *Handler) handleInitiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[InitiateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Initiate(ctx, vendorID, req.VerificationType, req.InitiatedBy)
	if err != nil {
		h.fail(w, r, "failed to initiate verification", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), caseID)
	if err != nil {
		h.fail(w, r, "failed to load verification case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleListByVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cases, err := h.service.ListByVendor(r.Context(), vendorID)
	if err != nil {
		h.fail(w, r, "failed to list verification cases", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Cases: cases, Count: len(cases)})
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Assign(ctx, caseID, req.AssignedTo)
	if err != nil {
		h.fail(w, r, "failed to assign verification case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// handleComplete answers 200 with the case even when the vendor update
// fails afterwards; the error is reported alongside so the caller can resync.
func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CompleteRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Complete(ctx, caseID, models.Completion(*req))
	if err != nil && c == nil {
		h.fail(w, r, "failed to complete verification case", err)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "verification completed but vendor sync failed",
			"request_id", requestcontext.RequestID(ctx),
			"case_id", caseID.String(),
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusOK, syncFailure{Case: c, SyncError: string(dErrors.CodeOf(err))})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

type syncFailure struct {
	Case      *models.Case `json:"case"`
	SyncError string       `json:"vendor_sync_error"`
}

func (h *Handler) handlePriority(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PriorityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.UpdatePriority(ctx, caseID, req.priority)
	if err != nil {
		h.fail(w, r, "failed to update priority", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ScheduleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Schedule(ctx, caseID, req.expiry, req.nextReview)
	if err != nil {
		h.fail(w, r, "failed to schedule verification case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CancelRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Cancel(ctx, caseID, req.CancelledBy, req.Reason)
	if err != nil {
		h.fail(w, r, "failed to cancel verification case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleResync(w http.ResponseWriter, r *http.Request) {
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}
	c, err := h.service.Resync(r.Context(), caseID)
	if err != nil {
		h.fail(w, r, "failed to resync vendor verification", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleOverdue(w http.ResponseWriter, r *http.Request) {
	cases, err := h.service.ListOverdue(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list overdue cases", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Cases: cases, Count: len(cases)})
}

func (h *Handler) handleExpiring(w http.ResponseWriter, r *http.Request) {
	days, err := httputil.QueryInt(r, "days", 30)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cases, err := h.service.ListExpiring(r.Context(), days)
	if err != nil {
		h.fail(w, r, "failed to list expiring cases", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Cases: cases, Count: len(cases)})
}

func (h *Handler) handleHighPriority(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", 10)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cases, err := h.service.ListHighPriority(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "failed to list high priority cases", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Cases: cases, Count: len(cases)})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.Stats(r.Context(), vendorID)
	if err != nil {
		h.fail(w, r, "failed to load verification stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) caseID(w http.ResponseWriter, r *http.Request) (id.CaseID, bool) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CaseID{}, false
	}
	return caseID, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
