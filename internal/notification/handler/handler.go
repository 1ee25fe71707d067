package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vendorhub/internal/notification/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/httputil"
	"vendorhub/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, vendorID id.VendorID, draft models.Draft) (*models.Notification, error)
	Get(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error)
	ListByVendor(ctx context.Context, vendorID id.VendorID, filter models.ListFilter) ([]*models.Notification, error)
	ListUnread(ctx context.Context, vendorID id.VendorID) ([]*models.Notification, error)
	ListPendingActions(ctx context.Context, vendorID id.VendorID) ([]*models.Notification, error)
	ListOverdueActions(ctx context.Context, vendorID id.VendorID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, vendorID id.VendorID) (int, error)
	Archive(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error)
	Dismiss(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error)
	CompleteAction(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error)
	Delete(ctx context.Context, notificationID id.NotificationID) error
	Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error)
}

// Handler serves /api/vendor-notifications.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/vendor-notifications", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/stats/vendor/{vendorId}", h.handleStats)
		r.Get("/vendor/{vendorId}", h.handleListByVendor)
		r.Get("/vendor/{vendorId}/unread", h.vendorList(h.service.ListUnread, "failed to list unread notifications"))
		r.Get("/vendor/{vendorId}/pending-actions", h.vendorList(h.service.ListPendingActions, "failed to list pending actions"))
		r.Get("/vendor/{vendorId}/overdue-actions", h.vendorList(h.service.ListOverdueActions, "failed to list overdue actions"))
		r.Put("/vendor/{vendorId}/read-all", h.handleMarkAllRead)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}/read", h.transition(h.service.MarkRead, "failed to mark notification read"))
		r.Put("/{id}/archive", h.transition(h.service.Archive, "failed to archive notification"))
		r.Put("/{id}/dismiss", h.transition(h.service.Dismiss, "failed to dismiss notification"))
		r.Put("/{id}/complete-action", h.transition(h.service.CompleteAction, "failed to complete action"))
		r.Delete("/{id}", h.handleDelete)
	})
}

type listResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Count         int                    `json:"count"`
}

type markAllResponse struct {
	Updated int `json:"updated"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	n, err := h.service.Create(ctx, req.vendorID, req.draft)
	if err != nil {
		h.fail(w, r, "failed to create notification", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	n, err := h.service.Get(r.Context(), notificationID)
	if err != nil {
		h.fail(w, r, "failed to load notification", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) handleListByVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var filter models.ListFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		if filter.Status, err = models.ParseStatus(raw); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	out, err := h.service.ListByVendor(r.Context(), vendorID, filter)
	if err != nil {
		h.fail(w, r, "failed to list notifications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Notifications: out, Count: len(out)})
}

func (h *Handler) vendorList(list func(context.Context, id.VendorID) ([]*models.Notification, error), msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		out, err := list(r.Context(), vendorID)
		if err != nil {
			h.fail(w, r, msg, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, listResponse{Notifications: out, Count: len(out)})
	}
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	count, err := h.service.MarkAllRead(r.Context(), vendorID)
	if err != nil {
		h.fail(w, r, "failed to mark notifications read", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, markAllResponse{Updated: count})
}

func (h *Handler) transition(apply func(context.Context, id.NotificationID) (*models.Notification, error), msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notificationID, err := id.ParseNotificationID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		n, err := apply(r.Context(), notificationID)
		if err != nil {
			h.fail(w, r, msg, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, n)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), notificationID); err != nil {
		h.fail(w, r, "failed to delete notification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.Stats(r.Context(), vendorID)
	if err != nil {
		h.fail(w, r, "failed to load notification stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
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
