package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vendorhub/internal/review/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/httputil"
	"vendorhub/pkg/requestcontext"
)

type Service interface {
	Submit(ctx context.Context, vendorID id.VendorID, sub models.Submission) (*models.Review, error)
	Get(ctx context.Context, reviewID id.ReviewID) (*models.Review, error)
	ListByVendor(ctx context.Context, vendorID id.VendorID, filter models.ListFilter) ([]*models.Review, error)
	Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error)
	Approve(ctx context.Context, reviewID id.ReviewID, moderator string) (*models.Review, error)
	Reject(ctx context.Context, reviewID id.ReviewID, moderator, reason string) (*models.Review, error)
	Flag(ctx context.Context, reviewID id.ReviewID, moderator, reason string) (*models.Review, error)
	Hide(ctx context.Context, reviewID id.ReviewID, moderator, reason string) (*models.Review, error)
	Respond(ctx context.Context, reviewID id.ReviewID, text string) (*models.Review, error)
	MarkHelpful(ctx context.Context, reviewID id.ReviewID) (*models.Review, error)
	MarkNotHelpful(ctx context.Context, reviewID id.ReviewID) (*models.Review, error)
	Delete(ctx context.Context, reviewID id.ReviewID) error
}

// Handler serves /api/vendor-reviews.
type Handler struct {
	service     Service
	logger      *slog.Logger
	submitLimit func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithSubmitLimiter guards review submission, typically with a per-IP limiter.
func WithSubmitLimiter(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.submitLimit = mw
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/vendor-reviews", func(r chi.Router) {
		if h.submitLimit != nil {
			r.With(h.submitLimit).Post("/", h.handleSubmit)
		} else {
			r.Post("/", h.handleSubmit)
		}
		r.Get("/vendor/{vendorId}", h.handleListByVendor)
		r.Get("/vendor/{vendorId}/stats", h.handleStats)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}/approve", h.handleModeration(models.StatusApproved))
		r.Put("/{id}/reject", h.handleModeration(models.StatusRejected))
		r.Put("/{id}/flag", h.handleModeration(models.StatusFlagged))
		r.Put("/{id}/hide", h.handleModeration(models.StatusHidden))
		r.Put("/{id}/vendor-response", h.handleRespond)
		r.Post("/{id}/helpful", h.handleVote(true))
		r.Post("/{id}/not-helpful", h.handleVote(false))
		r.Delete("/{id}", h.handleDelete)
	})
}

type listResponse struct {
	Reviews []*models.Review `json:"reviews"`
	Count   int              `json:"count"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	review, err := h.service.Submit(ctx, req.vendorID, req.Submission)
	if err != nil {
		h.fail(w, r, "failed to submit review", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, review)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reviewID, err := id.ParseReviewID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	review, err := h.service.Get(r.Context(), reviewID)
	if err != nil {
		h.fail(w, r, "failed to load review", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, review)
}

func (h *Handler) handleListByVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var filter models.ListFilter
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		if filter.Status, err = models.ParseStatus(raw); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	if raw := q.Get("sentiment"); raw != "" {
		if filter.Sentiment, err = models.ParseSentiment(raw); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	reviews, err := h.service.ListByVendor(r.Context(), vendorID, filter)
	if err != nil {
		h.fail(w, r, "failed to list reviews", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Reviews: reviews, Count: len(reviews)})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.Stats(r.Context(), vendorID)
	if err != nil {
		h.fail(w, r, "failed to load review stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleModeration(target models.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reviewID, err := id.ParseReviewID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		req, ok := httputil.DecodeAndPrepare[ModerationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}

		var review *models.Review
		switch target {
		case models.StatusApproved:
			review, err = h.service.Approve(ctx, reviewID, req.ModeratedBy)
		case models.StatusRejected:
			review, err = h.service.Reject(ctx, reviewID, req.ModeratedBy, req.Reason)
		case models.StatusFlagged:
			review, err = h.service.Flag(ctx, reviewID, req.ModeratedBy, req.Reason)
		default:
			review, err = h.service.Hide(ctx, reviewID, req.ModeratedBy, req.Reason)
		}
		if err != nil {
			h.fail(w, r, "failed to moderate review", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, review)
	}
}

func (h *Handler) handleRespond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewID, err := id.ParseReviewID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResponseRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	review, err := h.service.Respond(ctx, reviewID, req.Response)
	if err != nil {
		h.fail(w, r, "failed to save vendor response", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, review)
}

func (h *Handler) handleVote(helpful bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID, err := id.ParseReviewID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		var review *models.Review
		if helpful {
			review, err = h.service.MarkHelpful(r.Context(), reviewID)
		} else {
			review, err = h.service.MarkNotHelpful(r.Context(), reviewID)
		}
		if err != nil {
			h.fail(w, r, "failed to record vote", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, review)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reviewID, err := id.ParseReviewID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), reviewID); err != nil {
		h.fail(w, r, "failed to delete review", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
