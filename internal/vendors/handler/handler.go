package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"vendorhub/internal/vendors/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/httputil"
	"vendorhub/pkg/requestcontext"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Service interface {
	Register(ctx context.Context, profile models.Profile) (*models.Vendor, error)
	Get(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Vendor, error)
	Stats(ctx context.Context) (*models.Stats, error)
	UpdateProfile(ctx context.Context, vendorID id.VendorID, profile models.Profile) (*models.Vendor, error)
	SetStatus(ctx context.Context, vendorID id.VendorID, status models.Status) (*models.Vendor, error)
	Delete(ctx context.Context, vendorID id.VendorID) error
	MarkVerified(ctx context.Context, vendorID id.VendorID, verifiedBy string) (*models.Vendor, error)
	RecomputeMetrics(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error)
	IsFullyVerified(ctx context.Context, vendorID id.VendorID) (*models.VerificationStatus, error)
	ExportXLSX(ctx context.Context, filter models.ListFilter, w io.Writer) (int, error)
}

// Handler serves /api/vendors.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/vendors", func(r chi.Router) {
		r.Post("/", h.handleRegister)
		r.Get("/", h.handleList)
		r.Get("/stats", h.handleStats)
		r.Get("/export", h.handleExport)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Patch("/{id}/status", h.handleSetStatus)
		r.Put("/{id}/verify", h.handleVerify)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/update-metrics", h.handleRecompute)
		r.Get("/{id}/verification-status", h.handleVerificationStatus)
	})
}

type listResponse struct {
	Vendors []*models.Vendor `json:"vendors"`
	Count   int              `json:"count"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ProfileRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	v, err := h.service.Register(ctx, req.Profile())
	if err != nil {
		h.fail(w, r, "failed to register vendor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	vendors, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "failed to list vendors", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Vendors: vendors, Count: len(vendors)})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, r, "failed to load vendor stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var buf bytes.Buffer
	if _, err := h.service.ExportXLSX(r.Context(), filter, &buf); err != nil {
		h.fail(w, r, "failed to export vendors", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="vendors.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := h.service.Get(r.Context(), vendorID)
	if err != nil {
		h.fail(w, r, "failed to load vendor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProfileRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	v, err := h.service.UpdateProfile(ctx, vendorID, req.Profile())
	if err != nil {
		h.fail(w, r, "failed to update vendor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	v, err := h.service.SetStatus(ctx, vendorID, req.parsed)
	if err != nil {
		h.fail(w, r, "failed to update vendor status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	v, err := h.service.MarkVerified(ctx, vendorID, req.VerifiedBy)
	if err != nil {
		h.fail(w, r, "failed to verify vendor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), vendorID); err != nil {
		h.fail(w, r, "failed to delete vendor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := h.service.RecomputeMetrics(r.Context(), vendorID)
	if err != nil {
		h.fail(w, r, "failed to recompute vendor metrics", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleVerificationStatus(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := h.service.IsFullyVerified(r.Context(), vendorID)
	if err != nil {
		h.fail(w, r, "failed to load verification status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
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

func parseListFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	filter := models.ListFilter{
		Category: q.Get("category"),
		Query:    q.Get("q"),
	}
	if raw := q.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st, err := models.ParseStatus(part)
			if err != nil {
				return filter, err
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}
	if raw := q.Get("verified"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeBadRequest, "verified must be true or false")
		}
		filter.Verified = &b
	}
	if raw := q.Get("min_rating"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || f > 5 {
			return filter, dErrors.New(dErrors.CodeBadRequest, "min_rating must be between 0 and 5")
		}
		filter.MinRating = f
	}
	var err error
	if filter.Limit, err = httputil.QueryInt(r, "limit", 0); err != nil {
		return filter, err
	}
	if filter.Offset, err = httputil.QueryInt(r, "offset", 0); err != nil {
		return filter, err
	}
	return filter, nil
}
