package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vendorhub/internal/document/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/httputil"
	"vendorhub/pkg/requestcontext"
)

const (
	maxUploadBytes     = 10 << 20
	defaultExpiryDays  = 30
	multipartMemory    = 1 << 20
	fileField          = "file"
	defaultContentType = "application/octet-stream"
)

type Service interface {
	Upload(ctx context.Context, vendorID id.VendorID, up models.Upload, data []byte) (*models.Document, error)
	Get(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	Download(ctx context.Context, docID id.DocumentID) (*models.Document, io.ReadCloser, error)
	ListByVendor(ctx context.Context, vendorID id.VendorID, docType string) ([]*models.Document, error)
	Verify(ctx context.Context, docID id.DocumentID, verifiedBy, notes string) (*models.Document, error)
	Reject(ctx context.Context, docID id.DocumentID, rejectedBy, reason string) (*models.Document, error)
	UpdateDetails(ctx context.Context, docID id.DocumentID, details models.Details) (*models.Document, error)
	Delete(ctx context.Context, docID id.DocumentID) error
	ListExpiring(ctx context.Context, days int) ([]*models.Document, error)
	ListExpired(ctx context.Context) ([]*models.Document, error)
	VendorStats(ctx context.Context, vendorID id.VendorID) (*models.VendorStats, error)
	VerificationStats(ctx context.Context) (*models.VerificationStats, error)
}

// Handler serves /api/vendor-documents.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/vendor-documents", func(r chi.Router) {
		r.Post("/upload", h.handleUpload)
		r.Get("/expiring", h.handleExpiring)
		r.Get("/expired", h.handleExpired)
		r.Get("/stats/verification", h.handleVerificationStats)
		r.Get("/stats/vendor/{vendorId}", h.handleVendorStats)
		r.Get("/vendor/{vendorId}", h.handleListByVendor)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/download", h.handleDownload)
		r.Put("/{id}/verify", h.handleVerify)
		r.Put("/{id}/reject", h.handleReject)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type listResponse struct {
	Documents []*models.Document `json:"documents"`
	Count     int                `json:"count"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file exceeds the 10MB limit"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	vendorID, err := id.ParseVendorID(r.FormValue("vendor_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	expiry, err := parseDate("expiry_date", r.FormValue("expiry_date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	file, header, err := r.FormFile(fileField)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file is required"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read upload"))
		return
	}

	name := r.FormValue("document_name")
	if name == "" {
		name = header.Filename
	}
	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = defaultContentType
	}
	doc, err := h.service.Upload(r.Context(), vendorID, models.Upload{
		DocumentType: r.FormValue("document_type"),
		DocumentName: name,
		MimeType:     mime,
		ExpiryDate:   expiry,
	}, data)
	if err != nil {
		h.fail(w, r, "failed to upload document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, err := h.service.Get(r.Context(), docID)
	if err != nil {
		h.fail(w, r, "failed to load document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, rc, err := h.service.Download(r.Context(), docID)
	if err != nil {
		h.fail(w, r, "failed to download document", err)
		return
	}
	defer rc.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = defaultContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(doc.DocumentName))
	w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(r.Context(), "document download interrupted",
			"document_id", docID.String(),
			"error", err,
		)
	}
}

func (h *Handler) handleListByVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docs, err := h.service.ListByVendor(r.Context(), vendorID, r.URL.Query().Get("type"))
	if err != nil {
		h.fail(w, r, "failed to list documents", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Documents: docs, Count: len(docs)})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	doc, err := h.service.Verify(ctx, docID, req.VerifiedBy, req.Notes)
	if err != nil {
		h.fail(w, r, "failed to verify document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	doc, err := h.service.Reject(ctx, docID, req.RejectedBy, req.Reason)
	if err != nil {
		h.fail(w, r, "failed to reject document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DetailsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	doc, err := h.service.UpdateDetails(ctx, docID, models.Details(*req))
	if err != nil {
		h.fail(w, r, "failed to update document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), docID); err != nil {
		h.fail(w, r, "failed to delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExpiring(w http.ResponseWriter, r *http.Request) {
	days, err := httputil.QueryInt(r, "days", defaultExpiryDays)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docs, err := h.service.ListExpiring(r.Context(), days)
	if err != nil {
		h.fail(w, r, "failed to list expiring documents", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Documents: docs, Count: len(docs)})
}

func (h *Handler) handleExpired(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListExpired(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list expired documents", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Documents: docs, Count: len(docs)})
}

func (h *Handler) handleVendorStats(w http.ResponseWriter, r *http.Request) {
	vendorID, err := id.ParseVendorID(chi.URLParam(r, "vendorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.VendorStats(r.Context(), vendorID)
	if err != nil {
		h.fail(w, r, "failed to load document stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleVerificationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.VerificationStats(r.Context())
	if err != nil {
		h.fail(w, r, "failed to load verification stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelWarn
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeStorage {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
