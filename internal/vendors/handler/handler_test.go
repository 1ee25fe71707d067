package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorhub/internal/vendors/models"
	"vendorhub/internal/vendors/service"
	"vendorhub/internal/vendors/store"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/testutil"
)

type countFunc func(ctx context.Context, vendorID id.VendorID) (int, error)

func (f countFunc) CountVerified(ctx context.Context, vendorID id.VendorID) (int, error) {
	return f(ctx, vendorID)
}

func (f countFunc) CountCompleted(ctx context.Context, vendorID id.VendorID) (int, error) {
	return f(ctx, vendorID)
}

func newVendorRouter(t *testing.T) http.Handler {
	t.Helper()
	one := countFunc(func(context.Context, id.VendorID) (int, error) { return 1, nil })
	svc := service.New(store.NewInMemory(), service.WithVerificationCounters(one, one))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r
}

func register(t *testing.T, router http.Handler, email string) *models.Vendor {
	t.Helper()
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/vendors/", map[string]any{
		"name":          "Acme",
		"contact_email": email,
		"address":       map[string]string{"city": "Lisbon"},
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return testutil.UnmarshalResponse[models.Vendor](t, rr)
}

func TestRegisterAndGet(t *testing.T) {
	router := newVendorRouter(t)
	v := register(t, router, "ops@acme.test")
	assert.Equal(t, models.StatusPending, v.Status)
	assert.Equal(t, "Lisbon", v.Address.City)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/vendors/"+v.ID.String(), nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	got := testutil.UnmarshalResponse[models.Vendor](t, rr)
	assert.Equal(t, v.ID, got.ID)
}

func TestRegisterErrors(t *testing.T) {
	router := newVendorRouter(t)
	register(t, router, "dup@acme.test")

	t.Run("duplicate email", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/vendors/", map[string]string{
			"name": "Other", "contact_email": "dup@acme.test",
		}))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})

	t.Run("missing name", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/vendors/", map[string]string{
			"contact_email": "x@acme.test",
		}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/vendors/", nil)
		req.Body = io.NopCloser(strings.NewReader("{not json"))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestGetUnknownAndMalformedID(t *testing.T) {
	router := newVendorRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/vendors/"+uuid.NewString(), nil))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/vendors/not-a-uuid", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
}

func TestStatusVerifyAndDelete(t *testing.T) {
	router := newVendorRouter(t)
	v := register(t, router, "flow@acme.test")
	base := "/api/vendors/" + v.ID.String()

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPatch, base+"/status", map[string]string{"status": "approved"}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPatch, base+"/status", map[string]string{"status": "RETIRED"}))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, base+"/verify", map[string]string{"verified_by": "agent1"}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	verified := testutil.UnmarshalResponse[models.Vendor](t, rr)
	assert.Equal(t, models.StatusActive, verified.Status)
	assert.True(t, verified.IsVerified)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, base+"/verification-status", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	status := testutil.UnmarshalResponse[models.VerificationStatus](t, rr)
	assert.True(t, status.FullyVerified)
	assert.True(t, status.CanSell)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodDelete, base, nil))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, base, nil))
	got := testutil.UnmarshalResponse[models.Vendor](t, rr)
	assert.Equal(t, models.StatusInactive, got.Status)
}

func TestListStatsAndExport(t *testing.T) {
	router := newVendorRouter(t)
	register(t, router, "a@acme.test")
	register(t, router, "b@acme.test")

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/vendors/?status=PENDING&limit=1", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	list := testutil.UnmarshalResponse[listResponse](t, rr)
	assert.Equal(t, 1, list.Count)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/vendors/?verified=maybe", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/vendors/stats", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	stats := testutil.UnmarshalResponse[models.Stats](t, rr)
	assert.Equal(t, 2, stats.Total)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/vendors/export", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	require.NotZero(t, rr.Body.Len())
}

func TestRecomputeWithoutRatingSource(t *testing.T) {
	router := newVendorRouter(t)
	v := register(t, router, "metrics@acme.test")

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/vendors/"+v.ID.String()+"/update-metrics", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
}
