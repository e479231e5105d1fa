package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptrace "github.com/supplytrace/backend/internal/application/trace"
	"github.com/supplytrace/backend/internal/domain/shared"
)

type stubTraceService struct {
	response *apptrace.TraceResponse
	err      error
	lastReq  apptrace.TraceRequest
}

func (s *stubTraceService) Trace(_ context.Context, _, _ uuid.UUID, req apptrace.TraceRequest) (*apptrace.TraceResponse, error) {
	s.lastReq = req
	return s.response, s.err
}

type stubTransparencyService struct {
	response    *apptrace.TransparencyResponse
	refresh     *apptrace.BulkRefreshResponse
	err         error
	lastForce   bool
	lastCompany uuid.UUID
	lastRefresh apptrace.BulkRefreshRequest
}

func (s *stubTransparencyService) Get(_ context.Context, _, _ uuid.UUID, force bool) (*apptrace.TransparencyResponse, error) {
	s.lastForce = force
	return s.response, s.err
}

func (s *stubTransparencyService) BulkRefresh(_ context.Context, companyID uuid.UUID, req apptrace.BulkRefreshRequest) (*apptrace.BulkRefreshResponse, error) {
	s.lastCompany = companyID
	s.lastRefresh = req
	return s.refresh, s.err
}

func newTraceTestRouter(traces traceabilityService, transparency transparencyService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewTraceHandler(traces, transparency).RegisterRoutes(api)
	return engine
}

func TestTraceHandler_Trace(t *testing.T) {
	actor := uuid.New()
	poID := uuid.New()

	t.Run("returns the tree and binds query options", func(t *testing.T) {
		traces := &stubTraceService{response: &apptrace.TraceResponse{
			RootPOID:    poID,
			RootNumber:  "PO-20260831-AB12CD34",
			GeneratedAt: time.Now(),
		}}
		engine := newTraceTestRouter(traces, &stubTransparencyService{})

		w := doJSON(t, engine, http.MethodGet,
			"/api/v1/purchase-orders/"+poID.String()+"/trace?max_depth=5&allow_diamond_revisits=false",
			actor.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 5, traces.lastReq.MaxDepth)
		require.NotNil(t, traces.lastReq.AllowDiamondRevisits)
		assert.False(t, *traces.lastReq.AllowDiamondRevisits)
	})

	t.Run("maps depth validation errors to 400", func(t *testing.T) {
		traces := &stubTraceService{err: shared.NewValidationError("max depth must be between 1 and 10")}
		engine := newTraceTestRouter(traces, &stubTransparencyService{})

		w := doJSON(t, engine, http.MethodGet,
			"/api/v1/purchase-orders/"+poID.String()+"/trace?max_depth=11",
			actor.String(), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires the company header", func(t *testing.T) {
		engine := newTraceTestRouter(&stubTraceService{}, &stubTransparencyService{})

		w := doJSON(t, engine, http.MethodGet,
			"/api/v1/purchase-orders/"+poID.String()+"/trace", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTraceHandler_Transparency(t *testing.T) {
	actor := uuid.New()
	poID := uuid.New()

	t.Run("returns scores and honors force", func(t *testing.T) {
		transparency := &stubTransparencyService{response: &apptrace.TransparencyResponse{
			POID:               poID,
			TransparencyToMill: 0.95,
			MillGrade:          "A",
		}}
		engine := newTraceTestRouter(&stubTraceService{}, transparency)

		w := doJSON(t, engine, http.MethodGet,
			"/api/v1/purchase-orders/"+poID.String()+"/transparency?force=true",
			actor.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, transparency.lastForce)
	})
}

func TestTraceHandler_BulkRefresh(t *testing.T) {
	actor := uuid.New()

	t.Run("refreshes the acting company's orders", func(t *testing.T) {
		transparency := &stubTransparencyService{refresh: &apptrace.BulkRefreshResponse{
			CompanyID: actor,
			Refreshed: 3,
		}}
		engine := newTraceTestRouter(&stubTraceService{}, transparency)

		w := doJSON(t, engine, http.MethodPost,
			"/api/v1/companies/"+actor.String()+"/transparency/refresh",
			actor.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, actor, transparency.lastCompany)
	})

	t.Run("binds force and max age query options", func(t *testing.T) {
		transparency := &stubTransparencyService{refresh: &apptrace.BulkRefreshResponse{CompanyID: actor}}
		engine := newTraceTestRouter(&stubTraceService{}, transparency)

		w := doJSON(t, engine, http.MethodPost,
			"/api/v1/companies/"+actor.String()+"/transparency/refresh?force=true&max_age_minutes=30",
			actor.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, transparency.lastRefresh.Force)
		assert.Equal(t, 30, transparency.lastRefresh.MaxAgeMinutes)
	})

	t.Run("rejects refreshing another company", func(t *testing.T) {
		engine := newTraceTestRouter(&stubTraceService{}, &stubTransparencyService{})

		w := doJSON(t, engine, http.MethodPost,
			"/api/v1/companies/"+uuid.NewString()+"/transparency/refresh",
			actor.String(), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
