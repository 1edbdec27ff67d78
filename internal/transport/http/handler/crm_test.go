package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCRMSvc struct{ mock.Mock }

func (m *mockCRMSvc) Create(ctx context.Context, req domain.CreateCRMRequest) (*domain.CRMRecord, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.CRMRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCRMSvc) List(ctx context.Context) ([]domain.CRMRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CRMRecord), args.Error(1)
}
func (m *mockCRMSvc) Get(ctx context.Context, recordID string) (*domain.CRMRecord, error) {
	args := m.Called(ctx, recordID)
	if r, _ := args.Get(0).(*domain.CRMRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCRMSvc) Update(ctx context.Context, recordID string, req domain.UpdateCRMRequest) (*domain.CRMRecord, error) {
	args := m.Called(ctx, recordID, req)
	if r, _ := args.Get(0).(*domain.CRMRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCRMSvc) Delete(ctx context.Context, recordID string) error {
	return m.Called(ctx, recordID).Error(0)
}
func (m *mockCRMSvc) GetByStatus(ctx context.Context, status string) ([]domain.CRMRecord, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.CRMRecord), args.Error(1)
}
func (m *mockCRMSvc) GetByAssignedTo(ctx context.Context, assignedTo string) ([]domain.CRMRecord, error) {
	args := m.Called(ctx, assignedTo)
	return args.Get(0).([]domain.CRMRecord), args.Error(1)
}
func (m *mockCRMSvc) GetByTag(ctx context.Context, tag string) ([]domain.CRMRecord, error) {
	args := m.Called(ctx, tag)
	return args.Get(0).([]domain.CRMRecord), args.Error(1)
}
func (m *mockCRMSvc) GetByLeadSource(ctx context.Context, source string) ([]domain.CRMRecord, error) {
	args := m.Called(ctx, source)
	return args.Get(0).([]domain.CRMRecord), args.Error(1)
}
func (m *mockCRMSvc) GetHighValueDeals(ctx context.Context, minValue float64) ([]domain.CRMRecord, error) {
	args := m.Called(ctx, minValue)
	return args.Get(0).([]domain.CRMRecord), args.Error(1)
}
func (m *mockCRMSvc) GetUpcomingFollowUps(ctx context.Context) ([]domain.CRMRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CRMRecord), args.Error(1)
}
func (m *mockCRMSvc) GetFollowUpsOnDate(ctx context.Context, date time.Time) ([]domain.CRMRecord, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.CRMRecord), args.Error(1)
}

func newCRMRouter(svc *mockCRMSvc) chi.Router {
	h := NewCRMHandler(svc)
	r := chi.NewRouter()
	r.Post("/crm", h.Create)
	r.Get("/crm", h.List)
	r.Get("/crm/high-value", h.GetHighValueDeals)
	r.Get("/crm/followups/on", h.GetFollowUpsOnDate)
	r.Get("/crm/status/{status}", h.GetByStatus)
	r.Get("/crm/{id}", h.Get)
	r.Put("/crm/{id}", h.Update)
	r.Delete("/crm/{id}", h.Delete)
	return r
}

func TestCRMCreate(t *testing.T) {
	svc := &mockCRMSvc{}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(req domain.CreateCRMRequest) bool {
		return req.ContactName == "Dana Reyes"
	})).Return(&domain.CRMRecord{ID: "rec1", ContactName: "Dana Reyes"}, nil)

	body, _ := json.Marshal(map[string]interface{}{"contact_name": "Dana Reyes"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crm", bytes.NewReader(body))
	newCRMRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var env CRMEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "rec1", env.Record.ID)
}

func TestCRMCreate_MissingContactName(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crm", bytes.NewReader([]byte(`{"company":"Acme"}`)))
	newCRMRouter(&mockCRMSvc{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCRMGet_NotFound(t *testing.T) {
	svc := &mockCRMSvc{}
	svc.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/crm/ghost", nil)
	newCRMRouter(svc).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCRMUpdate_Patch(t *testing.T) {
	svc := &mockCRMSvc{}
	svc.On("Update", mock.Anything, "rec1", mock.MatchedBy(func(req domain.UpdateCRMRequest) bool {
		return req.Status != nil && *req.Status == "Won" && req.ContactName == nil
	})).Return(&domain.CRMRecord{ID: "rec1", Status: "Won"}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/crm/rec1", bytes.NewReader([]byte(`{"status":"Won"}`)))
	newCRMRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestCRMHighValue_BadMinValue(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/crm/high-value?min_value=lots", nil)
	newCRMRouter(&mockCRMSvc{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCRMFollowUpsOnDate(t *testing.T) {
	svc := &mockCRMSvc{}
	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	svc.On("GetFollowUpsOnDate", mock.Anything, day).Return([]domain.CRMRecord{{ID: "rec1"}}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/crm/followups/on?date=2026-09-15", nil)
	newCRMRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env CRMListEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Len(t, env.Records, 1)
	assert.Equal(t, "rec1", env.Records[0].ID)
}

func TestCRMFilter_EmptyResultIsEmptyArray(t *testing.T) {
	svc := &mockCRMSvc{}
	svc.On("GetByStatus", mock.Anything, "Lost").Return([]domain.CRMRecord(nil), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/crm/status/Lost", nil)
	newCRMRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":[]`)
}
