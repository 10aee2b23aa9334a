package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lacarta/internal/app/catalog/entity"
	"lacarta/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPromotionService мок для PromotionOperations в тестах handler
type MockPromotionService struct {
	mock.Mock
}

func (m *MockPromotionService) CreatePromotion(ctx context.Context, req *entity.CreatePromotionRequest) (*entity.Promotion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Promotion), args.Error(1)
}

func (m *MockPromotionService) UpdatePromotion(ctx context.Context, id uuid.UUID, req *entity.UpdatePromotionRequest) (*entity.Promotion, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Promotion), args.Error(1)
}

func (m *MockPromotionService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPromotionService) GetPromotion(ctx context.Context, id uuid.UUID) (*entity.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Promotion), args.Error(1)
}

func (m *MockPromotionService) ListPromotions(ctx context.Context) ([]entity.Promotion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Promotion), args.Error(1)
}

func (m *MockPromotionService) EligibleNow(ctx context.Context) ([]entity.Promotion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Promotion), args.Error(1)
}

func (m *MockPromotionService) DeactivateExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func setupPromotionRouter(mockService *MockPromotionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewPromotionHandler(mockService)

	router.GET("/promotions/current", h.GetCurrentPromotions)
	router.GET("/promotions", h.GetPromotions)
	router.GET("/promotions/:id", h.GetPromotion)
	router.POST("/promotions", h.CreatePromotion)
	router.PUT("/promotions/:id", h.UpdatePromotion)
	router.DELETE("/promotions/:id", h.DeletePromotion)

	return router
}

func testPromotion(title string) entity.Promotion {
	return entity.Promotion{
		ID:        uuid.New(),
		Title:     title,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

// ===================== GetCurrentPromotions Tests =====================

func TestGetCurrentPromotionsHandler_Success(t *testing.T) {
	mockService := new(MockPromotionService)
	mockService.On("EligibleNow", mock.Anything).
		Return([]entity.Promotion{testPromotion("Happy Hour")}, nil)

	router := setupPromotionRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/promotions/current", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.PromotionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Happy Hour", resp.Promotions[0].Title)
}

func TestGetCurrentPromotionsHandler_EmptyShowcase(t *testing.T) {
	mockService := new(MockPromotionService)
	mockService.On("EligibleNow", mock.Anything).Return([]entity.Promotion{}, nil)

	router := setupPromotionRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/promotions/current", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.PromotionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Total)
}

// ===================== CreatePromotion Tests =====================

func TestCreatePromotionHandler_Success(t *testing.T) {
	promotion := testPromotion("June Special")

	mockService := new(MockPromotionService)
	mockService.On("CreatePromotion", mock.Anything, mock.AnythingOfType("*entity.CreatePromotionRequest")).
		Return(&promotion, nil)

	router := setupPromotionRouter(mockService)

	body := []byte(`{"title": "June Special", "valid_from": "2025-06-01", "valid_to": "2025-06-30"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/promotions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreatePromotionHandler_QuotaRejection(t *testing.T) {
	mockService := new(MockPromotionService)
	mockService.On("CreatePromotion", mock.Anything, mock.AnythingOfType("*entity.CreatePromotionRequest")).
		Return(nil, &service.QuotaError{
			Code:     service.QuotaCodeOverlap,
			Blocking: []string{"First", "Second"},
		})

	router := setupPromotionRouter(mockService)

	body := []byte(`{"title": "Third"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/promotions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp entity.QuotaErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.QuotaCodeOverlap, resp.Code)
	assert.ElementsMatch(t, []string{"First", "Second"}, resp.Blocking)
}

func TestCreatePromotionHandler_InvalidDateFormat(t *testing.T) {
	mockService := new(MockPromotionService)

	router := setupPromotionRouter(mockService)

	body := []byte(`{"title": "Bad Dates", "valid_from": "01.06.2025"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/promotions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreatePromotion")
}

func TestCreatePromotionHandler_HalfOpenTimeWindow(t *testing.T) {
	mockService := new(MockPromotionService)
	mockService.On("CreatePromotion", mock.Anything, mock.AnythingOfType("*entity.CreatePromotionRequest")).
		Return(nil, service.ErrTimeWindowIncomplete)

	router := setupPromotionRouter(mockService)

	body := []byte(`{"title": "Broken", "start_time": "09:00:00"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/promotions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ===================== UpdatePromotion Tests =====================

func TestUpdatePromotionHandler_QuotaRejection(t *testing.T) {
	promotionID := uuid.New()

	mockService := new(MockPromotionService)
	mockService.On("UpdatePromotion", mock.Anything, promotionID, mock.AnythingOfType("*entity.UpdatePromotionRequest")).
		Return(nil, &service.QuotaError{
			Code:     service.QuotaCodePriority,
			Blocking: []string{"Priority One", "Priority Two"},
		})

	router := setupPromotionRouter(mockService)

	body := []byte(`{"is_priority": true}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/promotions/"+promotionID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp entity.QuotaErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.QuotaCodePriority, resp.Code)
}

func TestUpdatePromotionHandler_NotFound(t *testing.T) {
	promotionID := uuid.New()

	mockService := new(MockPromotionService)
	mockService.On("UpdatePromotion", mock.Anything, promotionID, mock.AnythingOfType("*entity.UpdatePromotionRequest")).
		Return(nil, service.ErrPromotionNotFound)

	router := setupPromotionRouter(mockService)

	body := []byte(`{"title": "Ghost"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/promotions/"+promotionID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===================== DeletePromotion Tests =====================

func TestDeletePromotionHandler_Success(t *testing.T) {
	promotionID := uuid.New()

	mockService := new(MockPromotionService)
	mockService.On("DeletePromotion", mock.Anything, promotionID).Return(nil)

	router := setupPromotionRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/promotions/"+promotionID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestDeletePromotionHandler_InvalidID(t *testing.T) {
	mockService := new(MockPromotionService)

	router := setupPromotionRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/promotions/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "DeletePromotion")
}
