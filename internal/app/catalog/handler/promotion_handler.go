package handler

import (
	"errors"
	"net/http"

	"lacarta/internal/app/catalog/entity"
	"lacarta/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PromotionHandler обрабатывает HTTP запросы промо-акций с использованием Gin
type PromotionHandler struct {
	promotionService service.PromotionOperations
	validator        *validator.Validate
}

// NewPromotionHandler создает новый обработчик промо-акций
func NewPromotionHandler(promotionService service.PromotionOperations) *PromotionHandler {
	return &PromotionHandler{
		promotionService: promotionService,
		validator:        validator.New(),
	}
}

// GetCurrentPromotions обрабатывает GET /promotions/current
// Публичная витрина: живые сейчас акции, максимум две
func (h *PromotionHandler) GetCurrentPromotions(c *gin.Context) {
	promotions, err := h.promotionService.EligibleNow(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get promotions"})
		return
	}

	c.JSON(http.StatusOK, entity.PromotionListResponse{
		Promotions: promotions,
		Total:      len(promotions),
	})
}

// GetPromotions обрабатывает GET /promotions
// Админский список всех акций без темпорального фильтра
func (h *PromotionHandler) GetPromotions(c *gin.Context) {
	promotions, err := h.promotionService.ListPromotions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get promotions"})
		return
	}

	c.JSON(http.StatusOK, entity.PromotionListResponse{
		Promotions: promotions,
		Total:      len(promotions),
	})
}

// GetPromotion обрабатывает GET /promotions/{id}
func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promotion ID"})
		return
	}

	promotion, err := h.promotionService.GetPromotion(c.Request.Context(), promotionID)
	if err != nil {
		if errors.Is(err, service.ErrPromotionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get promotion"})
		return
	}

	c.JSON(http.StatusOK, promotion)
}

// CreatePromotion обрабатывает POST /promotions
// Запись проходит через quota guard-ы: отказ возвращает 409 с кодом лимита
// и названиями блокирующих акций
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var req entity.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	promotion, err := h.promotionService.CreatePromotion(c.Request.Context(), &req)
	if err != nil {
		if h.writePromotionError(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promotion"})
		return
	}

	c.JSON(http.StatusCreated, promotion)
}

// UpdatePromotion обрабатывает PUT /promotions/{id}
func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promotion ID"})
		return
	}

	var req entity.UpdatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	promotion, err := h.promotionService.UpdatePromotion(c.Request.Context(), promotionID, &req)
	if err != nil {
		if h.writePromotionError(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update promotion"})
		return
	}

	c.JSON(http.StatusOK, promotion)
}

// DeletePromotion обрабатывает DELETE /promotions/{id}
func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promotion ID"})
		return
	}

	if err := h.promotionService.DeletePromotion(c.Request.Context(), promotionID); err != nil {
		if errors.Is(err, service.ErrPromotionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete promotion"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Promotion deleted successfully",
	})
}

// writePromotionError маппит доменные ошибки записи акций на HTTP-статусы
// Возвращает true, если ошибка была распознана и ответ записан
func (h *PromotionHandler) writePromotionError(c *gin.Context, err error) bool {
	var quotaErr *service.QuotaError
	switch {
	case errors.Is(err, service.ErrPromotionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
		return true
	case errors.Is(err, service.ErrTimeWindowIncomplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time and end_time must be set together"})
		return true
	case errors.As(err, &quotaErr):
		c.JSON(http.StatusConflict, entity.QuotaErrorResponse{
			Error:    "Promotion limit exceeded",
			Code:     quotaErr.Code,
			Message:  quotaErr.Error(),
			Blocking: quotaErr.Blocking,
		})
		return true
	}
	return false
}
