package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lacarta/internal/app/catalog/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type promotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository создает репозиторий промо-акций
func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

// Create сохраняет акцию вместе с привязками в одной транзакции
func (r *promotionRepository) Create(ctx context.Context, promotion *entity.Promotion, applicability []entity.PromotionApplicability) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(promotion).Error; err != nil {
			return fmt.Errorf("failed to create promotion: %w", err)
		}
		if len(applicability) > 0 {
			if err := tx.Create(&applicability).Error; err != nil {
				return fmt.Errorf("failed to create promotion applicability: %w", err)
			}
		}
		return nil
	})
}

// GetByID получает акцию по ID
func (r *promotionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Promotion, error) {
	var promotion entity.Promotion
	result := r.db.WithContext(ctx).First(&promotion, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("failed to get promotion: %w", result.Error)
	}

	return &promotion, nil
}

// GetAll получает все акции, новые первыми
func (r *promotionRepository) GetAll(ctx context.Context) ([]entity.Promotion, error) {
	var promotions []entity.Promotion
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&promotions)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to get promotions: %w", result.Error)
	}

	return promotions, nil
}

// GetActive получает только акции с is_active = true
// Темпоральную фильтрацию по ним выполняет планировщик в service layer
func (r *promotionRepository) GetActive(ctx context.Context) ([]entity.Promotion, error) {
	var promotions []entity.Promotion
	result := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&promotions)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to get active promotions: %w", result.Error)
	}

	return promotions, nil
}

// Update перезаписывает строку акции целиком
// applicability nil - привязки не трогаем; не-nil - полная замена
func (r *promotionRepository) Update(ctx context.Context, promotion *entity.Promotion, applicability *[]entity.PromotionApplicability) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Promotion{}).
			Where("id = ?", promotion.ID).
			Updates(map[string]interface{}{
				"title":        promotion.Title,
				"description":  promotion.Description,
				"image_url":    promotion.ImageURL,
				"valid_from":   promotion.ValidFrom,
				"valid_to":     promotion.ValidTo,
				"start_time":   promotion.StartTime,
				"end_time":     promotion.EndTime,
				"days_of_week": promotion.DaysOfWeek,
				"is_active":    promotion.IsActive,
				"is_priority":  promotion.IsPriority,
				"updated_at":   promotion.UpdatedAt,
			})

		if result.Error != nil {
			return fmt.Errorf("failed to update promotion: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrPromotionNotFound
		}

		if applicability != nil {
			if err := tx.Where("promotion_id = ?", promotion.ID).
				Delete(&entity.PromotionApplicability{}).Error; err != nil {
				return fmt.Errorf("failed to clear promotion applicability: %w", err)
			}
			if len(*applicability) > 0 {
				if err := tx.Create(applicability).Error; err != nil {
					return fmt.Errorf("failed to replace promotion applicability: %w", err)
				}
			}
		}

		return nil
	})
}

// Delete удаляет акцию вместе с привязками
func (r *promotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", id).
			Delete(&entity.PromotionApplicability{}).Error; err != nil {
			return fmt.Errorf("failed to delete promotion applicability: %w", err)
		}

		result := tx.Delete(&entity.Promotion{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete promotion: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrPromotionNotFound
		}

		return nil
	})
}

// DeactivateExpired снимает is_active с акций, чьё окно валидности закончилось
// Вызывается фоновым sweep-ом, не обработчиками запросов
func (r *promotionRepository) DeactivateExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Promotion{}).
		Where("is_active = ? AND valid_to IS NOT NULL AND valid_to < ?", true, before).
		Update("is_active", false)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate expired promotions: %w", result.Error)
	}

	return result.RowsAffected, nil
}
