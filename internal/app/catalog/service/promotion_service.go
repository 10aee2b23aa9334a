package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lacarta/internal/app/catalog/entity"
	"lacarta/internal/app/catalog/repository"
	"lacarta/internal/app/catalog/util"
	"lacarta/pkg/logger"
	"lacarta/pkg/metrics"

	"github.com/google/uuid"
)

// PromotionService - бизнес-логика промо-акций
// Темпоральная видимость считается на лету предикатом eligibility;
// quota guard-ы ограничивают конфигурацию на пути записи.
// Поле now инъецируется ради детерминированных тестов
type PromotionService struct {
	repo     repository.PromotionRepository
	producer util.MessagePublisher
	now      func() time.Time
}

func NewPromotionService(repo repository.PromotionRepository, producer util.MessagePublisher) *PromotionService {
	return &PromotionService{
		repo:     repo,
		producer: producer,
		now:      time.Now,
	}
}

// CreatePromotion создаёт акцию после прохождения quota guard-ов
// Guard-ы консультативные: две конкурентные записи могут вместе превысить
// лимит, это терпимо - rankEligible всё равно режет показ до двух
func (s *PromotionService) CreatePromotion(ctx context.Context, req *entity.CreatePromotionRequest) (*entity.Promotion, error) {
	promotion, err := s.buildPromotion(req)
	if err != nil {
		return nil, err
	}

	if err := s.checkQuotas(ctx, promotion, nil); err != nil {
		return nil, err
	}

	applicability := toApplicability(promotion.ID, req.Applicability)
	if err := s.repo.Create(ctx, promotion, applicability); err != nil {
		metrics.RecordCatalogWrite("promotion_create", err)
		return nil, err
	}

	metrics.RecordCatalogWrite("promotion_create", nil)
	s.publishChange(ctx, promotion)
	return promotion, nil
}

// UpdatePromotion частично обновляет акцию
// Guard-ы проверяют итоговое состояние после слияния патча, а не сам патч:
// безобидное на вид изменение дат тоже может создать третью живую акцию.
// Состояние до патча передаётся guard-ам: квота ограничивает только переход,
// а не редактирование уже живой акции
func (s *PromotionService) UpdatePromotion(ctx context.Context, id uuid.UUID, req *entity.UpdatePromotionRequest) (*entity.Promotion, error) {
	promotion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPromotionNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, err
	}

	prev := *promotion
	if err := s.applyPatch(promotion, req); err != nil {
		return nil, err
	}

	if err := s.checkQuotas(ctx, promotion, &prev); err != nil {
		return nil, err
	}

	var applicability *[]entity.PromotionApplicability
	if req.Applicability != nil {
		rows := toApplicability(promotion.ID, *req.Applicability)
		applicability = &rows
	}

	if err := s.repo.Update(ctx, promotion, applicability); err != nil {
		metrics.RecordCatalogWrite("promotion_update", err)
		if errors.Is(err, repository.ErrPromotionNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, err
	}

	metrics.RecordCatalogWrite("promotion_update", nil)
	s.publishChange(ctx, promotion)
	return promotion, nil
}

func (s *PromotionService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		metrics.RecordCatalogWrite("promotion_delete", err)
		if errors.Is(err, repository.ErrPromotionNotFound) {
			return ErrPromotionNotFound
		}
		return err
	}
	metrics.RecordCatalogWrite("promotion_delete", nil)
	s.publishChange(ctx, &entity.Promotion{ID: id})
	return nil
}

func (s *PromotionService) GetPromotion(ctx context.Context, id uuid.UUID) (*entity.Promotion, error) {
	promotion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPromotionNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, err
	}
	return promotion, nil
}

func (s *PromotionService) ListPromotions(ctx context.Context) ([]entity.Promotion, error) {
	return s.repo.GetAll(ctx)
}

// EligibleNow возвращает акции для публичной витрины: живые в данный момент,
// отсортированные приоритетом и свежестью, не больше двух
// Результат намеренно не кешируется - предикат зависит от текущего времени
func (s *PromotionService) EligibleNow(ctx context.Context) ([]entity.Promotion, error) {
	active, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	ranked := rankEligible(active, s.now())
	metrics.PromotionsEligible.Set(float64(len(ranked)))
	return ranked, nil
}

// DeactivateExpired снимает флаг is_active с акций, чьё окно дат позади
// Запускается крон-задачей; для корректности не обязателен (предикат и так
// их не показывает), но держит админ-список честным
func (s *PromotionService) DeactivateExpired(ctx context.Context) (int64, error) {
	today := dateOnly(s.now())
	count, err := s.repo.DeactivateExpired(ctx, today)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Info().Int64("count", count).Msg("Deactivated expired promotions")
	}
	return count, nil
}

// === quota guards ===

// checkQuotas последовательно применяет оба лимита к кандидату
// candidate.ID исключается из выборки, чтобы обновление не блокировало само себя.
// prev - состояние до патча (nil при создании): лимит ловит только переход,
// создающий лишнюю живую акцию, а не патч, оставляющий уже живую акцию живой
func (s *PromotionService) checkQuotas(ctx context.Context, candidate, prev *entity.Promotion) error {
	active, err := s.repo.GetActive(ctx)
	if err != nil {
		return err
	}
	now := s.now()

	if err := checkPriorityQuota(active, candidate, prev, now); err != nil {
		return err
	}
	return checkOverlapQuota(active, candidate, prev, now)
}

// checkPriorityQuota не даёт набрать больше двух приоритетных живых акций:
// витрина показывает максимум две, третья приоритетная никогда не выйдет в показ
func checkPriorityQuota(active []entity.Promotion, candidate, prev *entity.Promotion, now time.Time) error {
	if !candidate.IsPriority || !isEligibleAt(candidate, now) {
		return nil
	}
	// Акция уже была приоритетной и живой - патч не создаёт новую
	if prev != nil && prev.IsPriority && isEligibleAt(prev, now) {
		return nil
	}

	var blocking []string
	for _, p := range active {
		if p.ID == candidate.ID || !p.IsPriority {
			continue
		}
		if isEligibleAt(&p, now) {
			blocking = append(blocking, p.Title)
		}
	}
	if len(blocking) >= maxVisiblePromotions {
		metrics.RecordQuotaRejection(QuotaCodePriority)
		return &QuotaError{Code: QuotaCodePriority, Blocking: blocking}
	}
	return nil
}

// checkOverlapQuota не даёт кандидату стать третьей живой акцией прямо сейчас
// Считается полный eligible-набор без усечения: усечённый всегда <= 2
// и guard никогда бы не сработал
func checkOverlapQuota(active []entity.Promotion, candidate, prev *entity.Promotion, now time.Time) error {
	if !isEligibleAt(candidate, now) {
		return nil
	}
	// Акция уже была живой - патч не добавляет пересечения
	if prev != nil && isEligibleAt(prev, now) {
		return nil
	}

	var blocking []string
	for _, p := range active {
		if p.ID == candidate.ID {
			continue
		}
		if isEligibleAt(&p, now) {
			blocking = append(blocking, p.Title)
		}
	}
	if len(blocking) >= maxVisiblePromotions {
		metrics.RecordQuotaRejection(QuotaCodeOverlap)
		return &QuotaError{Code: QuotaCodeOverlap, Blocking: blocking}
	}
	return nil
}

// === построение состояния из запросов ===

func (s *PromotionService) buildPromotion(req *entity.CreatePromotionRequest) (*entity.Promotion, error) {
	validFrom, err := parseDate(req.ValidFrom)
	if err != nil {
		return nil, err
	}
	validTo, err := parseDate(req.ValidTo)
	if err != nil {
		return nil, err
	}
	if err := validateTimeWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	promotion := &entity.Promotion{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ValidFrom:   validFrom,
		ValidTo:     validTo,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DaysOfWeek:  entity.DaysOfWeek(req.DaysOfWeek),
		IsActive:    true,
		IsPriority:  false,
		CreatedAt:   s.now().UTC(),
		UpdatedAt:   s.now().UTC(),
	}
	if req.IsActive != nil {
		promotion.IsActive = *req.IsActive
	}
	if req.IsPriority != nil {
		promotion.IsPriority = *req.IsPriority
	}
	return promotion, nil
}

func (s *PromotionService) applyPatch(promotion *entity.Promotion, req *entity.UpdatePromotionRequest) error {
	if req.Title != nil {
		promotion.Title = *req.Title
	}
	if req.Description != nil {
		promotion.Description = *req.Description
	}
	if req.ImageURL != nil {
		promotion.ImageURL = *req.ImageURL
	}
	if req.ValidFrom != nil {
		parsed, err := parseDate(req.ValidFrom)
		if err != nil {
			return err
		}
		promotion.ValidFrom = parsed
	}
	if req.ValidTo != nil {
		parsed, err := parseDate(req.ValidTo)
		if err != nil {
			return err
		}
		promotion.ValidTo = parsed
	}
	if req.StartTime != nil {
		promotion.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		promotion.EndTime = req.EndTime
	}
	if err := validateTimeWindow(promotion.StartTime, promotion.EndTime); err != nil {
		return err
	}
	if req.DaysOfWeek != nil {
		promotion.DaysOfWeek = entity.DaysOfWeek(*req.DaysOfWeek)
	}
	if req.IsActive != nil {
		promotion.IsActive = *req.IsActive
	}
	if req.IsPriority != nil {
		promotion.IsPriority = *req.IsPriority
	}
	promotion.UpdatedAt = s.now().UTC()
	return nil
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", *value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *value, err)
	}
	return &parsed, nil
}

// validateTimeWindow требует оба поля окна или ни одного
func validateTimeWindow(start, end *string) error {
	if (start == nil) != (end == nil) {
		return ErrTimeWindowIncomplete
	}
	return nil
}

func toApplicability(promotionID uuid.UUID, reqs []entity.ApplicabilityRequest) []entity.PromotionApplicability {
	rows := make([]entity.PromotionApplicability, 0, len(reqs))
	for _, r := range reqs {
		row := entity.PromotionApplicability{
			ID:           uuid.New(),
			PromotionID:  promotionID,
			CategoryType: r.CategoryType,
		}
		if r.CategoryID != nil {
			if id, err := uuid.Parse(*r.CategoryID); err == nil {
				row.CategoryID = &id
			}
		}
		if r.ProductID != nil {
			if id, err := uuid.Parse(*r.ProductID); err == nil {
				row.ProductID = &id
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *PromotionService) publishChange(ctx context.Context, promotion *entity.Promotion) {
	event := entity.MenuEvent{
		EventType: entity.EventPromotionChanged,
		EntityID:  promotion.ID,
		Name:      promotion.Title,
		Timestamp: s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal promotion event")
		return
	}
	if err := s.producer.PublishMessage(ctx, promotion.ID.String(), payload); err != nil {
		metrics.RecordKafkaError("catalog", "menu-events", "publish")
		logger.Warn().Err(err).Msg("Failed to publish promotion event")
		return
	}
	metrics.RecordKafkaMessageProduced("catalog", "menu-events")
}
