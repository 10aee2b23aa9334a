package service

import (
	"context"
	"testing"
	"time"

	"lacarta/internal/app/catalog/entity"
	"lacarta/internal/app/catalog/repository"
	"lacarta/internal/app/catalog/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Хелперы для создания тестовых данных

func newPromotionService(repo *mocks.MockPromotionRepository, producer *mocks.MockMessagePublisher, now time.Time) *PromotionService {
	svc := NewPromotionService(repo, producer)
	svc.now = func() time.Time { return now }
	return svc
}

func expectPublish(producer *mocks.MockMessagePublisher) {
	producer.On("PublishMessage", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("[]uint8")).Return(nil)
}

func livePromotion(title string, priority bool) entity.Promotion {
	return entity.Promotion{
		ID:         uuid.New(),
		Title:      title,
		IsActive:   true,
		IsPriority: priority,
		CreatedAt:  time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
	}
}

// ==================== Create ====================

func TestPromotionService_CreatePromotion_Success(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	repo.On("GetActive", ctx).Return([]entity.Promotion{}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*entity.Promotion"), mock.AnythingOfType("[]entity.PromotionApplicability")).Return(nil)
	expectPublish(producer)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	req := &entity.CreatePromotionRequest{Title: "Happy Hour"}
	promotion, err := svc.CreatePromotion(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "Happy Hour", promotion.Title)
	// Дефолты: активна, не приоритетна
	assert.True(t, promotion.IsActive)
	assert.False(t, promotion.IsPriority)
	repo.AssertExpectations(t)
}

func TestPromotionService_CreatePromotion_ParsesDates(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	repo.On("GetActive", ctx).Return([]entity.Promotion{}, nil)
	repo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	expectPublish(producer)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	from := "2025-06-01"
	to := "2025-06-30"
	req := &entity.CreatePromotionRequest{
		Title:     "June Special",
		ValidFrom: &from,
		ValidTo:   &to,
	}

	promotion, err := svc.CreatePromotion(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, promotion.ValidFrom)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), *promotion.ValidFrom)
	require.NotNil(t, promotion.ValidTo)
	assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), *promotion.ValidTo)
}

func TestPromotionService_CreatePromotion_HalfOpenTimeWindowRejected(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	start := "09:00:00"
	req := &entity.CreatePromotionRequest{Title: "Broken", StartTime: &start}

	promotion, err := svc.CreatePromotion(ctx, req)

	assert.Nil(t, promotion)
	assert.ErrorIs(t, err, ErrTimeWindowIncomplete)
	repo.AssertNotCalled(t, "Create")
}

// ==================== Quota guards ====================

func TestPromotionService_CreatePromotion_OverlapLimitRejected(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	existing := []entity.Promotion{
		livePromotion("First", false),
		livePromotion("Second", false),
	}
	repo.On("GetActive", ctx).Return(existing, nil)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	req := &entity.CreatePromotionRequest{Title: "Third"}
	promotion, err := svc.CreatePromotion(ctx, req)

	assert.Nil(t, promotion)

	var quotaErr *QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, QuotaCodeOverlap, quotaErr.Code)
	assert.ElementsMatch(t, []string{"First", "Second"}, quotaErr.Blocking)

	// Отклонённая запись не должна дойти до репозитория
	repo.AssertNotCalled(t, "Create")
	producer.AssertNotCalled(t, "PublishMessage")
}

func TestPromotionService_CreatePromotion_PriorityLimitRejected(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	existing := []entity.Promotion{
		livePromotion("Priority One", true),
		livePromotion("Priority Two", true),
	}
	repo.On("GetActive", ctx).Return(existing, nil)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	isPriority := true
	req := &entity.CreatePromotionRequest{Title: "Priority Three", IsPriority: &isPriority}
	promotion, err := svc.CreatePromotion(ctx, req)

	assert.Nil(t, promotion)

	var quotaErr *QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, QuotaCodePriority, quotaErr.Code)
	assert.Len(t, quotaErr.Blocking, 2)
	repo.AssertNotCalled(t, "Create")
}

func TestPromotionService_CreatePromotion_FutureScheduledPassesGuards(t *testing.T) {
	// Две акции живут сейчас, но кандидат стартует в будущем -
	// пересечения в момент записи нет, guard пропускает
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	existing := []entity.Promotion{
		livePromotion("First", false),
		livePromotion("Second", false),
	}
	repo.On("GetActive", ctx).Return(existing, nil)
	repo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	expectPublish(producer)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	from := "2025-07-01"
	req := &entity.CreatePromotionRequest{Title: "Next Month", ValidFrom: &from}

	promotion, err := svc.CreatePromotion(ctx, req)

	require.NoError(t, err)
	assert.NotNil(t, promotion)
}

func TestPromotionService_CreatePromotion_InactivePassesGuards(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	existing := []entity.Promotion{
		livePromotion("First", false),
		livePromotion("Second", false),
	}
	repo.On("GetActive", ctx).Return(existing, nil)
	repo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	expectPublish(producer)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	inactive := false
	req := &entity.CreatePromotionRequest{Title: "Draft", IsActive: &inactive}

	promotion, err := svc.CreatePromotion(ctx, req)

	require.NoError(t, err)
	assert.False(t, promotion.IsActive)
}

func TestPromotionService_UpdatePromotion_ExcludesSelfFromGuards(t *testing.T) {
	// Обновление одной из двух живых акций не должно блокироваться
	// её же собственной строкой в выборке
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	first := livePromotion("First", false)
	second := livePromotion("Second", false)

	repo.On("GetByID", ctx, first.ID).Return(&first, nil)
	repo.On("GetActive", ctx).Return([]entity.Promotion{first, second}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*entity.Promotion"), (*[]entity.PromotionApplicability)(nil)).Return(nil)
	expectPublish(producer)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	title := "First Renamed"
	promotion, err := svc.UpdatePromotion(ctx, first.ID, &entity.UpdatePromotionRequest{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "First Renamed", promotion.Title)
}

func TestPromotionService_UpdatePromotion_ActivationBlockedByOverlap(t *testing.T) {
	// Включение спящей акции при двух уже живых - это попытка создать
	// третье пересечение, guard обязан отказать
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	sleeping := livePromotion("Sleeping", false)
	sleeping.IsActive = false

	repo.On("GetByID", ctx, sleeping.ID).Return(&sleeping, nil)
	repo.On("GetActive", ctx).Return([]entity.Promotion{
		livePromotion("First", false),
		livePromotion("Second", false),
	}, nil)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	activate := true
	promotion, err := svc.UpdatePromotion(ctx, sleeping.ID, &entity.UpdatePromotionRequest{IsActive: &activate})

	assert.Nil(t, promotion)

	var quotaErr *QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, QuotaCodeOverlap, quotaErr.Code)
	repo.AssertNotCalled(t, "Update")
}

func TestPromotionService_UpdatePromotion_AlreadyLiveNotBlockedByOverlap(t *testing.T) {
	// Лимит ловит переход, создающий третью живую акцию. Переименование
	// акции, которая уже живёт третьей (гонка или дрейф времени),
	// переходом не является и проходить должно
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	third := livePromotion("Third", false)

	repo.On("GetByID", ctx, third.ID).Return(&third, nil)
	repo.On("GetActive", ctx).Return([]entity.Promotion{
		livePromotion("First", false),
		livePromotion("Second", false),
		third,
	}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*entity.Promotion"), (*[]entity.PromotionApplicability)(nil)).Return(nil)
	expectPublish(producer)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	title := "Third Renamed"
	promotion, err := svc.UpdatePromotion(ctx, third.ID, &entity.UpdatePromotionRequest{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "Third Renamed", promotion.Title)
	repo.AssertExpectations(t)
}

func TestPromotionService_UpdatePromotion_AlreadyPriorityNotBlockedByPriorityLimit(t *testing.T) {
	// Та же логика для приоритетного лимита: уже приоритетная живая акция
	// редактируется свободно, guard реагирует только на появление новой
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	third := livePromotion("Third", true)

	repo.On("GetByID", ctx, third.ID).Return(&third, nil)
	repo.On("GetActive", ctx).Return([]entity.Promotion{
		livePromotion("First", true),
		livePromotion("Second", true),
		third,
	}, nil)
	repo.On("Update", ctx, mock.Anything, (*[]entity.PromotionApplicability)(nil)).Return(nil)
	expectPublish(producer)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	description := "Reworded"
	_, err := svc.UpdatePromotion(ctx, third.ID, &entity.UpdatePromotionRequest{Description: &description})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPromotionService_UpdatePromotion_PriorityFlagBlockedByPriorityLimit(t *testing.T) {
	// Поднятие флага приоритета у обычной живой акции - переход:
	// при двух приоритетных живых guard обязан отказать
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	plain := livePromotion("Plain", false)

	repo.On("GetByID", ctx, plain.ID).Return(&plain, nil)
	repo.On("GetActive", ctx).Return([]entity.Promotion{
		livePromotion("First", true),
		livePromotion("Second", true),
	}, nil)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	promote := true
	promotion, err := svc.UpdatePromotion(ctx, plain.ID, &entity.UpdatePromotionRequest{IsPriority: &promote})

	assert.Nil(t, promotion)

	var quotaErr *QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, QuotaCodePriority, quotaErr.Code)
	repo.AssertNotCalled(t, "Update")
}

func TestPromotionService_UpdatePromotion_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	promotionID := uuid.New()
	repo.On("GetByID", ctx, promotionID).Return(nil, repository.ErrPromotionNotFound)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	title := "Ghost"
	promotion, err := svc.UpdatePromotion(ctx, promotionID, &entity.UpdatePromotionRequest{Title: &title})

	assert.Nil(t, promotion)
	assert.ErrorIs(t, err, ErrPromotionNotFound)
}

// ==================== Витрина ====================

func TestPromotionService_EligibleNow_ReturnsRankedSubset(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	priority := livePromotion("Priority", true)
	older := livePromotion("Older", false)
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := livePromotion("Newer", false)
	newer.CreatedAt = newer.CreatedAt.Add(time.Hour)

	repo.On("GetActive", ctx).Return([]entity.Promotion{older, priority, newer}, nil)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	promotions, err := svc.EligibleNow(ctx)

	require.NoError(t, err)
	require.Len(t, promotions, 2)
	assert.Equal(t, "Priority", promotions[0].Title)
	assert.Equal(t, "Newer", promotions[1].Title)
}

// ==================== Уборка ====================

func TestPromotionService_DeactivateExpired_PassesToday(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	today := time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC)
	repo.On("DeactivateExpired", ctx, today).Return(int64(3), nil)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	count, err := svc.DeactivateExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	repo.AssertExpectations(t)
}

// ==================== Delete ====================

func TestPromotionService_DeletePromotion_Success(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	promotionID := uuid.New()
	repo.On("Delete", ctx, promotionID).Return(nil)
	expectPublish(producer)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	err := svc.DeletePromotion(ctx, promotionID)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPromotionService_DeletePromotion_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPromotionRepository)
	producer := new(mocks.MockMessagePublisher)

	promotionID := uuid.New()
	repo.On("Delete", ctx, promotionID).Return(repository.ErrPromotionNotFound)

	svc := newPromotionService(repo, producer, wednesdayNoon())

	err := svc.DeletePromotion(ctx, promotionID)

	assert.ErrorIs(t, err, ErrPromotionNotFound)
	producer.AssertNotCalled(t, "PublishMessage")
}
