package mocks

import (
	"context"
	"time"

	"lacarta/internal/app/catalog/entity"
	"lacarta/internal/app/catalog/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockIngredientRepository мок для IngredientRepository
type MockIngredientRepository struct {
	mock.Mock
}

func (m *MockIngredientRepository) Resolve(ctx context.Context, db repository.DBTX, names []string) ([]uuid.UUID, error) {
	args := m.Called(ctx, db, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockIngredientRepository) GetAll(ctx context.Context) ([]entity.Ingredient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Ingredient), args.Error(1)
}

// MockCategoryRepository мок для CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Resolve(ctx context.Context, db repository.DBTX, refs []entity.CategoryRef) ([]uuid.UUID, error) {
	args := m.Called(ctx, db, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

// MockProductRepository мок для ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product, ingredients []string, categories []entity.CategoryRef, images []string) (*entity.ProductDetail, error) {
	args := m.Called(ctx, product, ingredients, categories, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductDetail), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id uuid.UUID, patch repository.ProductPatch) (*entity.ProductDetail, []string, error) {
	args := m.Called(ctx, id, patch)
	var detail *entity.ProductDetail
	if args.Get(0) != nil {
		detail = args.Get(0).(*entity.ProductDetail)
	}
	var orphaned []string
	if args.Get(1) != nil {
		orphaned = args.Get(1).([]string)
	}
	return detail, orphaned, args.Error(2)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.ProductDetail, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductDetail), args.Error(1)
}

func (m *MockProductRepository) GetDetail(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductDetail), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]entity.ProductDetail, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductDetail), args.Error(1)
}

func (m *MockProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// MockPromotionRepository мок для PromotionRepository
type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) Create(ctx context.Context, promotion *entity.Promotion, applicability []entity.PromotionApplicability) error {
	args := m.Called(ctx, promotion, applicability)
	return args.Error(0)
}

func (m *MockPromotionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) GetAll(ctx context.Context) ([]entity.Promotion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) GetActive(ctx context.Context) ([]entity.Promotion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) Update(ctx context.Context, promotion *entity.Promotion, applicability *[]entity.PromotionApplicability) error {
	args := m.Called(ctx, promotion, applicability)
	return args.Error(0)
}

func (m *MockPromotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPromotionRepository) DeactivateExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockVocabularyCache мок для VocabularyCache (Redis)
type MockVocabularyCache struct {
	mock.Mock
}

func (m *MockVocabularyCache) SetIngredients(ctx context.Context, ingredients []entity.Ingredient, ttl time.Duration) error {
	args := m.Called(ctx, ingredients, ttl)
	return args.Error(0)
}

func (m *MockVocabularyCache) GetIngredients(ctx context.Context) ([]entity.Ingredient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Ingredient), args.Error(1)
}

func (m *MockVocabularyCache) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	args := m.Called(ctx, categories, ttl)
	return args.Error(0)
}

func (m *MockVocabularyCache) GetCategories(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockVocabularyCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVocabularyCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMessagePublisher мок для MessagePublisher (Kafka)
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockBlobStore мок для BlobStore (внешнее хранилище изображений)
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, name, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockBlobStore) URLToName(url string) string {
	args := m.Called(url)
	return args.String(0)
}
