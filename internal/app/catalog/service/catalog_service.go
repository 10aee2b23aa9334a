package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lacarta/internal/app/catalog/entity"
	"lacarta/internal/app/catalog/repository"
	"lacarta/internal/app/catalog/util"
	"lacarta/pkg/logger"
	"lacarta/pkg/metrics"

	"github.com/google/uuid"
)

const vocabularyCacheTTL = 10 * time.Minute

// CatalogService - бизнес-логика каталога: продукты, словари, меню
// Репозиторий отвечает за атомарность; сервис - за порядок побочных эффектов:
// сначала коммит, потом удаление blob-ов, инвалидация кеша и события
type CatalogService struct {
	productRepo    repository.ProductRepository
	ingredientRepo repository.IngredientRepository
	categoryRepo   repository.CategoryRepository
	storage        util.BlobStore
	cache          util.VocabularyCache
	producer       util.MessagePublisher
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	ingredientRepo repository.IngredientRepository,
	categoryRepo repository.CategoryRepository,
	storage util.BlobStore,
	cache util.VocabularyCache,
	producer util.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		productRepo:    productRepo,
		ingredientRepo: ingredientRepo,
		categoryRepo:   categoryRepo,
		storage:        storage,
		cache:          cache,
		producer:       producer,
	}
}

// CreateProduct создаёт продукт вместе со связями и изображениями
func (s *CatalogService) CreateProduct(ctx context.Context, createdBy uuid.UUID, req *entity.CreateProductRequest) (*entity.ProductDetail, error) {
	exists, err := s.productRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		metrics.RecordCatalogWrite("create", err)
		return nil, err
	}
	if exists {
		metrics.RecordCatalogWrite("create", ErrProductNameTaken)
		return nil, ErrProductNameTaken
	}

	product := &entity.Product{
		ID:                uuid.New(),
		Name:              req.Name,
		Price:             req.Price,
		Description:       req.Description,
		AlcoholPercentage: req.AlcoholPercentage,
		IsActive:          true,
		CreatedBy:         createdBy,
		CreatedAt:         time.Now().UTC(),
	}

	detail, err := s.productRepo.Create(ctx, product, req.Ingredients, toCategoryRefs(req.Categories), req.Images)
	if err != nil {
		metrics.RecordCatalogWrite("create", err)
		if errors.Is(err, repository.ErrProductNameTaken) {
			return nil, ErrProductNameTaken
		}
		return nil, err
	}

	metrics.RecordCatalogWrite("create", nil)
	s.afterCatalogWrite(ctx, entity.EventMenuProductCreated, detail.ID, detail.Name)
	return detail, nil
}

// UpdateProduct частично обновляет продукт
// Blob-ы изображений, пропавших из агрегата, удаляются только после коммита:
// при откате транзакции хранилище остаётся нетронутым
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.ProductDetail, error) {
	patch := repository.ProductPatch{
		Name:              req.Name,
		Price:             req.Price,
		Description:       req.Description,
		AlcoholPercentage: req.AlcoholPercentage,
		Ingredients:       req.Ingredients,
		Images:            req.Images,
	}
	if req.Categories != nil {
		refs := toCategoryRefs(*req.Categories)
		patch.Categories = &refs
	}

	detail, orphaned, err := s.productRepo.Update(ctx, id, patch)
	if err != nil {
		metrics.RecordCatalogWrite("update", err)
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrProductNameTaken):
			return nil, ErrProductNameTaken
		}
		return nil, err
	}

	metrics.RecordCatalogWrite("update", nil)
	s.deleteBlobs(ctx, orphaned)
	s.afterCatalogWrite(ctx, entity.EventMenuProductUpdated, detail.ID, detail.Name)
	return detail, nil
}

// DeleteProduct удаляет продукт со связями и изображениями
// Словарные записи остаются: ингредиенты и категории переживают продукты
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	urls, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		metrics.RecordCatalogWrite("delete", err)
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	metrics.RecordCatalogWrite("delete", nil)
	s.deleteBlobs(ctx, urls)
	s.afterCatalogWrite(ctx, entity.EventMenuProductDeleted, id, "")
	return nil
}

// SetProductStatus переключает видимость продукта в публичном меню
func (s *CatalogService) SetProductStatus(ctx context.Context, id uuid.UUID, active bool) (*entity.ProductDetail, error) {
	detail, err := s.productRepo.SetActive(ctx, id, active)
	if err != nil {
		metrics.RecordCatalogWrite("set_status", err)
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	metrics.RecordCatalogWrite("set_status", nil)
	s.afterCatalogWrite(ctx, entity.EventMenuProductUpdated, detail.ID, detail.Name)
	return detail, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error) {
	detail, err := s.productRepo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return detail, nil
}

// ListMenu возвращает гидратированные продукты с необязательным фильтром
// по категории; onlyActive включается публичной витриной
func (s *CatalogService) ListMenu(ctx context.Context, categoryName, categoryType string, onlyActive bool) ([]entity.ProductDetail, error) {
	filter := repository.ProductFilter{Kind: repository.FilterNone, OnlyActive: onlyActive}
	switch {
	case categoryName != "":
		filter.Kind = repository.FilterByCategoryName
		filter.Value = categoryName
	case categoryType != "":
		filter.Kind = repository.FilterByCategoryType
		filter.Value = categoryType
	}
	return s.productRepo.List(ctx, filter)
}

// ListIngredients читает словарь ингредиентов через кеш
func (s *CatalogService) ListIngredients(ctx context.Context) ([]entity.Ingredient, error) {
	if cached, err := s.cache.GetIngredients(ctx); err == nil && cached != nil {
		metrics.RecordCacheHit("catalog", "vocabulary:ingredients")
		return cached, nil
	} else if err != nil {
		logger.Warn().Err(err).Msg("Ingredients cache read failed, falling back to database")
	}
	metrics.RecordCacheMiss("catalog", "vocabulary:ingredients")

	ingredients, err := s.ingredientRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetIngredients(ctx, ingredients, vocabularyCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache ingredients")
	}
	return ingredients, nil
}

// ListCategories читает словарь категорий через кеш
func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	if cached, err := s.cache.GetCategories(ctx); err == nil && cached != nil {
		metrics.RecordCacheHit("catalog", "vocabulary:categories")
		return cached, nil
	} else if err != nil {
		logger.Warn().Err(err).Msg("Categories cache read failed, falling back to database")
	}
	metrics.RecordCacheMiss("catalog", "vocabulary:categories")

	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetCategories(ctx, categories, vocabularyCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}
	return categories, nil
}

// deleteBlobs удаляет blob-ы по списку URL в режиме best-effort
// Ошибка удаления логируется и считается в метрике, но не влияет на результат
// операции: строки в БД уже закоммичены, они - источник истины
func (s *CatalogService) deleteBlobs(ctx context.Context, urls []string) {
	for _, url := range urls {
		name := s.storage.URLToName(url)
		if name == "" {
			logger.Warn().Str("url", url).Msg("Image URL does not belong to the storage bucket, skipping blob delete")
			continue
		}
		if err := s.storage.Delete(ctx, name); err != nil && !errors.Is(err, util.ErrObjectNotFound) {
			metrics.BlobDeleteFailures.Inc()
			logger.Warn().Err(err).Str("object", name).Msg("Failed to delete orphaned image blob")
		}
	}
}

// afterCatalogWrite выполняет пост-коммитные эффекты записи:
// инвалидацию словарного кеша и событие в Kafka, обе best-effort
func (s *CatalogService) afterCatalogWrite(ctx context.Context, eventType string, id uuid.UUID, name string) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate vocabulary cache")
	}

	event := entity.MenuEvent{
		EventType: eventType,
		EntityID:  id,
		Name:      name,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal menu event")
		return
	}
	if err := s.producer.PublishMessage(ctx, id.String(), payload); err != nil {
		metrics.RecordKafkaError("catalog", "menu-events", "publish")
		logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish menu event")
		return
	}
	metrics.RecordKafkaMessageProduced("catalog", "menu-events")
}

func toCategoryRefs(reqs []entity.CategoryRefRequest) []entity.CategoryRef {
	refs := make([]entity.CategoryRef, 0, len(reqs))
	for _, r := range reqs {
		refs = append(refs, entity.CategoryRef{Name: r.Name, Type: r.Type})
	}
	return refs
}
