package service

import (
	"context"

	"lacarta/internal/app/catalog/entity"

	"github.com/google/uuid"
)

// CatalogOperations - контракт каталога для HTTP-слоя
type CatalogOperations interface {
	CreateProduct(ctx context.Context, createdBy uuid.UUID, req *entity.CreateProductRequest) (*entity.ProductDetail, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.ProductDetail, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetProductStatus(ctx context.Context, id uuid.UUID, active bool) (*entity.ProductDetail, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error)
	ListMenu(ctx context.Context, categoryName, categoryType string, onlyActive bool) ([]entity.ProductDetail, error)
	ListIngredients(ctx context.Context) ([]entity.Ingredient, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
}

// PromotionOperations - контракт промо-акций для HTTP-слоя и крон-задач
type PromotionOperations interface {
	CreatePromotion(ctx context.Context, req *entity.CreatePromotionRequest) (*entity.Promotion, error)
	UpdatePromotion(ctx context.Context, id uuid.UUID, req *entity.UpdatePromotionRequest) (*entity.Promotion, error)
	DeletePromotion(ctx context.Context, id uuid.UUID) error
	GetPromotion(ctx context.Context, id uuid.UUID) (*entity.Promotion, error)
	ListPromotions(ctx context.Context) ([]entity.Promotion, error)
	EligibleNow(ctx context.Context) ([]entity.Promotion, error)
	DeactivateExpired(ctx context.Context) (int64, error)
}
