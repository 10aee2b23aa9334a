package repository

import (
	"context"
	"errors"
	"time"

	"lacarta/internal/app/catalog/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductNameTaken  = errors.New("product with this name already exists")
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrIngredientMissing = errors.New("ingredient row missing after upsert")
	ErrCategoryMissing   = errors.New("category row missing after upsert")
)

// DBTX - общий интерфейс пула соединений и транзакции pgx
// Позволяет словарным репозиториям работать внутри чужой транзакции
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IngredientRepository - словарь ингредиентов
type IngredientRepository interface {
	// Resolve идемпотентно сопоставляет имена со стабильными id, создавая
	// строки при первом упоминании. Порядок результата совпадает с порядком
	// входа, дубликаты во входе дают одинаковые id
	Resolve(ctx context.Context, db DBTX, names []string) ([]uuid.UUID, error)
	GetAll(ctx context.Context) ([]entity.Ingredient, error)
}

// CategoryRepository - словарь категорий, уникальных по (name, type)
type CategoryRepository interface {
	Resolve(ctx context.Context, db DBTX, refs []entity.CategoryRef) ([]uuid.UUID, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
}

// ProductFilterKind - тег фильтра чтения меню
// Компилируется в параметризованное условие, никогда в конкатенацию строк
type ProductFilterKind int

const (
	FilterNone ProductFilterKind = iota
	FilterByCategoryName
	FilterByCategoryType
)

type ProductFilter struct {
	Kind       ProductFilterKind
	Value      string
	OnlyActive bool
}

// ProductPatch - частичное обновление продукта
// nil-поле означает "оставить как есть"; для Images пустой не-nil срез
// означает "удалить все изображения"
type ProductPatch struct {
	Name              *string
	Price             *float64
	Description       *string
	AlcoholPercentage *float64
	Ingredients       *[]string
	Categories        *[]entity.CategoryRef
	Images            *[]string
}

// ProductRepository - транзакционный путь записи каталога
// Каждая мутация выполняется в одной транзакции: продукт, связи и изображения
// либо меняются все вместе, либо не меняются вовсе
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product, ingredients []string, categories []entity.CategoryRef, images []string) (*entity.ProductDetail, error)
	// Update возвращает гидратированный агрегат и список URL изображений,
	// ставших сиротами - их blob-ы вызывающий удаляет после коммита
	Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*entity.ProductDetail, []string, error)
	// Delete возвращает URL всех изображений удалённого продукта
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.ProductDetail, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error)
	List(ctx context.Context, filter ProductFilter) ([]entity.ProductDetail, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// PromotionRepository - хранилище промо-акций и их привязок
type PromotionRepository interface {
	Create(ctx context.Context, promotion *entity.Promotion, applicability []entity.PromotionApplicability) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Promotion, error)
	GetAll(ctx context.Context) ([]entity.Promotion, error)
	GetActive(ctx context.Context) ([]entity.Promotion, error)
	// Update перезаписывает строку целиком; applicability nil - не трогать,
	// не-nil - полная замена привязок
	Update(ctx context.Context, promotion *entity.Promotion, applicability *[]entity.PromotionApplicability) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeactivateExpired снимает is_active с акций, чьё valid_to раньше даты before
	DeactivateExpired(ctx context.Context, before time.Time) (int64, error)
}
