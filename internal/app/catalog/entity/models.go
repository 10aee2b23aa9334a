package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product представляет позицию меню (напиток или блюдо)
type Product struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Price             float64   `json:"price" db:"price"`
	Description       string    `json:"description" db:"description"`
	AlcoholPercentage *float64  `json:"alcohol_percentage,omitempty" db:"alcohol_percentage"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedBy         uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// Ingredient - запись словаря ингредиентов
// Создаётся лениво при первом упоминании; продуктовые операции её не удаляют
type Ingredient struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// Типы категорий, общие для всего каталога
const (
	CategoryTypeSpirit     = "destilado"
	CategoryTypeDrinkClass = "clasificacion"
	CategoryTypeFoodClass  = "clasificacion comida"
)

// Category - запись словаря категорий, уникальна по паре (name, type)
type Category struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Type       string    `json:"type" db:"type"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	IsPriority bool      `json:"is_priority" db:"is_priority"`
}

// CategoryRef - пара (name, type), которой продукт ссылается на категорию
type CategoryRef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Image - изображение продукта; строка в БД и blob во внешнем хранилище
// должны в итоге сходиться (БД - источник истины, очистка blob-ов best-effort)
type Image struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	URL       string    `json:"url" db:"url"`
}

// ProductDetail - гидратированный агрегат продукта для ответов API
// Массивы никогда не содержат null-заглушек
type ProductDetail struct {
	Product
	Ingredients []string      `json:"ingredients"`
	Categories  []CategoryRef `json:"categories"`
	Images      []string      `json:"images"`
}

// Promotion представляет промо-акцию для публичной витрины
// Временные поля задают окно показа: даты включительно с обеих сторон,
// время суток - оба поля или ни одного, дни недели - пустой набор значит каждый день
type Promotion struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url" gorm:"column:image_url"`
	ValidFrom   *time.Time `json:"valid_from" gorm:"type:date"`
	ValidTo     *time.Time `json:"valid_to" gorm:"type:date"`
	StartTime   *string    `json:"start_time" gorm:"type:time"`
	EndTime     *string    `json:"end_time" gorm:"type:time"`
	DaysOfWeek  DaysOfWeek `json:"days_of_week" gorm:"type:integer[]"`
	IsActive    bool       `json:"is_active"`
	IsPriority  bool       `json:"is_priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Promotion) TableName() string { return "promotions" }

// PromotionApplicability - необязательная привязка промо-акции к части каталога
// Влияет только на визуальную пометку, не на расчёт eligible-now
type PromotionApplicability struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	PromotionID  uuid.UUID  `json:"promotion_id" gorm:"type:uuid;not null;index"`
	CategoryID   *uuid.UUID `json:"category_id" gorm:"type:uuid"`
	ProductID    *uuid.UUID `json:"product_id" gorm:"type:uuid"`
	CategoryType *string    `json:"category_type"`
}

func (PromotionApplicability) TableName() string { return "promotion_applicability" }

// Типы событий каталога
const (
	EventMenuProductCreated = "MENU_PRODUCT_CREATED"
	EventMenuProductUpdated = "MENU_PRODUCT_UPDATED"
	EventMenuProductDeleted = "MENU_PRODUCT_DELETED"
	EventPromotionChanged   = "PROMOTION_CHANGED"
)

// MenuEvent представляет событие изменения каталога для Kafka
type MenuEvent struct {
	EventType string    `json:"event_type"` // MENU_PRODUCT_CREATED, MENU_PRODUCT_UPDATED, MENU_PRODUCT_DELETED, PROMOTION_CHANGED
	EntityID  uuid.UUID `json:"entity_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}
