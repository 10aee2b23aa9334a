package util

import (
	"context"
	"time"

	"lacarta/internal/app/catalog/entity"
)

// VocabularyCache интерфейс кеша словарей ингредиентов и категорий
// Используется для dependency injection и упрощения тестирования
type VocabularyCache interface {
	SetIngredients(ctx context.Context, ingredients []entity.Ingredient, ttl time.Duration) error
	GetIngredients(ctx context.Context) ([]entity.Ingredient, error)
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	GetCategories(ctx context.Context) ([]entity.Category, error)
	Invalidate(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// BlobStore интерфейс внешнего хранилища изображений
// Каталог сам ничего не загружает - только удаляет blob-ы после коммита
type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
	URLToName(url string) string
}
