package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lacarta/internal/app/catalog/entity"

	"github.com/redis/go-redis/v9"
)

const (
	ingredientsCacheKey = "vocabulary:ingredients"
	categoriesCacheKey  = "vocabulary:categories"
)

// RedisClient кеширует словари ингредиентов и категорий
// Набор eligible-now промо-акций не кешируется: он зависит от текущего времени
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

func (r *RedisClient) SetIngredients(ctx context.Context, ingredients []entity.Ingredient, ttl time.Duration) error {
	return r.setJSON(ctx, ingredientsCacheKey, ingredients, ttl)
}

func (r *RedisClient) GetIngredients(ctx context.Context) ([]entity.Ingredient, error) {
	var ingredients []entity.Ingredient
	ok, err := r.getJSON(ctx, ingredientsCacheKey, &ingredients)
	if err != nil || !ok {
		return nil, err
	}
	return ingredients, nil
}

func (r *RedisClient) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	return r.setJSON(ctx, categoriesCacheKey, categories, ttl)
}

func (r *RedisClient) GetCategories(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	ok, err := r.getJSON(ctx, categoriesCacheKey, &categories)
	if err != nil || !ok {
		return nil, err
	}
	return categories, nil
}

// Invalidate сбрасывает оба словарных ключа
// Вызывается после каждой записи в каталог: любая мутация может добавить
// новые строки словарей через ленивый upsert
func (r *RedisClient) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, ingredientsCacheKey, categoriesCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate vocabulary cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}

	return nil
}

func (r *RedisClient) getJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return true, nil
}
