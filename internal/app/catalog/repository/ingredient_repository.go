package repository

import (
	"context"
	"fmt"

	"lacarta/internal/app/catalog/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ingredientRepository struct {
	db *pgxpool.Pool
}

// NewIngredientRepository создает новый репозиторий словаря ингредиентов
func NewIngredientRepository(db *pgxpool.Pool) IngredientRepository {
	return &ingredientRepository{db: db}
}

// Resolve сопоставляет имена ингредиентов со стабильными id одним батчем
// Вставка через ON CONFLICT DO NOTHING переживает гонку с конкурентным
// писателем: проигравший конфликт просто перечитывает существующую строку
func (r *ingredientRepository) Resolve(ctx context.Context, db DBTX, names []string) ([]uuid.UUID, error) {
	if len(names) == 0 {
		return nil, nil
	}

	unique := dedupeStrings(names)

	newIDs := make([]uuid.UUID, len(unique))
	for i := range newIDs {
		newIDs[i] = uuid.New()
	}

	insertQuery := `
		INSERT INTO ingredients (id, name)
		SELECT * FROM unnest($1::uuid[], $2::text[])
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := db.Exec(ctx, insertQuery, newIDs, unique); err != nil {
		return nil, fmt.Errorf("failed to upsert ingredients: %w", err)
	}

	// Перечитываем все строки: и только что вставленные, и уже существовавшие
	selectQuery := `SELECT id, name FROM ingredients WHERE name = ANY($1)`
	rows, err := db.Query(ctx, selectQuery, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to read back ingredients: %w", err)
	}
	defer rows.Close()

	byName := make(map[string]uuid.UUID, len(unique))
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		byName[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}

	// Сохраняем порядок входа: дубликаты дают одинаковый id
	ids := make([]uuid.UUID, len(names))
	for i, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrIngredientMissing, name)
		}
		ids[i] = id
	}

	return ids, nil
}

// GetAll получает весь словарь ингредиентов, отсортированный по имени
func (r *ingredientRepository) GetAll(ctx context.Context) ([]entity.Ingredient, error) {
	query := `SELECT id, name FROM ingredients ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []entity.Ingredient
	for rows.Next() {
		var ing entity.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}

	return ingredients, nil
}

// dedupeStrings убирает дубликаты, сохраняя порядок первого вхождения
func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
