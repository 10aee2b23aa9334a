package repository

import (
	"context"
	"fmt"

	"lacarta/internal/app/catalog/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type categoryRepository struct {
	db *pgxpool.Pool
}

// NewCategoryRepository создает новый репозиторий словаря категорий
func NewCategoryRepository(db *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{db: db}
}

// Resolve сопоставляет пары (name, type) со стабильными id одним батчем
// Уникальность пары обеспечивается constraint-ом; гонка на вставке
// разрешается перечитыванием, как и для ингредиентов
func (r *categoryRepository) Resolve(ctx context.Context, db DBTX, refs []entity.CategoryRef) ([]uuid.UUID, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	unique := dedupeRefs(refs)

	newIDs := make([]uuid.UUID, len(unique))
	names := make([]string, len(unique))
	types := make([]string, len(unique))
	for i, ref := range unique {
		newIDs[i] = uuid.New()
		names[i] = ref.Name
		types[i] = ref.Type
	}

	insertQuery := `
		INSERT INTO categories (id, name, type, is_active, is_priority)
		SELECT u.id, u.name, u.type, true, false
		FROM unnest($1::uuid[], $2::text[], $3::text[]) AS u(id, name, type)
		ON CONFLICT (name, type) DO NOTHING
	`
	if _, err := db.Exec(ctx, insertQuery, newIDs, names, types); err != nil {
		return nil, fmt.Errorf("failed to upsert categories: %w", err)
	}

	selectQuery := `
		SELECT c.id, c.name, c.type
		FROM categories c
		JOIN unnest($1::text[], $2::text[]) AS want(name, type)
			ON c.name = want.name AND c.type = want.type
	`
	rows, err := db.Query(ctx, selectQuery, names, types)
	if err != nil {
		return nil, fmt.Errorf("failed to read back categories: %w", err)
	}
	defer rows.Close()

	byRef := make(map[entity.CategoryRef]uuid.UUID, len(unique))
	for rows.Next() {
		var id uuid.UUID
		var ref entity.CategoryRef
		if err := rows.Scan(&id, &ref.Name, &ref.Type); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		byRef[ref] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	ids := make([]uuid.UUID, len(refs))
	for i, ref := range refs {
		id, ok := byRef[ref]
		if !ok {
			return nil, fmt.Errorf("%w: %s/%s", ErrCategoryMissing, ref.Name, ref.Type)
		}
		ids[i] = id
	}

	return ids, nil
}

// GetAll получает весь словарь категорий, отсортированный по типу и имени
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	query := `
		SELECT id, name, type, is_active, is_priority
		FROM categories
		ORDER BY type ASC, name ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []entity.Category
	for rows.Next() {
		var cat entity.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Type, &cat.IsActive, &cat.IsPriority); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

func dedupeRefs(refs []entity.CategoryRef) []entity.CategoryRef {
	seen := make(map[entity.CategoryRef]struct{}, len(refs))
	out := make([]entity.CategoryRef, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
