package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lacarta/internal/app/catalog/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// hydrationQuery собирает агрегат продукта одним запросом
// Продукт без связей в каком-то измерении даёт пустой массив, а не [null]
const hydrationQuery = `
	SELECT p.id, p.name, p.price, p.description, p.alcohol_percentage,
	       p.is_active, p.created_by, p.created_at,
	       COALESCE(ing.names, ARRAY[]::text[]) AS ingredients,
	       COALESCE(cat.refs, '[]'::json)       AS categories,
	       COALESCE(img.urls, ARRAY[]::text[])  AS images
	FROM products p
	LEFT JOIN LATERAL (
		SELECT array_agg(i.name ORDER BY i.name) AS names
		FROM products_ingredients pi
		JOIN ingredients i ON i.id = pi.ingredient_id
		WHERE pi.product_id = p.id
	) ing ON true
	LEFT JOIN LATERAL (
		SELECT json_agg(json_build_object('name', c.name, 'type', c.type) ORDER BY c.type, c.name) AS refs
		FROM products_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = p.id
	) cat ON true
	LEFT JOIN LATERAL (
		SELECT array_agg(im.url) AS urls
		FROM images im
		WHERE im.product_id = p.id
	) img ON true
`

type productRepository struct {
	db          *pgxpool.Pool
	ingredients IngredientRepository
	categories  CategoryRepository
}

// NewProductRepository создает репозиторий продуктов
// Словарные репозитории нужны для резолва имён внутри транзакции записи
func NewProductRepository(db *pgxpool.Pool, ingredients IngredientRepository, categories CategoryRepository) ProductRepository {
	return &productRepository{db: db, ingredients: ingredients, categories: categories}
}

// Create вставляет продукт, связи и изображения в одной транзакции
// Любая ошибка на любом шаге откатывает всё: частичных продуктов не бывает
func (r *productRepository) Create(ctx context.Context, product *entity.Product, ingredients []string, categories []entity.CategoryRef, images []string) (*entity.ProductDetail, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO products (id, name, price, description, alcohol_percentage, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, insertQuery,
		product.ID, product.Name, product.Price, product.Description,
		product.AlcoholPercentage, product.IsActive, product.CreatedBy, product.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrProductNameTaken
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	if err := r.linkIngredients(ctx, tx, product.ID, ingredients); err != nil {
		return nil, err
	}
	if err := r.linkCategories(ctx, tx, product.ID, categories); err != nil {
		return nil, err
	}
	if err := insertImages(ctx, tx, product.ID, images); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product create: %w", err)
	}

	return r.GetDetail(ctx, product.ID)
}

// Update меняет скалярные поля и пересобирает только присутствующие в патче
// наборы связей. Возвращает URL изображений, ставших сиротами - их blob-ы
// вызывающий удаляет строго после коммита
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*entity.ProductDetail, []string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE products
		SET name               = COALESCE($2, name),
		    price              = COALESCE($3, price),
		    description        = COALESCE($4, description),
		    alcohol_percentage = COALESCE($5, alcohol_percentage)
		WHERE id = $1
	`
	tag, err := tx.Exec(ctx, updateQuery, id, patch.Name, patch.Price, patch.Description, patch.AlcoholPercentage)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, nil, ErrProductNameTaken
		}
		return nil, nil, fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil, ErrProductNotFound
	}

	if patch.Ingredients != nil {
		if err := r.linkIngredients(ctx, tx, id, *patch.Ingredients); err != nil {
			return nil, nil, err
		}
	}
	if patch.Categories != nil {
		if err := r.linkCategories(ctx, tx, id, *patch.Categories); err != nil {
			return nil, nil, err
		}
	}

	// Поле images отсутствует в патче - существующий набор не трогаем;
	// присутствует (пусть и пустое) - полная замена с планом удаления blob-ов
	var orphaned []string
	if patch.Images != nil {
		current, err := imageURLs(ctx, tx, id)
		if err != nil {
			return nil, nil, err
		}
		orphaned = difference(current, *patch.Images)

		if _, err := tx.Exec(ctx, `DELETE FROM images WHERE product_id = $1`, id); err != nil {
			return nil, nil, fmt.Errorf("failed to clear images: %w", err)
		}
		if err := insertImages(ctx, tx, id, *patch.Images); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit product update: %w", err)
	}

	detail, err := r.GetDetail(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return detail, orphaned, nil
}

// Delete удаляет продукт вместе со связями и изображениями
// Возвращает URL всех изображений для best-effort очистки хранилища
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	urls, err := imageURLs(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM products_ingredients WHERE product_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete ingredient relations: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM products_categories WHERE product_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete category relations: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM images WHERE product_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete images: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Продукта нет - транзакция откатывается, побочных эффектов нет
		return nil, ErrProductNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product delete: %w", err)
	}

	return urls, nil
}

// SetActive переключает флаг отображения, не трогая связи
func (r *productRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.ProductDetail, error) {
	tag, err := r.db.Exec(ctx, `UPDATE products SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return nil, fmt.Errorf("failed to set product status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrProductNotFound
	}

	return r.GetDetail(ctx, id)
}

// GetDetail получает гидратированный агрегат продукта
func (r *productRepository) GetDetail(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error) {
	row := r.db.QueryRow(ctx, hydrationQuery+` WHERE p.id = $1`, id)

	detail, err := scanDetail(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product detail: %w", err)
	}

	return detail, nil
}

// List получает агрегаты продуктов с параметризованным фильтром
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]entity.ProductDetail, error) {
	query := hydrationQuery
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 1)

	switch filter.Kind {
	case FilterByCategoryName:
		args = append(args, filter.Value)
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM products_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.product_id = p.id AND c.name = $1
		)`)
	case FilterByCategoryType:
		args = append(args, filter.Value)
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM products_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.product_id = p.id AND c.type = $1
		)`)
	}

	if filter.OnlyActive {
		conditions = append(conditions, `p.is_active = true`)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` ORDER BY p.name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var details []entity.ProductDetail
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product detail: %w", err)
		}
		details = append(details, *detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return details, nil
}

// ExistsByName проверяет занятость имени продукта
func (r *productRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product name: %w", err)
	}
	return exists, nil
}

// linkIngredients резолвит имена и полностью пересобирает join-строки
func (r *productRepository) linkIngredients(ctx context.Context, tx pgx.Tx, productID uuid.UUID, names []string) error {
	ids, err := r.ingredients.Resolve(ctx, tx, names)
	if err != nil {
		return err
	}
	return replaceJoinRows(ctx, tx, "products_ingredients", "ingredient_id", productID, dedupeIDs(ids))
}

// linkCategories резолвит пары (name, type) и пересобирает join-строки
func (r *productRepository) linkCategories(ctx context.Context, tx pgx.Tx, productID uuid.UUID, refs []entity.CategoryRef) error {
	ids, err := r.categories.Resolve(ctx, tx, refs)
	if err != nil {
		return err
	}
	return replaceJoinRows(ctx, tx, "products_categories", "category_id", productID, dedupeIDs(ids))
}

// replaceJoinRows реализует полную замену набора связей: delete + insert
// Идемпотентна - повторный вызов с тем же набором даёт тот же результат
func replaceJoinRows(ctx context.Context, tx pgx.Tx, table, column string, productID uuid.UUID, ids []uuid.UUID) error {
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE product_id = $1`, table)
	if _, err := tx.Exec(ctx, deleteQuery, productID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	if len(ids) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf(
		`INSERT INTO %s (product_id, %s) SELECT $1, unnest($2::uuid[])`,
		table, column,
	)
	if _, err := tx.Exec(ctx, insertQuery, productID, ids); err != nil {
		return fmt.Errorf("failed to insert %s: %w", table, err)
	}

	return nil
}

func insertImages(ctx context.Context, tx pgx.Tx, productID uuid.UUID, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(urls))
	for i := range ids {
		ids[i] = uuid.New()
	}

	query := `
		INSERT INTO images (id, product_id, url)
		SELECT u.id, $2, u.url
		FROM unnest($1::uuid[], $3::text[]) AS u(id, url)
	`
	if _, err := tx.Exec(ctx, query, ids, productID, urls); err != nil {
		return fmt.Errorf("failed to insert images: %w", err)
	}

	return nil
}

func imageURLs(ctx context.Context, db DBTX, productID uuid.UUID) ([]string, error) {
	rows, err := db.Query(ctx, `SELECT url FROM images WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to read image urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan image url: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate image urls: %w", err)
	}

	return urls, nil
}

// scanDetail читает одну строку гидратационного запроса
func scanDetail(row pgx.Row) (*entity.ProductDetail, error) {
	var detail entity.ProductDetail
	var categoriesJSON []byte

	err := row.Scan(
		&detail.ID, &detail.Name, &detail.Price, &detail.Description,
		&detail.AlcoholPercentage, &detail.IsActive, &detail.CreatedBy, &detail.CreatedAt,
		&detail.Ingredients, &categoriesJSON, &detail.Images,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(categoriesJSON, &detail.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if detail.Ingredients == nil {
		detail.Ingredients = []string{}
	}
	if detail.Categories == nil {
		detail.Categories = []entity.CategoryRef{}
	}
	if detail.Images == nil {
		detail.Images = []string{}
	}

	return &detail, nil
}

// difference возвращает элементы current, отсутствующие в desired
func difference(current, desired []string) []string {
	keep := make(map[string]struct{}, len(desired))
	for _, v := range desired {
		keep[v] = struct{}{}
	}

	var out []string
	for _, v := range current {
		if _, ok := keep[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
