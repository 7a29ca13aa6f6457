package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

var categoryColumns = columnMap{
	domain.FieldDescription: "c.description",
}

type categoryDelegate struct {
	q querier
}

// NewCategoryDelegate создаёт PostgreSQL-делегат справочника категорий.
func NewCategoryDelegate(store *Store) domain.Delegate[domain.Category, domain.CategoryPatch] {
	return &categoryDelegate{q: store.DB()}
}

func (d *categoryDelegate) FindMany(ctx context.Context, pred domain.Predicate, sort domain.Sort, skip, take int, include []string) ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, categoryColumns)
	if err != nil {
		return nil, err
	}
	order, err := orderBy(sort, categoryColumns, "c.id ASC")
	if err != nil {
		return nil, err
	}

	args = append(args, take, skip)
	query := fmt.Sprintf(`
		SELECT c.id, c.description, c.color
		FROM categories c
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, where, order, len(args)-1, len(args))

	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageFailure("list categories", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Description, &c.Color); err != nil {
			return nil, storageFailure("scan category row", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFailure("iterate category rows", err)
	}

	return categories, nil
}

func (d *categoryDelegate) Count(ctx context.Context, pred domain.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, categoryColumns)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := d.q.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM categories c %s`, where), args...).Scan(&total); err != nil {
		return 0, storageFailure("count categories", err)
	}

	return total, nil
}

func (d *categoryDelegate) FindByID(ctx context.Context, id int64) (domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var c domain.Category
	err := d.q.QueryRowContext(ctx, `
		SELECT c.id, c.description, c.color
		FROM categories c
		WHERE c.id = $1
	`, id).Scan(&c.ID, &c.Description, &c.Color)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, notFound("category %d not found", id)
		}
		return domain.Category{}, storageFailure("select category", err)
	}

	return c, nil
}

func (d *categoryDelegate) Create(ctx context.Context, data domain.Category) (domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := d.q.QueryRowContext(ctx, `
		INSERT INTO categories (description, color)
		VALUES ($1, $2)
		RETURNING id
	`, data.Description, data.Color).Scan(&data.ID)
	if err != nil {
		return domain.Category{}, storageFailure("insert category", err)
	}

	return data, nil
}

func (d *categoryDelegate) Update(ctx context.Context, id int64, patch domain.CategoryPatch) (domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set, args := patchAssignments(map[string]any{
		"description": derefAny(patch.Description),
		"color":       derefAny(patch.Color),
	})
	if len(set) == 0 {
		return d.FindByID(ctx, id)
	}

	args = append(args, id)
	res, err := d.q.ExecContext(ctx, fmt.Sprintf(`
		UPDATE categories SET %s WHERE id = $%d
	`, strings.Join(set, ", "), len(args)), args...)
	if err != nil {
		return domain.Category{}, storageFailure("update category", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return domain.Category{}, storageFailure("category rows affected", err)
	} else if affected == 0 {
		return domain.Category{}, notFound("category %d not found", id)
	}

	return d.FindByID(ctx, id)
}

func (d *categoryDelegate) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := d.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return storageFailure("delete category", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return storageFailure("category rows affected", err)
	} else if affected == 0 {
		return notFound("category %d not found", id)
	}

	return nil
}

func (d *categoryDelegate) DeleteMany(ctx context.Context, pred domain.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, categoryColumns)
	if err != nil {
		return 0, err
	}

	res, err := d.q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM categories c %s`, where), args...)
	if err != nil {
		return 0, storageFailure("delete categories", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageFailure("category rows affected", err)
	}

	return affected, nil
}

var _ domain.Delegate[domain.Category, domain.CategoryPatch] = (*categoryDelegate)(nil)
