package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

var itemColumns = columnMap{
	domain.FieldDescription: "i.description",
	domain.FieldCategoryID:  "i.category_id",
}

type itemDelegate struct {
	q querier
}

// NewItemDelegate создаёт PostgreSQL-делегат каталога товаров.
func NewItemDelegate(store *Store) domain.Delegate[domain.Item, domain.ItemPatch] {
	return &itemDelegate{q: store.DB()}
}

func (d *itemDelegate) FindMany(ctx context.Context, pred domain.Predicate, sort domain.Sort, skip, take int, include []string) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, itemColumns)
	if err != nil {
		return nil, err
	}
	order, err := orderBy(sort, itemColumns, "i.id ASC")
	if err != nil {
		return nil, err
	}

	withCategory := slices.Contains(include, domain.IncludeCategory)

	args = append(args, take, skip)
	query := fmt.Sprintf(`
		SELECT i.id, i.description, i.unit_price, i.category_id
		FROM items i
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, where, order, len(args)-1, len(args))

	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageFailure("list items", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFailure("iterate item rows", err)
	}

	if withCategory {
		if err := d.attachCategories(ctx, items); err != nil {
			return nil, err
		}
	}

	return items, nil
}

func (d *itemDelegate) Count(ctx context.Context, pred domain.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, itemColumns)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := d.q.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM items i %s`, where), args...).Scan(&total); err != nil {
		return 0, storageFailure("count items", err)
	}

	return total, nil
}

func (d *itemDelegate) FindByID(ctx context.Context, id int64) (domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		item       domain.Item
		categoryID sql.NullInt64
	)
	err := d.q.QueryRowContext(ctx, `
		SELECT i.id, i.description, i.unit_price, i.category_id
		FROM items i
		WHERE i.id = $1
	`, id).Scan(&item.ID, &item.Description, &item.UnitPrice, &categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, notFound("item %d not found", id)
		}
		return domain.Item{}, storageFailure("select item", err)
	}
	if categoryID.Valid {
		item.CategoryID = &categoryID.Int64
	}

	if item.CategoryID != nil {
		items := []domain.Item{item}
		if err := d.attachCategories(ctx, items); err != nil {
			return domain.Item{}, err
		}
		item = items[0]
	}

	return item, nil
}

func (d *itemDelegate) Create(ctx context.Context, data domain.Item) (domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := d.q.QueryRowContext(ctx, `
		INSERT INTO items (description, unit_price, category_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, data.Description, data.UnitPrice, data.CategoryID).Scan(&data.ID)
	if err != nil {
		return domain.Item{}, storageFailure("insert item", err)
	}

	return data, nil
}

func (d *itemDelegate) Update(ctx context.Context, id int64, patch domain.ItemPatch) (domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set, args := patchAssignments(map[string]any{
		"description": derefAny(patch.Description),
		"unit_price":  derefAny(patch.UnitPrice),
		"category_id": derefAny(patch.CategoryID),
	})
	if len(set) == 0 {
		return d.FindByID(ctx, id)
	}

	args = append(args, id)
	res, err := d.q.ExecContext(ctx, fmt.Sprintf(`
		UPDATE items SET %s WHERE id = $%d
	`, strings.Join(set, ", "), len(args)), args...)
	if err != nil {
		return domain.Item{}, storageFailure("update item", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return domain.Item{}, storageFailure("item rows affected", err)
	} else if affected == 0 {
		return domain.Item{}, notFound("item %d not found", id)
	}

	return d.FindByID(ctx, id)
}

func (d *itemDelegate) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := d.q.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return storageFailure("delete item", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return storageFailure("item rows affected", err)
	} else if affected == 0 {
		return notFound("item %d not found", id)
	}

	return nil
}

func (d *itemDelegate) DeleteMany(ctx context.Context, pred domain.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, itemColumns)
	if err != nil {
		return 0, err
	}

	res, err := d.q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM items i %s`, where), args...)
	if err != nil {
		return 0, storageFailure("delete items", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageFailure("item rows affected", err)
	}

	return affected, nil
}

// attachCategories жадно подгружает категории для выборки товаров одним запросом.
func (d *itemDelegate) attachCategories(ctx context.Context, items []domain.Item) error {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool)
	for _, item := range items {
		if item.CategoryID != nil && !seen[*item.CategoryID] {
			seen[*item.CategoryID] = true
			ids = append(ids, *item.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := d.q.QueryContext(ctx, fmt.Sprintf(`
		SELECT c.id, c.description, c.color
		FROM categories c
		WHERE c.id IN (%s)
	`, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return storageFailure("load item categories", err)
	}
	defer rows.Close()

	byID := make(map[int64]domain.Category, len(ids))
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Description, &c.Color); err != nil {
			return storageFailure("scan item category", err)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return storageFailure("iterate item categories", err)
	}

	for i := range items {
		if items[i].CategoryID == nil {
			continue
		}
		if c, ok := byID[*items[i].CategoryID]; ok {
			category := c
			items[i].Category = &category
		}
	}

	return nil
}

func scanItem(rows *sql.Rows) (domain.Item, error) {
	var (
		item       domain.Item
		categoryID sql.NullInt64
	)
	if err := rows.Scan(&item.ID, &item.Description, &item.UnitPrice, &categoryID); err != nil {
		return domain.Item{}, storageFailure("scan item row", err)
	}
	if categoryID.Valid {
		item.CategoryID = &categoryID.Int64
	}
	return item, nil
}

var _ domain.Delegate[domain.Item, domain.ItemPatch] = (*itemDelegate)(nil)
