package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

var orderItemColumns = columnMap{
	domain.FieldOrderID: "oi.order_id",
}

type orderItemDelegate struct {
	q querier
}

// NewOrderItemDelegate создаёт PostgreSQL-делегат позиций заказа.
func NewOrderItemDelegate(store *Store) domain.Delegate[domain.OrderItem, domain.OrderItemPatch] {
	return &orderItemDelegate{q: store.DB()}
}

func (d *orderItemDelegate) FindMany(ctx context.Context, pred domain.Predicate, sort domain.Sort, skip, take int, include []string) ([]domain.OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, orderItemColumns)
	if err != nil {
		return nil, err
	}
	order, err := orderBy(sort, orderItemColumns, "oi.id ASC")
	if err != nil {
		return nil, err
	}

	args = append(args, take, skip)
	query := fmt.Sprintf(`
		SELECT oi.id, oi.order_id, oi.item_id, oi.quantity
		FROM order_items oi
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, where, order, len(args)-1, len(args))

	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageFailure("list order items", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var oi domain.OrderItem
		if err := rows.Scan(&oi.ID, &oi.OrderID, &oi.ItemID, &oi.Quantity); err != nil {
			return nil, storageFailure("scan order item row", err)
		}
		items = append(items, oi)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFailure("iterate order item rows", err)
	}

	return items, nil
}

func (d *orderItemDelegate) Count(ctx context.Context, pred domain.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, orderItemColumns)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := d.q.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM order_items oi %s`, where), args...).Scan(&total); err != nil {
		return 0, storageFailure("count order items", err)
	}

	return total, nil
}

func (d *orderItemDelegate) FindByID(ctx context.Context, id int64) (domain.OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var oi domain.OrderItem
	err := d.q.QueryRowContext(ctx, `
		SELECT oi.id, oi.order_id, oi.item_id, oi.quantity
		FROM order_items oi
		WHERE oi.id = $1
	`, id).Scan(&oi.ID, &oi.OrderID, &oi.ItemID, &oi.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderItem{}, notFound("order item %d not found", id)
		}
		return domain.OrderItem{}, storageFailure("select order item", err)
	}

	return oi, nil
}

func (d *orderItemDelegate) Create(ctx context.Context, data domain.OrderItem) (domain.OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := d.q.QueryRowContext(ctx, `
		INSERT INTO order_items (order_id, item_id, quantity)
		VALUES ($1,$2,$3)
		RETURNING id
	`, data.OrderID, data.ItemID, data.Quantity).Scan(&data.ID)
	if err != nil {
		return domain.OrderItem{}, storageFailure("insert order item", err)
	}

	return data, nil
}

func (d *orderItemDelegate) Update(ctx context.Context, id int64, patch domain.OrderItemPatch) (domain.OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if patch.Quantity == nil {
		return d.FindByID(ctx, id)
	}

	res, err := d.q.ExecContext(ctx, `
		UPDATE order_items SET quantity = $1 WHERE id = $2
	`, *patch.Quantity, id)
	if err != nil {
		return domain.OrderItem{}, storageFailure("update order item", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return domain.OrderItem{}, storageFailure("order item rows affected", err)
	} else if affected == 0 {
		return domain.OrderItem{}, notFound("order item %d not found", id)
	}

	return d.FindByID(ctx, id)
}

func (d *orderItemDelegate) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := d.q.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1`, id)
	if err != nil {
		return storageFailure("delete order item", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return storageFailure("order item rows affected", err)
	} else if affected == 0 {
		return notFound("order item %d not found", id)
	}

	return nil
}

func (d *orderItemDelegate) DeleteMany(ctx context.Context, pred domain.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, orderItemColumns)
	if err != nil {
		return 0, err
	}

	res, err := d.q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM order_items oi %s`, where), args...)
	if err != nil {
		return 0, storageFailure("delete order items", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageFailure("order item rows affected", err)
	}

	return affected, nil
}

var _ domain.Delegate[domain.OrderItem, domain.OrderItemPatch] = (*orderItemDelegate)(nil)
