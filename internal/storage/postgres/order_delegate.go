package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

var orderColumns = columnMap{
	domain.FieldClientID:      "o.client_id",
	domain.FieldStatus:        "o.status",
	domain.FieldPaymentMethod: "o.payment_method",
	domain.FieldCreatedAt:     "o.created_at",
	domain.FieldClientName:    "(SELECT u.name FROM users u WHERE u.id = o.client_id)",
}

type orderDelegate struct {
	q querier
}

// NewOrderDelegate создаёт PostgreSQL-делегат заказов.
// Create сохраняет заказ вместе с позициями; вызов внутри единицы работы
// делает всю запись атомарной.
func NewOrderDelegate(store *Store) domain.Delegate[domain.Order, domain.OrderPatch] {
	return &orderDelegate{q: store.DB()}
}

func (d *orderDelegate) FindMany(ctx context.Context, pred domain.Predicate, sort domain.Sort, skip, take int, include []string) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, orderColumns)
	if err != nil {
		return nil, err
	}
	order, err := orderBy(sort, orderColumns, "o.id DESC")
	if err != nil {
		return nil, err
	}

	args = append(args, take, skip)
	query := fmt.Sprintf(`
		SELECT o.id, o.client_id, o.created_by_id, o.payment_method, o.status, o.created_at, o.updated_at
		FROM orders o
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, where, order, len(args)-1, len(args))

	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageFailure("list orders", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFailure("iterate order rows", err)
	}

	if slices.Contains(include, domain.IncludeItems) {
		if err := d.attachItems(ctx, orders); err != nil {
			return nil, err
		}
	}
	if slices.Contains(include, domain.IncludeClient) {
		if err := d.attachClients(ctx, orders); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (d *orderDelegate) Count(ctx context.Context, pred domain.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, orderColumns)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := d.q.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM orders o %s`, where), args...).Scan(&total); err != nil {
		return 0, storageFailure("count orders", err)
	}

	return total, nil
}

func (d *orderDelegate) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		o             domain.Order
		status        string
		paymentMethod string
	)
	err := d.q.QueryRowContext(ctx, `
		SELECT o.id, o.client_id, o.created_by_id, o.payment_method, o.status, o.created_at, o.updated_at
		FROM orders o
		WHERE o.id = $1
	`, id).Scan(&o.ID, &o.ClientID, &o.CreatedByID, &paymentMethod, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, notFound("order %d not found", id)
		}
		return domain.Order{}, storageFailure("select order", err)
	}
	o.PaymentMethod = domain.PaymentMethod(paymentMethod)
	o.Status = domain.OrderStatus(status)

	orders := []domain.Order{o}
	if err := d.attachItems(ctx, orders); err != nil {
		return domain.Order{}, err
	}
	if err := d.attachClients(ctx, orders); err != nil {
		return domain.Order{}, err
	}

	return orders[0], nil
}

func (d *orderDelegate) Create(ctx context.Context, data domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	if data.CreatedAt.IsZero() {
		data.CreatedAt = now
	}
	data.UpdatedAt = data.CreatedAt
	if data.Status == "" {
		data.Status = domain.OrderStatusPending
	}

	err := d.q.QueryRowContext(ctx, `
		INSERT INTO orders (client_id, created_by_id, payment_method, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, data.ClientID, data.CreatedByID, string(data.PaymentMethod), string(data.Status),
		data.CreatedAt, data.UpdatedAt).Scan(&data.ID)
	if err != nil {
		return domain.Order{}, storageFailure("insert order", err)
	}

	for i := range data.Items {
		item := &data.Items[i]
		item.OrderID = data.ID
		err := d.q.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, item_id, quantity)
			VALUES ($1,$2,$3)
			RETURNING id
		`, item.OrderID, item.ItemID, item.Quantity).Scan(&item.ID)
		if err != nil {
			return domain.Order{}, storageFailure("insert order item", err)
		}
	}

	return data, nil
}

func (d *orderDelegate) Update(ctx context.Context, id int64, patch domain.OrderPatch) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	fields := map[string]any{}
	if patch.Status != nil {
		fields["status"] = string(*patch.Status)
	}
	if patch.PaymentMethod != nil {
		fields["payment_method"] = string(*patch.PaymentMethod)
	}

	set, args := patchAssignments(fields)
	if len(set) == 0 {
		return d.FindByID(ctx, id)
	}

	args = append(args, time.Now().UTC())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	res, err := d.q.ExecContext(ctx, fmt.Sprintf(`
		UPDATE orders SET %s WHERE id = $%d
	`, strings.Join(set, ", "), len(args)), args...)
	if err != nil {
		return domain.Order{}, storageFailure("update order", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return domain.Order{}, storageFailure("order rows affected", err)
	} else if affected == 0 {
		return domain.Order{}, notFound("order %d not found", id)
	}

	return d.FindByID(ctx, id)
}

func (d *orderDelegate) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := d.q.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return storageFailure("delete order", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return storageFailure("order rows affected", err)
	} else if affected == 0 {
		return notFound("order %d not found", id)
	}

	return nil
}

func (d *orderDelegate) DeleteMany(ctx context.Context, pred domain.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, orderColumns)
	if err != nil {
		return 0, err
	}

	res, err := d.q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM orders o %s`, where), args...)
	if err != nil {
		return 0, storageFailure("delete orders", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageFailure("order rows affected", err)
	}

	return affected, nil
}

// attachItems жадно подгружает позиции заказов вместе с товарами.
func (d *orderDelegate) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	placeholders := make([]string, len(orders))
	args := make([]any, len(orders))
	for i, o := range orders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = o.ID
	}

	rows, err := d.q.QueryContext(ctx, fmt.Sprintf(`
		SELECT oi.id, oi.order_id, oi.item_id, oi.quantity,
		       i.id, i.description, i.unit_price, i.category_id
		FROM order_items oi
		JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id IN (%s)
		ORDER BY oi.id ASC
	`, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return storageFailure("load order items", err)
	}
	defer rows.Close()

	byOrder := make(map[int64][]domain.OrderItem, len(orders))
	for rows.Next() {
		var (
			oi         domain.OrderItem
			item       domain.Item
			categoryID sql.NullInt64
		)
		if err := rows.Scan(
			&oi.ID, &oi.OrderID, &oi.ItemID, &oi.Quantity,
			&item.ID, &item.Description, &item.UnitPrice, &categoryID,
		); err != nil {
			return storageFailure("scan order item", err)
		}
		if categoryID.Valid {
			item.CategoryID = &categoryID.Int64
		}
		oi.Item = &item
		byOrder[oi.OrderID] = append(byOrder[oi.OrderID], oi)
	}
	if err := rows.Err(); err != nil {
		return storageFailure("iterate order items", err)
	}

	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}

	return nil
}

// attachClients жадно подгружает клиентов заказов. Пароль в проекцию не попадает.
func (d *orderDelegate) attachClients(ctx context.Context, orders []domain.Order) error {
	ids := make([]int64, 0, len(orders))
	seen := make(map[int64]bool)
	for _, o := range orders {
		if !seen[o.ClientID] {
			seen[o.ClientID] = true
			ids = append(ids, o.ClientID)
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
		SELECT u.id, u.name, u.email, u.phone, u.role, u.created_at, u.updated_at
		FROM users u
		WHERE u.id IN (%s)
	`, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return storageFailure("load order clients", err)
	}
	defer rows.Close()

	byID := make(map[int64]domain.User, len(ids))
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return storageFailure("scan order client", err)
		}
		byID[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return storageFailure("iterate order clients", err)
	}

	for i := range orders {
		if u, ok := byID[orders[i].ClientID]; ok {
			client := u
			orders[i].Client = &client
		}
	}

	return nil
}

func scanOrder(rows *sql.Rows) (domain.Order, error) {
	var (
		o             domain.Order
		status        string
		paymentMethod string
	)
	if err := rows.Scan(&o.ID, &o.ClientID, &o.CreatedByID, &paymentMethod, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return domain.Order{}, storageFailure("scan order row", err)
	}
	o.PaymentMethod = domain.PaymentMethod(paymentMethod)
	o.Status = domain.OrderStatus(status)
	return o, nil
}

var _ domain.Delegate[domain.Order, domain.OrderPatch] = (*orderDelegate)(nil)
