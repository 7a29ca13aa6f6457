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

var userColumns = columnMap{
	domain.FieldName:  "u.name",
	domain.FieldPhone: "u.phone",
	domain.FieldEmail: "u.email",
}

type userDelegate struct {
	q querier
}

// NewUserDelegate создаёт PostgreSQL-делегат учётных записей.
func NewUserDelegate(store *Store) domain.Delegate[domain.User, domain.UserPatch] {
	return &userDelegate{q: store.DB()}
}

func (d *userDelegate) FindMany(ctx context.Context, pred domain.Predicate, sort domain.Sort, skip, take int, include []string) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, userColumns)
	if err != nil {
		return nil, err
	}
	order, err := orderBy(sort, userColumns, "u.id ASC")
	if err != nil {
		return nil, err
	}

	args = append(args, take, skip)
	query := fmt.Sprintf(`
		SELECT u.id, u.name, u.email, u.phone, u.password, u.role, u.created_at, u.updated_at
		FROM users u
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, where, order, len(args)-1, len(args))

	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageFailure("list users", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, storageFailure("scan user row", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFailure("iterate user rows", err)
	}

	if slices.Contains(include, domain.IncludeAddress) {
		if err := d.attachAddresses(ctx, users); err != nil {
			return nil, err
		}
	}

	return users, nil
}

func (d *userDelegate) Count(ctx context.Context, pred domain.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, userColumns)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := d.q.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM users u %s`, where), args...).Scan(&total); err != nil {
		return 0, storageFailure("count users", err)
	}

	return total, nil
}

func (d *userDelegate) FindByID(ctx context.Context, id int64) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var u domain.User
	err := d.q.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.phone, u.password, u.role, u.created_at, u.updated_at
		FROM users u
		WHERE u.id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, notFound("user %d not found", id)
		}
		return domain.User{}, storageFailure("select user", err)
	}

	users := []domain.User{u}
	if err := d.attachAddresses(ctx, users); err != nil {
		return domain.User{}, err
	}

	return users[0], nil
}

func (d *userDelegate) Create(ctx context.Context, data domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	if data.CreatedAt.IsZero() {
		data.CreatedAt = now
	}
	data.UpdatedAt = data.CreatedAt
	if data.Role == "" {
		data.Role = "USER"
	}

	err := d.q.QueryRowContext(ctx, `
		INSERT INTO users (name, email, phone, password, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, data.Name, data.Email, data.Phone, data.Password, data.Role, data.CreatedAt, data.UpdatedAt).Scan(&data.ID)
	if err != nil {
		return domain.User{}, storageFailure("insert user", err)
	}

	if data.Address != nil {
		addr := *data.Address
		addr.UserID = data.ID
		err := d.q.QueryRowContext(ctx, `
			INSERT INTO addresses (user_id, street, number, district, city, state, zip_code)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id
		`, addr.UserID, addr.Street, addr.Number, addr.District, addr.City, addr.State, addr.ZipCode).Scan(&addr.ID)
		if err != nil {
			return domain.User{}, storageFailure("insert user address", err)
		}
		data.Address = &addr
	}

	return data, nil
}

func (d *userDelegate) Update(ctx context.Context, id int64, patch domain.UserPatch) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set, args := patchAssignments(map[string]any{
		"name":     derefAny(patch.Name),
		"email":    derefAny(patch.Email),
		"phone":    derefAny(patch.Phone),
		"password": derefAny(patch.Password),
	})
	if len(set) > 0 {
		args = append(args, time.Now().UTC())
		set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))
		args = append(args, id)

		res, err := d.q.ExecContext(ctx, fmt.Sprintf(`
			UPDATE users SET %s WHERE id = $%d
		`, strings.Join(set, ", "), len(args)), args...)
		if err != nil {
			return domain.User{}, storageFailure("update user", err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return domain.User{}, storageFailure("user rows affected", err)
		} else if affected == 0 {
			return domain.User{}, notFound("user %d not found", id)
		}
	}

	if patch.Address != nil {
		if err := d.updateAddress(ctx, id, *patch.Address); err != nil {
			return domain.User{}, err
		}
	}

	return d.FindByID(ctx, id)
}

func (d *userDelegate) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := d.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return storageFailure("delete user", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return storageFailure("user rows affected", err)
	} else if affected == 0 {
		return notFound("user %d not found", id)
	}

	return nil
}

func (d *userDelegate) DeleteMany(ctx context.Context, pred domain.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args, err := whereClause(pred, userColumns)
	if err != nil {
		return 0, err
	}

	res, err := d.q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM users u %s`, where), args...)
	if err != nil {
		return 0, storageFailure("delete users", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageFailure("user rows affected", err)
	}

	return affected, nil
}

// updateAddress применяет патч к адресу пользователя; при отсутствии адреса
// создаёт его из ненулевых полей патча.
func (d *userDelegate) updateAddress(ctx context.Context, userID int64, patch domain.AddressPatch) error {
	set, args := patchAssignments(map[string]any{
		"street":   derefAny(patch.Street),
		"number":   derefAny(patch.Number),
		"district": derefAny(patch.District),
		"city":     derefAny(patch.City),
		"state":    derefAny(patch.State),
		"zip_code": derefAny(patch.ZipCode),
	})
	if len(set) == 0 {
		return nil
	}

	args = append(args, userID)
	res, err := d.q.ExecContext(ctx, fmt.Sprintf(`
		UPDATE addresses SET %s WHERE user_id = $%d
	`, strings.Join(set, ", "), len(args)), args...)
	if err != nil {
		return storageFailure("update user address", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageFailure("address rows affected", err)
	}
	if affected > 0 {
		return nil
	}

	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	if _, err := d.q.ExecContext(ctx, `
		INSERT INTO addresses (user_id, street, number, district, city, state, zip_code)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, userID, deref(patch.Street), deref(patch.Number), deref(patch.District),
		deref(patch.City), deref(patch.State), deref(patch.ZipCode)); err != nil {
		return storageFailure("insert user address", err)
	}

	return nil
}

func (d *userDelegate) attachAddresses(ctx context.Context, users []domain.User) error {
	if len(users) == 0 {
		return nil
	}

	placeholders := make([]string, len(users))
	args := make([]any, len(users))
	for i, u := range users {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = u.ID
	}

	rows, err := d.q.QueryContext(ctx, fmt.Sprintf(`
		SELECT a.id, a.user_id, a.street, a.number, a.district, a.city, a.state, a.zip_code
		FROM addresses a
		WHERE a.user_id IN (%s)
	`, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return storageFailure("load user addresses", err)
	}
	defer rows.Close()

	byUser := make(map[int64]domain.Address, len(users))
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Street, &a.Number, &a.District, &a.City, &a.State, &a.ZipCode); err != nil {
			return storageFailure("scan user address", err)
		}
		byUser[a.UserID] = a
	}
	if err := rows.Err(); err != nil {
		return storageFailure("iterate user addresses", err)
	}

	for i := range users {
		if a, ok := byUser[users[i].ID]; ok {
			addr := a
			users[i].Address = &addr
		}
	}

	return nil
}

var _ domain.Delegate[domain.User, domain.UserPatch] = (*userDelegate)(nil)
