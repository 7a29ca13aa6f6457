// Package repository реализует единый постраничный протокол доступа к
// сущностям поверх узких делегатов хранилища. Сам протокол не знает ни о
// конкретной сущности, ни о конкретном хранилище.
package repository

import (
	"context"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

// Repository связывает делегат хранилища с постраничным протоколом и
// трансляцией ошибок. E — форма строки, P — тип частичного обновления.
// За границу Repository ошибки хранилища не выходят: каждый отказ
// переведён в закрытую таксономию домена.
type Repository[E any, P any] struct {
	delegate domain.Delegate[E, P]
}

// New оборачивает делегат хранилища в постраничный репозиторий.
func New[E any, P any](delegate domain.Delegate[E, P]) *Repository[E, P] {
	return &Repository[E, P]{delegate: delegate}
}

// ListPage возвращает одну страницу выборки по предикату вместе со
// сквозными итогами. Запрос за пределами последней страницы — это
// пустая страница с честными итогами, не ошибка.
func (r *Repository[E, P]) ListPage(ctx context.Context, pred domain.Predicate, sort domain.Sort, pageable domain.Pageable, include []string) (domain.Page[E], error) {
	if err := pageable.Validate(); err != nil {
		return domain.Page[E]{}, err
	}

	total, err := r.delegate.Count(ctx, pred)
	if err != nil {
		return domain.Page[E]{}, domain.Translate(err)
	}

	items, err := r.delegate.FindMany(ctx, pred, sort, pageable.Offset(), pageable.Limit, include)
	if err != nil {
		return domain.Page[E]{}, domain.Translate(err)
	}

	return domain.NewPage(items, total, pageable), nil
}

// FindOne возвращает строку по идентификатору.
func (r *Repository[E, P]) FindOne(ctx context.Context, id int64) (E, error) {
	entity, err := r.delegate.FindByID(ctx, id)
	if err != nil {
		var zero E
		return zero, domain.Translate(err)
	}
	return entity, nil
}

// CreateOne сохраняет новую строку и возвращает её с присвоенным ID.
func (r *Repository[E, P]) CreateOne(ctx context.Context, data E) (E, error) {
	entity, err := r.delegate.Create(ctx, data)
	if err != nil {
		var zero E
		return zero, domain.Translate(err)
	}
	return entity, nil
}

// UpdateOne применяет частичное обновление и возвращает строку целиком.
func (r *Repository[E, P]) UpdateOne(ctx context.Context, id int64, patch P) (E, error) {
	entity, err := r.delegate.Update(ctx, id, patch)
	if err != nil {
		var zero E
		return zero, domain.Translate(err)
	}
	return entity, nil
}

// DeleteOne удаляет строку по идентификатору.
func (r *Repository[E, P]) DeleteOne(ctx context.Context, id int64) error {
	if err := r.delegate.Delete(ctx, id); err != nil {
		return domain.Translate(err)
	}
	return nil
}

// DeleteManyBy удаляет все строки по предикату и возвращает их число.
func (r *Repository[E, P]) DeleteManyBy(ctx context.Context, pred domain.Predicate) (int64, error) {
	n, err := r.delegate.DeleteMany(ctx, pred)
	if err != nil {
		return 0, domain.Translate(err)
	}
	return n, nil
}
