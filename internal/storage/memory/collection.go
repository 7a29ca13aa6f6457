package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

// rowSet — таблица строк одной сущности с автоинкрементным ключом.
type rowSet[E any] struct {
	rows map[int64]E
	next int64
}

func newRowSet[E any]() *rowSet[E] {
	return &rowSet[E]{rows: make(map[int64]E)}
}

func (s *rowSet[E]) insert(setID func(*E, int64), row E) E {
	s.next++
	setID(&row, s.next)
	s.rows[s.next] = row
	return row
}

func (s *rowSet[E]) clone() *rowSet[E] {
	dup := &rowSet[E]{rows: make(map[int64]E, len(s.rows)), next: s.next}
	for id, row := range s.rows {
		dup.rows[id] = row
	}
	return dup
}

// adopt публикует содержимое теневой копии в уже розданный делегатам
// экземпляр: указатель на rowSet у делегатов остаётся прежним, поэтому
// чтения после фиксации видят актуальные строки. Вызывается под
// эксклюзивной блокировкой хранилища.
func (s *rowSet[E]) adopt(staged *rowSet[E]) {
	s.rows = staged.rows
	s.next = staged.next
}

// collection реализует Delegate поверх rowSet. Поведение сущности задают
// функции-хуки; сама коллекция отвечает за блокировки, отбор и сортировку.
type collection[E any, P any] struct {
	mu   *sync.RWMutex
	set  *rowSet[E]
	name string

	id     func(E) int64
	setID  func(*E, int64)
	field  func(E, string) (any, error)
	patch  func(*E, P)
	insert func(*collection[E, P], *E) error
	attach func(context.Context, []E, []string) ([]E, error)

	// afterInsert выставляется хуком insert, когда вставка тянет за собой
	// дочерние строки, которым нужен присвоенный ID.
	afterInsert func(id int64) error
}

func (c *collection[E, P]) FindMany(ctx context.Context, pred domain.Predicate, sortBy domain.Sort, skip, take int, include []string) ([]E, error) {
	if include == nil {
		// nil отличает внутренний вызов FindByID, который грузит все связи.
		include = []string{}
	}

	c.mu.RLock()

	selected := make([]E, 0, len(c.set.rows))
	for _, row := range c.set.rows {
		ok, err := evalPredicate(pred, func(field string) (any, error) { return c.field(row, field) })
		if err != nil {
			c.mu.RUnlock()
			return nil, err
		}
		if ok {
			selected = append(selected, row)
		}
	}
	c.mu.RUnlock()

	if err := c.sortRows(selected, sortBy); err != nil {
		return nil, err
	}

	if skip >= len(selected) {
		selected = nil
	} else {
		selected = selected[skip:]
		if take > 0 && take < len(selected) {
			selected = selected[:take]
		}
	}

	if c.attach != nil && len(selected) > 0 {
		return c.attach(ctx, selected, include)
	}
	return selected, nil
}

func (c *collection[E, P]) Count(ctx context.Context, pred domain.Predicate) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total int64
	for _, row := range c.set.rows {
		ok, err := evalPredicate(pred, func(field string) (any, error) { return c.field(row, field) })
		if err != nil {
			return 0, err
		}
		if ok {
			total++
		}
	}
	return total, nil
}

func (c *collection[E, P]) FindByID(ctx context.Context, id int64) (E, error) {
	c.mu.RLock()
	row, ok := c.set.rows[id]
	c.mu.RUnlock()

	if !ok {
		var zero E
		return zero, c.notFound(id)
	}
	if c.attach != nil {
		attached, err := c.attach(ctx, []E{row}, nil)
		if err != nil {
			var zero E
			return zero, err
		}
		return attached[0], nil
	}
	return row, nil
}

func (c *collection[E, P]) Create(ctx context.Context, data E) (E, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.afterInsert = nil
	if c.insert != nil {
		if err := c.insert(c, &data); err != nil {
			var zero E
			return zero, err
		}
	}
	row := c.set.insert(c.setID, data)
	if c.afterInsert != nil {
		if err := c.afterInsert(c.id(row)); err != nil {
			delete(c.set.rows, c.id(row))
			var zero E
			return zero, err
		}
	}
	return row, nil
}

func (c *collection[E, P]) Update(ctx context.Context, id int64, patch P) (E, error) {
	c.mu.Lock()
	row, ok := c.set.rows[id]
	if !ok {
		c.mu.Unlock()
		var zero E
		return zero, c.notFound(id)
	}
	c.patch(&row, patch)
	c.set.rows[id] = row
	c.mu.Unlock()

	return c.FindByID(ctx, id)
}

func (c *collection[E, P]) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.set.rows[id]; !ok {
		return c.notFound(id)
	}
	delete(c.set.rows, id)
	return nil
}

func (c *collection[E, P]) DeleteMany(ctx context.Context, pred domain.Predicate) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int64
	for id, row := range c.set.rows {
		ok, err := evalPredicate(pred, func(field string) (any, error) { return c.field(row, field) })
		if err != nil {
			return removed, err
		}
		if ok {
			delete(c.set.rows, id)
			removed++
		}
	}
	return removed, nil
}

func (c *collection[E, P]) sortRows(rows []E, sortBy domain.Sort) error {
	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		if sortBy.Field != "" {
			a, errA := c.field(rows[i], sortBy.Field)
			b, errB := c.field(rows[j], sortBy.Field)
			if errA != nil || errB != nil {
				if sortErr == nil {
					sortErr = errA
					if sortErr == nil {
						sortErr = errB
					}
				}
				return false
			}
			if cmp := compareValues(a, b); cmp != 0 {
				if sortBy.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		if sortBy.Desc {
			return c.id(rows[i]) > c.id(rows[j])
		}
		return c.id(rows[i]) < c.id(rows[j])
	})
	return sortErr
}

func (c *collection[E, P]) notFound(id int64) error {
	return domain.NewStorageError(domain.CodeNotFound, fmt.Sprintf("%s %d not found", c.name, id), nil)
}
