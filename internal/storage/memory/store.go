// Package memory хранит все сущности в памяти процесса. Используется для
// локальной разработки и тестов; семантика отбора и отказов совпадает с
// PostgreSQL-реализацией.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

// Store — общее in-memory хранилище всех сущностей.
type Store struct {
	mu sync.RWMutex

	categories *rowSet[domain.Category]
	items      *rowSet[domain.Item]
	users      *rowSet[domain.User]
	orders     *rowSet[domain.Order]
	orderItems *rowSet[domain.OrderItem]

	outbox domain.OutboxRepository
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		categories: newRowSet[domain.Category](),
		items:      newRowSet[domain.Item](),
		users:      newRowSet[domain.User](),
		orders:     newRowSet[domain.Order](),
		orderItems: newRowSet[domain.OrderItem](),
		outbox:     NewOutboxRepository(),
	}
}

// Outbox возвращает outbox-репозиторий хранилища.
func (s *Store) Outbox() domain.OutboxRepository { return s.outbox }

// Categories возвращает делегат справочника категорий.
func (s *Store) Categories() domain.Delegate[domain.Category, domain.CategoryPatch] {
	return s.categoryCollection(&s.mu, s.categories)
}

// Items возвращает делегат каталога товаров.
func (s *Store) Items() domain.Delegate[domain.Item, domain.ItemPatch] {
	return s.itemCollection(&s.mu, s.items, s.categories)
}

// Users возвращает делегат учётных записей.
func (s *Store) Users() domain.Delegate[domain.User, domain.UserPatch] {
	return s.userCollection(&s.mu, s.users)
}

// Orders возвращает делегат заказов.
func (s *Store) Orders() domain.Delegate[domain.Order, domain.OrderPatch] {
	return s.orderCollection(&s.mu, s.orders, s.orderItems, s.items, s.users)
}

// OrderItems возвращает делегат позиций заказа.
func (s *Store) OrderItems() domain.Delegate[domain.OrderItem, domain.OrderItemPatch] {
	return s.orderItemCollection(&s.mu, s.orderItems)
}

func (s *Store) categoryCollection(mu *sync.RWMutex, set *rowSet[domain.Category]) *collection[domain.Category, domain.CategoryPatch] {
	return &collection[domain.Category, domain.CategoryPatch]{
		mu:    mu,
		set:   set,
		name:  "category",
		id:    func(c domain.Category) int64 { return c.ID },
		setID: func(c *domain.Category, id int64) { c.ID = id },
		field: func(c domain.Category, field string) (any, error) {
			switch field {
			case domain.FieldDescription:
				return c.Description, nil
			default:
				return nil, unknownField(field)
			}
		},
		patch: func(c *domain.Category, p domain.CategoryPatch) {
			if p.Description != nil {
				c.Description = *p.Description
			}
			if p.Color != nil {
				c.Color = *p.Color
			}
		},
	}
}

func (s *Store) itemCollection(mu *sync.RWMutex, set *rowSet[domain.Item], categories *rowSet[domain.Category]) *collection[domain.Item, domain.ItemPatch] {
	return &collection[domain.Item, domain.ItemPatch]{
		mu:    mu,
		set:   set,
		name:  "item",
		id:    func(i domain.Item) int64 { return i.ID },
		setID: func(i *domain.Item, id int64) { i.ID = id },
		field: func(i domain.Item, field string) (any, error) {
			switch field {
			case domain.FieldDescription:
				return i.Description, nil
			case domain.FieldCategoryID:
				return i.CategoryID, nil
			default:
				return nil, unknownField(field)
			}
		},
		patch: func(i *domain.Item, p domain.ItemPatch) {
			if p.Description != nil {
				i.Description = *p.Description
			}
			if p.UnitPrice != nil {
				i.UnitPrice = *p.UnitPrice
			}
			if p.CategoryID != nil {
				id := *p.CategoryID
				i.CategoryID = &id
			}
		},
		insert: func(c *collection[domain.Item, domain.ItemPatch], i *domain.Item) error {
			if i.CategoryID != nil {
				if _, ok := categories.rows[*i.CategoryID]; !ok {
					return domain.NewStorageError(domain.CodeInvalid, fmt.Sprintf("category %d does not exist", *i.CategoryID), nil)
				}
			}
			i.Category = nil
			return nil
		},
		attach: func(ctx context.Context, items []domain.Item, include []string) ([]domain.Item, error) {
			if include != nil && !includesName(include, domain.IncludeCategory) {
				return items, nil
			}
			mu.RLock()
			defer mu.RUnlock()
			for idx := range items {
				if items[idx].CategoryID == nil {
					continue
				}
				if category, ok := categories.rows[*items[idx].CategoryID]; ok {
					dup := category
					items[idx].Category = &dup
				}
			}
			return items, nil
		},
	}
}

func (s *Store) userCollection(mu *sync.RWMutex, set *rowSet[domain.User]) *collection[domain.User, domain.UserPatch] {
	return &collection[domain.User, domain.UserPatch]{
		mu:    mu,
		set:   set,
		name:  "user",
		id:    func(u domain.User) int64 { return u.ID },
		setID: func(u *domain.User, id int64) { u.ID = id },
		field: func(u domain.User, field string) (any, error) {
			switch field {
			case domain.FieldName:
				return u.Name, nil
			case domain.FieldPhone:
				return u.Phone, nil
			case domain.FieldEmail:
				return u.Email, nil
			default:
				return nil, unknownField(field)
			}
		},
		patch: func(u *domain.User, p domain.UserPatch) {
			if p.Name != nil {
				u.Name = *p.Name
			}
			if p.Email != nil {
				u.Email = *p.Email
			}
			if p.Phone != nil {
				u.Phone = *p.Phone
			}
			if p.Password != nil {
				u.Password = *p.Password
			}
			if p.Address != nil {
				addr := domain.Address{UserID: u.ID}
				if u.Address != nil {
					addr = *u.Address
				}
				applyAddressPatch(&addr, *p.Address)
				u.Address = &addr
			}
			u.UpdatedAt = time.Now().UTC()
		},
		insert: func(c *collection[domain.User, domain.UserPatch], u *domain.User) error {
			for _, existing := range set.rows {
				if strings.EqualFold(existing.Email, u.Email) {
					return domain.NewStorageError(domain.CodeUniqueViolation, fmt.Sprintf("email %s already taken", u.Email), nil)
				}
			}
			now := time.Now().UTC()
			if u.CreatedAt.IsZero() {
				u.CreatedAt = now
			}
			u.UpdatedAt = u.CreatedAt
			if u.Role == "" {
				u.Role = "USER"
			}
			return nil
		},
	}
}

func (s *Store) orderCollection(mu *sync.RWMutex, set *rowSet[domain.Order], orderItems *rowSet[domain.OrderItem], items *rowSet[domain.Item], users *rowSet[domain.User]) *collection[domain.Order, domain.OrderPatch] {
	return &collection[domain.Order, domain.OrderPatch]{
		mu:    mu,
		set:   set,
		name:  "order",
		id:    func(o domain.Order) int64 { return o.ID },
		setID: func(o *domain.Order, id int64) { o.ID = id },
		field: func(o domain.Order, field string) (any, error) {
			switch field {
			case domain.FieldClientID:
				return o.ClientID, nil
			case domain.FieldStatus:
				return string(o.Status), nil
			case domain.FieldPaymentMethod:
				return string(o.PaymentMethod), nil
			case domain.FieldCreatedAt:
				return o.CreatedAt, nil
			case domain.FieldClientName:
				if client, ok := users.rows[o.ClientID]; ok {
					return client.Name, nil
				}
				return "", nil
			default:
				return nil, unknownField(field)
			}
		},
		patch: func(o *domain.Order, p domain.OrderPatch) {
			if p.Status != nil {
				o.Status = *p.Status
			}
			if p.PaymentMethod != nil {
				o.PaymentMethod = *p.PaymentMethod
			}
			o.UpdatedAt = time.Now().UTC()
		},
		insert: func(c *collection[domain.Order, domain.OrderPatch], o *domain.Order) error {
			if _, ok := users.rows[o.ClientID]; !ok {
				return domain.NewStorageError(domain.CodeInvalid, fmt.Sprintf("client %d does not exist", o.ClientID), nil)
			}
			if _, ok := users.rows[o.CreatedByID]; !ok {
				return domain.NewStorageError(domain.CodeInvalid, fmt.Sprintf("user %d does not exist", o.CreatedByID), nil)
			}
			now := time.Now().UTC()
			if o.CreatedAt.IsZero() {
				o.CreatedAt = now
			}
			o.UpdatedAt = o.CreatedAt
			if o.Status == "" {
				o.Status = domain.OrderStatusPending
			}

			pending := o.Items
			o.Items = nil
			o.Client = nil
			for _, item := range pending {
				if _, ok := items.rows[item.ItemID]; !ok {
					return domain.NewStorageError(domain.CodeInvalid, fmt.Sprintf("item %d does not exist", item.ItemID), nil)
				}
			}
			// Позиции получают ID заказа после вставки строки заказа.
			c.afterInsert = func(id int64) error {
				for _, item := range pending {
					item.OrderID = id
					item.Item = nil
					orderItems.insert(func(oi *domain.OrderItem, oid int64) { oi.ID = oid }, item)
				}
				return nil
			}
			return nil
		},
		attach: func(ctx context.Context, orders []domain.Order, include []string) ([]domain.Order, error) {
			mu.RLock()
			defer mu.RUnlock()
			withItems := includesName(include, domain.IncludeItems)
			withClient := includesName(include, domain.IncludeClient)
			for idx := range orders {
				if withItems || include == nil {
					var list []domain.OrderItem
					for _, oi := range orderItems.rows {
						if oi.OrderID != orders[idx].ID {
							continue
						}
						if item, ok := items.rows[oi.ItemID]; ok {
							dup := item
							oi.Item = &dup
						}
						list = append(list, oi)
					}
					sortOrderItems(list)
					orders[idx].Items = list
				}
				if withClient || include == nil {
					if client, ok := users.rows[orders[idx].ClientID]; ok {
						dup := client
						dup.Password = ""
						orders[idx].Client = &dup
					}
				}
			}
			return orders, nil
		},
	}
}

func (s *Store) orderItemCollection(mu *sync.RWMutex, set *rowSet[domain.OrderItem]) *collection[domain.OrderItem, domain.OrderItemPatch] {
	return &collection[domain.OrderItem, domain.OrderItemPatch]{
		mu:    mu,
		set:   set,
		name:  "order item",
		id:    func(oi domain.OrderItem) int64 { return oi.ID },
		setID: func(oi *domain.OrderItem, id int64) { oi.ID = id },
		field: func(oi domain.OrderItem, field string) (any, error) {
			switch field {
			case domain.FieldOrderID:
				return oi.OrderID, nil
			default:
				return nil, unknownField(field)
			}
		},
		patch: func(oi *domain.OrderItem, p domain.OrderItemPatch) {
			if p.Quantity != nil {
				oi.Quantity = *p.Quantity
			}
		},
	}
}

func applyAddressPatch(addr *domain.Address, p domain.AddressPatch) {
	if p.Street != nil {
		addr.Street = *p.Street
	}
	if p.Number != nil {
		addr.Number = *p.Number
	}
	if p.District != nil {
		addr.District = *p.District
	}
	if p.City != nil {
		addr.City = *p.City
	}
	if p.State != nil {
		addr.State = *p.State
	}
	if p.ZipCode != nil {
		addr.ZipCode = *p.ZipCode
	}
}

func includesName(include []string, name string) bool {
	for _, candidate := range include {
		if candidate == name {
			return true
		}
	}
	return false
}

func sortOrderItems(items []domain.OrderItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
