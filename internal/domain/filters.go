package domain

import (
	"strconv"
	"time"
)

// dateLayout — формат календарной даты в фильтрах заказов.
const dateLayout = "2006-01-02"

// ItemFilter — опциональные фильтры каталога товаров.
// Присутствующие фильтры соединяются дизъюнкцией: строка попадает в
// выборку, если совпал хотя бы один из них. Это контрактная семантика
// исходного поведения, не ошибка.
type ItemFilter struct {
	Description string
	CategoryID  string
}

// Predicate строит предикат отбора товаров.
// Нераспознанный или нулевой CategoryID молча игнорируется.
func (f ItemFilter) Predicate() Predicate {
	var preds []Predicate

	if f.Description != "" {
		preds = append(preds, ContainsFold{Field: FieldDescription, Value: f.Description})
	}
	if f.CategoryID != "" {
		if id, err := strconv.ParseInt(f.CategoryID, 10, 64); err == nil && id != 0 {
			preds = append(preds, Equals{Field: FieldCategoryID, Value: id})
		}
	}

	return AnyOf(preds...)
}

// OrderFilter — опциональные фильтры списка заказов.
// В отличие от ItemFilter присутствующие фильтры соединяются конъюнкцией.
type OrderFilter struct {
	ClientID      int64
	Status        []OrderStatus
	PaymentMethod []PaymentMethod
	SearchName    string
	DateFrom      string
	DateTo        string
}

// Predicate строит предикат отбора заказов. Непарсящаяся дата и
// неизвестные значения перечислений — это ErrValidation, не тихий пропуск.
func (f OrderFilter) Predicate() (Predicate, error) {
	var preds []Predicate

	if f.ClientID != 0 {
		preds = append(preds, Equals{Field: FieldClientID, Value: f.ClientID})
	}

	if len(f.Status) > 0 {
		values := make([]string, 0, len(f.Status))
		for _, s := range f.Status {
			if !s.Valid() {
				return nil, Validationf("unknown order status %q", string(s))
			}
			values = append(values, string(s))
		}
		preds = append(preds, InSet{Field: FieldStatus, Values: values})
	}

	if len(f.PaymentMethod) > 0 {
		values := make([]string, 0, len(f.PaymentMethod))
		for _, m := range f.PaymentMethod {
			if !m.Valid() {
				return nil, Validationf("unknown payment method %q", string(m))
			}
			values = append(values, string(m))
		}
		preds = append(preds, InSet{Field: FieldPaymentMethod, Values: values})
	}

	if f.SearchName != "" {
		preds = append(preds, ContainsFold{Field: FieldClientName, Value: f.SearchName})
	}

	if f.DateFrom != "" || f.DateTo != "" {
		rng := Range{Field: FieldCreatedAt}
		if f.DateFrom != "" {
			from, err := time.Parse(dateLayout, f.DateFrom)
			if err != nil {
				return nil, Validationf("invalid dateFrom %q", f.DateFrom)
			}
			rng.From = from
		}
		if f.DateTo != "" {
			to, err := time.Parse(dateLayout, f.DateTo)
			if err != nil {
				return nil, Validationf("invalid dateTo %q", f.DateTo)
			}
			rng.To = to
		}
		preds = append(preds, rng)
	}

	return AllOf(preds...), nil
}

// UserFilter — единая строка поиска по пользователям.
type UserFilter struct {
	Query string
}

// Predicate строит дизъюнкцию подстрочного поиска по имени, телефону и email.
func (f UserFilter) Predicate() Predicate {
	if f.Query == "" {
		return MatchAll{}
	}
	return AnyOf(
		ContainsFold{Field: FieldName, Value: f.Query},
		ContainsFold{Field: FieldPhone, Value: f.Query},
		ContainsFold{Field: FieldEmail, Value: f.Query},
	)
}
