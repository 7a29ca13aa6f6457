package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

// fieldGetter возвращает значение доменного поля строки.
// Неизвестное поле — это ошибка делегата, не тихий false.
type fieldGetter func(field string) (any, error)

// evalPredicate интерпретирует предикат над одной строкой.
func evalPredicate(pred domain.Predicate, get fieldGetter) (bool, error) {
	switch p := pred.(type) {
	case nil, domain.MatchAll:
		return true, nil

	case domain.Equals:
		value, err := get(p.Field)
		if err != nil {
			return false, err
		}
		return valuesEqual(value, p.Value), nil

	case domain.ContainsFold:
		value, err := get(p.Field)
		if err != nil {
			return false, err
		}
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(p.Value)), nil

	case domain.InSet:
		value, err := get(p.Field)
		if err != nil {
			return false, err
		}
		s := fmt.Sprint(value)
		for _, candidate := range p.Values {
			if s == candidate {
				return true, nil
			}
		}
		return false, nil

	case domain.Range:
		value, err := get(p.Field)
		if err != nil {
			return false, err
		}
		ts, ok := value.(time.Time)
		if !ok {
			return false, nil
		}
		if p.From != nil {
			from, ok := p.From.(time.Time)
			if !ok || ts.Before(from) {
				return false, nil
			}
		}
		if p.To != nil {
			to, ok := p.To.(time.Time)
			if !ok || ts.After(to) {
				return false, nil
			}
		}
		return true, nil

	case domain.And:
		for _, sub := range p.Preds {
			ok, err := evalPredicate(sub, get)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case domain.Or:
		for _, sub := range p.Preds {
			ok, err := evalPredicate(sub, get)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, domain.NewStorageError(domain.CodeInvalid, fmt.Sprintf("unsupported predicate %T", pred), nil)
	}
}

func valuesEqual(a, b any) bool {
	if ai, ok := asInt64(a); ok {
		if bi, ok := asInt64(b); ok {
			return ai == bi
		}
		return false
	}
	return a == b
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case *int64:
		if n == nil {
			return 0, false
		}
		return *n, true
	default:
		return 0, false
	}
}

func unknownField(field string) error {
	return domain.NewStorageError(domain.CodeInvalid, fmt.Sprintf("unknown filter field %q", field), nil)
}

// compareValues упорядочивает значения одного поля для сортировки выборок.
func compareValues(a, b any) int {
	if ai, ok := asInt64(a); ok {
		bi, _ := asInt64(b)
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	if at, ok := a.(time.Time); ok {
		bt, _ := b.(time.Time)
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		default:
			return 0
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	return strings.Compare(as, bs)
}
