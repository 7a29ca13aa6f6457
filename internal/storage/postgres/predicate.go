package postgres

import (
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

// columnMap переводит доменные имена полей в SQL-выражения конкретной
// таблицы. Составное имя может разворачиваться в скалярный подзапрос.
type columnMap map[string]string

// whereClause компилирует предикат в условие WHERE с позиционными
// аргументами. Пустое условие означает отбор без ограничений.
func whereClause(pred domain.Predicate, cols columnMap) (string, []any, error) {
	var args []any
	expr, err := compilePredicate(pred, cols, &args)
	if err != nil {
		return "", nil, err
	}
	if expr == "" || expr == "TRUE" {
		return "", nil, nil
	}
	return "WHERE " + expr, args, nil
}

func compilePredicate(pred domain.Predicate, cols columnMap, args *[]any) (string, error) {
	switch p := pred.(type) {
	case nil, domain.MatchAll:
		return "TRUE", nil

	case domain.Equals:
		col, err := resolveColumn(cols, p.Field)
		if err != nil {
			return "", err
		}
		*args = append(*args, p.Value)
		return fmt.Sprintf("%s = $%d", col, len(*args)), nil

	case domain.ContainsFold:
		col, err := resolveColumn(cols, p.Field)
		if err != nil {
			return "", err
		}
		*args = append(*args, "%"+escapeLike(p.Value)+"%")
		return fmt.Sprintf("%s ILIKE $%d", col, len(*args)), nil

	case domain.InSet:
		col, err := resolveColumn(cols, p.Field)
		if err != nil {
			return "", err
		}
		if len(p.Values) == 0 {
			return "FALSE", nil
		}
		placeholders := make([]string, 0, len(p.Values))
		for _, v := range p.Values {
			*args = append(*args, v)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(*args)))
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ",")), nil

	case domain.Range:
		col, err := resolveColumn(cols, p.Field)
		if err != nil {
			return "", err
		}
		var parts []string
		if p.From != nil {
			*args = append(*args, p.From)
			parts = append(parts, fmt.Sprintf("%s >= $%d", col, len(*args)))
		}
		if p.To != nil {
			*args = append(*args, p.To)
			parts = append(parts, fmt.Sprintf("%s <= $%d", col, len(*args)))
		}
		if len(parts) == 0 {
			return "TRUE", nil
		}
		return strings.Join(parts, " AND "), nil

	case domain.And:
		return compileJunction(p.Preds, " AND ", "TRUE", cols, args)

	case domain.Or:
		return compileJunction(p.Preds, " OR ", "FALSE", cols, args)

	default:
		return "", domain.NewStorageError(domain.CodeInvalid, fmt.Sprintf("unsupported predicate %T", pred), nil)
	}
}

func compileJunction(preds []domain.Predicate, sep, empty string, cols columnMap, args *[]any) (string, error) {
	if len(preds) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		expr, err := compilePredicate(p, cols, args)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+expr+")")
	}
	return strings.Join(parts, sep), nil
}

func resolveColumn(cols columnMap, field string) (string, error) {
	col, ok := cols[field]
	if !ok {
		return "", domain.NewStorageError(domain.CodeInvalid, fmt.Sprintf("unknown filter field %q", field), nil)
	}
	return col, nil
}

// escapeLike экранирует метасимволы шаблона LIKE в пользовательском вводе.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// orderBy строит ORDER BY по объявленной сортировке.
// Пустая сортировка упорядочивает по первичному ключу для стабильных страниц.
func orderBy(sort domain.Sort, cols columnMap, fallback string) (string, error) {
	if sort.Field == "" {
		return "ORDER BY " + fallback, nil
	}
	col, err := resolveColumn(cols, sort.Field)
	if err != nil {
		return "", err
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, %s", col, dir, fallback), nil
}
