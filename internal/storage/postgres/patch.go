package postgres

import (
	"fmt"
	"sort"
)

// patchAssignments строит присваивания SET из ненулевых значений патча.
// Колонки упорядочены детерминированно, нумерация аргументов — с $1.
func patchAssignments(fields map[string]any) ([]string, []any) {
	cols := make([]string, 0, len(fields))
	for col, val := range fields {
		if val == nil {
			continue
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	set := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		args = append(args, fields[col])
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	return set, args
}

func derefAny[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
