package domain

const (
	// DefaultPage — страница по умолчанию на границе API.
	DefaultPage = 1
	// DefaultLimit — размер страницы по умолчанию на границе API.
	DefaultLimit = 10
)

// Pageable описывает запрошенное окно постраничной выборки.
type Pageable struct {
	Page  int
	Limit int
}

// DefaultPageable возвращает окно со значениями по умолчанию.
func DefaultPageable() Pageable {
	return Pageable{Page: DefaultPage, Limit: DefaultLimit}
}

// Validate отклоняет значения ниже минимума до обращения к хранилищу.
func (p Pageable) Validate() error {
	if p.Page < 1 {
		return Validationf("page must be >= 1, got %d", p.Page)
	}
	if p.Limit < 1 {
		return Validationf("limit must be >= 1, got %d", p.Limit)
	}
	return nil
}

// Offset возвращает смещение первой строки запрошенной страницы.
func (p Pageable) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Sort задаёт упорядочивание выборки по одному полю.
type Sort struct {
	Field string
	Desc  bool
}

// Page — конверт постраничного ответа, одинаковый для всех сущностей.
// Транзитная проекция: никогда не сохраняется.
type Page[E any] struct {
	Items       []E   `json:"items"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
}

// NewPage собирает конверт из выборки и общего числа строк.
func NewPage[E any](items []E, total int64, pageable Pageable) Page[E] {
	if items == nil {
		items = []E{}
	}
	totalPages := int(total) / pageable.Limit
	if int(total)%pageable.Limit > 0 {
		totalPages++
	}
	return Page[E]{
		Items:       items,
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: pageable.Page,
	}
}
