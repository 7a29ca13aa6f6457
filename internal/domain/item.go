package domain

// Category — долгоживущий справочник; на него ссылаются, им не владеют.
type Category struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CategoryPatch — частичное обновление категории; nil-поля не трогаются.
type CategoryPatch struct {
	Description *string
	Color       *string
}

// Item — товарная позиция каталога. Категория опциональна; её
// существование при записи гарантирует хранилище, не ядро.
type Item struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	UnitPrice   float64   `json:"unitPrice"`
	CategoryID  *int64    `json:"categoryId,omitempty"`
	Category    *Category `json:"category,omitempty"`
}

// ItemPatch — частичное обновление товара; nil-поля не трогаются.
type ItemPatch struct {
	Description *string
	UnitPrice   *float64
	CategoryID  *int64
}
