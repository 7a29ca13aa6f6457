package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

// pageableFromQuery читает page/limit из query string. Отсутствующие
// значения получают дефолты; нечисловые — ErrValidation. Значения ниже
// минимума отбрасывает репозиторий.
func pageableFromQuery(c *gin.Context) (domain.Pageable, error) {
	pageable := domain.DefaultPageable()

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Pageable{}, domain.Validationf("invalid page %q", raw)
		}
		pageable.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Pageable{}, domain.Validationf("invalid limit %q", raw)
		}
		pageable.Limit = limit
	}

	return pageable, nil
}

// pathID читает числовой идентификатор из path-параметра.
func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("invalid %s %q", name, raw)
	}
	return id, nil
}
