package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	"github.com/vladislavdragonenkov/orderhub/internal/service/catalog"
)

// itemHandler обслуживает каталог товаров.
type itemHandler struct {
	items *catalog.ItemService
}

type createItemRequest struct {
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unitPrice"`
	CategoryID  *int64  `json:"categoryId"`
}

type updateItemRequest struct {
	Description *string  `json:"description"`
	UnitPrice   *float64 `json:"unitPrice"`
	CategoryID  *int64   `json:"categoryId"`
}

func (h *itemHandler) list(c *gin.Context) {
	pageable, err := pageableFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	filter := domain.ItemFilter{
		Description: c.Query("description"),
		CategoryID:  c.Query("categoryId"),
	}
	page, err := h.items.List(c.Request.Context(), pageable, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *itemHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	item, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *itemHandler) create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	item, err := h.items.Create(c.Request.Context(), domain.Item{
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *itemHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	item, err := h.items.Update(c.Request.Context(), id, domain.ItemPatch{
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *itemHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.items.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
