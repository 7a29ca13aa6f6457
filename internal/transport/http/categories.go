package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	"github.com/vladislavdragonenkov/orderhub/internal/service/catalog"
)

// categoryHandler обслуживает справочник категорий.
type categoryHandler struct {
	categories *catalog.CategoryService
}

type createCategoryRequest struct {
	Description string `json:"description"`
	Color       string `json:"color"`
}

type updateCategoryRequest struct {
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (h *categoryHandler) list(c *gin.Context) {
	pageable, err := pageableFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	page, err := h.categories.List(c.Request.Context(), pageable)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *categoryHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *categoryHandler) create(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	category, err := h.categories.Create(c.Request.Context(), domain.Category{
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *categoryHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, domain.CategoryPatch{
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *categoryHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
