package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	"github.com/vladislavdragonenkov/orderhub/internal/service/user"
)

// userHandler обслуживает пользователей и их адреса.
type userHandler struct {
	users *user.Service
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type addressPatchRequest struct {
	Street   *string `json:"street"`
	Number   *string `json:"number"`
	District *string `json:"district"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	ZipCode  *string `json:"zipCode"`
}

type updateUserRequest struct {
	Name     *string              `json:"name"`
	Email    *string              `json:"email"`
	Phone    *string              `json:"phone"`
	Password *string              `json:"password"`
	Address  *addressPatchRequest `json:"address"`
}

func (h *userHandler) list(c *gin.Context) {
	pageable, err := pageableFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	page, err := h.users.List(c.Request.Context(), pageable, domain.UserFilter{Query: c.Query("query")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *userHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *userHandler) create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	u, err := h.users.Create(c.Request.Context(), domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *userHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	patch := domain.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}
	if req.Address != nil {
		patch.Address = &domain.AddressPatch{
			Street:   req.Address.Street,
			Number:   req.Address.Number,
			District: req.Address.District,
			City:     req.Address.City,
			State:    req.Address.State,
			ZipCode:  req.Address.ZipCode,
		}
	}

	u, err := h.users.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
