package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

// errorResponse — единый формат ошибки на HTTP-границе.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor отображает доменную таксономию ошибок в HTTP-статусы.
// Отображение тотально: невалидный запрос — 400, отсутствие — 404,
// конфликт — 409, недоступность хранилища — 503.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsConflict(err):
		return http.StatusConflict
	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), errorResponse{Error: err.Error()})
}
